package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/sanitize"
)

func inventoryTools(d Deps) []Tool {
	return []Tool{
		{
			Name:        "ansible_read_inventory",
			Description: "Read the raw inventory file (inventory/hosts.ini).",
			Handler: func(ctx context.Context, req Request) (string, error) {
				return d.Inventory.Read()
			},
		},
		{
			Name:        "ansible_write_inventory",
			Description: "Replace the inventory file wholesale, backing up the prior one.",
			Args: []ArgSpec{
				reqArg("content", "Full INI inventory content"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				if err := sanitize.CheckBody("content", req.Get("content")); err != nil {
					return "", err
				}
				b, taken, err := d.Inventory.Write(req.Get("content"))
				if err != nil {
					return "", err
				}
				if taken {
					return "SUCCESS: inventory written (previous content backed up as " + b.Name() + ")", nil
				}
				return "SUCCESS: inventory written", nil
			},
		},
		{
			Name:        "ansible_add_host",
			Description: "Add a host to an inventory group, creating the group if needed.",
			Args: []ArgSpec{
				reqArg("group", "Inventory group name, e.g. qfx_switches"),
				reqArg("hostname", "Host alias to add"),
				reqArg("ip", "Management address recorded as ansible_host"),
				arg("extra_vars", "Additional k=v pairs for the host line, space separated"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				for _, name := range []string{"group", "hostname", "ip", "extra_vars"} {
					if err := sanitize.CheckName(name, req.Get(name)); err != nil {
						return "", err
					}
				}
				err := d.Inventory.AddHost(req.Get("group"), req.Get("hostname"), req.Get("ip"), req.Get("extra_vars"))
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("SUCCESS: added %s to group %s", req.Get("hostname"), req.Get("group")), nil
			},
		},
		{
			Name:        "ansible_remove_host",
			Description: "Remove a host from every inventory group. Destructive; requires confirm=yes.",
			Args: []ArgSpec{
				reqArg("hostname", "Host alias to remove"),
				arg("confirm", `Must be "yes" to actually remove`),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				if err := sanitize.CheckName("hostname", req.Get("hostname")); err != nil {
					return "", err
				}
				if !req.Bool("confirm") {
					return confirmGate("removing a host"), nil
				}
				if err := d.Inventory.RemoveHost(req.Get("hostname")); err != nil {
					return "", err
				}
				return "SUCCESS: removed " + req.Get("hostname") + " from the inventory", nil
			},
		},
		{
			Name:        "ansible_list_inventory",
			Description: "List inventory groups and their hosts.",
			Handler: func(ctx context.Context, req Request) (string, error) {
				groups, err := d.Inventory.List()
				if err != nil {
					return "", err
				}
				if len(groups) == 0 {
					return "Inventory is empty.", nil
				}
				var b strings.Builder
				b.WriteString("=== INVENTORY ===\n")
				for _, g := range groups {
					fmt.Fprintf(&b, "[%s] (%d hosts)\n", g.Name, len(g.Hosts))
					for _, h := range g.Hosts {
						b.WriteString("  " + h + "\n")
					}
				}
				return b.String(), nil
			},
		},
		{
			Name:        "ansible_show_host_vars",
			Description: "Show the effective variables of a host: inventory inline, group files, and host file merged in precedence order.",
			Args: []ArgSpec{
				reqArg("hostname", "Host alias from the inventory"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				host := req.Get("hostname")
				if err := sanitize.CheckName("hostname", host); err != nil {
					return "", err
				}
				merged, err := d.Vars.Effective(host)
				if err != nil {
					return "", err
				}
				if len(merged) == 0 {
					return "No variables defined for " + host + ".", nil
				}
				rendered, err := renderVars(merged)
				if err != nil {
					return "", err
				}
				return "=== EFFECTIVE VARS: " + host + " ===\n" + rendered, nil
			},
		},
	}
}
