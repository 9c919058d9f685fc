package dispatch

import (
	"context"
	"strings"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/sanitize"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/vars"
)

func renderVars(m map[string]any) (string, error) {
	return vars.RenderYAML(m)
}

func varTools(d Deps) []Tool {
	readVars := func(scope vars.Scope, argName string) HandlerFunc {
		return func(ctx context.Context, req Request) (string, error) {
			name := req.Get(argName)
			if err := sanitize.CheckFilename(argName, name); err != nil {
				return "", err
			}
			return d.Vars.Read(scope, name)
		}
	}
	writeVars := func(scope vars.Scope, argName, what string) HandlerFunc {
		return func(ctx context.Context, req Request) (string, error) {
			name := req.Get(argName)
			if err := sanitize.CheckFilename(argName, name); err != nil {
				return "", err
			}
			if err := sanitize.CheckBody("content", req.Get("content")); err != nil {
				return "", err
			}
			if err := d.Vars.Write(scope, name, req.Get("content")); err != nil {
				return "", err
			}
			return "SUCCESS: wrote " + what + " variables for " + name, nil
		}
	}

	return []Tool{
		{
			Name:        "ansible_list_vars",
			Description: "List the group_vars and host_vars files that exist.",
			Handler: func(ctx context.Context, req Request) (string, error) {
				groups, hosts, err := d.Vars.List()
				if err != nil {
					return "", err
				}
				var b strings.Builder
				b.WriteString("group_vars:\n")
				writeNames(&b, groups)
				b.WriteString("host_vars:\n")
				writeNames(&b, hosts)
				return b.String(), nil
			},
		},
		{
			Name:        "ansible_read_group_vars",
			Description: "Read the variable file of an inventory group.",
			Args: []ArgSpec{
				reqArg("group", "Group name; .yml and .yaml are both accepted"),
			},
			Handler: readVars(vars.ScopeGroup, "group"),
		},
		{
			Name:        "ansible_write_group_vars",
			Description: "Write the variable file of an inventory group. Content must be a YAML mapping; the prior file is backed up.",
			Args: []ArgSpec{
				reqArg("group", "Group name"),
				reqArg("content", "YAML mapping of variables"),
			},
			Handler: writeVars(vars.ScopeGroup, "group", "group"),
		},
		{
			Name:        "ansible_read_host_vars",
			Description: "Read the variable file of a host.",
			Args: []ArgSpec{
				reqArg("hostname", "Host alias; .yml and .yaml are both accepted"),
			},
			Handler: readVars(vars.ScopeHost, "hostname"),
		},
		{
			Name:        "ansible_write_host_vars",
			Description: "Write the variable file of a host. Content must be a YAML mapping; the prior file is backed up.",
			Args: []ArgSpec{
				reqArg("hostname", "Host alias"),
				reqArg("content", "YAML mapping of variables"),
			},
			Handler: writeVars(vars.ScopeHost, "hostname", "host"),
		},
	}
}

func writeNames(b *strings.Builder, names []string) {
	if len(names) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, n := range names {
		b.WriteString("  " + n + "\n")
	}
}
