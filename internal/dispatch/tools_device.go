package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/engine"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/runner"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/sanitize"
)

func deviceTools(d Deps) []Tool {
	exec := func(ctx context.Context, cmd runner.Command) (string, error) {
		res, err := d.Run.Run(ctx, cmd)
		if err != nil {
			return "", err
		}
		return engine.FormatResult(res), nil
	}

	return []Tool{
		{
			Name:        "ansible_adhoc_command",
			Description: "Run an ad-hoc module against inventory hosts, e.g. module=ping or module=setup.",
			Args: []ArgSpec{
				reqArg("target", "Host pattern: a host, a group, or all"),
				reqArg("module", "Module name"),
				arg("args", "Module arguments as k=v pairs"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				for _, name := range []string{"target", "module", "args"} {
					if err := sanitize.CheckName(name, req.Get(name)); err != nil {
						return "", err
					}
				}
				return exec(ctx, d.Engine.Adhoc(req.Get("target"), req.Get("module"), req.Get("args")))
			},
		},
		{
			Name:        "ansible_ping_devices",
			Description: "Test connectivity to inventory hosts and count reachable vs failed.",
			Args: []ArgSpec{
				arg("target", "Host pattern; defaults to all"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				target := req.Get("target")
				if target == "" {
					target = "all"
				}
				if err := sanitize.CheckName("target", target); err != nil {
					return "", err
				}
				out, err := exec(ctx, d.Engine.Ping(target))
				if err != nil {
					return "", err
				}
				return engine.PingSummary(out), nil
			},
		},
		{
			Name:        "ansible_get_facts",
			Description: "Gather device facts from Junos hosts.",
			Args: []ArgSpec{
				reqArg("target", "Host pattern"),
				arg("gather_subset", "Fact subset, e.g. hardware or interfaces"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				for _, name := range []string{"target", "gather_subset"} {
					if err := sanitize.CheckName(name, req.Get(name)); err != nil {
						return "", err
					}
				}
				return exec(ctx, d.Engine.Facts(req.Get("target"), req.Get("gather_subset")))
			},
		},
		{
			Name:        "ansible_get_config",
			Description: "Retrieve the running configuration from Junos hosts.",
			Args: []ArgSpec{
				reqArg("target", "Host pattern"),
				arg("format", "Display format: text, set, json, or xml; defaults to text"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				format := req.Get("format")
				if format == "" {
					format = "text"
				}
				for _, check := range []struct{ name, value string }{
					{"target", req.Get("target")},
					{"format", format},
				} {
					if err := sanitize.CheckName(check.name, check.value); err != nil {
						return "", err
					}
				}
				return exec(ctx, d.Engine.GetConfig(req.Get("target"), format))
			},
		},
		{
			Name:        "ansible_run_command",
			Description: "Run operational-mode commands (show ...) on Junos hosts.",
			Args: []ArgSpec{
				reqArg("target", "Host pattern"),
				reqArg("commands", "Commands to run, one per line or comma separated"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				if err := sanitize.CheckName("target", req.Get("target")); err != nil {
					return "", err
				}
				commands := splitList(req.Get("commands"))
				if len(commands) == 0 {
					return "", fmt.Errorf("argument %q has no entries", "commands")
				}
				for _, c := range commands {
					if err := sanitize.CheckName("commands", c); err != nil {
						return "", err
					}
				}
				cmd, err := d.Engine.RunCommands(req.Get("target"), commands)
				if err != nil {
					return "", err
				}
				return exec(ctx, cmd)
			},
		},
		{
			Name:        "ansible_push_config",
			Description: "Merge configuration lines onto Junos hosts. Without commit=yes the candidate is loaded but not committed; check=yes performs a dry run.",
			Args: []ArgSpec{
				reqArg("target", "Host pattern"),
				reqArg("config_lines", "Configuration statements, one per line"),
				arg("commit", "Set to yes to commit the change"),
				arg("check", "Set to yes for a dry run"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				if err := sanitize.CheckName("target", req.Get("target")); err != nil {
					return "", err
				}
				lines := splitList(req.Get("config_lines"))
				if len(lines) == 0 {
					return "", fmt.Errorf("argument %q has no entries", "config_lines")
				}
				for _, l := range lines {
					if err := sanitize.CheckName("config_lines", l); err != nil {
						return "", err
					}
				}
				cmd, err := d.Engine.PushConfig(req.Get("target"), lines, req.Bool("commit"), req.Bool("check"))
				if err != nil {
					return "", err
				}
				out, err := exec(ctx, cmd)
				if err != nil {
					return "", err
				}
				if !req.Bool("commit") {
					out = "NOTE: configuration loaded without commit.\n" + out
				}
				return out, nil
			},
		},
	}
}

// splitList accepts one entry per line or a comma-separated list and
// drops empty entries.
func splitList(raw string) []string {
	sep := "\n"
	if !strings.Contains(raw, "\n") {
		sep = ","
	}
	var out []string
	for _, part := range strings.Split(raw, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
