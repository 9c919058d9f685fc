package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/engine"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/playbook"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/sanitize"
)

func playbookTools(d Deps) []Tool {
	// Syntax problems after create/edit are reported as warnings; the
	// content is kept so the caller can fix it in place.
	syntaxNote := func(ctx context.Context, name string) string {
		v, err := d.Playbooks.Validate(ctx, name)
		switch {
		case err != nil:
			return "\nWARNING: syntax check could not run"
		case v.TimedOut:
			return "\nWARNING: syntax check timed out"
		case !v.OK:
			return "\nWARNING: syntax check failed:\n" + v.Diagnostic
		}
		return ""
	}

	return []Tool{
		{
			Name:        "ansible_list_playbooks",
			Description: "List the playbooks with their first-line descriptions.",
			Handler: func(ctx context.Context, req Request) (string, error) {
				infos, err := d.Playbooks.List()
				if err != nil {
					return "", err
				}
				if len(infos) == 0 {
					return "No playbooks found.", nil
				}
				var b strings.Builder
				b.WriteString("=== PLAYBOOKS ===\n")
				for _, in := range infos {
					if in.Description != "" {
						fmt.Fprintf(&b, "%s - %s\n", in.Name, in.Description)
						continue
					}
					b.WriteString(in.Name + "\n")
				}
				return b.String(), nil
			},
		},
		{
			Name:        "ansible_create_playbook",
			Description: "Create a new playbook. Fails if the name exists; content must be valid YAML. A failing syntax check is reported but the file is kept.",
			Args: []ArgSpec{
				reqArg("name", "Playbook name; .yml is appended when missing"),
				reqArg("content", "Playbook YAML"),
				arg("description", "One-line description stored as a leading comment"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				if err := sanitize.CheckFilename("name", req.Get("name")); err != nil {
					return "", err
				}
				if err := sanitize.CheckBody("content", req.Get("content")); err != nil {
					return "", err
				}
				if err := sanitize.CheckBody("description", req.Get("description")); err != nil {
					return "", err
				}
				if err := d.Playbooks.Create(req.Get("name"), req.Get("content"), req.Get("description")); err != nil {
					return "", err
				}
				name := playbook.CanonicalName(req.Get("name"))
				return "SUCCESS: created " + name + syntaxNote(ctx, name), nil
			},
		},
		{
			Name:        "ansible_read_playbook",
			Description: "Read a playbook's content.",
			Args: []ArgSpec{
				reqArg("name", "Playbook name"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				if err := sanitize.CheckFilename("name", req.Get("name")); err != nil {
					return "", err
				}
				return d.Playbooks.Read(req.Get("name"))
			},
		},
		{
			Name:        "ansible_edit_playbook",
			Description: "Replace a playbook's content, backing up the prior version. A failing syntax check is reported but the new content is kept.",
			Args: []ArgSpec{
				reqArg("name", "Playbook name"),
				reqArg("content", "New playbook YAML"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				if err := sanitize.CheckFilename("name", req.Get("name")); err != nil {
					return "", err
				}
				if err := sanitize.CheckBody("content", req.Get("content")); err != nil {
					return "", err
				}
				b, err := d.Playbooks.Update(req.Get("name"), req.Get("content"))
				if err != nil {
					return "", err
				}
				name := playbook.CanonicalName(req.Get("name"))
				return fmt.Sprintf("SUCCESS: updated %s (previous version backed up as %s)", name, b.Name()) +
					syntaxNote(ctx, name), nil
			},
		},
		{
			Name:        "ansible_delete_playbook",
			Description: "Delete a playbook. Destructive; requires confirm=yes. The content is backed up first.",
			Args: []ArgSpec{
				reqArg("name", "Playbook name"),
				arg("confirm", `Must be "yes" to actually delete`),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				if err := sanitize.CheckFilename("name", req.Get("name")); err != nil {
					return "", err
				}
				if !req.Bool("confirm") {
					return confirmGate("deleting a playbook"), nil
				}
				b, err := d.Playbooks.Delete(req.Get("name"))
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("SUCCESS: deleted %s (backed up as %s)", playbook.CanonicalName(req.Get("name")), b.Name()), nil
			},
		},
		{
			Name:        "ansible_validate_playbook",
			Description: "Run a syntax check against a playbook without executing it.",
			Args: []ArgSpec{
				reqArg("name", "Playbook name"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				if err := sanitize.CheckFilename("name", req.Get("name")); err != nil {
					return "", err
				}
				v, err := d.Playbooks.Validate(ctx, req.Get("name"))
				if err != nil {
					return "", err
				}
				switch {
				case v.TimedOut:
					return "ERROR: syntax check timed out", nil
				case !v.OK:
					return "ERROR: syntax check failed:\n" + v.Diagnostic, nil
				}
				return "SUCCESS: " + playbook.CanonicalName(req.Get("name")) + " passed the syntax check", nil
			},
		},
		{
			Name:        "ansible_run_playbook",
			Description: "Execute a playbook against the inventory. Output is summarized; the full engine output follows the summary.",
			Args: []ArgSpec{
				reqArg("name", "Playbook name"),
				arg("limit", "Restrict the run to these hosts or groups, comma separated"),
				arg("extra_vars", "Extra variables as k=v pairs"),
				arg("tags", "Only run plays and tasks tagged with these values"),
				arg("verbose", "Set to yes for -vvv output"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				opts, err := playbookOptions(req)
				if err != nil {
					return "", err
				}
				res, err := d.Playbooks.Run(ctx, req.Get("name"), opts)
				if err != nil {
					return "", err
				}
				return engine.Summarize(engine.FormatResult(res)), nil
			},
		},
		{
			Name:        "ansible_check_playbook",
			Description: "Dry-run a playbook in check mode with diff output; no device is changed.",
			Args: []ArgSpec{
				reqArg("name", "Playbook name"),
				arg("limit", "Restrict the check to these hosts or groups"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				opts, err := playbookOptions(req)
				if err != nil {
					return "", err
				}
				opts.Check = true
				res, err := d.Playbooks.Run(ctx, req.Get("name"), opts)
				if err != nil {
					return "", err
				}
				return "=== CHECK MODE (no changes made) ===\n" + engine.Summarize(engine.FormatResult(res)), nil
			},
		},
	}
}

func playbookOptions(req Request) (engine.PlaybookOptions, error) {
	if err := sanitize.CheckFilename("name", req.Get("name")); err != nil {
		return engine.PlaybookOptions{}, err
	}
	for _, name := range []string{"limit", "extra_vars", "tags"} {
		if err := sanitize.CheckName(name, req.Get(name)); err != nil {
			return engine.PlaybookOptions{}, err
		}
	}
	return engine.PlaybookOptions{
		Limit:     req.Get("limit"),
		ExtraVars: req.Get("extra_vars"),
		Tags:      req.Get("tags"),
		Verbose:   req.Bool("verbose"),
	}, nil
}
