package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/sanitize"
)

func fileTools(d Deps) []Tool {
	return []Tool{
		{
			Name:        "ansible_show_structure",
			Description: "Show the workspace directory tree with file sizes.",
			Handler: func(ctx context.Context, req Request) (string, error) {
				return d.Workspace.Structure()
			},
		},
		{
			Name:        "ansible_read_file",
			Description: "Read any file inside the workspace. Reading a directory lists its entries.",
			Args: []ArgSpec{
				reqArg("filepath", "Path relative to the workspace root, e.g. inventory/hosts.ini"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				rel := req.Get("filepath")
				if err := sanitize.CheckName("filepath", rel); err != nil {
					return "", err
				}
				return d.Workspace.ReadFile(rel)
			},
		},
		{
			Name:        "ansible_write_file",
			Description: "Write a file inside the workspace, backing up any prior content.",
			Args: []ArgSpec{
				reqArg("filepath", "Path relative to the workspace root"),
				reqArg("content", "Full file content to write"),
				arg("backup", "Set to no to skip the backup of prior content"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				rel := req.Get("filepath")
				if err := sanitize.CheckName("filepath", rel); err != nil {
					return "", err
				}
				if err := sanitize.CheckBody("content", req.Get("content")); err != nil {
					return "", err
				}
				withBackup := req.Get("backup") != "no"
				b, taken, err := d.Workspace.WriteFile(rel, req.Get("content"), withBackup)
				if err != nil {
					return "", err
				}
				if taken {
					return fmt.Sprintf("SUCCESS: wrote %s (previous content backed up as %s)", rel, b.Name()), nil
				}
				return "SUCCESS: wrote " + rel, nil
			},
		},
		{
			Name:        "ansible_read_config",
			Description: "Read the engine configuration file (ansible.cfg).",
			Handler: func(ctx context.Context, req Request) (string, error) {
				return d.Workspace.ReadEngineConfig()
			},
		},
		{
			Name:        "ansible_write_config",
			Description: "Replace the engine configuration file, backing up the prior one.",
			Args: []ArgSpec{
				reqArg("content", "Full ansible.cfg content"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				if err := sanitize.CheckBody("content", req.Get("content")); err != nil {
					return "", err
				}
				b, taken, err := d.Workspace.WriteEngineConfig(req.Get("content"))
				if err != nil {
					return "", err
				}
				if taken {
					return "SUCCESS: wrote ansible.cfg (previous content backed up as " + b.Name() + ")", nil
				}
				return "SUCCESS: wrote ansible.cfg", nil
			},
		},
		{
			Name:        "ansible_list_templates",
			Description: "List the Jinja2 templates in the templates directory.",
			Handler: func(ctx context.Context, req Request) (string, error) {
				names, err := d.Workspace.ListTemplates()
				if err != nil {
					return "", err
				}
				if len(names) == 0 {
					return "No templates found.", nil
				}
				return "Templates:\n  " + strings.Join(names, "\n  "), nil
			},
		},
		{
			Name:        "ansible_read_template",
			Description: "Read a Jinja2 template by name.",
			Args: []ArgSpec{
				reqArg("name", "Template name; .j2 is appended when missing"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				if err := sanitize.CheckFilename("name", req.Get("name")); err != nil {
					return "", err
				}
				return d.Workspace.ReadTemplate(req.Get("name"))
			},
		},
		{
			Name:        "ansible_create_template",
			Description: "Create a new Jinja2 template. Fails if the name already exists.",
			Args: []ArgSpec{
				reqArg("name", "Template name; .j2 is appended when missing"),
				reqArg("content", "Template content"),
			},
			Handler: func(ctx context.Context, req Request) (string, error) {
				if err := sanitize.CheckFilename("name", req.Get("name")); err != nil {
					return "", err
				}
				if err := sanitize.CheckBody("content", req.Get("content")); err != nil {
					return "", err
				}
				if err := d.Workspace.CreateTemplate(req.Get("name"), req.Get("content")); err != nil {
					return "", err
				}
				return "SUCCESS: created template " + req.Get("name"), nil
			},
		},
	}
}
