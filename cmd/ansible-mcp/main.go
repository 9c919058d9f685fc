// Command ansible-mcp serves guarded Ansible workspace operations to
// MCP clients over stdio. All file operations are confined to the
// configured workspace root and every mutation is backed up first.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/backup"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/config"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/dispatch"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/engine"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/inventory"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/pathguard"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/playbook"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/runner"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/vars"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/workspace"
)

const version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "ansible-mcp",
	Short:         "MCP server for a guarded Ansible network workspace",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFile, "config file path")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the server version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("ansible-mcp " + version)
	},
}

// newLogger writes to stderr: stdout belongs to the MCP transport.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("app", "ansible-mcp").Logger().Level(lvl)
}

// buildDispatcher wires the whole stack: guard, backups, stores,
// engine, and the tool table.
func buildDispatcher(cfg config.Config, log zerolog.Logger) (*dispatch.Dispatcher, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create workspace %s: %w", cfg.Dir, err)
	}
	guard, err := pathguard.New(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}

	backups := backup.NewManager()
	ws := workspace.New(guard, backups)
	for _, err := range ws.EnsureLayout() {
		log.Warn().Err(err).Msg("workspace layout")
	}

	run, validate, adhoc, device, ping := cfg.Timeouts.Durations()
	inv := inventory.NewStore(guard, backups, workspace.InventoryFile)
	eng := engine.New(cfg.PlaybookBin, cfg.AdhocBin, inv.Path(), guard.Root(), engine.Timeouts{
		Run:      run,
		Validate: validate,
		Adhoc:    adhoc,
		Device:   device,
		Ping:     ping,
	})
	exec := runner.NewExec()

	deps := dispatch.Deps{
		Workspace: ws,
		Inventory: inv,
		Vars:      vars.NewStore(guard, backups, inv, workspace.GroupVarsDir, workspace.HostVarsDir),
		Playbooks: playbook.NewStore(guard, backups, exec, eng, workspace.PlaybooksDir),
		Engine:    eng,
		Run:       exec,
	}
	return dispatch.New(log, dispatch.BuildTools(deps)), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
