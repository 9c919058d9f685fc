package main

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/config"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/dispatch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tool surface to an MCP client over stdio",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	// Running without a subcommand serves; that is how MCP clients
	// invoke the binary.
	rootCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	d, err := buildDispatcher(cfg, log)
	if err != nil {
		return err
	}

	s := server.NewMCPServer("ansible-network-mcp", version)
	dispatch.RegisterMCP(s, d)

	log.Info().Str("workspace", cfg.Dir).Int("tools", len(d.Tools())).Msg("serving on stdio")
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
