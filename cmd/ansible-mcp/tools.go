package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alibahadircoskun/ansible-network-mcp/internal/config"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the server exposes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		log := newLogger("error")

		d, err := buildDispatcher(cfg, log)
		if err != nil {
			return err
		}
		for _, t := range d.Tools() {
			fmt.Printf("%-28s %s\n", t.Name, t.Description)
			for _, a := range t.Args {
				req := ""
				if a.Required {
					req = " (required)"
				}
				fmt.Printf("    %s%s: %s\n", a.Name, req, a.Description)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
