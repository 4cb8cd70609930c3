/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/wbin/pkg/config"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file and data directory",
		Long: `Create a wbin configuration file with a generated API key, then create
the data directory and an empty archive catalog.

Examples:
  wbin init
  wbin init --config ./wbin.yaml --data-dir ./data --print-key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			printKey, _ := cmd.Flags().GetBool("print-key")

			configPath, _ := cmd.Flags().GetString("config")
			if configPath == "" {
				configPath = config.GetDefaultConfigPath()
			}

			if config.ConfigExists(configPath) && !force {
				cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", configPath)
				return nil
			}

			cfg, err := config.BootstrapConfig(configPath, configFrom(cmd).DataDir)
			if err != nil {
				return err
			}
			cmd.Printf("Configuration created at %s\n", configPath)

			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			if err := cat.Close(); err != nil {
				return fmt.Errorf("failed to close catalog: %w", err)
			}
			cmd.Printf("Data directory: %s\n", cfg.DataDir)
			cmd.Printf("Catalog: %s\n", cfg.CatalogPath())

			if printKey {
				cmd.Printf("Client API Key: %s\n", cfg.Security.ClientAPIKey)
			}
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
	cmd.Flags().Bool("print-key", false, "Print the generated API key")
	return cmd
}
