/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/wbin/pkg/api"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Serve registered archives over a read-only REST API. Every /api/v1 route
requires the X-API-Key header; Prometheus metrics are served on /metrics.

Examples:
  wbin serve
  wbin serve --port 9000 --bind 0.0.0.0
  wbin serve --api-key mysecretkey`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)

			if cmd.Flags().Changed("port") {
				cfg.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("bind") {
				cfg.Bind, _ = cmd.Flags().GetString("bind")
			}
			if cmd.Flags().Changed("api-key") {
				cfg.Security.ClientAPIKey, _ = cmd.Flags().GetString("api-key")
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if cfg.Security.ClientAPIKey == "" || cfg.Security.ClientAPIKey == "auto" {
				return fmt.Errorf("no API key configured: run 'wbin init' or pass --api-key")
			}

			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			defer cat.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cmd.Printf("Starting wbin server on %s:%d\n", cfg.Bind, cfg.Port)
			cmd.Printf("Catalog: %s\n", cfg.CatalogPath())

			starter := getContainer().GetServerFactory().CreateServerStarter()
			return starter.StartServer(ctx, cat, api.ServerConfig{
				Port:            cfg.Port,
				Bind:            cfg.Bind,
				APIKey:          cfg.Security.ClientAPIKey,
				StrictIntegrity: cfg.Archive.StrictIntegrity,
			})
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "Port to listen on (default from config)")
	cmd.Flags().String("bind", "127.0.0.1", "Address to bind to (default from config)")
	cmd.Flags().String("api-key", "", "API key for client authentication (default from config)")
	return cmd
}
