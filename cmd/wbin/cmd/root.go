/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/wbin/pkg/api"
	"github.com/ssargent/wbin/pkg/config"
	"github.com/ssargent/wbin/pkg/di"
	"github.com/ssargent/wbin/pkg/log"
	"github.com/ssargent/wbin/pkg/store"
)

type contextKey string

const configKey contextKey = "config"

var container *di.Container

// SetContainer injects the dependency container used by all commands
func SetContainer(c *di.Container) {
	container = c
}

func getContainer() *di.Container {
	if container == nil {
		container = di.NewContainer()
	}
	return container
}

// NewRootCmd builds the wbin command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wbin",
		Short: "wbin - weather binary archives",
		Long: `wbin converts hourly weather CSV exports into compact fixed-layout
binary archives, reads and searches them, verifies their integrity and
serves registered archives over a read-only REST API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if err := log.Init(cfg.Logging.Level); err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Sync()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ~/.config/wbin/config.yaml)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(
		newInitCmd(),
		newConvertCmd(),
		newReadCmd(),
		newSearchCmd(),
		newVerifyCmd(),
		newArchivesCmd(),
		newServeCmd(),
	)
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig loads the config file when present and applies flag overrides.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	explicit := configPath != ""
	if !explicit {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	switch {
	case config.ConfigExists(configPath):
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case explicit && cmd.Name() != "init":
		return nil, fmt.Errorf("config file does not exist: %s (run 'wbin init' first)", configPath)
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}
	return cfg, nil
}

func configFrom(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey).(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

func writerConfig(cfg *config.Config) store.WriterConfig {
	return store.WriterConfig{
		BufferSize:     cfg.Archive.BufferSize,
		SyncOnFinalize: cfg.Archive.SyncOnFinalize,
	}
}

func openCatalog(cfg *config.Config) (api.ArchiveCatalog, error) {
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	cat, err := getContainer().GetCatalogOpener().OpenCatalog(cfg.CatalogPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return cat, nil
}
