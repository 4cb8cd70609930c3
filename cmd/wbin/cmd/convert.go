/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/ssargent/wbin/pkg/catalog"
	"github.com/ssargent/wbin/pkg/codec"
	"github.com/ssargent/wbin/pkg/config"
	"github.com/ssargent/wbin/pkg/ingest"
	"github.com/ssargent/wbin/pkg/store"
)

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <csv-file> <archive>",
		Short: "Convert a weather CSV export into a binary archive",
		Long: `Convert an hourly weather CSV export into a binary archive. The first CSV
line is a header: columns are matched by name when recognized, otherwise they
are read in archive field order. The archive is registered in the catalog.

Examples:
  wbin convert weather.csv weather.wbin
  wbin convert weather.csv weather.wbin --location Arad --lat 46.1667 --lon 21.3167
  wbin convert more.csv weather.wbin --append`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			csvPath, archivePath := args[0], args[1]

			appendMode, _ := cmd.Flags().GetBool("append")
			noRegister, _ := cmd.Flags().GetBool("no-register")

			var (
				stats  ingest.Stats
				header codec.Header
				err    error
			)
			if appendMode {
				stats, header, err = appendCSV(cmd, cfg, csvPath, archivePath)
			} else {
				stats, header, err = convertCSV(cmd, cfg, csvPath, archivePath)
			}
			if err != nil {
				return err
			}

			cmd.Printf("Converted %d rows into %s (%d records total)\n", stats.Rows, archivePath, header.RecordCount)
			if stats.MalformedFields > 0 || stats.TruncatedFields > 0 {
				cmd.Printf("Warnings: %d malformed fields set to zero, %d text fields truncated\n",
					stats.MalformedFields, stats.TruncatedFields)
			}

			if noRegister {
				return nil
			}
			return registerArchive(cmd, cfg, archivePath, &header)
		},
	}

	cmd.Flags().String("location", "", "Location name stored in the header (default from config)")
	cmd.Flags().Float32("lat", 0, "Latitude stored in the header (default from config)")
	cmd.Flags().Float32("lon", 0, "Longitude stored in the header (default from config)")
	cmd.Flags().Bool("append", false, "Append to an existing archive instead of creating one")
	cmd.Flags().Bool("no-register", false, "Do not register the archive in the catalog")
	return cmd
}

func convertCSV(cmd *cobra.Command, cfg *config.Config, csvPath, archivePath string) (ingest.Stats, codec.Header, error) {
	location := cfg.Archive.Location
	lat, lon := cfg.Archive.Latitude, cfg.Archive.Longitude
	if cmd.Flags().Changed("location") {
		location, _ = cmd.Flags().GetString("location")
	}
	if cmd.Flags().Changed("lat") {
		lat, _ = cmd.Flags().GetFloat32("lat")
	}
	if cmd.Flags().Changed("lon") {
		lon, _ = cmd.Flags().GetFloat32("lon")
	}

	header := codec.NewHeader(location, lat, lon)
	stats, err := ingest.ConvertFile(cmd.Context(), csvPath, archivePath, header, writerConfig(cfg))
	if err != nil {
		return stats, codec.Header{}, fmt.Errorf("conversion failed: %w", err)
	}

	reader, err := store.OpenRead(archivePath)
	if err != nil {
		return stats, codec.Header{}, err
	}
	defer reader.Close()
	return stats, reader.Header(), nil
}

func appendCSV(cmd *cobra.Command, cfg *config.Config, csvPath, archivePath string) (stats ingest.Stats, header codec.Header, err error) {
	src, err := os.Open(csvPath)
	if err != nil {
		return stats, header, fmt.Errorf("failed to open %s: %w", csvPath, err)
	}
	defer src.Close()

	w, err := store.OpenAppend(archivePath, writerConfig(cfg))
	if err != nil {
		return stats, header, err
	}
	defer func() {
		err = multierr.Append(err, w.Close())
	}()

	stats, err = ingest.Convert(cmd.Context(), src, w)
	if err != nil {
		return stats, header, fmt.Errorf("append failed: %w", err)
	}
	return stats, w.Header(), nil
}

func registerArchive(cmd *cobra.Command, cfg *config.Config, archivePath string, header *codec.Header) error {
	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	archive, err := cat.Register(catalog.FromHeader(archivePath, header))
	if err != nil {
		return fmt.Errorf("failed to register archive: %w", err)
	}
	cmd.Printf("Registered archive %s\n", archive.ID)
	return nil
}
