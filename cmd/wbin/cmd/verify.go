/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/wbin/pkg/catalog"
	"github.com/ssargent/wbin/pkg/config"
	"github.com/ssargent/wbin/pkg/integrity"
	"github.com/ssargent/wbin/pkg/log"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <archive>",
		Short: "Check an archive's magic, version and size",
		Long: `Verify that a file is a readable archive: the magic bytes and version are
checked and the file must hold every record the header declares. Extra bytes
past the declared records are reported; with --strict they fail the check.
If the archive is registered, the outcome is stored in the catalog.

Examples:
  wbin verify weather.wbin
  wbin verify weather.wbin --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			path := args[0]

			strict := cfg.Archive.StrictIntegrity
			if cmd.Flags().Changed("strict") {
				strict, _ = cmd.Flags().GetBool("strict")
			}
			record, _ := cmd.Flags().GetBool("record")

			checker := &integrity.Checker{Strict: strict}
			report, verr := checker.Verify(path)

			if record {
				recordOutcome(cfg, path, report, verr)
			}

			if verr != nil {
				return verr
			}

			printHeader(cmd.OutOrStdout(), report.Header)
			cmd.Printf("File size: %d bytes (expected %d)\n", report.FileSize, report.ExpectedSize)
			if report.TrailingBytes > 0 {
				cmd.Printf("Warning: %d trailing bytes (%d unfinalized records)\n",
					report.TrailingBytes, report.UnfinalizedRecords())
			}
			cmd.Println("Archive OK")
			return nil
		},
	}

	cmd.Flags().Bool("strict", false, "Fail when the file is larger than the header implies (default from config)")
	cmd.Flags().Bool("record", true, "Store the outcome in the catalog when the archive is registered")
	return cmd
}

// recordOutcome stores the verification result for registered archives.
// Catalog problems are logged and never change the verification result.
func recordOutcome(cfg *config.Config, path string, report *integrity.Report, verr error) {
	if _, err := os.Stat(cfg.CatalogPath()); err != nil {
		return
	}

	cat, err := openCatalog(cfg)
	if err != nil {
		log.Warnw("catalog unavailable, verification not recorded", "error", err)
		return
	}
	defer cat.Close()

	archive, err := cat.FindByPath(path)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			log.Warnw("catalog lookup failed", "path", path, "error", err)
		}
		return
	}

	v := catalog.Verification{At: time.Now().UTC(), OK: verr == nil}
	if report != nil {
		v.TrailingBytes = report.TrailingBytes
	}
	var ierr *integrity.IntegrityError
	if errors.As(verr, &ierr) {
		v.Reason = string(ierr.Reason)
		v.Detail = ierr.Detail
	}

	if _, err := cat.RecordVerification(archive.ID, v); err != nil {
		log.Warnw("failed to record verification", "archive_id", archive.ID, "error", err)
	}
}
