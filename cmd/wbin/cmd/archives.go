/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/wbin/pkg/catalog"
	"github.com/ssargent/wbin/pkg/store"
)

func newArchivesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archives",
		Short: "List and manage registered archives",
		Long: `List the archives registered in the catalog. Subcommands show, register
and remove individual entries. Removing an entry leaves the file alone.

Examples:
  wbin archives
  wbin archives show 2Jf3zBfK6yQnE1mX7tO0a9Zq1pW
  wbin archives register ./weather.wbin
  wbin archives remove 2Jf3zBfK6yQnE1mX7tO0a9Zq1pW`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := openCatalog(configFrom(cmd))
			if err != nil {
				return err
			}
			defer cat.Close()

			archives, err := cat.List()
			if err != nil {
				return err
			}
			if len(archives) == 0 {
				cmd.Println("No archives registered")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLOCATION\tRECORDS\tVERIFIED\tPATH")
			for _, a := range archives {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", a.ID, a.Location, a.RecordCount, verificationSummary(a), a.Path)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show a registered archive as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cat, err := openCatalog(configFrom(cmd))
				if err != nil {
					return err
				}
				defer cat.Close()

				archive, err := cat.Get(args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(archive)
			},
		},
		&cobra.Command{
			Use:   "register <archive>",
			Short: "Register an existing archive file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				reader, err := store.OpenRead(args[0])
				if err != nil {
					return err
				}
				header := reader.Header()
				if err := reader.Close(); err != nil {
					return err
				}
				return registerArchive(cmd, configFrom(cmd), args[0], &header)
			},
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Remove an archive from the catalog",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cat, err := openCatalog(configFrom(cmd))
				if err != nil {
					return err
				}
				defer cat.Close()

				if err := cat.Delete(args[0]); err != nil {
					return err
				}
				cmd.Printf("Removed archive %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func verificationSummary(a *catalog.Archive) string {
	v := a.LastVerification
	if v == nil {
		return "never"
	}
	status := "ok"
	if !v.OK {
		status = v.Reason
	}
	return fmt.Sprintf("%s (%s)", status, v.At.Format(time.RFC3339))
}
