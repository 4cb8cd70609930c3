/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/wbin/pkg/store"
)

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <archive>",
		Short: "Print an archive header and its records",
		Long: `Print the header of an archive followed by its records in file order.

Examples:
  wbin read weather.wbin
  wbin read weather.wbin --header-only
  wbin read weather.wbin --format json --limit 24
  wbin read weather.wbin --index 100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			headerOnly, _ := cmd.Flags().GetBool("header-only")
			format, _ := cmd.Flags().GetString("format")
			limit, _ := cmd.Flags().GetInt("limit")

			reader, err := store.OpenRead(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			out := cmd.OutOrStdout()
			if format != "json" {
				printHeader(out, reader.Header())
			}
			if headerOnly {
				return nil
			}

			if cmd.Flags().Changed("index") {
				index, _ := cmd.Flags().GetUint32("index")
				entry, err := reader.ReadAt(index)
				if err != nil {
					return fmt.Errorf("record %d: %w", index, err)
				}
				return printSingle(out, index, entry, format)
			}

			it, err := reader.ReadAll()
			if err != nil {
				return err
			}
			if format != "json" {
				fmt.Fprintln(out)
			}
			_, err = printEntries(out, it, format, limit)
			return err
		},
	}

	cmd.Flags().Bool("header-only", false, "Print only the header")
	cmd.Flags().String("format", "table", "Output format: table or json")
	cmd.Flags().Int("limit", 0, "Maximum number of records to print (0 = all)")
	cmd.Flags().Uint32("index", 0, "Print only the record at this index")
	return cmd
}
