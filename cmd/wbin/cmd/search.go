/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/ssargent/wbin/pkg/query"
	"github.com/ssargent/wbin/pkg/store"
)

var whereExpr = regexp.MustCompile(`^\s*([a-z0-9_]+)\s*(<=|>=|!=|=|<|>)\s*(.*?)\s*$`)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <archive>",
		Short: "Search an archive by date range, category and field conditions",
		Long: `Scan an archive and print the records matching every given condition.
Dates use the format "YYYY-MM-DD HH:MM:SS" (UTC) and both ends are inclusive.

Examples:
  wbin search weather.wbin --start "2024-01-01 00:00:00" --end "2024-01-31 23:00:00"
  wbin search weather.wbin --main Rain
  wbin search weather.wbin --where "temp>25" --where "humidity<=40" --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startRaw, _ := cmd.Flags().GetString("start")
			endRaw, _ := cmd.Flags().GetString("end")
			main, _ := cmd.Flags().GetString("main")
			wheres, _ := cmd.Flags().GetStringArray("where")
			format, _ := cmd.Flags().GetString("format")
			limit, _ := cmd.Flags().GetInt("limit")

			pred, err := buildPredicate(startRaw, endRaw, main, wheres)
			if err != nil {
				return err
			}

			reader, err := store.OpenRead(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			it, err := query.NewEngine(reader).Search(cmd.Context(), pred)
			if err != nil {
				return err
			}

			n, err := printEntries(cmd.OutOrStdout(), it, format, limit)
			if err != nil {
				return err
			}
			if format != "json" {
				cmd.Printf("\n%d matching records\n", n)
			}
			return nil
		},
	}

	cmd.Flags().String("start", "", "Inclusive start timestamp")
	cmd.Flags().String("end", "", "Inclusive end timestamp")
	cmd.Flags().String("main", "", "Weather category (weather_main), e.g. Rain")
	cmd.Flags().StringArray("where", nil, `Field condition such as "temp>25" (repeatable)`)
	cmd.Flags().String("format", "table", "Output format: table or json")
	cmd.Flags().Int("limit", 0, "Maximum number of records to print (0 = all)")
	return cmd
}

func buildPredicate(startRaw, endRaw, main string, wheres []string) (store.Predicate, error) {
	filter := query.Filter{Start: startRaw, End: endRaw, Main: main}
	for _, w := range wheres {
		fq, err := parseWhere(w)
		if err != nil {
			return nil, err
		}
		filter.Fields = append(filter.Fields, fq)
	}

	pred, err := query.BuildPredicate(filter)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return pred, nil
}

func parseWhere(s string) (query.FieldQuery, error) {
	m := whereExpr.FindStringSubmatch(s)
	if m == nil {
		return query.FieldQuery{}, fmt.Errorf("invalid condition %q, expected <field><op><value>", s)
	}
	return query.FieldQuery{Field: m[1], Operator: m[2], Value: m[3]}, nil
}
