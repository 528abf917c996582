package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tyler180/bbref-season-stats/internal/bbref"
	"github.com/tyler180/bbref-season-stats/internal/config"
	"github.com/tyler180/bbref-season-stats/internal/pipeline"
	"github.com/tyler180/bbref-season-stats/internal/store"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <category> <season>",
		Short: "Print the stored DynamoDB copy of one season",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bbref.ParseCategory(args[0])
			if err != nil {
				return err
			}
			season, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("season %q: %w", args[1], err)
			}
			k := store.Key{Category: c, Season: season}
			recs, err := pipeline.LoadStoredSeason(cmd.Context(), config.Load(), k)
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), k.String(), recs)
			return nil
		},
	}
}

func seriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "series <category> <player> <stat>",
		Short: "Query one player's stat across seasons through Athena",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bbref.ParseCategory(args[0])
			if err != nil {
				return err
			}
			cfg := config.Load()
			logger := pipeline.NewLogger(cmd.ErrOrStderr(), cfg.Debug)
			runner, err := pipeline.NewAthenaRunner(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			recs, err := pipeline.StatSeries(cmd.Context(), runner, cfg.AthenaDB, c, args[1], args[2])
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), fmt.Sprintf("%s %s (%s)", args[1], args[2], c), recs)
			return nil
		},
	}
}

// printRecords renders header-first records as a table.
func printRecords(w io.Writer, title string, recs [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	if len(recs) > 0 {
		t.AppendHeader(toRow(recs[0]))
		for _, r := range recs[1:] {
			t.AppendRow(toRow(r))
		}
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func toRow(rec []string) table.Row {
	row := make(table.Row, len(rec))
	for i, v := range rec {
		row[i] = v
	}
	return row
}
