package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tyler180/bbref-season-stats/internal/batch"
	"github.com/tyler180/bbref-season-stats/internal/bbref"
	"github.com/tyler180/bbref-season-stats/internal/config"
	"github.com/tyler180/bbref-season-stats/internal/pipeline"
)

func scrapeCmd() *cobra.Command {
	var (
		seasons   string
		sink      string
		outDir    string
		layout    string
		batchSize int
		cooldown  time.Duration
		debug     bool
	)
	cmd := &cobra.Command{
		Use:   "scrape <category>...",
		Short: "Fetch, reconcile and store one or more categories over a season range",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := bbref.ParseCategories(args)
			if err != nil {
				return err
			}

			now := time.Now()
			cfg := config.Load()
			flags := cmd.Flags()
			if flags.Changed("seasons") {
				if cfg.SeasonStart, cfg.SeasonEnd, err = config.ParseSeasonRange(seasons, now); err != nil {
					return err
				}
			}
			if flags.Changed("sink") {
				cfg.Sink = sink
			}
			if flags.Changed("out") {
				cfg.OutDir = outDir
			}
			if flags.Changed("layout") {
				cfg.Layout = layout
			}
			if flags.Changed("batch-size") {
				cfg.BatchSize = batchSize
			}
			if flags.Changed("cooldown") {
				cfg.Cooldown = cooldown
			}
			if flags.Changed("debug") {
				cfg.Debug = debug
			}
			if err := cfg.Validate(now); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			logger := pipeline.NewLogger(os.Stderr, cfg.Debug)
			logger.Info("scrape starting",
				"categories", fmt.Sprint(cats),
				"seasons", fmt.Sprintf("%d-%d", cfg.SeasonStart, cfg.SeasonEnd),
				"sink", cfg.Sink,
				"batch_size", cfg.BatchSize,
				"cooldown", cfg.Cooldown.String(),
			)
			start := time.Now()
			sum, runErr := pipeline.Run(ctx, cfg, cats, logger)
			if sum != nil {
				printSummary(cmd.OutOrStdout(), sum)
				logger.Info("scrape finished", "duration", time.Since(start).Round(time.Second), "written", sum.Written, "failed", sum.Failed())
			}
			if runErr != nil {
				return runErr
			}
			if sum.Failed() > 0 {
				return fmt.Errorf("%d season(s) failed", sum.Failed())
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&seasons, "seasons", "", "season range YYYY-YYYY (or a single YYYY); default SEASON_START-SEASON_END")
	f.StringVar(&sink, "sink", config.SinkFile, "file, s3, dynamodb, sqlite or postgres")
	f.StringVar(&outDir, "out", "./data", "output directory for the file sink")
	f.StringVar(&layout, "layout", "", "wide or long (file and s3 sinks)")
	f.IntVar(&batchSize, "batch-size", batch.DefaultSize, "seasons per batch")
	f.DurationVar(&cooldown, "cooldown", time.Minute, "pause between batches")
	f.BoolVar(&debug, "debug", false, "debug logging")
	return cmd
}

// printSummary renders the run totals and every gap.
func printSummary(w io.Writer, sum *batch.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%d written, %d failed, %d batches", sum.Written, sum.Failed(), sum.Batches))
	t.AppendHeader(table.Row{"Category", "Seasons", "Gap", "Detail"})
	for _, g := range sum.Gaps {
		detail := ""
		switch {
		case g.Err != nil:
			detail = g.Err.Error()
		case g.Kind == batch.GapNotAvailable:
			detail = fmt.Sprintf("before %d", g.Category.Descriptor().Floor)
		}
		t.AppendRow(table.Row{g.Category.String(), g.Seasons(), string(g.Kind), detail})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
