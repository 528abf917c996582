package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/tyler180/bbref-season-stats/internal/batch"
	"github.com/tyler180/bbref-season-stats/internal/bbref"
	"github.com/tyler180/bbref-season-stats/internal/config"
	"github.com/tyler180/bbref-season-stats/internal/pipeline"
)

type Event struct {
	Categories  []string `json:"categories"`
	StartSeason int      `json:"start_season"` // optional; falls back to env
	EndSeason   int      `json:"end_season"`
}

type GapOut struct {
	Category string `json:"category"`
	Seasons  string `json:"seasons"`
	Kind     string `json:"kind"`
	Error    string `json:"error,omitempty"`
}

type Response struct {
	OK      bool     `json:"ok"`
	Written int      `json:"written"`
	Failed  int      `json:"failed"`
	Gaps    []GapOut `json:"gaps,omitempty"`
	Message string   `json:"message,omitempty"`
}

type runFunc func(ctx context.Context, cfg *config.Config, cats []bbref.Category) (*batch.Summary, error)

func handler(run runFunc) func(context.Context, Event) (*Response, error) {
	return func(ctx context.Context, e Event) (*Response, error) {
		cfg := config.Load()
		if e.StartSeason != 0 {
			cfg.SeasonStart = e.StartSeason
		}
		if e.EndSeason != 0 {
			cfg.SeasonEnd = e.EndSeason
		}
		if e.StartSeason != 0 && e.EndSeason == 0 {
			cfg.SeasonEnd = e.StartSeason
		}
		if err := cfg.Validate(time.Now()); err != nil {
			return nil, err
		}
		names := e.Categories
		if len(names) == 0 {
			names = []string{os.Getenv("CATEGORIES")}
		}
		cats, err := bbref.ParseCategories(names)
		if err != nil {
			return nil, err
		}
		if len(cats) == 0 {
			return nil, fmt.Errorf("no categories in event or CATEGORIES")
		}

		sum, err := run(ctx, cfg, cats)
		if sum == nil {
			return nil, err
		}
		resp := &Response{OK: err == nil && sum.Failed() == 0, Written: sum.Written, Failed: sum.Failed()}
		for _, g := range sum.Gaps {
			out := GapOut{Category: g.Category.String(), Seasons: g.Seasons(), Kind: string(g.Kind)}
			if g.Err != nil {
				out.Error = g.Err.Error()
			}
			resp.Gaps = append(resp.Gaps, out)
		}
		if err != nil {
			// deadline hit mid-range: report what was written
			resp.Message = err.Error()
		}
		return resp, nil
	}
}

// newLogger takes DEBUG the way config.Load parses it.
func newLogger(w io.Writer) *slog.Logger {
	return pipeline.NewLogger(w, config.Load().Debug)
}

func main() {
	logger := newLogger(os.Stdout)
	lambda.Start(handler(func(ctx context.Context, cfg *config.Config, cats []bbref.Category) (*batch.Summary, error) {
		return pipeline.Run(ctx, cfg, cats, logger)
	}))
}
