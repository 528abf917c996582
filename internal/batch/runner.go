package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tyler180/bbref-season-stats/internal/bbref"
	"github.com/tyler180/bbref-season-stats/internal/store"
)

// SeasonFetcher is satisfied by *bbref.Fetcher.
type SeasonFetcher interface {
	Fetch(ctx context.Context, c bbref.Category, season int) bbref.Outcome
}

type Request struct {
	Categories []bbref.Category
	Start      int
	End        int
}

type GapKind string

const (
	GapNotAvailable GapKind = "not_available"
	GapTransport    GapKind = "transport"
	GapExtract      GapKind = "extract"
	GapNormalize    GapKind = "normalize"
	GapInvariant    GapKind = "invariant"
	GapSink         GapKind = "sink"
)

// Gap is a season (or, for NotAvailable, a range of seasons) that produced
// no persisted table.
type Gap struct {
	Category bbref.Category
	First    int
	Last     int
	Kind     GapKind
	Status   int
	Err      error
}

func (g Gap) Seasons() string {
	if g.First == g.Last {
		return fmt.Sprint(g.First)
	}
	return fmt.Sprintf("%d-%d", g.First, g.Last)
}

type Summary struct {
	Batches   int
	Attempted int
	Written   int
	Gaps      []Gap
}

// Failed counts gaps other than seasons before a category's floor.
func (s *Summary) Failed() int {
	n := 0
	for _, g := range s.Gaps {
		if g.Kind != GapNotAvailable {
			n++
		}
	}
	return n
}

type Runner struct {
	Fetcher   SeasonFetcher
	Sink      store.Sink
	Sleeper   Sleeper
	BatchSize int
	Cooldown  time.Duration
	Logger    *slog.Logger
}

// Run walks every category's batches in order, one season at a time. A
// cooldown separates each pair of consecutive batches, across categories
// too, and never follows the last one. Per-season failures land in the
// summary; only cancellation ends the run early.
func (r *Runner) Run(ctx context.Context, req Request) (*Summary, error) {
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	sleeper := r.Sleeper
	if sleeper == nil {
		sleeper = TimerSleeper{Logger: log}
	}
	if req.Start > req.End {
		return nil, fmt.Errorf("season range %d-%d: start after end", req.Start, req.End)
	}

	sum := &Summary{}
	var plan []Batch
	for _, c := range req.Categories {
		d := c.Descriptor()
		if req.Start < d.Floor {
			last := min(req.End, d.Floor-1)
			sum.Gaps = append(sum.Gaps, Gap{Category: c, First: req.Start, Last: last, Kind: GapNotAvailable})
			log.Info("seasons before category floor skipped", "category", d.Name, "from", req.Start, "to", last, "floor", d.Floor)
		}
		plan = append(plan, Plan(c, req.Start, req.End, r.BatchSize)...)
	}
	sum.Batches = len(plan)

	for i, b := range plan {
		if i > 0 && r.Cooldown > 0 {
			if err := sleeper.Sleep(ctx, r.Cooldown); err != nil {
				return sum, err
			}
		}
		log.Info("batch start", "batch", i+1, "of", len(plan), "category", b.Category.String(), "first", b.First, "last", b.Last)
		for _, season := range b.Seasons() {
			if err := ctx.Err(); err != nil {
				log.Warn("run cancelled", "category", b.Category.String(), "next_season", season)
				return sum, err
			}
			r.season(ctx, log, b.Category, season, sum)
		}
	}
	return sum, nil
}

func (r *Runner) season(ctx context.Context, log *slog.Logger, c bbref.Category, season int, sum *Summary) {
	sum.Attempted++
	out := r.Fetcher.Fetch(ctx, c, season)
	switch out.Kind {
	case bbref.OutcomeNotAvailable:
		sum.Gaps = append(sum.Gaps, Gap{Category: c, First: season, Last: season, Kind: GapNotAvailable})
		log.Info("season not available", "category", c.String(), "season", season)
		return
	case bbref.OutcomeTransportError:
		g := Gap{Category: c, First: season, Last: season, Kind: classify(out.Err), Status: out.Status, Err: out.Err}
		sum.Gaps = append(sum.Gaps, g)
		log.Warn("season failed", "category", c.String(), "season", season, "kind", string(g.Kind), "status", out.Status, "err", out.Err)
		return
	}

	// a season that reached the sink is finished even if the run is stopping
	key := store.Key{Category: c, Season: season}
	if err := r.Sink.Put(context.WithoutCancel(ctx), key, out.Table); err != nil {
		sum.Gaps = append(sum.Gaps, Gap{Category: c, First: season, Last: season, Kind: GapSink, Err: err})
		log.Error("persist failed", "category", c.String(), "season", season, "err", err)
		return
	}
	sum.Written++
	log.Info("season done", "category", c.String(), "season", season, "rows", len(out.Table.Rows))
}

func classify(err error) GapKind {
	var se *bbref.StageError
	if errors.As(err, &se) {
		switch se.Stage {
		case bbref.StageExtract:
			return GapExtract
		case bbref.StageNormalize:
			return GapNormalize
		case bbref.StageReconcile:
			return GapInvariant
		}
	}
	return GapTransport
}
