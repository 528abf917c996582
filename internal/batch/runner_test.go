package batch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tyler180/bbref-season-stats/internal/bbref"
	"github.com/tyler180/bbref-season-stats/internal/store"
)

type call struct {
	c      bbref.Category
	season int
}

type fakeFetcher struct {
	calls []call
	// per season overrides; default is an OK one-row table
	outcomes map[int]bbref.Outcome
	onFetch  func(call)
}

func (f *fakeFetcher) Fetch(_ context.Context, c bbref.Category, season int) bbref.Outcome {
	f.calls = append(f.calls, call{c, season})
	if f.onFetch != nil {
		f.onFetch(call{c, season})
	}
	if o, ok := f.outcomes[season]; ok {
		o.Category, o.Season = c, season
		return o
	}
	return bbref.Outcome{
		Kind:     bbref.OutcomeOK,
		Category: c,
		Season:   season,
		Table: &bbref.Table{
			Category: c,
			Season:   season,
			Columns:  []bbref.Column{{Name: "Player"}},
			Rows:     [][]bbref.Value{{bbref.Text("X")}},
		},
	}
}

type memSink struct {
	keys []store.Key
	err  error
	ctxs []context.Context
}

func (m *memSink) Put(ctx context.Context, k store.Key, _ *bbref.Table) error {
	m.ctxs = append(m.ctxs, ctx)
	if m.err != nil {
		return m.err
	}
	m.keys = append(m.keys, k)
	return nil
}

type recSleeper struct {
	naps  []time.Duration
	after []int // fetch count at each nap
	f     *fakeFetcher
}

func (r *recSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.naps = append(r.naps, d)
	if r.f != nil {
		r.after = append(r.after, len(r.f.calls))
	}
	return ctx.Err()
}

func newRunner(f *fakeFetcher, s *memSink, sl *recSleeper) *Runner {
	return &Runner{
		Fetcher:   f,
		Sink:      s,
		Sleeper:   sl,
		BatchSize: 30,
		Cooldown:  time.Minute,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRun_MultiDecadeWithoutWallClock(t *testing.T) {
	f := &fakeFetcher{}
	s := &memSink{}
	sl := &recSleeper{f: f}

	sum, err := newRunner(f, s, sl).Run(context.Background(), Request{
		Categories: []bbref.Category{bbref.Totals},
		Start:      1950,
		End:        2024,
	})
	require.NoError(t, err)
	require.Equal(t, 3, sum.Batches)
	require.Equal(t, 75, sum.Attempted)
	require.Equal(t, 75, sum.Written)
	require.Empty(t, sum.Gaps)

	// cooldown between batches, never after the last
	require.Equal(t, []time.Duration{time.Minute, time.Minute}, sl.naps)
	require.Equal(t, []int{30, 60}, sl.after)

	for i, c := range f.calls {
		require.Equal(t, 1950+i, c.season)
	}
	require.Len(t, s.keys, 75)
}

func TestRun_FloorClamping(t *testing.T) {
	f := &fakeFetcher{}
	sl := &recSleeper{}
	sum, err := newRunner(f, &memSink{}, sl).Run(context.Background(), Request{
		Categories: []bbref.Category{bbref.PerPoss},
		Start:      1950,
		End:        1980,
	})
	require.NoError(t, err)

	require.Len(t, f.calls, 7)
	for _, c := range f.calls {
		require.GreaterOrEqual(t, c.season, 1974)
		require.LessOrEqual(t, c.season, 1980)
	}
	require.Empty(t, sl.naps)
	require.Equal(t, []Gap{{Category: bbref.PerPoss, First: 1950, Last: 1973, Kind: GapNotAvailable}}, sum.Gaps)
	require.Zero(t, sum.Failed())
}

func TestRun_CategoryEntirelyBeforeFloor(t *testing.T) {
	f := &fakeFetcher{}
	sum, err := newRunner(f, &memSink{}, &recSleeper{}).Run(context.Background(), Request{
		Categories: []bbref.Category{bbref.Shooting},
		Start:      1960,
		End:        1990,
	})
	require.NoError(t, err)
	require.Empty(t, f.calls)
	require.Equal(t, "1960-1990", sum.Gaps[0].Seasons())
}

func TestRun_CooldownSpansCategories(t *testing.T) {
	f := &fakeFetcher{}
	sl := &recSleeper{f: f}
	r := newRunner(f, &memSink{}, sl)
	r.BatchSize = 5

	_, err := r.Run(context.Background(), Request{
		Categories: []bbref.Category{bbref.Totals, bbref.Advanced},
		Start:      2000,
		End:        2009,
	})
	require.NoError(t, err)
	// 2 batches per category, 4 total
	require.Len(t, sl.naps, 3)
	require.Equal(t, []int{5, 10, 15}, sl.after)
	require.Equal(t, bbref.Totals, f.calls[9].c)
	require.Equal(t, bbref.Advanced, f.calls[10].c)
	require.Equal(t, 2000, f.calls[10].season)
}

func TestRun_GapsDoNotStopTheRun(t *testing.T) {
	f := &fakeFetcher{outcomes: map[int]bbref.Outcome{
		2001: {Kind: bbref.OutcomeTransportError, Status: 429, Err: &bbref.TransportError{Status: 429}},
		2002: {Kind: bbref.OutcomeTransportError, Err: &bbref.StageError{Stage: bbref.StageExtract, Err: bbref.ErrNoTable}},
		2003: {Kind: bbref.OutcomeTransportError, Err: &bbref.StageError{Stage: bbref.StageReconcile, Err: &bbref.InvariantViolation{Player: "X"}}},
		2004: {Kind: bbref.OutcomeNotAvailable},
	}}
	s := &memSink{}
	sum, err := newRunner(f, s, &recSleeper{}).Run(context.Background(), Request{
		Categories: []bbref.Category{bbref.Totals},
		Start:      2000,
		End:        2005,
	})
	require.NoError(t, err)
	require.Equal(t, 6, sum.Attempted)
	require.Equal(t, 2, sum.Written)
	require.Equal(t, []store.Key{{Category: bbref.Totals, Season: 2000}, {Category: bbref.Totals, Season: 2005}}, s.keys)

	kinds := map[int]GapKind{}
	for _, g := range sum.Gaps {
		kinds[g.First] = g.Kind
	}
	require.Equal(t, map[int]GapKind{
		2001: GapTransport,
		2002: GapExtract,
		2003: GapInvariant,
		2004: GapNotAvailable,
	}, kinds)
	require.Equal(t, 3, sum.Failed())
	require.Equal(t, 429, sum.Gaps[0].Status)
}

func TestRun_SinkFailureIsAGap(t *testing.T) {
	s := &memSink{err: errors.New("disk full")}
	sum, err := newRunner(&fakeFetcher{}, s, &recSleeper{}).Run(context.Background(), Request{
		Categories: []bbref.Category{bbref.Totals},
		Start:      2000,
		End:        2001,
	})
	require.NoError(t, err)
	require.Zero(t, sum.Written)
	require.Len(t, sum.Gaps, 2)
	require.Equal(t, GapSink, sum.Gaps[0].Kind)
	require.ErrorIs(t, sum.Gaps[0].Err, s.err)
}

func TestRun_CancelStopsAtSeasonBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &fakeFetcher{}
	f.onFetch = func(c call) {
		if c.season == 2002 {
			cancel()
		}
	}
	s := &memSink{}
	sum, err := newRunner(f, s, &recSleeper{}).Run(ctx, Request{
		Categories: []bbref.Category{bbref.Totals},
		Start:      2000,
		End:        2010,
	})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, sum)

	// the in-flight season is still persisted, nothing after it
	require.Len(t, f.calls, 3)
	require.Equal(t, 3, sum.Written)
	require.Equal(t, 2002, s.keys[2].Season)
	require.NoError(t, s.ctxs[2].Err())
}

func TestRun_CancelDuringCooldown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &fakeFetcher{}
	f.onFetch = func(c call) {
		if c.season == 2004 {
			cancel()
		}
	}
	r := newRunner(f, &memSink{}, &recSleeper{})
	r.BatchSize = 5
	_, err := r.Run(ctx, Request{Categories: []bbref.Category{bbref.Totals}, Start: 2000, End: 2009})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, f.calls, 5)
}

func TestRun_RejectsInvertedRange(t *testing.T) {
	_, err := newRunner(&fakeFetcher{}, &memSink{}, &recSleeper{}).Run(context.Background(), Request{
		Categories: []bbref.Category{bbref.Totals},
		Start:      2001,
		End:        2000,
	})
	require.Error(t, err)
}

func TestTimerSleeperHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := TimerSleeper{}.Sleep(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), time.Second)
	require.NoError(t, TimerSleeper{}.Sleep(context.Background(), 0))
}
