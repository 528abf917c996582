package lake

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/athena/types"

	"github.com/tyler180/bbref-season-stats/internal/bbref"
	"github.com/tyler180/bbref-season-stats/internal/store"
)

// Executor is satisfied by *ath.Runner.
type Executor interface {
	ExecAndWait(ctx context.Context, sql string) (*types.QueryExecution, error)
	CountRows(ctx context.Context, table, where string) (int64, error)
}

// Registrar wraps an S3 sink and registers each written season as an
// Athena partition.
type Registrar struct {
	inner    *store.S3Sink
	exec     Executor
	db       string
	logger   *slog.Logger
	prepared map[bbref.Category]bool
}

func NewRegistrar(inner *store.S3Sink, exec Executor, db string, logger *slog.Logger) (*Registrar, error) {
	if inner.Layout != store.LayoutLong {
		return nil, fmt.Errorf("athena registration needs the long layout")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registrar{inner: inner, exec: exec, db: db, logger: logger, prepared: map[bbref.Category]bool{}}, nil
}

// EnsureTables creates the table of every category not yet created.
func (r *Registrar) EnsureTables(ctx context.Context, cats []bbref.Category) error {
	for _, c := range cats {
		if r.prepared[c] {
			continue
		}
		if _, err := r.exec.ExecAndWait(ctx, BuildCreateTable(r.db, c, r.inner.Location(c))); err != nil {
			return fmt.Errorf("create table %s: %w", TableName(c), err)
		}
		r.prepared[c] = true
		r.logger.Info("athena table ready", "table", r.db+"."+TableName(c))
	}
	return nil
}

func (r *Registrar) Put(ctx context.Context, k store.Key, t *bbref.Table) error {
	if err := r.inner.Put(ctx, k, t); err != nil {
		return err
	}
	if err := r.EnsureTables(ctx, []bbref.Category{k.Category}); err != nil {
		return err
	}
	if _, err := r.exec.ExecAndWait(ctx, BuildAddPartition(r.db, k.Category, k.Season, r.inner.SeasonLocation(k))); err != nil {
		return fmt.Errorf("add partition %s: %w", k, err)
	}
	return r.verify(ctx, k, t)
}

// verify reads the partition back and checks it holds one record per
// player for the season's first stat.
func (r *Registrar) verify(ctx context.Context, k store.Key, t *bbref.Table) error {
	stat := firstStat(t)
	if stat == "" {
		return nil
	}
	table := r.db + "." + TableName(k.Category)
	n, err := r.exec.CountRows(ctx, table, SeasonStatFilter(k.Season, stat))
	if err != nil {
		return fmt.Errorf("count %s: %w", k, err)
	}
	if n != int64(len(t.Rows)) {
		return fmt.Errorf("partition %s holds %d players, wrote %d", k, n, len(t.Rows))
	}
	r.logger.Debug("athena partition verified", "key", k.String(), "players", n)
	return nil
}

func firstStat(t *bbref.Table) string {
	p := t.PlayerIndex()
	for i, c := range t.Columns {
		if i != p {
			return c.Name
		}
	}
	return ""
}
