package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tyler180/bbref-season-stats/internal/bbref"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS player_season_stats (
	category   TEXT             NOT NULL,
	season     INTEGER          NOT NULL,
	player     TEXT             NOT NULL,
	ord        INTEGER          NOT NULL,
	stat       TEXT             NOT NULL,
	col        INTEGER          NOT NULL,
	kind       TEXT             NOT NULL,
	value_text TEXT             NOT NULL,
	value_num  DOUBLE PRECISION,
	PRIMARY KEY (category, season, player, stat)
)`

var pgColumns = []string{"category", "season", "player", "ord", "stat", "col", "kind", "value_text", "value_num"}

// PgxPool is the part of *pgxpool.Pool the sink uses.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresSink struct {
	pool PgxPool
}

func NewPostgresSink(pool PgxPool) *PostgresSink { return &PostgresSink{pool: pool} }

// OpenPostgres connects, pings and creates the table if needed.
func OpenPostgres(ctx context.Context, url string) (*PostgresSink, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := NewPostgresSink(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return s, pool, nil
}

func (s *PostgresSink) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Put deletes the season and bulk-loads the new rows in one transaction.
func (s *PostgresSink) Put(ctx context.Context, k Key, t *bbref.Table) error {
	if t.PlayerIndex() < 0 {
		return fmt.Errorf("postgres put %s: no player column", k)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM player_season_stats WHERE category = $1 AND season = $2`,
		k.Category.String(), k.Season); err != nil {
		return fmt.Errorf("clear %s: %w", k, err)
	}

	rows := pgRows(k, t)
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"player_season_stats"}, pgColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy %s: %w", k, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copy %s: wrote %d of %d rows", k, n, len(rows))
	}
	return tx.Commit(ctx)
}

func pgRows(k Key, t *bbref.Table) [][]any {
	long := Long(t)
	out := make([][]any, 0, len(long))
	for _, r := range long {
		var num any
		if r.Valid {
			num = r.Num
		}
		out = append(out, []any{k.Category.String(), int32(k.Season), r.Player, int32(r.Ord), r.Stat, int32(r.Col), r.Kind.String(), r.Text, num})
	}
	return out
}
