package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/tyler180/bbref-season-stats/internal/bbref"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS player_season_stats (
	category   TEXT    NOT NULL,
	season     INTEGER NOT NULL,
	player     TEXT    NOT NULL,
	ord        INTEGER NOT NULL,
	stat       TEXT    NOT NULL,
	col        INTEGER NOT NULL,
	kind       TEXT    NOT NULL,
	value_text TEXT    NOT NULL,
	value_num  REAL,
	PRIMARY KEY (category, season, player, stat)
);
CREATE INDEX IF NOT EXISTS idx_pss_player ON player_season_stats(player, category);
`

// SQLiteSink keeps every season in one long-layout table.
type SQLiteSink struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; the pipeline is sequential anyway
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) DB() *sql.DB { return s.db }

func (s *SQLiteSink) Close() error { return s.db.Close() }

// Put replaces the season inside one transaction.
func (s *SQLiteSink) Put(ctx context.Context, k Key, t *bbref.Table) error {
	if t.PlayerIndex() < 0 {
		return fmt.Errorf("sqlite put %s: no player column", k)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM player_season_stats WHERE category = ? AND season = ?`,
		k.Category.String(), k.Season); err != nil {
		return fmt.Errorf("clear %s: %w", k, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO player_season_stats (category, season, player, ord, stat, col, kind, value_text, value_num)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range Long(t) {
		var num any
		if r.Valid {
			num = r.Num
		}
		if _, err := stmt.ExecContext(ctx, k.Category.String(), k.Season, r.Player, r.Ord, r.Stat, r.Col, r.Kind.String(), r.Text, num); err != nil {
			return fmt.Errorf("insert %s %s/%s: %w", k, r.Player, r.Stat, err)
		}
	}
	return tx.Commit()
}
