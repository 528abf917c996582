package store

import (
	"context"
	"fmt"

	"github.com/tyler180/bbref-season-stats/internal/bbref"
)

// Key addresses one persisted season table.
type Key struct {
	Category bbref.Category
	Season   int
}

func (k Key) String() string { return fmt.Sprintf("%s/%d", k.Category, k.Season) }

// FileName is the per-season file name the dashboard reads.
func (k Key) FileName() string {
	return fmt.Sprintf("player_%s_%d.csv", k.Category, k.Season)
}

// Sink persists reconciled tables. Put replaces whatever was stored for
// the key and must not expose a partially written season.
type Sink interface {
	Put(ctx context.Context, k Key, t *bbref.Table) error
}

type Layout int

const (
	// LayoutWide is one CSV row per player, one column per stat.
	LayoutWide Layout = iota
	// LayoutLong is one record per (player, stat); it keeps a fixed schema
	// across seasons whose column sets differ.
	LayoutLong
)

func ParseLayout(s string) (Layout, error) {
	switch s {
	case "", "wide":
		return LayoutWide, nil
	case "long":
		return LayoutLong, nil
	}
	return 0, fmt.Errorf("unknown layout %q", s)
}
