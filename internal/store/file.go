package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tyler180/bbref-season-stats/internal/bbref"
)

// FileSink writes <Dir>/player_<category>_<season>.csv.
type FileSink struct {
	Dir    string
	Layout Layout
}

func (s *FileSink) Path(k Key) string { return filepath.Join(s.Dir, k.FileName()) }

// Put writes to a temp file in the same directory and renames it over the
// target, so readers see the old file or the new one.
func (s *FileSink) Put(_ context.Context, k Key, t *bbref.Table) error {
	body, err := Encode(t, s.Layout)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", s.Dir, err)
	}
	tmp, err := os.CreateTemp(s.Dir, "."+k.FileName()+".*")
	if err != nil {
		return fmt.Errorf("temp file for %s: %w", k, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.Path(k)); err != nil {
		return fmt.Errorf("rename into %s: %w", s.Path(k), err)
	}
	return nil
}
