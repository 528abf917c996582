package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/tyler180/bbref-season-stats/internal/bbref"
)

// LongHeader is the column set of LayoutLong files and tables.
var LongHeader = []string{"player", "ord", "stat", "col", "kind", "value_text", "value_num"}

// LongRecord is one (player, stat) cell.
type LongRecord struct {
	Player string
	Ord    int
	Stat   string
	Col    int
	Kind   bbref.Kind
	Text   string
	Num    float64
	Valid  bool // Num is set
}

// cellText renders a value the same way for every sink: metrics in their
// canonical numeric form, missing metrics as the empty string.
func cellText(c bbref.Column, v bbref.Value) string {
	if c.Kind == bbref.KindMetric {
		if !v.Valid {
			return ""
		}
		return bbref.FormatNum(v.Num)
	}
	return v.Text
}

// WideRecords returns the header followed by one record per player.
func WideRecords(t *bbref.Table) [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	head := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		head[i] = c.Name
	}
	out = append(out, head)
	for _, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			rec[i] = cellText(c, r[i])
		}
		out = append(out, rec)
	}
	return out
}

// Long flattens t to one record per non-player cell, in row then column order.
func Long(t *bbref.Table) []LongRecord {
	p := t.PlayerIndex()
	out := make([]LongRecord, 0, len(t.Rows)*len(t.Columns))
	for ri, r := range t.Rows {
		for ci, c := range t.Columns {
			if ci == p {
				continue
			}
			v := r[ci]
			rec := LongRecord{
				Player: r[p].Text,
				Ord:    ri,
				Stat:   c.Name,
				Col:    ci,
				Kind:   c.Kind,
				Text:   cellText(c, v),
			}
			if c.Kind == bbref.KindMetric && v.Valid {
				rec.Num, rec.Valid = v.Num, true
			}
			out = append(out, rec)
		}
	}
	return out
}

func LongRecords(t *bbref.Table) [][]string {
	long := Long(t)
	out := make([][]string, 0, len(long)+1)
	out = append(out, LongHeader)
	for _, r := range long {
		num := ""
		if r.Valid {
			num = bbref.FormatNum(r.Num)
		}
		out = append(out, []string{r.Player, strconv.Itoa(r.Ord), r.Stat, strconv.Itoa(r.Col), r.Kind.String(), r.Text, num})
	}
	return out
}

// Encode renders t as CSV in the given layout.
func Encode(t *bbref.Table, layout Layout) ([]byte, error) {
	if t.PlayerIndex() < 0 {
		return nil, fmt.Errorf("encode %s %d: no player column", t.Category, t.Season)
	}
	var recs [][]string
	if layout == LayoutLong {
		recs = LongRecords(t)
	} else {
		recs = WideRecords(t)
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(recs); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
