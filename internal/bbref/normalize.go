package bbref

import (
	"math"
	"strconv"
	"strings"
)

// efficiency rates that do not end in % but must still be averaged
var rateColumns = map[string]struct{}{
	"TS%": {}, "eFG%": {}, "3PAr": {}, "FTr": {}, "PER": {},
	"WS/48": {}, "BPM": {}, "OBPM": {}, "DBPM": {}, "Dist.": {},
}

// Normalize resolves column names and kinds and parses metric cells.
// Columns before the category's metric marker are identity columns, the
// marker and everything after it are metrics.
func Normalize(raw *RawTable, c Category) (*Table, error) {
	d := c.Descriptor()
	names := flattenHeaders(raw, d.InnerOnly)

	keep := make([]int, 0, len(names))
	for i, n := range names {
		if n == d.RankColumn {
			continue
		}
		if blankColumn(raw.Rows, i) {
			continue
		}
		keep = append(keep, i)
	}

	playerAt, markerAt := -1, -1
	for pos, i := range keep {
		switch names[i] {
		case d.PlayerColumn:
			if playerAt < 0 {
				playerAt = pos
			}
		case d.MetricStart:
			if markerAt < 0 {
				markerAt = pos
			}
		}
	}
	if playerAt < 0 {
		return nil, extractionErr(ErrMissingColumn, "player column %q", d.PlayerColumn)
	}
	if markerAt < 0 {
		return nil, extractionErr(ErrMissingColumn, "metric marker %q", d.MetricStart)
	}

	cols := make([]Column, len(keep))
	for pos, i := range keep {
		c := Column{Name: names[i]}
		switch {
		case pos < markerAt && d.isTeamColumn(c.Name):
			c.Kind, c.Agg = KindIdentity, AggTeams
		case pos < markerAt:
			c.Kind, c.Agg = KindIdentity, AggFirst
		case isRate(c.Name, groupOf(raw, i)):
			c.Kind, c.Agg = KindMetric, AggMean
		default:
			c.Kind, c.Agg = KindMetric, AggSum
		}
		cols[pos] = c
	}

	playerLabel := raw.Headers[keep[playerAt]]
	rows := make([][]Value, 0, len(raw.Rows))
	for _, r := range raw.Rows {
		name := cleanPlayer(cell(r, keep[playerAt]))
		if name == "" || name == playerLabel {
			continue
		}
		row := make([]Value, len(keep))
		for pos, i := range keep {
			switch {
			case pos == playerAt:
				row[pos] = Text(name)
			case cols[pos].Kind == KindMetric:
				row[pos] = parseMetric(cell(r, i))
			default:
				row[pos] = Text(cell(r, i))
			}
		}
		rows = append(rows, row)
	}

	return &Table{Category: c, Columns: cols, Rows: rows}, nil
}

// flattenHeaders joins "<group> <inner>"; an empty group is omitted.
func flattenHeaders(raw *RawTable, innerOnly bool) []string {
	out := make([]string, len(raw.Headers))
	for i, h := range raw.Headers {
		g := groupOf(raw, i)
		if innerOnly || g == "" {
			out[i] = strings.TrimSpace(h)
			continue
		}
		out[i] = strings.TrimSpace(g + " " + h)
	}
	return out
}

func groupOf(raw *RawTable, i int) string {
	if i < len(raw.Groups) {
		return strings.TrimSpace(raw.Groups[i])
	}
	return ""
}

func cell(r []string, i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

func blankColumn(rows [][]string, i int) bool {
	for _, r := range rows {
		if strings.TrimSpace(cell(r, i)) != "" {
			return false
		}
	}
	return true
}

func isRate(name, group string) bool {
	if strings.HasSuffix(name, "%") || strings.Contains(group, "%") {
		return true
	}
	inner := name
	if group != "" {
		inner = strings.TrimSpace(strings.TrimPrefix(name, group))
	}
	// shares such as "%FGA" or "%3PA"
	if strings.HasPrefix(inner, "%") {
		return true
	}
	_, ok := rateColumns[inner]
	return ok
}

// parseMetric never fails: anything that is not a number is missing.
func parseMetric(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing()
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing()
	}
	return Value{Text: s, Num: f, Valid: true}
}
