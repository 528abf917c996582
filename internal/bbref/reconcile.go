package bbref

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const teamSep = "-"

// Reconcile collapses every player's rows into one canonical row.
//
// A traded player appears once per team plus, usually, a combined row under
// the total sentinel (TOT, 2TM, ...). The combined row is discarded so
// nothing is counted twice; team codes are joined in page order, metrics
// are summed (or averaged for rate columns) across the team rows, and the
// remaining identity columns come from the player's first row. Players are
// emitted in first-appearance order.
func Reconcile(t *Table) (*Table, error) {
	p := t.PlayerIndex()
	if p < 0 {
		return nil, &InvariantViolation{Reason: "table has no player column"}
	}
	team := -1
	for i, c := range t.Columns {
		if c.Agg == AggTeams {
			team = i
			break
		}
	}

	var order []string
	groups := make(map[string][]int, len(t.Rows))
	for i, r := range t.Rows {
		name := r[p].Text
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], i)
	}

	out := &Table{
		Category: t.Category,
		Season:   t.Season,
		Columns:  t.Columns,
		Rows:     make([][]Value, 0, len(order)),
	}
	for _, name := range order {
		row, err := collapse(t, name, groups[name], team)
		if err != nil {
			return nil, err
		}
		out.Rows = append(out.Rows, row)
	}

	seen := make(map[string]struct{}, len(out.Rows))
	for _, r := range out.Rows {
		if _, dup := seen[r[p].Text]; dup {
			return nil, &InvariantViolation{Player: r[p].Text, Reason: "duplicate canonical rows"}
		}
		seen[r[p].Text] = struct{}{}
	}
	return out, nil
}

func collapse(t *Table, player string, idx []int, team int) ([]Value, error) {
	if len(idx) == 0 {
		return nil, &InvariantViolation{Player: player, Reason: "no qualifying rows"}
	}
	if len(idx) == 1 {
		return cloneRow(t.Rows[idx[0]]), nil
	}

	parts := idx
	if team >= 0 {
		parts = parts[:0:0]
		for _, i := range idx {
			if !IsTotalTeam(t.Rows[i][team].Text) {
				parts = append(parts, i)
			}
		}
		if len(parts) == 0 {
			uniq := distinctRows(t, idx)
			if len(uniq) != 1 {
				return nil, &InvariantViolation{
					Player: player,
					Reason: fmt.Sprintf("%d distinct total rows and no team rows", len(uniq)),
				}
			}
			return cloneRow(t.Rows[uniq[0]]), nil
		}
	}

	first := t.Rows[idx[0]]
	row := make([]Value, len(t.Columns))
	for c, col := range t.Columns {
		switch col.Agg {
		case AggTeams:
			row[c] = Text(joinTeams(t, parts, c))
		case AggSum:
			row[c] = sumOf(t, parts, c)
		case AggMean:
			row[c] = meanOf(t, parts, c)
		default:
			row[c] = first[c]
		}
	}
	return row, nil
}

func joinTeams(t *Table, rows []int, c int) string {
	codes := make([]string, 0, len(rows))
	for _, i := range rows {
		if code := strings.TrimSpace(t.Rows[i][c].Text); code != "" {
			codes = append(codes, code)
		}
	}
	return strings.Join(codes, teamSep)
}

// missing values are skipped; all-missing stays missing
func sumOf(t *Table, rows []int, c int) Value {
	total, n := 0.0, 0
	for _, i := range rows {
		if v := t.Rows[i][c]; v.Valid {
			total += v.Num
			n++
		}
	}
	if n == 0 {
		return Missing()
	}
	return Num(total)
}

func meanOf(t *Table, rows []int, c int) Value {
	total, n := 0.0, 0
	for _, i := range rows {
		if v := t.Rows[i][c]; v.Valid {
			total += v.Num
			n++
		}
	}
	if n == 0 {
		return Missing()
	}
	return Num(total / float64(n))
}

func distinctRows(t *Table, idx []int) []int {
	var out []int
	for _, i := range idx {
		dup := false
		for _, j := range out {
			if rowsEqual(t.Rows[i], t.Rows[j]) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, i)
		}
	}
	return out
}

func rowsEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cloneRow(r []Value) []Value {
	out := make([]Value, len(r))
	copy(out, r)
	return out
}

// FormatNum renders a metric without float noise from summing/averaging.
func FormatNum(f float64) string {
	return strconv.FormatFloat(math.Round(f*1e6)/1e6, 'f', -1, 64)
}
