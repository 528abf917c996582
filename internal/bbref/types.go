package bbref

import (
	"regexp"
	"strings"
)

const ua = "Mozilla/5.0 (compatible; BBRefSeasonBot/1.0; +https://example.com/bot)"

// RawTable is the table as found in the page: one label per column (plus an
// outer group label when the header is grouped) and rows of raw cell text.
type RawTable struct {
	Groups  []string // nil for flat headers
	Headers []string
	Rows    [][]string
}

type Kind int

const (
	KindIdentity Kind = iota
	KindMetric
)

func (k Kind) String() string {
	if k == KindMetric {
		return "metric"
	}
	return "identity"
}

// Agg is how a column collapses when a player has several rows in a season.
type Agg int

const (
	AggFirst Agg = iota
	AggTeams
	AggSum
	AggMean
)

type Column struct {
	Name string
	Kind Kind
	Agg  Agg
}

// Value is one cell. Identity cells keep Text; metric cells carry Num when
// Valid, and Valid=false marks a missing value.
type Value struct {
	Text  string
	Num   float64
	Valid bool
}

func Missing() Value { return Value{} }

func Num(f float64) Value {
	return Value{Text: FormatNum(f), Num: f, Valid: true}
}

func Text(s string) Value { return Value{Text: s, Valid: s != ""} }

// Table is a normalized (and, after Reconcile, canonical) season table.
type Table struct {
	Category Category
	Season   int
	Columns  []Column
	Rows     [][]Value
}

func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// PlayerIndex is the column holding the player identity.
func (t *Table) PlayerIndex() int {
	return t.ColumnIndex(t.Category.Descriptor().PlayerColumn)
}

// Player returns the identity of row i.
func (t *Table) Player(i int) string {
	p := t.PlayerIndex()
	if p < 0 || i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][p].Text
}

var wsRe = regexp.MustCompile(`\s+`)

// cleanPlayer drops the trailing eligibility marker the source appends to names.
func cleanPlayer(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "*")
	return wsRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

var multiTeamRe = regexp.MustCompile(`^\dTM$`)

// IsTotalTeam reports whether code is the source's combined-teams row.
// Older pages use TOT, newer ones 2TM/3TM/...
func IsTotalTeam(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	return code == "TOT" || multiTeamRe.MatchString(code)
}
