package bbref

import (
	"fmt"
	"strings"
)

type Category int

const (
	Totals Category = iota
	PerGame
	PerMinute
	PerPoss
	Advanced
	PlayByPlay
	Shooting
	AdjShooting
	MVPs
)

type HeaderShape int

const (
	HeaderFlat HeaderShape = iota
	HeaderGrouped
)

func (s HeaderShape) String() string {
	if s == HeaderGrouped {
		return "grouped"
	}
	return "flat"
}

// Descriptor is everything the pipeline needs to know about one category.
// It is looked up once per fetch instead of being re-derived from the page.
type Descriptor struct {
	Name        string
	Path        string // relative to the base URL, %d is the season
	TableID     string
	Shape       HeaderShape
	Floor       int    // earliest season the table exists for
	MetricStart string // first statistics column
	RankColumn  string
	// PlayerColumn is the identity rows are grouped by.
	PlayerColumn string
	TeamColumns  []string
	// InnerOnly drops the outer group label when flattening grouped headers.
	InnerOnly bool
}

const FirstSeason = 1950

var playerTeamCols = []string{"Tm", "Team"}

var descriptors = map[Category]Descriptor{
	Totals: {
		Name: "totals", Path: "leagues/NBA_%d_totals.html", TableID: "totals_stats",
		Shape: HeaderFlat, Floor: FirstSeason, MetricStart: "G", RankColumn: "Rk",
		PlayerColumn: "Player", TeamColumns: playerTeamCols,
	},
	PerGame: {
		Name: "per_game", Path: "leagues/NBA_%d_per_game.html", TableID: "per_game_stats",
		Shape: HeaderFlat, Floor: FirstSeason, MetricStart: "G", RankColumn: "Rk",
		PlayerColumn: "Player", TeamColumns: playerTeamCols,
	},
	PerMinute: {
		Name: "per_minute", Path: "leagues/NBA_%d_per_minute.html", TableID: "per_minute_stats",
		Shape: HeaderFlat, Floor: FirstSeason, MetricStart: "G", RankColumn: "Rk",
		PlayerColumn: "Player", TeamColumns: playerTeamCols,
	},
	PerPoss: {
		Name: "per_poss", Path: "leagues/NBA_%d_per_poss.html", TableID: "per_poss_stats",
		Shape: HeaderFlat, Floor: 1974, MetricStart: "G", RankColumn: "Rk",
		PlayerColumn: "Player", TeamColumns: playerTeamCols,
	},
	Advanced: {
		Name: "advanced", Path: "leagues/NBA_%d_advanced.html", TableID: "advanced",
		Shape: HeaderFlat, Floor: FirstSeason, MetricStart: "G", RankColumn: "Rk",
		PlayerColumn: "Player", TeamColumns: playerTeamCols,
	},
	PlayByPlay: {
		Name: "play-by-play", Path: "leagues/NBA_%d_play-by-play.html", TableID: "pbp_stats",
		Shape: HeaderGrouped, Floor: 1997, MetricStart: "G", RankColumn: "Rk",
		PlayerColumn: "Player", TeamColumns: playerTeamCols,
	},
	Shooting: {
		Name: "shooting", Path: "leagues/NBA_%d_shooting.html", TableID: "shooting_stats",
		Shape: HeaderGrouped, Floor: 1997, MetricStart: "G", RankColumn: "Rk",
		PlayerColumn: "Player", TeamColumns: playerTeamCols,
	},
	AdjShooting: {
		Name: "adj_shooting", Path: "leagues/NBA_%d_adj_shooting.html", TableID: "adj-shooting",
		Shape: HeaderGrouped, Floor: FirstSeason, MetricStart: "G", RankColumn: "Rk",
		PlayerColumn: "Player", TeamColumns: playerTeamCols,
	},
	MVPs: {
		Name: "mvps", Path: "awards/awards_%d.html", TableID: "mvp",
		Shape: HeaderGrouped, Floor: 1957, MetricStart: "First", RankColumn: "Rank",
		PlayerColumn: "Player", TeamColumns: playerTeamCols, InnerOnly: true,
	},
}

// Categories returns every supported category in a fixed order.
func Categories() []Category {
	return []Category{Totals, PerGame, PerMinute, PerPoss, Advanced, PlayByPlay, Shooting, AdjShooting, MVPs}
}

func (c Category) Descriptor() Descriptor { return descriptors[c] }

func (c Category) String() string {
	if d, ok := descriptors[c]; ok {
		return d.Name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories() {
		if descriptors[c].Name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownCategory, s)
}

// ParseCategories parses names, dropping repeats but keeping order.
func ParseCategories(names []string) ([]Category, error) {
	seen := map[Category]bool{}
	out := make([]Category, 0, len(names))
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			c, err := ParseCategory(part)
			if err != nil {
				return nil, err
			}
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (d Descriptor) URL(base string, season int) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + fmt.Sprintf(d.Path, season)
}

func (d Descriptor) Available(season int) bool { return season >= d.Floor }

// Clamp raises start to the category floor. ok is false when nothing in
// [start, end] is available.
func (d Descriptor) Clamp(start, end int) (int, int, bool) {
	if start < d.Floor {
		start = d.Floor
	}
	return start, end, start <= end
}

func (d Descriptor) isTeamColumn(name string) bool {
	for _, t := range d.TeamColumns {
		if t == name {
			return true
		}
	}
	return false
}
