package batch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyler180/bbref-season-stats/internal/bbref"
)

func TestPlan_PartitionCoverage(t *testing.T) {
	batches := Plan(bbref.Totals, 1950, 2024, 30)
	require.Len(t, batches, 3)

	seen := map[int]int{}
	prev := 1949
	for _, b := range batches {
		require.LessOrEqual(t, b.Len(), 30)
		for _, s := range b.Seasons() {
			require.Equal(t, prev+1, s, "seasons must be consecutive and increasing")
			prev = s
			seen[s]++
		}
	}
	for s := 1950; s <= 2024; s++ {
		require.Equal(t, 1, seen[s], "season %d", s)
	}
	require.Len(t, seen, 75)
	require.Equal(t, Batch{Category: bbref.Totals, First: 2010, Last: 2024}, batches[2])
}

func TestPlan_ClampsToFloor(t *testing.T) {
	batches := Plan(bbref.PerPoss, 1950, 1980, 30)
	require.Equal(t, []Batch{{Category: bbref.PerPoss, First: 1974, Last: 1980}}, batches)

	require.Empty(t, Plan(bbref.Shooting, 1950, 1996, 30))
}

func TestPlan_SizeDefaultsAndEdges(t *testing.T) {
	require.Len(t, Plan(bbref.Totals, 1950, 2024, 0), 3)
	require.Equal(t, []Batch{{Category: bbref.Totals, First: 2000, Last: 2000}}, Plan(bbref.Totals, 2000, 2000, 30))
	require.Len(t, Plan(bbref.Totals, 1950, 1959, 1), 10)
}
