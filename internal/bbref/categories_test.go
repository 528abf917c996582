package bbref

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCategories(t *testing.T) {
	got, err := ParseCategories([]string{"totals,advanced", "Totals", " shooting "})
	require.NoError(t, err)
	require.Equal(t, []Category{Totals, Advanced, Shooting}, got)

	_, err = ParseCategories([]string{"standings"})
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestDescriptors(t *testing.T) {
	for _, c := range Categories() {
		d := c.Descriptor()
		require.NotEmpty(t, d.Name)
		require.NotEmpty(t, d.TableID, d.Name)
		require.GreaterOrEqual(t, d.Floor, FirstSeason, d.Name)
		require.Equal(t, c.String(), d.Name)

		back, err := ParseCategory(d.Name)
		require.NoError(t, err)
		require.Equal(t, c, back)
	}
	require.Equal(t, 1974, PerPoss.Descriptor().Floor)
	require.Equal(t, 1997, PlayByPlay.Descriptor().Floor)
	require.Equal(t, 1997, Shooting.Descriptor().Floor)
}

func TestDescriptorURLAndClamp(t *testing.T) {
	d := Advanced.Descriptor()
	require.Equal(t, "https://x.test/leagues/NBA_1999_advanced.html", d.URL("https://x.test", 1999))
	require.Equal(t, "https://x.test/leagues/NBA_1999_advanced.html", d.URL("https://x.test/", 1999))

	s, e, ok := PerPoss.Descriptor().Clamp(1950, 1980)
	require.True(t, ok)
	require.Equal(t, 1974, s)
	require.Equal(t, 1980, e)

	_, _, ok = Shooting.Descriptor().Clamp(1950, 1990)
	require.False(t, ok)
}
