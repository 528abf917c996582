package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestWideRecords(t *testing.T) {
	want := [][]string{
		{"Player", "Tm", "G", "FG%"},
		{"Michael Jordan", "CHI", "82", "0.465"},
		{"Dennis Rodman", "CHI", "80", ""},
	}
	if diff := cmp.Diff(want, WideRecords(sampleTable())); diff != "" {
		t.Fatalf("wide records (-want +got):\n%s", diff)
	}
}

func TestLongRecords(t *testing.T) {
	got := LongRecords(sampleTable())
	require.Equal(t, LongHeader, got[0])
	// 2 rows x 3 non-player columns
	require.Len(t, got, 7)
	require.Equal(t, []string{"Michael Jordan", "0", "Tm", "1", "identity", "CHI", ""}, got[1])
	require.Equal(t, []string{"Michael Jordan", "0", "FG%", "3", "metric", "0.465", "0.465"}, got[3])
	require.Equal(t, []string{"Dennis Rodman", "1", "FG%", "3", "metric", "", ""}, got[6])
}

func TestEncode(t *testing.T) {
	body, err := Encode(sampleTable(), LayoutWide)
	require.NoError(t, err)
	require.Equal(t, "Player,Tm,G,FG%\nMichael Jordan,CHI,82,0.465\nDennis Rodman,CHI,80,\n", string(body))

	tbl := sampleTable()
	tbl.Columns[0].Name = "Name"
	_, err = Encode(tbl, LayoutWide)
	require.Error(t, err)
}

func TestKeyAndLayout(t *testing.T) {
	k := Key{Category: sampleTable().Category, Season: 1998}
	require.Equal(t, "player_totals_1998.csv", k.FileName())
	require.Equal(t, "totals/1998", k.String())

	l, err := ParseLayout("long")
	require.NoError(t, err)
	require.Equal(t, LayoutLong, l)
	_, err = ParseLayout("tall")
	require.Error(t, err)
}
