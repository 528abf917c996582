package store

import "github.com/tyler180/bbref-season-stats/internal/bbref"

func sampleTable() *bbref.Table {
	return &bbref.Table{
		Category: bbref.Totals,
		Season:   1998,
		Columns: []bbref.Column{
			{Name: "Player", Kind: bbref.KindIdentity, Agg: bbref.AggFirst},
			{Name: "Tm", Kind: bbref.KindIdentity, Agg: bbref.AggTeams},
			{Name: "G", Kind: bbref.KindMetric, Agg: bbref.AggSum},
			{Name: "FG%", Kind: bbref.KindMetric, Agg: bbref.AggMean},
		},
		Rows: [][]bbref.Value{
			{bbref.Text("Michael Jordan"), bbref.Text("CHI"), bbref.Num(82), bbref.Num(0.465)},
			{bbref.Text("Dennis Rodman"), bbref.Text("CHI"), bbref.Num(80), bbref.Missing()},
		},
	}
}

func bigTable(n int) *bbref.Table {
	t := sampleTable()
	t.Rows = nil
	for i := 0; i < n; i++ {
		t.Rows = append(t.Rows, []bbref.Value{
			bbref.Text("P" + string(rune('A'+i/26)) + string(rune('a'+i%26))),
			bbref.Text("AAA"),
			bbref.Num(float64(i)),
			bbref.Num(0.5),
		})
	}
	return t
}
