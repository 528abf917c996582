package batch

import "github.com/tyler180/bbref-season-stats/internal/bbref"

// DefaultSize is the number of seasons fetched between cooldowns.
const DefaultSize = 30

// Batch is a closed range of seasons for one category.
type Batch struct {
	Category bbref.Category
	First    int
	Last     int
}

func (b Batch) Len() int { return b.Last - b.First + 1 }

// Seasons lists the batch in increasing order.
func (b Batch) Seasons() []int {
	out := make([]int, 0, b.Len())
	for s := b.First; s <= b.Last; s++ {
		out = append(out, s)
	}
	return out
}

// Plan clamps [start, end] to the category floor and cuts it into
// consecutive batches of at most size seasons. A range entirely below the
// floor plans nothing.
func Plan(c bbref.Category, start, end, size int) []Batch {
	if size < 1 {
		size = DefaultSize
	}
	start, end, ok := c.Descriptor().Clamp(start, end)
	if !ok {
		return nil
	}
	out := make([]Batch, 0, (end-start)/size+1)
	for first := start; first <= end; first += size {
		last := first + size - 1
		if last > end {
			last = end
		}
		out = append(out, Batch{Category: c, First: first, Last: last})
	}
	return out
}
