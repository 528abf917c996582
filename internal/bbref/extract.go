package bbref

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var cellText = strings.NewReplacer("\u00a0", " ", "\u2009", " ")

// Extract pulls the stats table out of an HTML page. tableID is tried first;
// any table is accepted when it is absent. Tables hidden inside comment
// markup are found by retrying on the de-commented page.
func Extract(body []byte, shape HeaderShape, tableID string) (*RawTable, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, extractionErr(err, "parse html")
	}

	// SR sites ship most secondary tables inside <!-- -->
	clean := strings.ReplaceAll(string(body), "<!--", "")
	clean = strings.ReplaceAll(clean, "-->", "")
	cdoc, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return nil, extractionErr(err, "parse de-commented html")
	}

	table := tableByID(doc, tableID)
	if table.Length() == 0 {
		table = tableByID(cdoc, tableID)
	}
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		table = cdoc.Find("table").First()
	}
	if table.Length() == 0 {
		return nil, extractionErr(ErrNoTable, "id=%q", tableID)
	}
	return readTable(table, shape)
}

func tableByID(doc *goquery.Document, id string) *goquery.Selection {
	if id == "" {
		return doc.Find("table").Slice(0, 0)
	}
	return doc.Find(fmt.Sprintf(`table[id=%q]`, id)).First()
}

func readTable(table *goquery.Selection, shape HeaderShape) (*RawTable, error) {
	heads := table.Find("thead tr")
	if heads.Length() == 0 {
		// headerless markup: the first row of th cells is the header
		heads = table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
			return tr.Find("td").Length() == 0 && tr.Find("th").Length() > 0
		}).First()
	}
	if heads.Length() == 0 {
		return nil, extractionErr(ErrNoTable, "table has no header row")
	}

	raw := &RawTable{Headers: expandRow(heads.Last())}
	switch shape {
	case HeaderFlat:
		if heads.Length() != 1 {
			return nil, extractionErr(ErrUnsupportedShape, "flat table with %d header rows", heads.Length())
		}
	case HeaderGrouped:
		if heads.Length() < 2 {
			return nil, extractionErr(ErrUnsupportedShape, "grouped table with %d header row", heads.Length())
		}
		over := heads.Filter(".over_header").First()
		if over.Length() == 0 {
			over = heads.First()
		}
		groups := expandRow(over)
		if len(groups) > len(raw.Headers) {
			return nil, extractionErr(ErrUnsupportedShape, "%d groups for %d columns", len(groups), len(raw.Headers))
		}
		for len(groups) < len(raw.Headers) {
			groups = append(groups, "")
		}
		raw.Groups = resolveGroups(groups)
	default:
		return nil, extractionErr(ErrUnsupportedShape, "shape %d", shape)
	}
	if len(raw.Headers) == 0 {
		return nil, extractionErr(ErrNoTable, "empty header row")
	}

	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		rows = table.Find("tr").NotSelection(heads)
	}
	width := len(raw.Headers)
	rows.Each(func(_ int, tr *goquery.Selection) {
		cls := tr.AttrOr("class", "")
		if strings.Contains(cls, "thead") || strings.Contains(cls, "over_header") {
			return
		}
		cells := expandRow(tr)
		if len(cells) == 0 {
			return
		}
		// repeated header rows injected every ~20 lines
		if raw.Headers[0] != "" && cells[0] == raw.Headers[0] {
			return
		}
		for len(cells) < width {
			cells = append(cells, "")
		}
		raw.Rows = append(raw.Rows, cells[:width])
	})
	return raw, nil
}

// expandRow returns the trimmed text of every th/td, repeated per colspan.
func expandRow(tr *goquery.Selection) []string {
	var out []string
	tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
		txt := strings.TrimSpace(cellText.Replace(cell.Text()))
		span := 1
		if v, err := strconv.Atoi(cell.AttrOr("colspan", "1")); err == nil && v > 1 {
			span = v
		}
		for i := 0; i < span; i++ {
			out = append(out, txt)
		}
	})
	return out
}

// resolveGroups fills blank outer labels. The leading identity block keeps an
// empty group; a blank after the first explicit label takes the nearest
// explicit label to its right, or to its left at the end of the row.
func resolveGroups(groups []string) []string {
	out := make([]string, len(groups))
	seen := false
	for i, g := range groups {
		if g != "" {
			seen = true
			out[i] = g
			continue
		}
		if !seen {
			continue
		}
		out[i] = nearestLabel(groups, i)
	}
	return out
}

func nearestLabel(groups []string, i int) string {
	for j := i + 1; j < len(groups); j++ {
		if groups[j] != "" {
			return groups[j]
		}
	}
	for j := i - 1; j >= 0; j-- {
		if groups[j] != "" {
			return groups[j]
		}
	}
	return ""
}
