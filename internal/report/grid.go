// Package report renders per-shop counts into the spreadsheet grid the
// program managers review.
package report

import (
	"fmt"
	"strings"

	"github.com/sells-group/roster-cli/internal/pipeline"
)

// Columns is the width of one report row (A through AO).
const Columns = 41

// Header is the label row matching the Grid layout. Blank cells are
// reserved for manually maintained columns.
var Header = func() []any {
	h := []any{"", "", "", "", "", "Shop ID", "Software", "Shop", "Contract Factor", "",
		"Over Stale", "Stale", "Recent", "", "Total", "Birth Total"}
	for m := 1; m <= 12; m++ {
		h = append(h, fmt.Sprintf("Birth %d", m))
	}
	h = append(h, "Shadow Total")
	for m := 1; m <= 12; m++ {
		h = append(h, fmt.Sprintf("Shadow %d", m))
	}
	return h
}()

// Row renders one shop's counts as a grid row.
func Row(c pipeline.ShopCounts) []any {
	row := make([]any, 0, Columns)
	row = append(row, nil, nil, nil, nil, nil)
	row = append(row, c.ShopID, c.Software, c.ShopName, c.CapacityFactor, nil)
	row = append(row, c.Expired, c.Stale, c.Recent, nil)
	row = append(row, c.Total(), c.TotalBirth())
	for _, n := range c.BirthMonths {
		row = append(row, n)
	}
	row = append(row, c.TotalShadow())
	for _, n := range c.ShadowMonths {
		row = append(row, n)
	}
	return row
}

// Grid renders every row in order.
func Grid(rows []pipeline.ShopCounts) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = Row(r)
	}
	return out
}

// ColumnLetter converts a 1-based column number to its spreadsheet letters
// (1 → A, 27 → AA). Non-positive numbers return "".
func ColumnLetter(n int) string {
	var b strings.Builder
	var rev []byte
	for n > 0 {
		n--
		rev = append(rev, byte('A'+n%26))
		n /= 26
	}
	for i := len(rev) - 1; i >= 0; i-- {
		b.WriteByte(rev[i])
	}
	return b.String()
}

// RangeFor returns the A1 range covering rows grid rows written at startRow,
// e.g. "Sheet1!A4:AO10".
func RangeFor(sheet string, startRow, rows int) string {
	end := startRow + rows - 1
	if end < startRow {
		end = startRow
	}
	return fmt.Sprintf("%s!A%d:%s%d", sheet, startRow, ColumnLetter(Columns), end)
}
