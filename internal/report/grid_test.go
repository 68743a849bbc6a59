package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/roster-cli/internal/pipeline"
)

func TestColumnLetter(t *testing.T) {
	tests := map[int]string{
		0:   "",
		1:   "A",
		26:  "Z",
		27:  "AA",
		41:  "AO",
		52:  "AZ",
		53:  "BA",
		702: "ZZ",
		703: "AAA",
	}
	for n, want := range tests {
		assert.Equal(t, want, ColumnLetter(n), "column %d", n)
	}
}

func TestRangeFor(t *testing.T) {
	assert.Equal(t, "Sheet1!A4:AO10", RangeFor("Sheet1", 4, 7))
	assert.Equal(t, "Counts!A1:AO1", RangeFor("Counts", 1, 1))
	assert.Equal(t, "Sheet1!A4:AO4", RangeFor("Sheet1", 4, 0))
}

func TestRow_Layout(t *testing.T) {
	c := pipeline.ShopCounts{
		ShopID:         "10",
		Software:       "CCC",
		ShopName:       "Main Street Collision",
		CapacityFactor: 1.5,
		Recent:         7,
		Stale:          2,
		Expired:        1,
	}
	c.BirthMonths[0] = 3
	c.BirthMonths[11] = 4
	c.ShadowMonths[5] = 2

	row := Row(c)
	require.Len(t, row, Columns)

	for i := 0; i < 5; i++ {
		assert.Nil(t, row[i])
	}
	assert.Equal(t, "10", row[5])
	assert.Equal(t, "CCC", row[6])
	assert.Equal(t, "Main Street Collision", row[7])
	assert.Equal(t, 1.5, row[8])
	assert.Nil(t, row[9])
	assert.Equal(t, 1, row[10])
	assert.Equal(t, 2, row[11])
	assert.Equal(t, 7, row[12])
	assert.Nil(t, row[13])
	assert.Equal(t, 9, row[14])
	assert.Equal(t, 7, row[15])
	assert.Equal(t, 3, row[16])
	assert.Equal(t, 4, row[27])
	assert.Equal(t, 2, row[28])
	assert.Equal(t, 2, row[34])
	assert.Equal(t, 0, row[40])
}

func TestGrid(t *testing.T) {
	grid := Grid([]pipeline.ShopCounts{{ShopID: "2"}, {ShopID: "10"}})
	require.Len(t, grid, 2)
	assert.Equal(t, "2", grid[0][5])
	assert.Equal(t, "10", grid[1][5])
	assert.Empty(t, Grid(nil))
}

func TestHeader(t *testing.T) {
	require.Len(t, Header, Columns)
	assert.Equal(t, "Shop ID", Header[5])
	assert.Equal(t, "Birth 1", Header[16])
	assert.Equal(t, "Shadow Total", Header[28])
	assert.Equal(t, "Shadow 12", Header[40])
}
