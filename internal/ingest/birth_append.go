// Package ingest reads vendor append files returned by the mail house.
package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/roster-cli/internal/model"
)

// Append file column headers.
const (
	ColCustomerID = "CID"
	ColShopID     = "WSID"
	ColMonth      = "MD_Month"
	ColYear       = "MD_Year"
)

const bom = "\ufeff"

var requiredColumns = []string{ColCustomerID, ColShopID, ColMonth, ColYear}

// appendRow is one raw row before month parsing.
type appendRow struct {
	CustomerID string `csv:"CID"`
	ShopID     string `csv:"WSID"`
	Month      string `csv:"MD_Month"`
	Year       string `csv:"MD_Year"`
}

// BirthAppendFile is the parsed content of an append file.
type BirthAppendFile struct {
	Rows []model.BirthAppend
	// Read counts data rows seen, excluding the header.
	Read int
	// Skipped counts rows without ids or a usable month.
	Skipped int
	// Duplicates counts rows superseded by a later row for the same customer.
	Duplicates int
}

// collector keeps the last usable row per (customer, shop) in first-seen order.
type collector struct {
	file  BirthAppendFile
	index map[[2]string]int
}

func newCollector() *collector {
	return &collector{index: make(map[[2]string]int)}
}

func (c *collector) add(r appendRow) {
	c.file.Read++
	a := model.BirthAppend{
		CustomerID: strings.TrimSpace(r.CustomerID),
		ShopID:     strings.TrimSpace(r.ShopID),
		Month:      model.ParseMonth(r.Month),
		Year:       strings.TrimSpace(r.Year),
	}
	if !a.Usable() {
		c.file.Skipped++
		return
	}

	key := [2]string{a.CustomerID, a.ShopID}
	if i, ok := c.index[key]; ok {
		c.file.Rows[i] = a
		c.file.Duplicates++
		return
	}
	c.index[key] = len(c.file.Rows)
	c.file.Rows = append(c.file.Rows, a)
}

func (c *collector) done(source string) BirthAppendFile {
	zap.L().Info("ingest: birth append parsed",
		zap.String("source", source),
		zap.Int("read", c.file.Read),
		zap.Int("usable", len(c.file.Rows)),
		zap.Int("skipped", c.file.Skipped),
		zap.Int("duplicates", c.file.Duplicates),
	)
	return c.file
}

// ReadBirthAppendFile parses an append file, choosing the format by extension.
func ReadBirthAppendFile(ctx context.Context, path string) (BirthAppendFile, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadBirthAppendXLSX(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return BirthAppendFile{}, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	out, err := ReadBirthAppendCSV(ctx, f)
	if err != nil {
		return BirthAppendFile{}, eris.Wrapf(err, "ingest: read %s", path)
	}
	return out, nil
}

// ReadBirthAppendCSV decodes a CSV append file. Extra columns are ignored;
// the CID, WSID, MD_Month and MD_Year columns are required. Fields are trimmed.
func ReadBirthAppendCSV(ctx context.Context, r io.Reader) (BirthAppendFile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	dec, err := csvutil.NewDecoder(&trimmedReader{r: cr})
	if err == io.EOF {
		return BirthAppendFile{}, nil
	}
	if err != nil {
		return BirthAppendFile{}, eris.Wrap(err, "ingest: read csv header")
	}
	dec.DisallowMissingColumns = true

	c := newCollector()
	for {
		if err := ctx.Err(); err != nil {
			return BirthAppendFile{}, eris.Wrap(err, "ingest: csv cancelled")
		}

		var row appendRow
		err := dec.Decode(&row)
		if err == io.EOF {
			break
		}
		if err != nil {
			return BirthAppendFile{}, eris.Wrapf(err, "ingest: decode csv row %d", c.file.Read+2)
		}
		c.add(row)
	}
	return c.done("csv"), nil
}

// ReadBirthAppendXLSX reads the first sheet of a workbook append file. The
// first row is the header.
func ReadBirthAppendXLSX(ctx context.Context, path string) (BirthAppendFile, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return BirthAppendFile{}, eris.Wrapf(err, "ingest: open workbook %s", path)
	}
	if len(f.Sheets) == 0 || len(f.Sheets[0].Rows) == 0 {
		return BirthAppendFile{}, nil
	}
	rows := f.Sheets[0].Rows

	cols := make(map[string]int)
	for i, cell := range rows[0].Cells {
		name := strings.TrimSpace(strings.TrimPrefix(cell.String(), bom))
		if _, ok := cols[name]; !ok {
			cols[name] = i
		}
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return BirthAppendFile{}, eris.Errorf("ingest: workbook %s missing columns %s", path, strings.Join(missing, ", "))
	}

	cell := func(row *xlsx.Row, name string) string {
		i := cols[name]
		if i >= len(row.Cells) {
			return ""
		}
		return row.Cells[i].String()
	}

	c := newCollector()
	for _, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return BirthAppendFile{}, eris.Wrap(err, "ingest: workbook cancelled")
		}
		if isBlank(row) {
			continue
		}
		c.add(appendRow{
			CustomerID: cell(row, ColCustomerID),
			ShopID:     cell(row, ColShopID),
			Month:      cell(row, ColMonth),
			Year:       cell(row, ColYear),
		})
	}
	return c.done("xlsx"), nil
}

func isBlank(row *xlsx.Row) bool {
	for _, c := range row.Cells {
		if strings.TrimSpace(c.String()) != "" {
			return false
		}
	}
	return true
}

// trimmedReader trims every field and pads or cuts records to the header width.
type trimmedReader struct {
	r     *csv.Reader
	width int
}

func (t *trimmedReader) Read() ([]string, error) {
	rec, err := t.r.Read()
	if err != nil {
		return nil, err
	}
	if t.width == 0 {
		t.width = len(rec)
		if len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], bom)
		}
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	for len(rec) < t.width {
		rec = append(rec, "")
	}
	return rec[:t.width], nil
}
