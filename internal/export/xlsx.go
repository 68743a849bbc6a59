package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/roster-cli/internal/model"
)

var listHeader = []string{
	"List", "Position", "WSID", "CID", "Shop Name", "Software", "AuthDate", "MBDayYr",
	"MBDayMo", "TBDayMo", "Old First", "Old Last", "First", "Last", "Address", "City", "St", "Zip",
}

// XLSXWriter writes every mailing list to one workbook, a sheet per list.
type XLSXWriter struct {
	Path string
}

// NewXLSXWriter creates an XLSXWriter saving to path.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{Path: path}
}

// WriteLists implements ListSink.
func (w *XLSXWriter) WriteLists(ctx context.Context, lists []model.MailingList) ([]string, error) {
	f := xlsx.NewFile()
	for _, l := range lists {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "export: xlsx cancelled")
		}

		sheet, err := f.AddSheet(SheetName(l))
		if err != nil {
			return nil, eris.Wrapf(err, "export: add sheet for %s", l.Name())
		}
		addStringRow(sheet, listHeader)
		for _, r := range ListRows(l) {
			row := sheet.AddRow()
			row.AddCell().SetString(r.List)
			row.AddCell().SetInt(r.Position)
			for _, v := range []string{r.ShopID, r.CustomerID, r.ShopName, r.Software, r.AuthDate, r.BirthYear} {
				row.AddCell().SetString(v)
			}
			addMonthCell(row, r.EventMonth)
			addMonthCell(row, r.ShadowMonth)
			for _, v := range []string{r.RawFirstName, r.RawLastName, r.FirstName, r.LastName, r.Address, r.City, r.State, r.Zip} {
				row.AddCell().SetString(v)
			}
		}
	}

	if err := save(f, w.Path); err != nil {
		return nil, err
	}
	zap.L().Info("export: xlsx lists written", zap.String("path", w.Path), zap.Int("sheets", len(lists)))
	return []string{w.Path}, nil
}

// XLSXGridWriter saves a report grid as a workbook with a header row.
type XLSXGridWriter struct {
	Path   string
	Header []any
}

// NewXLSXGridWriter creates an XLSXGridWriter saving to path.
func NewXLSXGridWriter(path string, header []any) *XLSXGridWriter {
	return &XLSXGridWriter{Path: path, Header: header}
}

// WriteGrid implements GridSink. The sheet is named after the range's sheet
// part; rows follow the header.
func (w *XLSXGridWriter) WriteGrid(ctx context.Context, rng string, rows [][]any) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "export: xlsx grid cancelled")
	}

	name := "Sheet1"
	if i := strings.Index(rng, "!"); i > 0 {
		name = rng[:i]
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", name)
	}
	if len(w.Header) > 0 {
		addValueRow(sheet, w.Header)
	}
	for _, r := range rows {
		addValueRow(sheet, r)
	}
	return save(f, w.Path)
}

func addStringRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func addValueRow(sheet *xlsx.Sheet, values []any) {
	row := sheet.AddRow()
	for _, v := range values {
		cell := row.AddCell()
		if v != nil {
			cell.SetValue(v)
		}
	}
}

func addMonthCell(row *xlsx.Row, m int) {
	cell := row.AddCell()
	if model.ValidMonth(m) {
		cell.SetInt(m)
	}
}

func save(f *xlsx.File, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "export: create dir %s", dir)
		}
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
