// Package export writes mailing lists and report grids to CSV and XLSX
// files, Google Sheets and the mail-house FTP drop.
package export

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sells-group/roster-cli/internal/model"
)

// ListSink receives the mailing lists of a run and returns the paths of any
// files it produced.
type ListSink interface {
	WriteLists(ctx context.Context, lists []model.MailingList) ([]string, error)
}

// GridSink receives a report grid anchored at an A1 range.
type GridSink interface {
	WriteGrid(ctx context.Context, rng string, rows [][]any) error
}

const dateLayout = "2006-01-02"

// CustomerRow is the flat file layout of one customer, with the column
// titles the mail house expects.
type CustomerRow struct {
	ShopID       string `csv:"WSID"`
	CustomerID   string `csv:"CID"`
	ShopName     string `csv:"Shop Name"`
	Software     string `csv:"Software"`
	AuthDate     string `csv:"AuthDate"`
	BirthYear    string `csv:"MBDayYr"`
	EventMonth   int    `csv:"MBDayMo,omitempty"`
	ShadowMonth  int    `csv:"TBDayMo,omitempty"`
	RawFirstName string `csv:"Old First"`
	RawLastName  string `csv:"Old Last"`
	FirstName    string `csv:"First"`
	LastName     string `csv:"Last"`
	Address      string `csv:"Address"`
	City         string `csv:"City"`
	State        string `csv:"St"`
	Zip          string `csv:"Zip"`
}

// ListRow is a CustomerRow tagged with its list and position.
type ListRow struct {
	List     string `csv:"List"`
	Position int    `csv:"Position"`
	CustomerRow
}

// NewCustomerRow flattens a customer.
func NewCustomerRow(c model.Customer) CustomerRow {
	row := CustomerRow{
		ShopID:       c.ShopID,
		CustomerID:   c.ID,
		ShopName:     c.ShopName,
		Software:     c.Software,
		BirthYear:    c.BirthYear,
		EventMonth:   c.EventMonth,
		ShadowMonth:  c.ShadowMonth,
		RawFirstName: c.RawFirstName,
		RawLastName:  c.RawLastName,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Address:      c.Address,
		City:         c.City,
		State:        c.State,
		Zip:          c.Zip,
	}
	if c.EventDate != nil {
		row.AuthDate = c.EventDate.Format(dateLayout)
	}
	return row
}

// CustomerRows flattens customers in order.
func CustomerRows(customers []model.Customer) []CustomerRow {
	rows := make([]CustomerRow, len(customers))
	for i, c := range customers {
		rows[i] = NewCustomerRow(c)
	}
	return rows
}

// ListRows flattens a list; positions start at 1.
func ListRows(l model.MailingList) []ListRow {
	name := l.Name()
	rows := make([]ListRow, len(l.Customers))
	for i, c := range l.Customers {
		rows[i] = ListRow{List: name, Position: i + 1, CustomerRow: NewCustomerRow(c)}
	}
	return rows
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName returns the file name for a list, e.g. "10_BDayList_3.csv".
func FileName(l model.MailingList, ext string) string {
	base := fmt.Sprintf("%s_%s", l.Key.ShopID, l.Name())
	return strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "_") + ext
}

// SheetName returns a worksheet name for a list, at most 31 characters.
func SheetName(l model.MailingList) string {
	name := fmt.Sprintf("%s %s", l.Key.ShopID, l.Name())
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
