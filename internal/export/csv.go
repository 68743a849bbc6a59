package export

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/roster-cli/internal/model"
)

// CSVWriter writes one CSV file per mailing list into Dir.
type CSVWriter struct {
	Dir string
}

// NewCSVWriter creates a CSVWriter for dir.
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{Dir: dir}
}

// WriteLists implements ListSink.
func (w *CSVWriter) WriteLists(ctx context.Context, lists []model.MailingList) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "export: create dir %s", w.Dir)
	}

	paths := make([]string, 0, len(lists))
	for _, l := range lists {
		if err := ctx.Err(); err != nil {
			return paths, eris.Wrap(err, "export: csv cancelled")
		}

		data, err := csvutil.Marshal(ListRows(l))
		if err != nil {
			return paths, eris.Wrapf(err, "export: encode %s", l.Name())
		}

		path := filepath.Join(w.Dir, FileName(l, ".csv"))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, eris.Wrapf(err, "export: write %s", path)
		}
		paths = append(paths, path)
	}

	zap.L().Info("export: csv lists written", zap.String("dir", w.Dir), zap.Int("files", len(paths)))
	return paths, nil
}

// WriteCustomersCSV writes customers with a header row to out.
func WriteCustomersCSV(out io.Writer, customers []model.Customer) error {
	cw := csv.NewWriter(out)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(CustomerRow{}); err != nil {
		return eris.Wrap(err, "export: encode header")
	}
	for _, row := range CustomerRows(customers) {
		if err := enc.Encode(row); err != nil {
			return eris.Wrapf(err, "export: encode customer %s", row.CustomerID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}
