package export

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/roster-cli/internal/resilience"
	"github.com/sells-group/roster-cli/pkg/google"
)

// SheetsSink publishes report grids to a Google spreadsheet.
type SheetsSink struct {
	client        google.Client
	spreadsheetID string
	limiter       *rate.Limiter
	retry         resilience.RetryConfig
}

// NewSheetsSink creates a SheetsSink. requestsPerSec <= 0 disables rate
// limiting.
func NewSheetsSink(client google.Client, spreadsheetID string, requestsPerSec float64, retry resilience.RetryConfig) *SheetsSink {
	limit := rate.Inf
	if requestsPerSec > 0 {
		limit = rate.Limit(requestsPerSec)
	}
	return &SheetsSink{
		client:        client,
		spreadsheetID: spreadsheetID,
		limiter:       rate.NewLimiter(limit, 1),
		retry:         retry,
	}
}

// WriteGrid implements GridSink.
func (s *SheetsSink) WriteGrid(ctx context.Context, rng string, rows [][]any) error {
	if s.spreadsheetID == "" {
		return eris.New("export: sheets: no spreadsheet id configured")
	}

	cfg := s.retry
	cfg.OnRetry = resilience.RetryLogger("sheets", "update values")

	res, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*google.UpdateResult, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "export: sheets rate limit")
		}
		return s.client.UpdateValues(ctx, s.spreadsheetID, rng, rows)
	})
	if err != nil {
		return eris.Wrapf(err, "export: sheets write %s", rng)
	}

	zap.L().Info("export: sheets grid written",
		zap.String("range", res.UpdatedRange),
		zap.Int64("rows", res.UpdatedRows),
		zap.Int64("cells", res.UpdatedCells),
	)
	return nil
}
