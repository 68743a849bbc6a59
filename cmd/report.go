package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/roster-cli/internal/export"
	"github.com/sells-group/roster-cli/internal/pipeline"
	"github.com/sells-group/roster-cli/internal/report"
	"github.com/sells-group/roster-cli/internal/resilience"
	"github.com/sells-group/roster-cli/internal/store"
	"github.com/sells-group/roster-cli/pkg/google"
)

type reportParams struct {
	ShopID  string
	XLSX    string
	Persist bool
}

var reportFlags reportParams

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Allocate the full year and publish the per-shop counts grid",
	Long:  "Runs all twelve months with the yearly quota and writes one counts row per shop to Google Sheets, or to a workbook with --xlsx.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		sink, err := newGridSink(ctx, reportFlags.XLSX)
		if err != nil {
			return err
		}

		_, err = runReport(ctx, st, sink, reportFlags)
		return err
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFlags.ShopID, "shop", "", "limit the report to one shop id")
	reportCmd.Flags().StringVar(&reportFlags.XLSX, "xlsx", "", "write the grid to this workbook instead of Google Sheets")
	reportCmd.Flags().BoolVar(&reportFlags.Persist, "persist", false, "save assigned shadow months to the store")
	rootCmd.AddCommand(reportCmd)
}

// runReport runs the year pipeline and writes its counts grid to sink.
func runReport(ctx context.Context, st store.Store, sink export.GridSink, p reportParams) (*pipeline.Result, error) {
	opts := pipeline.OptionsFromConfig(cfg.Pipeline)
	opts.ShopID = p.ShopID

	res, err := pipeline.NewRunner(st, st, opts).RunYear(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline run")
	}

	rows := report.Grid(res.Counts)
	rng := report.RangeFor(cfg.Sheets.Sheet, cfg.Sheets.StartRow, len(rows))
	if err := sink.WriteGrid(ctx, rng, rows); err != nil {
		return nil, eris.Wrap(err, "write report")
	}

	if p.Persist {
		n, err := st.SaveShadowMonths(ctx, res.RunID, res.Customers)
		if err != nil {
			return nil, eris.Wrap(err, "persist shadow months")
		}
		zap.L().Info("shadow months persisted", zap.Int64("rows", n))
	}

	zap.L().Info("report complete",
		zap.String("run_id", res.RunID),
		zap.String("range", rng),
		zap.Int("shops", len(rows)),
		zap.Int("allocated", res.Stats.Allocated),
	)
	return res, nil
}

func newGridSink(ctx context.Context, xlsxPath string) (export.GridSink, error) {
	if xlsxPath != "" {
		return export.NewXLSXGridWriter(xlsxPath, report.Header), nil
	}
	if cfg.Sheets.SpreadsheetID == "" {
		return nil, eris.New("sheets spreadsheet id is required (ROSTER_SHEETS_SPREADSHEET_ID) or pass --xlsx")
	}

	var opts []google.Option
	if cfg.Sheets.CredentialsFile != "" {
		opts = append(opts, google.WithCredentialsFile(cfg.Sheets.CredentialsFile))
	}
	client, err := google.NewClient(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "init sheets client")
	}
	return export.NewSheetsSink(client, cfg.Sheets.SpreadsheetID, cfg.Sheets.RequestsPerSec, resilience.FromConfig(cfg.Retry)), nil
}
