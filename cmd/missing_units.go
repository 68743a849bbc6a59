package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/roster-cli/internal/export"
	"github.com/sells-group/roster-cli/internal/pipeline"
	"github.com/sells-group/roster-cli/internal/store"
)

var (
	missingUnitsOut  string
	missingUnitsShop string
)

var missingUnitsCmd = &cobra.Command{
	Use:   "missing-units",
	Short: "Export customers whose address is missing an apartment or suite number",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if missingUnitsOut == "-" {
			_, err = exportMissingUnits(ctx, st, missingUnitsShop, os.Stdout)
			return err
		}

		if err := os.MkdirAll(filepath.Dir(missingUnitsOut), 0o755); err != nil {
			return eris.Wrap(err, "create output dir")
		}
		f, err := os.Create(missingUnitsOut)
		if err != nil {
			return eris.Wrapf(err, "create %s", missingUnitsOut)
		}
		defer f.Close() //nolint:errcheck

		_, err = exportMissingUnits(ctx, st, missingUnitsShop, f)
		return err
	},
}

func init() {
	missingUnitsCmd.Flags().StringVar(&missingUnitsOut, "out", "missing-units.csv", "output CSV path (- for stdout)")
	missingUnitsCmd.Flags().StringVar(&missingUnitsShop, "shop", "", "limit the export to one shop id")
	rootCmd.AddCommand(missingUnitsCmd)
}

func exportMissingUnits(ctx context.Context, repo store.CustomerRepository, shopID string, out io.Writer) (int, error) {
	records, err := repo.FetchCustomers(ctx, shopID)
	if err != nil {
		return 0, eris.Wrap(err, "fetch customers")
	}

	records, _ = pipeline.NormalizeNames(records)
	missing := pipeline.MissingUnits(records, pipeline.ValidityRulesFromConfig(cfg.Pipeline.Validity))
	if err := export.WriteCustomersCSV(out, missing); err != nil {
		return 0, eris.Wrap(err, "write missing units")
	}

	zap.L().Info("missing units exported",
		zap.Int("customers", len(records)),
		zap.Int("missing_units", len(missing)),
	)
	return len(missing), nil
}
