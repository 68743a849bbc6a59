package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/roster-cli/internal/ingest"
	"github.com/sells-group/roster-cli/internal/store"
)

var bdayAppendPath string

var bdayAppendCmd = &cobra.Command{
	Use:   "bday-append",
	Short: "Apply a vendor birth-month append file to stored customers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		_, err = applyBirthAppend(ctx, st, bdayAppendPath)
		return err
	},
}

func init() {
	bdayAppendCmd.Flags().StringVar(&bdayAppendPath, "file", "", "path to the append file, .csv or .xlsx (required)")
	_ = bdayAppendCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(bdayAppendCmd)
}

func applyBirthAppend(ctx context.Context, st store.Store, path string) (int64, error) {
	parsed, err := ingest.ReadBirthAppendFile(ctx, path)
	if err != nil {
		return 0, err
	}

	n, err := st.ApplyBirthAppend(ctx, parsed.Rows)
	if err != nil {
		return 0, eris.Wrap(err, "apply birth append")
	}

	zap.L().Info("birth append applied",
		zap.String("file", path),
		zap.Int("rows", len(parsed.Rows)),
		zap.Int("skipped", parsed.Skipped),
		zap.Int64("updated", n),
	)
	return n, nil
}
