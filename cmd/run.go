package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/roster-cli/internal/export"
	"github.com/sells-group/roster-cli/internal/pipeline"
	"github.com/sells-group/roster-cli/internal/resilience"
	"github.com/sells-group/roster-cli/internal/store"
)

// runParams holds the flags of the run command.
type runParams struct {
	Month   int
	ShopID  string
	Format  string
	Out     string
	Persist bool
	Upload  bool
	Summary string
}

var runFlags runParams

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Select customers and write the mailing lists for one month",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		p := runFlags
		if p.Format == "" {
			p.Format = cfg.Export.Format
		}
		if p.Out == "" {
			p.Out = cfg.Export.Dir
		}

		_, err = runMonthly(ctx, st, p)
		return err
	},
}

func init() {
	runCmd.Flags().IntVar(&runFlags.Month, "month", 0, "target mailing month 1-12 (required)")
	runCmd.Flags().StringVar(&runFlags.ShopID, "shop", "", "limit the run to one shop id")
	runCmd.Flags().StringVar(&runFlags.Format, "format", "", "list file format: csv or xlsx (default from config)")
	runCmd.Flags().StringVar(&runFlags.Out, "out", "", "output directory (default from config)")
	runCmd.Flags().BoolVar(&runFlags.Persist, "persist", false, "save shadow months and list entries to the store")
	runCmd.Flags().BoolVar(&runFlags.Upload, "upload", false, "upload the list files to the mail-house FTP drop")
	runCmd.Flags().StringVar(&runFlags.Summary, "summary", "", "write a YAML run summary to this file (- for stdout)")
	_ = runCmd.MarkFlagRequired("month")
	rootCmd.AddCommand(runCmd)
}

// runMonthly runs the single-month pipeline and hands the lists to the
// configured sinks.
func runMonthly(ctx context.Context, st store.Store, p runParams) (*pipeline.Result, error) {
	opts := pipeline.OptionsFromConfig(cfg.Pipeline)
	opts.ShopID = p.ShopID

	res, err := pipeline.NewRunner(st, st, opts).RunMonth(ctx, p.Month)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline run")
	}

	sink, err := newListSink(p.Format, p.Out, p.Month)
	if err != nil {
		return nil, err
	}
	paths, err := sink.WriteLists(ctx, res.Lists)
	if err != nil {
		return nil, eris.Wrap(err, "write lists")
	}

	if p.Persist {
		if err := persistRun(ctx, st, res); err != nil {
			return nil, err
		}
	}

	if p.Upload {
		if err := uploadLists(ctx, paths); err != nil {
			return nil, err
		}
	}

	if p.Summary != "" {
		if err := writeSummary(p.Summary, res, paths); err != nil {
			return nil, err
		}
	}

	zap.L().Info("run complete",
		zap.String("run_id", res.RunID),
		zap.Int("month", res.Month),
		zap.Int("lists", len(res.Lists)),
		zap.Int("allocated", res.Stats.Allocated),
		zap.Int("files", len(paths)),
	)
	return res, nil
}

func newListSink(format, out string, month int) (export.ListSink, error) {
	switch format {
	case "csv":
		return export.NewCSVWriter(out), nil
	case "xlsx":
		return export.NewXLSXWriter(filepath.Join(out, fmt.Sprintf("mailing-lists-%02d.xlsx", month))), nil
	default:
		return nil, eris.Errorf("unsupported list format: %s", format)
	}
}

func persistRun(ctx context.Context, st store.Store, res *pipeline.Result) error {
	shadows, err := st.SaveShadowMonths(ctx, res.RunID, res.Customers)
	if err != nil {
		return eris.Wrap(err, "persist shadow months")
	}
	entries, err := st.SaveLists(ctx, res.RunID, res.Lists)
	if err != nil {
		return eris.Wrap(err, "persist lists")
	}
	zap.L().Info("run persisted",
		zap.String("run_id", res.RunID),
		zap.Int64("shadow_months", shadows),
		zap.Int64("list_entries", entries),
	)
	return nil
}

func uploadLists(ctx context.Context, paths []string) error {
	if cfg.FTP.URL == "" {
		return eris.New("ftp url is required for --upload (ROSTER_FTP_URL)")
	}
	up := export.NewFTPUploader(export.FTPOptions{
		URL:      cfg.FTP.URL,
		Username: cfg.FTP.Username,
		Password: cfg.FTP.Password,
		Timeout:  time.Duration(cfg.FTP.TimeoutSecs) * time.Second,
		Retry:    resilience.FromConfig(cfg.Retry),
	})
	return eris.Wrap(up.Upload(ctx, paths), "upload lists")
}

// runSummary is the YAML document written by --summary.
type runSummary struct {
	RunID string         `yaml:"run_id"`
	Now   time.Time      `yaml:"now"`
	Month int            `yaml:"month"`
	Lists []listSummary  `yaml:"lists"`
	Files []string       `yaml:"files,omitempty"`
	Stats pipeline.Stats `yaml:"stats"`
}

type listSummary struct {
	Name      string `yaml:"name"`
	ShopID    string `yaml:"shop_id"`
	Customers int    `yaml:"customers"`
}

func newRunSummary(res *pipeline.Result, paths []string) runSummary {
	s := runSummary{RunID: res.RunID, Now: res.Now, Month: res.Month, Files: paths, Stats: res.Stats}
	for _, l := range res.Lists {
		s.Lists = append(s.Lists, listSummary{Name: l.Name(), ShopID: l.Key.ShopID, Customers: l.Len()})
	}
	return s
}

func writeSummary(path string, res *pipeline.Result, paths []string) error {
	data, err := yaml.Marshal(newRunSummary(res, paths))
	if err != nil {
		return eris.Wrap(err, "marshal summary")
	}
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return eris.Wrap(err, "write summary")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "write summary %s", path)
}
