package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mind-engage/growthreport/internal/export"
	"github.com/mind-engage/growthreport/internal/layout"
	"github.com/mind-engage/growthreport/internal/logger"
	"github.com/mind-engage/growthreport/internal/report"
	"github.com/mind-engage/growthreport/internal/rewards"
	"github.com/mind-engage/growthreport/internal/storage"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export one PDF per student",
	Long: `Fetch each student's rewards and write <name>_report_<date>.pdf under
--out/reports/<key fingerprint>/<code>/. Students are processed one at a
time, in the given order; a student whose data cannot be loaded is reported and skipped.

With --html a single preview page for the whole batch is also written to
--out/preview.html.`,
	RunE: runExport,
}

var (
	exportKey     string
	exportCodes   string
	exportOut     string
	exportConfig  string
	exportHTML    bool
	exportBaseURL string
	exportFont    string
	exportDPI     float64
	exportVerbose bool
)

// newSource is replaced in tests.
var newSource = func(baseURL string, log *logger.Logger) rewards.Source {
	return rewards.NewClient(baseURL, rewards.WithLogger(log))
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportKey, "key", os.Getenv("REWARDS_API_KEY"), "rewards API key")
	f.StringVar(&exportCodes, "codes", "", "comma separated student codes")
	f.StringVarP(&exportOut, "out", "o", ".", "output directory")
	f.StringVar(&exportConfig, "config", "", "report configuration YAML (default: built-in)")
	f.BoolVar(&exportHTML, "html", false, "also write an HTML preview of the batch")
	f.StringVar(&exportBaseURL, "base-url", rewards.DefaultBaseURL, "rewards API base URL")
	f.StringVar(&exportFont, "font", os.Getenv("FONT_PATH"), "TrueType font with Hangul coverage")
	f.Float64Var(&exportDPI, "dpi", layout.DefaultExportDPI, "export density")
	f.BoolVarP(&exportVerbose, "verbose", "v", false, "debug logging")
	_ = exportCmd.MarkFlagRequired("codes")
}

func runExport(cmd *cobra.Command, _ []string) error {
	log := logger.Nop()
	if exportVerbose {
		l, err := logger.New("offline")
		if err != nil {
			return err
		}
		defer l.Sync()
		log = l
	}

	cfg, err := report.LoadDefaults(exportConfig)
	if err != nil {
		return err
	}
	ts, err := layout.NewTypesetter(exportFont, layout.WithTypesetterLogger(log))
	if err != nil {
		return err
	}
	blobs, err := storage.NewFSStore(exportOut)
	if err != nil {
		return err
	}
	svc := export.NewService(
		newSource(exportBaseURL, log),
		report.NewBuilder(report.NewBadgeArchive()),
		export.NewStager(),
		layout.NewPaginator(ts, layout.WithExportDPI(exportDPI), layout.WithPaginatorLogger(log)),
		blobs,
		export.WithLogger(log),
	)
	req := export.Request{APIKey: exportKey, Codes: export.ParseCodes(exportCodes), Config: cfg}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if exportHTML {
		path := filepath.Join(exportOut, "preview.html")
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "create preview")
		}
		err = svc.Preview(ctx, req, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return errors.Wrap(err, "write preview")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "preview  %s\n", path)
	}

	arts, err := svc.ExportBatch(ctx, req)
	if err != nil {
		return err
	}
	failed := 0
	out := cmd.OutOrStdout()
	for _, a := range arts {
		switch {
		case a.Error != "":
			failed++
			fmt.Fprintf(out, "FAIL     %s: %s\n", a.StudentCode, a.Error)
		case a.Overflow:
			fmt.Fprintf(out, "OVERFLOW %s -> %s (%d pages)\n", a.StudentCode, filepath.Join(exportOut, a.Key), a.Pages)
		default:
			fmt.Fprintf(out, "OK       %s -> %s\n", a.StudentCode, filepath.Join(exportOut, a.Key))
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d students failed", failed, len(arts))
	}
	return nil
}
