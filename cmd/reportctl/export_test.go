package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mind-engage/growthreport/internal/logger"
	"github.com/mind-engage/growthreport/internal/rewards"

	"github.com/spf13/cobra"
)

func TestRunExportWritesFilesAndReportsFailures(t *testing.T) {
	out := t.TempDir()
	newSource = func(string, *logger.Logger) rewards.Source {
		return rewards.SourceFunc(func(_ context.Context, code, _ string) rewards.Result {
			if code == "BAD99" {
				return rewards.Failed("API 호출 실패 (상태 코드: 404)")
			}
			return rewards.OK(rewards.Snapshot{Name: "Kim", Cookie: 12, UsedCookie: 3, ChocoChips: 1})
		})
	}
	exportKey, exportCodes, exportOut = "key", "AB12, BAD99", out
	exportConfig, exportHTML, exportFont, exportDPI = "", true, "", 30

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())

	err := runExport(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("want partial failure, got %v", err)
	}
	text := buf.String()
	if !strings.Contains(text, "FAIL     BAD99") {
		t.Fatalf("missing failure line:\n%s", text)
	}
	if _, err := os.Stat(filepath.Join(out, "preview.html")); err != nil {
		t.Fatalf("preview: %v", err)
	}
	pdfs, _ := filepath.Glob(filepath.Join(out, "reports", "*", "AB12", "Kim_report_*.pdf"))
	if len(pdfs) != 1 {
		t.Fatalf("want one pdf for AB12, got %v", pdfs)
	}
	if dirs, _ := filepath.Glob(filepath.Join(out, "reports", "*", "BAD99")); len(dirs) != 0 {
		t.Fatalf("failed student should leave no files, got %v", dirs)
	}
}
