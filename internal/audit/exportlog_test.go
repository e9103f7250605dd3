package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mind-engage/growthreport/internal/db"
)

func TestExportLogAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	h, err := db.Open(ctx, db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer h.Close()

	log := NewExportLog(h)
	if err := log.Append(ctx, Entry{StudentCode: "ABCD1", Filename: "a.pdf", Pages: 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := log.Append(ctx, Entry{StudentCode: "EFGH2", Pages: 3, Overflow: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := log.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].StudentCode != "EFGH2" || !got[0].Overflow || got[1].Filename != "a.pdf" {
		t.Fatalf("entries = %+v", got)
	}
}

func TestNilExportLogDrops(t *testing.T) {
	var log *ExportLog
	if err := log.Append(context.Background(), Entry{StudentCode: "X"}); err != nil {
		t.Fatalf("nil log: %v", err)
	}
}
