package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/GiGiDKR/tokenwatch/internal/model"
	"github.com/GiGiDKR/tokenwatch/internal/source"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSaveAndLoadEntries(t *testing.T) {
	c := openTestCache(t)

	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	entries := []source.UsageEntry{
		{MessageID: "msg-1", Timestamp: ts, Tokens: 100},
		{MessageID: "msg-2", Timestamp: ts.Add(time.Minute), Tokens: 250},
	}

	if err := c.SaveFileEntries("/tmp/a.jsonl", 123, 456, entries); err != nil {
		t.Fatalf("SaveFileEntries: %v", err)
	}

	tracked, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatalf("GetTrackedFiles: %v", err)
	}
	fi, ok := tracked["/tmp/a.jsonl"]
	if !ok {
		t.Fatal("file not tracked after save")
	}
	if fi.MtimeNs != 123 || fi.SizeBytes != 456 {
		t.Fatalf("tracked info = %+v, want mtime 123 size 456", fi)
	}

	loaded, err := c.LoadAllEntries()
	if err != nil {
		t.Fatalf("LoadAllEntries: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d entries, want 2", len(loaded))
	}
	if loaded[0].MessageID != "msg-1" || loaded[0].Tokens != 100 {
		t.Fatalf("first entry = %+v", loaded[0])
	}
}

func TestSaveFileEntriesReplaces(t *testing.T) {
	c := openTestCache(t)

	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	first := []source.UsageEntry{{MessageID: "msg-1", Timestamp: ts, Tokens: 100}}
	if err := c.SaveFileEntries("/tmp/a.jsonl", 1, 10, first); err != nil {
		t.Fatalf("SaveFileEntries: %v", err)
	}

	second := []source.UsageEntry{{MessageID: "msg-2", Timestamp: ts.Add(time.Hour), Tokens: 900}}
	if err := c.SaveFileEntries("/tmp/a.jsonl", 2, 20, second); err != nil {
		t.Fatalf("SaveFileEntries (resave): %v", err)
	}

	loaded, err := c.LoadAllEntries()
	if err != nil {
		t.Fatalf("LoadAllEntries: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded %d entries after resave, want 1", len(loaded))
	}
	if loaded[0].MessageID != "msg-2" {
		t.Fatalf("entry = %+v, want msg-2", loaded[0])
	}
}

func TestDeleteFileCascades(t *testing.T) {
	c := openTestCache(t)

	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	entries := []source.UsageEntry{{MessageID: "msg-1", Timestamp: ts, Tokens: 100}}
	if err := c.SaveFileEntries("/tmp/a.jsonl", 1, 10, entries); err != nil {
		t.Fatalf("SaveFileEntries: %v", err)
	}

	if err := c.DeleteFile("/tmp/a.jsonl"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}

	loaded, err := c.LoadAllEntries()
	if err != nil {
		t.Fatalf("LoadAllEntries: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("loaded %d entries after delete, want 0", len(loaded))
	}
}

func TestReportHistoryPagination(t *testing.T) {
	c := openTestCache(t)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		r := model.Report{
			Status:     model.StatusActive,
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			Plan:       model.PlanPro,
			TokensUsed: int64(1000 * (i + 1)),
			TokenLimit: 7000,
		}
		if err := c.AppendReport(r); err != nil {
			t.Fatalf("AppendReport %d: %v", i, err)
		}
	}

	hp, err := c.History(1, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if hp.TotalItems != 5 {
		t.Fatalf("TotalItems = %d, want 5", hp.TotalItems)
	}
	if hp.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", hp.TotalPages)
	}
	if len(hp.Reports) != 2 {
		t.Fatalf("page length = %d, want 2", len(hp.Reports))
	}
	// Newest first.
	if hp.Reports[0].TokensUsed != 5000 {
		t.Fatalf("first report tokens = %d, want 5000", hp.Reports[0].TokensUsed)
	}

	last, err := c.History(3, 2)
	if err != nil {
		t.Fatalf("History page 3: %v", err)
	}
	if len(last.Reports) != 1 {
		t.Fatalf("last page length = %d, want 1", len(last.Reports))
	}
	if last.Reports[0].TokensUsed != 1000 {
		t.Fatalf("oldest report tokens = %d, want 1000", last.Reports[0].TokensUsed)
	}
}

func TestPruneReports(t *testing.T) {
	c := openTestCache(t)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		r := model.Report{
			Status:     model.StatusActive,
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			Plan:       model.PlanPro,
			TokensUsed: int64(i),
			TokenLimit: 7000,
		}
		if err := c.AppendReport(r); err != nil {
			t.Fatalf("AppendReport %d: %v", i, err)
		}
	}

	if err := c.PruneReports(3); err != nil {
		t.Fatalf("PruneReports: %v", err)
	}

	count, err := c.ReportCount()
	if err != nil {
		t.Fatalf("ReportCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("ReportCount = %d, want 3", count)
	}

	hp, err := c.History(1, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	// The newest three survive.
	if hp.Reports[0].TokensUsed != 9 {
		t.Fatalf("newest surviving tokens = %d, want 9", hp.Reports[0].TokensUsed)
	}
}
