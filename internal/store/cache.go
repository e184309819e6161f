// Package store provides a SQLite-backed cache for parsed usage entries
// and an append-only history of evaluation reports.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GiGiDKR/tokenwatch/internal/model"
	"github.com/GiGiDKR/tokenwatch/internal/source"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed storage for parsed entries and report history.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFileEntries stores the parsed entries for one file and its tracking
// info, replacing anything previously recorded for that path.
func (c *Cache) SaveFileEntries(path string, mtimeNs, sizeBytes int64, entries []source.UsageEntry) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes, parsed_at)
		VALUES (?, ?, ?, ?)`, path, mtimeNs, sizeBytes, now)
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM entries WHERE file_path = ?", path); err != nil {
		return err
	}

	for _, e := range entries {
		_, err = tx.Exec(`INSERT OR REPLACE INTO entries (file_path, message_id, timestamp, tokens)
			VALUES (?, ?, ?, ?)`,
			path, e.MessageID, e.Timestamp.UTC().Format(time.RFC3339Nano), e.Tokens,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadAllEntries reads every cached usage entry, ordered by timestamp.
func (c *Cache) LoadAllEntries() ([]source.UsageEntry, error) {
	rows, err := c.db.Query("SELECT message_id, timestamp, tokens FROM entries ORDER BY timestamp")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []source.UsageEntry
	for rows.Next() {
		var e source.UsageEntry
		var ts string
		if err := rows.Scan(&e.MessageID, &ts, &e.Tokens); err != nil {
			return nil, err
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteFile removes a file's tracking entry and its cached entries.
func (c *Cache) DeleteFile(path string) error {
	_, err := c.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", path)
	return err
}

// AppendReport stores one evaluation report in the history table.
func (c *Cache) AppendReport(r model.Report) error {
	boolInt := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}

	var predicted, reset sql.NullString
	if !r.Prediction.PredictedEndTime.IsZero() {
		predicted = sql.NullString{String: r.Prediction.PredictedEndTime.UTC().Format(time.RFC3339), Valid: true}
	}
	if !r.ResetTime.IsZero() {
		reset = sql.NullString{String: r.ResetTime.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err := c.db.Exec(`INSERT INTO reports
		(timestamp, status, plan, tokens_used, token_limit, tokens_left,
		 usage_percent, burn_rate_per_min, auto_switched, predicted_end_time, reset_time, will_exhaust)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Timestamp.UTC().Format(time.RFC3339), string(r.Status), string(r.Plan),
		r.TokensUsed, r.TokenLimit, r.TokensLeft,
		r.UsagePercent, r.BurnRatePerMin, boolInt(r.PlanAutoSwitched),
		predicted, reset, boolInt(r.Prediction.WillExhaustBeforeReset),
	)
	return err
}

// HistoryPage is one page of report history, newest first.
type HistoryPage struct {
	Reports    []model.Report
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// History returns a page of stored reports, newest first. page is 1-based.
func (c *Cache) History(page, pageSize int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	var total int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&total); err != nil {
		return nil, err
	}

	rows, err := c.db.Query(`SELECT timestamp, status, plan, tokens_used, token_limit, tokens_left,
		usage_percent, burn_rate_per_min, auto_switched, predicted_end_time, reset_time, will_exhaust
		FROM reports ORDER BY id DESC LIMIT ? OFFSET ?`,
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	hp := &HistoryPage{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	for rows.Next() {
		var r model.Report
		var ts, status, plan string
		var autoSwitched, willExhaust int
		var predicted, reset sql.NullString

		err := rows.Scan(&ts, &status, &plan, &r.TokensUsed, &r.TokenLimit, &r.TokensLeft,
			&r.UsagePercent, &r.BurnRatePerMin, &autoSwitched, &predicted, &reset, &willExhaust)
		if err != nil {
			return nil, err
		}

		r.Timestamp, _ = time.Parse(time.RFC3339, ts)
		r.Status = model.Status(status)
		r.Plan = model.Plan(plan)
		r.PlanAutoSwitched = autoSwitched != 0
		r.Prediction.WillExhaustBeforeReset = willExhaust != 0
		if predicted.Valid {
			r.Prediction.PredictedEndTime, _ = time.Parse(time.RFC3339, predicted.String)
		}
		if reset.Valid {
			r.ResetTime, _ = time.Parse(time.RFC3339, reset.String)
		}
		hp.Reports = append(hp.Reports, r)
	}
	return hp, rows.Err()
}

// ReportCount returns the number of stored reports.
func (c *Cache) ReportCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&count)
	return count, err
}

// PruneReports deletes all but the newest keep reports.
func (c *Cache) PruneReports(keep int) error {
	if keep < 1 {
		return nil
	}
	_, err := c.db.Exec(`DELETE FROM reports WHERE id NOT IN
		(SELECT id FROM reports ORDER BY id DESC LIMIT ?)`, keep)
	return err
}
