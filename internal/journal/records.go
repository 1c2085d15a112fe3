package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pixelmill/internal/item"
)

// ItemStatus classifies the outcome of one processed item.
type ItemStatus string

const (
	StatusOptimized ItemStatus = "optimized"
	StatusSkipped   ItemStatus = "skipped"
	StatusFailed    ItemStatus = "failed"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Items      int
	Failures   int
}

// ItemRecord is one processed item inside a run.
type ItemRecord struct {
	RunID    int64
	ItemID   string
	Filename string
	Output   string
	Status   ItemStatus
	BytesIn  int64
	BytesOut int64
	Warnings string
	Errors   string
}

// BeginRun opens a new run row and returns its identifier.
func (s *Store) BeginRun(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO runs (started_at) VALUES (?)`,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("begin run: %w", err)
	}
	return res.LastInsertId()
}

// RecordItem stores the outcome of one item. The original and result items
// supply the filenames and sizes; result may be nil for skipped or failed
// items.
func (s *Store) RecordItem(ctx context.Context, runID int64, original, result *item.Item, status ItemStatus) error {
	output := ""
	var bytesOut int64
	if result != nil {
		output = result.Filename
		bytesOut = int64(len(result.Data))
	}
	diagSource := original
	if result != nil {
		diagSource = result
	}
	rec := ItemRecord{
		RunID:    runID,
		ItemID:   original.ID,
		Filename: original.Filename,
		Output:   output,
		Status:   status,
		BytesIn:  int64(len(original.Data)),
		BytesOut: bytesOut,
		Warnings: flattenIssues(diagSource.Warnings),
		Errors:   flattenIssues(diagSource.Errors),
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO run_items (run_id, item_id, filename, output, status, bytes_in, bytes_out, warnings, errors, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.ItemID, rec.Filename, rec.Output, string(rec.Status),
		rec.BytesIn, rec.BytesOut, rec.Warnings, rec.Errors,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record item: %w", err)
	}
	return nil
}

// FinishRun stamps the run's completion time and aggregate counts.
func (s *Store) FinishRun(ctx context.Context, runID int64) error {
	err := s.execWithoutResultRetry(ctx,
		`UPDATE runs SET
			finished_at = ?,
			items = (SELECT COUNT(*) FROM run_items WHERE run_id = ?),
			failures = (SELECT COUNT(*) FROM run_items WHERE run_id = ? AND status = ?)
		 WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), runID, runID, string(StatusFailed), runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecentRuns lists the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = 10
	}
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at, ''), items, failures
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  string
			finished string
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.Items, &run.Failures); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunItems lists the items recorded for one run in insertion order.
func (s *Store) RunItems(ctx context.Context, runID int64) ([]ItemRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, item_id, filename, output, status, bytes_in, bytes_out, warnings, errors
		 FROM run_items WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run items: %w", err)
	}
	defer rows.Close()

	var records []ItemRecord
	for rows.Next() {
		var (
			rec    ItemRecord
			status string
		)
		if err := rows.Scan(&rec.RunID, &rec.ItemID, &rec.Filename, &rec.Output, &status,
			&rec.BytesIn, &rec.BytesOut, &rec.Warnings, &rec.Errors); err != nil {
			return nil, fmt.Errorf("scan run item: %w", err)
		}
		rec.Status = ItemStatus(status)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func flattenIssues(issues []item.Issue) string {
	if len(issues) == 0 {
		return ""
	}
	parts := make([]string, len(issues))
	for i, is := range issues {
		parts[i] = is.String()
	}
	return strings.Join(parts, "; ")
}
