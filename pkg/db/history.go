package db

import (
	"database/sql"
	"fmt"
	"time"
)

// RunRecord represents one sync run.
type RunRecord struct {
	ID            int64
	StartedAt     time.Time
	FinishedAt    time.Time
	Parsed        int
	Created       int
	Updated       int
	Skipped       int
	ImportVersion int
	DryRun        bool
}

// History manages sync-run history operations.
type History struct {
	conn *Connection
}

// NewHistory creates a new History instance.
func NewHistory(conn *Connection) *History {
	return &History{conn: conn}
}

// RecordRun records a completed sync run.
func (h *History) RecordRun(record RunRecord) error {
	query := `
		INSERT INTO sync_runs (started_at, finished_at, parsed, created, updated, skipped, import_version, dry_run)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	dryRun := 0
	if record.DryRun {
		dryRun = 1
	}

	_, err := h.conn.Exec(query,
		record.StartedAt.UTC().Format(time.RFC3339),
		record.FinishedAt.UTC().Format(time.RFC3339),
		record.Parsed,
		record.Created,
		record.Updated,
		record.Skipped,
		record.ImportVersion,
		dryRun,
	)
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}

	return nil
}

// Stats represents aggregate sync statistics.
type Stats struct {
	TotalRuns    int
	TotalCreated int
	TotalUpdated int
	TotalSkipped int
	LastRun      sql.NullString
}

// GetStats retrieves aggregate statistics over all recorded runs.
func (h *History) GetStats() (*Stats, error) {
	var stats Stats

	err := h.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(created), 0),
		       COALESCE(SUM(updated), 0),
		       COALESCE(SUM(skipped), 0)
		FROM sync_runs WHERE dry_run = 0
	`).Scan(&stats.TotalRuns, &stats.TotalCreated, &stats.TotalUpdated, &stats.TotalSkipped)
	if err != nil {
		return nil, fmt.Errorf("failed to get run totals: %w", err)
	}

	err = h.conn.QueryRow(`SELECT MAX(finished_at) FROM sync_runs WHERE dry_run = 0`).Scan(&stats.LastRun)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last run time: %w", err)
	}

	return &stats, nil
}

// GetRecentRuns retrieves the most recent runs, newest first.
func (h *History) GetRecentRuns(limit int) ([]RunRecord, error) {
	rows, err := h.conn.Query(`
		SELECT id, started_at, finished_at, parsed, created, updated, skipped, import_version, dry_run
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		var started, finished string
		var dryRun int

		if err := rows.Scan(
			&record.ID,
			&started,
			&finished,
			&record.Parsed,
			&record.Created,
			&record.Updated,
			&record.Skipped,
			&record.ImportVersion,
			&dryRun,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}

		record.StartedAt, _ = time.Parse(time.RFC3339, started)
		record.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		record.DryRun = dryRun != 0
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetMetadata retrieves a metadata value.
func (h *History) GetMetadata(key string) (string, error) {
	var value string
	err := h.conn.QueryRow(`SELECT value FROM sync_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}

	return value, nil
}

// SetMetadata sets a metadata value.
func (h *History) SetMetadata(key, value string) error {
	query := `
		INSERT INTO sync_metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := h.conn.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}

	return nil
}
