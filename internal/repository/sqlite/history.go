// Package sqlite persists attendance history in the local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
)

// createdAtLayout sorts lexicographically in time order for UTC values.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

type historyRepository struct {
	db        *sql.DB
	retention time.Duration
}

// NewHistoryRepository creates a history repository. Entries older than retention
// are pruned whenever a new entry is recorded; zero keeps everything.
func NewHistoryRepository(db *sql.DB, retention time.Duration) attendance.HistoryRepository {
	return &historyRepository{db: db, retention: retention}
}

// Record implements attendance.HistoryRepository.
func (r *historyRepository) Record(ctx context.Context, e attendance.HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO attendance_history (id, work_date, source, clock_in_time, clock_out_time, min_clock_out_time, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.Date,
		e.Source,
		nullString(e.ClockInTime),
		nullString(e.ClockOutTime),
		nullString(e.MinClockOutTime),
		e.Message,
		e.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert attendance history: %w", err)
	}

	if r.retention > 0 {
		cutoff := e.CreatedAt.Add(-r.retention).UTC().Format(createdAtLayout)
		if _, err := tx.ExecContext(ctx, `DELETE FROM attendance_history WHERE created_at < ?`, cutoff); err != nil {
			return fmt.Errorf("failed to prune attendance history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListRecent implements attendance.HistoryRepository.
func (r *historyRepository) ListRecent(ctx context.Context, limit int) ([]attendance.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, work_date, source, clock_in_time, clock_out_time, min_clock_out_time, message, created_at
		FROM attendance_history
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance history: %w", err)
	}
	defer rows.Close()

	entries := []attendance.HistoryEntry{}
	for rows.Next() {
		var (
			e                 attendance.HistoryEntry
			clockIn, clockOut sql.NullString
			minClockOut       sql.NullString
			createdAt         string
		)
		if err := rows.Scan(&e.ID, &e.Date, &e.Source, &clockIn, &clockOut, &minClockOut, &e.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance history: %w", err)
		}
		e.ClockInTime = stringPtr(clockIn)
		e.ClockOutTime = stringPtr(clockOut)
		e.MinClockOutTime = stringPtr(minClockOut)
		if e.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse history timestamp %q: %w", createdAt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance history: %w", err)
	}
	return entries, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	return &n.String
}
