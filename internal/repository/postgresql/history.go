package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/pkg/database"
)

type historyRepository struct {
	db        *database.DB
	retention time.Duration
}

// NewHistoryRepository creates a history repository. Entries older than retention
// are pruned whenever a new entry is recorded; zero keeps everything.
func NewHistoryRepository(db *database.DB, retention time.Duration) attendance.HistoryRepository {
	return &historyRepository{db: db, retention: retention}
}

// Record implements attendance.HistoryRepository.
func (r *historyRepository) Record(ctx context.Context, e attendance.HistoryEntry) error {
	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		query := `
			INSERT INTO attendance_history (id, work_date, source, clock_in_time, clock_out_time, min_clock_out_time, message, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err := q.Exec(ctx, query,
			e.ID,
			e.Date,
			e.Source,
			e.ClockInTime,
			e.ClockOutTime,
			e.MinClockOutTime,
			e.Message,
			e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert attendance history: %w", err)
		}

		if r.retention > 0 {
			cutoff := e.CreatedAt.Add(-r.retention)
			if _, err := q.Exec(ctx, `DELETE FROM attendance_history WHERE created_at < $1`, cutoff); err != nil {
				return fmt.Errorf("failed to prune attendance history: %w", err)
			}
		}
		return nil
	})
}

// ListRecent implements attendance.HistoryRepository.
func (r *historyRepository) ListRecent(ctx context.Context, limit int) ([]attendance.HistoryEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id::text, to_char(work_date, 'YYYY-MM-DD'), source, clock_in_time, clock_out_time, min_clock_out_time, message, created_at
		FROM attendance_history
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance history: %w", err)
	}
	defer rows.Close()

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (attendance.HistoryEntry, error) {
		var e attendance.HistoryEntry
		err := row.Scan(
			&e.ID,
			&e.Date,
			&e.Source,
			&e.ClockInTime,
			&e.ClockOutTime,
			&e.MinClockOutTime,
			&e.Message,
			&e.CreatedAt,
		)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan attendance history: %w", err)
	}
	return entries, nil
}
