package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryAt(t *testing.T, at time.Time, source string, clockIn *string) attendance.HistoryEntry {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return attendance.HistoryEntry{
		ID:          id.String(),
		Date:        at.Format(time.DateOnly),
		Source:      source,
		ClockInTime: clockIn,
		Message:     "ok",
		CreatedAt:   at,
	}
}

func TestHistoryRepository_RecordAndListRecent(t *testing.T) {
	db := newTestDatabase(t)
	repo := postgresql.NewHistoryRepository(db, 0)
	ctx := context.Background()
	in := "09:00"
	base := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	// Act
	require.NoError(t, repo.Record(ctx, entryAt(t, base, attendance.SourceClockIn, &in)))
	require.NoError(t, repo.Record(ctx, entryAt(t, base.Add(time.Hour), attendance.SourceFetch, nil)))
	got, err := repo.ListRecent(ctx, 10)

	// Assert
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, attendance.SourceFetch, got[0].Source)
	assert.Nil(t, got[0].ClockInTime)
	assert.Equal(t, "2026-10-16", got[1].Date)
	require.NotNil(t, got[1].ClockInTime)
	assert.Equal(t, "09:00", *got[1].ClockInTime)
}

func TestHistoryRepository_Record_PrunesOldEntries(t *testing.T) {
	db := newTestDatabase(t)
	repo := postgresql.NewHistoryRepository(db, 30*24*time.Hour)
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Record(ctx, entryAt(t, now.AddDate(0, 0, -45), attendance.SourceFetch, nil)))
	require.NoError(t, repo.Record(ctx, entryAt(t, now, attendance.SourceFetch, nil)))

	got, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
