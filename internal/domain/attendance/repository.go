package attendance

import (
	"context"
)

// HistoryRepository persists attendance observations.
type HistoryRepository interface {
	// Record stores entry and prunes entries older than the retention window in the same transaction.
	Record(ctx context.Context, entry HistoryEntry) error

	// ListRecent returns up to limit entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]HistoryEntry, error)
}
