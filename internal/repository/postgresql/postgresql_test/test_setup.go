package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/ozo-extended/ozo-agent/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// newTestDatabase connects to TEST_DATABASE_URL and empties the history table.
// The test is skipped when no database is configured.
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	truncate(t, db)
	t.Cleanup(func() { truncate(t, db) })
	return db
}

func truncate(t *testing.T, db *database.DB) {
	t.Helper()
	_, err := db.Exec(context.Background(), "TRUNCATE TABLE attendance_history")
	require.NoError(t, err)
}
