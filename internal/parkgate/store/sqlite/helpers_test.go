package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	dbpkg "github.com/kagabo-labs/parkgate/internal/db"
)

// openTestDB opens a migrated ledger in a per-test temp dir along with
// its write worker; both are torn down with the test.
func openTestDB(t *testing.T) (*sql.DB, *dbpkg.Worker) {
	t.Helper()

	conn, err := dbpkg.Open(context.Background(), dbpkg.Config{
		Path: filepath.Join(t.TempDir(), "parkgate_test.db"),
	})
	require.NoError(t, err)

	writer := dbpkg.NewWorker(conn)
	t.Cleanup(func() {
		writer.Close()
		_ = conn.Close()
	})
	return conn, writer
}
