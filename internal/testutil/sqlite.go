// Package testutil holds helpers shared by tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// OpenSQLite opens a SQLite database file in a fresh temporary directory
// and closes it when the test ends. The returned path can be handed to
// other processes or commands as a DSN.
func OpenSQLite(t *testing.T) (*sql.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stepflow.db")
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, db.Ping())
	return db, path
}
