package duck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_EmptyPathIsInMemory(t *testing.T) {
	db, err := Open(context.Background(), "", nil)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	require.NoError(t, db.Exec(context.Background(), "SELECT 1"))
}

func TestExecQueryTables(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Exec(ctx, "CREATE TABLE t (id INTEGER, name VARCHAR)"))
	require.NoError(t, db.Exec(ctx, "INSERT INTO t VALUES (1, 'a'), (2, 'b')"))

	tables, err := db.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, tables)

	rows, err := db.Query(ctx, "SELECT name FROM t ORDER BY id")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestLoadCSV(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "items.csv")
	require.NoError(t, os.WriteFile(path, []byte("country,year,value\nGermany,1990,100\nSpain,1990,95\n"), 0o644))

	require.NoError(t, db.LoadCSV(ctx, "raw_items", path))

	counts, err := db.RowCounts(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, "raw_items", counts[0].Table)
	assert.Equal(t, int64(2), counts[0].Rows)
}
