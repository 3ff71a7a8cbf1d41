// Package duck wraps the DuckDB connection the pipeline stages into and
// the marts are built in. Use ":memory:" as the path for tests.
package duck

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// DB is a thin handle over a DuckDB database.
type DB struct {
	sqlDB  *sql.DB
	path   string
	logger *slog.Logger
}

// Open connects to the DuckDB database at path (":memory:" or "" for
// in-memory) and verifies the connection.
func Open(ctx context.Context, path string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	logger.Debug("opened duckdb database", "path", path)
	return &DB{sqlDB: db, path: path, logger: logger}, nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	d.logger.Debug("closing duckdb database", "path", d.path)
	return d.sqlDB.Close()
}

// SQL exposes the raw *sql.DB for callers that manage their own statements
// (the mart writer, the query command).
func (d *DB) SQL() *sql.DB {
	return d.sqlDB
}

// Exec executes a statement that returns no rows.
func (d *DB) Exec(ctx context.Context, query string, args ...any) error {
	_, err := d.sqlDB.ExecContext(ctx, query, args...)
	return err
}

// Query executes a statement that returns rows.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.sqlDB.QueryContext(ctx, query, args...)
}

// LoadCSV loads a CSV file into tableName with DuckDB's automatic schema
// detection, replacing any prior contents.
func (d *DB) LoadCSV(ctx context.Context, tableName, filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto('%s', header=true)",
		tableName, absPath,
	)
	if err := d.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to load CSV into %s: %w", tableName, err)
	}
	d.logger.Debug("loaded csv", "table", tableName, "path", absPath)
	return nil
}

// Tables lists all tables in the main schema.
func (d *DB) Tables(ctx context.Context) ([]string, error) {
	rows, err := d.Query(ctx,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = 'main' ORDER BY table_name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TableCount pairs a table name with its row count.
type TableCount struct {
	Table string
	Rows  int64
}

// RowCounts returns the row count of every table in the database.
func (d *DB) RowCounts(ctx context.Context) ([]TableCount, error) {
	names, err := d.Tables(ctx)
	if err != nil {
		return nil, err
	}

	counts := make([]TableCount, 0, len(names))
	for _, name := range names {
		var n int64
		if err := d.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+name).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count rows in %s: %w", name, err)
		}
		counts = append(counts, TableCount{Table: name, Rows: n})
	}
	return counts, nil
}
