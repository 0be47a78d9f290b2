// Package store provides SQL inspection of the raw event export via an
// in-memory DuckDB instance. It sits off the discovery path: the pipeline
// works on in-memory tables, the store serves ad-hoc queries (previews,
// distinct listings) and Parquet conversion of large exports.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/procflow/procflow/pkg/errors"
)

// Store wraps an in-memory DuckDB with the raw export loaded as a table.
type Store struct {
	db     *sql.DB
	loaded bool
}

// Open creates an empty in-memory store.
func Open() (*Store, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDuckDBInit, "failed to open DuckDB")
	}
	return &Store{db: db}, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadCSV (re)loads the raw export into the `events` table using DuckDB's
// CSV sniffer.
func (s *Store) LoadCSV(ctx context.Context, path string) error {
	query := fmt.Sprintf(
		`CREATE OR REPLACE TABLE events AS SELECT * FROM read_csv_auto('%s', header=true)`,
		escapePath(path))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.Wrap(err, errors.CodeDuckDBQuery, "failed to load CSV").
			WithContext("path", path)
	}
	s.loaded = true
	return nil
}

// Preview returns the first n rows of the loaded table as strings, with
// the column header.
func (s *Store) Preview(ctx context.Context, n int) ([]string, [][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT * FROM events LIMIT %d`, n))
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeDuckDBQuery, "preview query failed")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}

		rec := make([]string, len(cols))
		for i, v := range vals {
			if v == nil {
				rec[i] = ""
				continue
			}
			rec[i] = fmt.Sprint(v)
		}
		out = append(out, rec)
	}

	return cols, out, rows.Err()
}

// DistinctActivities lists the distinct activity names in the export.
func (s *Store) DistinctActivities(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "activity")
}

// DistinctPOs lists the distinct PO numbers in the export.
func (s *Store) DistinctPOs(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "po_number")
}

func (s *Store) distinct(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf(
		`SELECT DISTINCT CAST(%s AS VARCHAR) FROM events WHERE %s IS NOT NULL ORDER BY 1`,
		column, column)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDuckDBQuery, "distinct query failed").
			WithContext("column", column)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CountRows returns the loaded row count.
func (s *Store) CountRows(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeDuckDBQuery, "count query failed")
	}
	return n, nil
}

// ExportParquet writes the loaded table to a Parquet file.
func (s *Store) ExportParquet(ctx context.Context, path string) error {
	query := fmt.Sprintf(
		`COPY events TO '%s' (FORMAT PARQUET, COMPRESSION ZSTD)`,
		escapePath(path))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "parquet export failed").
			WithContext("path", path)
	}
	return nil
}

func escapePath(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}
