// Package sqlite implements vectorstore.Store on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"docchat/internal/vectorstore"
)

// Store persists chunk records in a single chunks table. Vectors are held
// as BLOBs in the layout fixed by vectorstore.EncodeVector.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at path and runs the
// schema migration. The migration is idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			namespace TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			text TEXT NOT NULL,
			vector BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (namespace, chunk_index)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_namespace ON chunks(namespace);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// Put writes or overwrites one chunk record.
func (s *Store) Put(ctx context.Context, rec vectorstore.Record) error {
	if rec.Text == "" {
		return vectorstore.ErrEmptyText
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chunks (namespace, chunk_index, text, vector) VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, chunk_index) DO UPDATE SET text = excluded.text, vector = excluded.vector`,
		rec.Namespace, rec.Index, rec.Text, vectorstore.EncodeVector(rec.Vector),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// Exists reports whether at least one chunk record exists for the namespace.
func (s *Store) Exists(ctx context.Context, namespace string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM chunks WHERE namespace = ? LIMIT 1", namespace,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query namespace: %w", err)
	}
	return true, nil
}

// GetAll returns all chunks for one namespace, ordered by index.
func (s *Store) GetAll(ctx context.Context, namespace string) ([]vectorstore.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT namespace, chunk_index, text, vector FROM chunks WHERE namespace = ? ORDER BY chunk_index",
		namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	return scanRecords(rows)
}

// GetAllIn returns chunks for the given namespaces, ordered by namespace
// then index. A nil or empty list means every namespace.
func (s *Store) GetAllIn(ctx context.Context, namespaces []string) ([]vectorstore.Record, error) {
	query := "SELECT namespace, chunk_index, text, vector FROM chunks"
	var args []any
	if len(namespaces) > 0 {
		placeholders := strings.Repeat("?,", len(namespaces))
		query += " WHERE namespace IN (" + placeholders[:len(placeholders)-1] + ")"
		for _, ns := range namespaces {
			args = append(args, ns)
		}
	}
	query += " ORDER BY namespace, chunk_index"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	return scanRecords(rows)
}

// Namespaces returns every namespace with at least one stored chunk.
func (s *Store) Namespaces(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT namespace FROM chunks ORDER BY namespace")
	if err != nil {
		return nil, fmt.Errorf("failed to query namespaces: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var names []string
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, fmt.Errorf("failed to scan namespace: %w", err)
		}
		names = append(names, ns)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return names, nil
}

// DeleteNamespace removes all chunk records under the namespace.
func (s *Store) DeleteNamespace(ctx context.Context, namespace string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE namespace = ?", namespace)
	if err != nil {
		return fmt.Errorf("failed to delete namespace: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanRecords(rows *sql.Rows) ([]vectorstore.Record, error) {
	defer func() {
		_ = rows.Close()
	}()

	var records []vectorstore.Record
	for rows.Next() {
		var rec vectorstore.Record
		var blob []byte
		if err := rows.Scan(&rec.Namespace, &rec.Index, &rec.Text, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		vec, err := vectorstore.DecodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("corrupt vector for %s:%d: %w", rec.Namespace, rec.Index, err)
		}
		rec.Vector = vec
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}
