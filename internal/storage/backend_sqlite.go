package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend stores values in the kv table of a migrated SQLite database.
type SQLiteBackend struct {
	db     *sql.DB
	ownsDB bool

	// Prepared statements
	getValue    *sql.Stmt
	putValue    *sql.Stmt
	deleteValue *sql.Stmt
}

// NewSQLiteBackend creates a SQLiteBackend from an already-opened and
// migrated database. Close does not close db.
func NewSQLiteBackend(db *sql.DB) (*SQLiteBackend, error) {
	b := &SQLiteBackend{db: db}
	if err := b.prepareStatements(); err != nil {
		b.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}
	return b, nil
}

// OpenSQLiteBackend opens the database at path (":memory:" is accepted),
// creating its directory and running migrations. The returned backend owns
// the database.
func OpenSQLiteBackend(path string) (*SQLiteBackend, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: every Put is a single statement and ":memory:"
	// databases are per-connection.
	db.SetMaxOpenConns(1)

	runner := NewMigrationRunner(db)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	b, err := NewSQLiteBackend(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	b.ownsDB = true
	return b, nil
}

func (b *SQLiteBackend) prepareStatements() error {
	var err error

	b.getValue, err = b.db.Prepare(`SELECT value FROM kv WHERE key = ?`)
	if err != nil {
		return err
	}

	b.putValue, err = b.db.Prepare(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}

	b.deleteValue, err = b.db.Prepare(`DELETE FROM kv WHERE key = ?`)
	if err != nil {
		return err
	}

	return nil
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.getValue.QueryRowContext(ctx, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (b *SQLiteBackend) Put(ctx context.Context, key string, value []byte) error {
	if _, err := b.putValue.ExecContext(ctx, key, value); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.deleteValue.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// SizeBytes reports the database size from SQLite's page accounting.
func (b *SQLiteBackend) SizeBytes() int64 {
	var pageCount, pageSize int64
	if err := b.db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := b.db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// Close releases the prepared statements, and the database when the
// backend opened it.
func (b *SQLiteBackend) Close() error {
	for _, stmt := range []*sql.Stmt{b.getValue, b.putValue, b.deleteValue} {
		if stmt != nil {
			stmt.Close()
		}
	}
	if b.ownsDB {
		return b.db.Close()
	}
	return nil
}
