package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/imgpick/internal/model"
)

// createdAtLayout is fixed-width so ORDER BY on the text column is chronological.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStorage implements DocumentStore using a SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Concurrent uploads finish at the same time; let writers wait instead of failing
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY NOT NULL,
			collection TEXT NOT NULL,
			url TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			filter TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection, created_at);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AddDocument appends one document to the collection and returns its id.
func (s *SQLiteStorage) AddDocument(ctx context.Context, collection string, doc Document) (string, error) {
	if doc.ID == "" {
		doc.ID = model.GenerateUUID()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, collection, url, name, description, filter, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, collection, doc.URL, doc.Name, doc.Description, doc.Filter,
		doc.CreatedAt.UTC().Format(createdAtLayout))
	if err != nil {
		return "", err
	}

	return doc.ID, nil
}

// ListDocuments reads every document of a collection, oldest first.
func (s *SQLiteStorage) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, name, description, filter, created_at
		FROM documents
		WHERE collection = ?
		ORDER BY created_at
	`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var d Document
		var createdAtStr string

		if err := rows.Scan(&d.ID, &d.URL, &d.Name, &d.Description, &d.Filter, &createdAtStr); err != nil {
			return nil, err
		}

		d.CreatedAt, _ = time.Parse(createdAtLayout, createdAtStr)
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

// DefaultSQLitePath returns the default SQLite database path: ~/.config/imgpick/images.db
func DefaultSQLitePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "imgpick", "images.db"), nil
}
