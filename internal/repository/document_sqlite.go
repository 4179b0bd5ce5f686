package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteDocumentRepository implements DocumentRepository using SQLite.
// WAL mode keeps reads concurrent with the single writer.
type SQLiteDocumentRepository struct {
	sqlDocuments
}

// NewSQLiteDocumentRepository creates a new SQLite document repository.
// dbPath is the path to the SQLite database file (e.g., "./data/serverrewards.db")
func NewSQLiteDocumentRepository(dbPath string) (*SQLiteDocumentRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteDocumentRepository] Initialized with database: %s", dbPath)
	return &SQLiteDocumentRepository{sqlDocuments: sqliteDocuments(db)}, nil
}

func sqliteDocuments(db *sql.DB) sqlDocuments {
	return sqlDocuments{
		db: db,
		upsert: `
		INSERT INTO documents (name, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at`,
	}
}

func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_updated_at ON documents(updated_at);
	`
	_, err := db.Exec(query)
	return err
}

// GetStats returns statistics about the document database.
func (r *SQLiteDocumentRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := r.baseStats(ctx)
	if err != nil {
		return nil, err
	}
	stats["backend"] = "sqlite"

	// Database file size (approximate from page count)
	var pageCount, pageSize int64
	r.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	r.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats["db_size_bytes"] = pageCount * pageSize

	return stats, nil
}

// Ensure SQLiteDocumentRepository implements DocumentRepository
var _ DocumentRepository = (*SQLiteDocumentRepository)(nil)
