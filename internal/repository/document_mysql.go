package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLDocumentRepository implements DocumentRepository using MySQL.
type MySQLDocumentRepository struct {
	sqlDocuments
}

// NewMySQLDocumentRepository creates a new MySQL document repository.
// The DSN must set parseTime=true.
func NewMySQLDocumentRepository(dsn string) (*MySQLDocumentRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := createMySQLTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[MySQLDocumentRepository] Initialized")
	return &MySQLDocumentRepository{sqlDocuments: mysqlDocuments(db)}, nil
}

func mysqlDocuments(db *sql.DB) sqlDocuments {
	return sqlDocuments{
		db: db,
		upsert: `
		INSERT INTO documents (name, body, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			body = VALUES(body),
			updated_at = VALUES(updated_at)`,
	}
}

// MySQL cannot run several statements in one Exec without multiStatements.
func createMySQLTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS documents (
		name VARCHAR(191) NOT NULL PRIMARY KEY,
		body LONGBLOB NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_documents_updated_at (updated_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`)
	return err
}

// GetStats returns statistics about the document table.
func (r *MySQLDocumentRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := r.baseStats(ctx)
	if err != nil {
		return nil, err
	}
	stats["backend"] = "mysql"

	var tableSize sql.NullInt64
	sizeQuery := `SELECT data_length + index_length FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = 'documents'`
	if err := r.db.QueryRowContext(ctx, sizeQuery).Scan(&tableSize); err == nil && tableSize.Valid {
		stats["db_size_bytes"] = tableSize.Int64
	}

	r.poolStats(stats)
	return stats, nil
}

// Ensure MySQLDocumentRepository implements DocumentRepository
var _ DocumentRepository = (*MySQLDocumentRepository)(nil)
