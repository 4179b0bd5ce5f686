package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"serverrewards/internal/model"
)

// sqlDocuments is the documents(name, body, updated_at) table shared by the
// SQL backends. Queries are written with ? placeholders and rebound for
// drivers that number them.
type sqlDocuments struct {
	db       *sql.DB
	upsert   string
	numbered bool
}

func (s *sqlDocuments) q(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Load retrieves a document by name.
func (s *sqlDocuments) Load(ctx context.Context, name model.DocumentName) (*model.Document, error) {
	var body []byte
	var updatedAt time.Time

	err := s.db.QueryRowContext(ctx, s.q(`SELECT body, updated_at FROM documents WHERE name = ?`), string(name)).
		Scan(&body, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load document %s: %w", name, err)
	}
	return &model.Document{Name: name, Body: body, UpdatedAt: updatedAt}, nil
}

// Save inserts or replaces one document.
func (s *sqlDocuments) Save(ctx context.Context, name model.DocumentName, body []byte) error {
	if _, err := s.db.ExecContext(ctx, s.q(s.upsert), string(name), body, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save document %s: %w", name, err)
	}
	return nil
}

// BatchSave writes every document in one transaction.
func (s *sqlDocuments) BatchSave(ctx context.Context, docs []model.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.q(s.upsert))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		updatedAt := doc.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, string(doc.Name), doc.Body, updatedAt.UTC()); err != nil {
			return fmt.Errorf("failed to batch save document %s: %w", doc.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Exists reports whether name is stored.
func (s *sqlDocuments) Exists(ctx context.Context, name model.DocumentName) (bool, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM documents WHERE name = ?`), string(name)).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check document %s: %w", name, err)
	}
	return count > 0, nil
}

// Move renames from to to inside a transaction.
func (s *sqlDocuments) Move(ctx context.Context, from, to model.DocumentName) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int64
	if err := tx.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM documents WHERE name = ?`), string(from)).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check document %s: %w", from, err)
	}
	if count == 0 {
		return false, nil
	}
	if err := tx.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM documents WHERE name = ?`), string(to)).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check document %s: %w", to, err)
	}
	if count > 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, s.q(`UPDATE documents SET name = ?, updated_at = ? WHERE name = ?`),
		string(to), time.Now().UTC(), string(from)); err != nil {
		return false, fmt.Errorf("failed to move document %s: %w", from, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// Names lists stored documents.
func (s *sqlDocuments) Names(ctx context.Context) ([]model.DocumentName, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM documents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var names []model.DocumentName
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, model.DocumentName(name))
	}
	return names, rows.Err()
}

// baseStats returns the row count and the last write time.
func (s *sqlDocuments) baseStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		return nil, err
	}
	stats["total_documents"] = count

	var lastSave sql.NullTime
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM documents").Scan(&lastSave); err == nil && lastSave.Valid {
		stats["last_save"] = lastSave.Time
	}
	return stats, nil
}

func (s *sqlDocuments) poolStats(stats map[string]interface{}) {
	dbStats := s.db.Stats()
	stats["connections"] = map[string]interface{}{
		"open":     dbStats.OpenConnections,
		"in_use":   dbStats.InUse,
		"idle":     dbStats.Idle,
		"max_open": dbStats.MaxOpenConnections,
	}
}

// Close closes the database connection.
func (s *sqlDocuments) Close() error {
	return s.db.Close()
}
