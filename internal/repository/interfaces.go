package repository

import (
	"context"

	"serverrewards/internal/model"
)

// DocumentRepository defines persisted document access methods.
type DocumentRepository interface {
	// Load retrieves a document by name. It returns nil, nil when the
	// document does not exist.
	Load(ctx context.Context, name model.DocumentName) (*model.Document, error)

	// Save inserts or replaces one document.
	Save(ctx context.Context, name model.DocumentName, body []byte) error

	// BatchSave inserts or replaces multiple documents efficiently.
	BatchSave(ctx context.Context, docs []model.Document) error

	// Exists reports whether a document is stored under name.
	Exists(ctx context.Context, name model.DocumentName) (bool, error)

	// Move renames from to to. Nothing happens, and false is returned, when
	// from is missing or to already exists.
	Move(ctx context.Context, from, to model.DocumentName) (bool, error)

	// Names lists every stored document in name order.
	Names(ctx context.Context) ([]model.DocumentName, error)

	// GetStats returns statistics about the backing store.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}
