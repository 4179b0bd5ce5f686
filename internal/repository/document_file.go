package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"serverrewards/internal/model"
)

const fileExt = ".json"

// FileDocumentRepository implements DocumentRepository as one JSON file per
// document under a data directory, e.g. data/ServerRewards/products.json.
type FileDocumentRepository struct {
	dir string
	mu  sync.RWMutex
}

// NewFileDocumentRepository creates the data directory if needed.
func NewFileDocumentRepository(dir string) (*FileDocumentRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	log.Printf("[FileDocumentRepository] Initialized with directory: %s", dir)
	return &FileDocumentRepository{dir: dir}, nil
}

func (r *FileDocumentRepository) path(name model.DocumentName) string {
	return filepath.Join(r.dir, filepath.FromSlash(string(name))+fileExt)
}

// Load retrieves a document by name.
func (r *FileDocumentRepository) Load(_ context.Context, name model.DocumentName) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	path := r.path(name)
	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load document %s: %w", name, err)
	}
	doc := &model.Document{Name: name, Body: body}
	if info, err := os.Stat(path); err == nil {
		doc.UpdatedAt = info.ModTime()
	}
	return doc, nil
}

// Save writes the document through a temp file so readers never see a
// partial body.
func (r *FileDocumentRepository) Save(_ context.Context, name model.DocumentName, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(name, body)
}

func (r *FileDocumentRepository) write(name model.DocumentName, body []byte) error {
	path := r.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save document %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save document %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save document %s: %w", name, err)
	}
	return nil
}

// BatchSave writes each document in turn.
func (r *FileDocumentRepository) BatchSave(_ context.Context, docs []model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, doc := range docs {
		if err := r.write(doc.Name, doc.Body); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether the document's file is present.
func (r *FileDocumentRepository) Exists(_ context.Context, name model.DocumentName) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.exists(name)
}

func (r *FileDocumentRepository) exists(name model.DocumentName) (bool, error) {
	_, err := os.Stat(r.path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check document %s: %w", name, err)
}

// Move renames the document's file.
func (r *FileDocumentRepository) Move(_ context.Context, from, to model.DocumentName) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ok, err := r.exists(from)
	if err != nil || !ok {
		return false, err
	}
	if ok, err = r.exists(to); err != nil || ok {
		return false, err
	}

	dst := r.path(to)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory for %s: %w", to, err)
	}
	if err := os.Rename(r.path(from), dst); err != nil {
		return false, fmt.Errorf("failed to move document %s: %w", from, err)
	}
	return true, nil
}

// Names lists every document under the data directory.
func (r *FileDocumentRepository) Names(_ context.Context) ([]model.DocumentName, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []model.DocumentName
	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), fileExt) {
			return nil
		}
		rel, err := filepath.Rel(r.dir, path)
		if err != nil {
			return err
		}
		names = append(names, model.DocumentName(filepath.ToSlash(strings.TrimSuffix(rel, fileExt))))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names, nil
}

// GetStats returns the document count and total size on disk.
func (r *FileDocumentRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	names, err := r.Names(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var size int64
	var lastSave time.Time
	for _, name := range names {
		info, err := os.Stat(r.path(name))
		if err != nil {
			continue
		}
		size += info.Size()
		if info.ModTime().After(lastSave) {
			lastSave = info.ModTime()
		}
	}

	stats := map[string]interface{}{
		"backend":         "file",
		"directory":       r.dir,
		"total_documents": int64(len(names)),
		"db_size_bytes":   size,
	}
	if !lastSave.IsZero() {
		stats["last_save"] = lastSave
	}
	return stats, nil
}

// Close is a no-op.
func (r *FileDocumentRepository) Close() error {
	return nil
}

// Ensure FileDocumentRepository implements DocumentRepository
var _ DocumentRepository = (*FileDocumentRepository)(nil)
