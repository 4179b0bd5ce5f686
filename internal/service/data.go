package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"serverrewards/internal/cache"
	"serverrewards/internal/metrics"
	"serverrewards/internal/model"
	"serverrewards/internal/repository"
)

// StateStore is the in-memory state DataService persists. *store.Store
// satisfies it.
type StateStore interface {
	Snapshot(all bool) (map[model.DocumentName][]byte, error)
	Restore(name model.DocumentName, data []byte) error
	MarkDirty(names ...model.DocumentName)
}

// DataService moves documents between the store and the repository.
type DataService struct {
	state  StateStore
	repo   repository.DocumentRepository
	buffer cache.DocumentBuffer

	saveMu  sync.Mutex
	mu      sync.Mutex
	missing []model.DocumentName
	last    time.Time
}

// NewDataService creates a data service that writes straight to repo.
func NewDataService(state StateStore, repo repository.DocumentRepository) *DataService {
	return &DataService{state: state, repo: repo}
}

// NewDataServiceWithBuffer creates a data service that writes through the
// write-behind buffer.
func NewDataServiceWithBuffer(state StateStore, repo repository.DocumentRepository, buffer cache.DocumentBuffer) *DataService {
	return &DataService{state: state, repo: repo, buffer: buffer}
}

// Documents returns a buffer-aware view of the repository.
func (s *DataService) Documents() *Documents {
	return &Documents{repo: s.repo, buffer: s.buffer}
}

// Load restores every current document. Missing documents leave the
// store's defaults in place and are reported by Missing; a document that
// fails to decode is logged and skipped.
func (s *DataService) Load(ctx context.Context) error {
	docs := s.Documents()
	var missing []model.DocumentName

	for _, name := range model.CurrentDocuments {
		doc, err := docs.Load(ctx, name)
		if err != nil {
			return err
		}
		if doc == nil {
			missing = append(missing, name)
			continue
		}
		if err := s.state.Restore(name, doc.Body); err != nil {
			log.Printf("[DataService] %v; starting with empty data", err)
			continue
		}
	}

	s.mu.Lock()
	s.missing = missing
	s.mu.Unlock()

	log.Printf("[DataService] Loaded %d/%d documents", len(model.CurrentDocuments)-len(missing), len(model.CurrentDocuments))
	return nil
}

// Missing returns the documents absent at the last Load.
func (s *DataService) Missing() []model.DocumentName {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.DocumentName(nil), s.missing...)
}

// Save writes the dirty documents. Documents that fail to write stay dirty
// for the next pass.
func (s *DataService) Save(ctx context.Context) (int, error) {
	return s.save(ctx, false)
}

// SaveAll writes every document.
func (s *DataService) SaveAll(ctx context.Context) (int, error) {
	return s.save(ctx, true)
}

// LastSave returns when documents were last written.
func (s *DataService) LastSave() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *DataService) save(ctx context.Context, all bool) (int, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	start := time.Now()
	snapshot, err := s.state.Snapshot(all)
	if err != nil {
		return 0, err
	}
	if len(snapshot) == 0 {
		return 0, nil
	}

	names := make([]model.DocumentName, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	var failed []model.DocumentName
	var firstErr error
	if s.buffer != nil {
		for _, name := range names {
			if err := s.buffer.Add(ctx, name, snapshot[name]); err != nil {
				failed = append(failed, name)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	} else {
		docs := make([]model.Document, 0, len(names))
		for _, name := range names {
			docs = append(docs, model.Document{Name: name, Body: snapshot[name], UpdatedAt: start})
		}
		if err := s.repo.BatchSave(ctx, docs); err != nil {
			failed, firstErr = names, err
		}
	}

	saved := len(names) - len(failed)
	metrics.RecordFlush(time.Since(start), saved, len(failed))

	if len(failed) > 0 {
		s.state.MarkDirty(failed...)
		return saved, fmt.Errorf("failed to save %d document(s): %w", len(failed), firstErr)
	}

	s.mu.Lock()
	s.last = time.Now()
	s.mu.Unlock()
	return saved, nil
}

// CreateFlushFunc creates a flush function for the Redis buffer.
func CreateFlushFunc(repo repository.DocumentRepository) cache.FlushFunc {
	return func(ctx context.Context, items []*model.BufferedDocument) error {
		docs := make([]model.Document, len(items))
		for i, item := range items {
			docs[i] = model.Document{
				Name:      item.Name,
				Body:      item.Body,
				UpdatedAt: item.UpdatedAt,
			}
		}
		return repo.BatchSave(ctx, docs)
	}
}

// Documents reads through the write-behind buffer before the repository so
// a pending write is never shadowed by an older stored copy.
type Documents struct {
	repo   repository.DocumentRepository
	buffer cache.DocumentBuffer
}

// Load returns the newest body of name, or nil when it does not exist.
func (d *Documents) Load(ctx context.Context, name model.DocumentName) (*model.Document, error) {
	if d.buffer != nil {
		buffered, err := d.buffer.Get(ctx, name)
		if err != nil {
			log.Printf("[DataService] Buffer read for %s failed: %v", name, err)
		} else if buffered != nil {
			return &model.Document{Name: name, Body: buffered.Body, UpdatedAt: buffered.UpdatedAt}, nil
		}
	}
	return d.repo.Load(ctx, name)
}

// Exists reports whether name is buffered or stored.
func (d *Documents) Exists(ctx context.Context, name model.DocumentName) (bool, error) {
	if d.buffer != nil {
		if buffered, err := d.buffer.Get(ctx, name); err == nil && buffered != nil {
			return true, nil
		}
	}
	return d.repo.Exists(ctx, name)
}

// Move renames a stored document. Legacy documents are never buffered.
func (d *Documents) Move(ctx context.Context, from, to model.DocumentName) (bool, error) {
	return d.repo.Move(ctx, from, to)
}
