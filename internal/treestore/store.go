// Package treestore persists conversion results. Backends share one
// interface so the pipeline and API are indifferent to where documents land.
package treestore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dgallion1/htmldown/internal/dom"
	"github.com/dgallion1/htmldown/internal/section"
)

// ErrNotFound is returned when no record exists for the requested ID.
var ErrNotFound = errors.New("treestore: not found")

// Record is one stored conversion result. Tree carries the transformed
// document tree; its parent back-references are not serialized, so backends
// that round-trip through JSON rebind them on retrieval.
type Record struct {
	ID        string            `json:"id"`
	Filename  string            `json:"filename,omitempty"`
	Markdown  string            `json:"markdown,omitempty"`
	Document  *section.Document `json:"document,omitempty"`
	Tree      *dom.Node         `json:"tree,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// rebind restores parent pointers after a record was decoded from JSON.
func (r *Record) rebind() {
	if r.Tree != nil {
		dom.RebindParents(r.Tree)
	}
}

// Store is the persistence contract. Get returns ErrNotFound for unknown
// IDs; Exists never does.
type Store interface {
	Put(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int) ([]string, error)
	Close() error
}

// MemoryStore keeps records in process memory. Used for tests and for
// running without external storage.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Put(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Exists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *MemoryStore) Close() error { return nil }
