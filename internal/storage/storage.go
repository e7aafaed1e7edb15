package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nikbrunner/imgpick/internal/model"
)

var (
	ErrUnknownBackend = errors.New("unknown document backend")
	ErrMissingProject = errors.New("firestore backend requires a project id")
)

// Document is the metadata record written once per successful upload.
type Document struct {
	ID          string    `json:"id" yaml:"id"`
	URL         string    `json:"url" yaml:"url"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Filter      string    `json:"filter" yaml:"filter"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

// DocumentStore is an append-only metadata collection.
type DocumentStore interface {
	AddDocument(ctx context.Context, collection string, doc Document) (string, error)
	ListDocuments(ctx context.Context, collection string) ([]Document, error)
	Close() error
}

// OpenDocumentStore opens the backend named in cfg.
func OpenDocumentStore(ctx context.Context, cfg DocumentsConfig) (DocumentStore, error) {
	switch cfg.Backend {
	case "", "sqlite":
		path := cfg.Path
		if path == "" {
			path = DefaultConfig().Documents.Path
		}
		return NewSQLiteStorage(path)
	case "firestore":
		if cfg.ProjectID == "" {
			return nil, ErrMissingProject
		}
		return NewFirestoreStorage(ctx, cfg.ProjectID)
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// MemoryStorage keeps documents in memory. Used by tests and dry runs.
type MemoryStorage struct {
	mu   sync.Mutex
	docs map[string][]Document
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{docs: make(map[string][]Document)}
}

// AddDocument appends doc, assigning an id if it has none.
func (m *MemoryStorage) AddDocument(ctx context.Context, collection string, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if doc.ID == "" {
		doc.ID = model.GenerateUUID()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[collection] = append(m.docs[collection], doc)
	return doc.ID, nil
}

// ListDocuments returns the documents of a collection in insertion order.
func (m *MemoryStorage) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.docs[collection]), nil
}

// Close implements DocumentStore.
func (m *MemoryStorage) Close() error {
	return nil
}
