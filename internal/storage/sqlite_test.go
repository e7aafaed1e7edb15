package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikbrunner/imgpick/internal/storage"
)

func TestSQLiteStorage_AddAndList(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "images.db")

	s, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := s.AddDocument(ctx, "images", storage.Document{
		URL:         "file:///bucket/images/1_a.jpg",
		Name:        "Image 1",
		Description: "beach",
		Filter:      "sepia",
		CreatedAt:   now,
	})
	if err != nil {
		t.Fatalf("failed to add: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated document id")
	}

	docs, err := s.ListDocuments(ctx, "images")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	got := docs[0]
	if got.ID != id {
		t.Errorf("ID mismatch: got %q, want %q", got.ID, id)
	}
	if got.Filter != "sepia" || got.Description != "beach" {
		t.Errorf("fields not preserved: %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt mismatch: got %v, want %v", got.CreatedAt, now)
	}
}

func TestSQLiteStorage_EmptyDatabase(t *testing.T) {
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()

	docs, err := s.ListDocuments(context.Background(), "images")
	if err != nil {
		t.Fatalf("failed to list empty db: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", docs)
	}
}

func TestSQLiteStorage_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "images.db")

	s, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage with nested dir: %v", err)
	}
	defer s.Close()

	if s.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", s.Path(), dbPath)
	}
}

func TestSQLiteStorage_CollectionsAreSeparateAndOrdered(t *testing.T) {
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "order.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Inserted out of order; sub-second offsets exercise the fixed-width layout
	inserts := []struct {
		collection string
		name       string
		offset     time.Duration
	}{
		{"images", "third", 2 * time.Second},
		{"images", "first", 100 * time.Millisecond},
		{"other", "elsewhere", 0},
		{"images", "second", 1050 * time.Millisecond},
	}
	for _, in := range inserts {
		_, err := s.AddDocument(ctx, in.collection, storage.Document{
			URL: "u", Name: in.name, CreatedAt: base.Add(in.offset),
		})
		if err != nil {
			t.Fatalf("add %s: %v", in.name, err)
		}
	}

	docs, err := s.ListDocuments(ctx, "images")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(docs) != len(want) {
		t.Fatalf("expected %d documents, got %d", len(want), len(docs))
	}
	for i, name := range want {
		if docs[i].Name != name {
			t.Errorf("docs[%d] = %q, want %q", i, docs[i].Name, name)
		}
	}
}

func TestSQLiteStorage_ReopenKeepsDocuments(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	if _, err := s.AddDocument(ctx, "images", storage.Document{URL: "u", Name: "kept"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	s.Close()

	// Second open must skip the already-applied migration
	s, err = storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen storage: %v", err)
	}
	defer s.Close()

	docs, err := s.ListDocuments(ctx, "images")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "kept" {
		t.Errorf("expected kept document after reopen, got %+v", docs)
	}
}
