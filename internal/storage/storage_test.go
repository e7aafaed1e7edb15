package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestLoadConfig_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.json")

	cfg, err := LoadConfig(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.ObjectStore.Backend, "local")
	assert.Equal(t, cfg.Documents.Collection, "images")
	assert.Equal(t, cfg.Source.Limit, 20)

	_, err = os.Stat(path)
	assert.NilError(t, err, "config file should be written on first load")
}

func TestLoadConfig_FillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(path, []byte(`{"objectStore":{"backend":"s3","bucket":"pics"}}`), 0644)
	assert.NilError(t, err)

	cfg, err := LoadConfig(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.ObjectStore.Backend, "s3")
	assert.Equal(t, cfg.ObjectStore.Bucket, "pics")
	assert.Equal(t, cfg.ObjectStore.Prefix, "images")
	assert.Equal(t, cfg.Documents.Backend, "sqlite")
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	assert.NilError(t, os.WriteFile(path, []byte(`{nope`), 0644))

	_, err := LoadConfig(path)
	assert.Assert(t, err != nil)
}

func TestConfig_ApplyEnv(t *testing.T) {
	env := map[string]string{
		"IMGPICK_STORE_BACKEND": "gcs",
		"IMGPICK_BUCKET":        "my-app.appspot.com",
		"IMGPICK_SOURCE_LIMIT":  "5",
		"IMGPICK_DOCS_BACKEND":  "firestore",
		"IMGPICK_PROJECT_ID":    "my-app",
	}
	cfg := DefaultConfig()

	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, cfg.ObjectStore.Backend, "gcs")
	assert.Equal(t, cfg.ObjectStore.Bucket, "my-app.appspot.com")
	assert.Equal(t, cfg.Source.Limit, 5)
	assert.Equal(t, cfg.Documents.Backend, "firestore")
	assert.Equal(t, cfg.Documents.ProjectID, "my-app")
	assert.Equal(t, cfg.LogLevel, "info", "unset variables keep file values")
}

func TestConfig_ApplyEnv_IgnoresBadLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyEnv(func(k string) string {
		if k == "IMGPICK_SOURCE_LIMIT" {
			return "-3"
		}
		return ""
	})
	assert.Equal(t, cfg.Source.Limit, 20)
}

func TestOpenDocumentStore(t *testing.T) {
	ctx := context.Background()

	mem, err := OpenDocumentStore(ctx, DocumentsConfig{Backend: "memory"})
	assert.NilError(t, err)
	assert.Check(t, is.Equal(mem.Close(), nil))

	sq, err := OpenDocumentStore(ctx, DocumentsConfig{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "d.db")})
	assert.NilError(t, err)
	defer sq.Close()

	_, err = OpenDocumentStore(ctx, DocumentsConfig{Backend: "firestore"})
	assert.Assert(t, errors.Is(err, ErrMissingProject))

	_, err = OpenDocumentStore(ctx, DocumentsConfig{Backend: "mongo"})
	assert.Assert(t, errors.Is(err, ErrUnknownBackend))
}

func TestMemoryStorage_AppendOnly(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage()

	id1, err := m.AddDocument(ctx, "images", Document{Name: "a"})
	assert.NilError(t, err)
	id2, err := m.AddDocument(ctx, "images", Document{Name: "a"})
	assert.NilError(t, err)
	assert.Assert(t, id1 != id2, "each write gets its own id")

	docs, err := m.ListDocuments(ctx, "images")
	assert.NilError(t, err)
	assert.Check(t, is.Len(docs, 2))

	other, _ := m.ListDocuments(ctx, "elsewhere")
	assert.Check(t, is.Len(other, 0))
}

func TestFirestoreFields_RoundTrip(t *testing.T) {
	created := time.Date(2025, 5, 4, 3, 2, 1, 0, time.UTC)
	doc := Document{
		URL:       "https://firebasestorage.example/o/images%2F1_a.jpg",
		Name:      "Image 1",
		Filter:    "none",
		CreatedAt: created,
	}

	fields := toFields(doc)

	// Empty description must still be sent so the field has a type
	assert.DeepEqual(t, fields["description"].ForceSendFields, []string{"StringValue"})

	got := fromFields("abc", fields)
	assert.Equal(t, got.ID, "abc")
	assert.Equal(t, got.URL, doc.URL)
	assert.Equal(t, got.Description, "")
	assert.Assert(t, got.CreatedAt.Equal(created))
}
