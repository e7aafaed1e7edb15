package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/imgpick/internal/culler"
	"github.com/nikbrunner/imgpick/internal/storage"
)

// writeConfig points every backend at a temp dir.
func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	cfg := storage.DefaultConfig()
	cfg.Source.Dir = dir
	cfg.ObjectStore.LocalDir = filepath.Join(dir, "bucket")
	cfg.Documents.Path = filepath.Join(dir, "images.db")
	cfg.LogFile = filepath.Join(dir, "imgpick.log")

	path := filepath.Join(dir, "config.json")
	assert.NilError(t, storage.SaveConfig(path, &cfg))
	return path, dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeImages(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		assert.NilError(t, os.WriteFile(paths[i], []byte("image bytes "+name), 0644))
	}
	return paths
}

func TestUploadThenHistory(t *testing.T) {
	configPath, dir := writeConfig(t)
	files := writeImages(t, dir, "beach.png", "sunset.png")

	args := append([]string{"upload", "--config", configPath, "--filter", "sepia", "--description", "Holiday"}, files...)
	out, err := execute(t, args...)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "✓ beach.png"))
	assert.Check(t, is.Contains(out, "✓ sunset.png"))
	assert.Check(t, is.Contains(out, "Uploaded 2 of 2 image(s)"))

	stored, err := filepath.Glob(filepath.Join(dir, "bucket", "images", "*"))
	assert.NilError(t, err)
	assert.Check(t, is.Len(stored, 2))

	out, err = execute(t, "history", "--config", configPath, "--format", "yaml")
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "count: 2"))
	assert.Check(t, is.Contains(out, "name: beach.png"))
	assert.Check(t, is.Contains(out, "filter: sepia"))
	assert.Check(t, is.Contains(out, "description: Holiday"))

	out, err = execute(t, "history", "verify", "--config", configPath)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "2 healthy, 0 dead, 0 unreachable"))
}

func TestUploadRejectsUnknownFilter(t *testing.T) {
	configPath, dir := writeConfig(t)
	files := writeImages(t, dir, "beach.png")

	_, err := execute(t, "upload", "--config", configPath, "--filter", "vintage", files[0])
	assert.ErrorContains(t, err, `unknown filter "vintage"`)
}

func TestUploadMissingFile(t *testing.T) {
	configPath, dir := writeConfig(t)

	_, err := execute(t, "upload", "--config", configPath, filepath.Join(dir, "nope.png"))
	assert.Check(t, errors.Is(err, os.ErrNotExist))
}

func TestHistoryEmpty(t *testing.T) {
	configPath, _ := writeConfig(t)

	out, err := execute(t, "history", "--config", configPath)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(out, "No uploads yet\n"))
}

func TestWriteHistoryFormats(t *testing.T) {
	docs := []storage.Document{{
		ID:        "doc-1",
		URL:       "https://cdn.example.com/images/1_beach.png",
		Name:      "beach.png",
		Filter:    "grayscale",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}

	t.Run("table", func(t *testing.T) {
		var out bytes.Buffer
		assert.NilError(t, writeHistory(&out, docs, "table", ""))
		assert.Check(t, is.Contains(out.String(), "beach.png"))
		assert.Check(t, is.Contains(out.String(), "grayscale"))
	})

	t.Run("html to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "history.html")
		var out bytes.Buffer
		assert.NilError(t, writeHistory(&out, docs, "html", path))
		assert.Check(t, is.Contains(out.String(), "Exported 1 upload(s) to "+path))

		data, err := os.ReadFile(path)
		assert.NilError(t, err)
		assert.Check(t, strings.HasPrefix(string(data), "<!DOCTYPE html>"))
	})

	t.Run("parquet to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.parquet")
		assert.NilError(t, writeHistory(io.Discard, docs, "parquet", path))

		info, err := os.Stat(path)
		assert.NilError(t, err)
		assert.Check(t, info.Size() > 0)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.ErrorContains(t, writeHistory(io.Discard, docs, "csv", ""), `unknown format "csv"`)
	})
}

func TestReportVerify(t *testing.T) {
	docs := []storage.Document{{Name: "a.png"}, {Name: "b.png"}, {Name: "c.png"}}
	results := []culler.Result{
		{Document: &docs[0], Status: culler.Healthy, StatusCode: 200},
		{Document: &docs[1], Status: culler.Dead, StatusCode: 404},
		{Document: &docs[2], Status: culler.Unreachable, Error: "timeout"},
	}

	var out bytes.Buffer
	err := reportVerify(&out, results)
	assert.Check(t, errors.Is(err, errDeadUploads))
	assert.Check(t, is.Contains(out.String(), "1 healthy, 1 dead, 1 unreachable"))
	assert.Check(t, is.Contains(out.String(), "HTTP 404"))
	assert.Check(t, is.Contains(out.String(), "timeout"))
	assert.Check(t, !strings.Contains(out.String(), "a.png"))
}
