package objstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects below a root directory.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates a store rooted at dir. When baseURL is set, download
// URLs are baseURL/key instead of file:// URLs.
func NewLocalStore(dir, baseURL string) *LocalStore {
	if dir == "" {
		dir = "."
	}
	return &LocalStore{root: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Root returns the root directory.
func (l *LocalStore) Root() string {
	return l.root
}

// Put implements Store.
func (l *LocalStore) Put(ctx context.Context, key string, r io.Reader, size int64, onProgress ProgressFunc) (string, error) {
	dst := filepath.Join(l.root, filepath.FromSlash(key))
	if !strings.HasPrefix(dst, filepath.Clean(l.root)+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q escapes store root", key)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}

	_, err = io.Copy(f, newProgressReader(ctxReader{ctx: ctx, r: r}, size, onProgress))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return "", err
	}

	if l.baseURL != "" {
		return l.baseURL + "/" + key, nil
	}

	abs, err := filepath.Abs(dst)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// ctxReader stops a copy once the context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(b []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(b)
}
