// Package objstore uploads image bytes to a blob backend and returns a
// download URL for each stored object.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"sync"

	"github.com/nikbrunner/imgpick/internal/storage"
)

// ErrUnknownBackend is returned by Open for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown object store backend")

// ProgressFunc receives the bytes transferred so far and the total size.
// total is -1 when the size is unknown.
type ProgressFunc func(transferred, total int64)

// Store puts objects under a key and returns a URL the object can be
// downloaded from.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, onProgress ProgressFunc) (string, error)
}

// Open builds the backend named in cfg.
func Open(ctx context.Context, cfg storage.ObjectStoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.LocalDir, cfg.BaseURL), nil
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:          cfg.Bucket,
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
		})
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// ContentType guesses the MIME type from the key's extension.
func ContentType(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// progressReader reports the running byte count as it is read.
type progressReader struct {
	r     io.Reader
	n     int64
	total int64
	fn    ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.n += int64(n)
		if p.fn != nil {
			p.fn(p.n, p.total)
		}
	}
	return n, err
}

// monotonic drops reports that would move progress backwards. Backends that
// report from more than one place (body reads and chunk acknowledgements)
// go through it.
func monotonic(fn ProgressFunc) ProgressFunc {
	if fn == nil {
		return nil
	}

	var mu sync.Mutex
	var last int64 = -1
	return func(transferred, total int64) {
		mu.Lock()
		defer mu.Unlock()
		if transferred <= last {
			return
		}
		last = transferred
		fn(transferred, total)
	}
}
