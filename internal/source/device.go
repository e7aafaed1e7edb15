package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

var imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic", ".bmp"}

// DeviceSource reads image files from a local directory, newest first.
type DeviceSource struct {
	Dir   string
	Limit int
}

// List implements Source. Subdirectories are not walked.
func (d DeviceSource) List(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = d.Limit
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	entries, err := os.ReadDir(d.Dir)
	if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, d.Dir)
	}
	if err != nil {
		return nil, err
	}

	type entry struct {
		path    string
		modTime time.Time
	}
	var files []entry
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !IsImageFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(d.Dir, e.Name()))
		if err != nil {
			continue
		}
		files = append(files, entry{path: abs, modTime: info.ModTime()})
	}

	slices.SortStableFunc(files, func(a, b entry) int {
		return b.modTime.Compare(a.modTime)
	})

	items := make([]Item, 0, min(limit, len(files)))
	for _, f := range files[:min(limit, len(files))] {
		items = append(items, Item{URL: f.path, Name: filepath.Base(f.path)})
	}
	return items, nil
}

// IsImageFile reports whether name has a known image extension.
func IsImageFile(name string) bool {
	return slices.Contains(imageExts, strings.ToLower(filepath.Ext(name)))
}
