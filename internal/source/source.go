// Package source loads gallery images from a directory or a web page and
// opens image bytes for upload.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/imgpick/internal/model"
)

// DefaultLimit is the number of images loaded when no limit is given.
const DefaultLimit = 20

var (
	// ErrPermissionDenied is returned when the photo library cannot be read.
	ErrPermissionDenied = errors.New("photo library permission denied")
	// ErrUnsupportedLocator is returned by Open for schemes it cannot read.
	ErrUnsupportedLocator = errors.New("unsupported image locator")
)

// Item is one image found by a Source.
type Item struct {
	URL  string
	Name string
}

// Source lists images, most relevant first.
type Source interface {
	List(ctx context.Context, limit int) ([]Item, error)
}

// Placeholders returns n deterministic stand-in records.
func Placeholders(n int) []model.ImageRecord {
	records := make([]model.ImageRecord, 0, n)
	for i := range n {
		records = append(records, model.NewImageRecord(model.NewImageRecordParams{
			Index: i,
			URL:   fmt.Sprintf("https://source.unsplash.com/random/400x400?sig=%d", i),
		}))
	}
	return records
}

// Load lists images from src and turns them into gallery records. When the
// source reports a permission problem, placeholders are returned instead.
func Load(ctx context.Context, src Source, limit int) ([]model.ImageRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	items, err := src.List(ctx, limit)
	if errors.Is(err, ErrPermissionDenied) {
		logrus.WithError(err).Warn("falling back to placeholder images")
		return Placeholders(limit), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}

	records := make([]model.ImageRecord, 0, len(items))
	for i, item := range items {
		if i == limit {
			break
		}
		records = append(records, model.NewImageRecord(model.NewImageRecordParams{
			Index: i,
			URL:   item.URL,
			Name:  item.Name,
		}))
	}
	return records, nil
}
