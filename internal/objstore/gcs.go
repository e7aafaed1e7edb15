package objstore

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"
)

// GCSStore uploads to a Cloud Storage bucket, which is also where Firebase
// Storage keeps its objects.
type GCSStore struct {
	svc    *gcs.Service
	bucket string
}

// NewGCSStore connects with application default credentials.
func NewGCSStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs: bucket is required")
	}

	svc, err := gcs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}

	return &GCSStore{svc: svc, bucket: bucket}, nil
}

// Put implements Store. Small bodies go up in one request and only the
// body reads report progress; larger ones also report chunk uploads.
func (g *GCSStore) Put(ctx context.Context, key string, r io.Reader, size int64, onProgress ProgressFunc) (string, error) {
	progress := monotonic(onProgress)
	ct := ContentType(key)

	obj, err := g.svc.Objects.
		Insert(g.bucket, &gcs.Object{Name: key, ContentType: ct}).
		Media(newProgressReader(r, size, progress), googleapi.ContentType(ct)).
		ProgressUpdater(func(current, total int64) {
			if progress == nil {
				return
			}
			if total == 0 {
				total = size
			}
			progress(current, total)
		}).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("gcs: insert %s: %w", key, err)
	}

	return obj.MediaLink, nil
}
