package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"

	"github.com/imamik/srxgate/internal/config"
	"github.com/imamik/srxgate/internal/platform/s3"
)

// Archiver stores snapshots.
type Archiver interface {
	Archive(ctx context.Context, s *Snapshot) error
}

// ObjectStore is the part of the S3 client the archive needs.
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key string, data []byte) error
}

// S3Archive writes each snapshot as <prefix>/<unix-seconds>.json.
type S3Archive struct {
	store  ObjectStore
	bucket string
	prefix string
	ready  bool
}

// NewS3Archive returns an archive over store.
func NewS3Archive(store ObjectStore, bucket, prefix string) *S3Archive {
	return &S3Archive{store: store, bucket: bucket, prefix: prefix}
}

// NewArchiveFromConfig builds the S3 archive, or returns nil when archiving
// is disabled.
func NewArchiveFromConfig(cfg config.ArchiveConfig) (Archiver, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := s3.NewClient(cfg.Endpoint, cfg.Region, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, err
	}
	return NewS3Archive(client, cfg.Bucket, cfg.Prefix), nil
}

// Key returns the object key of s.
func (a *S3Archive) Key(s *Snapshot) string {
	return path.Join(a.prefix, strconv.FormatInt(s.Time.Unix(), 10)+".json")
}

// Archive implements Archiver. The bucket is created on first use.
func (a *S3Archive) Archive(ctx context.Context, s *Snapshot) error {
	if !a.ready {
		if err := a.store.EnsureBucket(ctx, a.bucket); err != nil {
			return err
		}
		a.ready = true
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return a.store.PutObject(ctx, a.bucket, a.Key(s), data)
}
