package blob

import (
	"context"
	"fmt"

	"gasreport/internal/config"
	fsstore "gasreport/internal/infra/blob/fs"
	memstore "gasreport/internal/infra/blob/memory"
	s3store "gasreport/internal/infra/blob/s3"
)

// Open builds the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Blob) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverFilesystem, "":
		return NewFilesystem(cfg.FSRoot)
	case DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}

// NewFilesystem returns a store rooted at root.
func NewFilesystem(root string) (Store, error) {
	return fsstore.New(root)
}

// NewMemory returns an in-process store.
func NewMemory() Store {
	return memstore.New()
}

// NewS3 returns a store for the configured bucket.
func NewS3(ctx context.Context, cfg config.S3) (Store, error) {
	return s3store.New(ctx, s3store.Config{
		Region:          cfg.Region,
		Bucket:          cfg.Bucket,
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		PathStyle:       cfg.PathStyle,
	})
}

// NewMockS3ForTests returns an S3 store backed by an in-memory fake bucket.
func NewMockS3ForTests() Store {
	return s3store.NewMockForTests()
}
