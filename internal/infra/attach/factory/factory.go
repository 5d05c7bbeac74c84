// Package factory opens the attachment backend selected by the process
// environment. It sits above the backend packages so they stay free of each
// other's imports.
package factory

import (
	"context"
	"fmt"

	"flowcore/internal/infra/attach"
	"flowcore/internal/infra/attach/fs"
	"flowcore/internal/infra/attach/memory"
	"flowcore/internal/infra/attach/s3"
)

// Open selects and opens the attachment backend from environment variables.
func Open(ctx context.Context) (attach.Store, error) {
	cfg, err := attach.LoadEnvConfig()
	if err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case attach.DriverFilesystem:
		return fs.New(cfg.Root)
	case attach.DriverS3:
		return s3.New(ctx, s3.Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			SessionToken:    cfg.S3SessionToken,
			PathStyle:       cfg.S3PathStyle,
		})
	case attach.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown attachment driver %q", cfg.Driver)
	}
}
