package store

import (
	"context"
	"fmt"

	"github.com/kevinaaaquil/library/backend/config"
)

// Open connects the backend selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverBolt:
		return NewBolt(cfg.BoltPath)
	case config.DriverFile:
		return NewFile(cfg.DataDir)
	case config.DriverMongo:
		return NewMongo(ctx, cfg.MongoURI, cfg.DBName)
	case config.DriverS3:
		return NewS3(ctx, S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			Prefix:          cfg.S3Prefix,
			Endpoint:        cfg.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
