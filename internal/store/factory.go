package store

import (
	"context"
	"fmt"

	"konntek-go/internal/bot"
	"konntek-go/internal/config"
)

// NewStoreFromConfig creates a Store implementation based on the store
// config type. Remote backends are wrapped in a RetryStore so transient
// failures get the configured number of attempts.
func NewStoreFromConfig(cfg config.StoreConfig, logger bot.Logger) (bot.Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem store requires a root path")
		}
		return NewFileSystemStore(cfg.Root)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 store requires s3_bucket to be set")
		}
		inner, err := NewS3Store(context.Background(), cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
		if err != nil {
			return nil, err
		}
		return NewRetryStore(inner, cfg.RetryAttempts, cfg.RetryDelay.Duration, logger), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
