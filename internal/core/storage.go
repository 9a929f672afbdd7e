package core

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"havenlist/internal/infra/slots/fs"
	slotsmemory "havenlist/internal/infra/slots/memory"
	"havenlist/internal/infra/slots/postgres"
	"havenlist/internal/infra/slots/redis"
	"havenlist/internal/infra/slots/s3"
	"havenlist/internal/infra/slots/sqlite"
	"havenlist/internal/platform/config"
	"havenlist/pkg/domain"
)

// OpenSlotStore selects a slot backend from cfg. The sqlite driver is used
// when none is set.
func OpenSlotStore(ctx context.Context, cfg config.Storage) (domain.SlotStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = config.StorageSQLite
	}
	switch driver {
	case config.StorageMemory:
		return slotsmemory.New(), nil
	case config.StorageFS:
		return fs.New(cfg.FSRoot)
	case config.StorageSQLite:
		return sqlite.NewStore(ctx, cfg.SQLitePath)
	case config.StoragePostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	case config.StorageRedis:
		return redis.New(ctx, redis.Config{URL: cfg.RedisURL, Prefix: cfg.RedisPrefix})
	case config.StorageS3:
		return s3.New(ctx, s3.Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			SessionToken:    cfg.S3.SessionToken,
			PathStyle:       cfg.S3.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// OpenFromConfig opens the configured slot backend and a container over it.
// When reg is non-nil the container's metrics are registered on it. Options
// in opts are applied after the ones derived from cfg.
func OpenFromConfig(ctx context.Context, cfg config.Config, reg prometheus.Registerer, opts ...Option) (*Container, error) {
	slots, err := OpenSlotStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	derived := []Option{WithPersistencePolicy(domain.PersistencePolicy{Homes: cfg.PersistHomes})}
	if cfg.IDStrategy == config.IDSequence {
		derived = append(derived, WithIDGenerator(NewSequenceGenerator("")))
	}
	if reg != nil {
		rec, err := NewPrometheusRecorder(reg, cfg.MetricsNamespace)
		if err != nil {
			_ = slots.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		derived = append(derived, WithMetrics(rec))
	}
	c, err := Open(ctx, slots, append(derived, opts...)...)
	if err != nil {
		_ = slots.Close()
		return nil, err
	}
	return c, nil
}
