// Package config loads havenlist settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// StorageDriver identifies a concrete durable slot backend.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // process memory only (tests / ephemeral)
	StorageFS       StorageDriver = "fs"       // one JSON file per slot
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageRedis    StorageDriver = "redis"    // Redis keys
	StorageS3       StorageDriver = "s3"       // S3 / MinIO objects
)

// IDStrategy selects how record identifiers are generated.
type IDStrategy string

const (
	IDUUIDv7   IDStrategy = "uuidv7"
	IDSequence IDStrategy = "sequence"
)

// Storage captures slot backend settings.
type Storage struct {
	Driver      StorageDriver `env:"HAVENLIST_STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string        `env:"HAVENLIST_SQLITE_PATH" envDefault:"./havenlist.db"`
	PostgresDSN string        `env:"HAVENLIST_POSTGRES_DSN"`
	FSRoot      string        `env:"HAVENLIST_FS_ROOT" envDefault:"./havenlist-data"`
	RedisURL    string        `env:"HAVENLIST_REDIS_URL"`
	RedisPrefix string        `env:"HAVENLIST_REDIS_PREFIX" envDefault:"havenlist:slot:"`
	S3          S3
}

// S3 captures the S3 slot backend settings. Credentials fall back to the
// default AWS chain when the access key is empty.
type S3 struct {
	Bucket          string `env:"HAVENLIST_S3_BUCKET"`
	Region          string `env:"HAVENLIST_S3_REGION" envDefault:"us-east-1"`
	Endpoint        string `env:"HAVENLIST_S3_ENDPOINT"`
	Prefix          string `env:"HAVENLIST_S3_PREFIX"`
	PathStyle       bool   `env:"HAVENLIST_S3_PATH_STYLE"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	SessionToken    string `env:"AWS_SESSION_TOKEN"`
}

// Log captures logger settings.
type Log struct {
	Level  string `env:"HAVENLIST_LOG_LEVEL" envDefault:"info"`
	Format string `env:"HAVENLIST_LOG_FORMAT" envDefault:"text"`
}

// Telemetry captures OpenTelemetry export settings. Tracing is exported
// only when Endpoint is set and Enabled is true.
type Telemetry struct {
	Enabled     bool   `env:"HAVENLIST_OTEL_ENABLED" envDefault:"true"`
	Endpoint    string `env:"HAVENLIST_OTEL_ENDPOINT"`
	ServiceName string `env:"HAVENLIST_OTEL_SERVICE_NAME" envDefault:"havenlist"`
}

// Config is the full application configuration.
type Config struct {
	Storage      Storage
	Log          Log
	Telemetry    Telemetry
	IDStrategy   IDStrategy `env:"HAVENLIST_ID_STRATEGY" envDefault:"uuidv7"`
	PersistHomes bool       `env:"HAVENLIST_PERSIST_HOMES"`
	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace string `env:"HAVENLIST_METRICS_NAMESPACE" envDefault:"havenlist"`
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings and per-driver requirements.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageFS, StorageSQLite, StoragePostgres:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("HAVENLIST_REDIS_URL required for redis driver")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("HAVENLIST_S3_BUCKET required for s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %s", c.Storage.Driver)
	}
	switch c.IDStrategy {
	case IDUUIDv7, IDSequence:
	default:
		return fmt.Errorf("unknown id strategy %s", c.IDStrategy)
	}
	return nil
}
