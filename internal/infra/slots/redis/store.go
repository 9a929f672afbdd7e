// Package redis persists slots as Redis string keys under a configurable prefix.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"havenlist/pkg/domain"
)

var _ domain.SlotStore = (*Store)(nil)

const defaultPrefix = "havenlist:slot:"

// Config describes how to reach Redis.
type Config struct {
	URL    string
	Prefix string
}

// Store is a Redis-backed slot store.
type Store struct {
	client *redis.Client
	prefix string
}

// New connects to Redis using cfg.URL and checks connectivity.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis url required")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewWithClient(client, cfg.Prefix), nil
}

// NewWithClient wraps an existing client. An empty prefix uses the default.
func NewWithClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(slot domain.Slot) string { return s.prefix + string(slot) }

// Get loads the payload stored for slot.
func (s *Store) Get(ctx context.Context, slot domain.Slot) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get slot %s: %w", slot, err)
	}
	return data, true, nil
}

// Put overwrites the payload for slot. Keys never expire.
func (s *Store) Put(ctx context.Context, slot domain.Slot, payload []byte) error {
	if err := s.client.Set(ctx, s.key(slot), payload, 0).Err(); err != nil {
		return fmt.Errorf("set slot %s: %w", slot, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *Store) Close() error { return s.client.Close() }
