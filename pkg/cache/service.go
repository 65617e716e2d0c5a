package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"festbook/pkg/logger"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// Fetcher loads a value on a cache miss
type Fetcher func(ctx context.Context) (interface{}, error)

type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// GetOrSet is the cache-aside helper: read, else fetch and store
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fetch Fetcher, dest interface{}) error

	Ping(ctx context.Context) error
}

type service struct {
	client redis.UniversalClient
	log    *logger.Logger
}

func NewService(client redis.UniversalClient, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{client: client, log: log}
}

func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

// GetOrSet never fails because redis is down; only fetch errors are returned
func (s *service) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetch Fetcher, dest interface{}) error {
	err := s.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.log.WarnContext(ctx, "cache read failed, fetching", "key", key, "error", err)
	}

	data, err := fetch(ctx)
	if err != nil {
		return err
	}

	if setErr := s.Set(ctx, key, data, ttl); setErr != nil {
		s.log.WarnContext(ctx, "cache write failed", "key", key, "error", setErr)
	}

	// Round-trip so dest is filled the same way on hit and miss
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal fetched data error: %w", err)
	}
	return json.Unmarshal(raw, dest)
}

func (s *service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
