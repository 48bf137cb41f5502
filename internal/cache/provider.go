// Package cache holds the byte caches used in front of remote occurrence sources.
package cache

import (
	"context"
	"errors"
	"time"
)

// Provider stores encoded source responses. Implementations must be safe for concurrent use.
type Provider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Close() error
}

// ErrCacheMiss signals that a cache key was not found.
var ErrCacheMiss = errors.New("cache miss")

// RangeKey builds the cache key of one occurrence-range query. Bounds are normalised to UTC
// so equal instants in different zones share an entry.
func RangeKey(source, kind string, start, end time.Time) string {
	return source + ":" + kind + ":" + start.UTC().Format(time.RFC3339Nano) + ":" + end.UTC().Format(time.RFC3339Nano)
}

// NoopProvider never stores anything; every Get misses.
type NoopProvider struct{}

func (NoopProvider) Get(context.Context, string) ([]byte, error) {
	return nil, ErrCacheMiss
}

func (NoopProvider) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoopProvider) Del(context.Context, string) error { return nil }

func (NoopProvider) Close() error { return nil }
