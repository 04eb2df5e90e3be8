package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"
)

// ErrDisabled is returned by Ping when caching is turned off
var ErrDisabled = errors.New("cache disabled")

// Cache stores scraped listing pages between analyses
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// ListingKey derives the cache key for a listing-search URL
func ListingKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return "listing:" + hex.EncodeToString(sum[:])
}

// NoopCache never stores anything
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (NoopCache) Set(context.Context, string, string, time.Duration) error { return nil }

func (NoopCache) Ping(context.Context) error { return ErrDisabled }

func (NoopCache) Close() error { return nil }
