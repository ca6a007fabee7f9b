package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// CacheBuilder is a fluent helper around the valkey client for simple
// get/set/delete of JSON-encoded values.
type CacheBuilder struct {
	cache      valkey.Client
	key        string
	value      string
	ttl        time.Duration
	ctx        context.Context
	ctxTimeout time.Duration
	err        error
}

func NewCacheBuilder(cache valkey.Client, key string) *CacheBuilder {
	return &CacheBuilder{
		cache:      cache,
		key:        key,
		ttl:        1 * time.Hour,
		ctxTimeout: 5 * time.Second,
		ctx:        context.Background(),
	}
}

func (c *CacheBuilder) WithStruct(value any) *CacheBuilder {
	bytes, err := json.Marshal(value)
	if err != nil {
		c.err = fmt.Errorf("failed to marshal value to json: %w", err)
		return c
	}

	c.value = string(bytes)
	return c
}

func (c *CacheBuilder) WithTTL(ttl time.Duration) *CacheBuilder {
	c.ttl = ttl
	return c
}

func (c *CacheBuilder) WithContext(ctx context.Context) *CacheBuilder {
	c.ctx = ctx
	return c
}

// Get unmarshals the cached value into target. The bool reports whether the
// key was present.
func (c *CacheBuilder) Get(target any) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	if c.cache == nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.ctxTimeout)
	defer cancel()

	result := c.cache.Do(ctx, c.cache.B().Get().Key(c.key).Build())
	if err := result.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache key %s: %w", c.key, err)
	}

	raw, err := result.ToString()
	if err != nil {
		return false, fmt.Errorf("failed to read cache value for %s: %w", c.key, err)
	}

	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value for %s: %w", c.key, err)
	}

	return true, nil
}

func (c *CacheBuilder) Set() error {
	if c.err != nil {
		return c.err
	}
	if c.cache == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.ctxTimeout)
	defer cancel()

	cmd := c.cache.B().Set().Key(c.key).Value(c.value).Ex(c.ttl).Build()
	if err := c.cache.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", c.key, err)
	}

	return nil
}

func (c *CacheBuilder) Delete() error {
	if c.err != nil {
		return c.err
	}
	if c.cache == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.ctxTimeout)
	defer cancel()

	if err := c.cache.Do(ctx, c.cache.B().Del().Key(c.key).Build()).Error(); err != nil {
		return fmt.Errorf("failed to delete cache key %s: %w", c.key, err)
	}

	return nil
}
