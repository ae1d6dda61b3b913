package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"staybook/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const ownerKeyPrefix = "listing:owner:"

func ownerKey(id uint64) string {
	return ownerKeyPrefix + strconv.FormatUint(id, 10)
}

// OwnerCache is the subset of a key/value store the directory cache needs.
// Get reports a miss with ok == false and a nil error.
type OwnerCache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type redisOwnerCache struct {
	client *redis.Client
}

func NewRedisOwnerCache(client *redis.Client) OwnerCache {
	return &redisOwnerCache{client: client}
}

func (c *redisOwnerCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (c *redisOwnerCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisOwnerCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// CachedDirectory is a read-through owner cache in front of a Directory.
// Cache failures are logged and never fail a lookup. Count is not cached since
// new listings must become visible immediately.
type CachedDirectory struct {
	next  Directory
	cache OwnerCache
	ttl   time.Duration
	log   *logger.Logger
}

func NewCachedDirectory(next Directory, cache OwnerCache, ttl time.Duration, log *logger.Logger) *CachedDirectory {
	return &CachedDirectory{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func (d *CachedDirectory) Owner(ctx context.Context, id uint64) (string, error) {
	key := ownerKey(id)

	owner, ok, err := d.cache.Get(ctx, key)
	if err != nil {
		d.log.Warn("Listing owner cache read failed", "listing_id", id, "error", err)
	} else if ok {
		return owner, nil
	}

	owner, err = d.next.Owner(ctx, id)
	if err != nil {
		return "", err
	}

	if err := d.cache.Set(ctx, key, owner, d.ttl); err != nil {
		d.log.Warn("Listing owner cache write failed", "listing_id", id, "error", err)
	}
	return owner, nil
}

func (d *CachedDirectory) Count(ctx context.Context) (uint64, error) {
	return d.next.Count(ctx)
}

// Invalidate drops the cached owner of a listing after it changes.
func (d *CachedDirectory) Invalidate(ctx context.Context, id uint64) {
	if err := d.cache.Del(ctx, ownerKey(id)); err != nil {
		d.log.Warn("Listing owner cache invalidation failed", "listing_id", id, "error", err)
	}
}
