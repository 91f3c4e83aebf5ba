package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/gtd-inbox/internal/model"
	"github.com/d60-Lab/gtd-inbox/internal/repository"
	"github.com/d60-Lab/gtd-inbox/pkg/logger"
)

const listKey = "inbox:list"

func itemKey(id int64) string { return fmt.Sprintf("inbox:item:%d", id) }

// InboxCache is a read-through Redis cache in front of an InboxRepository.
// Writes go to the store first and then drop the affected keys. Redis errors
// fall back to the store; a failed invalidation leaves the old entry until
// its TTL expires.
type InboxCache struct {
	store  repository.InboxRepository
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

var _ repository.InboxRepository = (*InboxCache)(nil)

// NewInboxCache wraps store with a cache using the given client and TTL.
func NewInboxCache(store repository.InboxRepository, client *redis.Client, ttl time.Duration) *InboxCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &InboxCache{store: store, client: client, ttl: ttl}
}

func (c *InboxCache) List(ctx context.Context) ([]*model.Inbox, error) {
	var cached []*model.Inbox
	if c.load(ctx, listKey, &cached) {
		return cached, nil
	}

	rows, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	c.save(ctx, listKey, rows)
	return rows, nil
}

func (c *InboxCache) GetByID(ctx context.Context, id int64) (*model.Inbox, error) {
	var cached model.Inbox
	if c.load(ctx, itemKey(id), &cached) {
		return &cached, nil
	}

	row, err := c.store.GetByID(ctx, id)
	if err != nil {
		// misses are not cached
		return nil, err
	}
	c.save(ctx, itemKey(id), row)
	return row, nil
}

func (c *InboxCache) Create(ctx context.Context, inbox *model.Inbox) error {
	if err := c.store.Create(ctx, inbox); err != nil {
		return err
	}
	c.invalidate(ctx, listKey)
	return nil
}

func (c *InboxCache) UpdateItem(ctx context.Context, id int64, item string, modifiedAt time.Time) (*model.Inbox, error) {
	row, err := c.store.UpdateItem(ctx, id, item, modifiedAt)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, itemKey(id), listKey)
	return row, nil
}

func (c *InboxCache) Delete(ctx context.Context, id int64) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, itemKey(id), listKey)
	return nil
}

func (c *InboxCache) Count(ctx context.Context) (int64, error) {
	return c.store.Count(ctx)
}

func (c *InboxCache) load(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("inbox cache get failed", zap.String("key", key), zap.Error(err))
		}
		c.misses.Add(1)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Warn("inbox cache decode failed", zap.String("key", key), zap.Error(err))
		c.misses.Add(1)
		return false
	}
	c.hits.Add(1)
	return true
}

func (c *InboxCache) save(ctx context.Context, key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logger.Warn("inbox cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *InboxCache) invalidate(ctx context.Context, keys ...string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("inbox cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// ResetCounters clears the hit/miss counters.
func (c *InboxCache) ResetCounters() {
	c.hits.Store(0)
	c.misses.Store(0)
}

// Counters reports cache hits and misses since the last reset.
func (c *InboxCache) Counters() Counters {
	return Counters{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Counters summarises cache effectiveness during a run.
type Counters struct {
	Hits   int64
	Misses int64
}
