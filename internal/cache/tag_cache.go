// Package cache holds read-through caches in front of the store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/deskops/support-desk/internal/domain"
)

const (
	tagKeyPrefix  = "support-desk:tag:"
	defaultTagTTL = 10 * time.Minute
)

// ErrMiss is returned by Get when the tag is not cached.
var ErrMiss = errors.New("cache miss")

// TagCache caches tag lookups by id.
type TagCache interface {
	Get(ctx context.Context, id int64) (*domain.Tag, error)
	Set(ctx context.Context, tag *domain.Tag) error
	Delete(ctx context.Context, id int64) error
}

type cachedTag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Colour    string    `json:"colour"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RedisTagCache stores tags as JSON strings with a TTL.
type RedisTagCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTagCache returns a Redis-backed cache, or a no-op cache when client is nil.
func NewTagCache(client *redis.Client, ttl time.Duration) TagCache {
	if client == nil {
		return NopTagCache{}
	}
	if ttl <= 0 {
		ttl = defaultTagTTL
	}
	return &RedisTagCache{client: client, ttl: ttl}
}

func tagKey(id int64) string {
	return fmt.Sprintf("%s%d", tagKeyPrefix, id)
}

func (c *RedisTagCache) Get(ctx context.Context, id int64) (*domain.Tag, error) {
	raw, err := c.client.Get(ctx, tagKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}

	var cached cachedTag
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("decode cached tag: %w", err)
	}
	return &domain.Tag{
		ID:        cached.ID,
		Name:      cached.Name,
		Colour:    cached.Colour,
		CreatedAt: cached.CreatedAt,
		UpdatedAt: cached.UpdatedAt,
	}, nil
}

func (c *RedisTagCache) Set(ctx context.Context, tag *domain.Tag) error {
	payload, err := json.Marshal(cachedTag{
		ID:        tag.ID,
		Name:      tag.Name,
		Colour:    tag.Colour,
		CreatedAt: tag.CreatedAt,
		UpdatedAt: tag.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tagKey(tag.ID), payload, c.ttl).Err()
}

func (c *RedisTagCache) Delete(ctx context.Context, id int64) error {
	return c.client.Del(ctx, tagKey(id)).Err()
}

// NopTagCache never stores anything.
type NopTagCache struct{}

func (NopTagCache) Get(context.Context, int64) (*domain.Tag, error) { return nil, ErrMiss }
func (NopTagCache) Set(context.Context, *domain.Tag) error          { return nil }
func (NopTagCache) Delete(context.Context, int64) error             { return nil }
