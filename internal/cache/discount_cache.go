// Package cache keeps discount snapshots in Redis so status checks do not
// hit Postgres on every render.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/perks/internal/model"
)

func NewClient(address, username, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       0,
	})
}

type DiscountCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewDiscountCache(rdb redis.Cmdable, ttl time.Duration) *DiscountCache {
	return &DiscountCache{rdb: rdb, ttl: ttl}
}

func key(id uuid.UUID) string { return "discount:" + id.String() }

// Get returns nil, nil on a miss.
func (c *DiscountCache) Get(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
	body, err := c.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", id, err)
	}

	var d model.Discount
	if err := json.Unmarshal(body, &d); err != nil {
		// drop the poisoned entry so the next read reloads from the database
		log.Warn().Err(err).Str("discount_id", id.String()).Msg("discarding undecodable cache entry")
		_ = c.rdb.Del(ctx, key(id)).Err()
		return nil, nil
	}
	d.DecodeAvailability()
	return &d, nil
}

func (c *DiscountCache) Set(ctx context.Context, d *model.Discount) error {
	body, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", d.ID, err)
	}
	if err := c.rdb.Set(ctx, key(d.ID), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", d.ID, err)
	}
	return nil
}

// Invalidate drops the snapshot; the next read goes to the database.
func (c *DiscountCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.rdb.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", id, err)
	}
	return nil
}
