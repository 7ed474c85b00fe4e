package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"taskboard/internal/engine"
	"taskboard/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// StatsCache keeps each owner's general statistics in redis for a short
// TTL so dashboard polling does not recompute on every request. With no
// redis configured every lookup misses and the service computes from the
// snapshot; the cache never makes requests fail.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redis for stat caching. An empty addr or a failed ping
// leaves the client nil and the cache degraded to a pass-through.
func New(addr, password string, db int, ttl time.Duration) *StatsCache {
	c := &StatsCache{ttl: ttl}
	if addr == "" {
		return c
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("stats cache disabled, redis unreachable", "error", err)
		return c
	}
	c.client = client
	return c
}

func key(ownerID int64) string {
	return "stats:general:" + strconv.FormatInt(ownerID, 10)
}

func (c *StatsCache) Get(ctx context.Context, ownerID int64) (*engine.GeneralStats, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key(ownerID)).Bytes()
	if err != nil {
		return nil, false
	}
	var s engine.GeneralStats
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return &s, true
}

func (c *StatsCache) Set(ctx context.Context, ownerID int64, s *engine.GeneralStats) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(ownerID), raw, c.ttl).Err(); err != nil {
		logger.Debug("stats cache set failed", "owner_id", ownerID, "error", err)
	}
}

// Invalidate drops the owner's entry after any task mutation.
func (c *StatsCache) Invalidate(ctx context.Context, ownerID int64) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key(ownerID)).Err(); err != nil {
		logger.Debug("stats cache invalidate failed", "owner_id", ownerID, "error", err)
	}
}
