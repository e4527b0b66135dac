package genstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGenStore shares purge generations across processes and survives restarts.
// With a TTL, a generation key that expires reads as 0 again; entries cached
// under generation 0 before the first purge are long gone by then as long as
// the TTL exceeds the cache TTL.
type RedisGenStore struct {
	rdb redis.UniversalClient
	ttl time.Duration // 0 disables expiry
}

var _ GenStore = (*RedisGenStore)(nil)

// NewRedisGenStore creates a Redis-backed generation store without TTL.
func NewRedisGenStore(client redis.UniversalClient) *RedisGenStore {
	return &RedisGenStore{rdb: client}
}

// NewRedisGenStoreWithTTL creates a Redis-backed generation store with TTL.
// If ttl <= 0, keys do not expire.
func NewRedisGenStoreWithTTL(client redis.UniversalClient, ttl time.Duration) *RedisGenStore {
	return &RedisGenStore{rdb: client, ttl: ttl}
}

func key(ns string) string { return "strands-gen:" + ns }

// Snapshot returns the current generation.
// Missing keys are treated as generation 0.
func (s *RedisGenStore) Snapshot(ctx context.Context, namespace string) (uint64, error) {
	res, err := s.rdb.Get(ctx, key(namespace)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(res, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis gen parse: %w", err)
	}
	return u, nil
}

// Bump atomically increments the generation and (optionally) refreshes TTL.
// When ttl > 0, INCR + EXPIRE are pipelined in a single round-trip.
func (s *RedisGenStore) Bump(ctx context.Context, namespace string) (uint64, error) {
	k := key(namespace)

	if s.ttl <= 0 {
		v, err := s.rdb.Incr(ctx, k).Result()
		if err != nil {
			return 0, err
		}
		return uint64(v), nil
	}

	var incr *redis.IntCmd
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return uint64(incr.Val()), nil
}

// Cleanup is not applicable for RedisGenStore (Redis handles expiry if TTL is set).
func (s *RedisGenStore) Cleanup(time.Duration) {}

// Close is a no-op: the client is shared with the cache provider, which owns it.
func (s *RedisGenStore) Close(context.Context) error { return nil }
