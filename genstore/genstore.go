package genstore

import (
	"context"
	"time"
)

// GenStore keeps a purge generation per cache namespace. A Loader mixes the
// current generation into its storage keys, so bumping it orphans every entry
// written before; orphans age out through the provider's TTL.
// Use LocalGenStore for a single process, RedisGenStore when several
// processes share a Redis cache.
type GenStore interface {
	// Snapshot returns the current generation; missing => 0.
	Snapshot(ctx context.Context, namespace string) (uint64, error)
	// Bump atomically increments and returns the new generation.
	Bump(ctx context.Context, namespace string) (uint64, error)
	// Cleanup prunes old metadata if applicable (no-op for Redis).
	Cleanup(retention time.Duration)
	Close(context.Context) error
}
