package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	pr "github.com/unkn0wn-root/hairstrand/provider"
)

// Provider stores entries off the GC heap. BigCache has one global
// LifeWindow, so the per-call TTL is ignored.
type Provider struct {
	c *bc.BigCache
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	Shards             int // power of two; 0 => bigcache default (1024)
	MaxEntriesInWindow int
	MaxEntrySize       int // initial sizing hint, not a limit
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

// MinShardMB is the smallest shard SizedConfig hands out. Each shard must hold
// a whole entry, and a reference hairstyle (10000 strands of 100 vertices)
// encodes to 12 to 20 MiB depending on the codec.
const MinShardMB = 32

// SizedConfig sizes a cache for few, large geometries within hardMaxMB
// (0 => unlimited). Shards are halved until one shard holds MinShardMB, so
// hardMaxMB below MinShardMB leaves a single shard of hardMaxMB.
func SizedConfig(lifeWindow time.Duration, hardMaxMB int) Config {
	shards := 16
	if hardMaxMB > 0 {
		for shards > 1 && hardMaxMB/shards < MinShardMB {
			shards /= 2
		}
	}
	return Config{
		LifeWindow:         lifeWindow,
		Shards:             shards,
		MaxEntriesInWindow: shards * 4,
		MaxEntrySize:       256 << 10,
		HardMaxCacheSizeMB: hardMaxMB,
	}
}

func New(cfg Config) (*Provider, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	return b, err == nil, err
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	// BigCache does not support per-entry TTL; uses global LifeWindow.
	return true, p.c.Set(key, value)
}

func (p *Provider) Del(_ context.Context, key string) error {
	if err := p.c.Delete(key); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
		return err
	}
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	return p.c.Close()
}
