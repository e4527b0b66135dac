package hairstrand

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	c "github.com/unkn0wn-root/hairstrand/codec"
	"github.com/unkn0wn-root/hairstrand/genstore"
	"github.com/unkn0wn-root/hairstrand/geom"
	"github.com/unkn0wn-root/hairstrand/internal/util"
	"github.com/unkn0wn-root/hairstrand/internal/wire"
	pr "github.com/unkn0wn-root/hairstrand/provider"
)

const (
	defaultNamespace      = "default"
	defaultTTL            = 24 * time.Hour
	defaultMaxSourceBytes = 64 << 20
)

type SetCostFunc func(key string, raw []byte) int64

// LoaderOptions tune a Loader. The zero value decodes every load without caching.
type LoaderOptions struct {
	Namespace string      // logical namespace for storage keys; "" => "default"
	Provider  pr.Provider // nil => caching disabled
	Codec     c.Codec[geom.Geometry]
	GenStore  genstore.GenStore // nil => in-process LocalGenStore

	Logger         Logger        // if nil, NopLogger is used
	Hooks          Hooks         // if nil, NopHooks is used; soft decode findings fire on cache hits too
	TTL            time.Duration // 0 => 24h
	MaxSourceBytes int64         // 0 => 64 MiB
	ComputeSetCost SetCostFunc   // default len(raw)

	// Decode options applied to every load (policy, expected strands).
	// Logger, Hooks and source name are supplied by the Loader.
	Decode []Option
}

// Loader reads strand files and caches their decoded geometry, keyed by a hash
// of the file content and the decode variant. It is safe for concurrent use
// when its Provider is.
type Loader struct {
	ns             string
	provider       pr.Provider
	codec          c.Codec[geom.Geometry]
	gens           genstore.GenStore
	log            Logger
	hooks          Hooks
	ttl            time.Duration
	maxSource      int64
	computeSetCost SetCostFunc
	decode         []Option
	variant        string
}

func NewLoader(opts LoaderOptions) (*Loader, error) {
	if opts.MaxSourceBytes < 0 {
		return nil, fmt.Errorf("hairstrand: negative MaxSourceBytes")
	}

	l := &Loader{
		provider: opts.Provider,
		codec:    opts.Codec,
	}
	l.ns = coalesce(opts.Namespace, defaultNamespace)
	l.log = coalesce[Logger](opts.Logger, NopLogger{})
	l.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	l.ttl = coalesce(opts.TTL, defaultTTL)
	l.maxSource = coalesce[int64](opts.MaxSourceBytes, defaultMaxSourceBytes)

	l.gens = opts.GenStore
	if l.gens == nil {
		l.gens = genstore.NewLocalGenStore(0, 0)
	}
	if l.codec == nil {
		l.codec = c.Protobuf{}
	}
	if opts.ComputeSetCost != nil {
		l.computeSetCost = opts.ComputeSetCost
	} else {
		l.computeSetCost = func(_ string, raw []byte) int64 { return int64(len(raw)) }
	}

	l.decode = make([]Option, 0, len(opts.Decode)+2)
	l.decode = append(l.decode, WithLogger(l.log), WithHooks(l.hooks))
	l.decode = append(l.decode, opts.Decode...)

	cfg := newDecodeConfig(l.decode)
	l.variant = fmt.Sprintf("%s/%d/%t", cfg.policy, cfg.expected, cfg.strict)
	return l, nil
}

// Caching reports whether loads go through a Provider.
func (l *Loader) Caching() bool { return l.provider != nil }

func (l *Loader) Close(ctx context.Context) error {
	gerr := l.gens.Close(ctx)
	if l.provider != nil {
		if err := l.provider.Close(ctx); err != nil {
			return err
		}
	}
	return gerr
}

// LoadFile opens path, loads it and closes it again on every exit path.
func (l *Loader) LoadFile(ctx context.Context, path string) (geom.Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("hairstrand: open source: %w", err)
	}
	defer f.Close()
	return l.Load(ctx, path, f)
}

// Load reads r to the end (bounded by MaxSourceBytes) and returns its geometry.
// r is borrowed, never closed.
func (l *Loader) Load(ctx context.Context, source string, r io.Reader) (geom.Geometry, error) {
	if err := ctx.Err(); err != nil {
		return geom.Geometry{}, err
	}
	content, err := io.ReadAll(io.LimitReader(r, l.maxSource+1))
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("hairstrand: read %s: %w", source, err)
	}
	if int64(len(content)) > l.maxSource {
		return geom.Geometry{}, fmt.Errorf("hairstrand: %s exceeds %d bytes", source, l.maxSource)
	}
	return l.LoadBytes(ctx, source, content)
}

// LoadBytes returns the geometry of an in-memory strand file.
func (l *Loader) LoadBytes(ctx context.Context, source string, content []byte) (geom.Geometry, error) {
	if err := ctx.Err(); err != nil {
		return geom.Geometry{}, err
	}

	var key string
	if l.provider != nil {
		k, err := l.storageKey(ctx, content)
		if err != nil {
			l.log.Warn("generation snapshot failed, bypassing cache", Fields{"source": source, "err": err})
		} else {
			key = k
		}
	}

	opts := make([]Option, 0, len(l.decode)+1)
	opts = append(opts, l.decode...)
	opts = append(opts, WithSource(source))
	cfg := newDecodeConfig(opts)

	if key != "" {
		if g, rep, ok := l.cached(ctx, key); ok {
			l.log.Debug("geometry cache hit", Fields{"source": source, "key": key})
			cfg.warnSoft(rep)
			return g, nil
		}
	}

	g, rep, err := decodeReport(bytes.NewReader(content), cfg)
	if err != nil {
		return geom.Geometry{}, err
	}

	if key != "" {
		l.store(ctx, key, g, rep)
	}
	return g, nil
}

// Invalidate drops the cached geometry for content, if any.
func (l *Loader) Invalidate(ctx context.Context, content []byte) error {
	if l.provider == nil {
		return nil
	}
	key, err := l.storageKey(ctx, content)
	if err != nil {
		return fmt.Errorf("hairstrand: invalidate: %w", err)
	}
	if err := l.provider.Del(ctx, key); err != nil {
		return fmt.Errorf("hairstrand: invalidate %s: %w", key, err)
	}
	l.log.Debug("invalidated cached geometry", Fields{"key": key})
	return nil
}

// Purge orphans every cached geometry of the namespace by bumping its
// generation. Orphaned entries are not deleted; they expire with their TTL.
func (l *Loader) Purge(ctx context.Context) (uint64, error) {
	gen, err := l.gens.Bump(ctx, l.ns)
	if err != nil {
		return 0, fmt.Errorf("hairstrand: purge %s: %w", l.ns, err)
	}
	l.log.Info("purged cached geometry", Fields{"namespace": l.ns, "generation": gen})
	return gen, nil
}

func (l *Loader) storageKey(ctx context.Context, content []byte) (string, error) {
	gen, err := l.gens.Snapshot(ctx, l.ns)
	if err != nil {
		return "", err
	}
	return util.ContentKey("strands:"+l.ns, l.variant+"/g"+strconv.FormatUint(gen, 10), content), nil
}

// cached never fails a load: provider errors count as a miss, broken entries
// are deleted and decoded again.
func (l *Loader) cached(ctx context.Context, key string) (geom.Geometry, sourceReport, bool) {
	raw, ok, err := l.provider.Get(ctx, key)
	if err != nil {
		l.log.Warn("geometry cache get failed", Fields{"key": key, "err": err})
		return geom.Geometry{}, sourceReport{}, false
	}
	if !ok {
		return geom.Geometry{}, sourceReport{}, false
	}
	e, err := wire.DecodeEntry(raw)
	if err != nil || e.Trailing > math.MaxInt64 {
		l.selfHeal(ctx, key, "corrupt")
		return geom.Geometry{}, sourceReport{}, false
	}
	g, err := l.codec.Decode(e.Payload)
	if err != nil {
		l.selfHeal(ctx, key, "value_decode")
		return geom.Geometry{}, sourceReport{}, false
	}
	if uint32(len(g.Vertices)) != e.Vertices || uint32(len(g.Edges)) != e.Edges || g.Validate() != nil {
		l.selfHeal(ctx, key, "count_mismatch")
		return geom.Geometry{}, sourceReport{}, false
	}
	return g, sourceReport{strands: int(e.Strands), trailing: int64(e.Trailing)}, true
}

func (l *Loader) store(ctx context.Context, key string, g geom.Geometry, rep sourceReport) {
	payload, err := l.codec.Encode(g)
	if err != nil {
		l.log.Warn("geometry encode failed, not caching", Fields{"key": key, "err": err})
		return
	}
	raw := wire.EncodeEntry(wire.Entry{
		Vertices: uint32(len(g.Vertices)),
		Edges:    uint32(len(g.Edges)),
		Strands:  uint32(rep.strands),
		Trailing: uint64(rep.trailing),
		Payload:  payload,
	})
	ok, err := l.provider.Set(ctx, key, raw, l.computeSetCost(key, raw), l.ttl)
	if err != nil {
		l.log.Warn("geometry cache set failed", Fields{"key": key, "err": err})
		return
	}
	if !ok {
		l.log.Debug("geometry rejected by provider (pressure)", Fields{"key": key, "bytes": len(raw)})
		l.hooks.ProviderSetRejected(key)
	}
}

func (l *Loader) selfHeal(ctx context.Context, key, reason string) {
	_ = l.provider.Del(ctx, key)
	l.log.Debug("dropped cached geometry", Fields{"key": key, "reason": reason})
	l.hooks.SelfHeal(key, reason)
}
