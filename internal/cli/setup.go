package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/hairstrand"
	"github.com/unkn0wn-root/hairstrand/codec"
	"github.com/unkn0wn-root/hairstrand/genstore"
	"github.com/unkn0wn-root/hairstrand/geom"
	asynchook "github.com/unkn0wn-root/hairstrand/hooks/async"
	hlogrus "github.com/unkn0wn-root/hairstrand/log/logrus"
	hslog "github.com/unkn0wn-root/hairstrand/log/slog"
	hzap "github.com/unkn0wn-root/hairstrand/log/zap"
	pr "github.com/unkn0wn-root/hairstrand/provider"
	"github.com/unkn0wn-root/hairstrand/provider/bigcache"
	"github.com/unkn0wn-root/hairstrand/provider/redis"
	"github.com/unkn0wn-root/hairstrand/provider/ristretto"
	"github.com/unkn0wn-root/hairstrand/sloghooks"
)

// env is what every subcommand needs: a logger and a loader.
type env struct {
	log     hairstrand.Logger
	loader  *hairstrand.Loader
	closers []func()
}

func (e *env) close(ctx context.Context) {
	if e.loader != nil {
		if err := e.loader.Close(ctx); err != nil {
			e.log.Warn("closing cache provider", hairstrand.Fields{"err": err})
		}
	}
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func setup(conf *viper.Viper, logOut io.Writer) (*env, error) {
	e := &env{}
	log, flush, err := newLogger(conf.GetString("log_format"), conf.GetString("log_level"), logOut)
	if err != nil {
		return nil, err
	}
	e.log = log
	e.closers = append(e.closers, flush)

	var hooks hairstrand.Hooks
	if conf.GetBool("events") {
		lvl := slog.LevelInfo
		_ = lvl.UnmarshalText([]byte(conf.GetString("log_level")))
		raw := sloghooks.New(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: lvl})), sloghooks.Options{})
		async := asynchook.New(raw, 1, 256)
		hooks = async
		// drain queued events before the logger is flushed
		e.closers = append(e.closers, async.Close)
	}

	policy, err := hairstrand.ParsePolicy(conf.GetString("policy"))
	if err != nil {
		e.close(context.Background())
		return nil, err
	}
	decode := []hairstrand.Option{hairstrand.WithPolicy(policy)}
	if n := conf.GetInt("expected_strands"); n > 0 {
		decode = append(decode, hairstrand.WithExpectedStrands(n, conf.GetBool("strict_count")))
	}

	provider, gens, err := newProvider(conf)
	if err != nil {
		e.close(context.Background())
		return nil, err
	}
	gc, err := newCodec(conf.GetString("codec"), conf.GetInt("max_entry_mb"))
	if err != nil {
		e.close(context.Background())
		return nil, err
	}

	e.loader, err = hairstrand.NewLoader(hairstrand.LoaderOptions{
		Namespace: conf.GetString("namespace"),
		Provider:  provider,
		Codec:     gc,
		GenStore:  gens,
		Logger:    log,
		Hooks:     hooks,
		TTL:       cacheTTL(conf),
		Decode:    decode,
	})
	if err != nil {
		e.close(context.Background())
		return nil, err
	}
	return e, nil
}

func newLogger(format, level string, out io.Writer) (hairstrand.Logger, func(), error) {
	switch strings.ToLower(format) {
	case "", "zap":
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, nil, err
		}
		enc := zap.NewDevelopmentEncoderConfig()
		enc.TimeKey = ""
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(out), lvl)
		zl := zap.New(core)
		return hzap.New(zl), func() { _ = zl.Sync() }, nil
	case "logrus":
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, nil, err
		}
		ll := logrus.New()
		ll.SetOutput(out)
		ll.SetLevel(lvl)
		ll.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		return hlogrus.New(ll), func() {}, nil
	case "slog":
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, nil, err
		}
		sl := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl}))
		return hslog.New(sl), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", format)
	}
}

// newProvider returns the configured cache. Only Redis carries its own
// generation store; in-process caches die with the process and use the
// Loader's local default.
func newProvider(conf *viper.Viper) (pr.Provider, genstore.GenStore, error) {
	switch strings.ToLower(conf.GetString("cache")) {
	case "", "none":
		return nil, nil, nil
	case "ristretto":
		p, err := ristretto.New(ristretto.DefaultConfig(conf.GetInt64("cache_mb") << 20))
		return p, nil, err
	case "bigcache":
		p, err := bigcache.New(bigcache.SizedConfig(cacheTTL(conf), conf.GetInt("cache_mb")))
		return p, nil, err
	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: conf.GetString("redis_addr")})
		p, err := redis.New(redis.Config{Client: client, CloseClient: true})
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		// generations must outlive the entries they orphan
		return p, genstore.NewRedisGenStoreWithTTL(client, 2*cacheTTL(conf)), nil
	default:
		return nil, nil, fmt.Errorf("unknown cache %q", conf.GetString("cache"))
	}
}

func cacheTTL(conf *viper.Viper) time.Duration {
	if ttl := conf.GetDuration("cache_ttl"); ttl > 0 {
		return ttl
	}
	return time.Hour * 24
}

func newCodec(name string, maxEntryMB int) (codec.Codec[geom.Geometry], error) {
	var c codec.Codec[geom.Geometry]
	switch strings.ToLower(name) {
	case "", "protobuf":
		c = codec.Protobuf{}
	case "msgpack":
		c = codec.Msgpack[geom.Geometry]{}
	case "cbor":
		cb, err := codec.NewCBOR[geom.Geometry](true)
		if err != nil {
			return nil, err
		}
		c = cb
	case "json":
		c = codec.JSON[geom.Geometry]{}
	case "strands":
		c = hairstrand.StrandCodec{}
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
	if maxEntryMB > 0 {
		c = codec.Limit[geom.Geometry]{Inner: c, MaxDecode: maxEntryMB << 20}
	}
	return c, nil
}
