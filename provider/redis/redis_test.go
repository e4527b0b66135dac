package redis

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestProvider(t *testing.T, closeClient bool) (*Redis, *miniredis.Miniredis, goredis.UniversalClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	p, err := New(Config{Client: client, CloseClient: closeClient})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, mr, client
}

func TestProviderRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, mr, _ := newTestProvider(t, true)
	defer p.Close(ctx)

	if _, ok, err := p.Get(ctx, "strands:test:missing"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	val := []byte{'H', 'S', 'T', 'R', 0, 0xff}
	if ok, err := p.Set(ctx, "strands:test:k", val, int64(len(val)), time.Hour); !ok || err != nil {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	if ttl := mr.TTL("strands:test:k"); ttl != time.Hour {
		t.Fatalf("ttl: got %v want 1h", ttl)
	}
	got, ok, err := p.Get(ctx, "strands:test:k")
	if err != nil || !ok || !bytes.Equal(got, val) {
		t.Fatalf("Get: ok=%v err=%v got=%x", ok, err, got)
	}

	mr.FastForward(2 * time.Hour)
	if _, ok, _ := p.Get(ctx, "strands:test:k"); ok {
		t.Fatalf("expected expiry after TTL")
	}

	if _, err := p.Set(ctx, "strands:test:k", val, 0, 0); err != nil {
		t.Fatalf("Set without TTL: %v", err)
	}
	if ttl := mr.TTL("strands:test:k"); ttl != 0 {
		t.Fatalf("expected no expiry, got %v", ttl)
	}
	if err := p.Del(ctx, "strands:test:k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if mr.Exists("strands:test:k") {
		t.Fatalf("key still present after Del")
	}
}

func TestProviderServerErrors(t *testing.T) {
	ctx := context.Background()
	p, mr, _ := newTestProvider(t, true)
	defer p.Close(ctx)

	mr.SetError("LOADING")
	if _, ok, err := p.Get(ctx, "k"); ok || err == nil {
		t.Fatalf("expected server error to surface, got ok=%v err=%v", ok, err)
	}
}

func TestCloseOnlyOwnedClient(t *testing.T) {
	ctx := context.Background()

	shared, _, client := newTestProvider(t, false)
	if err := shared.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("shared client must stay open: %v", err)
	}
	_ = client.Close()

	owned, _, client := newTestProvider(t, true)
	for i := 0; i < 2; i++ {
		if err := owned.Close(ctx); err != nil {
			t.Fatalf("Close #%d: %v", i, err)
		}
	}
	if err := client.Ping(ctx).Err(); err == nil {
		t.Fatalf("owned client must be closed")
	}

	if _, err := New(Config{}); err != ErrNilClient {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}
}
