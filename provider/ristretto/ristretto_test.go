package ristretto

import (
	"bytes"
	"context"
	"testing"
)

func TestProviderRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, err := New(DefaultConfig(1 << 20))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close(ctx)

	val := []byte("geometry")
	if ok, err := p.Set(ctx, "k", val, int64(len(val)), 0); !ok || err != nil {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	got, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(got, val) {
		t.Fatalf("Get: got=%q ok=%v err=%v", got, ok, err)
	}

	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	// Del goes through ristretto's buffers too
	p.c.Wait()
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after Del")
	}
}

func TestInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for zero config")
	}
}
