package genstore

import (
	"context"
	"testing"
	"time"
)

func TestLocalBumpPerNamespace(t *testing.T) {
	ctx := context.Background()
	s := NewLocalGenStore(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	for i := 0; i < 2; i++ {
		if _, err := s.Bump(ctx, "salon"); err != nil {
			t.Fatal(err)
		}
	}

	if g, _ := s.Snapshot(ctx, "salon"); g != 2 {
		t.Fatalf("salon gen=%d want 2", g)
	}
	if g, _ := s.Snapshot(ctx, "other"); g != 0 {
		t.Fatalf("other gen=%d want 0", g)
	}
}

func TestLocalCleanupPrunesOld(t *testing.T) {
	ctx := context.Background()
	s := NewLocalGenStore(0, time.Second)
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, err := s.Bump(ctx, "old"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(1200 * time.Millisecond)
	s.Cleanup(time.Second)

	g, err := s.Snapshot(ctx, "old")
	if err != nil {
		t.Fatal(err)
	}
	if g != 0 {
		t.Fatalf("expected pruned -> 0, got %d", g)
	}
}

func TestLocalCloseStopsCleanupLoop(t *testing.T) {
	s := NewLocalGenStore(10*time.Millisecond, time.Hour)
	if _, err := s.Bump(context.Background(), "ns"); err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	go func() {
		_ = s.Close(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
}
