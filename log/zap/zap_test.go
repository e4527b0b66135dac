package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/hairstrand"
)

func TestZapLoggerLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Debug("decoded strands", hairstrand.Fields{"vertices": 4, "edges": 2})
	l.Warn("trailing bytes after last strand", hairstrand.Fields{"offset": int64(60)})
	l.Error("boom", hairstrand.Fields{"err": errors.New("bad")})
	l.Info("plain", nil)

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].LoggerName != "hairstrand" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	ctx := entries[0].ContextMap()
	if ctx["vertices"] != int64(4) || ctx["edges"] != int64(2) {
		t.Fatalf("unexpected fields: %v", ctx)
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].ContextMap()["offset"] != int64(60) {
		t.Fatalf("unexpected warn entry: %+v", entries[1])
	}
	if entries[2].ContextMap()["err"] != "bad" {
		t.Fatalf("error field not rendered: %v", entries[2].ContextMap())
	}
	if len(entries[3].Context) != 0 {
		t.Fatalf("expected no fields, got %v", entries[3].Context)
	}
}
