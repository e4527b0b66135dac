package slog

import (
	"bytes"
	"encoding/json"
	stdslog "log/slog"
	"testing"

	"github.com/unkn0wn-root/hairstrand"
)

func TestSlogLoggerWritesSortedAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo})
	l := New(stdslog.New(h))

	l.Debug("hidden", hairstrand.Fields{"x": 1})
	l.Warn("trailing bytes after last strand", hairstrand.Fields{"source": "a.data", "offset": 60})

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected exactly one JSON record, got %q: %v", buf.String(), err)
	}
	if rec["level"] != "WARN" || rec["msg"] != "trailing bytes after last strand" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["component"] != "hairstrand" || rec["source"] != "a.data" || rec["offset"] != float64(60) {
		t.Fatalf("unexpected attrs: %v", rec)
	}
}
