// Package slog adapts log/slog to hairstrand.Logger.
package slog

import (
	"context"
	stdslog "log/slog"
	"sort"

	"github.com/unkn0wn-root/hairstrand"
)

var _ hairstrand.Logger = Logger{}

type Logger struct{ L *stdslog.Logger }

// New tags every record with component=hairstrand.
func New(l *stdslog.Logger) Logger { return Logger{L: l.With("component", "hairstrand")} }

func (s Logger) Debug(msg string, f hairstrand.Fields) { s.log(stdslog.LevelDebug, msg, f) }
func (s Logger) Info(msg string, f hairstrand.Fields)  { s.log(stdslog.LevelInfo, msg, f) }
func (s Logger) Warn(msg string, f hairstrand.Fields)  { s.log(stdslog.LevelWarn, msg, f) }
func (s Logger) Error(msg string, f hairstrand.Fields) { s.log(stdslog.LevelError, msg, f) }

func (s Logger) log(level stdslog.Level, msg string, f hairstrand.Fields) {
	ctx := context.Background()
	if !s.L.Enabled(ctx, level) {
		return
	}
	s.L.LogAttrs(ctx, level, msg, attrs(f)...)
}

func attrs(f hairstrand.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]stdslog.Attr, 0, len(f))
	for _, k := range keys {
		out = append(out, stdslog.Any(k, f[k]))
	}
	return out
}
