package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/unkn0wn-root/hairstrand"
	"github.com/unkn0wn-root/hairstrand/geom"
)

func writeFixture(t *testing.T, dir, name string, strands [][]geom.Point3) string {
	t.Helper()
	var buf bytes.Buffer
	if err := hairstrand.EncodeStrands(&buf, strands); err != nil {
		t.Fatalf("EncodeStrands: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func fixtureStrands() [][]geom.Point3 {
	return [][]geom.Point3{
		{{X: 1, Y: 2, Z: 3}}, // root
		{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		{{X: 5, Y: 5, Z: 5}, {X: 5, Y: 6, Z: 5}, {X: 5, Y: 7, Z: 5}},
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestImportWritesOBJ(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir, "strands00001.data", fixtureStrands())
	outDir := filepath.Join(dir, "out")

	stdout, logs, err := run(t, "import", "--out", outDir, "--cache", "ristretto", "--codec", "msgpack", src)
	if err != nil {
		t.Fatalf("import: %v\nlogs:\n%s", err, logs)
	}
	dst := filepath.Join(outDir, "strands00001.obj")
	if strings.TrimSpace(stdout) != dst {
		t.Fatalf("stdout: got %q want %q", stdout, dst)
	}
	if !strings.Contains(logs, "imported hairstyle") {
		t.Fatalf("expected import log line, got:\n%s", logs)
	}

	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read obj: %v", err)
	}
	obj := string(b)
	if got := strings.Count(obj, "\nv "); got != 5 {
		t.Fatalf("expected 5 vertices, got %d:\n%s", got, obj)
	}
	for _, want := range []string{"o strands00001\n", "l 1 2\n", "l 3 4\n", "l 4 5\n"} {
		if !strings.Contains(obj, want) {
			t.Fatalf("missing %q in:\n%s", want, obj)
		}
	}
	if strings.Contains(obj, "l 2 3\n") {
		t.Fatalf("edge joins two strands:\n%s", obj)
	}
}

func TestInfoPrintsSummary(t *testing.T) {
	src := writeFixture(t, t.TempDir(), "h.data", fixtureStrands())
	stdout, _, err := run(t, "info", "--log_format", "logrus", src)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"strands:  2", "vertices: 5", "edges:    3"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("missing %q in:\n%s", want, stdout)
		}
	}
}

func TestReferencePolicyRejectsFixture(t *testing.T) {
	src := writeFixture(t, t.TempDir(), "h.data", fixtureStrands())
	_, _, err := run(t, "info", "--policy", "reference", "--log_format", "slog", src)
	if !hairstrand.IsFormatError(err) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestStrictStrandCountFromEnv(t *testing.T) {
	src := writeFixture(t, t.TempDir(), "h.data", fixtureStrands())
	t.Setenv("HAIRSTRAND_EXPECTED_STRANDS", "10000")
	t.Setenv("HAIRSTRAND_STRICT_COUNT", "true")
	_, _, err := run(t, "info", src)
	if err == nil || !strings.Contains(err.Error(), "unexpected strand count") {
		t.Fatalf("expected strand count error, got %v", err)
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir, "h.data", fixtureStrands())
	cfg := filepath.Join(dir, "hairstrand.yaml")
	if err := os.WriteFile(cfg, []byte("log_format: nope\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, err := run(t, "info", "--config", cfg, src)
	if err == nil || !strings.Contains(err.Error(), "unknown log format") {
		t.Fatalf("expected config value to apply, got %v", err)
	}
}

func TestPreviewWritesImage(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir, "h.data", fixtureStrands())
	dst := filepath.Join(dir, "h.png")
	if _, _, err := run(t, "preview", "--stride", "1", "--size", "2", "--out", dst, "--events", src); err != nil {
		t.Fatalf("preview: %v", err)
	}
	if fi, err := os.Stat(dst); err != nil || fi.Size() == 0 {
		t.Fatalf("preview not written: %v", err)
	}
}

func TestUnknownSettings(t *testing.T) {
	src := writeFixture(t, t.TempDir(), "h.data", fixtureStrands())
	for _, args := range [][]string{
		{"info", "--cache", "memcached", src},
		{"info", "--codec", "xml", src},
		{"info", "--policy", "loose", src},
		{"info", "--log_level", "loud", src},
	} {
		if _, _, err := run(t, args...); err == nil {
			t.Fatalf("%v: expected error", args)
		}
	}
}

func TestPurgeNeedsSharedCache(t *testing.T) {
	_, _, err := run(t, "purge", "--cache", "ristretto")
	if err == nil || !strings.Contains(err.Error(), "--cache=redis") {
		t.Fatalf("expected shared cache error, got %v", err)
	}
}

func TestRedisCacheAndPurge(t *testing.T) {
	mr := miniredis.RunT(t)
	src := writeFixture(t, t.TempDir(), "h.data", fixtureStrands())
	redisArgs := []string{"--cache", "redis", "--redis_addr", mr.Addr(), "--namespace", "salon"}

	if _, _, err := run(t, append([]string{"info"}, append(redisArgs, src)...)...); err != nil {
		t.Fatalf("info: %v", err)
	}
	cached := 0
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, "strands:salon:") {
			cached++
		}
	}
	if cached != 1 {
		t.Fatalf("expected one cached geometry, keys=%v", mr.Keys())
	}

	stdout, _, err := run(t, append([]string{"purge"}, redisArgs...)...)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if strings.TrimSpace(stdout) != "namespace salon now at generation 1" {
		t.Fatalf("purge output: %q", stdout)
	}
	if got, _ := mr.Get("strands-gen:salon"); got != "1" {
		t.Fatalf("generation in redis: %q", got)
	}
	if ttl := mr.TTL("strands-gen:salon"); ttl != 48*time.Hour {
		t.Fatalf("generation ttl: got %v want twice the cache ttl", ttl)
	}

	// the next load misses the orphaned entry and stores a fresh one
	if _, _, err := run(t, append([]string{"info"}, append(redisArgs, src)...)...); err != nil {
		t.Fatalf("info after purge: %v", err)
	}
	cached = 0
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, "strands:salon:") {
			cached++
		}
	}
	if cached != 2 {
		t.Fatalf("expected orphan plus fresh entry, keys=%v", mr.Keys())
	}
}

func TestBigcacheFlagsCacheGeometry(t *testing.T) {
	src := writeFixture(t, t.TempDir(), "h.data", fixtureStrands())
	_, logs, err := run(t, "info", "--cache", "bigcache", "--cache_mb", "64", "--log_level", "debug", src)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if strings.Contains(logs, "geometry cache set failed") {
		t.Fatalf("bigcache refused the entry:\n%s", logs)
	}
}
