package hairstrand

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/unkn0wn-root/hairstrand/geom"
	"github.com/unkn0wn-root/hairstrand/internal/wire"
)

const (
	// ReferenceStrands is the strand count of every hairstyle in the
	// USC-HairSalon dataset.
	ReferenceStrands = 10000
	// ReferenceStrandVertices is the only non-root vertex count the dataset emits.
	ReferenceStrandVertices = 100

	// floats per payload chunk, a multiple of 3 so chunks hold whole points
	chunkFloats = wire.MaxChunk / 12 * 3
)

// Policy controls which per-strand vertex counts are accepted.
type Policy uint8

const (
	// PolicyGeneral accepts any vertex_count >= 0; 0 and 1 are roots.
	PolicyGeneral Policy = iota
	// PolicyReference only accepts 1 or 100, as emitted by the reference dataset.
	PolicyReference
)

func (p Policy) String() string {
	switch p {
	case PolicyGeneral:
		return "general"
	case PolicyReference:
		return "reference"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "general":
		return PolicyGeneral, nil
	case "reference", "strict":
		return PolicyReference, nil
	default:
		return 0, fmt.Errorf("hairstrand: unknown policy %q", s)
	}
}

type decodeConfig struct {
	policy   Policy
	expected int // 0 disables the strand count check
	strict   bool
	source   string
	log      Logger
	hooks    Hooks
}

// Option tunes a single Decode call.
type Option func(*decodeConfig)

func WithPolicy(p Policy) Option { return func(c *decodeConfig) { c.policy = p } }

// WithExpectedStrands checks the declared strand count against n. With strict
// set a mismatch fails the decode, otherwise it is logged and reported to
// Hooks.StrandCountMismatch.
func WithExpectedStrands(n int, strict bool) Option {
	return func(c *decodeConfig) {
		c.expected = n
		c.strict = strict
	}
}

func WithLogger(l Logger) Option { return func(c *decodeConfig) { c.log = l } }
func WithHooks(h Hooks) Option   { return func(c *decodeConfig) { c.hooks = h } }

// WithSource names the input in logs and hook events.
func WithSource(name string) Option { return func(c *decodeConfig) { c.source = name } }

func newDecodeConfig(opts []Option) decodeConfig {
	var c decodeConfig
	for _, o := range opts {
		if o != nil {
			o(&c)
		}
	}
	c.log = coalesce[Logger](c.log, NopLogger{})
	c.hooks = coalesce[Hooks](c.hooks, NopHooks{})
	return c
}

// Decode reads one strand file from r and builds its line-segment graph.
// Strands with fewer than two vertices are dropped. On error the returned
// Geometry is always empty. r is borrowed, never closed.
func Decode(r io.Reader, opts ...Option) (geom.Geometry, error) {
	g, _, err := decodeReport(r, newDecodeConfig(opts))
	return g, err
}

// DecodeBytes is Decode over an in-memory file.
func DecodeBytes(b []byte, opts ...Option) (geom.Geometry, error) {
	return Decode(bytes.NewReader(b), opts...)
}

// sourceReport is what a successful decode noticed about its source besides
// the geometry. The Loader caches it to replay the warnings on a hit.
type sourceReport struct {
	strands  int   // declared strand_count
	trailing int64 // offset of trailing bytes; 0 => none
}

func decodeReport(r io.Reader, cfg decodeConfig) (geom.Geometry, sourceReport, error) {
	g, rep, err := decode(wire.NewReader(r), cfg)
	if err != nil {
		if IsFormatError(err) {
			cfg.hooks.FormatRejected(cfg.source, err)
		}
		return geom.Geometry{}, sourceReport{}, err
	}
	return g, rep, nil
}

// warnSoft emits the non-fatal findings of rep: a strand count that differs
// from a non-strict expectation, and trailing bytes.
func (cfg decodeConfig) warnSoft(rep sourceReport) {
	if cfg.expected > 0 && !cfg.strict && rep.strands != cfg.expected {
		cfg.log.Warn("unexpected strand count", Fields{"source": cfg.source, "expected": cfg.expected, "got": rep.strands})
		cfg.hooks.StrandCountMismatch(cfg.expected, rep.strands)
	}
	if rep.trailing > 0 {
		cfg.log.Warn("trailing bytes after last strand", Fields{"source": cfg.source, "offset": rep.trailing})
		cfg.hooks.TrailingBytes(rep.trailing)
	}
}

func decode(r *wire.Reader, cfg decodeConfig) (geom.Geometry, sourceReport, error) {
	var rep sourceReport
	n, err := r.Int32()
	if err != nil {
		return geom.Geometry{}, rep, readErr(err, "truncated header", -1, 0)
	}
	if n < 0 {
		return geom.Geometry{}, rep, &FormatError{Msg: "invalid strand count", Field: "strand_count", Value: int64(n), Strand: -1}
	}
	if cfg.expected > 0 && cfg.strict && int(n) != cfg.expected {
		return geom.Geometry{}, rep, &FormatError{Msg: "unexpected strand count", Field: "strand_count", Value: int64(n), Strand: -1}
	}
	rep.strands = int(n)

	verts := []geom.Point3{}
	edges := []geom.Edge{}
	roots := 0

	for i := 0; i < int(n); i++ {
		hdr := r.Offset()
		vc, err := r.Int32()
		if err != nil {
			return geom.Geometry{}, rep, readErr(err, "truncated record header", i, hdr)
		}
		if vc < 0 {
			return geom.Geometry{}, rep, &FormatError{Msg: "invalid vertex count", Field: "vertex_count", Value: int64(vc), Strand: i, Offset: hdr}
		}
		if cfg.policy == PolicyReference && vc != 1 && vc != ReferenceStrandVertices {
			return geom.Geometry{}, rep, &FormatError{Msg: "unexpected vertex count", Field: "vertex_count", Value: int64(vc), Strand: i, Offset: hdr}
		}

		base := len(verts)
		payload := r.Offset()
		for left := int64(vc) * 3; left > 0; {
			k := int(min(left, chunkFloats))
			b, err := r.Next(4 * k)
			if err != nil {
				return geom.Geometry{}, rep, readErr(err, "truncated vertex payload", i, payload)
			}
			for j := 0; j < k; j += 3 {
				verts = append(verts, geom.Point3{
					X: wire.Float32At(b, j),
					Y: wire.Float32At(b, j+1),
					Z: wire.Float32At(b, j+2),
				})
			}
			left -= int64(k)
		}

		if vc < 2 { // skip empty roots
			verts = verts[:base]
			roots++
			continue
		}
		for k := 1; k < int(vc); k++ {
			edges = append(edges, geom.Edge{base + k - 1, base + k})
		}
	}

	// every record is in; what follows cannot invalidate the geometry
	end := r.Offset()
	more, err := r.More()
	if err != nil {
		cfg.log.Warn("checking for trailing bytes failed", Fields{"source": cfg.source, "offset": end, "err": err})
	} else if more {
		rep.trailing = end
	}
	cfg.warnSoft(rep)

	cfg.log.Debug("decoded strands", Fields{
		"source":   cfg.source,
		"strands":  n,
		"roots":    roots,
		"vertices": len(verts),
		"edges":    len(edges),
	})
	return geom.Geometry{Vertices: verts, Edges: edges}, rep, nil
}

// readErr maps a short read to a FormatError; other I/O errors pass through.
func readErr(err error, msg string, strand int, off int64) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &FormatError{Msg: msg, Strand: strand, Offset: off, Err: err}
	}
	if strand < 0 {
		return fmt.Errorf("hairstrand: read header: %w", err)
	}
	return fmt.Errorf("hairstrand: read strand %d at offset %d: %w", strand, off, err)
}
