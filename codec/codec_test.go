package codec

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/unkn0wn-root/hairstrand/geom"
)

func sample() geom.Geometry {
	return geom.Geometry{
		Vertices: []geom.Point3{
			{X: 0, Y: 0, Z: 0}, {X: 0.1, Y: -2.5, Z: 3e-7},
			{X: float32(math.Inf(1)), Y: math.MaxFloat32, Z: math.SmallestNonzeroFloat32},
			{X: 5, Y: 5, Z: 5}, {X: 5, Y: 6, Z: 5},
		},
		Edges: []geom.Edge{{0, 1}, {1, 2}, {3, 4}},
	}
}

func geometryCodecs(t *testing.T) map[string]Codec[geom.Geometry] {
	t.Helper()
	return map[string]Codec[geom.Geometry]{
		"json":      JSON[geom.Geometry]{},
		"msgpack":   Msgpack[geom.Geometry]{},
		"cbor":      MustCBOR[geom.Geometry](false),
		"cbor-det":  MustCBOR[geom.Geometry](true),
		"protobuf":  Protobuf{},
		"limit/pb":  Limit[geom.Geometry]{Inner: Protobuf{}, MaxDecode: 1 << 20},
		"limit/off": Limit[geom.Geometry]{Inner: Msgpack[geom.Geometry]{}},
	}
}

func TestGeometryRoundTrip(t *testing.T) {
	for name, c := range geometryCodecs(t) {
		for _, g := range []geom.Geometry{sample(), {}} {
			if name == "json" && len(g.Vertices) > 0 {
				// encoding/json cannot represent +Inf
				g.Vertices[2].X = 1
			}
			b, err := c.Encode(g)
			if err != nil {
				t.Fatalf("%s: Encode: %v", name, err)
			}
			got, err := c.Decode(b)
			if err != nil {
				t.Fatalf("%s: Decode: %v", name, err)
			}
			if diff := cmp.Diff(g, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("%s: round trip mismatch (-want +got):\n%s", name, diff)
			}
		}
	}
}

func TestProtobufBitExact(t *testing.T) {
	nan := math.Float32frombits(0x7fc00001)
	g := geom.Geometry{Vertices: []geom.Point3{{X: nan, Y: float32(math.Copysign(0, -1)), Z: 1}}}
	b, err := Protobuf{}.Encode(g)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Protobuf{}.Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if math.Float32bits(got.Vertices[0].X) != 0x7fc00001 {
		t.Fatalf("NaN payload lost: %#x", math.Float32bits(got.Vertices[0].X))
	}
	if math.Float32bits(got.Vertices[0].Y) != 0x80000000 {
		t.Fatalf("negative zero lost: %#x", math.Float32bits(got.Vertices[0].Y))
	}
}

func TestProtobufSkipsUnknownFields(t *testing.T) {
	b, err := Protobuf{}.Encode(sample())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var extra []byte
	extra = protowire.AppendTag(extra, 9, protowire.VarintType)
	extra = protowire.AppendVarint(extra, 42)
	extra = protowire.AppendTag(extra, 10, protowire.BytesType)
	extra = protowire.AppendBytes(extra, []byte("note"))

	got, err := Protobuf{}.Decode(append(extra, b...))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Vertices) != 5 || len(got.Edges) != 3 {
		t.Fatalf("unexpected shape: %d vertices, %d edges", len(got.Vertices), len(got.Edges))
	}
}

func TestProtobufRejectsMalformed(t *testing.T) {
	good, err := Protobuf{}.Encode(sample())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := (Protobuf{}).Decode(good[:len(good)-1]); err == nil {
		t.Fatalf("expected error on truncated message")
	}

	// coords length not a multiple of 3 floats
	var b []byte
	b = protowire.AppendTag(b, fieldCoords, protowire.BytesType)
	b = protowire.AppendVarint(b, 8)
	b = protowire.AppendFixed32(b, 1)
	b = protowire.AppendFixed32(b, 2)
	if _, err := (Protobuf{}).Decode(b); err == nil {
		t.Fatalf("expected error on partial point")
	}

	if _, err := (Protobuf{}).Encode(geom.Geometry{Edges: []geom.Edge{{-1, 0}}}); err == nil {
		t.Fatalf("expected error on negative edge index")
	}
}

func TestLimitRejectsOversized(t *testing.T) {
	c := Limit[string]{Inner: JSON[string]{}, MaxDecode: 8}
	b, err := c.Encode(strings.Repeat("x", 32))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := c.Decode(b); err == nil {
		t.Fatalf("expected size error")
	}
}
