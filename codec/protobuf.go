package codec

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/unkn0wn-root/hairstrand/geom"
)

// Field numbers of the Geometry message:
//
//	message Geometry {
//	  repeated float  coords = 1 [packed = true]; // x0,y0,z0,x1,...
//	  repeated uint32 edges  = 2 [packed = true]; // a0,b0,a1,b1,...
//	}
const (
	fieldCoords protowire.Number = 1
	fieldEdges  protowire.Number = 2
)

var errProtoShape = errors.New("codec: protobuf geometry has malformed packed field")

// Protobuf encodes a geometry as the Geometry message above without generated
// code. Unknown fields are skipped on Decode.
type Protobuf struct{}

var _ Codec[geom.Geometry] = Protobuf{}

func (Protobuf) Encode(g geom.Geometry) ([]byte, error) {
	var b []byte
	if len(g.Vertices) > 0 {
		b = protowire.AppendTag(b, fieldCoords, protowire.BytesType)
		b = protowire.AppendVarint(b, uint64(len(g.Vertices)*12))
		for _, p := range g.Vertices {
			b = protowire.AppendFixed32(b, math.Float32bits(p.X))
			b = protowire.AppendFixed32(b, math.Float32bits(p.Y))
			b = protowire.AppendFixed32(b, math.Float32bits(p.Z))
		}
	}
	if len(g.Edges) > 0 {
		size := 0
		for _, e := range g.Edges {
			if e[0] < 0 || e[1] < 0 || uint64(e[0]) > math.MaxUint32 || uint64(e[1]) > math.MaxUint32 {
				return nil, fmt.Errorf("codec: edge %v not representable", e)
			}
			size += protowire.SizeVarint(uint64(e[0])) + protowire.SizeVarint(uint64(e[1]))
		}
		b = protowire.AppendTag(b, fieldEdges, protowire.BytesType)
		b = protowire.AppendVarint(b, uint64(size))
		for _, e := range g.Edges {
			b = protowire.AppendVarint(b, uint64(e[0]))
			b = protowire.AppendVarint(b, uint64(e[1]))
		}
	}
	return b, nil
}

func (Protobuf) Decode(b []byte) (geom.Geometry, error) {
	var coords []float32
	var idx []int
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return geom.Geometry{}, protowire.ParseError(n)
		}
		b = b[n:]

		if (num == fieldCoords || num == fieldEdges) && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return geom.Geometry{}, protowire.ParseError(n)
			}
			b = b[n:]
			var err error
			if num == fieldCoords {
				coords, err = appendFixed32s(coords, v)
			} else {
				idx, err = appendVarints(idx, v)
			}
			if err != nil {
				return geom.Geometry{}, err
			}
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return geom.Geometry{}, protowire.ParseError(n)
		}
		b = b[n:]
	}

	if len(coords)%3 != 0 || len(idx)%2 != 0 {
		return geom.Geometry{}, errProtoShape
	}
	g := geom.Geometry{
		Vertices: make([]geom.Point3, 0, len(coords)/3),
		Edges:    make([]geom.Edge, 0, len(idx)/2),
	}
	for i := 0; i < len(coords); i += 3 {
		g.Vertices = append(g.Vertices, geom.Point3{X: coords[i], Y: coords[i+1], Z: coords[i+2]})
	}
	for i := 0; i < len(idx); i += 2 {
		g.Edges = append(g.Edges, geom.Edge{idx[i], idx[i+1]})
	}
	return g, nil
}

func appendFixed32s(dst []float32, b []byte) ([]float32, error) {
	for len(b) > 0 {
		v, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			return nil, errProtoShape
		}
		dst = append(dst, math.Float32frombits(v))
		b = b[n:]
	}
	return dst, nil
}

func appendVarints(dst []int, b []byte) ([]int, error) {
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 || v > math.MaxUint32 {
			return nil, errProtoShape
		}
		dst = append(dst, int(v))
		b = b[n:]
	}
	return dst, nil
}
