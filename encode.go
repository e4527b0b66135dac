package hairstrand

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/unkn0wn-root/hairstrand/codec"
	"github.com/unkn0wn-root/hairstrand/geom"
	"github.com/unkn0wn-root/hairstrand/internal/wire"
)

// Encode writes g in the strand file layout. g must be made of contiguous
// polylines (see geom.Geometry.Strands), which holds for anything Decode
// returns.
func Encode(w io.Writer, g geom.Geometry) error {
	strands, err := g.Strands()
	if err != nil {
		return err
	}
	return EncodeStrands(w, strands)
}

// EncodeStrands writes one record per strand, including roots.
func EncodeStrands(w io.Writer, strands [][]geom.Point3) error {
	if len(strands) > math.MaxInt32 {
		return fmt.Errorf("hairstrand: too many strands: %d", len(strands))
	}

	bw := bufio.NewWriter(w)
	ww := wire.NewWriter(bw)
	ww.Int32(int32(len(strands)))
	for i, s := range strands {
		if len(s) > math.MaxInt32/3 {
			return fmt.Errorf("hairstrand: strand %d has too many vertices: %d", i, len(s))
		}
		ww.Int32(int32(len(s)))
		for _, p := range s {
			ww.Float32(p.X)
			ww.Float32(p.Y)
			ww.Float32(p.Z)
		}
	}
	if err := ww.Err(); err != nil {
		return err
	}
	return bw.Flush()
}

// StrandCodec stores geometries in the native strand file layout.
type StrandCodec struct {
	// Options apply to every Decode.
	Options []Option
}

var _ codec.Codec[geom.Geometry] = StrandCodec{}

func (c StrandCodec) Encode(g geom.Geometry) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c StrandCodec) Decode(b []byte) (geom.Geometry, error) {
	return DecodeBytes(b, c.Options...)
}
