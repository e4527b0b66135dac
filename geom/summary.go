package geom

import (
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a decoded geometry for reporting.
type Summary struct {
	Strands  int
	Vertices int
	Edges    int

	// Bounding box; both zero for an empty geometry.
	Min r3.Vec
	Max r3.Vec

	TotalLength float64
	MeanLength  float64 // mean polyline length per strand
}

// Vec converts p to a gonum vector.
func (p Point3) Vec() r3.Vec {
	return r3.Vec{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}
}

// PointOf converts a gonum vector back to single precision.
func PointOf(v r3.Vec) Point3 {
	return Point3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// Summarize computes counts, bounds and strand lengths. Strand boundaries are
// taken from the edge list, so it works for any geometry that passes Validate.
func Summarize(g Geometry) Summary {
	s := Summary{Vertices: len(g.Vertices), Edges: len(g.Edges)}
	if len(g.Vertices) == 0 {
		return s
	}

	s.Min = g.Vertices[0].Vec()
	s.Max = s.Min
	for _, p := range g.Vertices[1:] {
		v := p.Vec()
		s.Min = r3.Vec{X: min(s.Min.X, v.X), Y: min(s.Min.Y, v.Y), Z: min(s.Min.Z, v.Z)}
		s.Max = r3.Vec{X: max(s.Max.X, v.X), Y: max(s.Max.Y, v.Y), Z: max(s.Max.Z, v.Z)}
	}

	var lengths []float64
	last := -2 // end vertex of the previous edge
	for _, e := range g.Edges {
		if e[0] < 0 || e[1] >= len(g.Vertices) {
			continue
		}
		seg := r3.Norm(r3.Sub(g.Vertices[e[1]].Vec(), g.Vertices[e[0]].Vec()))
		if e[0] != last {
			lengths = append(lengths, 0)
		}
		lengths[len(lengths)-1] += seg
		last = e[1]
	}

	s.Strands = len(lengths)
	for _, l := range lengths {
		s.TotalLength += l
	}
	if len(lengths) > 0 {
		s.MeanLength = stat.Mean(lengths, nil)
	}
	return s
}
