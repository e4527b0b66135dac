// Package geom holds the line-segment graph produced by the strand decoder.
//
// A Geometry is a flat vertex list plus an edge list. Each kept strand owns a
// contiguous run of vertices and is connected by edges (i, i+1) inside that
// run only; no edge ever joins two strands.
package geom

import (
	"errors"
	"fmt"
)

var ErrNotPolylines = errors.New("geom: edges do not form contiguous polylines")

// Point3 is a single-precision 3D point.
type Point3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Edge is a pair of indices into Geometry.Vertices.
type Edge [2]int

type Geometry struct {
	Vertices []Point3 `json:"vertices"`
	Edges    []Edge   `json:"edges"`
}

// Validate checks that every edge references an existing vertex and points
// forward (a < b).
func (g Geometry) Validate() error {
	n := len(g.Vertices)
	for i, e := range g.Edges {
		if e[0] < 0 || e[1] >= n || e[0] >= e[1] {
			return fmt.Errorf("geom: edge %d %v out of range for %d vertices", i, e, n)
		}
	}
	return nil
}

// Strands splits g back into its polylines. It only accepts geometries whose
// edges are (i, i+1) pairs in ascending order with every vertex belonging to a
// run of at least two vertices, which is exactly what the decoder emits.
func (g Geometry) Strands() ([][]Point3, error) {
	if len(g.Vertices) == 0 {
		if len(g.Edges) != 0 {
			return nil, ErrNotPolylines
		}
		return nil, nil
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	var out [][]Point3
	start := 0
	next := 0 // first vertex not yet covered by an edge run
	for i, e := range g.Edges {
		if e[1] != e[0]+1 {
			return nil, fmt.Errorf("%w: edge %d %v is not consecutive", ErrNotPolylines, i, e)
		}
		switch {
		case e[0] == next-1 && next > start:
			// continues the current run
		case e[0] == next:
			if next > start {
				out = append(out, g.Vertices[start:next])
			}
			start = e[0]
		default:
			return nil, fmt.Errorf("%w: edge %d %v skips or revisits vertices", ErrNotPolylines, i, e)
		}
		next = e[1] + 1
	}
	if next != len(g.Vertices) {
		return nil, fmt.Errorf("%w: %d trailing vertices without edges", ErrNotPolylines, len(g.Vertices)-next)
	}
	out = append(out, g.Vertices[start:next])
	return out, nil
}
