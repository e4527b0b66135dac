// Package scene turns decoded strand geometry into named scene objects:
// the host-side half of an import. It names the object after the source
// file, files it into a collection and bakes in the dataset's axis fix.
package scene

import (
	"math"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/unkn0wn-root/hairstrand/geom"
)

// DefaultCollection groups every imported hairstyle.
const DefaultCollection = "USC-HairSalon"

// Object is a named line mesh.
type Object struct {
	Name       string
	Collection string
	Geometry   geom.Geometry
}

type Collection struct {
	Name    string
	Objects []*Object
}

// Scene is a set of named collections. Safe for concurrent use.
type Scene struct {
	mu          sync.Mutex
	collections map[string]*Collection
}

func New() *Scene {
	return &Scene{collections: make(map[string]*Collection)}
}

// Collection returns the named collection, creating it if absent.
func (s *Scene) Collection(name string) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectionLocked(name)
}

func (s *Scene) collectionLocked(name string) *Collection {
	c, ok := s.collections[name]
	if !ok {
		c = &Collection{Name: name}
		s.collections[name] = c
	}
	return c
}

// Collections lists collection names in sorted order.
func (s *Scene) Collections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.collections))
	for name := range s.collections {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Link adds obj to its collection.
func (s *Scene) Link(obj *Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collectionLocked(obj.Collection)
	c.Objects = append(c.Objects, obj)
}

type ImportOptions struct {
	Collection string  // "" => DefaultCollection
	Axis       r3.Vec  // zero => +X
	Angle      float64 // radians; NaN => no rotation. Zero value => +90 deg
}

// Import builds an object from g, named after the stem of path, rotates it
// and links it into sc. g is not modified.
func Import(sc *Scene, path string, g geom.Geometry, opts ImportOptions) *Object {
	obj := &Object{
		Name:       Stem(path),
		Collection: opts.Collection,
		Geometry:   g,
	}
	if obj.Collection == "" {
		obj.Collection = DefaultCollection
	}

	angle := opts.Angle
	if angle == 0 {
		angle = math.Pi / 2
	}
	axis := opts.Axis
	if axis == (r3.Vec{}) {
		axis = r3.Vec{X: 1}
	}
	if !math.IsNaN(angle) {
		obj.Geometry = Rotate(g, axis, angle)
	}

	sc.Link(obj)
	return obj
}

// Stem is the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Rotate returns a copy of g with every vertex rotated by angle radians about
// axis. Edges are shared with g.
func Rotate(g geom.Geometry, axis r3.Vec, angle float64) geom.Geometry {
	rot := r3.NewRotation(angle, axis)
	out := geom.Geometry{
		Vertices: make([]geom.Point3, len(g.Vertices)),
		Edges:    g.Edges,
	}
	for i, p := range g.Vertices {
		out.Vertices[i] = geom.PointOf(rot.Rotate(p.Vec()))
	}
	return out
}
