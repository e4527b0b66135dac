package scene

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Plane selects the two coordinates a preview projects onto.
type Plane string

const (
	PlaneXY Plane = "xy"
	PlaneXZ Plane = "xz" // front view after the +90 deg X correction
	PlaneYZ Plane = "yz"
)

type PreviewOptions struct {
	Plane  Plane     // "" => PlaneXZ
	Width  vg.Length // 0 => 6in
	Height vg.Length // 0 => 6in
	// Stride keeps every Stride-th vertex; 0 or 1 keeps all of them.
	Stride int
}

// RenderPreview writes a scatter projection of obj's vertices. The image
// format follows the extension of path (png, svg, pdf, ...).
func RenderPreview(obj *Object, path string, opts PreviewOptions) error {
	if opts.Plane == "" {
		opts.Plane = PlaneXZ
	}
	if opts.Width == 0 {
		opts.Width = 6 * vg.Inch
	}
	if opts.Height == 0 {
		opts.Height = 6 * vg.Inch
	}
	if opts.Stride < 1 {
		opts.Stride = 1
	}

	pts, err := project(obj, opts.Plane, opts.Stride)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = obj.Name
	p.X.Label.Text = string(opts.Plane[0])
	p.Y.Label.Text = string(opts.Plane[1])

	if len(pts) > 0 {
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("scene: preview scatter: %w", err)
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(0.3)
		s.GlyphStyle.Color = color.RGBA{R: 90, G: 50, B: 20, A: 255}
		p.Add(s)
	}

	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("scene: save preview: %w", err)
	}
	return nil
}

func project(obj *Object, plane Plane, stride int) (plotter.XYs, error) {
	var pick func(x, y, z float32) (float64, float64)
	switch plane {
	case PlaneXY:
		pick = func(x, y, _ float32) (float64, float64) { return float64(x), float64(y) }
	case PlaneXZ:
		pick = func(x, _, z float32) (float64, float64) { return float64(x), float64(z) }
	case PlaneYZ:
		pick = func(_, y, z float32) (float64, float64) { return float64(y), float64(z) }
	default:
		return nil, fmt.Errorf("scene: unknown preview plane %q", plane)
	}

	verts := obj.Geometry.Vertices
	pts := make(plotter.XYs, 0, (len(verts)+stride-1)/stride)
	for i := 0; i < len(verts); i += stride {
		v := verts[i]
		x, y := pick(v.X, v.Y, v.Z)
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	return pts, nil
}
