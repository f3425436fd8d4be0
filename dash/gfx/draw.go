package gfx

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
	"tinygo.org/x/tinydraw"
)

// PointF is a sub-pixel coordinate.
type PointF struct {
	X, Y float64
}

// arcStep is the chord length of a rasterized arc, in degrees.
const arcStep = 2.0

// Line draws a segment with a square pen of the given width.
func (s *Surface) Line(x0, y0, x1, y1 int, c color.RGBA, width int) {
	s.ops++
	if width < 1 {
		width = 1
	}
	lo := -(width - 1) / 2
	for dy := lo; dy < lo+width; dy++ {
		for dx := lo; dx < lo+width; dx++ {
			tinydraw.Line(s, coord(x0+dx), coord(y0+dy), coord(x1+dx), coord(y1+dy), c)
		}
	}
}

// FillCircle fills the disc of radius r centered at (cx, cy).
func (s *Surface) FillCircle(cx, cy, r int, c color.RGBA) {
	s.ops++
	if r < 0 {
		return
	}
	tinydraw.FilledCircle(s, coord(cx), coord(cy), coord(r), c)
}

// Arc fills the ring between inner and outer radius from one angle to another.
// Angles are degrees clockwise from 12 o'clock and may be negative.
func (s *Surface) Arc(cx, cy float64, inner, outer, from, to float64, c color.RGBA) {
	s.ops++
	if from > to {
		from, to = to, from
	}
	n := int(math.Ceil((to - from) / arcStep))
	if n < 1 {
		n = 1
	}
	at := func(i int) float64 { return from + (to-from)*float64(i)/float64(n) }
	pts := make([]PointF, 0, 2*(n+1))
	for i := 0; i <= n; i++ {
		pts = append(pts, PolarPoint(cx, cy, outer, at(i)))
	}
	for i := n; i >= 0; i-- {
		pts = append(pts, PolarPoint(cx, cy, inner, at(i)))
	}
	s.fillPath(pts, c)
}

// Bearing returns the angle of (dx, dy) in degrees clockwise from 12 o'clock,
// in (-180, 180].
func Bearing(dx, dy float64) float64 {
	return math.Atan2(dx, -dy) * 180 / math.Pi
}

// PolarPoint returns the point at radius r and bearing deg around (cx, cy).
func PolarPoint(cx, cy, r, deg float64) PointF {
	rad := deg * math.Pi / 180
	return PointF{X: cx + r*math.Sin(rad), Y: cy - r*math.Cos(rad)}
}

// FillPolygon fills a simple polygon with anti-aliased edges.
func (s *Surface) FillPolygon(pts []PointF, c color.RGBA) {
	s.ops++
	s.fillPath(pts, c)
}

// fillPath rasterizes the closed path through pts and composites c over the
// covered pixels.
func (s *Surface) fillPath(pts []PointF, c color.RGBA) {
	if len(pts) < 3 || s.Width() == 0 || s.Height() == 0 {
		return
	}
	z := vector.NewRasterizer(s.Width(), s.Height())
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
	z.Draw(s.img, s.img.Rect, image.NewUniform(c), image.Point{})
}

// coord narrows a pixel coordinate to the int16 range tinydraw works in.
func coord(v int) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}
