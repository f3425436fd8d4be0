package gfx

import (
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Rotozoom returns src rotated by deg (clockwise on screen) and scaled about
// its center. The result has the same size as src; corners that rotate out of
// frame are dropped, which is fine for artwork drawn inside the inscribed circle.
func Rotozoom(src *Surface, deg, scale float64) *Surface {
	dst := NewSurface(src.Width(), src.Height())
	RotozoomInto(dst, src, deg, scale)
	return dst
}

// RotozoomInto is Rotozoom writing into an existing surface of the same size.
func RotozoomInto(dst, src *Surface, deg, scale float64) {
	dst.ops++
	if scale <= 0 {
		scale = 1
	}
	fillRGBA(dst.img, dst.img.Rect, Transparent)

	sin, cos := math.Sincos(deg * math.Pi / 180)
	a, b := scale*cos, -scale*sin
	d, e := scale*sin, scale*cos
	scx, scy := float64(src.Width())/2, float64(src.Height())/2
	dcx, dcy := float64(dst.Width())/2, float64(dst.Height())/2
	s2d := f64.Aff3{
		a, b, dcx - a*scx - b*scy,
		d, e, dcy - d*scx - e*scy,
	}
	xdraw.NearestNeighbor.Transform(dst.img, s2d, src.img, src.img.Rect, xdraw.Src, nil)
}

// Resize scales src to w x h with nearest sampling. Artwork loaded at startup
// is fitted to each element this way.
func Resize(src *Surface, w, h int) *Surface {
	dst := NewSurface(w, h)
	if src.Width() == 0 || src.Height() == 0 {
		return dst
	}
	xdraw.NearestNeighbor.Scale(dst.img, dst.img.Rect, src.img, src.img.Rect, xdraw.Src, nil)
	return dst
}
