// Package gfx is the drawing layer the dashboard elements render with. Shapes are
// rasterized by tinydraw and x/image/vector; rotation and scaling use x/image/draw.
//
// A Surface is an off-screen RGBA image that also satisfies the tinygo
// drivers.Displayer contract, so tinyfont and tinyterm can render into it.
// Every drawing call bumps an operation counter; elements use it to prove that
// an unchanged input did no work.
package gfx

import (
	"image"
	"image/color"
	"image/draw"

	"tinygo.org/x/drivers"
)

// Transparent is the zero color.
var Transparent = color.RGBA{}

// Surface is an off-screen RGBA buffer.
type Surface struct {
	img *image.RGBA
	ops uint64
}

// NewSurface returns a transparent w x h surface.
func NewSurface(w, h int) *Surface {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// FromImage copies any image into a new surface.
func FromImage(src image.Image) *Surface {
	b := src.Bounds()
	s := NewSurface(b.Dx(), b.Dy())
	draw.Draw(s.img, s.img.Bounds(), src, b.Min, draw.Src)
	return s
}

func (s *Surface) Width() int                 { return s.img.Rect.Dx() }
func (s *Surface) Height() int                { return s.img.Rect.Dy() }
func (s *Surface) Bounds() image.Rectangle    { return s.img.Rect }
func (s *Surface) Image() *image.RGBA         { return s.img }
func (s *Surface) At(x, y int) color.RGBA     { return s.img.RGBAAt(x, y) }
func (s *Surface) Ops() uint64                { return s.ops }
func (s *Surface) inside(x, y int) bool       { return image.Pt(x, y).In(s.img.Rect) }
func (s *Surface) set(x, y int, c color.RGBA) { s.img.SetRGBA(x, y, c) }

// Clone returns an independent copy with a fresh op counter.
func (s *Surface) Clone() *Surface {
	cp := &Surface{img: image.NewRGBA(s.img.Rect)}
	copy(cp.img.Pix, s.img.Pix)
	return cp
}

// CopyFrom replaces the contents with src, which must have the same size.
func (s *Surface) CopyFrom(src *Surface) {
	s.ops++
	copy(s.img.Pix, src.img.Pix)
}

// Equal reports whether both surfaces hold identical pixels.
func (s *Surface) Equal(o *Surface) bool {
	if s.img.Rect != o.img.Rect {
		return false
	}
	for i := range s.img.Pix {
		if s.img.Pix[i] != o.img.Pix[i] {
			return false
		}
	}
	return true
}

// Fill sets every pixel to c.
func (s *Surface) Fill(c color.RGBA) {
	s.ops++
	fillRGBA(s.img, s.img.Rect, c)
}

// FillRect sets the pixels of r (clipped) to c.
func (s *Surface) FillRect(r image.Rectangle, c color.RGBA) {
	s.ops++
	fillRGBA(s.img, r.Intersect(s.img.Rect), c)
}

// StrokeRect draws a one pixel outline of r.
func (s *Surface) StrokeRect(r image.Rectangle, c color.RGBA) {
	s.ops++
	if r.Empty() {
		return
	}
	b := s.img.Rect
	fillRGBA(s.img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1).Intersect(b), c)
	fillRGBA(s.img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y).Intersect(b), c)
	fillRGBA(s.img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y).Intersect(b), c)
	fillRGBA(s.img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y).Intersect(b), c)
}

// Draw composites src over s with its top-left corner at at.
func (s *Surface) Draw(src *Surface, at image.Point) {
	s.ops++
	r := image.Rectangle{Min: at, Max: at.Add(src.img.Rect.Size())}
	draw.Draw(s.img, r, src.img, image.Point{}, draw.Over)
}

// ScrollLeft shifts the contents n columns left; exposed columns become transparent.
func (s *Surface) ScrollLeft(n int) {
	s.ops++
	w, h := s.Width(), s.Height()
	if n <= 0 {
		return
	}
	if n >= w {
		fillRGBA(s.img, s.img.Rect, Transparent)
		return
	}
	stride := s.img.Stride
	shift := n * 4
	rowBytes := w * 4
	for y := 0; y < h; y++ {
		row := s.img.Pix[y*stride : y*stride+rowBytes]
		copy(row, row[shift:])
		clear(row[rowBytes-shift:])
	}
}

// Tint returns a copy of s with every pixel multiplied by c. It is used to
// recolor monochrome artwork.
func (s *Surface) Tint(c color.RGBA) *Surface {
	out := s.Clone()
	out.ops++
	pix := out.img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i+0] = mul8(pix[i+0], c.R)
		pix[i+1] = mul8(pix[i+1], c.G)
		pix[i+2] = mul8(pix[i+2], c.B)
		pix[i+3] = mul8(pix[i+3], c.A)
	}
	return out
}

func mul8(a, b uint8) uint8 {
	return uint8((uint16(a)*uint16(b) + 127) / 255)
}

func fillRGBA(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Empty() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Pix[off+0] = c.R
			img.Pix[off+1] = c.G
			img.Pix[off+2] = c.B
			img.Pix[off+3] = c.A
			off += 4
		}
	}
}

// blend writes c over the pixel at (x, y).
func (s *Surface) blend(x, y int, c color.RGBA) {
	if !s.inside(x, y) {
		return
	}
	if c.A == 0xFF {
		s.set(x, y, c)
		return
	}
	if c.A == 0 {
		return
	}
	s.set(x, y, over(c, s.img.RGBAAt(x, y)))
}

// over composites premultiplied src over dst.
func over(src, dst color.RGBA) color.RGBA {
	ia := 255 - uint16(src.A)
	return color.RGBA{
		R: src.R + uint8((uint16(dst.R)*ia+127)/255),
		G: src.G + uint8((uint16(dst.G)*ia+127)/255),
		B: src.B + uint8((uint16(dst.B)*ia+127)/255),
		A: src.A + uint8((uint16(dst.A)*ia+127)/255),
	}
}

// Size implements drivers.Displayer.
func (s *Surface) Size() (x, y int16) {
	return int16(s.Width()), int16(s.Height())
}

// SetPixel implements drivers.Displayer. It is the per-pixel path used by
// tinyfont and is not counted as an operation.
func (s *Surface) SetPixel(x, y int16, c color.RGBA) {
	s.blend(int(x), int(y), c)
}

// Display implements drivers.Displayer; surfaces are presented by the compositor.
func (s *Surface) Display() error { return nil }

// FillRectangle lets tinyterm clear rows.
func (s *Surface) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	s.FillRect(image.Rect(int(x), int(y), int(x)+int(width), int(y)+int(height)), c)
	return nil
}

// SetScroll is a no-op; terminals on surfaces must use software scrolling.
func (s *Surface) SetScroll(line int16) {}

func (s *Surface) SetRotation(rotation drivers.Rotation) error {
	_ = rotation
	return nil
}

var _ drivers.Displayer = (*Surface)(nil)
