package gfx

import (
	"image"
	"image/color"

	"hwdash/hal"

	"tinygo.org/x/drivers"
)

// FramebufferDisplay draws onto an RGB565 hal.Framebuffer.
type FramebufferDisplay struct {
	fb hal.Framebuffer
}

func NewFramebufferDisplay(fb hal.Framebuffer) *FramebufferDisplay {
	return &FramebufferDisplay{fb: fb}
}

func (d *FramebufferDisplay) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *FramebufferDisplay) ok() bool {
	return d.fb != nil && d.fb.Format() == hal.PixelFormatRGB565 && d.fb.Buffer() != nil
}

func (d *FramebufferDisplay) SetPixel(x, y int16, c color.RGBA) {
	if !d.ok() {
		return
	}
	d.put(int(x), int(y), c)
}

func (d *FramebufferDisplay) put(x, y int, c color.RGBA) {
	if x < 0 || x >= d.fb.Width() || y < 0 || y >= d.fb.Height() {
		return
	}
	buf := d.fb.Buffer()
	off := y*d.fb.StrideBytes() + x*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	if c.A != 0xFF {
		under := hal.UnpackRGB565(uint16(buf[off]) | uint16(buf[off+1])<<8)
		c = over(c, under)
	}
	pixel := hal.PackRGB565(c)
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d *FramebufferDisplay) Display() error {
	if d.fb == nil {
		return nil
	}
	return d.fb.Present()
}

func (d *FramebufferDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if !d.ok() {
		return nil
	}
	w := d.fb.Width()
	h := d.fb.Height()

	x0 := clampInt(int(x), 0, w)
	y0 := clampInt(int(y), 0, h)
	x1 := clampInt(int(x)+int(width), 0, w)
	y1 := clampInt(int(y)+int(height), 0, h)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	pixel := hal.PackRGB565(c)
	lo := byte(pixel)
	hi := byte(pixel >> 8)

	buf := d.fb.Buffer()
	stride := d.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := py * stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off < 0 || off+1 >= len(buf) {
				continue
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
	return nil
}

func (d *FramebufferDisplay) SetScroll(line int16) {}

func (d *FramebufferDisplay) SetRotation(rotation drivers.Rotation) error {
	_ = rotation
	return nil
}

// DrawSurface blits src with its top-left corner at at. Transparent pixels
// leave the framebuffer untouched.
func (d *FramebufferDisplay) DrawSurface(src *Surface, at image.Point) {
	if !d.ok() || src == nil {
		return
	}
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			c := src.img.RGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			d.put(at.X+x, at.Y+y, c)
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
