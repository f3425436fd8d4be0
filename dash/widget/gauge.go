package widget

import (
	"image"

	"hwdash/dash/channel"
	"hwdash/dash/gfx"
	"hwdash/dash/tween"
)

// GaugeConfig sizes and styles a rotating-needle gauge.
type GaugeConfig struct {
	// Size is the side of the square gauge.
	Size int
	// SweepStart and SweepEnd are degrees clockwise from 12 o'clock.
	SweepStart float64
	SweepEnd   float64
	// CounterClockwise mirrors the sweep; the warn comparison flips with it.
	CounterClockwise bool
	// FixedLabel replaces the live value text, e.g. "IN" on a fan indicator.
	FixedLabel string
	// Needle is optional monochrome artwork pointing at 12 o'clock, Size x Size.
	// It is recolored with the palette foreground.
	Needle *gfx.Surface
	// ShadowLag is the extra shadow rotation, in degrees, at either sweep end.
	ShadowLag    float64
	ShadowOffset image.Point
	Palette      Palette
}

// Gauge is an arc gauge with a rotating needle and drop shadow.
type Gauge struct {
	desc *channel.Descriptor
	cfg  GaugeConfig
	life Lifecycle
	last float64

	// trend is the marker for the next redraw; drawn is the one on the frame.
	trend tween.Direction
	drawn tween.Direction

	background *gfx.Surface
	needle     *gfx.Surface
	shadow     *gfx.Surface
	needleRot  *gfx.Surface
	shadowRot  *gfx.Surface
	frame      *gfx.Surface

	center float64
	radius float64
}

// NewGauge composes the static face and the needle images.
func NewGauge(d *channel.Descriptor, cfg GaugeConfig) (*Gauge, error) {
	if err := requireRange(d); err != nil {
		return nil, err
	}
	if cfg.Size < 16 {
		return nil, errBadSize(d, cfg.Size, cfg.Size)
	}
	if cfg.SweepStart == 0 && cfg.SweepEnd == 0 {
		cfg.SweepStart, cfg.SweepEnd = -135, 135
	}
	if cfg.ShadowLag == 0 {
		cfg.ShadowLag = 4
	}
	if cfg.ShadowOffset == (image.Point{}) {
		cfg.ShadowOffset = image.Pt(2, 2)
	}
	if cfg.Palette == (Palette{}) {
		cfg.Palette = DefaultPalette
	}
	if cfg.Needle != nil && (cfg.Needle.Width() != cfg.Size || cfg.Needle.Height() != cfg.Size) {
		return nil, errBadSize(d, cfg.Needle.Width(), cfg.Needle.Height())
	}

	g := &Gauge{
		desc:      d,
		cfg:       cfg,
		center:    float64(cfg.Size) / 2,
		radius:    float64(cfg.Size)/2 - 2,
		needleRot: gfx.NewSurface(cfg.Size, cfg.Size),
		shadowRot: gfx.NewSurface(cfg.Size, cfg.Size),
		frame:     gfx.NewSurface(cfg.Size, cfg.Size),
	}
	g.background = g.drawFace()
	if cfg.Needle != nil {
		g.needle = cfg.Needle.Tint(cfg.Palette.Foreground)
	} else {
		g.needle = g.drawNeedle()
	}
	g.shadow = g.needle.Tint(cfg.Palette.Shadow)
	return g, nil
}

func (g *Gauge) drawFace() *gfx.Surface {
	p := g.cfg.Palette
	s := gfx.NewSurface(g.cfg.Size, g.cfg.Size)
	s.Fill(p.Background)

	outer := g.radius
	inner := outer - max(4, outer/8)
	s.Arc(g.center, g.center, inner, outer, g.cfg.SweepStart, g.cfg.SweepEnd, p.Track)

	if lim := g.desc.Limits; lim.Warn.Set {
		a, b := g.Angle(lim.Warn.Value), g.Angle(lim.Max)
		s.Arc(g.center, g.center, inner, outer, a, b, p.Warn)
	}
	if lim := g.desc.Limits; lim.Caution.Set {
		end := lim.Max
		if lim.Warn.Set {
			end = lim.Warn.Value
		}
		a, b := g.Angle(lim.Caution.Value), g.Angle(end)
		s.Arc(g.center, g.center, inner, inner+2, a, b, p.Caution)
	}

	label := g.desc.Label
	if g.desc.Unit != "" && g.cfg.FixedLabel == "" {
		label += " " + g.desc.Unit
	}
	s.TextCentered(gfx.FontSmall, int(g.center), g.cfg.Size-gfx.FontSmall.Height-1, label, p.Dim)
	return s
}

func (g *Gauge) drawNeedle() *gfx.Surface {
	c := g.center
	length := g.radius - 4
	half := max(2, g.radius/20)
	s := gfx.NewSurface(g.cfg.Size, g.cfg.Size)
	s.FillPolygon([]gfx.PointF{
		{X: c, Y: c - length},
		{X: c + half, Y: c},
		{X: c, Y: c + half*3},
		{X: c - half, Y: c},
	}, g.cfg.Palette.Foreground)
	s.FillCircle(int(c), int(c), int(half*2), g.cfg.Palette.Track)
	return s
}

// Angle maps v onto the sweep, clamped.
func (g *Gauge) Angle(v float64) float64 {
	lim := g.desc.Limits
	a := Transpose(g.desc.Clamp(v), lim.Min, lim.Max, g.cfg.SweepStart, g.cfg.SweepEnd)
	if g.cfg.CounterClockwise {
		a = -a
	}
	return a
}

// ShadowAngle adds a lag that grows toward either end of the sweep.
func (g *Gauge) ShadowAngle(angle float64) float64 {
	mid := (g.cfg.SweepStart + g.cfg.SweepEnd) / 2
	if g.cfg.CounterClockwise {
		mid = -mid
	}
	half := (g.cfg.SweepEnd - g.cfg.SweepStart) / 2
	if half == 0 {
		return angle
	}
	return angle + g.cfg.ShadowLag*(angle-mid)/half
}

// PastWarn reports whether v is beyond the warn threshold in the sweep direction.
func (g *Gauge) PastWarn(v float64) bool {
	w := g.desc.Limits.Warn
	if !w.Set {
		return false
	}
	if g.cfg.CounterClockwise {
		return v <= w.Value
	}
	return v >= w.Value
}

// SetTrend records the direction marker drawn on the next redraw.
func (g *Gauge) SetTrend(s tween.State) { g.trend = s.Direction }

// Update redraws the needle for v. An unchanged value with an unchanged trend
// marker returns the cached frame without drawing.
func (g *Gauge) Update(v float64) *gfx.Surface {
	if g.life == Ready && v == g.last && g.trend == g.drawn {
		return g.frame
	}
	g.life = Ready
	g.last = v
	g.drawn = g.trend

	angle := g.Angle(v)
	g.frame.CopyFrom(g.background)
	gfx.RotozoomInto(g.shadowRot, g.shadow, g.ShadowAngle(angle), 1)
	g.frame.Draw(g.shadowRot, g.cfg.ShadowOffset)
	gfx.RotozoomInto(g.needleRot, g.needle, angle, 1)
	g.frame.Draw(g.needleRot, image.Point{})

	text := g.cfg.FixedLabel
	if text == "" {
		text = g.desc.FormatValue(v)
	}
	tc := g.cfg.Palette.Text
	if g.PastWarn(v) {
		tc = g.cfg.Palette.Warn
	}
	ty := int(g.center + g.radius/3)
	g.frame.TextCentered(gfx.FontMedium, int(g.center), ty, text, tc)
	drawTrend(g.frame, g.trend, int(g.center+g.radius/2), ty+gfx.FontMedium.Height/2, g.cfg.Palette)
	return g.frame
}

func (g *Gauge) Frame() *gfx.Surface  { return g.frame }
func (g *Gauge) Lifecycle() Lifecycle { return g.life }

// Ops counts drawing operations on the per-update surfaces.
func (g *Gauge) Ops() uint64 {
	return g.frame.Ops() + g.needleRot.Ops() + g.shadowRot.Ops()
}

// drawTrend draws a small up or down triangle centered on (x, y).
func drawTrend(s *gfx.Surface, d tween.Direction, x, y int, p Palette) {
	fx, fy := float64(x), float64(y)
	switch d {
	case tween.Rising:
		s.FillPolygon([]gfx.PointF{{X: fx, Y: fy - 3}, {X: fx + 3, Y: fy + 2}, {X: fx - 3, Y: fy + 2}}, p.Caution)
	case tween.Falling:
		s.FillPolygon([]gfx.PointF{{X: fx - 3, Y: fy - 2}, {X: fx + 3, Y: fy - 2}, {X: fx, Y: fy + 3}}, p.Foreground)
	}
}
