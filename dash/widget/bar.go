package widget

import (
	"image"
	"math"

	"hwdash/dash/channel"
	"hwdash/dash/gfx"
)

// BarConfig sizes a level bar.
type BarConfig struct {
	Width    int
	Height   int
	Vertical bool
	Palette  Palette
}

// Bar fills a rectangle proportionally to the value.
type Bar struct {
	desc  *channel.Descriptor
	cfg   BarConfig
	life  Lifecycle
	last  float64
	frame *gfx.Surface
}

func NewBar(d *channel.Descriptor, cfg BarConfig) (*Bar, error) {
	if err := requireRange(d); err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errBadSize(d, cfg.Width, cfg.Height)
	}
	if cfg.Palette == (Palette{}) {
		cfg.Palette = DefaultPalette
	}
	return &Bar{desc: d, cfg: cfg, frame: gfx.NewSurface(cfg.Width, cfg.Height)}, nil
}

// Extent is the filled length for v along the bar axis.
func (b *Bar) Extent(v float64) int {
	full := b.cfg.Width
	if b.cfg.Vertical {
		full = b.cfg.Height
	}
	e := Transpose(v, b.desc.Limits.Min, b.desc.Limits.Max, 0, float64(full))
	return int(math.Round(clampF(e, 0, float64(full))))
}

// Update redraws the bar when v differs from the last drawn value.
func (b *Bar) Update(v float64) *gfx.Surface {
	if b.life == Ready && v == b.last {
		return b.frame
	}
	b.life = Ready
	b.last = v

	b.frame.Fill(b.cfg.Palette.Track)
	n := b.Extent(v)
	if n == 0 {
		return b.frame
	}
	r := image.Rect(0, 0, n, b.cfg.Height)
	if b.cfg.Vertical {
		r = image.Rect(0, b.cfg.Height-n, b.cfg.Width, b.cfg.Height)
	}
	b.frame.FillRect(r, b.cfg.Palette.LevelColor(b.desc.Level(v)))
	return b.frame
}

func (b *Bar) Frame() *gfx.Surface  { return b.frame }
func (b *Bar) Lifecycle() Lifecycle { return b.life }
func (b *Bar) Ops() uint64          { return b.frame.Ops() }
