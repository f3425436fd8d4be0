package widget

import (
	"errors"

	"hwdash/dash/channel"
	"hwdash/dash/gfx"
	"hwdash/dash/tween"
)

// ReadoutConfig sizes a text readout.
type ReadoutConfig struct {
	Width  int
	Height int
	// Label overrides the descriptor label; "-" hides it.
	Label   string
	Font    gfx.Font
	Palette Palette
}

// Readout prints a label and the formatted value.
type Readout struct {
	desc  *channel.Descriptor
	cfg   ReadoutConfig
	life  Lifecycle
	text  string
	trend tween.Direction
	level channel.Level
	frame *gfx.Surface
}

// NewReadout accepts unranged descriptors since text fields carry no limits.
func NewReadout(d *channel.Descriptor, cfg ReadoutConfig) (*Readout, error) {
	if d == nil {
		return nil, errors.New("readout: nil channel descriptor")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errBadSize(d, cfg.Width, cfg.Height)
	}
	if cfg.Label == "" {
		cfg.Label = d.Label
	}
	if cfg.Font.Face == nil {
		cfg.Font = gfx.FontMedium
	}
	if cfg.Palette == (Palette{}) {
		cfg.Palette = DefaultPalette
	}
	return &Readout{desc: d, cfg: cfg, frame: gfx.NewSurface(cfg.Width, cfg.Height)}, nil
}

// Update shows a numeric value with the descriptor formatting.
func (r *Readout) Update(v float64, trend tween.State) *gfx.Surface {
	return r.show(r.desc.FormatWithUnit(v), trend.Direction, r.desc.Level(v))
}

// UpdateText shows a raw string such as a resolution or device name.
func (r *Readout) UpdateText(s string) *gfx.Surface {
	return r.show(s, tween.Unknown, channel.LevelNormal)
}

func (r *Readout) show(text string, dir tween.Direction, level channel.Level) *gfx.Surface {
	if r.life == Ready && text == r.text && dir == r.trend && level == r.level {
		return r.frame
	}
	r.life = Ready
	r.text, r.trend, r.level = text, dir, level

	p := r.cfg.Palette
	r.frame.Fill(p.Background)
	x := 2
	if r.cfg.Label != "-" {
		r.frame.Text(gfx.FontSmall, x, 1, r.cfg.Label, p.Dim)
	}
	vy := r.cfg.Height - r.cfg.Font.Height - 1
	tc := p.Text
	if level != channel.LevelNormal {
		tc = p.LevelColor(level)
	}
	r.frame.Text(r.cfg.Font, x, vy, text, tc)
	tx := x + gfx.TextWidth(r.cfg.Font, text) + 6
	drawTrend(r.frame, dir, tx, vy+r.cfg.Font.Height/2, p)
	return r.frame
}

func (r *Readout) Text() string         { return r.text }
func (r *Readout) Frame() *gfx.Surface  { return r.frame }
func (r *Readout) Lifecycle() Lifecycle { return r.life }
func (r *Readout) Ops() uint64          { return r.frame.Ops() }
