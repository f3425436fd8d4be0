package widget

import (
	"image"
	"math"

	"hwdash/dash/channel"
	"hwdash/dash/gfx"
)

// LineGraphConfig sizes and styles a scrolling graph.
type LineGraphConfig struct {
	Width  int
	Height int
	// Step is how many pixels the history scrolls per update.
	Step      int
	LineWidth int
	// ZeroIsNoSignal suppresses drawing for an exact zero, e.g. an FPS counter
	// that reports 0 while no game is running.
	ZeroIsNoSignal bool
	ShowLabel      bool
	GridLines      int
	Palette        Palette
}

// LineGraph scrolls a history of values right to left.
type LineGraph struct {
	desc *channel.Descriptor
	cfg  LineGraphConfig
	life Lifecycle

	background *gfx.Surface
	history    *gfx.Surface
	frame      *gfx.Surface

	prevY   int
	hasPrev bool
}

// NewLineGraph builds the static background once.
func NewLineGraph(d *channel.Descriptor, cfg LineGraphConfig) (*LineGraph, error) {
	if err := requireRange(d); err != nil {
		return nil, err
	}
	if cfg.Width <= 1 || cfg.Height <= 1 {
		return nil, errBadSize(d, cfg.Width, cfg.Height)
	}
	if cfg.Step <= 0 {
		cfg.Step = 2
	}
	if cfg.LineWidth <= 0 {
		cfg.LineWidth = 1
	}
	if cfg.Palette == (Palette{}) {
		cfg.Palette = DefaultPalette
	}

	g := &LineGraph{
		desc:       d,
		cfg:        cfg,
		background: gfx.NewSurface(cfg.Width, cfg.Height),
		history:    gfx.NewSurface(cfg.Width, cfg.Height),
		frame:      gfx.NewSurface(cfg.Width, cfg.Height),
	}
	g.drawBackground()
	return g, nil
}

func (g *LineGraph) drawBackground() {
	p := g.cfg.Palette
	bg := g.background
	bg.Fill(p.Background)
	for i := 1; i <= g.cfg.GridLines; i++ {
		y := i * g.cfg.Height / (g.cfg.GridLines + 1)
		bg.FillRect(image.Rect(0, y, g.cfg.Width, y+1), p.Track)
	}
	bg.StrokeRect(bg.Bounds(), p.Track)
}

// PlotY maps v to a row, larger values higher, clamped to the element.
func (g *LineGraph) PlotY(v float64) int {
	bottom := float64(g.cfg.Height - 1)
	y := Transpose(v, g.desc.Limits.Min, g.desc.Limits.Max, bottom, 0)
	return int(math.Round(clampF(y, 0, bottom)))
}

// Update scrolls the history and plots v at the right edge.
func (g *LineGraph) Update(v float64) *gfx.Surface {
	g.life = Ready
	g.history.ScrollLeft(g.cfg.Step)

	x1 := g.cfg.Width - 1
	x0 := x1 - g.cfg.Step
	if g.cfg.ZeroIsNoSignal && v == 0 {
		g.hasPrev = false
	} else {
		y := g.PlotY(v)
		c := g.cfg.Palette.LevelColor(g.desc.Level(v))
		if g.hasPrev {
			g.history.Line(x0, g.prevY, x1, y, c, g.cfg.LineWidth)
		} else {
			g.history.Line(x1, y, x1, y, c, g.cfg.LineWidth)
		}
		g.prevY = y
		g.hasPrev = true
	}

	g.frame.CopyFrom(g.background)
	g.frame.Draw(g.history, image.Point{})
	if g.cfg.ShowLabel {
		label := g.desc.Label
		if !(g.cfg.ZeroIsNoSignal && v == 0) {
			label += " " + g.desc.FormatWithUnit(v)
		}
		g.frame.Text(gfx.FontSmall, 2, 1, label, g.cfg.Palette.Text)
	}
	return g.frame
}

// Frame returns the last rendered image.
func (g *LineGraph) Frame() *gfx.Surface { return g.frame }

// History is the scrolling line layer without background.
func (g *LineGraph) History() *gfx.Surface { return g.history }

func (g *LineGraph) Lifecycle() Lifecycle { return g.life }

// Ops counts drawing operations on the per-update surfaces.
func (g *LineGraph) Ops() uint64 { return g.history.Ops() + g.frame.Ops() }
