package widget

import (
	"errors"
	"image"

	"hwdash/dash/gfx"
	"hwdash/dash/snapshot"
)

// GridConfig lays out an activity grid.
type GridConfig struct {
	Width  int
	Height int
	Cells  int
	Rows   int
	// Threshold is the value a reading must exceed to count as active.
	Threshold float64
	Gap       int
	Palette   Palette
}

// Grid shows one on/off cell per indexed channel, e.g. per core activity.
type Grid struct {
	cfg     GridConfig
	life    Lifecycle
	perRow  int
	active  []bool
	redraws int
	frame   *gfx.Surface
}

func NewGrid(cfg GridConfig) (*Grid, error) {
	if cfg.Cells <= 0 {
		return nil, errors.New("grid: cell count must be positive")
	}
	if cfg.Rows <= 0 {
		cfg.Rows = 1
	}
	if cfg.Rows > cfg.Cells {
		cfg.Rows = cfg.Cells
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("grid: bad element size")
	}
	if cfg.Gap < 0 {
		cfg.Gap = 0
	}
	if cfg.Palette == (Palette{}) {
		cfg.Palette = DefaultPalette
	}
	return &Grid{
		cfg:    cfg,
		perRow: (cfg.Cells + cfg.Rows - 1) / cfg.Rows,
		active: make([]bool, cfg.Cells),
		frame:  gfx.NewSurface(cfg.Width, cfg.Height),
	}, nil
}

// PerRow is the number of cells per row, rounded up.
func (g *Grid) PerRow() int { return g.perRow }

// CellRect is the rectangle of cell i inside the grid image.
func (g *Grid) CellRect(i int) image.Rectangle {
	col, row := i%g.perRow, i/g.perRow
	w := g.cfg.Width / g.perRow
	h := g.cfg.Height / g.cfg.Rows
	x, y := col*w, row*h
	return image.Rect(x, y, x+w-g.cfg.Gap, y+h-g.cfg.Gap)
}

// Update redraws every cell whose active state changed. Readings past the
// configured cell count are ignored and missing ones count as inactive.
func (g *Grid) Update(readings []snapshot.Reading) *gfx.Surface {
	g.redraws = 0
	first := g.life == Uninitialized
	if first {
		g.frame.Fill(g.cfg.Palette.Background)
	}
	for i := range g.active {
		on := false
		if i < len(readings) && readings[i].Ok() {
			on = readings[i].Value > g.cfg.Threshold
		}
		if !first && on == g.active[i] {
			continue
		}
		g.active[i] = on
		c := g.cfg.Palette.Track
		if on {
			c = g.cfg.Palette.Foreground
		}
		g.frame.FillRect(g.CellRect(i), c)
		g.redraws++
	}
	g.life = Ready
	return g.frame
}

// Redraws reports how many cells the last Update repainted.
func (g *Grid) Redraws() int { return g.redraws }

// Active returns a copy of the per-cell flags.
func (g *Grid) Active() []bool { return append([]bool(nil), g.active...) }

func (g *Grid) Frame() *gfx.Surface  { return g.frame }
func (g *Grid) Lifecycle() Lifecycle { return g.life }
func (g *Grid) Ops() uint64          { return g.frame.Ops() }
