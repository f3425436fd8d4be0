// Package page lays elements out on the framebuffer and drives them once per
// snapshot.
package page

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"hwdash/dash/gfx"
	"hwdash/dash/snapshot"
	"hwdash/hal"
)

// Placement puts a binding's image at a framebuffer position.
type Placement struct {
	At      image.Point
	Binding Binding
}

// Page is one screen of elements. Pages never share element state.
type Page struct {
	Name       string
	Background color.RGBA
	Placements []Placement
}

// Add appends a placement.
func (p *Page) Add(at image.Point, b Binding) {
	p.Placements = append(p.Placements, Placement{At: at, Binding: b})
}

// Stats counts compositor activity.
type Stats struct {
	Renders uint64
	Blits   uint64
	// Missing counts elements skipped because their field was absent.
	Missing uint64
	// Invalid counts elements skipped because their field did not parse.
	Invalid uint64
	Errors  uint64
}

// Compositor renders the current page onto a framebuffer.
type Compositor struct {
	fb    hal.Framebuffer
	disp  *gfx.FramebufferDisplay
	log   *slog.Logger
	pages []*Page
	cur   int
	full  bool
	stats Stats
}

func NewCompositor(fb hal.Framebuffer, pages []*Page, log *slog.Logger) (*Compositor, error) {
	if fb == nil {
		return nil, errors.New("page: nil framebuffer")
	}
	if len(pages) == 0 {
		return nil, errors.New("page: no pages")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Compositor{
		fb:    fb,
		disp:  gfx.NewFramebufferDisplay(fb),
		log:   log.With("component", "page"),
		pages: pages,
		full:  true,
	}, nil
}

// Render drives every binding of the current page with snap and blits the
// images that changed. After a page switch every placement is blitted over a
// cleared background.
func (c *Compositor) Render(snap *snapshot.Snapshot, frames int) error {
	p := c.pages[c.cur]
	full := c.full
	c.full = false
	c.stats.Renders++

	if full {
		w, h := c.disp.Size()
		_ = c.disp.FillRectangle(0, 0, w, h, p.Background)
	}
	for i, pl := range p.Placements {
		img, changed, err := pl.Binding.Render(snap, frames)
		if err != nil {
			switch {
			case errors.Is(err, snapshot.ErrMissingField):
				c.stats.Missing++
			case errors.Is(err, snapshot.ErrInvalidField):
				c.stats.Invalid++
				c.log.Debug("element field invalid", "page", p.Name, "element", i, "err", err)
			default:
				c.stats.Errors++
				c.log.Warn("element render failed", "page", p.Name, "element", i, "err", err)
			}
		}
		if img == nil || !(changed || full) {
			continue
		}
		c.disp.DrawSurface(img, pl.At)
		c.stats.Blits++
	}
	if err := c.fb.Present(); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

// Live is implemented by bindings whose content changes without a new
// snapshot, like the diagnostics console.
type Live interface {
	Live() bool
}

// Refresh renders only the live bindings of the current page and presents
// when one of them changed.
func (c *Compositor) Refresh(snap *snapshot.Snapshot) error {
	if c.full {
		return c.Render(snap, 0)
	}
	blitted := false
	for _, pl := range c.pages[c.cur].Placements {
		if l, ok := pl.Binding.(Live); !ok || !l.Live() {
			continue
		}
		img, changed, err := pl.Binding.Render(snap, 0)
		if err != nil {
			c.stats.Errors++
			continue
		}
		if img != nil && changed {
			c.disp.DrawSurface(img, pl.At)
			c.stats.Blits++
			blitted = true
		}
	}
	if !blitted {
		return nil
	}
	if err := c.fb.Present(); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

// NeedsFull reports whether a page switch is waiting for the next Render.
func (c *Compositor) NeedsFull() bool { return c.full }

// Show switches to page i; out-of-range values are ignored.
func (c *Compositor) Show(i int) bool {
	if i < 0 || i >= len(c.pages) {
		return false
	}
	if i != c.cur {
		c.cur = i
		c.full = true
		c.log.Debug("page switched", "page", c.pages[i].Name)
	}
	return true
}

// Next and Prev cycle through the pages.
func (c *Compositor) Next() { c.Show((c.cur + 1) % len(c.pages)) }
func (c *Compositor) Prev() { c.Show((c.cur + len(c.pages) - 1) % len(c.pages)) }

// Current returns the visible page index.
func (c *Compositor) Current() int { return c.cur }
func (c *Compositor) Page() *Page  { return c.pages[c.cur] }
func (c *Compositor) Len() int     { return len(c.pages) }
func (c *Compositor) Stats() Stats { return c.stats }
