package page

import (
	"hwdash/dash/channel"
	"hwdash/dash/gfx"
	"hwdash/dash/snapshot"
	"hwdash/dash/tween"
	"hwdash/dash/widget"
)

// Binding connects one element to the snapshot fields it shows.
//
// Render returns the element image and whether it changed since the previous
// call. On error the last good image is returned, possibly nil.
type Binding interface {
	Render(snap *snapshot.Snapshot, frames int) (*gfx.Surface, bool, error)
}

// element is the common surface of the widget types.
type element interface {
	Frame() *gfx.Surface
	Ops() uint64
}

// Scalar feeds one numeric channel into an element through its own trend
// tracker.
type Scalar struct {
	desc    *channel.Descriptor
	tracker tween.Tracker
	elem    element
	update  func(v float64, trend tween.State) *gfx.Surface
	last    *gfx.Surface
}

func NewGraph(d *channel.Descriptor, g *widget.LineGraph) *Scalar {
	return &Scalar{desc: d, elem: g, update: func(v float64, _ tween.State) *gfx.Surface {
		return g.Update(v)
	}}
}

func NewGauge(d *channel.Descriptor, g *widget.Gauge) *Scalar {
	return &Scalar{desc: d, elem: g, update: func(v float64, st tween.State) *gfx.Surface {
		g.SetTrend(st)
		return g.Update(v)
	}}
}

func NewBar(d *channel.Descriptor, b *widget.Bar) *Scalar {
	return &Scalar{desc: d, elem: b, update: func(v float64, _ tween.State) *gfx.Surface {
		return b.Update(v)
	}}
}

func NewReadout(d *channel.Descriptor, r *widget.Readout) *Scalar {
	return &Scalar{desc: d, elem: r, update: r.Update}
}

// Render reads the channel, advances the tracker and updates the element.
// A missing or invalid field leaves the element untouched.
func (s *Scalar) Render(snap *snapshot.Snapshot, frames int) (*gfx.Surface, bool, error) {
	r := snap.Numeric(s.desc)
	if err := r.Err(); err != nil {
		return s.last, false, err
	}
	st := s.tracker.Update(r.Value, frames)
	before := s.elem.Ops()
	s.last = s.update(r.Value, st)
	return s.last, s.elem.Ops() != before, nil
}

// Trend is the tracker state after the last render.
func (s *Scalar) Trend() tween.State { return s.tracker.State() }

// Grid feeds an indexed channel family into an activity grid.
type Grid struct {
	descs []*channel.Descriptor
	grid  *widget.Grid
}

func NewGrid(descs []*channel.Descriptor, g *widget.Grid) *Grid {
	return &Grid{descs: descs, grid: g}
}

// Render never fails: absent indices read as inactive cells.
func (g *Grid) Render(snap *snapshot.Snapshot, _ int) (*gfx.Surface, bool, error) {
	img := g.grid.Update(snap.Indexed(g.descs))
	return img, g.grid.Redraws() > 0, nil
}

// Text shows a raw string field, or a fallback when it is absent.
type Text struct {
	desc     *channel.Descriptor
	fallback string
	readout  *widget.Readout
}

func NewText(d *channel.Descriptor, fallback string, r *widget.Readout) *Text {
	return &Text{desc: d, fallback: fallback, readout: r}
}

func (t *Text) Render(snap *snapshot.Snapshot, _ int) (*gfx.Surface, bool, error) {
	before := t.readout.Ops()
	img := t.readout.UpdateText(snap.Get(t.desc, t.fallback))
	return img, t.readout.Ops() != before, nil
}
