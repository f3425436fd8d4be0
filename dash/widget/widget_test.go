package widget

import (
	"errors"
	"image"
	"math"
	"testing"

	"hwdash/dash/channel"
	"hwdash/dash/gfx"
	"hwdash/dash/snapshot"
	"hwdash/dash/tween"
)

func percent() *channel.Descriptor {
	return &channel.Descriptor{
		ID:     "cpu_util",
		Key:    "cpu_util",
		Label:  "CPU",
		Unit:   "%",
		Format: channel.FormatNumber,
		Limits: channel.Limits{Min: 0, Max: 100, Caution: channel.At(70), Warn: channel.At(90)},
	}
}

func TestTransposeEndpoints(t *testing.T) {
	if got := Transpose(50, 0, 100, 0, 200); got != 100 {
		t.Fatalf("Transpose midpoint=%v, want 100", got)
	}
	lo, hi := -135.0, 135.0
	for _, r := range [][2]float64{{0, 100}, {-20, 20}, {100, 0}} {
		if got := Transpose(r[0], r[0], r[1], lo, hi); got != lo {
			t.Errorf("Transpose(inLo)=%v, want %v", got, lo)
		}
		if got := Transpose(r[1], r[0], r[1], lo, hi); math.Abs(got-hi) > 1e-9 {
			t.Errorf("Transpose(inHi)=%v, want %v", got, hi)
		}
	}
}

func TestTransposeMonotonic(t *testing.T) {
	for _, r := range [][4]float64{{0, 100, -135, 135}, {-20, 20, 0, 50}, {0, 255, 10, 0}} {
		inLo, inHi, outLo, outHi := r[0], r[1], r[2], r[3]
		sign := 1.0
		if outHi < outLo {
			sign = -1
		}
		prev := Transpose(inLo, inLo, inHi, outLo, outHi)
		for i := 1; i <= 1000; i++ {
			in := inLo + (inHi-inLo)*float64(i)/1000
			got := Transpose(in, inLo, inHi, outLo, outHi)
			if sign*(got-prev) < 0 {
				t.Fatalf("Transpose over %v not monotonic at %v: %v after %v", r, in, got, prev)
			}
			prev = got
		}
	}
}

func TestDegenerateRangeRejected(t *testing.T) {
	d := percent()
	d.Limits.Max = d.Limits.Min
	if _, err := NewLineGraph(d, LineGraphConfig{Width: 10, Height: 10}); !errors.Is(err, ErrDegenerateRange) {
		t.Fatalf("line graph err=%v", err)
	}
	if _, err := NewGauge(d, GaugeConfig{Size: 32}); !errors.Is(err, ErrDegenerateRange) {
		t.Fatalf("gauge err=%v", err)
	}
	if _, err := NewBar(d, BarConfig{Width: 10, Height: 4}); !errors.Is(err, ErrDegenerateRange) {
		t.Fatalf("bar err=%v", err)
	}
}

func TestLineGraphPlotClamps(t *testing.T) {
	g, err := NewLineGraph(percent(), LineGraphConfig{Width: 20, Height: 11})
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		v    float64
		want int
	}{
		{0, 10},
		{100, 0},
		{50, 5},
		{-40, 10},
		{250, 0},
	}
	for _, c := range cases {
		if got := g.PlotY(c.v); got != c.want {
			t.Errorf("PlotY(%v)=%d, want %d", c.v, got, c.want)
		}
	}
}

func columnPainted(s *gfx.Surface, x int) bool {
	for y := 0; y < s.Height(); y++ {
		if s.At(x, y).A != 0 {
			return true
		}
	}
	return false
}

func TestLineGraphScrollsHistory(t *testing.T) {
	g, err := NewLineGraph(percent(), LineGraphConfig{Width: 10, Height: 10, Step: 2})
	if err != nil {
		t.Fatal(err)
	}
	if g.Lifecycle() != Uninitialized {
		t.Fatal("new graph must be uninitialized")
	}
	g.Update(50)
	if g.Lifecycle() != Ready {
		t.Fatal("graph not ready after first update")
	}
	h := g.History()
	if !columnPainted(h, 9) {
		t.Fatal("first point not plotted at right edge")
	}
	g.Update(50)
	if !columnPainted(h, 7) || !columnPainted(h, 9) {
		t.Fatal("expected previous point shifted by step and new point at edge")
	}
	for i := 0; i < 6; i++ {
		g.Update(50)
	}
	if columnPainted(h, 0) == false {
		t.Fatal("history should fill the full width after enough updates")
	}
}

func TestLineGraphZeroIsNoSignal(t *testing.T) {
	g, err := NewLineGraph(percent(), LineGraphConfig{Width: 10, Height: 10, Step: 2, ZeroIsNoSignal: true})
	if err != nil {
		t.Fatal(err)
	}
	g.Update(0)
	if columnPainted(g.History(), 9) {
		t.Fatal("zero drew a point with ZeroIsNoSignal")
	}
	g.Update(60)
	if !columnPainted(g.History(), 9) {
		t.Fatal("non-zero value not drawn")
	}
	if columnPainted(g.History(), 7) {
		t.Fatal("line must not connect across a no-signal gap")
	}
}

func TestGaugeSkipsUnchangedValue(t *testing.T) {
	g, err := NewGauge(percent(), GaugeConfig{Size: 48})
	if err != nil {
		t.Fatal(err)
	}
	first := g.Update(40).Clone()
	ops := g.Ops()
	if ops == 0 {
		t.Fatal("first update must draw")
	}
	again := g.Update(40)
	if g.Ops() != ops {
		t.Fatalf("unchanged value drew %d ops", g.Ops()-ops)
	}
	if !again.Equal(first) {
		t.Fatal("unchanged value altered the frame")
	}
	g.Update(41)
	if g.Ops() == ops {
		t.Fatal("changed value did not redraw")
	}
}

func TestGaugeRedrawsWhenTrendSettles(t *testing.T) {
	var tr tween.Tracker
	g, err := NewGauge(percent(), GaugeConfig{Size: 48})
	if err != nil {
		t.Fatal(err)
	}
	var frame *gfx.Surface
	for _, v := range []float64{40, 50, 50} {
		g.SetTrend(tr.Update(v, 1))
		frame = g.Update(v)
	}
	if tr.State().Direction != tween.Idle {
		t.Fatalf("tracker=%v, want idle", tr.State().Direction)
	}

	idle, err := NewGauge(percent(), GaugeConfig{Size: 48})
	if err != nil {
		t.Fatal(err)
	}
	idle.SetTrend(tween.State{Direction: tween.Idle})
	if !frame.Equal(idle.Update(50)) {
		t.Fatal("rising marker still drawn after the value settled")
	}

	ops := g.Ops()
	g.SetTrend(tr.Update(50, 1))
	g.Update(50)
	if g.Ops() != ops {
		t.Fatal("same value and trend redrew")
	}
}

func TestNonFiniteValuesStayInBounds(t *testing.T) {
	nan := math.NaN()
	lg, err := NewLineGraph(percent(), LineGraphConfig{Width: 20, Height: 11})
	if err != nil {
		t.Fatal(err)
	}
	if y := lg.PlotY(nan); y < 0 || y > 10 {
		t.Fatalf("PlotY(NaN)=%d", y)
	}
	if y := lg.PlotY(math.Inf(1)); y != 0 {
		t.Fatalf("PlotY(+Inf)=%d", y)
	}
	lg.Update(50)
	lg.Update(nan)

	b, _ := NewBar(percent(), BarConfig{Width: 100, Height: 4})
	if e := b.Extent(nan); e != 0 {
		t.Fatalf("Extent(NaN)=%d", e)
	}
	g, _ := NewGauge(percent(), GaugeConfig{Size: 48})
	if a := g.Angle(nan); a != -135 {
		t.Fatalf("Angle(NaN)=%v", a)
	}
}

func TestGaugeAngles(t *testing.T) {
	cw, err := NewGauge(percent(), GaugeConfig{Size: 48})
	if err != nil {
		t.Fatal(err)
	}
	ccw, err := NewGauge(percent(), GaugeConfig{Size: 48, CounterClockwise: true})
	if err != nil {
		t.Fatal(err)
	}
	if a := cw.Angle(0); a != -135 {
		t.Errorf("cw min angle=%v", a)
	}
	if a := cw.Angle(500); a != 135 {
		t.Errorf("cw clamped max angle=%v", a)
	}
	if a := ccw.Angle(100); a != -135 {
		t.Errorf("ccw max angle=%v", a)
	}
	if s := cw.ShadowAngle(135); s <= 135 {
		t.Errorf("shadow should lag past the clockwise end, got %v", s)
	}
	if s := cw.ShadowAngle(0); s != 0 {
		t.Errorf("shadow at mid sweep=%v, want 0", s)
	}
	if s := cw.ShadowAngle(-135); s >= -135 {
		t.Errorf("shadow should lag past the start, got %v", s)
	}
}

func TestGaugeWarnDirection(t *testing.T) {
	d := percent()
	d.Limits.Warn = channel.At(20)
	cw, _ := NewGauge(d, GaugeConfig{Size: 48})
	ccw, _ := NewGauge(d, GaugeConfig{Size: 48, CounterClockwise: true})
	if !cw.PastWarn(20) || cw.PastWarn(19) {
		t.Fatal("clockwise warn must trigger at >= threshold")
	}
	if !ccw.PastWarn(20) || ccw.PastWarn(21) {
		t.Fatal("counter-clockwise warn must trigger at <= threshold")
	}
}

func TestGaugeNeedleAssetSize(t *testing.T) {
	if _, err := NewGauge(percent(), GaugeConfig{Size: 48, Needle: gfx.NewSurface(10, 10)}); err == nil {
		t.Fatal("expected error for mismatched needle asset")
	}
	needle := gfx.NewSurface(48, 48)
	needle.FillRect(image.Rect(23, 4, 25, 24), DefaultPalette.Text)
	if _, err := NewGauge(percent(), GaugeConfig{Size: 48, Needle: needle, FixedLabel: "IN"}); err != nil {
		t.Fatalf("needle asset rejected: %v", err)
	}
}

func TestBarExtentAndSkip(t *testing.T) {
	b, err := NewBar(percent(), BarConfig{Width: 100, Height: 4})
	if err != nil {
		t.Fatal(err)
	}
	if e := b.Extent(-10); e != 0 {
		t.Errorf("extent below min=%d", e)
	}
	if e := b.Extent(150); e != 100 {
		t.Errorf("extent above max=%d", e)
	}
	frame := b.Update(95)
	if frame.At(94, 1) != DefaultPalette.Warn {
		t.Fatalf("warn level color missing: %v", frame.At(94, 1))
	}
	if frame.At(96, 1) != DefaultPalette.Track {
		t.Fatal("unfilled part should show the track")
	}
	ops := b.Ops()
	b.Update(95)
	if b.Ops() != ops {
		t.Fatal("unchanged bar redrew")
	}
}

func TestBarVerticalFillsFromBottom(t *testing.T) {
	b, err := NewBar(percent(), BarConfig{Width: 4, Height: 10, Vertical: true})
	if err != nil {
		t.Fatal(err)
	}
	frame := b.Update(30)
	if frame.At(1, 9) != DefaultPalette.Foreground {
		t.Fatal("bottom row not filled")
	}
	if frame.At(1, 0) != DefaultPalette.Track {
		t.Fatal("top row filled for 30%")
	}
}

func readings(vs ...float64) []snapshot.Reading {
	out := make([]snapshot.Reading, len(vs))
	for i, v := range vs {
		out[i] = snapshot.Reading{Value: v, Status: snapshot.Present}
	}
	return out
}

func TestGridRedrawsOnlyChangedCells(t *testing.T) {
	g, err := NewGrid(GridConfig{Width: 20, Height: 10, Cells: 2, Rows: 1, Threshold: 12})
	if err != nil {
		t.Fatal(err)
	}
	steps := []struct {
		in      []float64
		redraws int
		active  []bool
	}{
		{[]float64{5, 20}, 2, []bool{false, true}},
		{[]float64{5, 25}, 0, []bool{false, true}},
		{[]float64{5, 5}, 1, []bool{false, false}},
		{[]float64{5, 20}, 1, []bool{false, true}},
		{[]float64{5, 20}, 0, []bool{false, true}},
	}
	for i, s := range steps {
		g.Update(readings(s.in...))
		if g.Redraws() != s.redraws {
			t.Fatalf("step %d: redraws=%d, want %d", i, g.Redraws(), s.redraws)
		}
		for c, want := range s.active {
			if g.Active()[c] != want {
				t.Fatalf("step %d: cell %d active=%v", i, c, g.Active()[c])
			}
		}
	}
}

func TestGridMissingReadingsInactive(t *testing.T) {
	g, err := NewGrid(GridConfig{Width: 40, Height: 20, Cells: 4, Rows: 2, Threshold: 10})
	if err != nil {
		t.Fatal(err)
	}
	in := readings(50, 50)
	in = append(in, snapshot.Reading{Status: snapshot.Missing})
	g.Update(in)
	if g.Redraws() != 4 {
		t.Fatalf("first update redraws=%d, want every cell", g.Redraws())
	}
	if a := g.Active(); a[2] || a[3] {
		t.Fatalf("missing cells active: %v", a)
	}
}

func TestGridGeometry(t *testing.T) {
	g, err := NewGrid(GridConfig{Width: 30, Height: 20, Cells: 5, Rows: 2})
	if err != nil {
		t.Fatal(err)
	}
	if g.PerRow() != 3 {
		t.Fatalf("perRow=%d, want 3", g.PerRow())
	}
	if r := g.CellRect(4); r.Min != image.Pt(10, 10) {
		t.Fatalf("cell 4 at %v, want column 1 row 1", r.Min)
	}
	if r := g.CellRect(2); r.Min != image.Pt(20, 0) {
		t.Fatalf("cell 2 at %v", r.Min)
	}
}

func TestReadoutSkipsSameText(t *testing.T) {
	r, err := NewReadout(percent(), ReadoutConfig{Width: 80, Height: 28})
	if err != nil {
		t.Fatal(err)
	}
	var tr tween.Tracker
	r.Update(42, tr.Update(42, 1))
	if r.Text() != "42%" {
		t.Fatalf("text=%q", r.Text())
	}
	// unknown -> idle changes the trend marker
	r.Update(42, tr.Update(42, 1))
	ops := r.Ops()
	r.Update(42, tr.Update(42, 1))
	if r.Ops() != ops {
		t.Fatal("identical readout redrew")
	}
	r.Update(43, tr.Update(43, 1))
	if r.Ops() == ops {
		t.Fatal("changed readout did not redraw")
	}
}

func TestReadoutText(t *testing.T) {
	d := &channel.Descriptor{ID: "desktop_resolution", Key: "desktop_resolution", Label: "Res", Format: channel.FormatText}
	r, err := NewReadout(d, ReadoutConfig{Width: 80, Height: 28})
	if err != nil {
		t.Fatal(err)
	}
	r.UpdateText("2560x1440")
	if r.Text() != "2560x1440" || r.Lifecycle() != Ready {
		t.Fatalf("text=%q life=%v", r.Text(), r.Lifecycle())
	}
}
