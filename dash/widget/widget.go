// Package widget holds the stateful dashboard elements. Each element owns its
// surfaces and redraws only what its new input changed.
package widget

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"hwdash/dash/channel"
)

// ErrDegenerateRange means a channel has Min == Max and cannot be mapped.
var ErrDegenerateRange = errors.New("degenerate value range")

// Lifecycle is the two-state life of an element. The first update after
// construction always draws in full.
type Lifecycle uint8

const (
	Uninitialized Lifecycle = iota
	Ready
)

func (l Lifecycle) String() string {
	if l == Ready {
		return "ready"
	}
	return "uninitialized"
}

// Transpose maps in from [inLo, inHi] onto [outLo, outHi] linearly. The caller
// guarantees inHi != inLo.
func Transpose(in, inLo, inHi, outLo, outHi float64) float64 {
	return ((outHi - outLo) * (in - inLo) / (inHi - inLo)) + outLo
}

func requireRange(d *channel.Descriptor) error {
	if d == nil {
		return errors.New("nil channel descriptor")
	}
	if !d.Ranged() {
		return fmt.Errorf("%s: %w (min=max=%v)", d.Key, ErrDegenerateRange, d.Limits.Min)
	}
	return nil
}

// clampF limits v to [lo, hi]; NaN maps to lo.
func clampF(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Palette is the set of colors an element draws with.
type Palette struct {
	Background color.RGBA
	Track      color.RGBA
	Foreground color.RGBA
	Caution    color.RGBA
	Warn       color.RGBA
	Text       color.RGBA
	Dim        color.RGBA
	Shadow     color.RGBA
}

// DefaultPalette is the stock dark theme.
var DefaultPalette = Palette{
	Background: color.RGBA{R: 0x08, G: 0x08, B: 0x08, A: 0xFF},
	Track:      color.RGBA{R: 0x2E, G: 0x2E, B: 0x2E, A: 0xFF},
	Foreground: color.RGBA{R: 0x4A, G: 0xD1, B: 0xFF, A: 0xFF},
	Caution:    color.RGBA{R: 0xFF, G: 0xD1, B: 0x4A, A: 0xFF},
	Warn:       color.RGBA{R: 0xE2, G: 0x48, B: 0x26, A: 0xFF},
	Text:       color.RGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF},
	Dim:        color.RGBA{R: 0x8A, G: 0x8A, B: 0x8A, A: 0xFF},
	Shadow:     color.RGBA{A: 0x90},
}

// LevelColor picks the foreground for a threshold level.
func (p Palette) LevelColor(l channel.Level) color.RGBA {
	switch l {
	case channel.LevelWarn:
		return p.Warn
	case channel.LevelCaution:
		return p.Caution
	default:
		return p.Foreground
	}
}

func errBadSize(d *channel.Descriptor, w, h int) error {
	return fmt.Errorf("%s: bad element size %dx%d", d.Key, w, h)
}
