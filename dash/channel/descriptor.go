// Package channel describes the telemetry channels the dashboard knows about.
//
// Descriptors are immutable and built once per Registry; elements share them by
// pointer.
package channel

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// ID names a channel. For indexed channels it is the expanded key.
type ID string

// Format selects how a value is rendered as text.
type Format uint8

const (
	FormatNumber Format = iota
	// FormatByteRate renders bytes per second with SI units.
	FormatByteRate
	// FormatText passes the raw field through.
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatNumber:
		return "number"
	case FormatByteRate:
		return "byterate"
	case FormatText:
		return "text"
	default:
		return "?"
	}
}

// Threshold is an optional limit.
type Threshold struct {
	Value float64
	Set   bool
}

// At returns a set threshold.
func At(v float64) Threshold { return Threshold{Value: v, Set: true} }

// Limits is the value range and color-coding thresholds of a channel.
type Limits struct {
	Min     float64
	Max     float64
	Caution Threshold
	Warn    Threshold
}

// Level is the color-coding band a value falls into.
type Level uint8

const (
	LevelNormal Level = iota
	LevelCaution
	LevelWarn
)

// Descriptor is the static metadata of one channel.
type Descriptor struct {
	ID        ID
	Key       string
	Label     string
	Unit      string
	Format    Format
	Precision int
	Limits    Limits
}

// Ranged reports whether the channel can be mapped onto a pixel or angle range.
func (d *Descriptor) Ranged() bool {
	return d.Limits.Max != d.Limits.Min
}

// Level classifies v against the caution and warn thresholds.
func (d *Descriptor) Level(v float64) Level {
	switch {
	case d.Limits.Warn.Set && v >= d.Limits.Warn.Value:
		return LevelWarn
	case d.Limits.Caution.Set && v >= d.Limits.Caution.Value:
		return LevelCaution
	default:
		return LevelNormal
	}
}

// Clamp limits v to [Min, Max] regardless of their order. NaN maps to the
// lower bound.
func (d *Descriptor) Clamp(v float64) float64 {
	lo, hi := d.Limits.Min, d.Limits.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FormatValue renders a numeric value without its unit.
func (d *Descriptor) FormatValue(v float64) string {
	switch d.Format {
	case FormatByteRate:
		if v < 0 {
			v = 0
		}
		return humanize.Bytes(uint64(v)) + "/s"
	default:
		return strconv.FormatFloat(v, 'f', d.Precision, 64)
	}
}

// FormatWithUnit renders v followed by the unit, if any.
func (d *Descriptor) FormatWithUnit(v float64) string {
	s := d.FormatValue(v)
	if d.Unit == "" || d.Format == FormatByteRate {
		return s
	}
	return s + d.Unit
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s(%s)", d.ID, d.Key)
}
