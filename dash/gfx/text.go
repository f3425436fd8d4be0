package gfx

import (
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"
)

// Font pairs a tinyfont face with its line metrics.
type Font struct {
	Face tinyfont.Fonter
	// Height is the line height in pixels.
	Height int
	// Ascent is the distance from the top of a line to the baseline.
	Ascent int
}

var (
	FontSmall  = Font{Face: &proggy.TinySZ8pt7b, Height: 10, Ascent: 8}
	FontMedium = Font{Face: &freemono.Bold9pt7b, Height: 14, Ascent: 11}
	FontLarge  = Font{Face: &freemono.Bold12pt7b, Height: 18, Ascent: 14}
)

// TextWidth returns the advance width of str.
func TextWidth(f Font, str string) int {
	_, outbox := tinyfont.LineWidth(f.Face, str)
	return int(outbox)
}

// Text draws str with its top-left corner at (x, y).
func (s *Surface) Text(f Font, x, y int, str string, c color.RGBA) {
	s.ops++
	tinyfont.WriteLine(s, f.Face, int16(x), int16(y+f.Ascent), str, c)
}

// TextCentered draws str centered horizontally on cx with its top at y.
func (s *Surface) TextCentered(f Font, cx, y int, str string, c color.RGBA) {
	s.Text(f, cx-TextWidth(f, str)/2, y, str, c)
}
