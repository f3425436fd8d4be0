// Package console renders recent log lines and stream counters as a page
// element.
package console

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"

	"hwdash/dash/gfx"
	"hwdash/dash/snapshot"
	"hwdash/dash/stream"
)

const (
	fontHeight = 10
	fontOffset = 8
)

var background = color.RGBA{A: 0xFF}

// View is a terminal-style page element.
type View struct {
	log   *Log
	stats func() stream.Stats
	now   func() time.Time

	surf *gfx.Surface
	rows int
	cols int
	text string
}

// NewView sizes a console of w x h pixels. stats may be nil when no stream
// is running.
func NewView(l *Log, stats func() stream.Stats, w, h int) *View {
	_, cw := tinyfont.LineWidth(&proggy.TinySZ8pt7b, "0")
	if cw == 0 {
		cw = 6
	}
	return &View{
		log:   l,
		stats: stats,
		now:   time.Now,
		surf:  gfx.NewSurface(w, h),
		rows:  h / fontHeight,
		cols:  w / int(cw),
	}
}

// Render implements the page binding contract. It redraws only when the text
// on screen would change.
func (v *View) Render(snap *snapshot.Snapshot, frames int) (*gfx.Surface, bool, error) {
	text := strings.Join(v.compose(snap), "\r\n")
	if text == v.text {
		return v.surf, false, nil
	}
	v.text = text

	v.surf.Fill(background)
	term := tinyterm.NewTerminal(v.surf)
	term.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: fontHeight,
		FontOffset: fontOffset,
	})
	if _, err := term.Write([]byte(text)); err != nil {
		return v.surf, true, fmt.Errorf("console: %w", err)
	}
	return v.surf, true, nil
}

// Live marks the console for per-frame refresh between snapshots.
func (v *View) Live() bool { return true }

// Text is what the last redraw wrote.
func (v *View) Text() string { return v.text }

// compose builds at most rows lines, each at most cols wide. Render joins them
// without a trailing newline so the terminal never scrolls.
func (v *View) compose(snap *snapshot.Snapshot) []string {
	var lines []string
	lines = append(lines, v.header(snap)...)
	if room := v.rows - len(lines); room > 0 {
		for _, l := range v.log.Tail(room) {
			lines = append(lines, trimLevel(l))
		}
	}
	if len(lines) > v.rows {
		lines = lines[:v.rows]
	}
	for i, l := range lines {
		lines[i] = clip(l, v.cols)
	}
	return lines
}

// clip cuts s to at most n runes.
func clip(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func (v *View) header(snap *snapshot.Snapshot) []string {
	var st stream.Stats
	if v.stats != nil {
		st = v.stats()
	}
	state := "disconnected"
	if st.Connected {
		state = "connected"
	}
	age := "no data"
	if snap != nil {
		age = humanize.RelTime(snap.Received, v.now(), "ago", "from now")
	}
	out := []string{
		fmt.Sprintf("%s | %s", state, age),
		fmt.Sprintf("ev %s snap %s empty %s bad %s rej %s reconn %s",
			humanize.Comma(int64(st.Events)),
			humanize.Comma(int64(st.Snapshots)),
			humanize.Comma(int64(st.Empty)),
			humanize.Comma(int64(st.Malformed)),
			humanize.Comma(int64(st.Rejected)),
			humanize.Comma(int64(st.Reconnects)),
		),
	}
	if st.LastError != "" && !st.Connected {
		out = append(out, "err "+st.LastError)
	}
	return append(out, strings.Repeat("-", v.cols))
}
