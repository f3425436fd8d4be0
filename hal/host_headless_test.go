package hal

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRunTicksStopsAtLimit(t *testing.T) {
	ticks := make(chan time.Time, 8)
	for i := 0; i < 8; i++ {
		ticks <- time.Time{}
	}

	steps := 0
	err := runTicks(context.Background(), ticks, func() error {
		steps++
		return nil
	}, 3)
	if err != nil {
		t.Fatalf("runTicks: %v", err)
	}
	if steps != 3 {
		t.Fatalf("steps=%d, want 3", steps)
	}
}

func TestRunTicksQuitIsClean(t *testing.T) {
	ticks := make(chan time.Time, 1)
	ticks <- time.Time{}

	err := runTicks(context.Background(), ticks, func() error { return ErrQuit }, 0)
	if err != nil {
		t.Fatalf("expected nil on quit, got %v", err)
	}
}

func TestRunTicksPropagatesStepError(t *testing.T) {
	ticks := make(chan time.Time, 1)
	ticks <- time.Time{}

	boom := errors.New("boom")
	err := runTicks(context.Background(), ticks, func() error { return boom }, 0)
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want boom", err)
	}
}

func TestRunTicksCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runTicks(ctx, make(chan time.Time), nil, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}

func TestRunHeadlessWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	var logs bytes.Buffer

	err := RunHeadless(context.Background(), Options{Width: 16, Height: 8, TPS: 200}, func(h HAL) (func() error, error) {
		fb := h.Display().Framebuffer()
		return func() error {
			fb.ClearRGB(0xFF, 0, 0)
			h.Logger().WriteLineString("step")
			return fb.Present()
		}, nil
	}, HeadlessConfig{Ticks: 2, PNGPath: path, LogOutput: &logs})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if got := bytes.Count(logs.Bytes(), []byte("step\n")); got != 2 {
		t.Fatalf("log lines=%d, want 2", got)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Fatalf("png size=%v", b)
	}
	r, g, b, _ := img.At(3, 3).RGBA()
	if r>>8 != 0xFF || g != 0 || b != 0 {
		t.Fatalf("pixel=(%d,%d,%d), want red", r>>8, g>>8, b>>8)
	}
}

func TestRunHeadlessConstructorError(t *testing.T) {
	boom := errors.New("asset missing")
	err := RunHeadless(context.Background(), Options{}, func(HAL) (func() error, error) {
		return nil, boom
	}, HeadlessConfig{LogOutput: &bytes.Buffer{}})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want constructor error", err)
	}
}

func TestRGB565RoundTripExtremes(t *testing.T) {
	r, g, b := rgb888From565(rgb565(0xFF, 0xFF, 0xFF))
	if r != 0xFF || g != 0xFF || b != 0xFF {
		t.Fatalf("white=(%d,%d,%d)", r, g, b)
	}
	r, g, b = rgb888From565(rgb565(0, 0, 0))
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("black=(%d,%d,%d)", r, g, b)
	}
}

func TestLogWriterSplitsLines(t *testing.T) {
	var buf bytes.Buffer
	h := newHost(Options{}, &buf)
	w := LogWriter(h.Logger())
	if _, err := w.Write([]byte("one\ntwo\n")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "one\ntwo\n" {
		t.Fatalf("logged %q", buf.String())
	}
}
