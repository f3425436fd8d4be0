package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"hwdash/dash/config"
	"hwdash/dash/proto"
	"hwdash/hal"
)

type keyInput struct{ ch chan hal.KeyEvent }

func (k keyInput) Keyboard() hal.Keyboard      { return k }
func (k keyInput) Events() <-chan hal.KeyEvent { return k.ch }

// testHAL is a host HAL whose keyboard the test drives.
type testHAL struct {
	hal.HAL
	keys chan hal.KeyEvent
}

func (h *testHAL) Input() hal.Input { return keyInput{ch: h.keys} }

func (h *testHAL) press(code hal.KeyCode, r rune) {
	h.keys <- hal.KeyEvent{Code: code, Press: true, Rune: r}
}

func newTestHAL() *testHAL {
	return &testHAL{
		HAL:  hal.New(hal.Options{Width: 320, Height: 240}),
		keys: make(chan hal.KeyEvent, 16),
	}
}

func newTestApp(t *testing.T, ctx context.Context, h hal.HAL, cfg *config.Config) *App {
	t.Helper()
	a, err := New(ctx, h, Options{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func publish(t *testing.T, a *App, payload string) {
	t.Helper()
	msg, err := proto.Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	a.Store().Publish(msg, time.Now())
}

func TestStepRendersOnlyNewSnapshots(t *testing.T) {
	a := newTestApp(t, context.Background(), newTestHAL(), config.Default())

	if err := a.Step(); err != nil {
		t.Fatal(err)
	}
	if got := a.Compositor().Stats().Renders; got != 1 {
		t.Fatalf("initial full pass renders=%d", got)
	}
	a.Step()
	if got := a.Compositor().Stats().Renders; got != 1 {
		t.Fatalf("rendered without a new snapshot: %d", got)
	}

	publish(t, a, "Page0| {|}Simple1|cpu_util 10 {|}")
	publish(t, a, "Page0| {|}Simple1|cpu_util 20 {|}")
	a.Step()
	if got := a.Compositor().Stats().Renders; got != 2 {
		t.Fatalf("renders=%d, want one pass for the latest snapshot", got)
	}
	a.Step()
	if got := a.Compositor().Stats().Renders; got != 2 {
		t.Fatalf("same snapshot rendered twice: %d", got)
	}
}

func TestStepKeys(t *testing.T) {
	h := newTestHAL()
	a := newTestApp(t, context.Background(), h, config.Default())

	h.press(hal.KeyRight, 0)
	a.Step()
	if got := a.Compositor().Current(); got != 1 {
		t.Fatalf("after Right current=%d", got)
	}
	h.press(hal.KeyUnknown, '3')
	a.Step()
	if got := a.Compositor().Current(); got != 2 {
		t.Fatalf("after '3' current=%d", got)
	}
	h.press(hal.KeyEnd, 0)
	a.Step()
	if got := a.Compositor().Current(); got != a.Compositor().Len()-1 {
		t.Fatalf("after End current=%d", got)
	}
	h.keys <- hal.KeyEvent{Code: hal.KeyHome}
	a.Step()
	if got := a.Compositor().Current(); got == 0 {
		t.Fatal("key release switched pages")
	}

	h.press(hal.KeyEscape, 0)
	if err := a.Step(); !errors.Is(err, hal.ErrQuit) {
		t.Fatalf("Escape: err=%v, want ErrQuit", err)
	}
}

func TestStepQuitsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := newTestApp(t, ctx, newTestHAL(), config.Default())
	cancel()
	if err := a.Step(); !errors.Is(err, hal.ErrQuit) {
		t.Fatalf("err=%v, want ErrQuit", err)
	}
}

func TestReloadKeepsPageWhenPossible(t *testing.T) {
	h := newTestHAL()
	a := newTestApp(t, context.Background(), h, config.Default())
	h.press(hal.KeyRight, 0)
	a.Step()

	next := config.Default()
	next.Pages = next.Pages[:2]
	a.offer(config.Default())
	a.offer(next)
	a.Step()

	c := a.Compositor()
	if c.Len() != 2 {
		t.Fatalf("reload not applied, pages=%d", c.Len())
	}
	if c.Current() != 1 {
		t.Fatalf("current=%d, want page kept across reload", c.Current())
	}

	bad := config.Default()
	bad.Assets.Needle = filepath.Join(t.TempDir(), "missing.png")
	a.offer(bad)
	a.Step()
	if a.Compositor() != c {
		t.Fatal("failed reload replaced the pages")
	}
}

// syncBuffer is a log sink shared with the stream goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestReloadKeepsURLOverride(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var logs syncBuffer
	const url = "http://127.0.0.1:1/events"
	a, err := New(ctx, newTestHAL(), Options{
		Config:      config.Default(),
		URLOverride: url,
		Logger:      slog.New(slog.NewTextHandler(&logs, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	cancel()

	a.offer(config.Default())
	select {
	case cfg := <-a.reload:
		if err := a.apply(cfg); err != nil {
			t.Fatal(err)
		}
	default:
		t.Fatal("reload not queued")
	}
	if a.cfg.Stream.URL != url {
		t.Fatalf("reloaded url=%q, want the override", a.cfg.Stream.URL)
	}
	if strings.Contains(logs.String(), "needs a restart") {
		t.Fatalf("unchanged url reported as changed:\n%s", logs.String())
	}
}

func TestNewFailsOnMissingNeedle(t *testing.T) {
	cfg := config.Default()
	cfg.Assets.Needle = filepath.Join(t.TempDir(), "needle.png")
	_, err := New(context.Background(), newTestHAL(), Options{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err == nil || !strings.Contains(err.Error(), "load asset") {
		t.Fatalf("err=%v", err)
	}
}

func TestDefaultLoggerMirrorsIntoConsole(t *testing.T) {
	a, err := New(context.Background(), newTestHAL(), Options{Config: config.Default()})
	if err != nil {
		t.Fatal(err)
	}
	tail := strings.Join(a.ring.Tail(4), "\n")
	if !strings.Contains(tail, "dashboard ready") {
		t.Fatalf("console ring missing startup line: %q", tail)
	}
}
