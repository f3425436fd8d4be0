// Package app wires the stream, the snapshot store and the page compositor
// into the per-frame step the host loop drives.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"hwdash/dash/channel"
	"hwdash/dash/config"
	"hwdash/dash/console"
	"hwdash/dash/gfx"
	"hwdash/dash/page"
	"hwdash/dash/snapshot"
	"hwdash/dash/stream"
	"hwdash/hal"
)

// Options configures New.
type Options struct {
	Config *config.Config
	// ConfigPath, when set, is watched and valid edits are applied live.
	ConfigPath string
	// URLOverride replaces stream.url in the initial and every reloaded config.
	URLOverride string
	// Logger defaults to a text handler on the HAL logger mirrored into Log.
	Logger *slog.Logger
	Level  slog.Leveler
	// Log is the console ring; created when nil.
	Log   *console.Log
	Store *snapshot.Store
	// HTTPClient is used for the event stream.
	HTTPClient *http.Client
}

// App is the dashboard state owned by the frame step. Only Step and the
// methods it calls touch the compositor and element state.
type App struct {
	ctx    context.Context
	log    *slog.Logger
	ring   *console.Log
	store  *snapshot.Store
	client *stream.Client
	fb     hal.Framebuffer
	keys   <-chan hal.KeyEvent

	cfg    *config.Config
	needle *gfx.Surface
	comp   *page.Compositor
	reload chan *config.Config
	url    string

	lastSeq uint64
	frames  int
}

// New builds the pages and starts the stream and config watcher goroutines.
// They stop when ctx ends.
func New(ctx context.Context, h hal.HAL, opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("app: nil config")
	}
	if opts.URLOverride != "" {
		cfg := *opts.Config
		cfg.Stream.URL = opts.URLOverride
		opts.Config = &cfg
	}
	disp := h.Display()
	if disp == nil || disp.Framebuffer() == nil {
		return nil, errors.New("app: no framebuffer")
	}

	a := &App{
		ctx:    ctx,
		ring:   opts.Log,
		store:  opts.Store,
		fb:     disp.Framebuffer(),
		reload: make(chan *config.Config, 1),
		url:    opts.URLOverride,
	}
	if a.ring == nil {
		a.ring = console.NewLog(128)
	}
	if a.store == nil {
		a.store = &snapshot.Store{}
	}
	a.log = opts.Logger
	if a.log == nil {
		level := opts.Level
		if level == nil {
			level = slog.LevelInfo
		}
		primary := slog.NewTextHandler(hal.LogWriter(h.Logger()), &slog.HandlerOptions{Level: level})
		a.log = slog.New(console.NewHandler(primary, a.ring, level))
	}
	if in := h.Input(); in != nil {
		if kb := in.Keyboard(); kb != nil {
			a.keys = kb.Events()
		}
	}

	if err := a.apply(opts.Config); err != nil {
		return nil, err
	}

	if url := opts.Config.Stream.URL; url != "" {
		c, err := stream.NewClient(a.store, stream.Options{
			URL:         url,
			ReadTimeout: opts.Config.Stream.ReadTimeout(),
			RetryDelay:  opts.Config.Stream.RetryDelay(),
			HTTPClient:  opts.HTTPClient,
			Logger:      a.log,
		})
		if err != nil {
			return nil, err
		}
		a.client = c
		go c.Run(ctx)
	}
	if opts.ConfigPath != "" {
		go func() {
			if err := config.Watch(ctx, opts.ConfigPath, a.log, a.offer); err != nil {
				a.log.Warn("config watch stopped", "err", err)
			}
		}()
	}

	a.log.Info("dashboard ready", "pages", a.comp.Len(), "stream", opts.Config.Stream.URL != "")
	return a, nil
}

// apply builds fresh pages for cfg. On failure the current pages stay.
func (a *App) apply(cfg *config.Config) error {
	needle := a.needle
	if a.cfg == nil || cfg.Assets.Needle != a.cfg.Assets.Needle {
		needle = nil
		if path := cfg.Assets.Needle; path != "" {
			img, err := gfx.LoadPNG(path)
			if err != nil {
				return err
			}
			needle = img
		}
	}

	reg, err := channel.NewDefaultRegistry(cfg.Hardware.Counts(), cfg.Overrides())
	if err != nil {
		return fmt.Errorf("channels: %w", err)
	}
	newConsole := func(w, h int) page.Binding {
		return console.NewView(a.ring, a.streamStats, w, h)
	}
	pages, err := page.Build(cfg, reg, page.Assets{Needle: needle, Console: newConsole})
	if err != nil {
		return err
	}
	comp, err := page.NewCompositor(a.fb, pages, a.log)
	if err != nil {
		return err
	}
	if a.comp != nil {
		comp.Show(a.comp.Current())
		if a.cfg.Stream.URL != cfg.Stream.URL {
			a.log.Warn("stream url change needs a restart", "url", cfg.Stream.URL)
		}
	}
	a.cfg, a.needle, a.comp = cfg, needle, comp
	return nil
}

// offer hands cfg to the step, replacing any reload not yet applied.
func (a *App) offer(cfg *config.Config) {
	if a.url != "" {
		cfg.Stream.URL = a.url
	}
	for {
		select {
		case a.reload <- cfg:
			return
		default:
		}
		select {
		case <-a.reload:
		default:
		}
	}
}

func (a *App) streamStats() stream.Stats {
	if a.client == nil {
		return stream.Stats{}
	}
	return a.client.Stats()
}

// Step runs one frame: pending reload, key input, then a render when a newer
// snapshot has been published. Older snapshots that were never rendered are
// skipped.
func (a *App) Step() error {
	if a.ctx.Err() != nil {
		return hal.ErrQuit
	}
	a.frames++

	select {
	case cfg := <-a.reload:
		if err := a.apply(cfg); err != nil {
			a.log.Warn("config reload failed", "err", err)
		}
	default:
	}

	if err := a.handleKeys(); err != nil {
		return err
	}

	snap := a.store.Current()
	if (snap != nil && snap.Seq != a.lastSeq) || a.comp.NeedsFull() {
		if err := a.comp.Render(snap, a.frames); err != nil {
			return err
		}
		if snap != nil {
			a.lastSeq = snap.Seq
		}
		a.frames = 0
		return nil
	}
	return a.comp.Refresh(snap)
}

func (a *App) handleKeys() error {
	for {
		select {
		case ev := <-a.keys:
			if !ev.Press {
				continue
			}
			switch ev.Code {
			case hal.KeyEscape:
				return hal.ErrQuit
			case hal.KeyRight, hal.KeyDown, hal.KeyTab:
				a.comp.Next()
			case hal.KeyLeft, hal.KeyUp:
				a.comp.Prev()
			case hal.KeyHome:
				a.comp.Show(0)
			case hal.KeyEnd:
				a.comp.Show(a.comp.Len() - 1)
			default:
				switch r := ev.Rune; {
				case r == 'q':
					return hal.ErrQuit
				case r >= '1' && r <= '9':
					a.comp.Show(int(r - '1'))
				}
			}
		default:
			return nil
		}
	}
}

// Compositor exposes the current page set, mainly for tests and diagnostics.
func (a *App) Compositor() *page.Compositor { return a.comp }

// Store is the snapshot store the stream publishes into.
func (a *App) Store() *snapshot.Store { return a.store }
