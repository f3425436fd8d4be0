package hal

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Ticks uint64
	// PNGPath, when set, receives the final framebuffer contents.
	PNGPath string
	// LogOutput overrides stdout for the host logger.
	LogOutput io.Writer
}

// RunHeadless runs the dashboard without opening a window.
func RunHeadless(ctx context.Context, opts Options, newApp func(HAL) (func() error, error), cfg HeadlessConfig) error {
	out := cfg.LogOutput
	if out == nil {
		out = os.Stdout
	}
	h := newHost(opts, out)
	step, err := newApp(h)
	if err != nil {
		return err
	}

	d := time.Second / time.Duration(h.opts.TPS)
	if d <= 0 {
		return fmt.Errorf("invalid headless tps: %d", h.opts.TPS)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	err = runTicks(ctx, t.C, step, cfg.Ticks)
	if cfg.PNGPath != "" {
		if werr := writePNG(cfg.PNGPath, h.fb); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

func runTicks(ctx context.Context, ticks <-chan time.Time, step func() error, limit uint64) error {
	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			if step != nil {
				if err := step(); err != nil {
					if errors.Is(err, ErrQuit) {
						return nil
					}
					return err
				}
			}
			tick++
			if limit > 0 && tick >= limit {
				return nil
			}
		}
	}
}

func writePNG(path string, fb Framebuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, Image(fb)); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
