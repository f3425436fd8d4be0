// hwdash renders a hardware telemetry event stream as a paged dashboard,
// either in a desktop window or headless.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"hwdash/app"
	"hwdash/dash/config"
	"hwdash/hal"
	"hwdash/internal/buildinfo"
)

// usageError exits with status 2 after printing the flag help.
type usageError struct {
	msg string
	fs  *pflag.FlagSet
}

func (e *usageError) Error() string { return e.msg }
func (e *usageError) ExitCode() int { return 2 }

func main() {
	if err := run(os.Args[1:]); err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", color.New(color.FgYellow).Sprint("usage"), usage.msg)
			printHelp(usage.fs)
			os.Exit(usage.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), err)
		os.Exit(1)
	}
}

type flags struct {
	url        string
	configPath string
	headless   bool
	ticks      uint64
	pngPath    string
	logLevel   string
	version    bool
}

func run(args []string) error {
	var f flags
	fs := pflag.NewFlagSet("hwdash", pflag.ContinueOnError)
	fs.StringVar(&f.url, "url", "", "telemetry event stream URL (overrides stream.url)")
	fs.StringVar(&f.configPath, "config", "", "YAML layout and channel config, reloaded on change")
	fs.BoolVar(&f.headless, "headless", false, "run without a window")
	fs.Uint64Var(&f.ticks, "ticks", 0, "stop after N frames in headless mode (0 = run until interrupted)")
	fs.StringVar(&f.pngPath, "png", "", "write the final headless frame to this PNG file")
	fs.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	fs.BoolP("help", "h", false, "show help")
	// Errors are reported once by main.
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	usage := func(format string, a ...any) error {
		return &usageError{msg: fmt.Sprintf(format, a...), fs: fs}
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(fs)
			return nil
		}
		return usage("%v", err)
	}
	if help, _ := fs.GetBool("help"); help {
		printHelp(fs)
		return nil
	}
	if f.version {
		fmt.Println(buildinfo.String("hwdash"))
		return nil
	}
	if rest := fs.Args(); len(rest) > 0 {
		return usage("unexpected argument: %s", rest[0])
	}

	var level slog.LevelVar
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return usage("bad --log-level %q", f.logLevel)
	}

	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if f.url != "" {
		cfg.Stream.URL = f.url
	}
	if cfg.Stream.URL == "" {
		return usage("--url is required")
	}
	if err := config.ValidateURL(cfg.Stream.URL); err != nil {
		return usage("bad stream url %q: %v", cfg.Stream.URL, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := hal.Options{
		Width:  cfg.Display.Width,
		Height: cfg.Display.Height,
		Scale:  cfg.Display.Scale,
		TPS:    cfg.Display.TPS,
		Title:  "hwdash " + buildinfo.Short(),
	}
	newApp := func(h hal.HAL) (func() error, error) {
		a, err := app.New(ctx, h, app.Options{
			Config:      cfg,
			ConfigPath:  f.configPath,
			URLOverride: f.url,
			Level:       &level,
		})
		if err != nil {
			return nil, err
		}
		return a.Step, nil
	}

	var err error
	if f.headless {
		err = hal.RunHeadless(ctx, opts, newApp, hal.HeadlessConfig{
			Ticks:   f.ticks,
			PNGPath: f.pngPath,
		})
	} else {
		err = hal.RunWindow(opts, newApp)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printHelp(fs *pflag.FlagSet) {
	fmt.Fprint(os.Stderr, strings.TrimLeft(`
hwdash renders a hardware telemetry event stream as a paged dashboard.

Usage:
  hwdash --url <stream-url> [flags]

Keys:
  Left/Right, Up/Down, Tab   previous/next page
  Home/End, 1-9              jump to a page
  Escape, q                  quit

`, "\n"))
	fmt.Fprintf(os.Stderr, "Flags:\n%s", fs.FlagUsages())
}
