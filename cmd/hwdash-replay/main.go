// hwdash-replay serves a captured telemetry file as an event stream so the
// dashboard can run without the hardware monitor.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
)

func main() {
	var (
		file     string
		addr     string
		interval time.Duration
		loop     bool
	)
	fs := pflag.NewFlagSet("hwdash-replay", pflag.ExitOnError)
	fs.StringVar(&file, "file", "", "capture file, one payload per line")
	fs.StringVar(&addr, "addr", ":8085", "listen address")
	fs.DurationVar(&interval, "interval", 500*time.Millisecond, "delay between events")
	fs.BoolVar(&loop, "loop", false, "restart from the first line at the end of the file")
	fs.Parse(os.Args[1:])

	if file == "" {
		fatalf("usage: hwdash-replay --file capture.txt [--addr :8085] [--interval 500ms] [--loop]")
	}
	lines, err := readCapture(file)
	if err != nil {
		fatalf("read capture: %v", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    addr,
		Handler: &replayer{lines: lines, interval: interval, loop: loop, log: log},
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	log.Info("serving capture", "file", file, "events", len(lines), "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatalf("serve: %v", err)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
