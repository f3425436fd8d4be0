package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// readCapture returns the non-empty lines of path.
func readCapture(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), "\r"); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%s: no events", path)
	}
	return lines, nil
}

// replayer writes each capture line as one event, paced by interval.
type replayer struct {
	lines    []string
	interval time.Duration
	loop     bool
	log      *slog.Logger
}

func (rp *replayer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	rp.log.Info("client connected", "remote", r.RemoteAddr, "agent", r.UserAgent())
	defer rp.log.Info("client gone", "remote", r.RemoteAddr)

	var tick <-chan time.Time
	if rp.interval > 0 {
		t := time.NewTicker(rp.interval)
		defer t.Stop()
		tick = t.C
	}
	for id := 0; ; id++ {
		i := id % len(rp.lines)
		if id > 0 && i == 0 && !rp.loop {
			return
		}
		if _, err := fmt.Fprintf(w, "id: %d\ndata: %s\n\n", id, rp.lines[i]); err != nil {
			return
		}
		flusher.Flush()

		if tick == nil {
			if r.Context().Err() != nil {
				return
			}
			continue
		}
		select {
		case <-r.Context().Done():
			return
		case <-tick:
		}
	}
}
