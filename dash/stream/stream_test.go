package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hwdash/dash/snapshot"
)

const sample = "Page1|{|}cpu_util|cpu_util 42{|}gpu_temp|gpu_temp 61{|}"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScannerFraming(t *testing.T) {
	input := ": keepalive\n" +
		"event: update\ndata: first\ndata: second\n\n" +
		"\n\n" +
		"data:\n\n" +
		"retry: 750\nid: 7\nfoo: bar\ndata: last"
	sc := NewScanner(strings.NewReader(input))

	if !sc.Next() {
		t.Fatal("expected first event")
	}
	if ev := sc.Event(); ev.Type != "update" || ev.Data != "first\nsecond" {
		t.Fatalf("event=%+v", ev)
	}
	if !sc.Next() {
		t.Fatal("expected empty-data event")
	}
	if ev := sc.Event(); ev.Data != "" || ev.Type != "" {
		t.Fatalf("event type must reset between events: %+v", ev)
	}
	if !sc.Next() {
		t.Fatal("expected final event without trailing blank line")
	}
	if ev := sc.Event(); ev.Data != "last" || ev.ID != "7" {
		t.Fatalf("event=%+v", ev)
	}
	if sc.Retry() != 750 {
		t.Fatalf("retry=%d", sc.Retry())
	}
	if sc.Next() {
		t.Fatal("expected end of stream")
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestScannerReadError(t *testing.T) {
	sc := NewScanner(failingReader{})
	if sc.Next() {
		t.Fatal("expected no event")
	}
	if sc.Err() == nil {
		t.Fatal("expected read error")
	}
}

func newClient(t *testing.T, url string, opts Options) (*Client, *snapshot.Store) {
	t.Helper()
	store := &snapshot.Store{}
	opts.URL = url
	opts.Logger = quietLogger()
	c, err := NewClient(store, opts)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, store
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestClientPublishesAndCounts(t *testing.T) {
	var ua, accept atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.UserAgent())
		accept.Store(r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: \n\n")
		fmt.Fprint(w, "data: not a telemetry message\n\n")
		fmt.Fprint(w, "data: Page1|{|}bad{|}fps|fps 144{|}\n\n")
		fmt.Fprintf(w, "data: %s\n\n", sample)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, store := newClient(t, srv.URL, Options{ReadTimeout: 2 * time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	waitFor(t, "snapshots", func() bool { return c.Stats().Snapshots == 2 })
	st := c.Stats()
	if st.Events != 4 || st.Empty != 1 || st.Malformed != 1 || st.Rejected != 1 {
		t.Fatalf("stats=%+v", st)
	}
	if !st.Connected {
		t.Fatal("expected connected state")
	}
	snap := store.Current()
	if v, ok := snap.Lookup("gpu_temp"); !ok || v != "61" {
		t.Fatalf("gpu_temp=%q ok=%v", v, ok)
	}
	if !strings.HasPrefix(ua.Load().(string), "hwdash/") {
		t.Fatalf("user agent=%q", ua.Load())
	}
	if accept.Load().(string) != "text/event-stream" {
		t.Fatalf("accept=%q", accept.Load())
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
}

func TestClientIdleTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: %s\n\n", sample)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, store := newClient(t, srv.URL, Options{ReadTimeout: 150 * time.Millisecond})
	start := time.Now()
	err := c.stream(context.Background())
	if !errors.Is(err, ErrConnectionInterrupted) {
		t.Fatalf("err=%v, want ErrConnectionInterrupted", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Fatal("idle timeout did not bound the read")
	}
	if store.Current() == nil {
		t.Fatal("snapshot before the stall should be kept")
	}
}

func TestClientReconnects(t *testing.T) {
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := conns.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: %s\n\n", strings.Replace(sample, "42", fmt.Sprint(40+n), 1))
		// first connection ends right away
	}))
	defer srv.Close()

	c, store := newClient(t, srv.URL, Options{ReadTimeout: time.Second, RetryDelay: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	waitFor(t, "reconnect", func() bool { return conns.Load() >= 2 && c.Stats().Reconnects >= 1 })
	st := c.Stats()
	if !strings.Contains(st.LastError, ErrConnectionInterrupted.Error()) {
		t.Fatalf("last error=%q", st.LastError)
	}
	waitFor(t, "second snapshot", func() bool {
		v, _ := store.Current().Lookup("cpu_util")
		return v != "" && v != "41"
	})
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
}

func TestClientBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := newClient(t, srv.URL, Options{})
	err := c.stream(context.Background())
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("err=%v", err)
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient(&snapshot.Store{}, Options{}); err == nil {
		t.Fatal("expected error without url")
	}
}
