// Package stream connects to the telemetry event stream and publishes every
// decoded message into a snapshot store.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"hwdash/dash/proto"
	"hwdash/dash/snapshot"
	"hwdash/internal/buildinfo"
)

// ErrConnectionInterrupted means the stream stopped delivering: no bytes for
// the read timeout, a closed connection or a transport failure.
var ErrConnectionInterrupted = errors.New("connection interrupted")

const (
	DefaultReadTimeout = 5 * time.Second
	DefaultRetryDelay  = 2 * time.Second
)

// Options configures a Client.
type Options struct {
	URL         string
	ReadTimeout time.Duration
	RetryDelay  time.Duration
	HTTPClient  *http.Client
	Logger      *slog.Logger
	// Now stamps published snapshots; time.Now when nil.
	Now func() time.Time
}

// Stats is a point-in-time copy of the client counters.
type Stats struct {
	Events     uint64
	Empty      uint64
	Malformed  uint64
	Rejected   uint64
	Snapshots  uint64
	Reconnects uint64
	Connected  bool
	LastError  string
	LastEvent  time.Time
}

// Client reads the stream until its context ends, reconnecting after
// interruptions. The store keeps the last snapshot while disconnected.
type Client struct {
	opts  Options
	store *snapshot.Store
	log   *slog.Logger

	events     atomic.Uint64
	empty      atomic.Uint64
	malformed  atomic.Uint64
	rejected   atomic.Uint64
	snapshots  atomic.Uint64
	reconnects atomic.Uint64
	connected  atomic.Bool
	retryHint  atomic.Int64

	mu        sync.Mutex
	lastErr   string
	lastEvent time.Time
}

func NewClient(store *snapshot.Store, opts Options) (*Client, error) {
	if store == nil {
		return nil, errors.New("stream: nil store")
	}
	if opts.URL == "" {
		return nil, errors.New("stream: url is required")
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{opts: opts, store: store, log: log.With("component", "stream")}, nil
}

// Run connects and reconnects until ctx is cancelled. It returns nil on
// cancellation; other errors are reported through Stats and the log.
func (c *Client) Run(ctx context.Context) error {
	c.log.Info("connecting", "url", c.opts.URL)
	for {
		err := c.stream(ctx)
		if ctx.Err() != nil {
			return nil
		}
		c.setErr(err)
		c.reconnects.Add(1)

		delay := c.retryDelay()
		c.log.Warn("stream interrupted", "err", err, "retry_in", delay)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

func (c *Client) retryDelay() time.Duration {
	if ms := c.retryHint.Load(); ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return c.opts.RetryDelay
}

// stream runs one connection to completion.
func (c *Client) stream(ctx context.Context) error {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var idle atomic.Bool
	timer := time.AfterFunc(c.opts.ReadTimeout, func() {
		idle.Store(true)
		cancel()
	})
	defer timer.Stop()

	interrupted := func(err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if idle.Load() {
			return fmt.Errorf("%w: no data for %s", ErrConnectionInterrupted, c.opts.ReadTimeout)
		}
		if err == nil {
			return fmt.Errorf("%w: closed by server", ErrConnectionInterrupted)
		}
		return fmt.Errorf("%w: %v", ErrConnectionInterrupted, err)
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.opts.URL, nil)
	if err != nil {
		return fmt.Errorf("stream: build request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return interrupted(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream: unexpected status %s", resp.Status)
	}

	c.connected.Store(true)
	defer c.connected.Store(false)
	c.log.Info("connected", "url", c.opts.URL)

	sc := NewScanner(&idleReader{r: resp.Body, timer: timer, timeout: c.opts.ReadTimeout})
	for sc.Next() {
		if ms := sc.Retry(); ms > 0 {
			c.retryHint.Store(int64(ms))
		}
		c.handle(sc.Event())
	}
	return interrupted(sc.Err())
}

func (c *Client) handle(ev Event) {
	c.events.Add(1)
	now := c.opts.Now()
	c.mu.Lock()
	c.lastEvent = now
	c.mu.Unlock()

	msg, err := proto.Decode(ev.Data)
	switch {
	case errors.Is(err, proto.ErrEmptyMessage):
		c.empty.Add(1)
		return
	case err != nil:
		c.malformed.Add(1)
		c.log.Debug("discarding malformed message", "err", err)
		return
	}
	if n := len(msg.Rejects); n > 0 {
		c.rejected.Add(uint64(n))
		c.log.Debug("dropped unparsable segments", "count", n, "first", msg.Rejects[0])
	}
	c.store.Publish(msg, now)
	c.snapshots.Add(1)
}

func (c *Client) setErr(err error) {
	c.mu.Lock()
	c.lastErr = err.Error()
	c.mu.Unlock()
}

// Stats returns a copy of the counters.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Events:     c.events.Load(),
		Empty:      c.empty.Load(),
		Malformed:  c.malformed.Load(),
		Rejected:   c.rejected.Load(),
		Snapshots:  c.snapshots.Load(),
		Reconnects: c.reconnects.Load(),
		Connected:  c.connected.Load(),
		LastError:  c.lastErr,
		LastEvent:  c.lastEvent,
	}
}

// idleReader pushes the idle deadline forward whenever bytes arrive.
type idleReader struct {
	r       io.Reader
	timer   *time.Timer
	timeout time.Duration
}

func (ir *idleReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if n > 0 {
		ir.timer.Reset(ir.timeout)
	}
	return n, err
}
