// Package snapshot holds the latest decoded telemetry and typed access to it.
package snapshot

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"hwdash/dash/channel"
	"hwdash/dash/proto"
)

var (
	ErrMissingField = errors.New("missing field")
	// ErrInvalidField marks a present field that is not a finite number,
	// e.g. "N/A" from an unavailable sensor.
	ErrInvalidField = errors.New("invalid field")
)

// MissingFieldError names the absent key.
type MissingFieldError struct {
	Key string
}

func (e *MissingFieldError) Error() string { return "missing field " + e.Key }

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// Status tells whether a Reading carries a value.
type Status uint8

const (
	Present Status = iota
	Missing
	Invalid
)

func (s Status) String() string {
	switch s {
	case Present:
		return "present"
	case Missing:
		return "missing"
	case Invalid:
		return "invalid"
	default:
		return "?"
	}
}

// Reading is the result of a numeric lookup.
type Reading struct {
	Value  float64
	Status Status
	Key    string
	Raw    string
}

// Ok reports whether Value is usable.
func (r Reading) Ok() bool { return r.Status == Present }

// Or returns Value, or fallback when the reading is not present.
func (r Reading) Or(fallback float64) float64 {
	if r.Status != Present {
		return fallback
	}
	return r.Value
}

// Err returns nil for a present reading, a *MissingFieldError for a missing
// one and an error wrapping ErrInvalidField for an invalid one.
func (r Reading) Err() error {
	switch r.Status {
	case Present:
		return nil
	case Missing:
		return &MissingFieldError{Key: r.Key}
	default:
		return fmt.Errorf("%w %s: %q", ErrInvalidField, r.Key, r.Raw)
	}
}

// Snapshot is one complete set of decoded values. It is never modified after
// Publish. A nil *Snapshot reads as empty.
type Snapshot struct {
	Seq      uint64
	Page     string
	Received time.Time
	Rejected int

	fields map[string]string
}

// Lookup returns the raw value for key.
func (s *Snapshot) Lookup(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.fields[key]
	return v, ok
}

// Len reports the number of fields.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Get returns the raw field for d, or fallback when it is absent.
func (s *Snapshot) Get(d *channel.Descriptor, fallback string) string {
	if v, ok := s.Lookup(d.Key); ok {
		return v
	}
	return fallback
}

// Numeric parses the field for d.
func (s *Snapshot) Numeric(d *channel.Descriptor) Reading {
	raw, ok := s.Lookup(d.Key)
	if !ok {
		return Reading{Status: Missing, Key: d.Key}
	}
	v, err := parseNumber(raw)
	if err != nil {
		return Reading{Status: Invalid, Key: d.Key, Raw: raw}
	}
	return Reading{Value: v, Status: Present, Key: d.Key, Raw: raw}
}

// Indexed reads a channel family. Absent members come back as Missing so the
// caller can render them inactive.
func (s *Snapshot) Indexed(ds []*channel.Descriptor) []Reading {
	out := make([]Reading, len(ds))
	for i, d := range ds {
		out[i] = s.Numeric(d)
	}
	return out
}

// Age is the time since the snapshot was received.
func (s *Snapshot) Age(now time.Time) time.Duration {
	if s == nil || s.Received.IsZero() {
		return 0
	}
	return now.Sub(s.Received)
}

// errNotFinite rejects the NaN and Inf spellings ParseFloat accepts.
var errNotFinite = errors.New("not a finite number")

func parseNumber(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "%")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// Store hands the latest snapshot from the stream goroutine to the renderer.
// Publish replaces the whole snapshot in one pointer swap.
type Store struct {
	cur atomic.Pointer[Snapshot]
	seq atomic.Uint64
}

// Publish stores msg as the current snapshot and returns it.
func (st *Store) Publish(msg *proto.Message, at time.Time) *Snapshot {
	fields := make(map[string]string, len(msg.Fields))
	for k, v := range msg.Fields {
		fields[k] = v
	}
	snap := &Snapshot{
		Seq:      st.seq.Add(1),
		Page:     msg.Page,
		Received: at,
		Rejected: len(msg.Rejects),
		fields:   fields,
	}
	st.cur.Store(snap)
	return snap
}

// Current returns the latest snapshot, or nil before the first Publish.
func (st *Store) Current() *Snapshot {
	return st.cur.Load()
}

// FromFields builds an unpublished snapshot, mainly for tests and replays.
func FromFields(fields map[string]string) *Snapshot {
	cp := make(map[string]string, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return &Snapshot{fields: cp}
}
