// Package proto decodes the field-delimited telemetry payload carried in each
// stream event.
//
// A payload is a run of segments joined by Delimiter:
//
//	Page0| {|}Simple1|cpu_util 6 {|}Simple2|cpu_temp 32 {|}
//
// The first segment names the page and must end in '|'. The last segment must
// be empty. Every segment in between is "<gauge tag>|<key> <value tokens...>".
package proto

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Delimiter separates segments within one payload.
	Delimiter = "{|}"
	// PageMarker must appear in the first segment.
	PageMarker = "Page"
)

var (
	ErrEmptyMessage      = errors.New("empty message")
	ErrMalformedMessage  = errors.New("malformed message")
	ErrUnparsableSegment = errors.New("unparsable segment")
)

// SegmentError describes one interior segment that was skipped.
type SegmentError struct {
	Index   int
	Segment string
	Reason  string
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d %q: %s", e.Index, e.Segment, e.Reason)
}

func (e *SegmentError) Unwrap() error { return ErrUnparsableSegment }

// Message is one decoded payload.
type Message struct {
	// Page is the page identifier without its trailing '|'.
	Page string
	// Fields holds every segment that decoded; later duplicates win.
	Fields map[string]string
	// Rejects lists skipped segments in payload order.
	Rejects []*SegmentError
}

// Decode parses one payload. It returns ErrEmptyMessage for a blank payload and
// an error wrapping ErrMalformedMessage when the page or trailing segment is
// wrong. Bad interior segments never fail the message; they end up in Rejects.
func Decode(raw string) (*Message, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyMessage
	}

	segments := strings.Split(raw, Delimiter)
	if len(segments) < 2 {
		return nil, fmt.Errorf("%w: missing delimiter %q", ErrMalformedMessage, Delimiter)
	}

	head := strings.TrimSpace(segments[0])
	if !strings.HasSuffix(head, "|") || !strings.Contains(head, PageMarker) {
		return nil, fmt.Errorf("%w: bad page segment %q", ErrMalformedMessage, head)
	}
	if tail := strings.TrimSpace(segments[len(segments)-1]); tail != "" {
		return nil, fmt.Errorf("%w: trailing segment %q not empty", ErrMalformedMessage, tail)
	}

	interior := segments[1 : len(segments)-1]
	msg := &Message{
		Page:   strings.TrimSuffix(head, "|"),
		Fields: make(map[string]string, len(interior)),
	}
	for i, seg := range interior {
		key, value, reason := decodeSegment(seg)
		if reason != "" {
			msg.Rejects = append(msg.Rejects, &SegmentError{Index: i + 1, Segment: seg, Reason: reason})
			continue
		}
		msg.Fields[key] = value
	}
	return msg, nil
}

func decodeSegment(seg string) (key, value, reason string) {
	parts := strings.Split(seg, "|")
	if len(parts) != 2 {
		return "", "", fmt.Sprintf("want 2 '|' parts, got %d", len(parts))
	}

	tokens := strings.Fields(parts[1])
	switch {
	case len(tokens) < 2:
		return "", "", "missing value"
	case len(tokens) == 2:
		key, value = tokens[0], tokens[1]
	default:
		// Some sources split display values on spaces ("1920 x 1080").
		key, value = tokens[0], strings.Join(tokens[1:], "")
	}
	if key == "" || value == "" {
		return "", "", "empty key or value"
	}
	return key, value, ""
}
