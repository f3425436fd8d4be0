package stream

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Event is one server-sent event.
type Event struct {
	// Type is the "event:" field, empty for the default type.
	Type string
	// Data joins every "data:" line of the event with "\n".
	Data string
	ID   string
}

// Scanner splits an SSE body into events. Comment lines and unknown fields
// are ignored; a blank line ends an event.
//
//	sc := NewScanner(body)
//	for sc.Next() {
//		handle(sc.Event())
//	}
//	err := sc.Err()
type Scanner struct {
	r     *bufio.Reader
	cur   Event
	retry int
	err   error
}

func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, 16*1024)}
}

// Next reads up to the end of the next event. It returns false at end of
// stream or on a read error.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}
	var (
		ev      Event
		data    []string
		pending bool
	)
	emit := func() bool {
		ev.Data = strings.Join(data, "\n")
		s.cur = ev
		return true
	}

	for {
		line, err := s.r.ReadString('\n')
		if err != nil && line == "" {
			s.err = err
			if err == io.EOF && pending {
				return emit()
			}
			return false
		}
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if pending {
				return emit()
			}
			ev = Event{}
			continue
		}
		if line[0] == ':' {
			continue
		}

		field, value, found := strings.Cut(line, ":")
		if found {
			value = strings.TrimPrefix(value, " ")
		}
		switch field {
		case "data":
			data = append(data, value)
			pending = true
		case "event":
			ev.Type = value
		case "id":
			ev.ID = value
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
				s.retry = ms
			}
		}
	}
}

// Event returns the event read by the last successful Next.
func (s *Scanner) Event() Event { return s.cur }

// Retry is the last reconnect hint the server sent, in milliseconds, or 0.
func (s *Scanner) Retry() int { return s.retry }

// Err returns the read error that stopped the scanner, nil for a clean EOF.
func (s *Scanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}
