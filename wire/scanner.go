package wire

import (
	"fmt"
	"strings"
)

// ParseState names where the scanner is within one exchange.
type ParseState int

const (
	// StateFirstLine: accumulating the request (or status) line.
	StateFirstLine ParseState = iota
	// StateHeaders: discarding header lines, watching for the blank line.
	StateHeaders
	// StateBody: everything after the blank line is retained.
	StateBody
)

// Scanner consumes an exchange one byte at a time into a fixed buffer.
// Carriage returns are stripped before any newline logic runs, so the blank
// line between headers and body is simply two consecutive newlines. If the
// accumulation index would pass the buffer capacity the buffer is silently
// reset and accumulation restarts: partial data is dropped rather than ever
// writing out of bounds.
type Scanner struct {
	state     ParseState
	buf       []byte
	n         int
	firstLine string
	lastWasNL bool
}

func NewScanner(capacity int) *Scanner {
	return &Scanner{buf: make([]byte, capacity)}
}

// Feed advances the state machine by one byte.
func (s *Scanner) Feed(b byte) {
	if b == '\r' {
		return
	}

	switch s.state {
	case StateFirstLine:
		if b == '\n' {
			s.firstLine = string(s.buf[:s.n])
			s.n = 0
			s.state = StateHeaders
			s.lastWasNL = true
			return
		}
		s.store(b)
	case StateHeaders:
		if b == '\n' {
			if s.lastWasNL {
				s.state = StateBody
				s.n = 0
			}
			s.lastWasNL = true
			return
		}
		s.lastWasNL = false
	case StateBody:
		s.store(b)
	}
}

func (s *Scanner) store(b byte) {
	if s.n >= len(s.buf) {
		// overflow: drop what we have and start over
		s.n = 0
	}
	s.buf[s.n] = b
	s.n++
}

func (s *Scanner) State() ParseState { return s.state }

// FirstLine returns the request or status line, once seen.
func (s *Scanner) FirstLine() string { return s.firstLine }

// Body returns whatever has accumulated past the header/body boundary,
// trimmed of trailing newlines.
func (s *Scanner) Body() string {
	if s.state != StateBody {
		return ""
	}
	return strings.TrimRight(string(s.buf[:s.n]), "\n")
}

// Reset returns the scanner to its initial state for the next exchange.
func (s *Scanner) Reset() {
	s.state = StateFirstLine
	s.n = 0
	s.firstLine = ""
	s.lastWasNL = false
}

// RequestPath extracts the path token from a request line such as
// "GET /pw/t/30 HTTP/1.1".
func RequestPath(line string) (string, error) {
	rest, ok := strings.CutPrefix(line, "GET /")
	if !ok {
		return "", fmt.Errorf("no GET marker in request line [%v]", line)
	}
	if i := strings.IndexByte(rest, ' '); i >= 0 {
		rest = rest[:i]
	}
	return rest, nil
}
