package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ResponseAction writes a complete response. The host calls Execute at most
// once per request and closes the sink afterwards.
type ResponseAction interface {
	Execute(ctx context.Context, rc *ResponseContext) error
}

// ResponseSink is the outgoing half of a connection.
//
// Status and headers may be changed until the first Write or Close; after
// that they are committed to the wire.
type ResponseSink interface {
	// SetStatus sets the status code. A non-empty description replaces the
	// standard reason phrase.
	SetStatus(code int, description string)
	Header() http.Header
	Write(p []byte) (int, error)
	Close() error
}

// ErrSinkClosed is returned when writing to a closed sink.
var ErrSinkClosed = errors.New("host: response already closed")

// connSink writes an HTTP/1.1 response directly to a connection. The
// connection is always closed after the response, so a body without
// Content-Length is delimited by the close.
type connSink struct {
	w      *bufio.Writer
	header http.Header
	now    func() time.Time

	code        int
	description string
	committed   bool
	closed      bool
	err         error
}

func newConnSink(w *bufio.Writer) *connSink {
	return &connSink{
		w:      w,
		header: make(http.Header),
		now:    time.Now,
		code:   http.StatusOK,
	}
}

func (s *connSink) SetStatus(code int, description string) {
	if s.committed {
		return
	}
	s.code = code
	s.description = description
}

func (s *connSink) Header() http.Header {
	return s.header
}

func (s *connSink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrSinkClosed
	}
	if err := s.commit(); err != nil {
		return 0, err
	}
	n, err := s.w.Write(p)
	if err != nil {
		s.err = err
	}
	return n, err
}

func (s *connSink) Close() error {
	if s.closed {
		return s.err
	}
	if !s.committed && s.header.Get("Content-Length") == "" {
		s.header.Set("Content-Length", "0")
	}
	err := s.commit()
	s.closed = true
	if err != nil {
		return err
	}
	if err := s.w.Flush(); err != nil {
		s.err = err
	}
	return s.err
}

// reset discards an uncommitted response so an error status can replace it.
func (s *connSink) reset() bool {
	if s.committed {
		return false
	}
	s.header = make(http.Header)
	s.code = http.StatusOK
	s.description = ""
	return true
}

func (s *connSink) commit() error {
	if s.committed {
		return s.err
	}
	s.committed = true

	reason := s.description
	if reason == "" {
		reason = http.StatusText(s.code)
	}
	if reason == "" {
		reason = "status code " + strconv.Itoa(s.code)
	}
	reason = strings.NewReplacer("\r", " ", "\n", " ").Replace(reason)

	s.header.Set("Connection", "close")
	if s.header.Get("Date") == "" {
		s.header.Set("Date", s.now().UTC().Format(http.TimeFormat))
	}

	if _, err := fmt.Fprintf(s.w, "HTTP/1.1 %03d %s\r\n", s.code, reason); err != nil {
		s.err = err
		return err
	}
	if err := s.header.Write(s.w); err != nil {
		s.err = err
		return err
	}
	if _, err := s.w.WriteString("\r\n"); err != nil {
		s.err = err
		return err
	}
	return nil
}
