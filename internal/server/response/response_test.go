package response

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"testing"

	"github.com/yndnr/rest0-go/internal/host"
)

// recordingSink captures what an action writes.
type recordingSink struct {
	code        int
	description string
	header      http.Header
	body        bytes.Buffer
	closed      bool
}

func newRecordingSink() *recordingSink {
	return &recordingSink{code: http.StatusOK, header: make(http.Header)}
}

func (s *recordingSink) SetStatus(code int, description string) {
	s.code, s.description = code, description
}

func (s *recordingSink) Header() http.Header { return s.header }

func (s *recordingSink) Write(p []byte) (int, error) { return s.body.Write(p) }

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}

func run(t *testing.T, action host.ResponseAction) (*recordingSink, error) {
	t.Helper()
	sink := newRecordingSink()
	err := action.Execute(context.Background(), &host.ResponseContext{
		RequestContext: &host.RequestContext{},
		Response:       sink,
	})
	return sink, err
}

func TestStatusResponse(t *testing.T) {
	tests := []struct {
		name   string
		action StatusResponse
		code   int
		desc   string
	}{
		{"plain", Status(http.StatusNoContent), http.StatusNoContent, ""},
		{"described", StatusResponse{Code: http.StatusServiceUnavailable, Description: "Config Not Loaded"}, 503, "Config Not Loaded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := run(t, tt.action)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if sink.code != tt.code || sink.description != tt.desc {
				t.Errorf("status = %d %q, want %d %q", sink.code, sink.description, tt.code, tt.desc)
			}
			if sink.body.Len() != 0 {
				t.Errorf("body = %q, want empty", sink.body.String())
			}
			if sink.closed {
				t.Error("actions must not close the sink")
			}
		})
	}
}

func TestRedirectResponse(t *testing.T) {
	tests := []struct {
		name   string
		action RedirectResponse
		code   int
	}{
		{"default", Redirect("/foo"), http.StatusFound},
		{"permanent", RedirectResponse{Location: "/bar", Code: http.StatusMovedPermanently}, http.StatusMovedPermanently},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := run(t, tt.action)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if sink.code != tt.code {
				t.Errorf("code = %d, want %d", sink.code, tt.code)
			}
			if got := sink.header.Get("Location"); got != tt.action.Location {
				t.Errorf("Location = %q, want %q", got, tt.action.Location)
			}
		})
	}
}

func TestJSONResponse(t *testing.T) {
	sink, err := run(t, JSON(map[string]any{
		"hash":   "9f89c740ceb46d7418c924a78ac57941d5e96520",
		"config": json.RawMessage(`{"a":1}`),
		"html":   "<b>&</b>",
	}))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if sink.code != http.StatusOK {
		t.Errorf("code = %d, want 200", sink.code)
	}
	if got := sink.header.Get("Content-Type"); got != ContentTypeJSON {
		t.Errorf("Content-Type = %q", got)
	}
	want := `{"config":{"a":1},"hash":"9f89c740ceb46d7418c924a78ac57941d5e96520","html":"<b>&</b>"}`
	if got := sink.body.String(); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
	if got := sink.header.Get("Content-Length"); got != strconv.Itoa(len(want)) {
		t.Errorf("Content-Length = %s, want %d", got, len(want))
	}
	if bytes.HasPrefix(sink.body.Bytes(), []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("body starts with a BOM")
	}
}

func TestJSONResponse_EncodeError(t *testing.T) {
	sink, err := run(t, JSON(math.Inf(1)))
	if err == nil {
		t.Fatal("Execute() error = nil, want encode error")
	}
	if sink.body.Len() != 0 || sink.header.Get("Content-Type") != "" {
		t.Error("nothing should be written when encoding fails")
	}
}
