package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yndnr/rest0-go/internal/core/domain"
	"github.com/yndnr/rest0-go/internal/telemetry/logger"
	"github.com/yndnr/rest0-go/pkg/token"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(), mark("a"), mark("b"), mark("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := strings.Join(order, ","); got != "a,b,c" {
		t.Errorf("order = %s, want a,b,c", got)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		id := w.Header().Get("X-Request-ID")
		if len(id) != 26 {
			t.Errorf("X-Request-ID = %q, want a 26 character ULID", id)
		}
		if seen != id {
			t.Errorf("context request id = %q, want %q", seen, id)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "upstream-1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if got := w.Header().Get("X-Request-ID"); got != "upstream-1" {
			t.Errorf("X-Request-ID = %q, want upstream-1", got)
		}
		if seen != "upstream-1" {
			t.Errorf("context request id = %q", seen)
		}
	})
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2)(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("second client status = %d, want 200", w.Code)
	}
}

func TestRateLimit_ErrorBody(t *testing.T) {
	h := RateLimit(1)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Header().Get("Retry-After") != "1" || w.Header().Get("X-Error-Code") != "R0-SYS-4290" {
		t.Errorf("headers = %v", w.Header())
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["code"] != "R0-SYS-4290" {
		t.Errorf("body = %s (%v)", w.Body.String(), err)
	}
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if w.Header().Get("X-Error-Code") != "R0-SYS-5000" {
		t.Errorf("X-Error-Code = %q", w.Header().Get("X-Error-Code"))
	}
	if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), "boom") {
		t.Errorf("log = %s", buf.String())
	}
}

func TestAccessLog(t *testing.T) {
	tests := []struct {
		name  string
		code  int
		level string
	}{
		{"success", http.StatusOK, "DEBUG"},
		{"client error", http.StatusNotFound, "WARN"},
		{"server error", http.StatusServiceUnavailable, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}), RequestID(), AccessLog(log))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ready", nil))

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", buf.String(), err)
			}
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["status"] != float64(tt.code) || entry["path"] != "/ready" {
				t.Errorf("entry = %v", entry)
			}
			if id, _ := entry["request_id"].(string); id == "" {
				t.Error("request_id missing from access log")
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		header map[string]string
		want   string
	}{
		{"remote addr", "192.0.2.1:1234", nil, "192.0.2.1"},
		{"ipv6", "[::1]:8080", nil, "::1"},
		{"no port", "192.0.2.9", nil, "192.0.2.9"},
		{"forwarded", "192.0.2.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "203.0.113.5"},
		{"real ip", "192.0.2.1:1234", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimit_PerClient(t *testing.T) {
	h := RateLimit(1)(okHandler())

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":5000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("first request from %s: status = %d, want 200", ip, w.Code)
		}
	}
}

func TestBearerAuth(t *testing.T) {
	tok, err := token.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	h := BearerAuth(token.Hash(tok), "/health")(okHandler())

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"valid token", "/metrics", "Bearer " + tok, http.StatusOK},
		{"wrong token", "/metrics", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "/metrics", "", http.StatusUnauthorized},
		{"basic scheme", "/metrics", "Basic " + tok, http.StatusUnauthorized},
		{"open path", "/health", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized {
				if got := w.Header().Get("X-Error-Code"); got != domain.ErrUnauthorized.Code {
					t.Errorf("X-Error-Code = %q", got)
				}
				if w.Header().Get("WWW-Authenticate") == "" {
					t.Error("WWW-Authenticate header missing")
				}
			}
		})
	}
}
