package host

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/yndnr/rest0-go/internal/core/domain"
)

func TestParsePrefix(t *testing.T) {
	tests := []struct {
		raw     string
		want    Prefix
		wantErr bool
	}{
		{raw: "http://+:8080/", want: Prefix{Scheme: "http", Port: "8080", Path: "/"}},
		{raw: "https://*:8443/", want: Prefix{Scheme: "https", Port: "8443", Path: "/"}},
		{raw: "http://LocalHost:8080/api/", want: Prefix{Scheme: "http", Host: "localhost", Port: "8080", Path: "/api/"}},
		{raw: "HTTP://example.test/", want: Prefix{Scheme: "http", Host: "example.test", Port: "80", Path: "/"}},
		{raw: "https://example.test/", want: Prefix{Scheme: "https", Host: "example.test", Port: "443", Path: "/"}},
		{raw: "http://[::1]:9000/", want: Prefix{Scheme: "http", Host: "::1", Port: "9000", Path: "/"}},
		{raw: "http://+:8080", wantErr: true},
		{raw: "http://+:8080/api", wantErr: true},
		{raw: "ftp://+:21/", wantErr: true},
		{raw: "+:8080/", wantErr: true},
		{raw: "http:///", wantErr: true},
		{raw: "http://host:port:x/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePrefix(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidPrefix) {
					t.Fatalf("ParsePrefix() error = %v, want ErrInvalidPrefix", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrefix() error = %v", err)
			}
			tt.want.Raw = tt.raw
			if got != tt.want {
				t.Errorf("ParsePrefix() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func mustPrefixes(t *testing.T, raws ...string) []Prefix {
	t.Helper()
	var out []Prefix
	for _, raw := range raws {
		p, err := ParsePrefix(raw)
		if err != nil {
			t.Fatalf("ParsePrefix(%q) error = %v", raw, err)
		}
		out = append(out, p)
	}
	return out
}

func TestGroupBindings(t *testing.T) {
	tests := []struct {
		name      string
		prefixes  []string
		wantAddrs []string
	}{
		{"single wildcard", []string{"http://+:8080/"}, []string{":8080"}},
		{"single host", []string{"http://localhost:8080/"}, []string{"localhost:8080"}},
		{"host and wildcard share a port", []string{"http://localhost:8080/a/", "http://*:8080/b/"}, []string{":8080"}},
		{"two hosts share a port", []string{"http://a.test:8080/", "http://b.test:8080/"}, []string{":8080"}},
		{"two ports", []string{"http://+:8080/", "https://+:8443/"}, []string{":8080", ":8443"}},
		{"duplicates collapse", []string{"http://+:8080/", "http://*:8080/"}, []string{":8080"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs, err := groupBindings(mustPrefixes(t, tt.prefixes...))
			if err != nil {
				t.Fatalf("groupBindings() error = %v", err)
			}
			if len(bs) != len(tt.wantAddrs) {
				t.Fatalf("got %d bindings, want %d", len(bs), len(tt.wantAddrs))
			}
			for i, b := range bs {
				if b.addr != tt.wantAddrs[i] {
					t.Errorf("binding[%d].addr = %q, want %q", i, b.addr, tt.wantAddrs[i])
				}
			}
		})
	}
}

func TestGroupBindings_MixedSchemes(t *testing.T) {
	_, err := groupBindings(mustPrefixes(t, "http://+:8080/", "https://+:8080/"))
	if !errors.Is(err, domain.ErrInvalidPrefix) {
		t.Errorf("groupBindings() error = %v, want ErrInvalidPrefix", err)
	}
}

func TestBindingMatch(t *testing.T) {
	bs, err := groupBindings(mustPrefixes(t,
		"http://+:8080/",
		"http://+:8080/api/",
		"http://admin.test:8080/",
	))
	if err != nil {
		t.Fatalf("groupBindings() error = %v", err)
	}
	b := bs[0]

	tests := []struct {
		target string
		host   string
		want   string
	}{
		{"/", "example.test:8080", "http://+:8080/"},
		{"/api/users", "example.test:8080", "http://+:8080/api/"},
		{"/api/users", "admin.test:8080", "http://admin.test:8080/"},
		{"/api", "example.test", "http://+:8080/"},
	}
	for _, tt := range tests {
		t.Run(tt.host+tt.target, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			r.Host = tt.host
			got, ok := b.match(r)
			if !ok {
				t.Fatal("match() = false")
			}
			if got.Raw != tt.want {
				t.Errorf("match() = %s, want %s", got.Raw, tt.want)
			}
		})
	}
}

func TestBindingMatch_NoMatch(t *testing.T) {
	bs, err := groupBindings(mustPrefixes(t, "http://+:8080/api/", "http://only.test:8080/"))
	if err != nil {
		t.Fatalf("groupBindings() error = %v", err)
	}

	r := httptest.NewRequest("GET", "/other", nil)
	r.Host = "example.test"
	if p, ok := bs[0].match(r); ok {
		t.Errorf("match() = %s, want no match", p.Raw)
	}
}
