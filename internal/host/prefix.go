package host

import (
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"

	"github.com/yndnr/rest0-go/internal/core/domain"
)

// Prefix is a parsed listener prefix such as "http://+:8080/api/".
type Prefix struct {
	Raw    string
	Scheme string
	// Host is empty for the wildcards "+" and "*".
	Host string
	Port string
	Path string
}

// ParsePrefix parses and validates a listener prefix.
func ParsePrefix(raw string) (Prefix, error) {
	invalid := func(reason string) (Prefix, error) {
		return Prefix{}, domain.ErrInvalidPrefix.WithDetails(fmt.Sprintf("%q: %s", raw, reason))
	}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return invalid("missing scheme")
	}
	scheme = strings.ToLower(scheme)
	if scheme != "http" && scheme != "https" {
		return invalid("scheme must be http or https")
	}

	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return invalid("must end in /")
	}
	hostport, path := rest[:slash], rest[slash:]
	if !strings.HasSuffix(path, "/") {
		return invalid("must end in /")
	}
	if hostport == "" {
		return invalid("missing host")
	}

	host, port := hostport, ""
	if strings.LastIndexByte(hostport, ':') > strings.LastIndexByte(hostport, ']') {
		var err error
		host, port, err = net.SplitHostPort(hostport)
		if err != nil {
			return invalid(err.Error())
		}
	} else {
		host = strings.Trim(host, "[]")
	}
	if port == "" {
		port = "80"
		if scheme == "https" {
			port = "443"
		}
	}
	if host == "+" || host == "*" {
		host = ""
	}

	return Prefix{
		Raw:    raw,
		Scheme: scheme,
		Host:   strings.ToLower(host),
		Port:   port,
		Path:   path,
	}, nil
}

// Wildcard reports whether the prefix accepts any host name.
func (p Prefix) Wildcard() bool {
	return p.Host == ""
}

// Matches reports whether a request for host and path falls under p.
func (p Prefix) Matches(host, path string) bool {
	if !p.Wildcard() && !strings.EqualFold(p.Host, host) {
		return false
	}
	return strings.HasPrefix(path, p.Path)
}

// binding is one listening socket and the prefixes served on it.
type binding struct {
	addr     string
	tls      bool
	prefixes []Prefix
	ln       net.Listener
}

// match picks the most specific prefix for r: explicit hosts beat wildcards,
// then the longest path wins.
func (b *binding) match(r *http.Request) (Prefix, bool) {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")

	for _, p := range b.prefixes {
		if p.Matches(host, r.URL.Path) {
			return p, true
		}
	}
	return Prefix{}, false
}

// groupBindings assigns prefixes to sockets, one per distinct port. A port
// with a wildcard prefix or several host names binds all interfaces.
func groupBindings(prefixes []Prefix) ([]*binding, error) {
	byPort := make(map[string]*binding)
	hosts := make(map[string]map[string]struct{})
	var order []string

	for _, p := range prefixes {
		b, ok := byPort[p.Port]
		if !ok {
			b = &binding{tls: p.Scheme == "https"}
			byPort[p.Port] = b
			hosts[p.Port] = make(map[string]struct{})
			order = append(order, p.Port)
		}
		if b.tls != (p.Scheme == "https") {
			return nil, domain.ErrInvalidPrefix.WithDetails(fmt.Sprintf("port %s used by both http and https prefixes", p.Port))
		}
		if dupe := b.find(p); dupe {
			continue
		}
		b.prefixes = append(b.prefixes, p)
		hosts[p.Port][p.Host] = struct{}{}
	}

	bindings := make([]*binding, 0, len(order))
	for _, port := range order {
		b := byPort[port]
		bindHost := ""
		if _, wildcard := hosts[port][""]; !wildcard && len(hosts[port]) == 1 {
			bindHost = b.prefixes[0].Host
		}
		b.addr = net.JoinHostPort(bindHost, port)

		sort.SliceStable(b.prefixes, func(i, j int) bool {
			pi, pj := b.prefixes[i], b.prefixes[j]
			if pi.Wildcard() != pj.Wildcard() {
				return !pi.Wildcard()
			}
			return len(pi.Path) > len(pj.Path)
		})
		bindings = append(bindings, b)
	}
	return bindings, nil
}

func (b *binding) find(p Prefix) bool {
	for _, existing := range b.prefixes {
		if existing.Host == p.Host && existing.Path == p.Path {
			return true
		}
	}
	return false
}
