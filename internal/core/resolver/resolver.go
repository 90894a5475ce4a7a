// Package resolver fetches the handler's configuration document and turns
// it into a fingerprinted snapshot.
//
// The remote endpoint (config.Url) is always tried first. Any failure there
// falls back to the local file (config.Path). Both sources go through the
// same pipeline: the byte stream is hashed while it is decoded, so the
// fingerprint is a content address for exactly the bytes the document was
// built from.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/yndnr/rest0-go/internal/core/domain"
	"github.com/yndnr/rest0-go/internal/core/snapshot"
	"github.com/yndnr/rest0-go/internal/infra/tlsroots"
)

// Config selects the sources and how they are read.
type Config struct {
	// URL is the remote configuration endpoint. Tried first.
	URL string
	// Path is the local fallback file.
	Path string
	// Timeout bounds a single remote fetch. Zero means no timeout.
	Timeout time.Duration
	// Digest names the fingerprint algorithm (sha1, sha256, blake2b).
	Digest string
	// CAFile is an optional PEM bundle trusted in addition to the system roots.
	CAFile string
}

// HasSource reports whether at least one source is configured.
func (c Config) HasSource() bool {
	return c.URL != "" || c.Path != ""
}

// Resolver produces snapshots from the configured sources.
type Resolver struct {
	cfg     Config
	client  *http.Client
	newHash func() hash.Hash
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithHTTPClient replaces the HTTP client used for the remote source.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithClock overrides the clock used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// New creates a resolver. It does not touch either source; a missing
// source is reported by Resolve so that it surfaces at initialization.
func New(cfg Config, opts ...Option) (*Resolver, error) {
	newHash, err := newHashFunc(cfg.Digest)
	if err != nil {
		return nil, err
	}

	r := &Resolver{
		cfg:     cfg,
		newHash: newHash,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.client == nil {
		client, err := newHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
		r.client = client
	}

	return r, nil
}

func newHTTPClient(cfg Config) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.CAFile != "" {
		pool := tlsroots.NewPool()
		if err := pool.AddCertFile(cfg.CAFile); err != nil {
			return nil, domain.ErrInvalidSetting.WithDetails("config.CAFile").Wrap(err)
		}
		transport.TLSClientConfig = pool.ClientTLSConfig()
	}
	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}, nil
}

// Config returns the resolver configuration.
func (r *Resolver) Config() Config {
	return r.cfg
}

// Resolve fetches and decodes the configuration document.
//
// It returns domain.ErrNoConfigSource when neither source is configured,
// and an error matching domain.ErrSourceUnavailable when every configured
// source failed.
func (r *Resolver) Resolve(ctx context.Context) (*snapshot.Snapshot, error) {
	if !r.cfg.HasSource() {
		return nil, domain.ErrNoConfigSource
	}

	var errs []error

	if r.cfg.URL != "" {
		r.logger.Debug("fetching configuration over HTTP", "url", r.cfg.URL)
		snap, err := r.fetchRemote(ctx)
		if err == nil {
			return snap, nil
		}
		r.logger.Warn("remote configuration fetch failed",
			"url", r.cfg.URL,
			"error", err,
			"fallback", r.cfg.Path != "",
		)
		errs = append(errs, err)
	}

	if r.cfg.Path != "" {
		r.logger.Debug("loading configuration from file", "path", r.cfg.Path)
		snap, err := r.loadFile()
		if err == nil {
			return snap, nil
		}
		r.logger.Warn("configuration file load failed",
			"path", r.cfg.Path,
			"error", err,
		)
		errs = append(errs, err)
	}

	return nil, domain.ErrSourceUnavailable.Wrap(errors.Join(errs...))
}

func (r *Resolver) fetchRemote(ctx context.Context) (*snapshot.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "rest0-host/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, domain.ErrRemoteStatus.WithDetails(resp.Status)
	}

	return r.build(resp.Body, snapshot.SourceRemote)
}

func (r *Resolver) loadFile() (*snapshot.Snapshot, error) {
	f, err := os.Open(r.cfg.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return r.build(f, snapshot.SourceFile)
}

func (r *Resolver) build(body io.Reader, source snapshot.Source) (*snapshot.Snapshot, error) {
	doc, sum, err := decodeDigest(body, r.newHash())
	if err != nil {
		return nil, err
	}
	return snapshot.New(sum, doc, source, r.now()), nil
}
