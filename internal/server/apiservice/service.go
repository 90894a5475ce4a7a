// Package apiservice is the rest0 configuration handler.
//
// It serves the current configuration snapshot as
//
//	{"hash": "<lowercase hex fingerprint>", "config": <document>}
//
// for every path except "/", which redirects to redirect.Location. The
// snapshot is refreshed in the background on wall-clock aligned ticks and,
// optionally, whenever the local configuration file is written.
package apiservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/yndnr/rest0-go/internal/core/domain"
	"github.com/yndnr/rest0-go/internal/core/refresh"
	"github.com/yndnr/rest0-go/internal/core/resolver"
	"github.com/yndnr/rest0-go/internal/core/snapshot"
	"github.com/yndnr/rest0-go/internal/host"
	"github.com/yndnr/rest0-go/internal/infra/confloader"
	"github.com/yndnr/rest0-go/internal/server/response"
	"github.com/yndnr/rest0-go/internal/telemetry/logger"
	"github.com/yndnr/rest0-go/internal/telemetry/metric"
)

// Recognised configuration keys. Lookups are case-insensitive.
const (
	KeyURL              = "config.Url"
	KeyPath             = "config.Path"
	KeyInterval         = "config.Interval"
	KeyTimeout          = "config.Timeout"
	KeyDigest           = "config.Digest"
	KeyCAFile           = "config.CAFile"
	KeyWatch            = "config.Watch"
	KeyRedirectLocation = "redirect.Location"
)

// DefaultRedirectLocation is where "/" points when redirect.Location is unset.
const DefaultRedirectLocation = "/foo"

// Document is the JSON body served for every non-root path.
type Document struct {
	Hash   string `json:"hash"`
	Config any    `json:"config"`
}

// Service implements host.Handler, host.Configurer, host.Initializer and
// host.Shutdowner.
type Service struct {
	cell snapshot.Cell

	source   resolver.Config
	interval time.Duration
	watch    bool
	redirect string

	resolverOpts []resolver.Option
	logger       *slog.Logger

	scheduler atomic.Pointer[refresh.Scheduler]
	watcher   *confloader.Watcher
}

var (
	_ host.Handler     = (*Service)(nil)
	_ host.Configurer  = (*Service)(nil)
	_ host.Initializer = (*Service)(nil)
	_ host.Shutdowner  = (*Service)(nil)
)

// Option configures a Service.
type Option func(*Service)

// WithResolverOptions passes options through to the configuration resolver.
func WithResolverOptions(opts ...resolver.Option) Option {
	return func(s *Service) {
		s.resolverOpts = append(s.resolverOpts, opts...)
	}
}

// New creates an unconfigured service.
func New(opts ...Option) *Service {
	s := &Service{
		interval: refresh.DefaultInterval,
		redirect: DefaultRedirectLocation,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configure reads the handler keys from values. A missing source is not an
// error here; it surfaces from Initialize.
func (s *Service) Configure(ctx context.Context, hc *host.HostContext, values host.Values) error {
	if hc != nil && hc.Logger != nil {
		s.logger = hc.Logger.With("component", "apiservice")
	}

	var errs []error
	single := func(key string) string {
		if !values.Has(key) {
			return ""
		}
		v, ok := values.Single(key)
		if !ok {
			errs = append(errs, domain.ErrInvalidSetting.WithDetails(key+": expected a single value"))
		}
		return strings.TrimSpace(v)
	}

	s.source = resolver.Config{
		URL:    single(KeyURL),
		Path:   single(KeyPath),
		Digest: single(KeyDigest),
		CAFile: single(KeyCAFile),
	}

	if raw := single(KeyInterval); raw != "" {
		d, err := parseSeconds(raw)
		if err != nil || d <= 0 {
			errs = append(errs, domain.ErrInvalidSetting.WithDetails(fmt.Sprintf("%s: %q is not a positive duration", KeyInterval, raw)))
		} else {
			s.interval = d
		}
	}

	if raw := single(KeyTimeout); raw != "" {
		d, err := parseSeconds(raw)
		if err != nil || d < 0 {
			errs = append(errs, domain.ErrInvalidSetting.WithDetails(fmt.Sprintf("%s: %q is not a duration", KeyTimeout, raw)))
		} else {
			s.source.Timeout = d
		}
	}

	if raw := single(KeyWatch); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, domain.ErrInvalidSetting.WithDetails(fmt.Sprintf("%s: %q is not a boolean", KeyWatch, raw)))
		}
		s.watch = b
	}

	if loc := single(KeyRedirectLocation); loc != "" {
		s.redirect = loc
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.logger.Info("configuration source set",
		"url", s.source.URL,
		"path", s.source.Path,
		"interval", s.interval,
		"watch", s.watch,
	)
	return nil
}

// Validate reports the startup errors Configure leaves to Initialize:
// currently only a missing configuration source.
func (s *Service) Validate() error {
	if !s.source.HasSource() {
		return domain.ErrNoConfigSource
	}
	return nil
}

// parseSeconds accepts a Go duration ("30s", "1m") or a bare number of seconds.
func parseSeconds(raw string) (time.Duration, error) {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(n * float64(time.Second)), nil
	}
	return time.ParseDuration(raw)
}

// Initialize loads the first snapshot and starts the refresh loop. It fails
// when no configuration source is configured.
func (s *Service) Initialize(ctx context.Context, hc *host.HostContext) error {
	var m *metric.Registry
	if hc != nil {
		m = hc.Metrics
	}

	r, err := s.newResolver()
	if err != nil {
		return err
	}

	sched := refresh.New(r, &s.cell,
		refresh.WithInterval(s.interval),
		refresh.WithLogger(s.logger),
		refresh.WithMetrics(m),
	)
	if err := sched.Prime(ctx); err != nil {
		return err
	}

	m.MustRegister(metric.NewSnapshotCollector(s.cell.Load))
	sched.Start(ctx)
	s.scheduler.Store(sched)

	if s.watch && s.source.Path != "" {
		s.startWatcher()
	}
	return nil
}

func (s *Service) newResolver() (*resolver.Resolver, error) {
	opts := append([]resolver.Option{resolver.WithLogger(s.logger)}, s.resolverOpts...)
	return resolver.New(s.source, opts...)
}

func (s *Service) startWatcher() {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(s.logger))
	if err != nil {
		s.logger.Warn("file watch disabled", "error", err)
		return
	}
	if err := w.Watch(s.source.Path); err != nil {
		s.logger.Warn("file watch disabled", "path", s.source.Path, "error", err)
		w.Stop()
		return
	}
	w.OnChange(func(string) {
		s.Refresh()
	})
	w.StartAsync()
	s.watcher = w
}

// Execute answers a request from the snapshot that is current when the
// request arrives.
func (s *Service) Execute(ctx context.Context, rc *host.RequestContext) (host.ResponseAction, error) {
	snap := s.cell.Load()

	if rc.Request.URL.Path == "/" {
		return response.Redirect(s.redirect), nil
	}

	if snap == nil {
		logger.L(ctx).Debug("no configuration snapshot loaded yet", "path", rc.Request.URL.Path)
		return response.StatusResponse{
			Code:        http.StatusServiceUnavailable,
			Description: "Configuration Not Loaded",
		}, nil
	}

	return response.JSON(Document{
		Hash:   snap.Hex(),
		Config: snap.Document(),
	}), nil
}

// Shutdown stops the file watcher and the refresh loop.
func (s *Service) Shutdown(ctx context.Context) error {
	var errs []error
	if s.watcher != nil {
		errs = append(errs, s.watcher.Stop())
	}
	if sched := s.scheduler.Load(); sched != nil {
		errs = append(errs, sched.Stop(ctx))
	}
	return errors.Join(errs...)
}

// Refresh asks the refresh loop to reload now. It does nothing before
// Initialize.
func (s *Service) Refresh() {
	if sched := s.scheduler.Load(); sched != nil {
		sched.Trigger()
	}
}

// ResolveOnce resolves the configured source without publishing the result.
func (s *Service) ResolveOnce(ctx context.Context) (*snapshot.Snapshot, error) {
	r, err := s.newResolver()
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx)
}

// Current returns the current snapshot, or nil before the first successful
// load.
func (s *Service) Current() *snapshot.Snapshot {
	return s.cell.Load()
}
