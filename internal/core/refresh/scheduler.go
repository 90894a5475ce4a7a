// Package refresh keeps the current configuration snapshot up to date.
//
// The scheduler wakes on wall-clock instants that are exact multiples of the
// interval (10s by default: :00, :10, :20, ...), resolves the configuration
// and publishes successful results into a snapshot.Cell. Failures keep the
// previous snapshot; there is no backoff, a failing source is simply retried
// on the next tick.
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yndnr/rest0-go/internal/core/domain"
	"github.com/yndnr/rest0-go/internal/core/snapshot"
	"github.com/yndnr/rest0-go/internal/telemetry/metric"
)

// DefaultInterval is the refresh cadence when none is configured.
const DefaultInterval = 10 * time.Second

// Resolver produces configuration snapshots.
type Resolver interface {
	Resolve(ctx context.Context) (*snapshot.Snapshot, error)
}

// NextTick returns the smallest multiple of interval, counted from the Unix
// epoch, that is strictly after now.
func NextTick(now time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		interval = DefaultInterval
	}
	step := int64(interval)
	next := (now.UnixNano()/step + 1) * step
	return time.Unix(0, next).In(now.Location())
}

// Scheduler periodically resolves configuration into a cell.
type Scheduler struct {
	resolver Resolver
	cell     *snapshot.Cell
	interval time.Duration
	logger   *slog.Logger
	metrics  *metric.Registry
	now      func() time.Time

	trigger chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the refresh cadence.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithClock overrides the wall clock used for tick alignment.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// New creates a scheduler publishing into cell.
func New(resolver Resolver, cell *snapshot.Cell, opts ...Option) *Scheduler {
	s := &Scheduler{
		resolver: resolver,
		cell:     cell,
		interval: DefaultInterval,
		logger:   slog.Default(),
		now:      time.Now,
		trigger:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the refresh cadence.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Prime performs the first, synchronous resolve.
//
// A missing source is returned so startup can abort. A source that is
// configured but currently failing is logged and leaves the cell empty;
// the background loop keeps retrying.
func (s *Scheduler) Prime(ctx context.Context) error {
	snap, err := s.resolver.Resolve(ctx)
	if err != nil {
		if domain.IsFatal(err) {
			s.metrics.Refresh(metric.RefreshFatal, s.now())
			return err
		}
		s.metrics.Refresh(metric.RefreshFailed, s.now())
		s.logger.Warn("initial configuration unavailable, serving without a snapshot",
			"error", err,
		)
		return nil
	}

	s.publish(snap)
	return nil
}

// Trigger requests a refresh ahead of the next tick. Triggers that arrive
// while one is pending are coalesced.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("configuration refresh loop started", "interval", s.interval)
	defer s.logger.Info("configuration refresh loop stopped")

	for {
		now := s.now()
		timer := time.NewTimer(NextTick(now, s.interval).Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.trigger:
			timer.Stop()
			s.logger.Debug("configuration refresh triggered")
		case <-timer.C:
		}

		s.refresh(ctx)
	}
}

// Start runs the loop in a goroutine owned by the scheduler. Stop ends it.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		s.Run(ctx)
	}(s.done)
}

// Stop cancels a loop started with Start and waits for it to exit or for
// ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) refresh(ctx context.Context) {
	snap, err := s.resolver.Resolve(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if domain.IsFatal(err) {
			s.metrics.Refresh(metric.RefreshFatal, s.now())
			s.logger.Error("configuration refresh failed", "error", err)
			return
		}
		s.metrics.Refresh(metric.RefreshFailed, s.now())
		s.logger.Warn("configuration refresh failed, keeping previous snapshot",
			"error", err,
		)
		return
	}

	s.publish(snap)
}

func (s *Scheduler) publish(snap *snapshot.Snapshot) {
	prev := s.cell.Store(snap)

	if prev.SameContent(snap) {
		s.metrics.Refresh(metric.RefreshUnchanged, snap.ResolvedAt())
		s.logger.Debug("configuration unchanged", "hash", snap.Hex())
		return
	}

	s.metrics.Refresh(metric.RefreshChanged, snap.ResolvedAt())
	attrs := []any{"hash", snap.Hex(), "source", string(snap.Source())}
	if prev != nil {
		attrs = append(attrs, "previous_hash", prev.Hex())
	}
	s.logger.Info("configuration changed", attrs...)
}
