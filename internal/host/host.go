package host

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/rest0-go/internal/core/domain"
	"github.com/yndnr/rest0-go/internal/infra/tlsroots"
	"github.com/yndnr/rest0-go/internal/telemetry/metric"
)

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// Host accepts connections on its prefixes and dispatches them to a Handler.
type Host struct {
	handler Handler
	values  Values
	logger  *slog.Logger
	metrics *metric.Registry

	certFile  string
	keyFile   string
	tlsConfig *tls.Config
	reloader  *tlsroots.Reloader

	state   atomic.Int32
	running atomic.Bool

	mu       sync.Mutex
	bindings []*binding
	prefixes []Prefix
	hostCtx  *HostContext

	serving         chan struct{}
	stop            chan struct{}
	stopOnce        sync.Once
	handlerOnce     sync.Once
	lifecycleDone   chan struct{}
	cancelLifecycle context.CancelFunc
	loops       sync.WaitGroup
	conns       sync.WaitGroup

	acceptLog rate.Sometimes
}

// Option configures a Host.
type Option func(*Host)

// WithValues supplies the static configuration passed to Configure.
func WithValues(v Values) Option {
	return func(h *Host) {
		h.values = v
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(h *Host) {
		h.metrics = m
	}
}

// WithTLSFiles sets the certificate and key used by https prefixes. The
// files are watched and reloaded when they change.
func WithTLSFiles(certFile, keyFile string) Option {
	return func(h *Host) {
		h.certFile = certFile
		h.keyFile = keyFile
	}
}

// WithTLSConfig sets a fixed TLS configuration for https prefixes.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(h *Host) {
		h.tlsConfig = cfg
	}
}

// New creates a host for handler. A nil handler answers every request with
// an empty 200 response.
func New(handler Handler, opts ...Option) *Host {
	if handler == nil {
		handler = nullHandler{}
	}
	h := &Host{
		handler:   handler,
		logger:    slog.Default(),
		serving:       make(chan struct{}),
		stop:          make(chan struct{}),
		lifecycleDone: make(chan struct{}),
		acceptLog:     rate.Sometimes{First: 3, Interval: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serving is closed once every listener is accepting.
func (h *Host) Serving() <-chan struct{} {
	return h.serving
}

// Prefixes returns the prefixes the host is bound to.
func (h *Host) Prefixes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.prefixes))
	for i, p := range h.prefixes {
		out[i] = p.Raw
	}
	return out
}

// Addrs returns the addresses of the open listeners.
func (h *Host) Addrs() []net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	var addrs []net.Addr
	for _, b := range h.bindings {
		if b.ln != nil {
			addrs = append(addrs, b.ln.Addr())
		}
	}
	return addrs
}

// Run parses prefixes, runs the handler lifecycle, opens the listeners and
// serves until ctx is done or Shutdown is called. Lifecycle and listen
// errors are returned before any connection is accepted.
//
// The lifecycle runs under a context that Shutdown cancels. A Shutdown that
// arrives during the lifecycle stops the handler and Run returns nil
// without opening a listener.
func (h *Host) Run(ctx context.Context, prefixes ...string) error {
	if !h.running.CompareAndSwap(false, true) {
		return domain.ErrAlreadyRunning
	}
	endLifecycle := sync.OnceFunc(func() { close(h.lifecycleDone) })
	defer endLifecycle()

	hc := &HostContext{
		Host:    h,
		Handler: h.handler,
		Logger:  h.logger,
		Metrics: h.metrics,
	}

	if len(prefixes) == 0 {
		return domain.ErrNoPrefixes
	}
	parsed := make([]Prefix, 0, len(prefixes))
	for _, raw := range prefixes {
		p, err := ParsePrefix(raw)
		if err != nil {
			return err
		}
		parsed = append(parsed, p)
	}
	bindings, err := groupBindings(parsed)
	if err != nil {
		return err
	}

	tlsConfig, err := h.serverTLS(bindings)
	if err != nil {
		return err
	}

	lifeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.mu.Lock()
	h.hostCtx = hc
	h.prefixes = parsed
	h.cancelLifecycle = cancel
	h.mu.Unlock()
	if h.stopping() {
		cancel()
	}

	err = h.runLifecycle(lifeCtx, hc)
	endLifecycle()
	if err != nil {
		if h.stopping() {
			err = errors.Join(err, h.shutdownHandler(context.Background()))
		}
		h.setState(StateStopped)
		h.stopReloader()
		return err
	}

	if h.stopping() {
		h.logger.Info("shutdown requested during handler startup")
		herr := h.shutdownHandler(context.Background())
		h.stopReloader()
		h.setState(StateStopped)
		return herr
	}

	if err := h.listen(bindings, tlsConfig); err != nil {
		h.setState(StateStopped)
		h.stopReloader()
		return err
	}

	h.mu.Lock()
	h.bindings = bindings
	if h.stopping() {
		h.mu.Unlock()
		h.closeListeners()
		h.setState(StateStopped)
		return nil
	}
	for _, b := range bindings {
		h.loops.Add(1)
		go func(b *binding) {
			defer h.loops.Done()
			h.acceptLoop(ctx, b)
		}(b)
	}
	h.mu.Unlock()

	h.setState(StateServing)
	close(h.serving)
	h.logger.Info("host started", "prefixes", h.Prefixes())

	select {
	case <-ctx.Done():
	case <-h.stop:
	}

	h.closeListeners()
	h.loops.Wait()
	h.setState(StateStopped)
	h.logger.Info("host stopped accepting connections")
	return nil
}

func (h *Host) serverTLS(bindings []*binding) (*tls.Config, error) {
	needTLS := false
	for _, b := range bindings {
		needTLS = needTLS || b.tls
	}
	if !needTLS {
		return nil, nil
	}
	if h.tlsConfig != nil {
		return h.tlsConfig, nil
	}
	if h.certFile == "" || h.keyFile == "" {
		return nil, domain.ErrTLSRequired
	}

	reloader, err := tlsroots.NewReloader(h.certFile, h.keyFile, tlsroots.WithLogger(h.logger))
	if err != nil {
		return nil, domain.ErrTLSRequired.Wrap(err)
	}
	reloader.WatchAsync()
	h.reloader = reloader
	return reloader.ServerTLSConfig(), nil
}

func (h *Host) listen(bindings []*binding, tlsConfig *tls.Config) error {
	for i, b := range bindings {
		ln, err := net.Listen("tcp", b.addr)
		if err != nil {
			for _, opened := range bindings[:i] {
				opened.ln.Close()
				opened.ln = nil
			}
			return err
		}
		if b.tls {
			ln = tls.NewListener(ln, tlsConfig)
		}
		b.ln = ln
		h.logger.Info("listening", "addr", ln.Addr().String(), "tls", b.tls)
	}
	return nil
}

func (h *Host) acceptLoop(ctx context.Context, b *binding) {
	var delay time.Duration
	for {
		c, err := b.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || h.stopping() {
				return
			}

			delay = nextAcceptDelay(delay)
			h.metrics.ConnectionError(metric.StageAccept)
			h.acceptLog.Do(func() {
				h.logger.Warn("accept failed, retrying",
					"addr", b.addr,
					"error", err,
					"retry_in", delay,
				)
			})

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-h.stop:
				timer.Stop()
				return
			}
			continue
		}
		delay = 0

		h.conns.Add(1)
		go func() {
			defer h.conns.Done()
			h.serveConn(ctx, b, c)
		}()
	}
}

func (h *Host) shutdownHandler(ctx context.Context) error {
	var err error
	h.handlerOnce.Do(func() {
		if s, ok := h.handler.(Shutdowner); ok {
			err = s.Shutdown(ctx)
		}
	})
	return err
}

// nextAcceptDelay doubles the wait after a failed Accept, starting at
// minAcceptDelay and capped at maxAcceptDelay.
func nextAcceptDelay(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptDelay
	}
	return min(d*2, maxAcceptDelay)
}

func (h *Host) stopping() bool {
	select {
	case <-h.stop:
		return true
	default:
		return false
	}
}

func (h *Host) closeListeners() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, b := range h.bindings {
		if b.ln != nil {
			b.ln.Close()
		}
	}
}

func (h *Host) stopReloader() {
	if h.reloader != nil {
		h.reloader.Stop()
	}
}

// Shutdown stops accepting, waits for in-flight connections and then shuts
// the handler down if it implements Shutdowner. It returns ctx.Err() if the
// connections did not drain in time.
func (h *Host) Shutdown(ctx context.Context) error {
	h.stopOnce.Do(func() { close(h.stop) })

	h.mu.Lock()
	cancel := h.cancelLifecycle
	h.mu.Unlock()
	if cancel != nil && h.State() < StateServing {
		cancel()
	}
	h.closeListeners()

	done := make(chan struct{})
	go func() {
		h.loops.Wait()
		h.conns.Wait()
		close(done)
	}()

	var drainErr error
	select {
	case <-done:
	case <-ctx.Done():
		drainErr = ctx.Err()
		h.logger.Warn("shutdown deadline reached with connections still open")
	}

	// The handler may only be stopped once its lifecycle has finished.
	var handlerErr error
	if h.running.Load() {
		select {
		case <-h.lifecycleDone:
			handlerErr = h.shutdownHandler(ctx)
		case <-ctx.Done():
			if drainErr == nil {
				drainErr = ctx.Err()
			}
		}
	}

	h.stopReloader()
	h.setState(StateStopped)
	return errors.Join(drainErr, handlerErr)
}
