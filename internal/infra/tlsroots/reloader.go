package tlsroots

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader serves a certificate/key pair and reloads it when either file
// is rewritten on disk.
type Reloader struct {
	certFile string
	keyFile  string
	cert     atomic.Pointer[tls.Certificate]
	logger   *slog.Logger

	debounce   time.Duration
	lastReload time.Time
	reloadMu   sync.Mutex

	done     chan struct{}
	stopOnce sync.Once
}

// ReloaderOption configures a Reloader.
type ReloaderOption func(*Reloader)

// WithLogger sets the logger for the reloader.
func WithLogger(logger *slog.Logger) ReloaderOption {
	return func(r *Reloader) {
		r.logger = logger
	}
}

// WithDebounce sets the minimum interval between two reloads.
func WithDebounce(d time.Duration) ReloaderOption {
	return func(r *Reloader) {
		r.debounce = d
	}
}

// NewReloader loads the key pair and returns a reloader serving it.
func NewReloader(certFile, keyFile string, opts ...ReloaderOption) (*Reloader, error) {
	r := &Reloader{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   slog.Default(),
		debounce: 500 * time.Millisecond,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.reload(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial load: %w", err)
	}
	return r, nil
}

// ServerTLSConfig returns a server TLS config backed by the reloader.
func (r *Reloader) ServerTLSConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: r.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *Reloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return r.cert.Load(), nil
}

// Watch blocks, reloading the pair on change, until Stop is called.
func (r *Reloader) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories rather than files to survive rename-on-save.
	dirs := map[string]struct{}{
		filepath.Dir(r.certFile): {},
		filepath.Dir(r.keyFile):  {},
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("tlsroots: watch dir %s: %w", dir, err)
		}
	}

	certBase := filepath.Base(r.certFile)
	keyBase := filepath.Base(r.keyFile)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(event.Name)
			if name != certBase && name != keyBase {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := r.debouncedReload(); err != nil {
				// Keep serving the previous certificate.
				r.logger.Error("certificate reload failed",
					"error", err,
					"cert_file", r.certFile,
				)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("certificate watcher error", "error", err)
		case <-r.done:
			return nil
		}
	}
}

// WatchAsync runs Watch in a goroutine.
func (r *Reloader) WatchAsync() {
	go func() {
		if err := r.Watch(); err != nil {
			r.logger.Error("certificate watcher stopped", "error", err)
		}
	}()
}

// Stop ends Watch. It is safe to call more than once.
func (r *Reloader) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

func (r *Reloader) debouncedReload() error {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	now := time.Now()
	if now.Sub(r.lastReload) < r.debounce {
		return nil
	}
	r.lastReload = now

	// Give the writer a moment to finish both files.
	time.Sleep(100 * time.Millisecond)
	return r.reload()
}

func (r *Reloader) reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}
	r.cert.Store(&cert)
	r.logger.Info("certificate loaded", "cert_file", r.certFile)
	return nil
}
