package host

import (
	"context"
	"time"

	"github.com/yndnr/rest0-go/internal/core/domain"
)

// State is the position of a Host in its lifecycle.
type State int32

const (
	StateUnconfigured State = iota
	StateConfigured
	StateInitialized
	StateServing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateInitialized:
		return "initialized"
	case StateServing:
		return "serving"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// State returns the current lifecycle state.
func (h *Host) State() State {
	return State(h.state.Load())
}

func (h *Host) setState(s State) {
	h.state.Store(int32(s))
}

// runLifecycle configures and initializes the handler, each at most once.
func (h *Host) runLifecycle(ctx context.Context, hc *HostContext) error {
	if c, ok := h.handler.(Configurer); ok && h.values != nil {
		start := time.Now()
		if err := c.Configure(ctx, hc, h.values.Clone()); err != nil {
			return domain.ErrLifecycle.WithDetails("configure").Wrap(err)
		}
		h.logger.Debug("handler configured", "keys", len(h.values), "duration", time.Since(start))
	}
	h.setState(StateConfigured)

	if i, ok := h.handler.(Initializer); ok {
		start := time.Now()
		if err := i.Initialize(ctx, hc); err != nil {
			return domain.ErrLifecycle.WithDetails("initialize").Wrap(err)
		}
		h.logger.Debug("handler initialized", "duration", time.Since(start))
	}
	h.setState(StateInitialized)

	return nil
}
