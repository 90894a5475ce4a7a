package host

import "context"

// Handler produces the response for a request.
//
// A nil action with a nil error yields an empty 200 response. Execute is
// called concurrently from every connection goroutine.
type Handler interface {
	Execute(ctx context.Context, rc *RequestContext) (ResponseAction, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, rc *RequestContext) (ResponseAction, error)

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context, rc *RequestContext) (ResponseAction, error) {
	return f(ctx, rc)
}

// Configurer is implemented by handlers that accept static configuration.
type Configurer interface {
	Configure(ctx context.Context, hc *HostContext, values Values) error
}

// Initializer is implemented by handlers that need to prepare state before
// the first request, such as loading their first configuration snapshot.
type Initializer interface {
	Initialize(ctx context.Context, hc *HostContext) error
}

// Shutdowner is implemented by handlers that own background work. The host
// calls Shutdown once, after in-flight connections have drained.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

type nullHandler struct{}

func (nullHandler) Execute(context.Context, *RequestContext) (ResponseAction, error) {
	return nil, nil
}
