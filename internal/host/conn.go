package host

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/rest0-go/internal/telemetry/logger"
	"github.com/yndnr/rest0-go/internal/telemetry/metric"
)

// serveConn handles the single request carried by c. Nothing that happens
// here escapes the connection: errors and panics are logged, counted and
// answered with a 500 when the response has not been committed yet.
func (h *Host) serveConn(ctx context.Context, b *binding, c net.Conn) {
	defer c.Close()

	received := time.Now()
	br := bufio.NewReader(c)
	bw := bufio.NewWriter(c)
	sink := newConnSink(bw)

	req, err := http.ReadRequest(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return
		}
		h.metrics.ConnectionError(metric.StageRead)
		h.logger.Debug("failed to read request", "remote", c.RemoteAddr().String(), "error", err)
		sink.SetStatus(http.StatusBadRequest, "")
		sink.Close()
		return
	}

	id := ulid.Make().String()
	reqLog := h.logger.With(
		"method", req.Method,
		"path", req.URL.Path,
		"remote", c.RemoteAddr().String(),
	)
	log := reqLog.With("request_id", id)

	finish := h.metrics.RequestStarted()
	outcome := metric.OutcomeError
	defer func() {
		finish(outcome)
	}()

	defer func() {
		if r := recover(); r != nil {
			h.metrics.ConnectionError(metric.StagePanic)
			log.Error("handler panic",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			fail(sink)
			outcome = metric.OutcomeError
		}
		if err := sink.Close(); err != nil {
			log.Debug("failed to close response", "error", err)
		}
	}()

	req.RemoteAddr = c.RemoteAddr().String()
	if tc, ok := c.(*tls.Conn); ok {
		state := tc.ConnectionState()
		req.TLS = &state
	}

	prefix, ok := b.match(req)
	if !ok {
		sink.SetStatus(http.StatusNotFound, "")
		outcome = metric.OutcomeNotFound
		log.Debug("no prefix matches request", "host", req.Host)
		return
	}

	// logger.L(ctx) adds the request id back on top of reqLog.
	ctx = logger.WithRequestID(logger.WithLogger(ctx, reqLog), id)
	rc := &RequestContext{
		HostContext: h.hostCtx,
		Request:     req.WithContext(ctx),
		User:        principalFrom(req),
		ID:          id,
		Prefix:      prefix.Raw,
		Received:    received,
	}

	action, err := h.handler.Execute(ctx, rc)
	if err != nil {
		h.metrics.ConnectionError(metric.StageHandler)
		log.Error("handler failed", "error", err)
		fail(sink)
		return
	}

	if action != nil {
		if err := action.Execute(ctx, &ResponseContext{RequestContext: rc, Response: sink}); err != nil {
			h.metrics.ConnectionError(metric.StageAction)
			log.Error("response action failed", "error", err)
			fail(sink)
			return
		}
	}

	outcome = metric.OutcomeOK
	log.Debug("request completed", "duration", time.Since(received))
}

// fail replaces an uncommitted response with a 500.
func fail(sink *connSink) {
	if sink.reset() {
		sink.SetStatus(http.StatusInternalServerError, "")
	}
}
