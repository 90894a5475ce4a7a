// Package shutdown provides graceful shutdown for rest0-server.
//
// This package handles process termination signals:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - Programmatic shutdown via Trigger
//   - Timeout-bounded cleanup hooks, run in reverse order
//   - SIGHUP reload callbacks
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	go func() { _ = srv.Run(ctx); h.Trigger() }()
//	err := h.Wait(ctx)
package shutdown
