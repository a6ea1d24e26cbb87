// Package shutdown provides graceful shutdown for System Validator.
//
// This package handles process termination signals:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - Timeout-bounded cleanup hooks
//   - Shutdown coordination
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	ctx, stop := h.Context(context.Background())
//	defer stop()
//	h.OnShutdown("http", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
