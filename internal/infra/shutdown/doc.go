// Package shutdown coordinates graceful termination of the respkv server.
//
// A Handler waits for SIGINT, SIGTERM or context cancellation, then runs
// the registered hooks in reverse order of registration under a shared
// timeout. SIGHUP is delivered separately to reload callbacks.
//
// Usage:
//
//	h := shutdown.NewHandler(10*time.Second, shutdown.WithLogger(log))
//	h.OnShutdown("redis", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
