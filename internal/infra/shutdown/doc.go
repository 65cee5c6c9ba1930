// Package shutdown provides signal handling and ordered cleanup.
//
// Usage:
//
//	ctx, stop := shutdown.WithSignals(context.Background())
//	defer stop()
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown(closeStore)
//	h.OnShutdown(flushMetrics)
//	err := h.Run(ctx) // flushMetrics, then closeStore
package shutdown
