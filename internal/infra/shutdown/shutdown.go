package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// WithSignals returns a context canceled on SIGINT or SIGTERM.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Handler runs cleanup hooks once, in reverse order of registration.
type Handler struct {
	timeout time.Duration
	mu      sync.Mutex
	hooks   []func(context.Context) error
	done    chan struct{}
	ran     bool
}

// NewHandler creates a Handler whose hooks share a timeout budget.
// A zero timeout means no deadline.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		hooks:   make([]func(context.Context) error, 0),
		done:    make(chan struct{}),
	}
}

// OnShutdown registers a shutdown hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(hook func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Run executes every hook and returns their joined errors. Later calls
// are no-ops. The hooks get a context detached from ctx's cancellation so
// cleanup still runs after an interrupt.
func (h *Handler) Run(ctx context.Context) error {
	h.mu.Lock()
	if h.ran {
		h.mu.Unlock()
		return nil
	}
	h.ran = true
	hooks := h.hooks
	h.hooks = nil
	h.mu.Unlock()
	defer close(h.done)

	ctx = context.WithoutCancel(ctx)
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Done returns a channel that closes when Run has finished.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
