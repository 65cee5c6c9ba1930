package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/yndnr/taskdeck-go/internal/client/transport"
	"github.com/yndnr/taskdeck-go/internal/core/domain"
	"github.com/yndnr/taskdeck-go/internal/telemetry/logger"
	"github.com/yndnr/taskdeck-go/internal/telemetry/metric"
	"github.com/yndnr/taskdeck-go/pkg/token"
)

// DefaultRetryAfter is the wait before replaying a 429 that named no delay.
const DefaultRetryAfter = time.Second

// Session is the token state and refresh operation the client relies on.
// *session.Manager implements it.
type Session interface {
	AccessToken() string
	HasRefreshToken() bool
	Refresh(ctx context.Context) bool
	Logout() error
}

// Transport dispatches requests with transient retry.
// *transport.Client implements it.
type Transport interface {
	Do(ctx context.Context, req *transport.Request) (*transport.Response, error)
	Wait(ctx context.Context, d time.Duration) error
}

// refreshResult is broadcast to every waiter when a refresh resolves.
type refreshResult struct {
	token string
	ok    bool
}

// Client sends task API calls with a bearer token and heals expired
// sessions: a 401 triggers one token refresh shared by every request that
// hits 401 meanwhile, after which each of them is replayed once.
type Client struct {
	session   Session
	transport Transport
	log       logger.Logger
	metrics   *metric.Registry
	onExpired func()

	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshResult
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics records replay metrics in reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(c *Client) { c.metrics = reg }
}

// OnSessionExpired registers fn to run once per failed refresh, after the
// tokens were cleared. It is the hook for sending the user back to login.
func OnSessionExpired(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

// New creates a Client.
func New(s Session, t Transport, opts ...Option) *Client {
	c := &Client{
		session:   s,
		transport: t,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "api")
	return c
}

// Do dispatches req with the current access token.
//
// A 401 is answered at most once per call: the request waits for a token
// refresh (starting one if none is running) and is replayed with the new
// token. A 429 is replayed once after the server-requested delay.
// Any other failure is returned as is.
func (c *Client) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	bearer := c.session.AccessToken()
	retried := false
	rateLimited := false

	for {
		setBearer(req, bearer)
		resp, err := c.transport.Do(ctx, req)
		if err == nil {
			return resp, nil
		}

		var rerr *domain.RequestError
		if !errors.As(err, &rerr) {
			return nil, err
		}

		switch rerr.Status {
		case http.StatusUnauthorized:
			if retried {
				return nil, err
			}
			retried = true
			fresh, ferr := c.awaitToken(ctx, bearer)
			if ferr != nil {
				return nil, ferr
			}
			c.log.Debug("replaying request after refresh", "method", req.Method, "path", req.Path)
			c.metrics.ObserveRetry(metric.ReasonUnauthorized)
			bearer = fresh

		case http.StatusTooManyRequests:
			if rateLimited {
				return nil, err
			}
			rateLimited = true
			delay := rerr.RetryAfter
			if delay <= 0 {
				delay = DefaultRetryAfter
			}
			c.log.Debug("rate limited, waiting", "method", req.Method, "path", req.Path, "delay", delay)
			c.metrics.ObserveRetry(metric.ReasonRateLimited)
			if werr := c.transport.Wait(ctx, delay); werr != nil {
				return nil, canceledError(werr)
			}

		default:
			return nil, err
		}
	}
}

// awaitToken returns a token to replay a request that got 401 with used.
//
// If a refresh is running the caller queues behind it. If the stored token
// already differs from used, a refresh finished after the request was sent
// and the stored token is returned directly. If both tokens are gone, a
// refresh already failed and the session stays expired without another
// Logout or OnSessionExpired. Otherwise the caller leads a new refresh.
func (c *Client) awaitToken(ctx context.Context, used string) (string, error) {
	c.mu.Lock()
	if c.refreshing {
		ch := make(chan refreshResult, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()

		c.log.Debug("queued behind token refresh")
		select {
		case res := <-ch:
			if !res.ok {
				return "", sessionExpiredError()
			}
			return res.token, nil
		case <-ctx.Done():
			return "", canceledError(ctx.Err())
		}
	}
	current := c.session.AccessToken()
	if current != "" && !token.Equal(current, used) {
		c.mu.Unlock()
		c.log.Debug("token already refreshed", "fingerprint", token.Fingerprint(current))
		return current, nil
	}
	if current == "" && used != "" && !c.session.HasRefreshToken() {
		c.mu.Unlock()
		c.log.Debug("session already expired", "rejected", token.Fingerprint(used))
		return "", sessionExpiredError()
	}
	c.refreshing = true
	c.mu.Unlock()

	c.log.Debug("refreshing access token", "rejected", token.Fingerprint(used))
	ok := c.session.Refresh(context.WithoutCancel(ctx))
	var fresh string
	if ok {
		fresh = c.session.AccessToken()
		ok = fresh != ""
	}
	if !ok {
		if err := c.session.Logout(); err != nil {
			c.log.Error("clear tokens after failed refresh", "error", err)
		}
	}

	queued := c.release(refreshResult{token: fresh, ok: ok})

	if !ok {
		c.log.Warn("session expired", "queued", queued)
		if c.onExpired != nil {
			c.onExpired()
		}
		return "", sessionExpiredError()
	}
	c.log.Debug("token refresh broadcast", "queued", queued, "fingerprint", token.Fingerprint(fresh))
	return fresh, nil
}

// release ends the refresh and hands res to every queued request in the
// order they queued. It returns how many were queued.
func (c *Client) release(res refreshResult) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	for _, ch := range waiters {
		ch <- res
	}
	return len(waiters)
}

func setBearer(req *transport.Request, bearer string) {
	if bearer == "" {
		req.Header.Del("Authorization")
		return
	}
	req.SetHeader("Authorization", "Bearer "+bearer)
}

func sessionExpiredError() error {
	return &domain.RequestError{
		Message: domain.ErrSessionExpired.Message,
		Code:    domain.CodeUnauthorized,
		Status:  http.StatusUnauthorized,
		Cause:   domain.ErrSessionExpired,
	}
}

func canceledError(err error) error {
	return &domain.RequestError{
		Message: "request canceled",
		Code:    domain.CodeCanceled,
		Cause:   err,
	}
}
