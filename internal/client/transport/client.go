package transport

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/taskdeck-go/internal/core/domain"
	"github.com/yndnr/taskdeck-go/internal/infra/buildinfo"
	"github.com/yndnr/taskdeck-go/internal/telemetry/logger"
	"github.com/yndnr/taskdeck-go/internal/telemetry/metric"
)

// HeaderRequestID carries the per-request tracing identifier.
const HeaderRequestID = "X-Request-ID"

// Defaults.
const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client dispatches requests with request-ID tagging, a fixed per-attempt
// timeout and linear-backoff retry of transient failures. It knows nothing
// about authentication.
type Client struct {
	baseURL    string
	http       *http.Client
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	userAgent  string
	limiter    *rate.Limiter
	sleep      SleepFunc
	log        logger.Logger
	metrics    *metric.Registry
	requestID  func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTLSConfig sets the TLS configuration of the underlying transport.
// A nil config leaves the defaults in place.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *Client) {
		if cfg == nil {
			return
		}
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = cfg
		c.http = &http.Client{Transport: tr}
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetry sets the maximum number of transient retries and the backoff base.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// WithRateLimit throttles attempts to rps per second. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithSleep replaces the backoff wait. Tests use it to observe delays.
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) { c.sleep = fn }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics records attempt and retry metrics in reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(c *Client) { c.metrics = reg }
}

// New creates a Client for baseURL. A missing scheme defaults to http://.
func New(baseURL string, opts ...Option) *Client {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{},
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		userAgent:  buildinfo.UserAgent(),
		sleep:      sleepContext,
		log:        logger.Nop(),
		requestID:  newRequestIDGenerator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Wait sleeps for d using the client's sleep function.
func (c *Client) Wait(ctx context.Context, d time.Duration) error {
	return c.sleep(ctx, d)
}

// Do dispatches req and retries transient failures. Before retry k it waits
// retryDelay × k. A response with status >= 400 is returned as a
// *domain.RequestError, never as a Response.
//
// Each call gets a fresh X-Request-ID shared by its retries, and restarts
// the request's retry counter.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	req.attempt = 0
	id := c.requestID()
	req.SetHeader(HeaderRequestID, id)
	ctx = logger.WithRequestID(logger.WithLogger(ctx, c.log), id)
	log := logger.L(ctx).With("method", req.Method, "path", req.Path)

	for {
		resp, outcome, rerr := c.dispatch(ctx, req)
		switch {
		case outcome == Success:
			return resp, nil
		case outcome == Terminal:
			return nil, rerr
		case req.attempt >= c.maxRetries:
			log.Debug("retries exhausted", "attempts", req.attempt+1, "error", rerr)
			return nil, rerr
		}

		req.attempt++
		delay := c.retryDelay * time.Duration(req.attempt)
		log.Debug("retrying request", "attempt", req.attempt, "delay", delay, "error", rerr)
		c.metrics.ObserveRetry(metric.ReasonTransient)

		if err := c.sleep(ctx, delay); err != nil {
			_, cerr := classifyTransportError(ctx, err)
			return nil, cerr
		}
	}
}

// dispatch performs exactly one attempt.
func (c *Client) dispatch(ctx context.Context, req *Request) (*Response, Outcome, *domain.RequestError) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				_, rerr := classifyTransportError(ctx, err)
				return nil, Terminal, rerr
			}
			// Wait fails fast when the deadline cannot fit the reservation.
			return nil, Terminal, &domain.RequestError{Message: "rate limit wait exceeds deadline", Code: domain.CodeCanceled, Cause: err}
		}
	}

	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if r := req.bodyReader(); r != nil {
		body = r
	}
	hreq, err := http.NewRequestWithContext(actx, req.Method, c.url(req), body)
	if err != nil {
		return nil, Terminal, &domain.RequestError{Message: "build request: " + err.Error(), Code: domain.CodeEncode, Cause: err}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	if req.ContentType != "" {
		hreq.Header.Set("Content-Type", req.ContentType)
	}
	hreq.Header.Set("Accept", ContentTypeJSON)
	hreq.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	hresp, err := c.http.Do(hreq)
	if err != nil {
		outcome, rerr := classifyTransportError(ctx, err)
		c.metrics.ObserveAttempt(req.Method, outcome.String(), time.Since(start))
		return nil, outcome, rerr
	}
	defer hresp.Body.Close()

	data, err := io.ReadAll(hresp.Body)
	if err != nil {
		outcome, rerr := classifyTransportError(ctx, err)
		rerr.Status = hresp.StatusCode
		c.metrics.ObserveAttempt(req.Method, outcome.String(), time.Since(start))
		return nil, outcome, rerr
	}

	resp := &Response{
		Status:    hresp.StatusCode,
		Header:    hresp.Header,
		Body:      data,
		RequestID: req.Header.Get(HeaderRequestID),
	}
	outcome := ClassifyStatus(resp.Status)
	c.metrics.ObserveAttempt(req.Method, outcome.String(), time.Since(start))
	if outcome == Success {
		return resp, Success, nil
	}
	return resp, outcome, statusError(resp)
}

func (c *Client) url(req *Request) string {
	u := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// newRequestIDGenerator returns a generator of "<unix-ms>-<9 random chars>"
// identifiers. The random part comes from monotonic ULID entropy, so IDs
// minted in the same millisecond still differ.
func newRequestIDGenerator() func() string {
	var mu sync.Mutex
	entropy := ulid.Monotonic(rand.Reader, 0)
	return func() string {
		now := time.Now()
		mu.Lock()
		id, err := ulid.New(ulid.Timestamp(now), entropy)
		mu.Unlock()
		if err != nil {
			id = ulid.Make()
		}
		s := strings.ToLower(id.String())
		return strconv.FormatInt(now.UnixMilli(), 10) + "-" + s[len(s)-9:]
	}
}
