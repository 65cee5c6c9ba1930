// Package metric provides Prometheus metrics for the taskdeck client.
package metric

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "taskdeck_client"

// Outcome labels for RequestsTotal.
const (
	OutcomeSuccess   = "success"
	OutcomeRetryable = "retryable"
	OutcomeTerminal  = "terminal"
)

// Retry reasons for RetriesTotal.
const (
	ReasonTransient    = "transient"
	ReasonRateLimited  = "rate_limited"
	ReasonUnauthorized = "unauthorized"
)

// Registry holds the client metrics. A nil *Registry is valid and records nothing.
type Registry struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RetriesTotal    *prometheus.CounterVec
	RefreshesTotal  *prometheus.CounterVec
	RateLimited     prometheus.Counter
}

// NewRegistry creates the client metrics and registers them with reg.
func NewRegistry(reg prometheus.Registerer) (*Registry, error) {
	r := &Registry{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP request attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of single HTTP request attempts.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method"}),
		RetriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Redispatched requests by reason.",
		}, []string{"reason"}),
		RefreshesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Token refresh attempts by result.",
		}, []string{"result"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Responses with status 429.",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.RequestsTotal, r.RequestDuration, r.RetriesTotal, r.RefreshesTotal, r.RateLimited,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return r, nil
}

// ObserveAttempt records one request attempt.
func (r *Registry) ObserveAttempt(method, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, outcome).Inc()
	r.RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveRetry records a redispatch.
func (r *Registry) ObserveRetry(reason string) {
	if r == nil {
		return
	}
	r.RetriesTotal.WithLabelValues(reason).Inc()
	if reason == ReasonRateLimited {
		r.RateLimited.Inc()
	}
}

// ObserveRefresh records a token refresh result.
func (r *Registry) ObserveRefresh(ok bool) {
	if r == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	r.RefreshesTotal.WithLabelValues(result).Inc()
}

// WriteTextfile writes every metric gathered by g to path in the text exposition format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
