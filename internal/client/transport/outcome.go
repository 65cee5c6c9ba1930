package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/taskdeck-go/internal/core/domain"
	"github.com/yndnr/taskdeck-go/internal/telemetry/metric"
)

// Outcome classifies a single dispatch attempt.
type Outcome int

const (
	// Success means a response below 400 was received.
	Success Outcome = iota
	// Retryable means the attempt failed transiently: timeout, network, or 5xx.
	Retryable
	// Terminal means the attempt failed and retrying would not help.
	Terminal
)

// String returns the metric label for o.
func (o Outcome) String() string {
	switch o {
	case Success:
		return metric.OutcomeSuccess
	case Retryable:
		return metric.OutcomeRetryable
	default:
		return metric.OutcomeTerminal
	}
}

// ClassifyStatus maps an HTTP status to an Outcome.
func ClassifyStatus(status int) Outcome {
	switch {
	case status < 400:
		return Success
	case status >= 500:
		return Retryable
	default:
		return Terminal
	}
}

func codeForStatus(status int) domain.ErrorCode {
	switch {
	case status == http.StatusUnauthorized:
		return domain.CodeUnauthorized
	case status == http.StatusTooManyRequests:
		return domain.CodeRateLimited
	case status >= 500:
		return domain.CodeServer
	default:
		return domain.CodeClient
	}
}

// statusError builds the uniform error for a non-success response.
func statusError(resp *Response) *domain.RequestError {
	msg := serverMessage(resp.Body)
	if msg == "" {
		msg = domain.MessageGeneric
	}
	e := &domain.RequestError{
		Message: msg,
		Code:    codeForStatus(resp.Status),
		Status:  resp.Status,
	}
	if resp.Status == http.StatusTooManyRequests {
		e.RetryAfter = retryAfter(resp)
	}
	return e
}

// classifyTransportError turns a failed round trip into an Outcome and the
// uniform error. parent is the caller's context; a per-attempt deadline
// firing while parent is still live counts as a transient timeout.
func classifyTransportError(parent context.Context, err error) (Outcome, *domain.RequestError) {
	if perr := parent.Err(); perr != nil {
		if errors.Is(perr, context.DeadlineExceeded) {
			return Terminal, &domain.RequestError{Message: domain.MessageTimeout, Code: domain.CodeTimeout, Cause: err}
		}
		return Terminal, &domain.RequestError{Message: "request canceled", Code: domain.CodeCanceled, Cause: err}
	}

	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return Retryable, &domain.RequestError{Message: domain.MessageTimeout, Code: domain.CodeTimeout, Cause: err}
	}
	return Retryable, &domain.RequestError{Message: domain.MessageNetwork, Code: domain.CodeNetwork, Cause: err}
}

// serverMessage extracts a message from a JSON error body, looking at
// "error", "message" and "detail" in that order. Non-string values are
// skipped.
func serverMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"error", "message", "detail"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// retryAfter reads the server-requested delay from the body field
// "retry_after" (seconds) or the Retry-After header. Zero means absent.
func retryAfter(resp *Response) time.Duration {
	var body struct {
		RetryAfter json.Number `json:"retry_after"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil && body.RetryAfter != "" {
		if secs, err := body.RetryAfter.Float64(); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}

	h := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(h); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
