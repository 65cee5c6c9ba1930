// Package transport is the resilient request layer of the task API client.
//
// Every call gets an X-Request-ID ("<unix-ms>-<random>") and runs under a
// fixed per-attempt timeout. Timeouts, network failures and 5xx responses
// are retried with linear backoff (delay = base × attempt); 4xx responses
// are returned immediately. Whatever fails is surfaced as a
// *domain.RequestError carrying a message, a classification code and the
// HTTP status, so net/http error shapes never reach callers.
package transport
