// Package metric provides Prometheus metrics for the taskdeck client.
//
// The client is short-lived, so metrics are not scraped over HTTP. They are
// collected on a private registry and written in the text exposition
// format to a file for the node-exporter textfile collector.
//
// Metrics include:
//
//   - Request counts per method and outcome
//   - Request latency histograms
//   - Retry counters by reason (transient, rate limit, unauthorized)
//   - Token refresh results
package metric
