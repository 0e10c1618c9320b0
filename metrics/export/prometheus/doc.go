// Package prometheus exposes blog client metrics through
// prometheus/client_golang.
//
// [NewCollector] turns [blogClient.Client.MetricsSnapshot] into const metrics
// on every scrape. [NewPrometheusExporter] registers that collector in a
// private registry and serves it with promhttp. Counter names are prefixed
// blog_client_ and end in _total; the single histogram is
// blog_client_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate client state.
package prometheus
