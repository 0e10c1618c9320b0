// Package internaldefs holds the metric names, help texts and histogram bounds
// shared by the exporters, so that Prometheus and OpenTelemetry expose
// identical series.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
