// Package prometheus provides Prometheus collectors for goPolicy metrics.
//
// [NewPrometheusExporter] accepts a [goPolicy.Engine] and exposes an [http.Handler]
// that renders all goPolicy counters and histograms in Prometheus text exposition format.
// Counter names are prefixed gopolicy_*_total; the single histogram is
// gopolicy_check_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate engine state.
package prometheus
