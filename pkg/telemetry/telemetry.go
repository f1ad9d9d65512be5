// Package telemetry exposes Prometheus counters and histograms for
// parse throughput and error rates. Disabled by default: nothing in
// this package registers itself with the default registry, so a host
// that never calls Registry() pays no cost and starts no server.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	FilesParsedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "touchstone_files_parsed_total",
		Help: "Total number of Touchstone files or streams parsed.",
	})

	ParseErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "touchstone_parse_errors_total",
		Help: "Total number of fatal parse errors, by error kind.",
	}, []string{"kind"})

	SweepPointsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "touchstone_sweep_points_total",
		Help: "Total number of sweep points (data + noise) parsed.",
	})

	ParseDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "touchstone_parse_duration_seconds",
		Help:    "Wall-clock time from a session's first Receive call to the end of its End call.",
		Buckets: prometheus.DefBuckets,
	})
)

var registry *prometheus.Registry

// Registry returns the package's Prometheus registry, creating and
// registering the instruments on first call. A host exposes it over
// /metrics with promhttp.HandlerFor.
func Registry() *prometheus.Registry {
	if registry != nil {
		return registry
	}
	registry = prometheus.NewRegistry()
	registry.MustRegister(FilesParsedTotal, ParseErrorsTotal, SweepPointsTotal, ParseDurationSeconds)
	return registry
}

// RecordError increments the error counter for the given taxonomy
// kind name ("syntax", "semantic", "unsupported", "resource exhaustion").
func RecordError(kind string) {
	ParseErrorsTotal.WithLabelValues(kind).Inc()
}
