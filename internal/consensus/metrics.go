package consensus

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"

	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	"github.com/bftledger/ledger/config"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "consensus"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of catch-up requests received, by kind.
	RequestsReceived metrics.Counter
	// Number of requests dropped before a response, by reason.
	RequestsDropped metrics.Counter
	// Number of replies sent, by kind of the sent message.
	RepliesSent metrics.Counter
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := func(extra string) []string {
		names := make([]string, 0, len(labelsAndValues)/2+1)
		for i := 0; i < len(labelsAndValues); i += 2 {
			names = append(names, labelsAndValues[i])
		}
		return append(names, extra)
	}
	return &Metrics{
		RequestsReceived: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "requests_received",
			Help:      "Number of catch-up requests received.",
		}, labels("kind")).With(labelsAndValues...),
		RequestsDropped: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "requests_dropped",
			Help:      "Number of requests dropped without a response.",
		}, labels("reason")).With(labelsAndValues...),
		RepliesSent: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "replies_sent",
			Help:      "Number of messages sent in reply to requests.",
		}, labels("kind")).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		RequestsReceived: discard.NewCounter(),
		RequestsDropped:  discard.NewCounter(),
		RepliesSent:      discard.NewCounter(),
	}
}

// MetricsProvider returns the handler metrics for the given instrumentation
// config: Prometheus metrics when enabled, no-op metrics otherwise.
func MetricsProvider(cfg *config.InstrumentationConfig, labelsAndValues ...string) *Metrics {
	if cfg.Prometheus {
		return PrometheusMetrics(cfg.Namespace, labelsAndValues...)
	}
	return NopMetrics()
}
