package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"photogrid/internal/eventbus"
)

// Search pipeline Prometheus metrics.
var (
	SearchDispatchedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "photogrid",
			Name:      "search_dispatched_total",
			Help:      "Total number of search requests dispatched to the gateway",
		},
	)

	SearchResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "photogrid",
			Name:      "search_responses_total",
			Help:      "Search responses by reconciliation outcome",
		},
		[]string{"outcome"}, // "applied" / "failed" / "discarded"
	)

	SearchSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "photogrid",
			Name:      "search_skipped_total",
			Help:      "Settled inputs that did not lead to a dispatch",
		},
		[]string{"reason"},
	)

	ResultsClearedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "photogrid",
			Name:      "results_cleared_total",
			Help:      "Times the result set was cleared by empty input",
		},
	)

	SearchLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "photogrid",
			Name:      "search_latency_seconds",
			Help:      "Dispatch-to-reconcile latency of applied searches",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	GatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "photogrid",
			Name:      "gateway_requests_total",
			Help:      "Total number of image API requests",
		},
		[]string{"status"}, // "success" / "network_error" / "decode_error"
	)

	GatewayRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "photogrid",
			Name:      "gateway_request_duration_seconds",
			Help:      "Image API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(SearchDispatchedTotal)
		prometheus.MustRegister(SearchResponsesTotal)
		prometheus.MustRegister(SearchSkippedTotal)
		prometheus.MustRegister(ResultsClearedTotal)
		prometheus.MustRegister(SearchLatency)
		prometheus.MustRegister(GatewayRequestsTotal)
		prometheus.MustRegister(GatewayRequestDuration)
	})
}

// Subscribe feeds the pipeline collectors from bus events.
// The returned functions unsubscribe each handler.
func Subscribe(bus eventbus.EventBus) []func() {
	return []func(){
		bus.Subscribe(eventbus.EventSearchDispatched, func(eventbus.DomainEvent) {
			SearchDispatchedTotal.Inc()
		}),
		bus.Subscribe(eventbus.EventSearchCompleted, func(e eventbus.DomainEvent) {
			SearchResponsesTotal.WithLabelValues("applied").Inc()
			if ev, ok := e.(eventbus.SearchCompletedEvent); ok {
				SearchLatency.Observe(ev.Duration.Seconds())
			}
		}),
		bus.Subscribe(eventbus.EventSearchFailed, func(eventbus.DomainEvent) {
			SearchResponsesTotal.WithLabelValues("failed").Inc()
		}),
		bus.Subscribe(eventbus.EventSearchDiscarded, func(eventbus.DomainEvent) {
			SearchResponsesTotal.WithLabelValues("discarded").Inc()
		}),
		bus.Subscribe(eventbus.EventSearchSkipped, func(e eventbus.DomainEvent) {
			if ev, ok := e.(eventbus.SearchSkippedEvent); ok {
				SearchSkippedTotal.WithLabelValues(ev.Reason).Inc()
			}
		}),
		bus.Subscribe(eventbus.EventResultsCleared, func(eventbus.DomainEvent) {
			ResultsClearedTotal.Inc()
		}),
	}
}
