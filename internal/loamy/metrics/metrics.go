// Package metrics defines the prometheus collectors of the loamy service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "loamy"

var (
	// LoopOutcomes counts finished orchestration runs by outcome
	// ("reply" or the failure kind).
	LoopOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loop_outcomes_total",
		Help:      "Finished orchestration runs by outcome.",
	}, []string{"outcome"})

	// LoopSteps observes backend round trips per run.
	LoopSteps = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "loop_steps",
		Help:      "Backend round trips per orchestration run.",
		Buckets:   prometheus.LinearBuckets(1, 1, 12),
	})

	// BackendRequests counts backend round trips by result.
	BackendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Generative backend round trips by result.",
	}, []string{"result"})

	// BackendLatency observes backend round trip duration.
	BackendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Generative backend round trip duration.",
		Buckets:   prometheus.DefBuckets,
	})

	// ToolInvocations counts tool invocations by tool and result.
	ToolInvocations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tool_invocations_total",
		Help:      "Tool invocations by tool and result (ok or error kind).",
	}, []string{"tool", "result"})
)

var allMetrics = []prometheus.Collector{
	LoopOutcomes,
	LoopSteps,
	BackendRequests,
	BackendLatency,
	ToolInvocations,
}

// NewRegistry returns a registry holding the service collectors plus the Go
// runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	for _, c := range allMetrics {
		reg.MustRegister(c)
	}
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler serves the registry in the prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
