package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemachat_http_requests_total",
			Help: "HTTP requests by method, route template, and status.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schemachat_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route template.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	chatTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemachat_chat_turns_total",
			Help: "Chat turns by the tool the classifier selected.",
		},
		[]string{"tool"},
	)
	toolDispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemachat_tool_dispatches_total",
			Help: "Tool dispatches by tool and outcome (ok, rejected, unavailable).",
		},
		[]string{"tool", "outcome"},
	)
	llmRequestDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "schemachat_llm_request_duration_seconds",
			Help:    "Chat completion round trip latency.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
	llmFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schemachat_llm_failures_total",
			Help: "Failed chat completion calls.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		chatTurnsTotal,
		toolDispatchesTotal,
		llmRequestDurationSeconds,
		llmFailuresTotal,
	)
}

func ObserveChatTurn(tool string) {
	chatTurnsTotal.WithLabelValues(tool).Inc()
}

func ObserveToolDispatch(tool, outcome string) {
	toolDispatchesTotal.WithLabelValues(tool, outcome).Inc()
}

func ObserveLLMRequest(elapsed time.Duration, err error) {
	llmRequestDurationSeconds.Observe(elapsed.Seconds())
	if err != nil {
		llmFailuresTotal.Inc()
	}
}
