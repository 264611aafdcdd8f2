package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	llmCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_calls_total",
			Help: "Total number of LLM calls by agent, provider and outcome.",
		},
		[]string{"agent", "provider", "success"},
	)
	llmCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "LLM call latency in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"agent", "provider"},
	)
	draftsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seo_drafts_total",
			Help: "Total number of SEO drafts created by initial status.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(llmCallsTotal)
	prometheus.MustRegister(llmCallDuration)
	prometheus.MustRegister(draftsTotal)
}

func ObserveLLMCall(agent, provider string, success bool, elapsed time.Duration) {
	llmCallsTotal.WithLabelValues(agent, provider, strconv.FormatBool(success)).Inc()
	llmCallDuration.WithLabelValues(agent, provider).Observe(elapsed.Seconds())
}

func DraftCreated(status string) {
	draftsTotal.WithLabelValues(status).Inc()
}
