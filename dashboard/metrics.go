package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the dashboard's Prometheus collectors.
type Metrics struct {
	Predictions *prometheus.CounterVec
	Advice      *prometheus.CounterVec
	Latency     *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wattwise",
			Name:      "predictions_total",
			Help:      "Model predictions served, by endpoint.",
		}, []string{"endpoint"}),
		Advice: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wattwise",
			Name:      "advice_total",
			Help:      "Advice answers, by source (service or fallback).",
		}, []string{"source"}),
		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wattwise",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}
