package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AnalysisTotal counts LLM-backed analysis calls by kind and outcome.
	AnalysisTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crisisnav",
		Subsystem: "api",
		Name:      "analysis_total",
		Help:      "Total number of AI analysis calls, labeled by analysis kind and result.",
	}, []string{"kind", "result"})

	// ReportsSubmittedTotal counts accepted emergency reports by severity.
	ReportsSubmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crisisnav",
		Subsystem: "api",
		Name:      "reports_submitted_total",
		Help:      "Total number of emergency reports accepted, labeled by AI-assigned severity.",
	}, []string{"severity"})

	// NotificationsTotal counts notification deliveries by channel and outcome.
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crisisnav",
		Subsystem: "notify",
		Name:      "notifications_total",
		Help:      "Total number of notification attempts, labeled by channel and result.",
	}, []string{"channel", "result"})

	// MonitoringScrapesTotal counts news source fetches by outcome.
	MonitoringScrapesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crisisnav",
		Subsystem: "monitor",
		Name:      "scrapes_total",
		Help:      "Total number of news source fetch attempts, labeled by result.",
	}, []string{"result"})

	// RequestDurationSeconds is end-to-end handler time per route.
	RequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "crisisnav",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "End-to-end time to serve an API request.",
		// Keep buckets fairly coarse to avoid high-cardinality time series.
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60},
	}, []string{"route"})

	// RabbitMQConnected is 1 when the event publisher considers itself connected.
	RabbitMQConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "crisisnav",
		Subsystem: "events",
		Name:      "rabbitmq_connected",
		Help:      "Whether the event publisher is currently connected to RabbitMQ (best-effort).",
	})
)

// Register registers service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalysisTotal,
			ReportsSubmittedTotal,
			NotificationsTotal,
			MonitoringScrapesTotal,
			RequestDurationSeconds,
			RabbitMQConnected,
		)
	})
}

// RecordAnalysis increments the analysis counter for one call outcome.
func RecordAnalysis(kind, result string) {
	AnalysisTotal.WithLabelValues(kind, result).Inc()
}

// ObserveRequest records one request duration for a route.
func ObserveRequest(route string, start time.Time) {
	RequestDurationSeconds.WithLabelValues(route).Observe(time.Since(start).Seconds())
}
