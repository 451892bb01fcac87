package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/resume-screener/internal/core/domain"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	messageTotal    *prometheus.CounterVec
	messageDuration *prometheus.HistogramVec
	messageInFlight prometheus.Gauge
	payloadBytes    prometheus.Histogram

	screenings *screeningCollectors
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	messageTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screener",
			Subsystem: "worker",
			Name:      "requests_total",
			Help:      "Total screening requests handled by status.",
		},
		[]string{"service", "status"},
	)
	messageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "screener",
			Subsystem: "worker",
			Name:      "request_duration_seconds",
			Help:      "Screening request handling duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	messageInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "screener",
			Subsystem: "worker",
			Name:      "requests_in_flight",
			Help:      "Number of in-flight screening requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	payloadBytes := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "screener",
			Subsystem: "worker",
			Name:      "payload_bytes",
			Help:      "Size of received resume payloads.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(messageTotal, messageDuration, messageInFlight, payloadBytes)

	return &WorkerMetrics{
		registry:        registry,
		messageTotal:    messageTotal,
		messageDuration: messageDuration,
		messageInFlight: messageInFlight,
		payloadBytes:    payloadBytes,
		screenings:      newScreeningCollectors(service, registry),
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartRequest(payloadSize int) {
	m.messageInFlight.Inc()
	m.payloadBytes.Observe(float64(payloadSize))
}

func (m *WorkerMetrics) FinishRequest(service string, duration time.Duration, err error) {
	m.messageInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.messageTotal.WithLabelValues(service, status).Inc()
	m.messageDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

// ObserveScreening implements ports.ScreeningObserver.
func (m *WorkerMetrics) ObserveScreening(format domain.Format, category string, duration time.Duration, err error) {
	m.screenings.observe(format, category, duration, err)
}
