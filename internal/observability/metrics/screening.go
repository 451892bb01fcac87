package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/resume-screener/internal/core/domain"
)

// screeningCollectors count pipeline runs; shared by the api and worker registries.
type screeningCollectors struct {
	service  string
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newScreeningCollectors(service string, registry *prometheus.Registry) *screeningCollectors {
	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screener",
			Subsystem: "pipeline",
			Name:      "screenings_total",
			Help:      "Total screenings by document format, outcome and predicted category.",
		},
		[]string{"service", "format", "status", "category"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "screener",
			Subsystem: "pipeline",
			Name:      "screening_duration_seconds",
			Help:      "Pipeline duration in seconds by document format.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"service", "format"},
	)
	registry.MustRegister(total, duration)
	return &screeningCollectors{service: service, total: total, duration: duration}
}

func (c *screeningCollectors) observe(format domain.Format, category string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = domain.KindName(err)
		category = ""
	}
	if format == "" {
		format = domain.FormatUnsupported
	}
	c.total.WithLabelValues(c.service, string(format), status, category).Inc()
	c.duration.WithLabelValues(c.service, string(format)).Observe(duration.Seconds())
}
