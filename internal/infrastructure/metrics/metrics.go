package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics owns the application's Prometheus registry and every collector
// registered on it. A dedicated registry keeps the /metrics output free of
// the default Go collectors' noise.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	TasksAutoArchived prometheus.Counter
}

// New builds and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		TasksAutoArchived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "taskboard_tasks_auto_archived_total",
				Help: "Total number of tasks archived by the auto-archive sweep",
			},
		),
	}

	m.Registry.MustRegister(m.RequestsTotal, m.RequestDuration, m.TasksAutoArchived)
	return m
}
