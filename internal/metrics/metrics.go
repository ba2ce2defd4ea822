package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsRegistry holds all Prometheus metrics for Bouncer. A nil registry is
// valid and records nothing.
type MetricsRegistry struct {
	registry *prometheus.Registry

	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Gateway Metrics
	EventsTotal     *prometheus.CounterVec
	CommandsTotal   *prometheus.CounterVec
	RoleGrantsTotal *prometheus.CounterVec

	// Business Metrics
	EnrollmentsTotal  prometheus.Counter
	RestorationsTotal *prometheus.CounterVec
	InterviewsTotal   *prometheus.CounterVec
	Records           *prometheus.GaugeVec
	ContextReady      prometheus.Gauge
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &MetricsRegistry{
		registry: reg,

		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bouncer_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bouncer_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),

		// Gateway Metrics
		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bouncer_events_total",
				Help: "Gateway events handled by event type and outcome",
			},
			[]string{"event", "outcome"},
		),
		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bouncer_commands_total",
				Help: "Slash commands executed by name and result",
			},
			[]string{"command", "result"},
		),
		RoleGrantsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bouncer_role_mutations_total",
				Help: "Role add/remove calls against the Discord API by action and result",
			},
			[]string{"action", "result"},
		),

		// Business Metrics
		EnrollmentsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bouncer_enrollments_total",
				Help: "Verification records created",
			},
		),
		RestorationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bouncer_restorations_total",
				Help: "Verified roles restored on rejoin by interview type",
			},
			[]string{"type"},
		),
		InterviewsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bouncer_interviews_total",
				Help: "Interviews concluded by outcome",
			},
			[]string{"outcome"},
		),
		Records: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bouncer_records",
				Help: "Verification records by status",
			},
			[]string{"status"},
		),
		ContextReady: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bouncer_context_ready",
				Help: "1 once the operating context has been resolved",
			},
		),
	}
}

// Handler exposes the registry for scraping
func (m *MetricsRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *MetricsRegistry) ObserveEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(event, outcome).Inc()
}

func (m *MetricsRegistry) ObserveCommand(command, result string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, result).Inc()
}

func (m *MetricsRegistry) ObserveRoleMutation(action string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RoleGrantsTotal.WithLabelValues(action, result).Inc()
}

func (m *MetricsRegistry) ObserveEnrollment() {
	if m == nil {
		return
	}
	m.EnrollmentsTotal.Inc()
}

func (m *MetricsRegistry) ObserveRestoration(interviewType string) {
	if m == nil {
		return
	}
	m.RestorationsTotal.WithLabelValues(interviewType).Inc()
}

func (m *MetricsRegistry) ObserveInterview(outcome string) {
	if m == nil {
		return
	}
	m.InterviewsTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsRegistry) SetRecords(status string, count int64) {
	if m == nil {
		return
	}
	m.Records.WithLabelValues(status).Set(float64(count))
}

func (m *MetricsRegistry) SetContextReady(ready bool) {
	if m == nil {
		return
	}
	if ready {
		m.ContextReady.Set(1)
	} else {
		m.ContextReady.Set(0)
	}
}
