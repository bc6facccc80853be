package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all the prometheus metrics for the application
type Metrics struct {
	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	databaseQueryDuration *prometheus.HistogramVec
	activeSessions        prometheus.Gauge
	errorTotal            *prometheus.CounterVec
	activityRecordedTotal *prometheus.CounterVec
	chatbotQueriesTotal   *prometheus.CounterVec
	importProcessedTotal  *prometheus.CounterVec
}

// Config holds configuration for metrics
type Config struct {
	Enabled          bool
	MetricsNamespace string
}

// DefaultConfig returns a default configuration for metrics
func DefaultConfig() *Config {
	return &Config{
		Enabled:          true,
		MetricsNamespace: "chatbot_backoffice",
	}
}

// New creates a new metrics instance
func New(cfg *Config) *Metrics {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if !cfg.Enabled {
		return nil
	}

	m := &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		databaseQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "database_query_duration_seconds",
				Help:      "Duration of database queries in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		activeSessions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "active_sessions",
				Help:      "Number of active sessions",
			},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "errors_total",
				Help:      "Total number of errors",
			},
			[]string{"type"},
		),
		activityRecordedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "activities_recorded_total",
				Help:      "Total number of recorded user activities",
			},
			[]string{"action", "entity_type"},
		),
		chatbotQueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "chatbot_queries_total",
				Help:      "Total number of public chatbot queries",
			},
			[]string{"endpoint"},
		),
		importProcessedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "imports_processed_total",
				Help:      "Total number of processed bulk imports",
			},
			[]string{"status"},
		),
	}

	return m
}

// RecordHTTPRequest records a completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDatabaseQuery records a database query
func (m *Metrics) RecordDatabaseQuery(operation, table string, duration time.Duration) {
	if m == nil {
		return
	}

	m.databaseQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordError increments the error counter
func (m *Metrics) RecordError(errorType string) {
	if m == nil {
		return
	}

	m.errorTotal.WithLabelValues(errorType).Inc()
}

// SetActiveSessions sets the number of active sessions
func (m *Metrics) SetActiveSessions(count int) {
	if m == nil {
		return
	}

	m.activeSessions.Set(float64(count))
}

// RecordActivity increments the recorded activity counter
func (m *Metrics) RecordActivity(action, entityType string) {
	if m == nil {
		return
	}

	m.activityRecordedTotal.WithLabelValues(action, entityType).Inc()
}

// RecordChatbotQuery increments the public query counter
func (m *Metrics) RecordChatbotQuery(endpoint string) {
	if m == nil {
		return
	}

	m.chatbotQueriesTotal.WithLabelValues(endpoint).Inc()
}

// RecordImportProcessed increments the import counter
func (m *Metrics) RecordImportProcessed(status string) {
	if m == nil {
		return
	}

	m.importProcessedTotal.WithLabelValues(status).Inc()
}

// Handler returns a handler for exposing metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}

	return promhttp.Handler()
}
