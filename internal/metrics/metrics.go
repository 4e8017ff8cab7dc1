package metrics

import (
	"errors"
	"strconv"
	"time"

	"yamdb/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	PermissionDeniedTotal *prometheus.CounterVec
	SignupsTotal          *prometheus.CounterVec
	TokensIssuedTotal     prometheus.Counter
	MailFailuresTotal     prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers all collectors on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yamdb_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yamdb_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		PermissionDeniedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yamdb_permission_denied_total",
				Help: "Requests rejected by the permission evaluator",
			},
			[]string{"method", "route"},
		),
		SignupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yamdb_signups_total",
				Help: "Signup requests by outcome (created, resent, rejected)",
			},
			[]string{"outcome"},
		),
		TokensIssuedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yamdb_tokens_issued_total",
			Help: "Bearer tokens issued after a confirmation code exchange",
		}),
		MailFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yamdb_mail_failures_total",
			Help: "Confirmation mails that could not be handed to the mail backend",
		}),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PermissionDeniedTotal,
		m.SignupsTotal,
		m.TokensIssuedTotal,
		m.MailFailuresTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry for tests and custom exporters
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware records request count and latency per matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())

		// handlers attach their error with c.Error
		for _, e := range c.Errors {
			if errors.Is(e.Err, shared.ErrPermissionDenied) {
				m.ObservePermissionDenied(c.Request.Method, route)
				break
			}
		}
	}
}

// ObservePermissionDenied counts one rejected request
func (m *Metrics) ObservePermissionDenied(method, route string) {
	if m == nil {
		return
	}
	m.PermissionDeniedTotal.WithLabelValues(method, route).Inc()
}

// ObserveSignup counts one signup by outcome
func (m *Metrics) ObserveSignup(outcome string) {
	if m == nil {
		return
	}
	m.SignupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveTokenIssued counts one issued token
func (m *Metrics) ObserveTokenIssued() {
	if m == nil {
		return
	}
	m.TokensIssuedTotal.Inc()
}

// ObserveMailFailure counts one failed mail handoff
func (m *Metrics) ObserveMailFailure() {
	if m == nil {
		return
	}
	m.MailFailuresTotal.Inc()
}
