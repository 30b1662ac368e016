package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"job-portal-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation labels for auth outcome metrics.
const (
	OperationRegister      = "register"
	OperationLogin         = "login"
	OperationUpdateProfile = "update_profile"
)

// Outcome labels shared by every operation. Login failures use their reason.
const (
	OutcomeSuccess  = "success"
	OutcomeConflict = "conflict"
)

// Metrics owns a private registry so tests and multiple servers never collide.
type Metrics struct {
	Registry *prometheus.Registry

	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	authOutcomes *prometheus.CounterVec
}

var _ domain.AuthEvents = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		authOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_outcomes_total",
				Help: "Outcomes of register, login and profile update operations",
			},
			[]string{"operation", "outcome"},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.authOutcomes,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency labelled by route template,
// so path parameters never explode label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) RecordAuthOutcome(operation, outcome string) {
	m.authOutcomes.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) Registered(ctx context.Context, email string) {
	m.RecordAuthOutcome(OperationRegister, OutcomeSuccess)
}

func (m *Metrics) RegisterConflict(ctx context.Context, email string) {
	m.RecordAuthOutcome(OperationRegister, OutcomeConflict)
}

func (m *Metrics) LoginSucceeded(ctx context.Context, email string) {
	m.RecordAuthOutcome(OperationLogin, OutcomeSuccess)
}

func (m *Metrics) LoginFailed(ctx context.Context, email, reason string) {
	m.RecordAuthOutcome(OperationLogin, reason)
}

func (m *Metrics) ProfileUpdated(ctx context.Context, accountID string) {
	m.RecordAuthOutcome(OperationUpdateProfile, OutcomeSuccess)
}
