// Package metrics exposes Prometheus counters for the auth flows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation names used as the "operation" label.
const (
	OpSignup    = "signup"
	OpLogin     = "login"
	OpValidate  = "validate"
	OpRefresh   = "refresh"
	OpLogout    = "logout"
	OpLogoutAll = "logout_all"
	OpActivate  = "activate"
)

// Recorder is what the service and HTTP layers report to.
type Recorder interface {
	RecordOperation(op string, err error, d time.Duration)
	RecordSessionsRevoked(n int64)
	RecordSignupRollback(ok bool)
	RecordHTTPStatus(statusCode int)
}

type Collector struct {
	operations      *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	sessionsRevoked prometheus.Counter
	rollbacks       *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
}

// NewCollector creates the collector and registers it on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atrijum_auth_operations_total",
			Help: "Auth operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "atrijum_auth_operation_duration_seconds",
			Help:    "Auth operation latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		sessionsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atrijum_sessions_revoked_total",
			Help: "Session tokens deleted by logout.",
		}),
		rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atrijum_signup_rollbacks_total",
			Help: "Signup compensations by result.",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atrijum_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.operations,
		c.latency,
		c.sessionsRevoked,
		c.rollbacks,
		c.httpStatus,
	)

	return c
}

func (c *Collector) RecordOperation(op string, err error, d time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.operations.WithLabelValues(op, outcome).Inc()
	c.latency.WithLabelValues(op).Observe(d.Seconds())
}

func (c *Collector) RecordSessionsRevoked(n int64) {
	if n > 0 {
		c.sessionsRevoked.Add(float64(n))
	}
}

func (c *Collector) RecordSignupRollback(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	c.rollbacks.WithLabelValues(result).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordOperation(string, error, time.Duration) {}
func (Nop) RecordSessionsRevoked(int64)                  {}
func (Nop) RecordSignupRollback(bool)                    {}
func (Nop) RecordHTTPStatus(int)                         {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
