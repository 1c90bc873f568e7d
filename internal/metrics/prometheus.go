// Package metrics exposes WingWifi Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wingwifi"

// Outcomes used as label values.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Voucher operations used as label values.
const (
	OpCreate = "create"
	OpRevoke = "revoke"
	OpPrint  = "print"
	OpList   = "list"
)

var (
	once     sync.Once
	registry *Registry
)

// Registry holds all WingWifi metrics.
type Registry struct {
	// HTTP
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// API browser
	Actions        *prometheus.CounterVec
	ControllerTime *prometheus.HistogramVec
	Logins         *prometheus.CounterVec

	// Voucher desk
	VoucherOps      *prometheus.CounterVec
	VouchersCreated prometheus.Counter

	// Sessions
	Sessions prometheus.Gauge

	gatherer prometheus.Gatherer
}

// Get returns the process-wide registry backed by the default Prometheus registerer.
func Get() *Registry {
	once.Do(func() {
		registry = NewRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	})
	return registry
}

// NewRegistry registers the WingWifi metrics with reg.
func NewRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Registry {
	f := promauto.With(reg)
	r := &Registry{gatherer: gatherer}

	r.HTTPRequests = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"})

	r.HTTPLatency = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	r.Actions = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_total",
		Help:      "API browser actions dispatched, by action and outcome.",
	}, []string{"action", "outcome"})

	r.ControllerTime = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "controller_request_duration_seconds",
		Help:      "Time spent waiting on the UniFi controller, by phase.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"phase"})

	r.Logins = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Login attempts against the controller or the admin gate.",
	}, []string{"target", "outcome"})

	r.VoucherOps = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "voucher_operations_total",
		Help:      "Voucher desk operations by operation and outcome.",
	}, []string{"op", "outcome"})

	r.VouchersCreated = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vouchers_created_total",
		Help:      "Vouchers issued through the voucher desk.",
	})

	r.Sessions = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Browser sessions currently stored.",
	})

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// RecordHTTP records one served request.
func (r *Registry) RecordHTTP(route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	r.HTTPLatency.WithLabelValues(route).Observe(d.Seconds())
}

// RecordAction records a dispatched action.
func (r *Registry) RecordAction(action string, failed bool) {
	if r == nil {
		return
	}
	r.Actions.WithLabelValues(action, outcome(!failed)).Inc()
}

// ObserveController records time spent in a controller phase (login, load).
func (r *Registry) ObserveController(phase string, d time.Duration) {
	if r == nil || d <= 0 {
		return
	}
	r.ControllerTime.WithLabelValues(phase).Observe(d.Seconds())
}

// RecordLogin records a login attempt; target is "controller" or "admin".
func (r *Registry) RecordLogin(target string, ok bool) {
	if r == nil {
		return
	}
	r.Logins.WithLabelValues(target, outcome(ok)).Inc()
}

// RecordVoucherOp records a voucher desk operation.
func (r *Registry) RecordVoucherOp(op string, ok bool) {
	if r == nil {
		return
	}
	r.VoucherOps.WithLabelValues(op, outcome(ok)).Inc()
}

// AddVouchersCreated counts issued vouchers.
func (r *Registry) AddVouchersCreated(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.VouchersCreated.Add(float64(n))
}

// SetSessions updates the active session gauge.
func (r *Registry) SetSessions(n int) {
	if r == nil {
		return
	}
	r.Sessions.Set(float64(n))
}

func outcome(ok bool) string {
	if ok {
		return OutcomeOK
	}
	return OutcomeFailed
}
