package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/syedsanaulhaq/scl/pkg/httpx"
)

// Login results.
const (
	loginSuccess     = "success"
	loginInvalid     = "invalid_credentials"
	loginInactive    = "account_inactive"
	loginRejected    = "validation_error"
	loginServerError = "error"
)

// Metrics owns a private registry so tests can build many routers without
// duplicate registration panics.
type Metrics struct {
	registry *prometheus.Registry

	gateDecisions *prometheus.CounterVec
	logins        *prometheus.CounterVec
	registrations *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scl",
			Subsystem: "auth",
			Name:      "gate_decisions_total",
			Help:      "Identity gate decisions by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scl",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scl",
			Subsystem: "auth",
			Name:      "registrations_total",
			Help:      "Self-service registrations by result.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scl",
			Subsystem: "auth",
			Name:      "token_refreshes_total",
			Help:      "Access token refreshes by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.gateDecisions,
		m.logins,
		m.registrations,
		m.refreshes,
	)
	return m
}

// ObserveGate is an httpx.Observer.
func (m *Metrics) ObserveGate(_ *http.Request, o httpx.Outcome) {
	outcome := "authorized"
	if !o.Authorized {
		outcome = o.Code
	}
	m.gateDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
