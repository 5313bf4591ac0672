// Package metrics holds the prometheus collectors of the inventory.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockguard"

// Outcomes recorded for a mutation.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
)

// Metrics groups the inventory collectors and the registry they are registered in.
type Metrics struct {
	registry  *prometheus.Registry
	mutations *prometheus.CounterVec
	products  prometheus.Gauge
	lowStock  prometheus.Gauge
	alerts    *prometheus.CounterVec
	reports   *prometheus.CounterVec
}

// New creates the collectors in a private registry together with Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Store mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		products: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "products",
			Help:      "Number of products currently tracked.",
		}),
		lowStock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "low_stock_products",
			Help:      "Number of products with stock below the low-stock threshold.",
		}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Low-stock alerts by publish outcome.",
		}, []string{"outcome"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Rendered reports by format and outcome.",
		}, []string{"format", "outcome"}),
	}
	m.registry.MustRegister(
		m.mutations, m.products, m.lowStock, m.alerts, m.reports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Mutation counts one store mutation.
func (m *Metrics) Mutation(operation, outcome string) {
	m.mutations.WithLabelValues(operation, outcome).Inc()
}

// Table records the current table size and low-stock count.
func (m *Metrics) Table(products, lowStock int) {
	m.products.Set(float64(products))
	m.lowStock.Set(float64(lowStock))
}

// Alert counts one low-stock alert.
func (m *Metrics) Alert(outcome string) {
	m.alerts.WithLabelValues(outcome).Inc()
}

// Report counts one rendered report.
func (m *Metrics) Report(format, outcome string) {
	m.reports.WithLabelValues(format, outcome).Inc()
}
