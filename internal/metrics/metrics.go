// Package metrics exposes storefront counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/domain"
)

// Metrics records order, payment and session guard activity. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	ordersPlaced *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	terminations *prometheus.CounterVec
	payments     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Orders created at checkout, by payment method.",
		}, []string{"payment_method"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_order_transitions_total",
			Help: "Admin status changes and cancellations, by resulting status.",
		}, []string{"status"}),
		terminations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_partition_terminations_total",
			Help: "Sessions ended for crossing into the other account namespace.",
		}, []string{"role"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_payment_outcomes_total",
			Help: "Payment records reaching a status.",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		m.ordersPlaced,
		m.transitions,
		m.terminations,
		m.payments,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) OrderPlaced(method domain.PaymentMethod) {
	if m == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(string(method)).Inc()
}

func (m *Metrics) OrderTransitioned(status domain.OrderStatus) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) PaymentOutcome(status domain.PaymentStatus) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) PartitionTerminated(role string) {
	if m == nil {
		return
	}
	m.terminations.WithLabelValues(role).Inc()
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
