package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records order lifecycle counters.
type OrderMetrics struct {
	created *prometheus.CounterVec
	paid    prometheus.Counter
	failed  prometheus.Counter
	deleted prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, labeled by order type.",
	}, []string{"type"})
	paid := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_paid_total",
		Help: "Orders confirmed as paid via webhook.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_payment_failed_total",
		Help: "Orders whose payment attempt failed.",
	})
	deleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_deleted_total",
		Help: "Orders deleted by their owner or an admin.",
	})
	reg.MustRegister(created, paid, failed, deleted)
	return &OrderMetrics{
		created: created,
		paid:    paid,
		failed:  failed,
		deleted: deleted,
	}
}

// IncCreated increments the created counter for the given order type.
func (m *OrderMetrics) IncCreated(orderType string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(orderType)).Inc()
}

// IncPaid increments the paid counter.
func (m *OrderMetrics) IncPaid() {
	if m == nil || m.paid == nil {
		return
	}
	m.paid.Inc()
}

// IncPaymentFailed increments the payment failure counter.
func (m *OrderMetrics) IncPaymentFailed() {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.Inc()
}

// IncDeleted increments the deleted counter.
func (m *OrderMetrics) IncDeleted() {
	if m == nil || m.deleted == nil {
		return
	}
	m.deleted.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
