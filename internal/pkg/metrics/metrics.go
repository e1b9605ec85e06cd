// Package metrics exposes the service's Prometheus instruments.
package metrics

import (
	"time"

	"bilbo/internal/core/application/usecases/commands"
	"bilbo/internal/core/domain/model/order"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ commands.Observer = (*Metrics)(nil)

// Metrics holds every instrument of the service. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	OrdersCreated     *prometheus.CounterVec
	SnapshotsAppended *prometheus.CounterVec
	AppendsRejected   *prometheus.CounterVec
	ConcurrentRetries prometheus.Counter

	// Allocation violations found by the last ledger audit.
	AuditViolations prometheus.Gauge
	AuditOrders     prometheus.Gauge

	// Snapshot cache lookups by result: hit, miss, error.
	CacheLookups *prometheus.CounterVec

	RequestDuration *prometheus.HistogramVec
}

// New registers all instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OrdersCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bilbo_orders_created_total",
			Help: "Orders created by kind",
		}, []string{"kind"}),

		SnapshotsAppended: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bilbo_snapshots_appended_total",
			Help: "Snapshots appended by order kind and resulting status",
		}, []string{"kind", "status"}),

		AppendsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bilbo_appends_rejected_total",
			Help: "Snapshot appends that failed, by reason",
		}, []string{"reason"}),

		ConcurrentRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "bilbo_append_concurrent_retries_total",
			Help: "Append attempts repeated after an optimistic concurrency conflict",
		}),

		AuditViolations: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bilbo_ledger_audit_violations",
			Help: "Allocation violations found by the most recent ledger audit",
		}),

		AuditOrders: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bilbo_ledger_audit_orders_checked",
			Help: "Orders checked by the most recent ledger audit",
		}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bilbo_snapshot_cache_lookups_total",
			Help: "Snapshot cache lookups by result",
		}, []string{"result"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bilbo_http_request_duration_seconds",
			Help:    "HTTP request duration by route, method and status code",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method", "code"}),
	}
}

func (m *Metrics) OrderCreated(kind order.Kind) {
	if m != nil {
		m.OrdersCreated.WithLabelValues(kind.String()).Inc()
	}
}

func (m *Metrics) SnapshotAppended(kind order.Kind, status order.Status) {
	if m != nil {
		m.SnapshotsAppended.WithLabelValues(kind.String(), status.String()).Inc()
	}
}

func (m *Metrics) AppendRejected(reason string) {
	if m != nil {
		m.AppendsRejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) ConcurrentRetry() {
	if m != nil {
		m.ConcurrentRetries.Inc()
	}
}

// SetAuditResult publishes the outcome of a ledger audit.
func (m *Metrics) SetAuditResult(ordersChecked, violations int) {
	if m != nil {
		m.AuditOrders.Set(float64(ordersChecked))
		m.AuditViolations.Set(float64(violations))
	}
}

// ObserveRequest records the duration of one HTTP request.
func (m *Metrics) ObserveRequest(route, method, code string, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(route, method, code).Observe(d.Seconds())
	}
}
