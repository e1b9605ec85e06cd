package metrics_test

import (
	"testing"
	"time"

	"bilbo/internal/core/application/usecases/commands"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observer(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.OrderCreated(order.Sales)
	m.OrderCreated(order.Sales)
	m.SnapshotAppended(order.Purchase, order.Confirmed)
	m.AppendRejected(commands.ReasonAllocationViolation)
	m.ConcurrentRetry()

	assert.InDelta(t, 2, testutil.ToFloat64(m.OrdersCreated.WithLabelValues("SALES")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SnapshotsAppended.WithLabelValues("PURCHASE", "CONFIRMED")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AppendsRejected.WithLabelValues(commands.ReasonAllocationViolation)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ConcurrentRetries), 0)
}

func TestMetrics_AuditAndRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.SetAuditResult(12, 3)
	m.ObserveRequest("/api/v1/orders", "POST", "201", 15*time.Millisecond)

	assert.InDelta(t, 12, testutil.ToFloat64(m.AuditOrders), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.AuditViolations), 0)

	count, err := testutil.GatherAndCount(reg, "bilbo_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.OrderCreated(order.Sales)
		m.SnapshotAppended(order.Sales, order.Confirmed)
		m.AppendRejected("x")
		m.ConcurrentRetry()
		m.SetAuditResult(1, 0)
		m.ObserveRequest("/", "GET", "200", time.Second)
	})
}

func TestMetrics_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)

	assert.Panics(t, func() { metrics.New(reg) })
}
