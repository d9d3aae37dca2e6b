package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tavolo-pos/inventory-api/internal/application/stock"
)

var _ stock.Metrics = (*StockMetrics)(nil)

// StockMetrics exposes adjustment outcomes as Prometheus counters.
type StockMetrics struct {
	applied  *prometheus.CounterVec
	rejected *prometheus.CounterVec
	retries  prometheus.Counter
}

// New registers the stock counters on the given registerer (pass
// prometheus.DefaultRegisterer in main).
func New(reg prometheus.Registerer) *StockMetrics {
	factory := promauto.With(reg)
	return &StockMetrics{
		applied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_adjustments_applied_total",
			Help: "Successfully applied stock adjustments.",
		}, []string{"operation", "reason"}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_adjustments_rejected_total",
			Help: "Rejected stock adjustments by cause.",
		}, []string{"cause"}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Name: "stock_adjustment_conflict_retries_total",
			Help: "Adjustment attempts retried after a lock conflict.",
		}),
	}
}

func (m *StockMetrics) AdjustmentApplied(operation, reason string) {
	m.applied.WithLabelValues(operation, reason).Inc()
}

func (m *StockMetrics) AdjustmentRejected(cause string) {
	m.rejected.WithLabelValues(cause).Inc()
}

func (m *StockMetrics) ConflictRetried() {
	m.retries.Inc()
}
