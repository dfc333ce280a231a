// Package metrics expone contadores Prometheus de las operaciones del ledger.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ inventory.Observer = (*LedgerMetrics)(nil)

// LedgerMetrics implementa inventory.Observer sobre un registro Prometheus.
type LedgerMetrics struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewLedgerMetrics registra las métricas en reg.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	f := promauto.With(reg)
	return &LedgerMetrics{
		// Labels: op (apply, apply_batch, undo, redo), kind (ADD, REMOVE, MOVE), outcome
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stock_ledger",
			Subsystem: "engine",
			Name:      "operations_total",
			Help:      "Operaciones del ledger por tipo y resultado",
		}, []string{"op", "kind", "outcome"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stock_ledger",
			Subsystem: "engine",
			Name:      "operation_duration_seconds",
			Help:      "Duración de las operaciones del ledger en segundos",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
	}
}

// Observe registra el resultado de una operación.
func (m *LedgerMetrics) Observe(op string, kind entity.TransactionKind, err error, elapsed time.Duration) {
	m.operations.WithLabelValues(op, string(kind), Outcome(err)).Inc()
	m.latency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Outcome clasifica un error del motor en una etiqueta de baja cardinalidad.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrAlreadyInState):
		return "already_in_state"
	case errors.Is(err, domain.ErrCommitFailure):
		return "commit_failure"
	default:
		return "error"
	}
}
