package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics counts engine operations and the value they move.
type EngineMetrics struct {
	operations     *prometheus.CounterVec
	feesCollected  prometheus.Counter
	escrowReleased *prometheus.CounterVec
}

var (
	engineOnce     sync.Once
	engineRegistry *EngineMetrics
)

// Engine returns the process-wide collectors, registering them on first use.
func Engine() *EngineMetrics {
	engineOnce.Do(func() {
		engineRegistry = NewEngineMetrics()
		prometheus.MustRegister(
			engineRegistry.operations,
			engineRegistry.feesCollected,
			engineRegistry.escrowReleased,
		)
	})
	return engineRegistry
}

// NewEngineMetrics builds unregistered collectors.
func NewEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gigpay_operations_total",
			Help: "Engine operations by name and outcome code.",
		}, []string{"op", "outcome"}),
		feesCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gigpay_fees_collected_total",
			Help: "Platform fees transferred to the owner, in the smallest currency unit.",
		}),
		escrowReleased: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gigpay_escrow_released_total",
			Help: "Escrow released out of contracts by ledger entry kind.",
		}, []string{"kind"}),
	}
}

func (m *EngineMetrics) ObserveOperation(op, outcome string) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

func (m *EngineMetrics) ObserveFee(amount uint64) {
	if m == nil || amount == 0 {
		return
	}
	m.feesCollected.Add(float64(amount))
}

func (m *EngineMetrics) ObserveRelease(kind string, amount uint64) {
	if m == nil || amount == 0 {
		return
	}
	m.escrowReleased.WithLabelValues(kind).Add(float64(amount))
}
