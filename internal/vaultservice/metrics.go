package vaultservice

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const (
	opDeposit  = "deposit"
	opReceive  = "receive"
	opWithdraw = "withdraw"
)

// Metrics counts vault operations by kind and outcome.
type Metrics struct {
	operations *prometheus.CounterVec
	total      prometheus.Gauge
}

// NewMetrics creates the vault collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vault",
			Name:      "operations_total",
			Help:      "Vault state-changing operations by kind and result.",
		}, []string{"operation", "result"}),
		total: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vault",
			Name:      "total_held",
			Help:      "Aggregate balance held by the vault.",
		}),
	}

	reg.MustRegister(m.operations, m.total)

	return m
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}

	m.operations.WithLabelValues(op, result(err)).Inc()
}

func (m *Metrics) setTotal(total decimal.Decimal) {
	if m == nil {
		return
	}

	f, _ := total.Float64()
	m.total.Set(f)
}
