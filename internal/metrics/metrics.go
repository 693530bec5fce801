// Package metrics exposes Prometheus collectors for the ledger and its RPC surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitledger/internal/ledger"
)

const namespace = "splitledger"

var _ ledger.Metrics = (*Metrics)(nil)

// Metrics holds every collector on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	expenses        *prometheus.CounterVec
	splitsWritten   prometheus.Counter
	recordDuration  prometheus.Histogram
	balanceReads    *prometheus.CounterVec
	balanceDuration prometheus.Histogram
	rpcRequests     *prometheus.CounterVec
	rpcDuration     *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		expenses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_recorded_total",
			Help:      "RecordExpense calls by outcome (ok, invalid, error).",
		}, []string{"outcome"}),
		splitsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "splits_written_total",
			Help:      "Splits persisted by committed expenses.",
		}),
		recordDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "record_expense_duration_seconds",
			Help:      "Time spent in RecordExpense.",
			Buckets:   prometheus.DefBuckets,
		}),
		balanceReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_reads_total",
			Help:      "GetBalance calls by outcome (ok, invalid, error).",
		}, []string{"outcome"}),
		balanceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "get_balance_duration_seconds",
			Help:      "Time spent in GetBalance.",
			Buckets:   prometheus.DefBuckets,
		}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Connect RPCs by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Connect RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.expenses,
		m.splitsWritten,
		m.recordDuration,
		m.balanceReads,
		m.balanceDuration,
		m.rpcRequests,
		m.rpcDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRecord implements ledger.Metrics.
func (m *Metrics) ObserveRecord(outcome string, splits int, elapsed time.Duration) {
	m.expenses.WithLabelValues(outcome).Inc()
	m.splitsWritten.Add(float64(splits))
	m.recordDuration.Observe(elapsed.Seconds())
}

// ObserveBalance implements ledger.Metrics.
func (m *Metrics) ObserveBalance(outcome string, elapsed time.Duration) {
	m.balanceReads.WithLabelValues(outcome).Inc()
	m.balanceDuration.Observe(elapsed.Seconds())
}

// ObserveRPC records one finished RPC. code is "ok" or a Connect error code.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}
