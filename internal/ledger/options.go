package ledger

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/mmynk/splitledger/internal/ledger"

// Outcome labels passed to Metrics.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics receives one observation per ledger operation.
type Metrics interface {
	ObserveRecord(outcome string, splits int, elapsed time.Duration)
	ObserveBalance(outcome string, elapsed time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) ObserveRecord(string, int, time.Duration) {}
func (nopMetrics) ObserveBalance(string, time.Duration)     {}

type config struct {
	logger  *slog.Logger
	metrics Metrics
	tracer  trace.Tracer
}

// Option configures ExpenseService and BalanceAggregator.
type Option func(*config)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMetrics sets the metrics sink. Defaults to a no-op.
func WithMetrics(m Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithTracer sets the tracer. Defaults to the global OpenTelemetry provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *config) { c.tracer = t }
}

func newConfig(opts []Option) config {
	c := config{
		logger:  slog.Default(),
		metrics: nopMetrics{},
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
