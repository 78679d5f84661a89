package graph

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var (
	nodeExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mediagraph",
		Name:      "node_executions_total",
		Help:      "Node executions by type and outcome.",
	}, []string{"type", "outcome"})

	nodeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mediagraph",
		Name:      "node_duration_seconds",
		Help:      "Node execution duration by type.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
	}, []string{"type"})
)

// Runner executes nodes with structured logging, a trace span, and
// execution metrics. Nodes run to completion before control returns to the
// host; the only cancellation path is the supplied context.
type Runner struct {
	logger *zap.Logger
}

// NewRunner creates a runner. A nil logger falls back to zap.NewNop().
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger}
}

// Run executes one node invocation.
func (r *Runner) Run(ctx context.Context, node Node, in Inputs) (*Result, error) {
	desc := node.Describe()
	ctx, span := otel.Tracer("mediagraph/graph").Start(ctx, "node.execute")
	span.SetAttributes(
		attribute.String("node.type", desc.Type),
		attribute.String("node.category", desc.Category),
	)
	defer span.End()

	start := time.Now()
	result, err := node.Execute(ctx, in)
	elapsed := time.Since(start)
	nodeDuration.WithLabelValues(desc.Type).Observe(elapsed.Seconds())

	if err != nil {
		nodeExecutions.WithLabelValues(desc.Type, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Error("node execution failed",
			zap.String("type", desc.Type),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, err
	}

	if result == nil {
		// Tolerate host-registered nodes that return (nil, nil).
		result = &Result{}
	}
	nodeExecutions.WithLabelValues(desc.Type, "ok").Inc()
	r.logger.Info("node executed",
		zap.String("type", desc.Type),
		zap.Duration("elapsed", elapsed),
		zap.Int("outputs", len(result.Values)))
	return result, nil
}
