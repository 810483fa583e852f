package trace

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const meterName = "github.com/scienceol/labinv/workflow"

var (
	metricsMu   sync.RWMutex
	transitions metric.Int64Counter
	stockMoved  metric.Float64Counter
)

func initMetrics() {
	meter := otel.Meter(meterName)
	t, _ := meter.Int64Counter("labinv.workflow.transitions",
		metric.WithDescription("Workflow state transitions by action and outcome"))
	s, _ := meter.Float64Counter("labinv.inventory.stock_moved",
		metric.WithDescription("Stock amount moved by issue and return"))

	metricsMu.Lock()
	defer metricsMu.Unlock()
	transitions = t
	stockMoved = s
}

// RecordTransition counts one workflow transition and marks it on the
// request span. The counter is a no-op before InitTrace.
func RecordTransition(ctx context.Context, action string, err error) {
	if span := oteltrace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("workflow."+action, oteltrace.WithAttributes(attribute.Bool("ok", err == nil)))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
	}

	metricsMu.RLock()
	c := transitions
	metricsMu.RUnlock()
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
}

func RecordStock(ctx context.Context, direction, itemType string, amount float64) {
	metricsMu.RLock()
	c := stockMoved
	metricsMu.RUnlock()
	if c == nil {
		return
	}
	c.Add(ctx, amount, metric.WithAttributes(
		attribute.String("direction", direction),
		attribute.String("item_type", itemType),
	))
}
