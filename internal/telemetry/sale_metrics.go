package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SaleMetrics carries the counters the sale processor reports through.
type SaleMetrics struct {
	committed metric.Int64Counter
	rejected  metric.Int64Counter
	lineItems metric.Int64Counter
}

// NewSaleMetrics registers the sale counters on the given meter.
func NewSaleMetrics(meter metric.Meter) (*SaleMetrics, error) {
	committed, err := meter.Int64Counter("sales.committed",
		metric.WithDescription("Sales committed to the ledger"))
	if err != nil {
		return nil, err
	}
	rejected, err := meter.Int64Counter("sales.rejected",
		metric.WithDescription("Sales rejected before or during commit"))
	if err != nil {
		return nil, err
	}
	lineItems, err := meter.Int64Counter("sales.line_items",
		metric.WithDescription("Line items written to the ledger"))
	if err != nil {
		return nil, err
	}
	return &SaleMetrics{committed: committed, rejected: rejected, lineItems: lineItems}, nil
}

// SaleCommitted records one committed sale and its line-item count.
func (m *SaleMetrics) SaleCommitted(ctx context.Context, lineCount int) {
	m.committed.Add(ctx, 1)
	m.lineItems.Add(ctx, int64(lineCount))
}

// SaleRejected records one rejected sale with the rejection reason.
func (m *SaleMetrics) SaleRejected(ctx context.Context, reason string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
