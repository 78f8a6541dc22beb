package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"pos-backend/internal/telemetry"
)

// SaleProcessor turns a SaleRequest into a committed Transaction, or
// rejects it without any observable side effect. All state lives in the
// injected Repository; the processor holds nothing between calls.
type SaleProcessor struct {
	repository Repository
	logger     *zap.Logger
	tracer     trace.Tracer
	metrics    *telemetry.SaleMetrics
}

// NewSaleProcessor creates a new SaleProcessor.
func NewSaleProcessor(repository Repository, logger *zap.Logger, tracer trace.Tracer, metrics *telemetry.SaleMetrics) *SaleProcessor {
	return &SaleProcessor{
		repository: repository,
		logger:     logger,
		tracer:     tracer,
		metrics:    metrics,
	}
}

// ProcessSale validates the cart, snapshots prices, and commits every
// stock decrement together with the ledger entry in one atomic unit.
//
// Rejections before the atomic unit opens (ErrEmptyCart,
// ErrInvalidQuantity, ProductNotFoundError) touch no state. Once the unit
// is open, any failure rolls the whole sale back: no partial decrements,
// no orphan ledger rows.
func (uc *SaleProcessor) ProcessSale(ctx context.Context, req SaleRequest) (*Transaction, error) {
	ctx, span := uc.tracer.Start(ctx, "process_sale")
	defer span.End()

	span.SetAttributes(
		attribute.String("owner_id", req.OwnerID),
		attribute.Int("line_count", len(req.Items)),
	)

	if len(req.Items) == 0 {
		uc.metrics.SaleRejected(ctx, "empty_cart")
		return nil, ErrEmptyCart
	}
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			uc.metrics.SaleRejected(ctx, "invalid_quantity")
			return nil, fmt.Errorf("%w: product %s requested %d", ErrInvalidQuantity, line.ProductID, line.Quantity)
		}
	}

	// Resolve each line and snapshot its unit price. Later catalog edits
	// never change what this sale charges.
	txnID := uuid.New().String()
	items := make([]LineItem, 0, len(req.Items))
	total := decimal.Zero
	for _, line := range req.Items {
		pricing, err := uc.repository.GetProductPricing(ctx, line.ProductID, req.OwnerID)
		if err != nil {
			var notFound *ProductNotFoundError
			if errors.As(err, &notFound) {
				uc.metrics.SaleRejected(ctx, "product_not_found")
				return nil, err
			}
			return nil, uc.storageFault(ctx, span, "resolve product", err)
		}

		item := NewLineItem(uuid.New().String(), txnID, pricing.ProductID, pricing.Name, line.Quantity, pricing.UnitPrice)
		total = total.Add(item.Subtotal)
		items = append(items, item)
	}

	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return nil, uc.storageFault(ctx, span, "begin sale", err)
	}
	defer tx.Rollback()

	// Decrement in ascending product-id order regardless of cart order, so
	// two sales touching the same products cannot deadlock each other.
	for _, idx := range lockOrder(items) {
		item := items[idx]
		if err := uc.repository.DecrementStock(ctx, tx, item.ProductID, req.OwnerID, item.Quantity); err != nil {
			var short *InsufficientStockError
			if errors.As(err, &short) {
				uc.metrics.SaleRejected(ctx, "insufficient_stock")
				uc.logger.Info("sale rejected, insufficient stock",
					zap.String("owner_id", req.OwnerID),
					zap.String("product_id", short.ProductID),
					zap.Int("requested", short.Requested),
					zap.Int("available", short.Available),
				)
				return nil, err
			}
			var notFound *ProductNotFoundError
			if errors.As(err, &notFound) {
				uc.metrics.SaleRejected(ctx, "product_not_found")
				return nil, err
			}
			return nil, uc.storageFault(ctx, span, "decrement stock", err)
		}
	}

	txn := &Transaction{
		ID:              txnID,
		OwnerID:         req.OwnerID,
		TotalAmount:     total,
		TransactionDate: time.Now().UTC(),
		Items:           items,
	}
	if err := uc.repository.CreateTransaction(ctx, tx, txn); err != nil {
		return nil, uc.storageFault(ctx, span, "write transaction", err)
	}
	if err := uc.repository.CreateLineItems(ctx, tx, items); err != nil {
		return nil, uc.storageFault(ctx, span, "write line items", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, uc.storageFault(ctx, span, "commit sale", err)
	}

	uc.metrics.SaleCommitted(ctx, len(items))
	uc.logger.Info("sale committed",
		zap.String("transaction_id", txn.ID),
		zap.String("owner_id", txn.OwnerID),
		zap.String("total_amount", txn.TotalAmount.String()),
		zap.Int("line_count", len(items)),
	)
	span.SetAttributes(attribute.String("transaction_id", txn.ID))
	return txn, nil
}

// GetSale reads one committed transaction scoped to the owner.
func (uc *SaleProcessor) GetSale(ctx context.Context, transactionID, ownerID string) (*Transaction, error) {
	txn, err := uc.repository.GetTransaction(ctx, transactionID, ownerID)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			return nil, err
		}
		return nil, &StorageError{Op: "read transaction", Err: err}
	}
	return txn, nil
}

// ListSales reads the owner's committed transactions, newest first.
func (uc *SaleProcessor) ListSales(ctx context.Context, ownerID string) ([]Transaction, error) {
	txns, err := uc.repository.ListTransactions(ctx, ownerID)
	if err != nil {
		return nil, &StorageError{Op: "list transactions", Err: err}
	}
	return txns, nil
}

func (uc *SaleProcessor) storageFault(ctx context.Context, span trace.Span, op string, err error) error {
	uc.metrics.SaleRejected(ctx, "storage_fault")
	span.RecordError(err)
	uc.logger.Error("sale aborted on storage fault", zap.String("op", op), zap.Error(err))
	return &StorageError{Op: op, Err: err}
}

// lockOrder returns the line indexes sorted by product id ascending; the
// sort is stable so duplicate ids keep their relative cart order.
func lockOrder(items []LineItem) []int {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return items[order[a]].ProductID < items[order[b]].ProductID
	})
	return order
}
