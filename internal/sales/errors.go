package sales

import (
	"errors"
	"fmt"
)

// Validation failures detected before any store access.
var (
	ErrEmptyCart       = errors.New("sale request has no items")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)

// ErrTransactionNotFound is returned by ledger reads for an unknown or
// cross-owner transaction id.
var ErrTransactionNotFound = errors.New("transaction not found")

// ProductNotFoundError reports a cart line whose product id does not exist
// for the requesting owner. Cross-owner access reports the same error.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError reports a decrement that failed because stock was
// below the requested quantity at the moment of application.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// StorageError wraps a failure of the underlying store. The enclosing sale
// is rolled back; callers may treat it as transient and retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
