package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLine is one (product, quantity) pair in a sale request.
type SaleLine struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// SaleRequest is the ephemeral input to the sale processor. OwnerID comes
// from the authenticated session, never from the request body.
type SaleRequest struct {
	OwnerID string
	Items   []SaleLine
}

// Transaction is one committed sale. Immutable once written.
type Transaction struct {
	ID              string          `json:"id" db:"id"`
	OwnerID         string          `json:"owner_id" db:"owner_id"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	TransactionDate time.Time       `json:"transaction_date" db:"transaction_date"`
	Items           []LineItem      `json:"items"`
}

// LineItem is one line of a committed sale. UnitPrice is the product price
// as snapshotted at sale time; later catalog edits do not touch it.
type LineItem struct {
	ID            string          `json:"id" db:"id"`
	TransactionID string          `json:"transaction_id" db:"transaction_id"`
	ProductID     string          `json:"product_id" db:"product_id"`
	ProductName   string          `json:"product_name" db:"product_name"`
	Quantity      int             `json:"quantity" db:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" db:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// NewLineItem builds a line item with its subtotal computed from the
// snapshotted unit price. Subtotal arithmetic is exact decimal.
func NewLineItem(id, transactionID, productID, productName string, quantity int, unitPrice decimal.Decimal) LineItem {
	return LineItem{
		ID:            id,
		TransactionID: transactionID,
		ProductID:     productID,
		ProductName:   productName,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		Subtotal:      unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// ProductPricing is the inventory snapshot the processor reads per line:
// current unit price, stock on hand and display name.
type ProductPricing struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Stock     int
}
