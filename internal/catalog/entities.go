package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry scoped to its owning user. UnitPrice and
// StockQuantity are the authoritative values the sales core reads.
type Product struct {
	ID            string          `json:"id" db:"id"`
	UserID        string          `json:"user_id" db:"user_id"`
	Name          string          `json:"name" db:"name"`
	UnitPrice     decimal.Decimal `json:"unit_price" db:"unit_price"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// NewProduct creates a product owned by userID.
func NewProduct(id, userID, name string, unitPrice decimal.Decimal, stock int) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:            id,
		UserID:        userID,
		Name:          name,
		UnitPrice:     unitPrice,
		StockQuantity: stock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
