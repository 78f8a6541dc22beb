package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrInvalidPrice is returned for a negative unit price.
	ErrInvalidPrice = errors.New("unit price must not be negative")
	// ErrInvalidStock is returned for a negative stock quantity.
	ErrInvalidStock = errors.New("stock quantity must not be negative")
	// ErrEmptyName is returned for a blank product name.
	ErrEmptyName = errors.New("product name must not be empty")
)

// ProductInput carries the caller-editable product fields.
type ProductInput struct {
	Name          string
	UnitPrice     decimal.Decimal
	StockQuantity int
}

func (in ProductInput) validate() error {
	if in.Name == "" {
		return ErrEmptyName
	}
	if in.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}
	if in.StockQuantity < 0 {
		return ErrInvalidStock
	}
	return nil
}

// CatalogUseCase contains the product CRUD business logic.
type CatalogUseCase struct {
	repository Repository
	logger     *zap.Logger
}

// NewCatalogUseCase creates a new CatalogUseCase.
func NewCatalogUseCase(repository Repository, logger *zap.Logger) *CatalogUseCase {
	return &CatalogUseCase{repository: repository, logger: logger}
}

// CreateProduct adds a product to the owner's catalog.
func (uc *CatalogUseCase) CreateProduct(ctx context.Context, ownerID string, in ProductInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := NewProduct(uuid.New().String(), ownerID, in.Name, in.UnitPrice, in.StockQuantity)
	if err := uc.repository.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	uc.logger.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("owner_id", ownerID),
		zap.String("name", product.Name),
	)
	return product, nil
}

// GetProduct reads one product scoped to the owner.
func (uc *CatalogUseCase) GetProduct(ctx context.Context, productID, ownerID string) (*Product, error) {
	return uc.repository.GetProduct(ctx, productID, ownerID)
}

// ListProducts reads the owner's products, optionally filtered by name.
func (uc *CatalogUseCase) ListProducts(ctx context.Context, ownerID, nameFilter string) ([]Product, error) {
	return uc.repository.ListProducts(ctx, ownerID, nameFilter)
}

// UpdateProduct replaces the editable fields of a product. Committed
// line items keep their snapshotted prices regardless.
func (uc *CatalogUseCase) UpdateProduct(ctx context.Context, productID, ownerID string, in ProductInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product, err := uc.repository.GetProduct(ctx, productID, ownerID)
	if err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.UnitPrice = in.UnitPrice
	product.StockQuantity = in.StockQuantity
	if err := uc.repository.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

// DeleteProduct removes a product from the owner's catalog.
func (uc *CatalogUseCase) DeleteProduct(ctx context.Context, productID, ownerID string) error {
	if err := uc.repository.DeleteProduct(ctx, productID, ownerID); err != nil {
		return err
	}
	uc.logger.Info("product deleted",
		zap.String("product_id", productID),
		zap.String("owner_id", ownerID),
	)
	return nil
}
