package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type memoryRepo struct {
	products map[string]*Product
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[string]*Product)}
}

func (m *memoryRepo) CreateProduct(ctx context.Context, product *Product) error {
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *memoryRepo) GetProduct(ctx context.Context, productID, ownerID string) (*Product, error) {
	p, ok := m.products[productID]
	if !ok || p.UserID != ownerID {
		return nil, ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memoryRepo) ListProducts(ctx context.Context, ownerID, nameFilter string) ([]Product, error) {
	var products []Product
	for _, p := range m.products {
		if p.UserID == ownerID {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (m *memoryRepo) UpdateProduct(ctx context.Context, product *Product) error {
	p, ok := m.products[product.ID]
	if !ok || p.UserID != product.UserID {
		return ErrProductNotFound
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *memoryRepo) DeleteProduct(ctx context.Context, productID, ownerID string) error {
	p, ok := m.products[productID]
	if !ok || p.UserID != ownerID {
		return ErrProductNotFound
	}
	delete(m.products, productID)
	return nil
}

func newTestUseCase(t *testing.T) (*CatalogUseCase, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	return NewCatalogUseCase(repo, zaptest.NewLogger(t)), repo
}

func TestCreateProduct(t *testing.T) {
	uc, repo := newTestUseCase(t)

	product, err := uc.CreateProduct(context.Background(), "owner-1", ProductInput{
		Name:          "Coffee",
		UnitPrice:     decimal.RequireFromString("3.50"),
		StockQuantity: 10,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, "owner-1", product.UserID)
	assert.Len(t, repo.products, 1)
}

func TestCreateProduct_Invalid(t *testing.T) {
	uc, _ := newTestUseCase(t)

	_, err := uc.CreateProduct(context.Background(), "owner-1", ProductInput{
		Name: "", UnitPrice: decimal.NewFromInt(1), StockQuantity: 1,
	})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = uc.CreateProduct(context.Background(), "owner-1", ProductInput{
		Name: "Coffee", UnitPrice: decimal.RequireFromString("-1"), StockQuantity: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = uc.CreateProduct(context.Background(), "owner-1", ProductInput{
		Name: "Coffee", UnitPrice: decimal.NewFromInt(1), StockQuantity: -1,
	})
	assert.ErrorIs(t, err, ErrInvalidStock)
}

func TestUpdateProduct_OwnerScoped(t *testing.T) {
	uc, _ := newTestUseCase(t)

	product, err := uc.CreateProduct(context.Background(), "owner-1", ProductInput{
		Name: "Coffee", UnitPrice: decimal.RequireFromString("3.50"), StockQuantity: 10,
	})
	require.NoError(t, err)

	_, err = uc.UpdateProduct(context.Background(), product.ID, "intruder", ProductInput{
		Name: "Hijacked", UnitPrice: decimal.NewFromInt(1), StockQuantity: 1,
	})
	assert.ErrorIs(t, err, ErrProductNotFound)

	updated, err := uc.UpdateProduct(context.Background(), product.ID, "owner-1", ProductInput{
		Name: "Coffee Beans", UnitPrice: decimal.RequireFromString("4.00"), StockQuantity: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, "Coffee Beans", updated.Name)
	assert.True(t, updated.UnitPrice.Equal(decimal.RequireFromString("4.00")))
	assert.Equal(t, 7, updated.StockQuantity)
}

func TestDeleteProduct(t *testing.T) {
	uc, repo := newTestUseCase(t)

	product, err := uc.CreateProduct(context.Background(), "owner-1", ProductInput{
		Name: "Coffee", UnitPrice: decimal.RequireFromString("3.50"), StockQuantity: 10,
	})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteProduct(context.Background(), product.ID, "owner-1"))
	assert.Empty(t, repo.products)

	err = uc.DeleteProduct(context.Background(), product.ID, "owner-1")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
