package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrProductNotFound is returned for a missing or cross-owner product id.
var ErrProductNotFound = errors.New("product not found")

// Repository defines the storage operations for the product catalog.
type Repository interface {
	CreateProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, productID, ownerID string) (*Product, error)
	ListProducts(ctx context.Context, ownerID, nameFilter string) ([]Product, error)
	UpdateProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, productID, ownerID string) error
}

// PostgresRepository implements Repository over a pgx connection pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a Repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, product *Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, user_id, name, unit_price, stock_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, product.ID, product.UserID, product.Name, product.UnitPrice, product.StockQuantity,
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetProduct(ctx context.Context, productID, ownerID string) (*Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, name, unit_price, stock_quantity, created_at, updated_at
		FROM products
		WHERE id = $1 AND user_id = $2
	`, productID, ownerID).Scan(&p.ID, &p.UserID, &p.Name, &p.UnitPrice, &p.StockQuantity,
		&p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) ListProducts(ctx context.Context, ownerID, nameFilter string) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, name, unit_price, stock_quantity, created_at, updated_at
		FROM products
		WHERE user_id = $1 AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY name
	`, ownerID, nameFilter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.UnitPrice, &p.StockQuantity,
			&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *PostgresRepository) UpdateProduct(ctx context.Context, product *Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $3, unit_price = $4, stock_quantity = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, product.ID, product.UserID, product.Name, product.UnitPrice, product.StockQuantity)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteProduct(ctx context.Context, productID, ownerID string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM products WHERE id = $1 AND user_id = $2
	`, productID, ownerID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}
