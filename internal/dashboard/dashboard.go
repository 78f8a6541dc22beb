// Package dashboard reads rollups over committed transactions and the
// product catalog. It consumes the sale ledger read-only.
package dashboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LowStockThreshold marks a product as low on stock.
const LowStockThreshold = 5

// TopProduct is one entry in the top-sellers rollup.
type TopProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitsSold int    `json:"units_sold"`
}

// Summary is the dashboard payload for one owner. "Today" is the current
// UTC calendar day.
type Summary struct {
	ProductCount      int             `json:"product_count"`
	LowStockCount     int             `json:"low_stock_count"`
	TransactionsToday int             `json:"transactions_today"`
	RevenueToday      decimal.Decimal `json:"revenue_today"`
	TopProducts       []TopProduct    `json:"top_products"`
}

// Repository defines the aggregate reads the dashboard needs.
type Repository interface {
	Summarize(ctx context.Context, ownerID string) (*Summary, error)
}

// PostgresRepository implements Repository over a pgx connection pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a Repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Summarize(ctx context.Context, ownerID string) (*Summary, error) {
	s := &Summary{RevenueToday: decimal.Zero, TopProducts: []TopProduct{}}

	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE stock_quantity < $2)
		FROM products WHERE user_id = $1
	`, ownerID, LowStockThreshold).Scan(&s.ProductCount, &s.LowStockCount)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM transactions
		WHERE owner_id = $1
		  AND transaction_date >= date_trunc('day', now() AT TIME ZONE 'utc')
	`, ownerID).Scan(&s.TransactionsToday, &s.RevenueToday)
	if err != nil {
		return nil, fmt.Errorf("summarize today: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT i.product_id, COALESCE(p.name, ''), SUM(i.quantity)::int AS units
		FROM transaction_items i
		JOIN transactions t ON t.id = i.transaction_id
		LEFT JOIN products p ON p.id = i.product_id
		WHERE t.owner_id = $1
		GROUP BY i.product_id, p.name
		ORDER BY units DESC
		LIMIT 5
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.UnitsSold); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		s.TopProducts = append(s.TopProducts, tp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return s, nil
}

// DashboardUseCase serves owner-scoped summaries.
type DashboardUseCase struct {
	repository Repository
	logger     *zap.Logger
}

// NewDashboardUseCase creates a new DashboardUseCase.
func NewDashboardUseCase(repository Repository, logger *zap.Logger) *DashboardUseCase {
	return &DashboardUseCase{repository: repository, logger: logger}
}

// Summary builds the dashboard rollup for one owner.
func (uc *DashboardUseCase) Summary(ctx context.Context, ownerID string) (*Summary, error) {
	summary, err := uc.repository.Summarize(ctx, ownerID)
	if err != nil {
		uc.logger.Error("dashboard summary failed", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	return summary, nil
}
