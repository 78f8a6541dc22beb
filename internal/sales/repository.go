package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines the storage operations the sale processor depends on:
// the inventory store (pricing reads, conditional decrements) and the sale
// ledger (transaction and line-item appends).
type Repository interface {
	// GetProductPricing resolves a product scoped to its owner and returns
	// the current price, stock and display name. Returns
	// *ProductNotFoundError for a missing or cross-owner id.
	GetProductPricing(ctx context.Context, productID, ownerID string) (*ProductPricing, error)

	// BeginTx opens the atomic unit a sale commits inside.
	BeginTx(ctx context.Context) (Tx, error)

	// DecrementStock conditionally reduces stock by quantity, only if the
	// current committed stock is at least quantity. Returns
	// *InsufficientStockError carrying the availability at conflict time,
	// or *ProductNotFoundError if the row vanished.
	DecrementStock(ctx context.Context, tx Tx, productID, ownerID string, quantity int) error

	// CreateTransaction appends one ledger entry inside tx.
	CreateTransaction(ctx context.Context, tx Tx, txn *Transaction) error

	// CreateLineItems appends the line items of a transaction inside tx.
	CreateLineItems(ctx context.Context, tx Tx, items []LineItem) error

	// GetTransaction reads one committed transaction with its line items,
	// scoped to the owner.
	GetTransaction(ctx context.Context, transactionID, ownerID string) (*Transaction, error)

	// ListTransactions reads the owner's committed transactions, newest
	// first, with line items.
	ListTransactions(ctx context.Context, ownerID string) ([]Transaction, error)
}

// Tx is the atomic unit of work a sale commits inside.
type Tx interface {
	Commit() error
	Rollback() error
}

// PostgresRepository implements Repository over a pgx connection pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a Repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// PostgresTx implements Tx over a pgx transaction.
type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit() error {
	return t.tx.Commit(context.Background())
}

func (t *PostgresTx) Rollback() error {
	return t.tx.Rollback(context.Background())
}

func (r *PostgresRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &PostgresTx{tx: tx}, nil
}

func (r *PostgresRepository) GetProductPricing(ctx context.Context, productID, ownerID string) (*ProductPricing, error) {
	var p ProductPricing
	err := r.db.QueryRow(ctx, `
		SELECT id, name, unit_price, stock_quantity
		FROM products
		WHERE id = $1 AND user_id = $2
	`, productID, ownerID).Scan(&p.ProductID, &p.Name, &p.UnitPrice, &p.Stock)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return nil, fmt.Errorf("get product pricing: %w", err)
	}
	return &p, nil
}

// DecrementStock applies a conditional compare-and-decrement. The WHERE
// clause re-checks stock against the committed value at application time,
// so a validation read that has since gone stale cannot oversell.
func (r *PostgresRepository) DecrementStock(ctx context.Context, tx Tx, productID, ownerID string, quantity int) error {
	pgTx := tx.(*PostgresTx).tx

	tag, err := pgTx.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $3,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND stock_quantity >= $3
	`, productID, ownerID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// The conditional update missed: either the row is gone or stock is
	// short. Re-read inside the same transaction to report which.
	var available int
	err = pgTx.QueryRow(ctx, `
		SELECT stock_quantity FROM products
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, productID, ownerID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return &ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return fmt.Errorf("read stock after conflict: %w", err)
	}
	return &InsufficientStockError{ProductID: productID, Requested: quantity, Available: available}
}

func (r *PostgresRepository) CreateTransaction(ctx context.Context, tx Tx, txn *Transaction) error {
	pgTx := tx.(*PostgresTx).tx

	_, err := pgTx.Exec(ctx, `
		INSERT INTO transactions (id, owner_id, total_amount, transaction_date)
		VALUES ($1, $2, $3, $4)
	`, txn.ID, txn.OwnerID, txn.TotalAmount, txn.TransactionDate)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateLineItems(ctx context.Context, tx Tx, items []LineItem) error {
	pgTx := tx.(*PostgresTx).tx

	// line_no records the caller's cart order so reads can reproduce it.
	for i, item := range items {
		_, err := pgTx.Exec(ctx, `
			INSERT INTO transaction_items (id, transaction_id, line_no, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, item.ID, item.TransactionID, i, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal)
		if err != nil {
			return fmt.Errorf("insert line item for product %s: %w", item.ProductID, err)
		}
	}
	return nil
}

func (r *PostgresRepository) GetTransaction(ctx context.Context, transactionID, ownerID string) (*Transaction, error) {
	var txn Transaction
	err := r.db.QueryRow(ctx, `
		SELECT id, owner_id, total_amount, transaction_date
		FROM transactions
		WHERE id = $1 AND owner_id = $2
	`, transactionID, ownerID).Scan(&txn.ID, &txn.OwnerID, &txn.TotalAmount, &txn.TransactionDate)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	items, err := r.listItems(ctx, []string{txn.ID})
	if err != nil {
		return nil, err
	}
	txn.Items = items[txn.ID]
	return &txn, nil
}

func (r *PostgresRepository) ListTransactions(ctx context.Context, ownerID string) ([]Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, owner_id, total_amount, transaction_date
		FROM transactions
		WHERE owner_id = $1
		ORDER BY transaction_date DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	var ids []string
	for rows.Next() {
		var txn Transaction
		if err := rows.Scan(&txn.ID, &txn.OwnerID, &txn.TotalAmount, &txn.TransactionDate); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, txn)
		ids = append(ids, txn.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	if len(ids) == 0 {
		return txns, nil
	}
	items, err := r.listItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range txns {
		txns[i].Items = items[txns[i].ID]
	}
	return txns, nil
}

// listItems loads line items for a set of transactions. Product names come
// from a read-only join against the catalog; a deleted product leaves the
// name empty but the snapshotted price and subtotal intact.
func (r *PostgresRepository) listItems(ctx context.Context, transactionIDs []string) (map[string][]LineItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT i.id, i.transaction_id, i.product_id, COALESCE(p.name, ''),
		       i.quantity, i.unit_price, i.subtotal
		FROM transaction_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.transaction_id = ANY($1)
		ORDER BY i.transaction_id, i.line_no
	`, transactionIDs)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]LineItem)
	for rows.Next() {
		var item LineItem
		err := rows.Scan(&item.ID, &item.TransactionID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.Subtotal)
		if err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		items[item.TransactionID] = append(items[item.TransactionID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	return items, nil
}
