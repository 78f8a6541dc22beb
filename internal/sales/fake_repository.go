package sales

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// FakeRepository is an in-memory Repository for tests. A mutex held for
// the lifetime of each Tx serializes units of work the way the database
// serializes conflicting transactions; Rollback restores the stock and
// ledger state captured at BeginTx.
type FakeRepository struct {
	mu       sync.Mutex
	products map[string]*fakeProduct
	txns     map[string]Transaction

	// failures maps an operation name to an injected error:
	// "begin", "decrement", "create_transaction", "create_line_items",
	// "commit".
	failures map[string]error
}

type fakeProduct struct {
	ownerID   string
	name      string
	unitPrice decimal.Decimal
	stock     int
}

// NewFakeRepository creates an empty in-memory repository.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		products: make(map[string]*fakeProduct),
		txns:     make(map[string]Transaction),
		failures: make(map[string]error),
	}
}

// Seed registers a product with the given owner, price and stock.
func (r *FakeRepository) Seed(productID, ownerID, name string, unitPrice decimal.Decimal, stock int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[productID] = &fakeProduct{ownerID: ownerID, name: name, unitPrice: unitPrice, stock: stock}
}

// SetPrice changes a product's catalog price, as a catalog edit would.
func (r *FakeRepository) SetPrice(productID string, unitPrice decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[productID]; ok {
		p.unitPrice = unitPrice
	}
}

// Stock reports a product's current stock.
func (r *FakeRepository) Stock(productID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[productID]; ok {
		return p.stock
	}
	return 0
}

// TransactionCount reports how many transactions have been committed.
func (r *FakeRepository) TransactionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.txns)
}

// FailOn injects an error for the named operation.
func (r *FakeRepository) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = err
}

func (r *FakeRepository) GetProductPricing(ctx context.Context, productID, ownerID string) (*ProductPricing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok || p.ownerID != ownerID {
		return nil, &ProductNotFoundError{ProductID: productID}
	}
	return &ProductPricing{ProductID: productID, Name: p.name, UnitPrice: p.unitPrice, Stock: p.stock}, nil
}

type fakeTx struct {
	repo       *FakeRepository
	stockSnap  map[string]int
	createdTxn []string
	done       bool
}

func (r *FakeRepository) BeginTx(ctx context.Context) (Tx, error) {
	if err := r.failureFor("begin"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	snap := make(map[string]int, len(r.products))
	for id, p := range r.products {
		snap[id] = p.stock
	}
	return &fakeTx{repo: r, stockSnap: snap}, nil
}

func (t *fakeTx) Commit() error {
	if t.done {
		return nil
	}
	if err := t.repo.failures["commit"]; err != nil {
		return err
	}
	t.done = true
	t.repo.mu.Unlock()
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	for id, stock := range t.stockSnap {
		if p, ok := t.repo.products[id]; ok {
			p.stock = stock
		}
	}
	for _, id := range t.createdTxn {
		delete(t.repo.txns, id)
	}
	t.repo.mu.Unlock()
	return nil
}

func (r *FakeRepository) DecrementStock(ctx context.Context, tx Tx, productID, ownerID string, quantity int) error {
	if err := r.failures["decrement"]; err != nil {
		return err
	}
	p, ok := r.products[productID]
	if !ok || p.ownerID != ownerID {
		return &ProductNotFoundError{ProductID: productID}
	}
	if p.stock < quantity {
		return &InsufficientStockError{ProductID: productID, Requested: quantity, Available: p.stock}
	}
	p.stock -= quantity
	return nil
}

func (r *FakeRepository) CreateTransaction(ctx context.Context, tx Tx, txn *Transaction) error {
	if err := r.failures["create_transaction"]; err != nil {
		return err
	}
	copied := *txn
	copied.Items = nil
	r.txns[txn.ID] = copied
	tx.(*fakeTx).createdTxn = append(tx.(*fakeTx).createdTxn, txn.ID)
	return nil
}

func (r *FakeRepository) CreateLineItems(ctx context.Context, tx Tx, items []LineItem) error {
	if err := r.failures["create_line_items"]; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	txn, ok := r.txns[items[0].TransactionID]
	if !ok {
		return ErrTransactionNotFound
	}
	txn.Items = append(txn.Items, items...)
	r.txns[txn.ID] = txn
	return nil
}

func (r *FakeRepository) GetTransaction(ctx context.Context, transactionID, ownerID string) (*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn, ok := r.txns[transactionID]
	if !ok || txn.OwnerID != ownerID {
		return nil, ErrTransactionNotFound
	}
	copied := txn
	return &copied, nil
}

func (r *FakeRepository) ListTransactions(ctx context.Context, ownerID string) ([]Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var txns []Transaction
	for _, txn := range r.txns {
		if txn.OwnerID == ownerID {
			txns = append(txns, txn)
		}
	}
	sort.Slice(txns, func(a, b int) bool {
		return txns[a].TransactionDate.After(txns[b].TransactionDate)
	})
	return txns, nil
}

func (r *FakeRepository) failureFor(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failures[op]
}
