/*
store.go - Persistence port for products, sales and users

PURPOSE:
  Defines the interface between the ledger and the backing catalog store.
  Different implementations can use SQLite or in-memory storage; the ledger
  is written against this port only, never against a concrete backend.

ATOMIC STOCK CONTRACT:
  AdjustStock is the load-bearing method. It must apply
  "stock = stock + delta WHERE stock + delta >= 0" as a single atomic
  conditional update. Implementations return *InsufficientStockError when
  the precondition does not hold, carrying the exact current stock.
  The ledger NEVER performs an unguarded read-then-write on stock.

IMPLEMENTATIONS:
  - ledger/store/memory.go: mutex-guarded in-memory store (dev/tests)
  - store/sqlite/sqlite.go: production SQLite store

SEE ALSO:
  - ledger.go: Operations built on this port
*/
package ledger

import "context"

// CatalogStore handles persistence of products, sales and users.
//
// Lookup methods return the matching sentinel error (ErrProductNotFound,
// ErrSaleNotFound, ErrUserNotFound) when no row exists. All other failures
// are backend errors and are propagated wrapped.
type CatalogStore interface {
	// Products
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id string) error

	// AdjustStock atomically applies delta to the product's stock, failing
	// with *InsufficientStockError if the result would go below zero.
	// This is the only way stock is ever written by ledger operations.
	AdjustStock(ctx context.Context, productID string, delta int) error

	// Sales
	GetSale(ctx context.Context, id string) (*Sale, error)
	ListSales(ctx context.Context) ([]*Sale, error)
	InsertSale(ctx context.Context, s *Sale) error
	UpdateSale(ctx context.Context, s *Sale) error
	DeleteSale(ctx context.Context, id string) error

	// Users
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	InsertUser(ctx context.Context, u *User) error
	UpdateUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id string) error
}
