/*
Package sqlite provides the SQLite-backed CatalogStore implementation.

PURPOSE:
  Production persistence for products, sales and users. The same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

ATOMIC STOCK:
  AdjustStock issues a single conditional UPDATE:

    UPDATE products SET stock = stock + ? WHERE id = ? AND stock + ? >= 0

  The database applies the check and the write as one statement, so two
  concurrent sales of the same product cannot both pass a stale stock
  check. Zero rows affected means either the product is missing or the
  precondition failed; a follow-up SELECT distinguishes the two.

MONEY:
  Prices and computed sale amounts are stored as decimal strings, never
  floats. They round-trip through shopspring/decimal exactly.

WAL MODE:
  Opened with WAL for better concurrency: readers don't block, single
  writer at a time, better crash recovery. A mutex serializes writes so
  SQLITE_BUSY never surfaces to callers.

USAGE:
  store, err := sqlite.New("./data/profitpro.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ledger/store.go:        port definition
  - ledger/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/profitpro/inventory-engine/ledger"
)

// Store implements ledger.CatalogStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex // serializes writes; SQLite allows one writer at a time
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		cost_price TEXT NOT NULL,
		selling_price TEXT NOT NULL,
		stock INTEGER NOT NULL CHECK (stock >= 0),
		image_url TEXT NOT NULL DEFAULT '',
		image_hint TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL REFERENCES products(id),
		product_name TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		total_revenue TEXT NOT NULL,
		total_cost TEXT NOT NULL,
		profit TEXT NOT NULL,
		agent_id TEXT NOT NULL,
		sold_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_product
		ON sales(product_id);
	CREATE INDEX IF NOT EXISTS idx_sales_sold_at
		ON sales(sold_at);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL CHECK (role IN ('admin', 'agent')),
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PRODUCTS
// =============================================================================

const productColumns = `id, name, cost_price, selling_price, stock, image_url, image_hint, created_at`

func (s *Store) GetProduct(ctx context.Context, id string) (*ledger.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

func (s *Store) ListProducts(ctx context.Context) ([]*ledger.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*ledger.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) CreateProduct(ctx context.Context, p *ledger.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, cost_price, selling_price, stock, image_url, image_hint, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.CostPrice.String(), p.SellingPrice.String(), p.Stock,
		p.ImageURL, p.ImageHint, p.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *ledger.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, cost_price = ?, selling_price = ?, stock = ?, image_url = ?, image_hint = ?
		WHERE id = ?`,
		p.Name, p.CostPrice.String(), p.SellingPrice.String(), p.Stock,
		p.ImageURL, p.ImageHint, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return requireRow(res, ledger.ErrProductNotFound)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return requireRow(res, ledger.ErrProductNotFound)
}

// AdjustStock applies delta as a single conditional update. See the package
// comment for why this must be one statement.
func (s *Store) AdjustStock(ctx context.Context, productID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET stock = stock + ?
		WHERE id = ? AND stock + ? >= 0`,
		delta, productID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Nothing updated: missing product, or the precondition failed.
	var name string
	var stock int
	err = s.db.QueryRowContext(ctx,
		`SELECT name, stock FROM products WHERE id = ?`, productID).Scan(&name, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read stock: %w", err)
	}
	return &ledger.InsufficientStockError{
		ProductID:   productID,
		ProductName: name,
		Available:   stock,
		Requested:   -delta,
	}
}

// =============================================================================
// SALES
// =============================================================================

const saleColumns = `id, product_id, product_name, quantity, total_revenue, total_cost, profit, agent_id, sold_at`

func (s *Store) GetSale(ctx context.Context, id string) (*ledger.Sale, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = ?`, id)
	return scanSale(row)
}

func (s *Store) ListSales(ctx context.Context) ([]*ledger.Sale, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+saleColumns+` FROM sales ORDER BY sold_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []*ledger.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (s *Store) InsertSale(ctx context.Context, sale *ledger.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (id, product_id, product_name, quantity, total_revenue, total_cost, profit, agent_id, sold_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID, sale.ProductID, sale.ProductName, sale.Quantity,
		sale.TotalRevenue.String(), sale.TotalCost.String(), sale.Profit.String(),
		sale.AgentID, sale.SoldAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

func (s *Store) UpdateSale(ctx context.Context, sale *ledger.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE sales
		SET quantity = ?, total_revenue = ?, total_cost = ?, profit = ?
		WHERE id = ?`,
		sale.Quantity, sale.TotalRevenue.String(), sale.TotalCost.String(),
		sale.Profit.String(), sale.ID)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}
	return requireRow(res, ledger.ErrSaleNotFound)
}

func (s *Store) DeleteSale(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	return requireRow(res, ledger.ErrSaleNotFound)
}

// =============================================================================
// USERS
// =============================================================================

const userColumns = `id, first_name, last_name, email, role, created_at`

func (s *Store) GetUser(ctx context.Context, id string) (*ledger.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*ledger.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]*ledger.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*ledger.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) InsertUser(ctx context.Context, u *ledger.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, email, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.FirstName, u.LastName, u.Email, string(u.Role),
		u.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, u *ledger.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET first_name = ?, last_name = ?, email = ?, role = ?
		WHERE id = ?`,
		u.FirstName, u.LastName, u.Email, string(u.Role), u.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRow(res, ledger.ErrUserNotFound)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRow(res, ledger.ErrUserNotFound)
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*ledger.Product, error) {
	var p ledger.Product
	var cost, sell, createdAt string
	err := row.Scan(&p.ID, &p.Name, &cost, &sell, &p.Stock, &p.ImageURL, &p.ImageHint, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	if p.CostPrice, err = decimal.NewFromString(cost); err != nil {
		return nil, fmt.Errorf("bad cost_price for product %s: %w", p.ID, err)
	}
	if p.SellingPrice, err = decimal.NewFromString(sell); err != nil {
		return nil, fmt.Errorf("bad selling_price for product %s: %w", p.ID, err)
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at for product %s: %w", p.ID, err)
	}
	return &p, nil
}

func scanSale(row rowScanner) (*ledger.Sale, error) {
	var s ledger.Sale
	var revenue, cost, profit, soldAt string
	err := row.Scan(&s.ID, &s.ProductID, &s.ProductName, &s.Quantity,
		&revenue, &cost, &profit, &s.AgentID, &soldAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrSaleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sale: %w", err)
	}
	if s.TotalRevenue, err = decimal.NewFromString(revenue); err != nil {
		return nil, fmt.Errorf("bad total_revenue for sale %s: %w", s.ID, err)
	}
	if s.TotalCost, err = decimal.NewFromString(cost); err != nil {
		return nil, fmt.Errorf("bad total_cost for sale %s: %w", s.ID, err)
	}
	if s.Profit, err = decimal.NewFromString(profit); err != nil {
		return nil, fmt.Errorf("bad profit for sale %s: %w", s.ID, err)
	}
	if s.SoldAt, err = time.Parse(time.RFC3339Nano, soldAt); err != nil {
		return nil, fmt.Errorf("bad sold_at for sale %s: %w", s.ID, err)
	}
	return &s, nil
}

func scanUser(row rowScanner) (*ledger.User, error) {
	var u ledger.User
	var role, createdAt string
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &role, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.Role = ledger.Role(role)
	if u.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at for user %s: %w", u.ID, err)
	}
	return &u, nil
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
