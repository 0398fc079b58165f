// Package store provides the in-memory CatalogStore implementation,
// used for development and tests.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/profitpro/inventory-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements ledger.CatalogStore with maps behind one mutex.
// AdjustStock holds the write lock for the whole check-and-apply, which
// gives it the same atomicity the SQL backends get from a conditional
// UPDATE.
type Memory struct {
	mu       sync.RWMutex
	products map[string]*ledger.Product
	sales    map[string]*ledger.Sale
	users    map[string]*ledger.User
}

func NewMemory() *Memory {
	return &Memory{
		products: make(map[string]*ledger.Product),
		sales:    make(map[string]*ledger.Sale),
		users:    make(map[string]*ledger.User),
	}
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (m *Memory) GetProduct(_ context.Context, id string) (*ledger.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ledger.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) ListProducts(_ context.Context) ([]*ledger.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*ledger.Product, 0, len(m.products))
	for _, p := range m.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) CreateProduct(_ context.Context, p *ledger.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *Memory) UpdateProduct(_ context.Context, p *ledger.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[p.ID]; !ok {
		return ledger.ErrProductNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *Memory) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return ledger.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

// AdjustStock applies delta iff the resulting stock stays non-negative.
// Check and apply happen under one lock acquisition; concurrent callers
// serialize here.
func (m *Memory) AdjustStock(_ context.Context, productID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[productID]
	if !ok {
		return ledger.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return &ledger.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.Stock,
			Requested:   -delta,
		}
	}
	p.Stock += delta
	return nil
}

// =============================================================================
// SALES
// =============================================================================

func (m *Memory) GetSale(_ context.Context, id string) (*ledger.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sales[id]
	if !ok {
		return nil, ledger.ErrSaleNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) ListSales(_ context.Context) ([]*ledger.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*ledger.Sale, 0, len(m.sales))
	for _, s := range m.sales {
		cp := *s
		out = append(out, &cp)
	}
	// Newest first, matching how the sales history is displayed.
	sort.Slice(out, func(i, j int) bool { return out[i].SoldAt.After(out[j].SoldAt) })
	return out, nil
}

func (m *Memory) InsertSale(_ context.Context, s *ledger.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	m.sales[s.ID] = &cp
	return nil
}

func (m *Memory) UpdateSale(_ context.Context, s *ledger.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sales[s.ID]; !ok {
		return ledger.ErrSaleNotFound
	}
	cp := *s
	m.sales[s.ID] = &cp
	return nil
}

func (m *Memory) DeleteSale(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sales[id]; !ok {
		return ledger.ErrSaleNotFound
	}
	delete(m.sales, id)
	return nil
}

// =============================================================================
// USERS
// =============================================================================

func (m *Memory) GetUser(_ context.Context, id string) (*ledger.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ledger.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*ledger.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ledger.ErrUserNotFound
}

func (m *Memory) ListUsers(_ context.Context) ([]*ledger.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*ledger.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) InsertUser(_ context.Context, u *ledger.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) UpdateUser(_ context.Context, u *ledger.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.ID]; !ok {
		return ledger.ErrUserNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ledger.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}
