/*
ledger.go - The Inventory Ledger operations

PURPOSE:
  Implements the three stock-mutating operations and the admin-gated product
  catalog management. Each operation is a single logical transaction with a
  binary outcome: committed, or fully rolled back and reported. No partial
  state is ever observable by readers.

CRITICAL INVARIANTS:
  1. stock >= 0 after every committed operation
  2. stock == initialStock - sum of active sale quantities, per product
  3. stock is only ever written through CatalogStore.AdjustStock, an atomic
     conditional update, so concurrent sales against one product cannot
     race stock below zero
  4. if a dependent write fails after stock moved, the stock move is undone
     before the error is returned (see compensate.go)

AUTHORIZATION:
  Roles are loaded from the catalog store per call. Agents may only record
  sales; revising or retracting a sale, and all catalog writes, require the
  admin role.

SEE ALSO:
  - store.go:      the port these operations run against
  - compensate.go: the rollback pairing used by all three operations
*/
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service is the Inventory Ledger. It owns the invariant linking product
// stock to the sales ledger and is the only component that writes either.
type Service struct {
	store CatalogStore
	log   *zap.Logger

	// Injectable for deterministic tests.
	now   func() time.Time
	newID func() string
}

// NewService creates a ledger service over the given store.
func NewService(store CatalogStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// =============================================================================
// AUTHORIZATION
// =============================================================================

// authorize loads the actor and, when adminOnly is set, requires RoleAdmin.
// The stored role is authoritative; anything asserted by the client is ignored.
func (s *Service) authorize(ctx context.Context, actorID string, adminOnly bool) (*User, error) {
	actor, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if adminOnly && actor.Role != RoleAdmin {
		return nil, fmt.Errorf("%w: %s requires admin", ErrForbidden, actor.Role)
	}
	return actor, nil
}

// =============================================================================
// SALE OPERATIONS
// =============================================================================

// RecordSale sells quantity units of a product on behalf of an agent.
//
// The stock decrement is a single conditional update: either the product had
// enough units and they are taken, or nothing changes and the caller gets an
// InsufficientStockError with the exact available count. If the sale insert
// fails after the decrement, the decrement is compensated.
func (s *Service) RecordSale(ctx context.Context, productID string, quantity int, agentID string) (*SaleReceipt, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.authorize(ctx, agentID, false); err != nil {
		return nil, err
	}

	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	qty := decimal.NewFromInt(int64(quantity))
	revenue := product.SellingPrice.Mul(qty)
	cost := product.CostPrice.Mul(qty)

	if err := s.store.AdjustStock(ctx, productID, -quantity); err != nil {
		return nil, err
	}

	sale := &Sale{
		ID:           s.newID(),
		ProductID:    productID,
		ProductName:  product.Name,
		Quantity:     quantity,
		TotalRevenue: revenue,
		TotalCost:    cost,
		Profit:       revenue.Sub(cost),
		AgentID:      agentID,
		SoldAt:       s.now().UTC(),
	}

	err = Compensate(ctx, s.log, "record sale",
		func(ctx context.Context) error { return s.store.InsertSale(ctx, sale) },
		func(ctx context.Context) error { return s.store.AdjustStock(ctx, productID, quantity) },
	)
	if err != nil {
		return nil, err
	}

	s.log.Info("sale recorded",
		zap.String("sale_id", sale.ID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
		zap.String("agent_id", agentID),
	)
	return &SaleReceipt{SaleID: sale.ID, TotalRevenue: revenue}, nil
}

// ReviseSale changes the quantity of an existing sale and reconciles stock.
//
// The prior quantity is read from the stored sale, never taken from the
// caller: a stale or forged prior quantity would corrupt stock. Monetary
// fields are recomputed from the product's current prices, matching how the
// sale would be priced if recorded now.
func (s *Service) ReviseSale(ctx context.Context, saleID string, newQuantity int, actorID string) error {
	if newQuantity < 1 {
		return ErrInvalidQuantity
	}
	if _, err := s.authorize(ctx, actorID, true); err != nil {
		return err
	}

	sale, err := s.store.GetSale(ctx, saleID)
	if err != nil {
		return err
	}
	product, err := s.store.GetProduct(ctx, sale.ProductID)
	if err != nil {
		return err
	}

	// Restore the old quantity, then take the new one, in a single
	// conditional adjustment. Negative results are rejected atomically.
	delta := sale.Quantity - newQuantity
	if err := s.store.AdjustStock(ctx, sale.ProductID, delta); err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			// For an edit the caller may still use the units the sale
			// already holds, so the ceiling is stock + old quantity.
			return &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   stockErr.Available + sale.Quantity,
				Requested:   newQuantity,
			}
		}
		return err
	}

	qty := decimal.NewFromInt(int64(newQuantity))
	revised := *sale
	revised.Quantity = newQuantity
	revised.TotalRevenue = product.SellingPrice.Mul(qty)
	revised.TotalCost = product.CostPrice.Mul(qty)
	revised.Profit = revised.TotalRevenue.Sub(revised.TotalCost)

	err = Compensate(ctx, s.log, "revise sale",
		func(ctx context.Context) error { return s.store.UpdateSale(ctx, &revised) },
		func(ctx context.Context) error { return s.store.AdjustStock(ctx, sale.ProductID, -delta) },
	)
	if err != nil {
		return err
	}

	s.log.Info("sale revised",
		zap.String("sale_id", saleID),
		zap.Int("old_quantity", sale.Quantity),
		zap.Int("new_quantity", newQuantity),
		zap.String("actor_id", actorID),
	)
	return nil
}

// RetractSale deletes a sale and returns its units to stock.
func (s *Service) RetractSale(ctx context.Context, saleID string, actorID string) error {
	if _, err := s.authorize(ctx, actorID, true); err != nil {
		return err
	}

	sale, err := s.store.GetSale(ctx, saleID)
	if err != nil {
		return err
	}

	// Restock first; a positive delta cannot fail the stock precondition.
	if err := s.store.AdjustStock(ctx, sale.ProductID, sale.Quantity); err != nil {
		return err
	}

	err = Compensate(ctx, s.log, "retract sale",
		func(ctx context.Context) error { return s.store.DeleteSale(ctx, saleID) },
		func(ctx context.Context) error { return s.store.AdjustStock(ctx, sale.ProductID, -sale.Quantity) },
	)
	if err != nil {
		return err
	}

	s.log.Info("sale retracted",
		zap.String("sale_id", saleID),
		zap.String("product_id", sale.ProductID),
		zap.Int("quantity", sale.Quantity),
		zap.String("actor_id", actorID),
	)
	return nil
}

// =============================================================================
// CATALOG MANAGEMENT (admin only)
// =============================================================================

// CreateProduct adds a product to the catalog.
func (s *Service) CreateProduct(ctx context.Context, actorID string, p Product) (*Product, error) {
	if _, err := s.authorize(ctx, actorID, true); err != nil {
		return nil, err
	}
	if err := validateProduct(&p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = s.newID()
	}
	p.CreatedAt = s.now().UTC()
	if err := s.store.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}
	s.log.Info("product created", zap.String("product_id", p.ID), zap.String("name", p.Name))
	return &p, nil
}

// UpdateProduct overwrites a product's name, prices and stock.
func (s *Service) UpdateProduct(ctx context.Context, actorID string, p Product) error {
	if _, err := s.authorize(ctx, actorID, true); err != nil {
		return err
	}
	if err := validateProduct(&p); err != nil {
		return err
	}
	existing, err := s.store.GetProduct(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = existing.CreatedAt
	if p.ImageURL == "" {
		p.ImageURL = existing.ImageURL
	}
	if p.ImageHint == "" {
		p.ImageHint = existing.ImageHint
	}
	if err := s.store.UpdateProduct(ctx, &p); err != nil {
		return err
	}
	s.log.Info("product updated", zap.String("product_id", p.ID))
	return nil
}

// DeleteProduct removes a product from the catalog.
func (s *Service) DeleteProduct(ctx context.Context, actorID, productID string) error {
	if _, err := s.authorize(ctx, actorID, true); err != nil {
		return err
	}
	if err := s.store.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	s.log.Info("product deleted", zap.String("product_id", productID))
	return nil
}

func validateProduct(p *Product) error {
	if p.Name == "" {
		return fmt.Errorf("product name is required")
	}
	if p.CostPrice.IsNegative() || p.SellingPrice.IsNegative() {
		return fmt.Errorf("prices must be non-negative")
	}
	if p.Stock < 0 {
		return fmt.Errorf("stock must be non-negative")
	}
	return nil
}
