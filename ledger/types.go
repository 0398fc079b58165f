/*
Package ledger owns the product-stock / sales-record consistency core.

PURPOSE:
  This package contains the domain types and the Inventory Ledger service.
  The Ledger is the ONLY component allowed to write product stock or sales
  rows. Every stock change flows through one of three operations:

    RecordSale   agent sells N units  -> stock -N, sale inserted
    ReviseSale   admin edits quantity -> stock reconciled, sale updated
    RetractSale  admin removes a sale -> stock restored, sale deleted

KEY CONCEPTS IN THIS FILE (types.go):
  - Product: catalog row with unit prices and current stock
  - Sale:    ledger row with quantity and computed monetary fields
  - User:    catalog identity with a role gating ledger operations

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for all money, never float64
  2. Stock is an integer count and can never go negative
  3. Monetary fields on a Sale are always recomputed whole, never
     drifted incrementally

SEE ALSO:
  - ledger.go: The three operations and their compensation story
  - store.go:  CatalogStore port the operations run against
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCT - Catalog row
// =============================================================================

// Product is a catalog entry. Stock is the count of unsold units.
//
// INVARIANT: Stock >= 0 after every committed operation.
type Product struct {
	ID           string
	Name         string
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	Stock        int

	// Display metadata, passed through untouched.
	ImageURL  string
	ImageHint string

	CreatedAt time.Time
}

// =============================================================================
// SALE - Ledger row
// =============================================================================

// Sale records one transaction. TotalRevenue, TotalCost and Profit are
// computed from the product's unit prices at write time:
//
//   TotalRevenue = SellingPrice * Quantity
//   TotalCost    = CostPrice * Quantity
//   Profit       = TotalRevenue - TotalCost
type Sale struct {
	ID           string
	ProductID    string
	ProductName  string
	Quantity     int
	TotalRevenue decimal.Decimal
	TotalCost    decimal.Decimal
	Profit       decimal.Decimal
	AgentID      string
	SoldAt       time.Time
}

// SaleReceipt is returned to the caller after a successful RecordSale.
type SaleReceipt struct {
	SaleID       string
	TotalRevenue decimal.Decimal
}

// =============================================================================
// USER - Identity with role
// =============================================================================

// Role gates which ledger operations a caller may invoke.
type Role string

const (
	// RoleAdmin may manage the catalog and revise/retract sales.
	RoleAdmin Role = "admin"
	// RoleAgent may only record sales.
	RoleAgent Role = "agent"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleAgent
}

// User is a catalog identity record. The role stored here is authoritative;
// the Ledger never trusts a role asserted by the client.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// FullName joins first and last name for user-facing messages.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
