/*
errors.go - Centralized error types for the inventory ledger

PURPOSE:
  All domain error types in one place. Adapters return these so callers can
  branch with errors.Is/errors.As regardless of which backend is configured.

ERROR CATEGORIES:
  1. Lookup errors      - referenced product/sale/user absent
  2. Validation errors  - bad quantity, role violations
  3. Stock errors       - requested quantity exceeds availability
  4. Compensation errors - a rollback write itself failed

USAGE:
  var stockErr *ledger.InsufficientStockError
  if errors.As(err, &stockErr) {
      // stockErr.Available holds the exact sellable count
  }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrProductNotFound is returned when a referenced product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrSaleNotFound is returned when a referenced sale does not exist.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientStock is returned when a requested quantity exceeds the
	// sellable stock. Usually wrapped by InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity is returned for quantities below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrForbidden is returned when the actor's stored role does not permit
	// the requested operation.
	ErrForbidden = errors.New("operation not permitted for role")

	// ErrCompensationFailed indicates a rollback write failed after the
	// primary write had already been applied. Stock and the sales ledger may
	// be inconsistent and need operator attention.
	ErrCompensationFailed = errors.New("compensating write failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientStockError reports a stock shortage. Available is the exact
// number of units the caller could still take, and the message is suitable
// for direct display to the end user.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock. Only %d units available.", e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// CompensationError retains both the error that triggered the rollback and
// the error the rollback itself failed with. Both are needed for diagnostics:
// this is the one state that can leave stock and the sales ledger out of sync.
type CompensationError struct {
	Op          string // operation being compensated, e.g. "record sale"
	Cause       error  // the write failure that triggered the rollback
	RollbackErr error  // the failure of the compensating write
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("%s: %v (rollback also failed: %v)", e.Op, e.Cause, e.RollbackErr)
}

func (e *CompensationError) Unwrap() []error {
	return []error{ErrCompensationFailed, e.Cause, e.RollbackErr}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether err refers to a missing product, sale or user.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrSaleNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsClientError reports whether err is caused by invalid caller input rather
// than a storage failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrForbidden)
}
