package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("entity not found")
	ErrUpdateFailed     = errors.New("update failed")
	ErrDeleteFailed     = errors.New("delete failed")
	ErrAlreadyExists    = errors.New("entity already exists")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrDuplicateReview  = errors.New("user already reviewed this product")
	ErrOptimisticLock   = errors.New("optimistic lock conflict: data was modified by another process")
	ErrConnectionFailed = errors.New("database connection failed")
	ErrQueryFailed      = errors.New("database query failed")
)

// InsufficientStockError is returned by the conditional stock decrement when a
// product does not carry enough units. It names the offending product so the
// caller can report which line item failed.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	if e.ProductName != "" {
		return fmt.Sprintf("insufficient stock for product %q", e.ProductName)
	}
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

// IsInsufficientStock reports whether err wraps an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
