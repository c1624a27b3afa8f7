package inventory

import "errors"

var (
	// ErrStockEntryNotFound indicates a missing (machine, product) stock entry.
	ErrStockEntryNotFound = errors.New("inventory: stock entry not found")
	// ErrInsufficientStock is returned when a purchase hits an empty slot.
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	// ErrInsufficientBalance is returned when the account cannot cover the price.
	ErrInsufficientBalance = errors.New("inventory: insufficient balance")
	// ErrTransactionNotFound indicates a missing transaction record.
	ErrTransactionNotFound = errors.New("inventory: transaction not found")
	// ErrRestockNotFound indicates a missing restock record.
	ErrRestockNotFound = errors.New("inventory: restock not found")
	// ErrInvalidQuantity is returned for a non-positive restock quantity.
	ErrInvalidQuantity = errors.New("inventory: invalid quantity")
	// ErrInvalidCapacity is returned for a non-positive max capacity.
	ErrInvalidCapacity = errors.New("inventory: invalid capacity")
	// ErrConcurrencyConflict is returned when a row lock could not be acquired
	// in time. The operation left no partial state and is safe to retry.
	ErrConcurrencyConflict = errors.New("inventory: concurrency conflict, retry")
	// ErrConstraintViolation surfaces a storage-level unique or foreign key
	// violation (duplicate stock entry, unknown referenced row).
	ErrConstraintViolation = errors.New("inventory: constraint violation")
)
