package application

import (
	"context"
	"errors"

	"github.com/google/uuid"

	inventory "vendfleet/internal/inventory/domain"
)

// StockReader serves stock-level queries outside of any atomic unit.
type StockReader interface {
	ListByMachine(ctx context.Context, machineID string) ([]inventory.StockEntry, error)
	ListAll(ctx context.Context) ([]inventory.StockEntry, error)
}

// StockService creates stock entries and answers stock-level queries. Entries
// come into existence here (seed or explicit create); purchases and restocks
// require the entry to exist already.
type StockService struct {
	store  Store
	reader StockReader
	clock  Clock
}

// NewStockService constructs a stock service.
func NewStockService(store Store, reader StockReader) (*StockService, error) {
	if store == nil {
		return nil, errors.New("stock service: nil store")
	}
	if reader == nil {
		return nil, errors.New("stock service: nil reader")
	}
	return &StockService{store: store, reader: reader, clock: SystemClock{}}, nil
}

// CreateEntry registers a (machine, product) slot with its capacity bound.
// A duplicate pair surfaces as ErrConstraintViolation from the store.
func (s *StockService) CreateEntry(ctx context.Context, machineID, productID string, initialStock, maxCapacity int) (*inventory.StockEntry, error) {
	if maxCapacity <= 0 {
		return nil, inventory.ErrInvalidCapacity
	}
	if initialStock < 0 || initialStock > maxCapacity {
		return nil, inventory.ErrInvalidQuantity
	}
	entry := &inventory.StockEntry{
		ID:           uuid.NewString(),
		MachineID:    machineID,
		ProductID:    productID,
		CurrentStock: initialStock,
		MaxCapacity:  maxCapacity,
		CreatedAt:    s.clock.Now(),
	}
	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.MachineByID(ctx, machineID); err != nil {
			return err
		}
		if _, err := tx.ProductByID(ctx, productID); err != nil {
			return err
		}
		return tx.InsertStockEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListByMachine returns the stock entries of one machine.
func (s *StockService) ListByMachine(ctx context.Context, machineID string) ([]inventory.StockEntry, error) {
	if machineID == "" {
		return s.reader.ListAll(ctx)
	}
	return s.reader.ListByMachine(ctx, machineID)
}
