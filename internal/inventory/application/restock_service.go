package application

import (
	"context"
	"errors"

	"github.com/google/uuid"

	inventory "vendfleet/internal/inventory/domain"
	"vendfleet/internal/observability/metrics"
)

// RestockService orchestrates restocks and their compensating voids.
type RestockService struct {
	store  Store
	ledger *Ledger
	clock  Clock
}

// RestockServiceOption customizes the service.
type RestockServiceOption func(*RestockService)

// WithRestockClock assigns a clock.
func WithRestockClock(clock Clock) RestockServiceOption {
	return func(s *RestockService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewRestockService constructs a restock service.
func NewRestockService(store Store, ledger *Ledger, opts ...RestockServiceOption) (*RestockService, error) {
	if store == nil {
		return nil, errors.New("restock service: nil store")
	}
	if ledger == nil {
		return nil, errors.New("restock service: nil ledger")
	}
	service := &RestockService{store: store, ledger: ledger, clock: SystemClock{}}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Restock adds quantity units to the (machine, product) entry, clamped to
// capacity, and records the run with the product's current cost as the unit
// cost snapshot. Increment and record are one atomic unit.
func (s *RestockService) Restock(ctx context.Context, staffID, machineID, productID string, quantity int) (*inventory.Restock, error) {
	if quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	var created *inventory.Restock
	err := s.store.InTx(ctx, func(tx Tx) error {
		staff, err := tx.StaffByID(ctx, staffID)
		if err != nil {
			return err
		}
		product, err := tx.ProductByID(ctx, productID)
		if err != nil {
			return err
		}
		machine, err := tx.MachineByID(ctx, machineID)
		if err != nil {
			return err
		}
		if _, err := s.ledger.Increment(ctx, tx, machine.ID, product.ID, quantity); err != nil {
			return err
		}
		restock := &inventory.Restock{
			ID:        uuid.NewString(),
			StaffID:   staff.ID,
			MachineID: machine.ID,
			ProductID: product.ID,
			Quantity:  quantity,
			UnitCost:  product.CostPrice,
			CreatedAt: s.clock.Now(),
		}
		if err := tx.InsertRestock(ctx, restock); err != nil {
			return err
		}
		created = restock
		return nil
	})
	if err != nil {
		metrics.IncRestock("rejected")
		return nil, err
	}
	metrics.IncRestock("success")
	return created, nil
}

// Void compensates a restock: the quantity is removed again, clamped to
// zero, and the record is deleted. The downward mutation runs the alert
// emitter. A vanished stock entry makes the reversal a no-op.
func (s *RestockService) Void(ctx context.Context, restockID string) error {
	err := s.store.InTx(ctx, func(tx Tx) error {
		restock, err := tx.RestockByID(ctx, restockID)
		if err != nil {
			return err
		}
		product, err := tx.ProductByID(ctx, restock.ProductID)
		if err != nil {
			return err
		}
		if err := s.ledger.ReverseIncrement(ctx, tx, restock.MachineID, product, restock.Quantity); err != nil {
			return err
		}
		return tx.DeleteRestock(ctx, restock.ID)
	})
	if err != nil {
		metrics.IncVoid("restock", "rejected")
		return err
	}
	metrics.IncVoid("restock", "success")
	return nil
}
