package application

import (
	"context"
	"errors"

	catalog "vendfleet/internal/catalog/domain"
	inventory "vendfleet/internal/inventory/domain"
	monitor "vendfleet/internal/monitor/domain"
	"vendfleet/internal/observability/metrics"
)

// Ledger is the single mutation path for stock counters. Processors compose
// its operations inside their own atomic unit; the ledger never opens a
// transaction itself. Downward mutations run the alert emitter in the same
// unit, so an alert exists exactly when the transition that caused it
// committed.
type Ledger struct {
	clock Clock
}

// LedgerOption customizes the ledger.
type LedgerOption func(*Ledger)

// WithLedgerClock assigns a clock.
func WithLedgerClock(clock Clock) LedgerOption {
	return func(l *Ledger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// NewLedger constructs a stock ledger.
func NewLedger(opts ...LedgerOption) *Ledger {
	ledger := &Ledger{clock: SystemClock{}}
	for _, opt := range opts {
		opt(ledger)
	}
	return ledger
}

// Decrement removes one unit from the (machine, product) entry. It fails with
// ErrInsufficientStock when the slot is already empty and mutates nothing.
// The emitter sees the (old, new) transition synchronously.
func (l *Ledger) Decrement(ctx context.Context, tx Tx, machineID string, product *catalog.Product) (*inventory.StockEntry, error) {
	if product == nil {
		return nil, catalog.ErrProductNotFound
	}
	entry, err := tx.StockEntryForUpdate(ctx, machineID, product.ID)
	if err != nil {
		return nil, err
	}
	if entry.CurrentStock <= 0 {
		return nil, inventory.ErrInsufficientStock
	}
	oldStock := entry.CurrentStock
	entry.CurrentStock = oldStock - 1
	if err := tx.SetStockLevel(ctx, entry.ID, entry.CurrentStock); err != nil {
		return nil, err
	}
	if err := l.emitStockAlerts(ctx, tx, entry, product.Name, oldStock); err != nil {
		return nil, err
	}
	return entry, nil
}

// Increment adds quantity units, clamped to the entry's max capacity.
// Restocking never crosses an alert band upward, so no alerts are evaluated.
func (l *Ledger) Increment(ctx context.Context, tx Tx, machineID, productID string, quantity int) (*inventory.StockEntry, error) {
	if quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	entry, err := tx.StockEntryForUpdate(ctx, machineID, productID)
	if err != nil {
		return nil, err
	}
	entry.CurrentStock = entry.Clamp(entry.CurrentStock + quantity)
	if err := tx.SetStockLevel(ctx, entry.ID, entry.CurrentStock); err != nil {
		return nil, err
	}
	return entry, nil
}

// ReverseDecrement compensates a voided purchase by restoring one unit,
// clamped to capacity. A missing entry is a no-op: voids are best-effort and
// the entry may have been cascade-deleted since the purchase. Compensations
// never regenerate alerts.
func (l *Ledger) ReverseDecrement(ctx context.Context, tx Tx, machineID, productID string) error {
	entry, err := tx.StockEntryForUpdate(ctx, machineID, productID)
	if errors.Is(err, inventory.ErrStockEntryNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	entry.CurrentStock = entry.Clamp(entry.CurrentStock + 1)
	return tx.SetStockLevel(ctx, entry.ID, entry.CurrentStock)
}

// ReverseIncrement compensates a voided restock by removing quantity units,
// clamped to zero. Because this is a downward mutation it runs the emitter:
// a bulk removal can cross the low-stock band and the zero line in one step
// and then emits both alerts.
func (l *Ledger) ReverseIncrement(ctx context.Context, tx Tx, machineID string, product *catalog.Product, quantity int) error {
	if product == nil {
		return catalog.ErrProductNotFound
	}
	if quantity <= 0 {
		return inventory.ErrInvalidQuantity
	}
	entry, err := tx.StockEntryForUpdate(ctx, machineID, product.ID)
	if errors.Is(err, inventory.ErrStockEntryNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	oldStock := entry.CurrentStock
	entry.CurrentStock = entry.Clamp(oldStock - quantity)
	if err := tx.SetStockLevel(ctx, entry.ID, entry.CurrentStock); err != nil {
		return err
	}
	return l.emitStockAlerts(ctx, tx, entry, product.Name, oldStock)
}

func (l *Ledger) emitStockAlerts(ctx context.Context, tx Tx, entry *inventory.StockEntry, productName string, oldStock int) error {
	alerts := monitor.EvaluateStockTransition(monitor.StockTransition{
		MachineID:   entry.MachineID,
		ProductName: productName,
		OldStock:    oldStock,
		NewStock:    entry.CurrentStock,
	}, l.clock.Now())
	for i := range alerts {
		if err := tx.InsertAlert(ctx, &alerts[i]); err != nil {
			return err
		}
		metrics.IncAlertEmitted(alerts[i].AlertType)
	}
	return nil
}
