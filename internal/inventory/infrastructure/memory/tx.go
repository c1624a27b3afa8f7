package memory

import (
	"context"

	"github.com/shopspring/decimal"

	accounts "vendfleet/internal/accounts/domain"
	catalog "vendfleet/internal/catalog/domain"
	inventory "vendfleet/internal/inventory/domain"
	monitor "vendfleet/internal/monitor/domain"
)

// memTx operates on the draft state of one unit of work. The store mutex is
// held for the whole unit, so no further locking happens here.
type memTx struct {
	state *state
}

func (t *memTx) ProductByID(ctx context.Context, id string) (*catalog.Product, error) {
	_ = ctx
	product, ok := t.state.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &product, nil
}

func (t *memTx) MachineByID(ctx context.Context, id string) (*catalog.Machine, error) {
	_ = ctx
	machine, ok := t.state.machines[id]
	if !ok {
		return nil, catalog.ErrMachineNotFound
	}
	return &machine, nil
}

func (t *memTx) MachineForUpdate(ctx context.Context, id string) (*catalog.Machine, error) {
	return t.MachineByID(ctx, id)
}

func (t *memTx) SetMachineStatus(ctx context.Context, id, status string) error {
	_ = ctx
	machine, ok := t.state.machines[id]
	if !ok {
		return catalog.ErrMachineNotFound
	}
	machine.Status = status
	t.state.machines[id] = machine
	return nil
}

func (t *memTx) StaffByID(ctx context.Context, id string) (*accounts.Staff, error) {
	_ = ctx
	staff, ok := t.state.staff[id]
	if !ok {
		return nil, accounts.ErrStaffNotFound
	}
	return &staff, nil
}

func (t *memTx) AccountForUpdate(ctx context.Context, id string) (*accounts.Account, error) {
	_ = ctx
	account, ok := t.state.accounts[id]
	if !ok {
		return nil, accounts.ErrAccountNotFound
	}
	return &account, nil
}

func (t *memTx) SetAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	_ = ctx
	account, ok := t.state.accounts[id]
	if !ok {
		return accounts.ErrAccountNotFound
	}
	account.Balance = balance
	t.state.accounts[id] = account
	return nil
}

func (t *memTx) StockEntryForUpdate(ctx context.Context, machineID, productID string) (*inventory.StockEntry, error) {
	_ = ctx
	entry, ok := t.state.entries[entryKey(machineID, productID)]
	if !ok {
		return nil, inventory.ErrStockEntryNotFound
	}
	return &entry, nil
}

func (t *memTx) SetStockLevel(ctx context.Context, entryID string, level int) error {
	_ = ctx
	for key, entry := range t.state.entries {
		if entry.ID == entryID {
			entry.CurrentStock = level
			t.state.entries[key] = entry
			return nil
		}
	}
	return inventory.ErrStockEntryNotFound
}

func (t *memTx) InsertStockEntry(ctx context.Context, entry *inventory.StockEntry) error {
	_ = ctx
	key := entryKey(entry.MachineID, entry.ProductID)
	if _, exists := t.state.entries[key]; exists {
		return inventory.ErrConstraintViolation
	}
	t.state.entries[key] = *entry
	return nil
}

func (t *memTx) InsertTransaction(ctx context.Context, transaction *inventory.Transaction) error {
	_ = ctx
	t.state.transactions[transaction.ID] = *transaction
	return nil
}

func (t *memTx) TransactionByID(ctx context.Context, id string) (*inventory.Transaction, error) {
	_ = ctx
	transaction, ok := t.state.transactions[id]
	if !ok {
		return nil, inventory.ErrTransactionNotFound
	}
	return &transaction, nil
}

func (t *memTx) DeleteTransaction(ctx context.Context, id string) error {
	_ = ctx
	if _, ok := t.state.transactions[id]; !ok {
		return inventory.ErrTransactionNotFound
	}
	delete(t.state.transactions, id)
	return nil
}

func (t *memTx) InsertRestock(ctx context.Context, restock *inventory.Restock) error {
	_ = ctx
	t.state.restocks[restock.ID] = *restock
	return nil
}

func (t *memTx) RestockByID(ctx context.Context, id string) (*inventory.Restock, error) {
	_ = ctx
	restock, ok := t.state.restocks[id]
	if !ok {
		return nil, inventory.ErrRestockNotFound
	}
	return &restock, nil
}

func (t *memTx) DeleteRestock(ctx context.Context, id string) error {
	_ = ctx
	if _, ok := t.state.restocks[id]; !ok {
		return inventory.ErrRestockNotFound
	}
	delete(t.state.restocks, id)
	return nil
}

func (t *memTx) InsertAlert(ctx context.Context, alert *monitor.Alert) error {
	_ = ctx
	t.state.alerts = append(t.state.alerts, *alert)
	return nil
}
