package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	accounts "vendfleet/internal/accounts/domain"
	catalog "vendfleet/internal/catalog/domain"
	inventory "vendfleet/internal/inventory/domain"
	monitor "vendfleet/internal/monitor/domain"
)

// Store opens atomic units of work over the shared state. Everything a
// processor does between InTx entering and returning happens in one storage
// transaction: either all of it commits or none of it does.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of operations available inside one atomic unit. The ForUpdate
// reads take a row-level lock held until commit or abort, so concurrent
// mutations on the same (machine, product) entry or the same account
// serialize while distinct rows do not contend.
type Tx interface {
	ProductByID(ctx context.Context, id string) (*catalog.Product, error)
	MachineByID(ctx context.Context, id string) (*catalog.Machine, error)
	MachineForUpdate(ctx context.Context, id string) (*catalog.Machine, error)
	SetMachineStatus(ctx context.Context, id, status string) error
	StaffByID(ctx context.Context, id string) (*accounts.Staff, error)

	AccountForUpdate(ctx context.Context, id string) (*accounts.Account, error)
	SetAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error

	StockEntryForUpdate(ctx context.Context, machineID, productID string) (*inventory.StockEntry, error)
	SetStockLevel(ctx context.Context, entryID string, level int) error
	InsertStockEntry(ctx context.Context, entry *inventory.StockEntry) error

	InsertTransaction(ctx context.Context, transaction *inventory.Transaction) error
	TransactionByID(ctx context.Context, id string) (*inventory.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	InsertRestock(ctx context.Context, restock *inventory.Restock) error
	RestockByID(ctx context.Context, id string) (*inventory.Restock, error)
	DeleteRestock(ctx context.Context, id string) error

	InsertAlert(ctx context.Context, alert *monitor.Alert) error
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
