package postgres

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	accounts "vendfleet/internal/accounts/domain"
	catalog "vendfleet/internal/catalog/domain"
	inventory "vendfleet/internal/inventory/domain"
	monitor "vendfleet/internal/monitor/domain"
)

// sqlTx implements the unit-of-work operations over one open transaction.
type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) ProductByID(ctx context.Context, id string) (*catalog.Product, error) {
	row := t.tx.QueryRowContext(ctx, `
SELECT id, name, cost_price, sell_price, supplier_id, created_at
FROM products
WHERE id = $1`, id)
	var product catalog.Product
	err := row.Scan(&product.ID, &product.Name, &product.CostPrice, &product.SellPrice, &product.SupplierID, &product.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	product.CreatedAt = product.CreatedAt.UTC()
	return &product, nil
}

func (t *sqlTx) machineQuery(ctx context.Context, id string, forUpdate bool) (*catalog.Machine, error) {
	query := `
SELECT id, code, location, status, region_code, created_at
FROM machines
WHERE id = $1`
	if forUpdate {
		query += `
FOR UPDATE`
	}
	row := t.tx.QueryRowContext(ctx, query, id)
	var machine catalog.Machine
	err := row.Scan(&machine.ID, &machine.Code, &machine.Location, &machine.Status, &machine.RegionCode, &machine.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrMachineNotFound
	}
	if err != nil {
		return nil, err
	}
	machine.CreatedAt = machine.CreatedAt.UTC()
	return &machine, nil
}

func (t *sqlTx) MachineByID(ctx context.Context, id string) (*catalog.Machine, error) {
	return t.machineQuery(ctx, id, false)
}

func (t *sqlTx) MachineForUpdate(ctx context.Context, id string) (*catalog.Machine, error) {
	return t.machineQuery(ctx, id, true)
}

func (t *sqlTx) SetMachineStatus(ctx context.Context, id, status string) error {
	result, err := t.tx.ExecContext(ctx, `
UPDATE machines SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return catalog.ErrMachineNotFound
	}
	return nil
}

func (t *sqlTx) StaffByID(ctx context.Context, id string) (*accounts.Staff, error) {
	row := t.tx.QueryRowContext(ctx, `
SELECT id, staff_no, name, phone, region_code, created_at
FROM staff
WHERE id = $1`, id)
	var staff accounts.Staff
	err := row.Scan(&staff.ID, &staff.StaffNo, &staff.Name, &staff.Phone, &staff.RegionCode, &staff.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, accounts.ErrStaffNotFound
	}
	if err != nil {
		return nil, err
	}
	staff.CreatedAt = staff.CreatedAt.UTC()
	return &staff, nil
}

func (t *sqlTx) AccountForUpdate(ctx context.Context, id string) (*accounts.Account, error) {
	row := t.tx.QueryRowContext(ctx, `
SELECT id, username, balance, created_at
FROM accounts
WHERE id = $1
FOR UPDATE`, id)
	var account accounts.Account
	err := row.Scan(&account.ID, &account.Username, &account.Balance, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, accounts.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	account.CreatedAt = account.CreatedAt.UTC()
	return &account, nil
}

func (t *sqlTx) SetAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	result, err := t.tx.ExecContext(ctx, `
UPDATE accounts SET balance = $1 WHERE id = $2`, balance, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return accounts.ErrAccountNotFound
	}
	return nil
}

func (t *sqlTx) StockEntryForUpdate(ctx context.Context, machineID, productID string) (*inventory.StockEntry, error) {
	row := t.tx.QueryRowContext(ctx, `
SELECT id, machine_id, product_id, current_stock, max_capacity, created_at
FROM stock_entries
WHERE machine_id = $1 AND product_id = $2
FOR UPDATE`, machineID, productID)
	var entry inventory.StockEntry
	err := row.Scan(&entry.ID, &entry.MachineID, &entry.ProductID, &entry.CurrentStock, &entry.MaxCapacity, &entry.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, inventory.ErrStockEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	return &entry, nil
}

func (t *sqlTx) SetStockLevel(ctx context.Context, entryID string, level int) error {
	result, err := t.tx.ExecContext(ctx, `
UPDATE stock_entries SET current_stock = $1 WHERE id = $2`, level, entryID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return inventory.ErrStockEntryNotFound
	}
	return nil
}

func (t *sqlTx) InsertStockEntry(ctx context.Context, entry *inventory.StockEntry) error {
	_, err := t.tx.ExecContext(ctx, `
INSERT INTO stock_entries (id, machine_id, product_id, current_stock, max_capacity, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.MachineID, entry.ProductID, entry.CurrentStock, entry.MaxCapacity, entry.CreatedAt)
	return err
}

func (t *sqlTx) InsertTransaction(ctx context.Context, transaction *inventory.Transaction) error {
	_, err := t.tx.ExecContext(ctx, `
INSERT INTO transactions (id, user_id, machine_id, product_id, amount, cost_price, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		transaction.ID, transaction.UserID, transaction.MachineID, transaction.ProductID,
		transaction.Amount, transaction.CostPrice, transaction.CreatedAt)
	return err
}

func (t *sqlTx) TransactionByID(ctx context.Context, id string) (*inventory.Transaction, error) {
	row := t.tx.QueryRowContext(ctx, `
SELECT id, user_id, machine_id, product_id, amount, cost_price, created_at
FROM transactions
WHERE id = $1`, id)
	var transaction inventory.Transaction
	err := row.Scan(&transaction.ID, &transaction.UserID, &transaction.MachineID, &transaction.ProductID,
		&transaction.Amount, &transaction.CostPrice, &transaction.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, inventory.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	transaction.CreatedAt = transaction.CreatedAt.UTC()
	return &transaction, nil
}

func (t *sqlTx) DeleteTransaction(ctx context.Context, id string) error {
	result, err := t.tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return inventory.ErrTransactionNotFound
	}
	return nil
}

func (t *sqlTx) InsertRestock(ctx context.Context, restock *inventory.Restock) error {
	_, err := t.tx.ExecContext(ctx, `
INSERT INTO restocks (id, staff_id, machine_id, product_id, quantity, unit_cost, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		restock.ID, restock.StaffID, restock.MachineID, restock.ProductID,
		restock.Quantity, restock.UnitCost, restock.CreatedAt)
	return err
}

func (t *sqlTx) RestockByID(ctx context.Context, id string) (*inventory.Restock, error) {
	row := t.tx.QueryRowContext(ctx, `
SELECT id, staff_id, machine_id, product_id, quantity, unit_cost, created_at
FROM restocks
WHERE id = $1`, id)
	var restock inventory.Restock
	err := row.Scan(&restock.ID, &restock.StaffID, &restock.MachineID, &restock.ProductID,
		&restock.Quantity, &restock.UnitCost, &restock.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, inventory.ErrRestockNotFound
	}
	if err != nil {
		return nil, err
	}
	restock.CreatedAt = restock.CreatedAt.UTC()
	return &restock, nil
}

func (t *sqlTx) DeleteRestock(ctx context.Context, id string) error {
	result, err := t.tx.ExecContext(ctx, `DELETE FROM restocks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return inventory.ErrRestockNotFound
	}
	return nil
}

func (t *sqlTx) InsertAlert(ctx context.Context, alert *monitor.Alert) error {
	_, err := t.tx.ExecContext(ctx, `
INSERT INTO alerts (id, machine_id, alert_type, message, created_at)
VALUES ($1, $2, $3, $4, $5)`,
		alert.ID, alert.MachineID, alert.AlertType, alert.Message, alert.CreatedAt)
	return err
}
