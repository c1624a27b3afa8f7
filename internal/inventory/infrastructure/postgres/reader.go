package postgres

import (
	"context"
	"database/sql"
	"errors"

	inventory "vendfleet/internal/inventory/domain"
)

// Reader serves read-only inventory queries outside of any unit of work.
type Reader struct {
	db *sql.DB
}

// NewReader constructs a reader.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// ListByMachine returns the stock entries of one machine.
func (r *Reader) ListByMachine(ctx context.Context, machineID string) ([]inventory.StockEntry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("inventory reader: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, machine_id, product_id, current_stock, max_capacity, created_at
FROM stock_entries
WHERE machine_id = $1
ORDER BY product_id`, machineID)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// ListAll returns every stock entry.
func (r *Reader) ListAll(ctx context.Context) ([]inventory.StockEntry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("inventory reader: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, machine_id, product_id, current_stock, max_capacity, created_at
FROM stock_entries
ORDER BY machine_id, product_id`)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]inventory.StockEntry, error) {
	defer rows.Close()
	var result []inventory.StockEntry
	for rows.Next() {
		var entry inventory.StockEntry
		if err := rows.Scan(&entry.ID, &entry.MachineID, &entry.ProductID, &entry.CurrentStock, &entry.MaxCapacity, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListTransactions returns the most recent transactions, newest first.
func (r *Reader) ListTransactions(ctx context.Context, limit int) ([]inventory.Transaction, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("inventory reader: nil db")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, machine_id, product_id, amount, cost_price, created_at
FROM transactions
ORDER BY created_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []inventory.Transaction
	for rows.Next() {
		var transaction inventory.Transaction
		if err := rows.Scan(&transaction.ID, &transaction.UserID, &transaction.MachineID, &transaction.ProductID,
			&transaction.Amount, &transaction.CostPrice, &transaction.CreatedAt); err != nil {
			return nil, err
		}
		transaction.CreatedAt = transaction.CreatedAt.UTC()
		result = append(result, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListRestocks returns the most recent restocks, newest first.
func (r *Reader) ListRestocks(ctx context.Context, limit int) ([]inventory.Restock, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("inventory reader: nil db")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, staff_id, machine_id, product_id, quantity, unit_cost, created_at
FROM restocks
ORDER BY created_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []inventory.Restock
	for rows.Next() {
		var restock inventory.Restock
		if err := rows.Scan(&restock.ID, &restock.StaffID, &restock.MachineID, &restock.ProductID,
			&restock.Quantity, &restock.UnitCost, &restock.CreatedAt); err != nil {
			return nil, err
		}
		restock.CreatedAt = restock.CreatedAt.UTC()
		result = append(result, restock)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
