package postgres

import (
	"context"
	"database/sql"
	"errors"

	catalog "vendfleet/internal/catalog/domain"
)

// SupplierRepository persists suppliers in PostgreSQL.
type SupplierRepository struct {
	db *sql.DB
}

// NewSupplierRepository constructs a supplier repository.
func NewSupplierRepository(db *sql.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// Create inserts a supplier.
func (r *SupplierRepository) Create(ctx context.Context, supplier *catalog.Supplier) error {
	if r == nil || r.db == nil {
		return errors.New("supplier repository: nil db")
	}
	if supplier == nil {
		return errors.New("supplier repository: nil supplier")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO suppliers (id, name, contact, created_at)
VALUES ($1, $2, $3, $4)`,
		supplier.ID, supplier.Name, supplier.Contact, supplier.CreatedAt.UTC())
	return err
}

// GetByID returns one supplier.
func (r *SupplierRepository) GetByID(ctx context.Context, id string) (*catalog.Supplier, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("supplier repository: nil db")
	}
	var supplier catalog.Supplier
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, contact, created_at
FROM suppliers
WHERE id = $1`, id).Scan(&supplier.ID, &supplier.Name, &supplier.Contact, &supplier.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrSupplierNotFound
	}
	if err != nil {
		return nil, err
	}
	supplier.CreatedAt = supplier.CreatedAt.UTC()
	return &supplier, nil
}

// List returns all suppliers ordered by name.
func (r *SupplierRepository) List(ctx context.Context) ([]catalog.Supplier, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("supplier repository: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, contact, created_at
FROM suppliers
ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []catalog.Supplier
	for rows.Next() {
		var supplier catalog.Supplier
		if err := rows.Scan(&supplier.ID, &supplier.Name, &supplier.Contact, &supplier.CreatedAt); err != nil {
			return nil, err
		}
		supplier.CreatedAt = supplier.CreatedAt.UTC()
		suppliers = append(suppliers, supplier)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return suppliers, nil
}

// Delete removes a supplier. Dependent products and their rows go with it via
// the schema's ON DELETE CASCADE.
func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("supplier repository: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return catalog.ErrSupplierNotFound
	}
	return nil
}
