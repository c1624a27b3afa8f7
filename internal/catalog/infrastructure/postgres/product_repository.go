package postgres

import (
	"context"
	"database/sql"
	"errors"

	catalog "vendfleet/internal/catalog/domain"
)

// ProductRepository persists products in PostgreSQL.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository constructs a product repository.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a product.
func (r *ProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	if r == nil || r.db == nil {
		return errors.New("product repository: nil db")
	}
	if product == nil {
		return errors.New("product repository: nil product")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO products (id, name, cost_price, sell_price, supplier_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		product.ID, product.Name, product.CostPrice, product.SellPrice, product.SupplierID, product.CreatedAt.UTC())
	return err
}

// GetByID returns one product.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("product repository: nil db")
	}
	var product catalog.Product
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, cost_price, sell_price, supplier_id, created_at
FROM products
WHERE id = $1`, id).Scan(&product.ID, &product.Name, &product.CostPrice, &product.SellPrice, &product.SupplierID, &product.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	product.CreatedAt = product.CreatedAt.UTC()
	return &product, nil
}

// List returns all products ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("product repository: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, cost_price, sell_price, supplier_id, created_at
FROM products
ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var product catalog.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.CostPrice, &product.SellPrice, &product.SupplierID, &product.CreatedAt); err != nil {
			return nil, err
		}
		product.CreatedAt = product.CreatedAt.UTC()
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// Delete removes a product and, by cascade, its stock entries and history.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("product repository: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}
