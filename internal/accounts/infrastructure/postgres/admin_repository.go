package postgres

import (
	"context"
	"database/sql"
	"errors"

	accounts "vendfleet/internal/accounts/domain"
)

// AdminRepository persists admin credentials in PostgreSQL.
type AdminRepository struct {
	db *sql.DB
}

// NewAdminRepository constructs an admin repository.
func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Create inserts an admin.
func (r *AdminRepository) Create(ctx context.Context, admin *accounts.Admin) error {
	if r == nil || r.db == nil {
		return errors.New("admin repository: nil db")
	}
	if admin == nil {
		return errors.New("admin repository: nil admin")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO admins (id, username, password_hash, permission, created_at)
VALUES ($1, $2, $3, $4, $5)`,
		admin.ID, admin.Username, admin.PasswordHash, admin.Permission, admin.CreatedAt.UTC())
	return err
}

// GetByUsername returns one admin by login name.
func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*accounts.Admin, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("admin repository: nil db")
	}
	var admin accounts.Admin
	err := r.db.QueryRowContext(ctx, `
SELECT id, username, password_hash, permission, created_at
FROM admins
WHERE username = $1`, username).Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.Permission, &admin.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, accounts.ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	admin.CreatedAt = admin.CreatedAt.UTC()
	return &admin, nil
}
