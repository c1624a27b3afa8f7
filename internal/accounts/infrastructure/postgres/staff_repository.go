package postgres

import (
	"context"
	"database/sql"
	"errors"

	accounts "vendfleet/internal/accounts/domain"
)

// StaffRepository persists staff records in PostgreSQL.
type StaffRepository struct {
	db *sql.DB
}

// NewStaffRepository constructs a staff repository.
func NewStaffRepository(db *sql.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create inserts a staff record.
func (r *StaffRepository) Create(ctx context.Context, staff *accounts.Staff) error {
	if r == nil || r.db == nil {
		return errors.New("staff repository: nil db")
	}
	if staff == nil {
		return errors.New("staff repository: nil staff")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO staff (id, staff_no, name, phone, region_code, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		staff.ID, staff.StaffNo, staff.Name, staff.Phone, staff.RegionCode, staff.CreatedAt.UTC())
	return err
}

// List returns all staff ordered by staff number.
func (r *StaffRepository) List(ctx context.Context) ([]accounts.Staff, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("staff repository: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, staff_no, name, phone, region_code, created_at
FROM staff
ORDER BY staff_no, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []accounts.Staff
	for rows.Next() {
		var staff accounts.Staff
		if err := rows.Scan(&staff.ID, &staff.StaffNo, &staff.Name, &staff.Phone, &staff.RegionCode, &staff.CreatedAt); err != nil {
			return nil, err
		}
		staff.CreatedAt = staff.CreatedAt.UTC()
		result = append(result, staff)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a staff record. Its restocks go with it via cascade.
func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("staff repository: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return accounts.ErrStaffNotFound
	}
	return nil
}
