package postgres

import (
	"context"
	"database/sql"
	"errors"

	catalog "vendfleet/internal/catalog/domain"
)

// MachineRepository persists machines in PostgreSQL.
type MachineRepository struct {
	db *sql.DB
}

// NewMachineRepository constructs a machine repository.
func NewMachineRepository(db *sql.DB) *MachineRepository {
	return &MachineRepository{db: db}
}

// Create inserts a machine.
func (r *MachineRepository) Create(ctx context.Context, machine *catalog.Machine) error {
	if r == nil || r.db == nil {
		return errors.New("machine repository: nil db")
	}
	if machine == nil {
		return errors.New("machine repository: nil machine")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO machines (id, code, location, status, region_code, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		machine.ID, machine.Code, machine.Location, machine.Status, machine.RegionCode, machine.CreatedAt.UTC())
	return err
}

// GetByID returns one machine.
func (r *MachineRepository) GetByID(ctx context.Context, id string) (*catalog.Machine, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("machine repository: nil db")
	}
	var machine catalog.Machine
	err := r.db.QueryRowContext(ctx, `
SELECT id, code, location, status, region_code, created_at
FROM machines
WHERE id = $1`, id).Scan(&machine.ID, &machine.Code, &machine.Location, &machine.Status, &machine.RegionCode, &machine.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrMachineNotFound
	}
	if err != nil {
		return nil, err
	}
	machine.CreatedAt = machine.CreatedAt.UTC()
	return &machine, nil
}

// List returns all machines ordered by code.
func (r *MachineRepository) List(ctx context.Context) ([]catalog.Machine, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("machine repository: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, code, location, status, region_code, created_at
FROM machines
ORDER BY code, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var machines []catalog.Machine
	for rows.Next() {
		var machine catalog.Machine
		if err := rows.Scan(&machine.ID, &machine.Code, &machine.Location, &machine.Status, &machine.RegionCode, &machine.CreatedAt); err != nil {
			return nil, err
		}
		machine.CreatedAt = machine.CreatedAt.UTC()
		machines = append(machines, machine)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return machines, nil
}

// ListMachines satisfies the aggregation side's machine listing.
func (r *MachineRepository) ListMachines(ctx context.Context) ([]catalog.Machine, error) {
	return r.List(ctx)
}

// Delete removes a machine and, by cascade, its stock entries and history.
func (r *MachineRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("machine repository: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM machines WHERE id = $1`, id)
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
