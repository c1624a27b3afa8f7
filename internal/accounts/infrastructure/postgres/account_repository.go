package postgres

import (
	"context"
	"database/sql"
	"errors"

	accounts "vendfleet/internal/accounts/domain"
)

// AccountRepository persists user accounts in PostgreSQL. It never touches
// balances after creation; the inventory store owns those writes.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository constructs an account repository.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts an account.
func (r *AccountRepository) Create(ctx context.Context, account *accounts.Account) error {
	if r == nil || r.db == nil {
		return errors.New("account repository: nil db")
	}
	if account == nil {
		return errors.New("account repository: nil account")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO accounts (id, username, balance, created_at)
VALUES ($1, $2, $3, $4)`,
		account.ID, account.Username, account.Balance, account.CreatedAt.UTC())
	return err
}

// GetByID returns one account.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*accounts.Account, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("account repository: nil db")
	}
	var account accounts.Account
	err := r.db.QueryRowContext(ctx, `
SELECT id, username, balance, created_at
FROM accounts
WHERE id = $1`, id).Scan(&account.ID, &account.Username, &account.Balance, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, accounts.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	account.CreatedAt = account.CreatedAt.UTC()
	return &account, nil
}

// List returns all accounts ordered by username.
func (r *AccountRepository) List(ctx context.Context) ([]accounts.Account, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("account repository: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, username, balance, created_at
FROM accounts
ORDER BY username, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []accounts.Account
	for rows.Next() {
		var account accounts.Account
		if err := rows.Scan(&account.ID, &account.Username, &account.Balance, &account.CreatedAt); err != nil {
			return nil, err
		}
		account.CreatedAt = account.CreatedAt.UTC()
		result = append(result, account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes an account. Its transactions go with it via cascade.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("account repository: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
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
