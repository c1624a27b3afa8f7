package accounts

import "errors"

var (
	// ErrAccountNotFound indicates a missing user account.
	ErrAccountNotFound = errors.New("accounts: account not found")
	// ErrStaffNotFound indicates a missing staff record.
	ErrStaffNotFound = errors.New("accounts: staff not found")
	// ErrAdminNotFound indicates a missing admin record.
	ErrAdminNotFound = errors.New("accounts: admin not found")
	// ErrInvalidCredentials is returned when a login attempt fails.
	ErrInvalidCredentials = errors.New("accounts: invalid credentials")
	// ErrNegativeBalance is returned when an account would be created with a negative balance.
	ErrNegativeBalance = errors.New("accounts: negative balance")
)
