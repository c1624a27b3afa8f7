package application

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	accounts "vendfleet/internal/accounts/domain"
)

// AccountRepository persists user accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *accounts.Account) error
	GetByID(ctx context.Context, id string) (*accounts.Account, error)
	List(ctx context.Context) ([]accounts.Account, error)
	Delete(ctx context.Context, id string) error
}

// StaffRepository persists staff records.
type StaffRepository interface {
	Create(ctx context.Context, staff *accounts.Staff) error
	List(ctx context.Context) ([]accounts.Staff, error)
	Delete(ctx context.Context, id string) error
}

// AdminRepository persists admin records.
type AdminRepository interface {
	Create(ctx context.Context, admin *accounts.Admin) error
	GetByUsername(ctx context.Context, username string) (*accounts.Admin, error)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Service manages user accounts, staff and admin credentials. Balances are
// never mutated here; only the transaction processor touches them, under a
// row lock.
type Service struct {
	accounts AccountRepository
	staff    StaffRepository
	admins   AdminRepository
	clock    Clock
}

// ServiceOption customizes the service.
type ServiceOption func(*Service)

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService constructs an accounts service.
func NewService(accountRepo AccountRepository, staffRepo StaffRepository, adminRepo AdminRepository, opts ...ServiceOption) (*Service, error) {
	if accountRepo == nil || staffRepo == nil || adminRepo == nil {
		return nil, errors.New("accounts: nil repository")
	}
	service := &Service{accounts: accountRepo, staff: staffRepo, admins: adminRepo, clock: systemClock{}}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CreateAccount registers a user account with an initial balance.
func (s *Service) CreateAccount(ctx context.Context, username string, balance decimal.Decimal) (*accounts.Account, error) {
	if username == "" {
		return nil, errors.New("accounts: username required")
	}
	if balance.IsNegative() {
		return nil, accounts.ErrNegativeBalance
	}
	account := &accounts.Account{
		ID:        uuid.NewString(),
		Username:  username,
		Balance:   balance,
		CreatedAt: s.clock.Now(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount returns one account.
func (s *Service) GetAccount(ctx context.Context, id string) (*accounts.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// ListAccounts returns all accounts.
func (s *Service) ListAccounts(ctx context.Context) ([]accounts.Account, error) {
	return s.accounts.List(ctx)
}

// DeleteAccount removes an account and, by cascade, its transactions.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	return s.accounts.Delete(ctx, id)
}

// CreateStaff registers a staff member.
func (s *Service) CreateStaff(ctx context.Context, staffNo, name, phone, regionCode string) (*accounts.Staff, error) {
	if staffNo == "" || name == "" {
		return nil, errors.New("accounts: staff number and name required")
	}
	staff := &accounts.Staff{
		ID:         uuid.NewString(),
		StaffNo:    staffNo,
		Name:       name,
		Phone:      phone,
		RegionCode: regionCode,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return nil, err
	}
	return staff, nil
}

// ListStaff returns all staff.
func (s *Service) ListStaff(ctx context.Context) ([]accounts.Staff, error) {
	return s.staff.List(ctx)
}

// CreateAdmin registers an admin with a hashed password.
func (s *Service) CreateAdmin(ctx context.Context, username, password, permission string) (*accounts.Admin, error) {
	if username == "" || password == "" {
		return nil, errors.New("accounts: admin username and password required")
	}
	if permission == "" {
		permission = "admin"
	}
	admin := &accounts.Admin{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: HashPassword(password),
		Permission:   permission,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// Authenticate checks admin credentials and returns the admin on success.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*accounts.Admin, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if errors.Is(err, accounts.ErrAdminNotFound) {
		return nil, accounts.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	hash := HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(admin.PasswordHash)) != 1 {
		return nil, accounts.ErrInvalidCredentials
	}
	return admin, nil
}

// HashPassword returns the hex SHA-256 digest of a password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
