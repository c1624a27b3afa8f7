package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"vendfleet/internal/accounts/application"
	accounts "vendfleet/internal/accounts/domain"
)

type fakeAccountRepo struct {
	accounts map[string]accounts.Account
}

func (r *fakeAccountRepo) Create(ctx context.Context, account *accounts.Account) error {
	r.accounts[account.ID] = *account
	return nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id string) (*accounts.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return nil, accounts.ErrAccountNotFound
	}
	return &account, nil
}

func (r *fakeAccountRepo) List(ctx context.Context) ([]accounts.Account, error) {
	result := make([]accounts.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		result = append(result, account)
	}
	return result, nil
}

func (r *fakeAccountRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.accounts[id]; !ok {
		return accounts.ErrAccountNotFound
	}
	delete(r.accounts, id)
	return nil
}

type fakeStaffRepo struct {
	staff map[string]accounts.Staff
}

func (r *fakeStaffRepo) Create(ctx context.Context, staff *accounts.Staff) error {
	r.staff[staff.ID] = *staff
	return nil
}

func (r *fakeStaffRepo) List(ctx context.Context) ([]accounts.Staff, error) {
	result := make([]accounts.Staff, 0, len(r.staff))
	for _, staff := range r.staff {
		result = append(result, staff)
	}
	return result, nil
}

func (r *fakeStaffRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.staff[id]; !ok {
		return accounts.ErrStaffNotFound
	}
	delete(r.staff, id)
	return nil
}

type fakeAdminRepo struct {
	admins map[string]accounts.Admin
}

func (r *fakeAdminRepo) Create(ctx context.Context, admin *accounts.Admin) error {
	r.admins[admin.Username] = *admin
	return nil
}

func (r *fakeAdminRepo) GetByUsername(ctx context.Context, username string) (*accounts.Admin, error) {
	admin, ok := r.admins[username]
	if !ok {
		return nil, accounts.ErrAdminNotFound
	}
	return &admin, nil
}

func newService(t *testing.T) *application.Service {
	t.Helper()
	service, err := application.NewService(
		&fakeAccountRepo{accounts: make(map[string]accounts.Account)},
		&fakeStaffRepo{staff: make(map[string]accounts.Staff)},
		&fakeAdminRepo{admins: make(map[string]accounts.Admin)},
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service
}

func TestCreateAccount(t *testing.T) {
	service := newService(t)
	ctx := context.Background()

	account, err := service.CreateAccount(ctx, "student001", decimal.RequireFromString("100.00"))
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	got, err := service.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if !got.Balance.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("expected balance 100.00, got %s", got.Balance)
	}
}

func TestCreateAccountRejectsNegativeBalance(t *testing.T) {
	service := newService(t)
	if _, err := service.CreateAccount(context.Background(), "student001", decimal.RequireFromString("-1.00")); !errors.Is(err, accounts.ErrNegativeBalance) {
		t.Fatalf("expected ErrNegativeBalance, got %v", err)
	}
}

func TestAuthenticateRoundTrip(t *testing.T) {
	service := newService(t)
	ctx := context.Background()

	created, err := service.CreateAdmin(ctx, "superadmin", "admin123", "admin")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if created.PasswordHash == "admin123" {
		t.Fatal("password stored in clear")
	}

	admin, err := service.Authenticate(ctx, "superadmin", "admin123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if admin.Username != "superadmin" || admin.Permission != "admin" {
		t.Fatalf("unexpected admin: %+v", admin)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	service := newService(t)
	ctx := context.Background()

	if _, err := service.CreateAdmin(ctx, "superadmin", "admin123", ""); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if _, err := service.Authenticate(ctx, "superadmin", "wrong"); !errors.Is(err, accounts.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	// Unknown usernames fail the same way as wrong passwords.
	if _, err := service.Authenticate(ctx, "nobody", "admin123"); !errors.Is(err, accounts.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestCreateAdminDefaultsPermission(t *testing.T) {
	service := newService(t)
	admin, err := service.CreateAdmin(context.Background(), "ops", "secret", "")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if admin.Permission != "admin" {
		t.Fatalf("expected default permission admin, got %s", admin.Permission)
	}
}

func TestCreateStaffValidation(t *testing.T) {
	service := newService(t)
	ctx := context.Background()

	if _, err := service.CreateStaff(ctx, "", "Alice Zhang", "", ""); err == nil {
		t.Fatal("expected error for missing staff number")
	}
	staff, err := service.CreateStaff(ctx, "S001", "Alice Zhang", "13800000001", "R1")
	if err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}
	if staff.StaffNo != "S001" {
		t.Fatalf("unexpected staff: %+v", staff)
	}
}
