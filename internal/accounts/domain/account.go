package accounts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is an app user with a prepaid balance. The balance is only mutated
// by the transaction processor inside a locked storage transaction.
type Account struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// Staff is an operations worker who performs restocks.
type Staff struct {
	ID         string    `json:"id"`
	StaffNo    string    `json:"staff_no"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	RegionCode string    `json:"region_code"`
	CreatedAt  time.Time `json:"created_at"`
}

// Admin is a back-office operator who signs in to the management API.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Permission   string    `json:"permission"`
	CreatedAt    time.Time `json:"created_at"`
}
