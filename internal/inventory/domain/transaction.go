package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the immutable record of one purchase. CostPrice is the
// product's cost at purchase time, so historical profit is unaffected by
// later price changes.
type Transaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	MachineID string          `json:"machine_id"`
	ProductID string          `json:"product_id"`
	Amount    decimal.Decimal `json:"amount"`
	CostPrice decimal.Decimal `json:"cost_price"`
	CreatedAt time.Time       `json:"created_at"`
}

// Profit is the margin on this transaction. Derived, never stored.
func (t Transaction) Profit() decimal.Decimal {
	return t.Amount.Sub(t.CostPrice)
}

// Restock is the immutable record of one restock run. UnitCost is the
// product's cost at restock time.
type Restock struct {
	ID        string          `json:"id"`
	StaffID   string          `json:"staff_id"`
	MachineID string          `json:"machine_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	CreatedAt time.Time       `json:"created_at"`
}

// TotalCost is quantity times unit cost. Derived, never stored.
func (r Restock) TotalCost() decimal.Decimal {
	return r.UnitCost.Mul(decimal.NewFromInt(int64(r.Quantity)))
}
