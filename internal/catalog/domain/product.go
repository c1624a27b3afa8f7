package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item supplied by one supplier.
// CostPrice and SellPrice are the current prices; transactions and restocks
// snapshot them at creation time.
type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	CostPrice  decimal.Decimal `json:"cost_price"`
	SellPrice  decimal.Decimal `json:"sell_price"`
	SupplierID string          `json:"supplier_id"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Supplier provides products.
type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	CreatedAt time.Time `json:"created_at"`
}
