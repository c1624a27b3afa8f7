package inventory

import "time"

// StockEntry is the bounded stock counter for one (machine, product) slot.
// Invariant: 0 <= CurrentStock <= MaxCapacity after every mutation. Only the
// stock ledger writes CurrentStock; every mutation path funnels through it.
type StockEntry struct {
	ID           string    `json:"id"`
	MachineID    string    `json:"machine_id"`
	ProductID    string    `json:"product_id"`
	CurrentStock int       `json:"current_stock"`
	MaxCapacity  int       `json:"max_capacity"`
	CreatedAt    time.Time `json:"created_at"`
}

// Clamp bounds level into [0, MaxCapacity].
func (e StockEntry) Clamp(level int) int {
	if level < 0 {
		return 0
	}
	if level > e.MaxCapacity {
		return e.MaxCapacity
	}
	return level
}
