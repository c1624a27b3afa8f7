package monitor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Alert types.
const (
	AlertTypeLowStock = "low_stock"
	AlertTypeFault    = "fault"
)

// LowStockThreshold is the stock level below which a low-stock alert fires.
const LowStockThreshold = 5

// Alert is an immutable, system-generated notification tied to a machine.
// Alerts are only ever written by the emitter rules below, inside the same
// storage transaction as the state change that produced them.
type Alert struct {
	ID        string    `json:"id"`
	MachineID string    `json:"machine_id"`
	AlertType string    `json:"alert_type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// StockTransition describes one stock mutation on a (machine, product) entry.
type StockTransition struct {
	MachineID   string
	ProductName string
	OldStock    int
	NewStock    int
}

// EvaluateStockTransition returns the alerts a stock transition produces.
// Two independent rules apply, and a single downward step can trip both:
//   - crossing below the low-stock threshold
//   - crossing to zero (sold out)
//
// Upward transitions never alert.
func EvaluateStockTransition(t StockTransition, now time.Time) []Alert {
	var alerts []Alert
	if t.OldStock >= LowStockThreshold && t.NewStock < LowStockThreshold {
		alerts = append(alerts, Alert{
			ID:        uuid.NewString(),
			MachineID: t.MachineID,
			AlertType: AlertTypeLowStock,
			Message:   fmt.Sprintf("low stock: product %s has %d left", t.ProductName, t.NewStock),
			CreatedAt: now,
		})
	}
	if t.OldStock > 0 && t.NewStock == 0 {
		alerts = append(alerts, Alert{
			ID:        uuid.NewString(),
			MachineID: t.MachineID,
			AlertType: AlertTypeLowStock,
			Message:   fmt.Sprintf("sold out: product %s is empty", t.ProductName),
			CreatedAt: now,
		})
	}
	return alerts
}

// EvaluateStatusTransition returns the alert a machine status change produces,
// or nil. Only the normal -> fault edge alerts.
func EvaluateStatusTransition(machineID, machineCode, oldStatus, newStatus string, now time.Time) []Alert {
	if oldStatus != "normal" || newStatus != "fault" {
		return nil
	}
	return []Alert{{
		ID:        uuid.NewString(),
		MachineID: machineID,
		AlertType: AlertTypeFault,
		Message:   fmt.Sprintf("fault: machine %s reported a failure", machineCode),
		CreatedAt: now,
	}}
}
