package monitor

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyStat is the per-machine, per-day materialized aggregate. It is a
// derived cache recomputed in full from the transaction and alert history;
// regenerating a day always produces the same rows.
type DailyStat struct {
	Date         time.Time       `json:"date"`
	MachineID    string          `json:"machine_id"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	OrderCount   int             `json:"order_count"`
	AlertCount   int             `json:"alert_count"`
}

// DayStart truncates t to the start of its UTC day.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
