package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	monitorapp "vendfleet/internal/monitor/application"
)

// HistoryReader aggregates over the transaction, restock and alert history
// with grouped queries. A zero from means "since the beginning".
type HistoryReader struct {
	db *sql.DB
}

// NewHistoryReader constructs a history reader.
func NewHistoryReader(db *sql.DB) *HistoryReader {
	return &HistoryReader{db: db}
}

// sentinel lower bound used when from is zero; avoids duplicating every query
// with and without the range predicate.
var floorTime = time.Unix(0, 0).UTC()

func lowerBound(from time.Time) time.Time {
	if from.IsZero() {
		return floorTime
	}
	return from.UTC()
}

var ceilingTime = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

func upperBound(to time.Time) time.Time {
	if to.IsZero() {
		return ceilingTime
	}
	return to.UTC()
}

// MachineTotals sums transaction amounts and costs per machine over [from, to).
func (r *HistoryReader) MachineTotals(ctx context.Context, from, to time.Time) (map[string]monitorapp.MachineTotals, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("history reader: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT machine_id, COALESCE(SUM(amount), 0), COALESCE(SUM(cost_price), 0), COUNT(*)
FROM transactions
WHERE created_at >= $1 AND created_at < $2
GROUP BY machine_id`, lowerBound(from), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]monitorapp.MachineTotals)
	for rows.Next() {
		var machineID string
		var totals monitorapp.MachineTotals
		if err := rows.Scan(&machineID, &totals.Revenue, &totals.Cost, &totals.Orders); err != nil {
			return nil, err
		}
		result[machineID] = totals
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AlertCountsByMachine counts alerts per machine over [from, to).
func (r *HistoryReader) AlertCountsByMachine(ctx context.Context, from, to time.Time) (map[string]int, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("history reader: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT machine_id, COUNT(*)
FROM alerts
WHERE created_at >= $1 AND created_at < $2
GROUP BY machine_id`, lowerBound(from), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var machineID string
		var count int
		if err := rows.Scan(&machineID, &count); err != nil {
			return nil, err
		}
		result[machineID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// TotalAlerts counts all alerts over [from, to).
func (r *HistoryReader) TotalAlerts(ctx context.Context, from, to time.Time) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("history reader: nil db")
	}
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM alerts
WHERE created_at >= $1 AND created_at < $2`, lowerBound(from), to.UTC()).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DailyTotals groups transactions by UTC day over [from, to).
func (r *HistoryReader) DailyTotals(ctx context.Context, from, to time.Time) ([]monitorapp.DayTotals, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("history reader: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day,
	COALESCE(SUM(amount), 0), COALESCE(SUM(cost_price), 0), COUNT(*)
FROM transactions
WHERE created_at >= $1 AND created_at < $2
GROUP BY day
ORDER BY day`, lowerBound(from), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []monitorapp.DayTotals
	for rows.Next() {
		var totals monitorapp.DayTotals
		if err := rows.Scan(&totals.Date, &totals.Revenue, &totals.Cost, &totals.Orders); err != nil {
			return nil, err
		}
		totals.Date = totals.Date.UTC()
		totals.Profit = totals.Revenue.Sub(totals.Cost)
		result = append(result, totals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MachineRanking ranks machines by revenue over [from, to).
func (r *HistoryReader) MachineRanking(ctx context.Context, from, to time.Time, limit int) ([]monitorapp.MachineRank, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("history reader: nil db")
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT t.machine_id, m.code,
	COALESCE(SUM(t.amount), 0), COALESCE(SUM(t.amount - t.cost_price), 0), COUNT(*)
FROM transactions t
JOIN machines m ON m.id = t.machine_id
WHERE t.created_at >= $1 AND t.created_at < $2
GROUP BY t.machine_id, m.code
ORDER BY SUM(t.amount) DESC
LIMIT $3`, lowerBound(from), to.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []monitorapp.MachineRank
	for rows.Next() {
		var rank monitorapp.MachineRank
		if err := rows.Scan(&rank.MachineID, &rank.MachineCode, &rank.Revenue, &rank.Profit, &rank.Orders); err != nil {
			return nil, err
		}
		result = append(result, rank)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// RestockTotals sums restock costs over [from, to).
func (r *HistoryReader) RestockTotals(ctx context.Context, from, to time.Time) (monitorapp.RestockTotals, error) {
	var totals monitorapp.RestockTotals
	if r == nil || r.db == nil {
		return totals, errors.New("history reader: nil db")
	}
	err := r.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(quantity * unit_cost), 0), COALESCE(SUM(quantity), 0), COUNT(*)
FROM restocks
WHERE created_at >= $1 AND created_at < $2`, lowerBound(from), to.UTC()).Scan(&totals.TotalCost, &totals.TotalQuantity, &totals.RestockCount)
	if err != nil {
		return totals, err
	}
	return totals, nil
}
