package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	monitor "vendfleet/internal/monitor/domain"
)

// DailyStatRepository persists the derived daily rows.
type DailyStatRepository struct {
	db *sql.DB
}

// NewDailyStatRepository constructs a daily stat repository.
func NewDailyStatRepository(db *sql.DB) *DailyStatRepository {
	return &DailyStatRepository{db: db}
}

// Upsert inserts or replaces the row for (stat_date, machine_id).
func (r *DailyStatRepository) Upsert(ctx context.Context, stat *monitor.DailyStat) error {
	if r == nil || r.db == nil {
		return errors.New("daily stat repository: nil db")
	}
	if stat == nil {
		return errors.New("daily stat repository: nil stat")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO daily_stats (stat_date, machine_id, total_revenue, total_cost, total_profit, order_count, alert_count)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (stat_date, machine_id) DO UPDATE SET
	total_revenue = EXCLUDED.total_revenue,
	total_cost = EXCLUDED.total_cost,
	total_profit = EXCLUDED.total_profit,
	order_count = EXCLUDED.order_count,
	alert_count = EXCLUDED.alert_count`,
		stat.Date.UTC(), stat.MachineID, stat.TotalRevenue, stat.TotalCost, stat.TotalProfit, stat.OrderCount, stat.AlertCount)
	return err
}

// ListByDate returns every machine row for one day.
func (r *DailyStatRepository) ListByDate(ctx context.Context, date time.Time) ([]monitor.DailyStat, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("daily stat repository: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT stat_date, machine_id, total_revenue, total_cost, total_profit, order_count, alert_count
FROM daily_stats
WHERE stat_date = $1
ORDER BY machine_id`, date.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []monitor.DailyStat
	for rows.Next() {
		var stat monitor.DailyStat
		if err := rows.Scan(&stat.Date, &stat.MachineID, &stat.TotalRevenue, &stat.TotalCost, &stat.TotalProfit, &stat.OrderCount, &stat.AlertCount); err != nil {
			return nil, err
		}
		stat.Date = stat.Date.UTC()
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
