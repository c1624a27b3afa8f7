package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	monitor "vendfleet/internal/monitor/domain"
)

// AlertRepository reads the append-only alert log. Alerts are written inside
// mutation transactions by the inventory store, never through this type.
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository constructs an alert repository.
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// ListAlerts returns alerts newest first, optionally filtered by machine and
// time range. Zero bounds disable the corresponding predicate.
func (r *AlertRepository) ListAlerts(ctx context.Context, machineID string, from, to time.Time) ([]monitor.Alert, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alert repository: nil db")
	}

	query := `
SELECT id, machine_id, alert_type, message, created_at
FROM alerts
WHERE ($1 = '' OR machine_id = $1)
	AND created_at >= $2 AND created_at < $3
ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, machineID, lowerBound(from), upperBound(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []monitor.Alert
	for rows.Next() {
		var alert monitor.Alert
		if err := rows.Scan(&alert.ID, &alert.MachineID, &alert.AlertType, &alert.Message, &alert.CreatedAt); err != nil {
			return nil, err
		}
		alert.CreatedAt = alert.CreatedAt.UTC()
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return alerts, nil
}
