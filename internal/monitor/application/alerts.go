package application

import (
	"context"
	"errors"
	"time"

	monitor "vendfleet/internal/monitor/domain"
)

// AlertLister reads the append-only alert log.
type AlertLister interface {
	ListAlerts(ctx context.Context, machineID string, from, to time.Time) ([]monitor.Alert, error)
}

// AlertQueryService serves read access to alerts. Alerts are system-written
// only; there is no create path here.
type AlertQueryService struct {
	alerts AlertLister
}

// NewAlertQueryService constructs an alert query service.
func NewAlertQueryService(alerts AlertLister) (*AlertQueryService, error) {
	if alerts == nil {
		return nil, errors.New("alert query service: nil lister")
	}
	return &AlertQueryService{alerts: alerts}, nil
}

// List returns alerts, newest first, optionally filtered by machine and range.
func (s *AlertQueryService) List(ctx context.Context, machineID string, from, to time.Time) ([]monitor.Alert, error) {
	return s.alerts.ListAlerts(ctx, machineID, from, to)
}
