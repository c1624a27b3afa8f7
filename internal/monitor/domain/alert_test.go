package monitor

import (
	"testing"
	"time"
)

func TestEvaluateStockTransition(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		old, new  int
		wantTypes []string
	}{
		{"above threshold", 7, 6, nil},
		{"lands on threshold", 6, 5, nil},
		{"crosses threshold", 5, 4, []string{AlertTypeLowStock}},
		{"already below threshold", 4, 3, nil},
		{"one to zero", 1, 0, []string{AlertTypeLowStock}},
		{"both rules in one step", 5, 0, []string{AlertTypeLowStock, AlertTypeLowStock}},
		{"upward never alerts", 0, 10, nil},
		{"zero to zero", 0, 0, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alerts := EvaluateStockTransition(StockTransition{
				MachineID:   "m1",
				ProductName: "Cola",
				OldStock:    tc.old,
				NewStock:    tc.new,
			}, now)
			if len(alerts) != len(tc.wantTypes) {
				t.Fatalf("transition %d->%d: expected %d alerts, got %d", tc.old, tc.new, len(tc.wantTypes), len(alerts))
			}
			for i, alert := range alerts {
				if alert.AlertType != tc.wantTypes[i] {
					t.Fatalf("alert %d: expected type %s, got %s", i, tc.wantTypes[i], alert.AlertType)
				}
				if alert.MachineID != "m1" {
					t.Fatalf("alert %d: expected machine m1, got %s", i, alert.MachineID)
				}
				if !alert.CreatedAt.Equal(now) {
					t.Fatalf("alert %d: expected timestamp %v, got %v", i, now, alert.CreatedAt)
				}
			}
		})
	}
}

func TestEvaluateStockTransitionMessages(t *testing.T) {
	now := time.Now().UTC()

	alerts := EvaluateStockTransition(StockTransition{MachineID: "m1", ProductName: "Cola", OldStock: 5, NewStock: 4}, now)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Message != "low stock: product Cola has 4 left" {
		t.Fatalf("unexpected low stock message: %q", alerts[0].Message)
	}

	alerts = EvaluateStockTransition(StockTransition{MachineID: "m1", ProductName: "Cola", OldStock: 1, NewStock: 0}, now)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Message != "sold out: product Cola is empty" {
		t.Fatalf("unexpected sold out message: %q", alerts[0].Message)
	}
}

func TestEvaluateStatusTransition(t *testing.T) {
	now := time.Now().UTC()

	alerts := EvaluateStatusTransition("m1", "VM-A001", "normal", "fault", now)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].AlertType != AlertTypeFault {
		t.Fatalf("expected fault alert, got %s", alerts[0].AlertType)
	}
	if alerts[0].Message != "fault: machine VM-A001 reported a failure" {
		t.Fatalf("unexpected fault message: %q", alerts[0].Message)
	}

	for _, tc := range [][2]string{
		{"fault", "normal"},
		{"fault", "fault"},
		{"normal", "normal"},
	} {
		if got := EvaluateStatusTransition("m1", "VM-A001", tc[0], tc[1], now); len(got) != 0 {
			t.Fatalf("transition %s->%s: expected no alerts, got %d", tc[0], tc[1], len(got))
		}
	}
}

func TestDayStart(t *testing.T) {
	at := time.Date(2024, 5, 1, 23, 59, 59, 123, time.FixedZone("X", 3600))
	day := DayStart(at)
	if day.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", day.Location())
	}
	if day.Hour() != 0 || day.Minute() != 0 || day.Second() != 0 || day.Nanosecond() != 0 {
		t.Fatalf("expected midnight, got %v", day)
	}
}
