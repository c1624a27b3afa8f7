package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	catalog "vendfleet/internal/catalog/domain"
	invapp "vendfleet/internal/inventory/application"
	inventory "vendfleet/internal/inventory/domain"
	"vendfleet/internal/inventory/infrastructure/memory"
	"vendfleet/internal/monitor/application"
	monitor "vendfleet/internal/monitor/domain"
)

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var testNow = time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)

func seedTransaction(t *testing.T, store *memory.Store, id, machineID, amount, cost string, at time.Time) {
	t.Helper()
	err := store.InTx(context.Background(), func(tx invapp.Tx) error {
		return tx.InsertTransaction(context.Background(), &inventory.Transaction{
			ID:        id,
			UserID:    "u1",
			MachineID: machineID,
			ProductID: "p1",
			Amount:    money(amount),
			CostPrice: money(cost),
			CreatedAt: at,
		})
	})
	if err != nil {
		t.Fatalf("seed transaction %s: %v", id, err)
	}
}

func seedAlert(t *testing.T, store *memory.Store, machineID string, at time.Time) {
	t.Helper()
	err := store.InTx(context.Background(), func(tx invapp.Tx) error {
		return tx.InsertAlert(context.Background(), &monitor.Alert{
			ID:        "a-" + machineID + at.Format("150405"),
			MachineID: machineID,
			AlertType: monitor.AlertTypeLowStock,
			Message:   "low stock: product Cola has 4 left",
			CreatedAt: at,
		})
	})
	if err != nil {
		t.Fatalf("seed alert: %v", err)
	}
}

func seedRestock(t *testing.T, store *memory.Store, id string, quantity int, unitCost string, at time.Time) {
	t.Helper()
	err := store.InTx(context.Background(), func(tx invapp.Tx) error {
		return tx.InsertRestock(context.Background(), &inventory.Restock{
			ID:        id,
			StaffID:   "s1",
			MachineID: "m1",
			ProductID: "p1",
			Quantity:  quantity,
			UnitCost:  money(unitCost),
			CreatedAt: at,
		})
	})
	if err != nil {
		t.Fatalf("seed restock %s: %v", id, err)
	}
}

// newHistory seeds two active machines, one idle machine, a day of sales and
// alerts, plus one sale on the previous day.
func newHistory(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	store.SeedMachine(catalog.Machine{ID: "m1", Code: "VM-A001", Status: "normal"})
	store.SeedMachine(catalog.Machine{ID: "m2", Code: "VM-A002", Status: "normal"})
	store.SeedMachine(catalog.Machine{ID: "m3", Code: "VM-B001", Status: "normal"})

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	seedTransaction(t, store, "t1", "m1", "3.50", "2.00", day.Add(9*time.Hour))
	seedTransaction(t, store, "t2", "m1", "3.50", "2.00", day.Add(10*time.Hour))
	seedTransaction(t, store, "t3", "m1", "3.50", "2.00", day.Add(11*time.Hour))
	seedTransaction(t, store, "t4", "m2", "2.00", "1.00", day.Add(12*time.Hour))
	seedTransaction(t, store, "t0", "m1", "5.00", "3.00", day.AddDate(0, 0, -1).Add(12*time.Hour))
	seedAlert(t, store, "m1", day.Add(10*time.Hour))
	seedAlert(t, store, "m1", day.Add(11*time.Hour))
	return store
}

func newAggregator(t *testing.T, store *memory.Store) *application.Aggregator {
	t.Helper()
	aggregator, err := application.NewAggregator(store, store, store, application.WithClock(fixedClock{at: testNow}))
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	return aggregator
}

func TestGenerateComputesPerMachineRows(t *testing.T) {
	store := newHistory(t)
	aggregator := newAggregator(t, store)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	report, err := aggregator.Generate(context.Background(), day)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report.MachinesProcessed != 3 {
		t.Fatalf("expected 3 machines processed, got %d", report.MachinesProcessed)
	}

	stats, err := aggregator.StatsForDate(context.Background(), day)
	if err != nil {
		t.Fatalf("StatsForDate: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(stats))
	}

	byMachine := make(map[string]monitor.DailyStat, len(stats))
	for _, stat := range stats {
		byMachine[stat.MachineID] = stat
	}

	m1 := byMachine["m1"]
	if !m1.TotalRevenue.Equal(money("10.50")) || !m1.TotalCost.Equal(money("6.00")) || !m1.TotalProfit.Equal(money("4.50")) {
		t.Fatalf("unexpected m1 totals: %+v", m1)
	}
	if m1.OrderCount != 3 || m1.AlertCount != 2 {
		t.Fatalf("expected m1 3 orders and 2 alerts, got %d/%d", m1.OrderCount, m1.AlertCount)
	}

	m2 := byMachine["m2"]
	if !m2.TotalRevenue.Equal(money("2.00")) || m2.OrderCount != 1 || m2.AlertCount != 0 {
		t.Fatalf("unexpected m2 row: %+v", m2)
	}

	// Idle machines still get a zero row.
	m3 := byMachine["m3"]
	if !m3.TotalRevenue.Equal(decimal.Zero) || m3.OrderCount != 0 || m3.AlertCount != 0 {
		t.Fatalf("expected zero row for m3, got %+v", m3)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	store := newHistory(t)
	aggregator := newAggregator(t, store)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	if _, err := aggregator.Generate(ctx, day); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	first := store.DailyStats()
	if _, err := aggregator.Generate(ctx, day); err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	second := store.DailyStats()

	if len(first) != len(second) {
		t.Fatalf("row count changed: %d -> %d", len(first), len(second))
	}
	for i := range first {
		if first[i].MachineID != second[i].MachineID || !first[i].TotalRevenue.Equal(second[i].TotalRevenue) || first[i].OrderCount != second[i].OrderCount {
			t.Fatalf("row %d diverged: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestGenerateInvalidDate(t *testing.T) {
	aggregator := newAggregator(t, newHistory(t))
	if _, err := aggregator.Generate(context.Background(), time.Time{}); !errors.Is(err, monitor.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := aggregator.StatsForDate(context.Background(), time.Time{}); !errors.Is(err, monitor.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate from StatsForDate, got %v", err)
	}
}

func TestSummaryToday(t *testing.T) {
	store := newHistory(t)
	aggregator := newAggregator(t, store)

	summary, err := aggregator.Summary(context.Background(), "today")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !summary.TotalRevenue.Equal(money("12.50")) {
		t.Fatalf("expected revenue 12.50, got %s", summary.TotalRevenue)
	}
	if !summary.TotalCost.Equal(money("7.00")) || !summary.TotalProfit.Equal(money("5.50")) {
		t.Fatalf("unexpected cost/profit: %s/%s", summary.TotalCost, summary.TotalProfit)
	}
	if summary.TotalOrders != 4 || summary.TotalAlerts != 2 {
		t.Fatalf("expected 4 orders and 2 alerts, got %d/%d", summary.TotalOrders, summary.TotalAlerts)
	}
	if summary.StartDate != "2024-05-01" || summary.EndDate != "2024-05-01" {
		t.Fatalf("unexpected date labels: %s..%s", summary.StartDate, summary.EndDate)
	}
	if len(summary.Daily) != 1 {
		t.Fatalf("expected 1 daily row, got %d", len(summary.Daily))
	}
	if len(summary.MachineRanking) != 2 {
		t.Fatalf("expected 2 ranked machines, got %d", len(summary.MachineRanking))
	}
	if summary.MachineRanking[0].MachineCode != "VM-A001" {
		t.Fatalf("expected VM-A001 ranked first, got %s", summary.MachineRanking[0].MachineCode)
	}
}

func TestSummaryAllIncludesFullHistory(t *testing.T) {
	store := newHistory(t)
	aggregator := newAggregator(t, store)

	summary, err := aggregator.Summary(context.Background(), "all")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.TotalOrders != 5 {
		t.Fatalf("expected all 5 orders, got %d", summary.TotalOrders)
	}
	if !summary.TotalRevenue.Equal(money("17.50")) {
		t.Fatalf("expected revenue 17.50, got %s", summary.TotalRevenue)
	}
	if summary.StartDate != "all" {
		t.Fatalf("expected start label all, got %s", summary.StartDate)
	}
	if len(summary.Daily) != 2 {
		t.Fatalf("expected 2 daily rows, got %d", len(summary.Daily))
	}
}

func TestSummaryInvalidPeriod(t *testing.T) {
	aggregator := newAggregator(t, newHistory(t))
	if _, err := aggregator.Summary(context.Background(), "decade"); !errors.Is(err, monitor.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestRestockCostSummary(t *testing.T) {
	store := newHistory(t)
	aggregator := newAggregator(t, store)

	seedRestock(t, store, "r1", 10, "2.00", testNow.Add(-2*24*time.Hour))
	seedRestock(t, store, "r2", 5, "1.00", testNow.Add(-3*24*time.Hour))
	// Outside the week window.
	seedRestock(t, store, "r3", 50, "2.00", testNow.Add(-20*24*time.Hour))

	totals, err := aggregator.RestockCostSummary(context.Background(), "week")
	if err != nil {
		t.Fatalf("RestockCostSummary: %v", err)
	}
	if !totals.TotalCost.Equal(money("25.00")) {
		t.Fatalf("expected total cost 25.00, got %s", totals.TotalCost)
	}
	if totals.TotalQuantity != 15 || totals.RestockCount != 2 {
		t.Fatalf("expected quantity 15 over 2 runs, got %d/%d", totals.TotalQuantity, totals.RestockCount)
	}

	if _, err := aggregator.RestockCostSummary(context.Background(), "fortnight"); !errors.Is(err, monitor.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}
