package integration_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	catalogrepo "vendfleet/internal/catalog/infrastructure/postgres"
	monitorapp "vendfleet/internal/monitor/application"
	monitorrepo "vendfleet/internal/monitor/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	for _, table := range []string{"machines", "transactions", "alerts", "daily_stats", "accounts", "products", "suppliers"} {
		if !tableExists(db, table) {
			t.Skipf("missing table %s; run migrations", table)
		}
	}
	return db
}

func tableExists(db *sql.DB, table string) bool {
	var exists bool
	err := db.QueryRow(`
SELECT EXISTS (
	SELECT 1
	FROM information_schema.tables
	WHERE table_schema = 'public' AND table_name = $1
)`, table).Scan(&exists)
	if err != nil {
		return false
	}
	return exists
}

// seedHistory wipes the relevant tables and inserts two machines with a day
// of sales and alerts on the first machine.
func seedHistory(t *testing.T, db *sql.DB, day time.Time) {
	t.Helper()
	ctx := context.Background()

	for _, table := range []string{"daily_stats", "alerts", "transactions", "stock_entries", "accounts", "products", "suppliers", "machines"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("clean %s: %v", table, err)
		}
	}

	statements := []struct {
		query string
		args  []any
	}{
		{"INSERT INTO machines (id, code) VALUES ($1, $2)", []any{"m-agg-1", "VM-AGG1"}},
		{"INSERT INTO machines (id, code) VALUES ($1, $2)", []any{"m-agg-2", "VM-AGG2"}},
		{"INSERT INTO suppliers (id, name) VALUES ($1, $2)", []any{"sup-agg", "Cola Beverage Co."}},
		{"INSERT INTO products (id, name, cost_price, sell_price, supplier_id) VALUES ($1, $2, $3, $4, $5)", []any{"p-agg", "Cola", "2.00", "3.50", "sup-agg"}},
		{"INSERT INTO accounts (id, username, balance) VALUES ($1, $2, $3)", []any{"u-agg", "user-agg", "100.00"}},
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	transactions := []struct {
		id string
		at time.Time
	}{
		{"t-agg-1", day.Add(9 * time.Hour)},
		{"t-agg-2", day.Add(10 * time.Hour)},
		{"t-agg-3", day.Add(11 * time.Hour)},
	}
	for _, tr := range transactions {
		if _, err := db.ExecContext(ctx, `
INSERT INTO transactions (id, user_id, machine_id, product_id, amount, cost_price, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			tr.id, "u-agg", "m-agg-1", "p-agg", "3.50", "2.00", tr.at); err != nil {
			t.Fatalf("seed transaction %s: %v", tr.id, err)
		}
	}
	// One sale outside the day must not count.
	if _, err := db.ExecContext(ctx, `
INSERT INTO transactions (id, user_id, machine_id, product_id, amount, cost_price, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		"t-agg-0", "u-agg", "m-agg-1", "p-agg", "5.00", "3.00", day.AddDate(0, 0, -1).Add(12*time.Hour)); err != nil {
		t.Fatalf("seed prior-day transaction: %v", err)
	}
	if _, err := db.ExecContext(ctx, `
INSERT INTO alerts (id, machine_id, alert_type, message, created_at)
VALUES ($1, $2, $3, $4, $5)`,
		"a-agg-1", "m-agg-1", "low_stock", "low stock: product Cola has 4 left", day.Add(10*time.Hour)); err != nil {
		t.Fatalf("seed alert: %v", err)
	}
}

func TestGenerateIdempotent_Postgres(t *testing.T) {
	db := openTestDB(t)
	day := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)
	seedHistory(t, db, day)
	ctx := context.Background()

	machines := catalogrepo.NewMachineRepository(db)
	history := monitorrepo.NewHistoryReader(db)
	stats := monitorrepo.NewDailyStatRepository(db)
	aggregator, err := monitorapp.NewAggregator(machines, history, stats)
	if err != nil {
		t.Fatalf("new aggregator: %v", err)
	}

	report, err := aggregator.Generate(ctx, day)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if report.MachinesProcessed != 2 {
		t.Fatalf("expected 2 machines processed, got %d", report.MachinesProcessed)
	}

	// Re-running converges on the same rows via the upsert.
	if _, err := aggregator.Generate(ctx, day); err != nil {
		t.Fatalf("second generate: %v", err)
	}

	rows, err := aggregator.StatsForDate(ctx, day)
	if err != nil {
		t.Fatalf("stats for date: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	active := rows[0]
	if active.MachineID != "m-agg-1" {
		active = rows[1]
	}
	if !active.TotalRevenue.Equal(decimal.RequireFromString("10.50")) {
		t.Fatalf("expected revenue 10.50, got %s", active.TotalRevenue)
	}
	if !active.TotalProfit.Equal(decimal.RequireFromString("4.50")) {
		t.Fatalf("expected profit 4.50, got %s", active.TotalProfit)
	}
	if active.OrderCount != 3 || active.AlertCount != 1 {
		t.Fatalf("expected 3 orders and 1 alert, got %d/%d", active.OrderCount, active.AlertCount)
	}

	var stored int
	if err := db.QueryRow("SELECT COUNT(*) FROM daily_stats").Scan(&stored); err != nil {
		t.Fatalf("count daily_stats: %v", err)
	}
	if stored != 2 {
		t.Fatalf("expected 2 daily_stats rows after rerun, got %d", stored)
	}
}

func TestSummaryFromHistory_Postgres(t *testing.T) {
	db := openTestDB(t)
	day := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)
	seedHistory(t, db, day)
	ctx := context.Background()

	machines := catalogrepo.NewMachineRepository(db)
	history := monitorrepo.NewHistoryReader(db)
	stats := monitorrepo.NewDailyStatRepository(db)
	aggregator, err := monitorapp.NewAggregator(machines, history, stats,
		monitorapp.WithClock(fixedClock{at: day.Add(18 * time.Hour)}))
	if err != nil {
		t.Fatalf("new aggregator: %v", err)
	}

	summary, err := aggregator.Summary(ctx, "today")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.TotalRevenue.Equal(decimal.RequireFromString("10.50")) {
		t.Fatalf("expected revenue 10.50, got %s", summary.TotalRevenue)
	}
	if summary.TotalOrders != 3 || summary.TotalAlerts != 1 {
		t.Fatalf("expected 3 orders and 1 alert, got %d/%d", summary.TotalOrders, summary.TotalAlerts)
	}
	if len(summary.MachineRanking) != 1 || summary.MachineRanking[0].MachineCode != "VM-AGG1" {
		t.Fatalf("unexpected ranking: %+v", summary.MachineRanking)
	}

	all, err := aggregator.Summary(ctx, "all")
	if err != nil {
		t.Fatalf("summary all: %v", err)
	}
	if all.TotalOrders != 4 {
		t.Fatalf("expected 4 orders over full history, got %d", all.TotalOrders)
	}
	if len(all.Daily) != 2 {
		t.Fatalf("expected 2 daily rows, got %d", len(all.Daily))
	}
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }
