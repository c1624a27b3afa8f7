package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	catalog "vendfleet/internal/catalog/domain"
	monitor "vendfleet/internal/monitor/domain"
	"vendfleet/internal/observability/metrics"
)

// MachineTotals is the per-machine transaction rollup for a time range.
type MachineTotals struct {
	Revenue decimal.Decimal
	Cost    decimal.Decimal
	Orders  int
}

// DayTotals is the per-day transaction rollup for a time range.
type DayTotals struct {
	Date    time.Time       `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
	Orders  int             `json:"orders"`
}

// MachineRank is one row of the revenue ranking.
type MachineRank struct {
	MachineID   string          `json:"machine_id"`
	MachineCode string          `json:"machine_code"`
	Revenue     decimal.Decimal `json:"revenue"`
	Profit      decimal.Decimal `json:"profit"`
	Orders      int             `json:"orders"`
}

// RestockTotals is the restock cost rollup for a time range.
type RestockTotals struct {
	TotalCost     decimal.Decimal `json:"total_cost"`
	TotalQuantity int             `json:"total_quantity"`
	RestockCount  int             `json:"restock_count"`
}

// HistoryReader aggregates over the immutable transaction, restock and alert
// history. All ranges are [from, to) in UTC.
type HistoryReader interface {
	MachineTotals(ctx context.Context, from, to time.Time) (map[string]MachineTotals, error)
	AlertCountsByMachine(ctx context.Context, from, to time.Time) (map[string]int, error)
	TotalAlerts(ctx context.Context, from, to time.Time) (int, error)
	DailyTotals(ctx context.Context, from, to time.Time) ([]DayTotals, error)
	MachineRanking(ctx context.Context, from, to time.Time, limit int) ([]MachineRank, error)
	RestockTotals(ctx context.Context, from, to time.Time) (RestockTotals, error)
}

// MachineLister lists machines for the per-machine rollup.
type MachineLister interface {
	ListMachines(ctx context.Context) ([]catalog.Machine, error)
}

// DailyStatStore persists the derived daily rows.
type DailyStatStore interface {
	Upsert(ctx context.Context, stat *monitor.DailyStat) error
	ListByDate(ctx context.Context, date time.Time) ([]monitor.DailyStat, error)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// GenerateReport describes one aggregation run.
type GenerateReport struct {
	Date              time.Time `json:"date"`
	MachinesProcessed int       `json:"machines_processed"`
}

// Summary is the on-demand financial view over a period.
type Summary struct {
	Period         string          `json:"period"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	TotalProfit    decimal.Decimal `json:"total_profit"`
	TotalOrders    int             `json:"total_orders"`
	TotalAlerts    int             `json:"total_alerts"`
	Daily          []DayTotals     `json:"daily_stats"`
	MachineRanking []MachineRank   `json:"machine_ranking"`
}

const rankingLimit = 10

// Aggregator recomputes daily stats from history and serves summary queries.
// Generate is a pure function of the history for its day: re-running it, even
// after a crash mid-way, converges on the same rows.
type Aggregator struct {
	machines MachineLister
	history  HistoryReader
	stats    DailyStatStore
	clock    Clock
}

// AggregatorOption customizes the aggregator.
type AggregatorOption func(*Aggregator)

// WithClock assigns a clock.
func WithClock(clock Clock) AggregatorOption {
	return func(a *Aggregator) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// NewAggregator constructs an aggregator.
func NewAggregator(machines MachineLister, history HistoryReader, stats DailyStatStore, opts ...AggregatorOption) (*Aggregator, error) {
	if machines == nil {
		return nil, errors.New("aggregator: nil machine lister")
	}
	if history == nil {
		return nil, errors.New("aggregator: nil history reader")
	}
	if stats == nil {
		return nil, errors.New("aggregator: nil stat store")
	}
	aggregator := &Aggregator{machines: machines, history: history, stats: stats, clock: SystemClock{}}
	for _, opt := range opts {
		opt(aggregator)
	}
	return aggregator, nil
}

// Generate recomputes and upserts the daily stats of every machine for date.
func (a *Aggregator) Generate(ctx context.Context, date time.Time) (*GenerateReport, error) {
	started := a.clock.Now()
	report, err := a.generate(ctx, date)
	if err != nil {
		metrics.ObserveDailyGenerate("error", a.clock.Now().Sub(started))
		return nil, err
	}
	metrics.ObserveDailyGenerate("success", a.clock.Now().Sub(started))
	return report, nil
}

func (a *Aggregator) generate(ctx context.Context, date time.Time) (*GenerateReport, error) {
	if date.IsZero() {
		return nil, monitor.ErrInvalidDate
	}
	day := monitor.DayStart(date)
	from, to := day, day.Add(24*time.Hour)

	machines, err := a.machines.ListMachines(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := a.history.MachineTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}
	alertCounts, err := a.history.AlertCountsByMachine(ctx, from, to)
	if err != nil {
		return nil, err
	}

	for _, machine := range machines {
		t := totals[machine.ID]
		stat := &monitor.DailyStat{
			Date:         day,
			MachineID:    machine.ID,
			TotalRevenue: t.Revenue,
			TotalCost:    t.Cost,
			TotalProfit:  t.Revenue.Sub(t.Cost),
			OrderCount:   t.Orders,
			AlertCount:   alertCounts[machine.ID],
		}
		if err := a.stats.Upsert(ctx, stat); err != nil {
			return nil, err
		}
	}
	return &GenerateReport{Date: day, MachinesProcessed: len(machines)}, nil
}

// StatsForDate returns the persisted daily rows for one day.
func (a *Aggregator) StatsForDate(ctx context.Context, date time.Time) ([]monitor.DailyStat, error) {
	if date.IsZero() {
		return nil, monitor.ErrInvalidDate
	}
	return a.stats.ListByDate(ctx, monitor.DayStart(date))
}

// Summary computes the financial view for a period directly from history,
// without persisting anything.
func (a *Aggregator) Summary(ctx context.Context, period string) (*Summary, error) {
	started := a.clock.Now()
	now := a.clock.Now()
	from, err := periodStart(period, now)
	if err != nil {
		return nil, err
	}

	totals, err := a.history.MachineTotals(ctx, from, now)
	if err != nil {
		return nil, err
	}
	totalAlerts, err := a.history.TotalAlerts(ctx, from, now)
	if err != nil {
		return nil, err
	}
	daily, err := a.history.DailyTotals(ctx, from, now)
	if err != nil {
		return nil, err
	}
	ranking, err := a.history.MachineRanking(ctx, from, now, rankingLimit)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Period:         period,
		StartDate:      startLabel(period, from),
		EndDate:        now.Format("2006-01-02"),
		TotalRevenue:   decimal.Zero,
		TotalCost:      decimal.Zero,
		TotalOrders:    0,
		TotalAlerts:    totalAlerts,
		Daily:          daily,
		MachineRanking: ranking,
	}
	for _, t := range totals {
		summary.TotalRevenue = summary.TotalRevenue.Add(t.Revenue)
		summary.TotalCost = summary.TotalCost.Add(t.Cost)
		summary.TotalOrders += t.Orders
	}
	summary.TotalProfit = summary.TotalRevenue.Sub(summary.TotalCost)

	metrics.ObserveSummary(period, a.clock.Now().Sub(started))
	return summary, nil
}

// RestockCostSummary computes the restock cost view for a period.
func (a *Aggregator) RestockCostSummary(ctx context.Context, period string) (*RestockTotals, error) {
	now := a.clock.Now()
	from, err := periodStart(period, now)
	if err != nil {
		return nil, err
	}
	totals, err := a.history.RestockTotals(ctx, from, now)
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func periodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case "today":
		return monitor.DayStart(now), nil
	case "week":
		return now.AddDate(0, 0, -7), nil
	case "month":
		return now.AddDate(0, 0, -30), nil
	case "all":
		return time.Time{}, nil
	default:
		return time.Time{}, monitor.ErrInvalidPeriod
	}
}

func startLabel(period string, from time.Time) string {
	if period == "all" {
		return "all"
	}
	return from.Format("2006-01-02")
}
