package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	accounts "vendfleet/internal/accounts/domain"
	catalog "vendfleet/internal/catalog/domain"
	"vendfleet/internal/inventory/application"
	inventory "vendfleet/internal/inventory/domain"
	monitorapp "vendfleet/internal/monitor/application"
	monitor "vendfleet/internal/monitor/domain"
)

// Store is an in-memory implementation of the transactional store and the
// monitor read interfaces, for demo/testing. A unit of work operates on a
// deep copy of the state and swaps it in on commit, so an aborted unit leaves
// nothing behind. Serialization is store-wide here; only the Postgres store
// has true row granularity.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	machines     map[string]catalog.Machine
	products     map[string]catalog.Product
	staff        map[string]accounts.Staff
	accounts     map[string]accounts.Account
	entries      map[string]inventory.StockEntry
	transactions map[string]inventory.Transaction
	restocks     map[string]inventory.Restock
	alerts       []monitor.Alert
	dailyStats   map[string]monitor.DailyStat
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{state: &state{
		machines:     make(map[string]catalog.Machine),
		products:     make(map[string]catalog.Product),
		staff:        make(map[string]accounts.Staff),
		accounts:     make(map[string]accounts.Account),
		entries:      make(map[string]inventory.StockEntry),
		transactions: make(map[string]inventory.Transaction),
		restocks:     make(map[string]inventory.Restock),
		dailyStats:   make(map[string]monitor.DailyStat),
	}}
}

func entryKey(machineID, productID string) string {
	return machineID + "|" + productID
}

func statKey(date time.Time, machineID string) string {
	return date.Format("2006-01-02") + "|" + machineID
}

func (s *state) clone() *state {
	next := &state{
		machines:     make(map[string]catalog.Machine, len(s.machines)),
		products:     make(map[string]catalog.Product, len(s.products)),
		staff:        make(map[string]accounts.Staff, len(s.staff)),
		accounts:     make(map[string]accounts.Account, len(s.accounts)),
		entries:      make(map[string]inventory.StockEntry, len(s.entries)),
		transactions: make(map[string]inventory.Transaction, len(s.transactions)),
		restocks:     make(map[string]inventory.Restock, len(s.restocks)),
		alerts:       append([]monitor.Alert(nil), s.alerts...),
		dailyStats:   make(map[string]monitor.DailyStat, len(s.dailyStats)),
	}
	for k, v := range s.machines {
		next.machines[k] = v
	}
	for k, v := range s.products {
		next.products[k] = v
	}
	for k, v := range s.staff {
		next.staff[k] = v
	}
	for k, v := range s.accounts {
		next.accounts[k] = v
	}
	for k, v := range s.entries {
		next.entries[k] = v
	}
	for k, v := range s.transactions {
		next.transactions[k] = v
	}
	for k, v := range s.restocks {
		next.restocks[k] = v
	}
	for k, v := range s.dailyStats {
		next.dailyStats[k] = v
	}
	return next
}

// InTx runs fn against a draft copy of the state and commits it on success.
func (s *Store) InTx(ctx context.Context, fn func(tx application.Tx) error) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	draft := s.state.clone()
	if err := fn(&memTx{state: draft}); err != nil {
		return err
	}
	s.state = draft
	return nil
}

// Seed helpers place fixtures directly into the store.

// SeedMachine adds a machine.
func (s *Store) SeedMachine(machine catalog.Machine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.machines[machine.ID] = machine
}

// SeedProduct adds a product.
func (s *Store) SeedProduct(product catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[product.ID] = product
}

// SeedStaff adds a staff member.
func (s *Store) SeedStaff(staff accounts.Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.staff[staff.ID] = staff
}

// SeedAccount adds a user account.
func (s *Store) SeedAccount(account accounts.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.accounts[account.ID] = account
}

// SeedStockEntry adds a stock entry.
func (s *Store) SeedStockEntry(entry inventory.StockEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.entries[entryKey(entry.MachineID, entry.ProductID)] = entry
}

// RemoveStockEntry drops a stock entry, simulating a cascade delete.
func (s *Store) RemoveStockEntry(machineID, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.entries, entryKey(machineID, productID))
}

// RemoveAccount drops an account, simulating a cascade delete.
func (s *Store) RemoveAccount(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.accounts, id)
}

// Read accessors for assertions.

// StockLevel returns the current stock of one entry.
func (s *Store) StockLevel(machineID, productID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.state.entries[entryKey(machineID, productID)]
	if !ok {
		return 0, false
	}
	return entry.CurrentStock, true
}

// AccountBalance returns the balance of one account.
func (s *Store) AccountBalance(id string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.state.accounts[id]
	if !ok {
		return decimal.Zero, false
	}
	return account.Balance, true
}

// Alerts returns all emitted alerts in emission order.
func (s *Store) Alerts() []monitor.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]monitor.Alert(nil), s.state.alerts...)
}

// Transactions returns all transaction records.
func (s *Store) Transactions() []inventory.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]inventory.Transaction, 0, len(s.state.transactions))
	for _, t := range s.state.transactions {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result
}

// Restocks returns all restock records.
func (s *Store) Restocks() []inventory.Restock {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]inventory.Restock, 0, len(s.state.restocks))
	for _, r := range s.state.restocks {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result
}

// DailyStats returns all persisted daily stat rows.
func (s *Store) DailyStats() []monitor.DailyStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]monitor.DailyStat, 0, len(s.state.dailyStats))
	for _, stat := range s.state.dailyStats {
		result = append(result, stat)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].MachineID < result[j].MachineID
	})
	return result
}

// StockReader implementation.

// ListByMachine returns the entries of one machine.
func (s *Store) ListByMachine(ctx context.Context, machineID string) ([]inventory.StockEntry, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []inventory.StockEntry
	for _, entry := range s.state.entries {
		if entry.MachineID == machineID {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProductID < result[j].ProductID })
	return result, nil
}

// ListAll returns every stock entry.
func (s *Store) ListAll(ctx context.Context) ([]inventory.StockEntry, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]inventory.StockEntry, 0, len(s.state.entries))
	for _, entry := range s.state.entries {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].MachineID != result[j].MachineID {
			return result[i].MachineID < result[j].MachineID
		}
		return result[i].ProductID < result[j].ProductID
	})
	return result, nil
}

// Monitor read interfaces.

// ListMachines returns all machines.
func (s *Store) ListMachines(ctx context.Context) ([]catalog.Machine, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]catalog.Machine, 0, len(s.state.machines))
	for _, machine := range s.state.machines {
		result = append(result, machine)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func inRange(at, from, to time.Time) bool {
	if !from.IsZero() && at.Before(from) {
		return false
	}
	if to.IsZero() {
		return true
	}
	return at.Before(to)
}

// MachineTotals sums transactions per machine over [from, to).
func (s *Store) MachineTotals(ctx context.Context, from, to time.Time) (map[string]monitorapp.MachineTotals, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[string]monitorapp.MachineTotals)
	for _, t := range s.state.transactions {
		if !inRange(t.CreatedAt, from, to) {
			continue
		}
		totals := result[t.MachineID]
		totals.Revenue = totals.Revenue.Add(t.Amount)
		totals.Cost = totals.Cost.Add(t.CostPrice)
		totals.Orders++
		result[t.MachineID] = totals
	}
	return result, nil
}

// AlertCountsByMachine counts alerts per machine over [from, to).
func (s *Store) AlertCountsByMachine(ctx context.Context, from, to time.Time) (map[string]int, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[string]int)
	for _, alert := range s.state.alerts {
		if inRange(alert.CreatedAt, from, to) {
			result[alert.MachineID]++
		}
	}
	return result, nil
}

// TotalAlerts counts all alerts over [from, to).
func (s *Store) TotalAlerts(ctx context.Context, from, to time.Time) (int, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, alert := range s.state.alerts {
		if inRange(alert.CreatedAt, from, to) {
			count++
		}
	}
	return count, nil
}

// DailyTotals groups transactions by UTC day over [from, to).
func (s *Store) DailyTotals(ctx context.Context, from, to time.Time) ([]monitorapp.DayTotals, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	byDay := make(map[string]monitorapp.DayTotals)
	for _, t := range s.state.transactions {
		if !inRange(t.CreatedAt, from, to) {
			continue
		}
		day := monitor.DayStart(t.CreatedAt)
		key := day.Format("2006-01-02")
		totals := byDay[key]
		totals.Date = day
		totals.Revenue = totals.Revenue.Add(t.Amount)
		totals.Cost = totals.Cost.Add(t.CostPrice)
		totals.Profit = totals.Revenue.Sub(totals.Cost)
		totals.Orders++
		byDay[key] = totals
	}
	result := make([]monitorapp.DayTotals, 0, len(byDay))
	for _, totals := range byDay {
		result = append(result, totals)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// MachineRanking ranks machines by revenue over [from, to).
func (s *Store) MachineRanking(ctx context.Context, from, to time.Time, limit int) ([]monitorapp.MachineRank, error) {
	totals, err := s.MachineTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]monitorapp.MachineRank, 0, len(totals))
	for machineID, t := range totals {
		rank := monitorapp.MachineRank{
			MachineID: machineID,
			Revenue:   t.Revenue,
			Profit:    t.Revenue.Sub(t.Cost),
			Orders:    t.Orders,
		}
		if machine, ok := s.state.machines[machineID]; ok {
			rank.MachineCode = machine.Code
		}
		result = append(result, rank)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Revenue.Cmp(result[j].Revenue) > 0 })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// RestockTotals sums restock costs over [from, to).
func (s *Store) RestockTotals(ctx context.Context, from, to time.Time) (monitorapp.RestockTotals, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := monitorapp.RestockTotals{TotalCost: decimal.Zero}
	for _, r := range s.state.restocks {
		if !inRange(r.CreatedAt, from, to) {
			continue
		}
		totals.TotalCost = totals.TotalCost.Add(r.TotalCost())
		totals.TotalQuantity += r.Quantity
		totals.RestockCount++
	}
	return totals, nil
}

// Upsert writes one daily stat row, replacing any previous row for its key.
func (s *Store) Upsert(ctx context.Context, stat *monitor.DailyStat) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.dailyStats[statKey(stat.Date, stat.MachineID)] = *stat
	return nil
}

// ListByDate returns the daily stat rows of one day.
func (s *Store) ListByDate(ctx context.Context, date time.Time) ([]monitor.DailyStat, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []monitor.DailyStat
	for _, stat := range s.state.dailyStats {
		if stat.Date.Equal(date) {
			result = append(result, stat)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MachineID < result[j].MachineID })
	return result, nil
}

// ListAlerts returns alerts newest first, optionally filtered.
func (s *Store) ListAlerts(ctx context.Context, machineID string, from, to time.Time) ([]monitor.Alert, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []monitor.Alert
	for _, alert := range s.state.alerts {
		if machineID != "" && alert.MachineID != machineID {
			continue
		}
		if !from.IsZero() && alert.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !alert.CreatedAt.Before(to) {
			continue
		}
		result = append(result, alert)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}
