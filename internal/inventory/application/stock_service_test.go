package application_test

import (
	"context"
	"errors"
	"testing"

	catalog "vendfleet/internal/catalog/domain"
	"vendfleet/internal/inventory/application"
	inventory "vendfleet/internal/inventory/domain"
	"vendfleet/internal/inventory/infrastructure/memory"
)

func newStockService(t *testing.T, store *memory.Store) *application.StockService {
	t.Helper()
	service, err := application.NewStockService(store, store)
	if err != nil {
		t.Fatalf("NewStockService: %v", err)
	}
	return service
}

func TestCreateEntry(t *testing.T) {
	store := memory.NewStore()
	store.SeedMachine(catalog.Machine{ID: "m1", Code: "VM-A001", Status: "normal"})
	store.SeedProduct(catalog.Product{ID: "p1", Name: "Cola", CostPrice: money("2.00"), SellPrice: money("3.50")})
	service := newStockService(t, store)

	entry, err := service.CreateEntry(context.Background(), "m1", "p1", 10, 20)
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if entry.CurrentStock != 10 || entry.MaxCapacity != 20 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if stock, ok := store.StockLevel("m1", "p1"); !ok || stock != 10 {
		t.Fatalf("expected stored stock 10, got %d (ok=%v)", stock, ok)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	store := memory.NewStore()
	store.SeedMachine(catalog.Machine{ID: "m1", Code: "VM-A001", Status: "normal"})
	store.SeedProduct(catalog.Product{ID: "p1", Name: "Cola"})
	service := newStockService(t, store)
	ctx := context.Background()

	if _, err := service.CreateEntry(ctx, "m1", "p1", 0, 0); !errors.Is(err, inventory.ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity, got %v", err)
	}
	if _, err := service.CreateEntry(ctx, "m1", "p1", -1, 20); !errors.Is(err, inventory.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for negative stock, got %v", err)
	}
	if _, err := service.CreateEntry(ctx, "m1", "p1", 21, 20); !errors.Is(err, inventory.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity above capacity, got %v", err)
	}
	if _, err := service.CreateEntry(ctx, "m2", "p1", 0, 20); !errors.Is(err, catalog.ErrMachineNotFound) {
		t.Fatalf("expected ErrMachineNotFound, got %v", err)
	}
	if _, err := service.CreateEntry(ctx, "m1", "p2", 0, 20); !errors.Is(err, catalog.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCreateEntryDuplicatePair(t *testing.T) {
	store := newFixture(t, 10, 20, "100.00")
	service := newStockService(t, store)

	if _, err := service.CreateEntry(context.Background(), "m1", "p1", 0, 20); !errors.Is(err, inventory.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestListByMachine(t *testing.T) {
	store := newFixture(t, 10, 20, "100.00")
	store.SeedMachine(catalog.Machine{ID: "m2", Code: "VM-A002", Status: "normal"})
	store.SeedStockEntry(inventory.StockEntry{ID: "e2", MachineID: "m2", ProductID: "p1", CurrentStock: 3, MaxCapacity: 20})
	service := newStockService(t, store)
	ctx := context.Background()

	entries, err := service.ListByMachine(ctx, "m2")
	if err != nil {
		t.Fatalf("ListByMachine: %v", err)
	}
	if len(entries) != 1 || entries[0].MachineID != "m2" {
		t.Fatalf("expected one entry for m2, got %+v", entries)
	}

	// An empty machine filter lists the whole fleet.
	entries, err = service.ListByMachine(ctx, "")
	if err != nil {
		t.Fatalf("ListByMachine all: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}
