package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"vendfleet/internal/catalog/application"
	catalog "vendfleet/internal/catalog/domain"
	"vendfleet/internal/inventory/infrastructure/memory"
	monitor "vendfleet/internal/monitor/domain"
)

type fakeSupplierRepo struct {
	suppliers map[string]catalog.Supplier
}

func (r *fakeSupplierRepo) Create(ctx context.Context, supplier *catalog.Supplier) error {
	r.suppliers[supplier.ID] = *supplier
	return nil
}

func (r *fakeSupplierRepo) GetByID(ctx context.Context, id string) (*catalog.Supplier, error) {
	supplier, ok := r.suppliers[id]
	if !ok {
		return nil, catalog.ErrSupplierNotFound
	}
	return &supplier, nil
}

func (r *fakeSupplierRepo) List(ctx context.Context) ([]catalog.Supplier, error) {
	result := make([]catalog.Supplier, 0, len(r.suppliers))
	for _, supplier := range r.suppliers {
		result = append(result, supplier)
	}
	return result, nil
}

func (r *fakeSupplierRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.suppliers[id]; !ok {
		return catalog.ErrSupplierNotFound
	}
	delete(r.suppliers, id)
	return nil
}

type fakeMachineRepo struct {
	machines map[string]catalog.Machine
}

func (r *fakeMachineRepo) Create(ctx context.Context, machine *catalog.Machine) error {
	r.machines[machine.ID] = *machine
	return nil
}

func (r *fakeMachineRepo) GetByID(ctx context.Context, id string) (*catalog.Machine, error) {
	machine, ok := r.machines[id]
	if !ok {
		return nil, catalog.ErrMachineNotFound
	}
	return &machine, nil
}

func (r *fakeMachineRepo) List(ctx context.Context) ([]catalog.Machine, error) {
	result := make([]catalog.Machine, 0, len(r.machines))
	for _, machine := range r.machines {
		result = append(result, machine)
	}
	return result, nil
}

func (r *fakeMachineRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.machines[id]; !ok {
		return catalog.ErrMachineNotFound
	}
	delete(r.machines, id)
	return nil
}

type fakeProductRepo struct {
	products map[string]catalog.Product
}

func (r *fakeProductRepo) Create(ctx context.Context, product *catalog.Product) error {
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &product, nil
}

func (r *fakeProductRepo) List(ctx context.Context) ([]catalog.Product, error) {
	result := make([]catalog.Product, 0, len(r.products))
	for _, product := range r.products {
		result = append(result, product)
	}
	return result, nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func newService(t *testing.T, store *memory.Store) (*application.Service, *fakeSupplierRepo) {
	t.Helper()
	suppliers := &fakeSupplierRepo{suppliers: make(map[string]catalog.Supplier)}
	machines := &fakeMachineRepo{machines: make(map[string]catalog.Machine)}
	products := &fakeProductRepo{products: make(map[string]catalog.Product)}
	service, err := application.NewService(suppliers, machines, products, store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service, suppliers
}

func TestSetMachineStatusEmitsFaultAlert(t *testing.T) {
	store := memory.NewStore()
	store.SeedMachine(catalog.Machine{ID: "m1", Code: "VM-A001", Status: "normal"})
	service, _ := newService(t, store)

	machine, err := service.SetMachineStatus(context.Background(), "m1", "fault")
	if err != nil {
		t.Fatalf("SetMachineStatus: %v", err)
	}
	if machine.Status != "fault" {
		t.Fatalf("expected fault status, got %s", machine.Status)
	}
	alerts := store.Alerts()
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].AlertType != monitor.AlertTypeFault {
		t.Fatalf("expected fault alert, got %s", alerts[0].AlertType)
	}
	if alerts[0].Message != "fault: machine VM-A001 reported a failure" {
		t.Fatalf("unexpected alert message: %q", alerts[0].Message)
	}
}

func TestSetMachineStatusRecoveryIsSilent(t *testing.T) {
	store := memory.NewStore()
	store.SeedMachine(catalog.Machine{ID: "m1", Code: "VM-A001", Status: "fault"})
	service, _ := newService(t, store)

	machine, err := service.SetMachineStatus(context.Background(), "m1", "normal")
	if err != nil {
		t.Fatalf("SetMachineStatus: %v", err)
	}
	if machine.Status != "normal" {
		t.Fatalf("expected normal status, got %s", machine.Status)
	}
	if got := len(store.Alerts()); got != 0 {
		t.Fatalf("expected no alerts on recovery, got %d", got)
	}
}

func TestSetMachineStatusNoOpOnSameStatus(t *testing.T) {
	store := memory.NewStore()
	store.SeedMachine(catalog.Machine{ID: "m1", Code: "VM-A001", Status: "fault"})
	service, _ := newService(t, store)

	if _, err := service.SetMachineStatus(context.Background(), "m1", "fault"); err != nil {
		t.Fatalf("SetMachineStatus: %v", err)
	}
	if got := len(store.Alerts()); got != 0 {
		t.Fatalf("expected no alerts on repeated fault, got %d", got)
	}
}

func TestSetMachineStatusValidation(t *testing.T) {
	store := memory.NewStore()
	store.SeedMachine(catalog.Machine{ID: "m1", Code: "VM-A001", Status: "normal"})
	service, _ := newService(t, store)
	ctx := context.Background()

	if _, err := service.SetMachineStatus(ctx, "m1", "broken"); !errors.Is(err, catalog.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := service.SetMachineStatus(ctx, "m9", "fault"); !errors.Is(err, catalog.ErrMachineNotFound) {
		t.Fatalf("expected ErrMachineNotFound, got %v", err)
	}
}

func TestCreateProductRequiresSupplier(t *testing.T) {
	service, suppliers := newService(t, memory.NewStore())
	ctx := context.Background()

	if _, err := service.CreateProduct(ctx, "Cola", decimal.RequireFromString("2.00"), decimal.RequireFromString("3.50"), "sup1"); !errors.Is(err, catalog.ErrSupplierNotFound) {
		t.Fatalf("expected ErrSupplierNotFound, got %v", err)
	}

	supplier, err := service.CreateSupplier(ctx, "Cola Beverage Co.", "contact@example.com")
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	if _, ok := suppliers.suppliers[supplier.ID]; !ok {
		t.Fatalf("supplier not persisted")
	}

	product, err := service.CreateProduct(ctx, "Cola", decimal.RequireFromString("2.00"), decimal.RequireFromString("3.50"), supplier.ID)
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.SupplierID != supplier.ID {
		t.Fatalf("expected supplier %s, got %s", supplier.ID, product.SupplierID)
	}
}

func TestCreateProductRejectsNegativePrices(t *testing.T) {
	service, _ := newService(t, memory.NewStore())
	if _, err := service.CreateProduct(context.Background(), "Cola", decimal.RequireFromString("-1.00"), decimal.RequireFromString("3.50"), "sup1"); err == nil {
		t.Fatal("expected error for negative cost price")
	}
}

func TestCreateMachineDefaultsToNormal(t *testing.T) {
	service, _ := newService(t, memory.NewStore())
	machine, err := service.CreateMachine(context.Background(), "VM-A001", "Building A", "R1")
	if err != nil {
		t.Fatalf("CreateMachine: %v", err)
	}
	if machine.Status != catalog.MachineStatusNormal {
		t.Fatalf("expected normal status, got %s", machine.Status)
	}
}
