package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalog "vendfleet/internal/catalog/domain"
	invapp "vendfleet/internal/inventory/application"
	monitor "vendfleet/internal/monitor/domain"
	"vendfleet/internal/observability/metrics"
)

// SupplierRepository persists suppliers.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *catalog.Supplier) error
	GetByID(ctx context.Context, id string) (*catalog.Supplier, error)
	List(ctx context.Context) ([]catalog.Supplier, error)
	Delete(ctx context.Context, id string) error
}

// MachineRepository persists machines.
type MachineRepository interface {
	Create(ctx context.Context, machine *catalog.Machine) error
	GetByID(ctx context.Context, id string) (*catalog.Machine, error)
	List(ctx context.Context) ([]catalog.Machine, error)
	Delete(ctx context.Context, id string) error
}

// ProductRepository persists products.
type ProductRepository interface {
	Create(ctx context.Context, product *catalog.Product) error
	GetByID(ctx context.Context, id string) (*catalog.Product, error)
	List(ctx context.Context) ([]catalog.Product, error)
	Delete(ctx context.Context, id string) error
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Service manages suppliers, machines and products. Machine status changes go
// through the shared transactional store so the fault alert commits with the
// transition. Deleting a supplier, machine or product cascades to every row
// referencing it, stock entries and history included.
type Service struct {
	suppliers SupplierRepository
	machines  MachineRepository
	products  ProductRepository
	store     invapp.Store
	clock     Clock
}

// ServiceOption customizes the service.
type ServiceOption func(*Service)

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService constructs a catalog service.
func NewService(suppliers SupplierRepository, machines MachineRepository, products ProductRepository, store invapp.Store, opts ...ServiceOption) (*Service, error) {
	if suppliers == nil || machines == nil || products == nil {
		return nil, errors.New("catalog: nil repository")
	}
	if store == nil {
		return nil, errors.New("catalog: nil store")
	}
	service := &Service{
		suppliers: suppliers,
		machines:  machines,
		products:  products,
		store:     store,
		clock:     systemClock{},
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CreateSupplier registers a supplier.
func (s *Service) CreateSupplier(ctx context.Context, name, contact string) (*catalog.Supplier, error) {
	if name == "" {
		return nil, errors.New("catalog: supplier name required")
	}
	supplier := &catalog.Supplier{
		ID:        uuid.NewString(),
		Name:      name,
		Contact:   contact,
		CreatedAt: s.clock.Now(),
	}
	if err := s.suppliers.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// ListSuppliers returns all suppliers.
func (s *Service) ListSuppliers(ctx context.Context) ([]catalog.Supplier, error) {
	return s.suppliers.List(ctx)
}

// DeleteSupplier removes a supplier and, by cascade, its products and their
// dependent rows.
func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	return s.suppliers.Delete(ctx, id)
}

// CreateMachine registers a machine in normal status.
func (s *Service) CreateMachine(ctx context.Context, code, location, regionCode string) (*catalog.Machine, error) {
	if code == "" {
		return nil, errors.New("catalog: machine code required")
	}
	machine := &catalog.Machine{
		ID:         uuid.NewString(),
		Code:       code,
		Location:   location,
		Status:     catalog.MachineStatusNormal,
		RegionCode: regionCode,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.machines.Create(ctx, machine); err != nil {
		return nil, err
	}
	return machine, nil
}

// GetMachine returns one machine.
func (s *Service) GetMachine(ctx context.Context, id string) (*catalog.Machine, error) {
	return s.machines.GetByID(ctx, id)
}

// ListMachines returns all machines.
func (s *Service) ListMachines(ctx context.Context) ([]catalog.Machine, error) {
	return s.machines.List(ctx)
}

// DeleteMachine removes a machine and all dependent rows.
func (s *Service) DeleteMachine(ctx context.Context, id string) error {
	return s.machines.Delete(ctx, id)
}

// SetMachineStatus transitions a machine's status. The normal -> fault edge
// emits a fault alert in the same atomic unit as the status write, so the
// alert exists exactly when the transition committed. Setting the current
// status again is a no-op.
func (s *Service) SetMachineStatus(ctx context.Context, id, status string) (*catalog.Machine, error) {
	if !catalog.ValidMachineStatus(status) {
		return nil, catalog.ErrInvalidStatus
	}
	var updated *catalog.Machine
	err := s.store.InTx(ctx, func(tx invapp.Tx) error {
		machine, err := tx.MachineForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if machine.Status == status {
			updated = machine
			return nil
		}
		if err := tx.SetMachineStatus(ctx, machine.ID, status); err != nil {
			return err
		}
		alerts := monitor.EvaluateStatusTransition(machine.ID, machine.Code, machine.Status, status, s.clock.Now())
		for i := range alerts {
			if err := tx.InsertAlert(ctx, &alerts[i]); err != nil {
				return err
			}
			metrics.IncAlertEmitted(alerts[i].AlertType)
		}
		machine.Status = status
		updated = machine
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CreateProduct registers a product for a supplier.
func (s *Service) CreateProduct(ctx context.Context, name string, costPrice, sellPrice decimal.Decimal, supplierID string) (*catalog.Product, error) {
	if name == "" {
		return nil, errors.New("catalog: product name required")
	}
	if costPrice.IsNegative() || sellPrice.IsNegative() {
		return nil, errors.New("catalog: negative price")
	}
	if _, err := s.suppliers.GetByID(ctx, supplierID); err != nil {
		return nil, err
	}
	product := &catalog.Product{
		ID:         uuid.NewString(),
		Name:       name,
		CostPrice:  costPrice,
		SellPrice:  sellPrice,
		SupplierID: supplierID,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// ListProducts returns all products.
func (s *Service) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.products.List(ctx)
}

// DeleteProduct removes a product and all dependent rows.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}
