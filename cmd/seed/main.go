// Command seed loads a demo dataset: one admin, field staff, customer
// accounts, suppliers, machines, products and full stock entries.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	accountapp "vendfleet/internal/accounts/application"
	accountrepo "vendfleet/internal/accounts/infrastructure/postgres"
	catalogapp "vendfleet/internal/catalog/application"
	catalog "vendfleet/internal/catalog/domain"
	catalogrepo "vendfleet/internal/catalog/infrastructure/postgres"
	"vendfleet/internal/config"
	invapp "vendfleet/internal/inventory/application"
	inventory "vendfleet/internal/inventory/domain"
	invrepo "vendfleet/internal/inventory/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	seedStock    = 10
	seedCapacity = 20
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("db ping error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store := invrepo.NewStore(db)
	stockReader := invrepo.NewReader(db)
	stockService, err := invapp.NewStockService(store, stockReader)
	if err != nil {
		log.Fatalf("stock service error: %v", err)
	}
	catalogService, err := catalogapp.NewService(
		catalogrepo.NewSupplierRepository(db),
		catalogrepo.NewMachineRepository(db),
		catalogrepo.NewProductRepository(db),
		store,
	)
	if err != nil {
		log.Fatalf("catalog service error: %v", err)
	}
	accountService, err := accountapp.NewService(
		accountrepo.NewAccountRepository(db),
		accountrepo.NewStaffRepository(db),
		accountrepo.NewAdminRepository(db),
	)
	if err != nil {
		log.Fatalf("accounts service error: %v", err)
	}

	if _, err := accountService.CreateAdmin(ctx, "superadmin", "admin123", "admin"); err != nil {
		log.Printf("admin: %v", err)
	}

	staffSeed := []struct{ no, name, phone, region string }{
		{"S001", "Alice Zhang", "13800001111", "A"},
		{"S002", "Bob Li", "13800002222", "B"},
		{"S003", "Carol Wang", "13800003333", "C"},
	}
	for _, s := range staffSeed {
		if _, err := accountService.CreateStaff(ctx, s.no, s.name, s.phone, s.region); err != nil {
			log.Printf("staff %s: %v", s.no, err)
		}
	}

	accountSeed := []struct {
		username string
		balance  string
	}{
		{"student001", "100.00"},
		{"student002", "50.00"},
		{"student003", "200.00"},
	}
	for _, a := range accountSeed {
		balance, err := decimal.NewFromString(a.balance)
		if err != nil {
			log.Fatalf("balance %s: %v", a.balance, err)
		}
		if _, err := accountService.CreateAccount(ctx, a.username, balance); err != nil {
			log.Printf("account %s: %v", a.username, err)
		}
	}

	supplierSeed := []struct{ name, contact string }{
		{"Cola Beverage Co.", "010-12345678"},
		{"Spring Water Co.", "010-87654321"},
		{"Uni Foods", "021-55556666"},
	}
	suppliers := make([]*catalog.Supplier, 0, len(supplierSeed))
	for _, s := range supplierSeed {
		supplier, err := catalogService.CreateSupplier(ctx, s.name, s.contact)
		if err != nil {
			log.Fatalf("supplier %s: %v", s.name, err)
		}
		suppliers = append(suppliers, supplier)
	}

	machineSeed := []struct{ code, location, region string }{
		{"VM-A001", "Building A, floor 1", "A"},
		{"VM-A002", "Building A, floor 3", "A"},
		{"VM-B001", "Library, floor 1", "B"},
		{"VM-C001", "Cafeteria entrance", "C"},
	}
	machines := make([]*catalog.Machine, 0, len(machineSeed))
	for _, m := range machineSeed {
		machine, err := catalogService.CreateMachine(ctx, m.code, m.location, m.region)
		if err != nil {
			log.Fatalf("machine %s: %v", m.code, err)
		}
		machines = append(machines, machine)
	}

	productSeed := []struct {
		name     string
		cost     string
		sell     string
		supplier int
	}{
		{"Cola", "2.00", "3.50", 0},
		{"Sprite", "2.00", "3.50", 0},
		{"Fanta", "2.00", "3.50", 0},
		{"Spring Water", "1.00", "2.00", 1},
		{"Oolong Tea", "3.00", "5.00", 1},
		{"Iced Black Tea", "2.50", "4.00", 2},
	}
	products := make([]*catalog.Product, 0, len(productSeed))
	for _, p := range productSeed {
		cost, err := decimal.NewFromString(p.cost)
		if err != nil {
			log.Fatalf("cost %s: %v", p.cost, err)
		}
		sell, err := decimal.NewFromString(p.sell)
		if err != nil {
			log.Fatalf("sell %s: %v", p.sell, err)
		}
		product, err := catalogService.CreateProduct(ctx, p.name, cost, sell, suppliers[p.supplier].ID)
		if err != nil {
			log.Fatalf("product %s: %v", p.name, err)
		}
		products = append(products, product)
	}

	entries := 0
	for _, machine := range machines {
		for _, product := range products {
			_, err := stockService.CreateEntry(ctx, machine.ID, product.ID, seedStock, seedCapacity)
			if err != nil {
				if errors.Is(err, inventory.ErrConstraintViolation) {
					continue
				}
				log.Fatalf("stock %s/%s: %v", machine.Code, product.Name, err)
			}
			entries++
		}
	}

	log.Printf("seeded: %d suppliers, %d machines, %d products, %d stock entries",
		len(suppliers), len(machines), len(products), entries)
}
