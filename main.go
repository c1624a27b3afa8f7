package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	accountapp "vendfleet/internal/accounts/application"
	accountrepo "vendfleet/internal/accounts/infrastructure/postgres"
	accounthttp "vendfleet/internal/accounts/interfaces/http"
	"vendfleet/internal/audit"
	"vendfleet/internal/auth"
	catalogapp "vendfleet/internal/catalog/application"
	catalogrepo "vendfleet/internal/catalog/infrastructure/postgres"
	cataloghttp "vendfleet/internal/catalog/interfaces/http"
	"vendfleet/internal/config"
	invapp "vendfleet/internal/inventory/application"
	invrepo "vendfleet/internal/inventory/infrastructure/postgres"
	invhttp "vendfleet/internal/inventory/interfaces/http"
	monitorapp "vendfleet/internal/monitor/application"
	monitorrepo "vendfleet/internal/monitor/infrastructure/postgres"
	monitorhttp "vendfleet/internal/monitor/interfaces/http"
	"vendfleet/internal/observability/metrics"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	store := invrepo.NewStore(db, invrepo.WithLockTimeout(cfg.LockTimeout))
	stockReader := invrepo.NewReader(db)

	supplierRepo := catalogrepo.NewSupplierRepository(db)
	machineRepo := catalogrepo.NewMachineRepository(db)
	productRepo := catalogrepo.NewProductRepository(db)
	accountRepo := accountrepo.NewAccountRepository(db)
	staffRepo := accountrepo.NewStaffRepository(db)
	adminRepo := accountrepo.NewAdminRepository(db)
	historyReader := monitorrepo.NewHistoryReader(db)
	dailyStatRepo := monitorrepo.NewDailyStatRepository(db)
	alertRepo := monitorrepo.NewAlertRepository(db)

	ledger := invapp.NewLedger()
	purchaseService, err := invapp.NewPurchaseService(store, ledger)
	if err != nil {
		logger.Fatalf("purchase service error: %v", err)
	}
	restockService, err := invapp.NewRestockService(store, ledger)
	if err != nil {
		logger.Fatalf("restock service error: %v", err)
	}
	stockService, err := invapp.NewStockService(store, stockReader)
	if err != nil {
		logger.Fatalf("stock service error: %v", err)
	}

	catalogService, err := catalogapp.NewService(supplierRepo, machineRepo, productRepo, store)
	if err != nil {
		logger.Fatalf("catalog service error: %v", err)
	}
	accountService, err := accountapp.NewService(accountRepo, staffRepo, adminRepo)
	if err != nil {
		logger.Fatalf("accounts service error: %v", err)
	}

	aggregator, err := monitorapp.NewAggregator(machineRepo, historyReader, dailyStatRepo)
	if err != nil {
		logger.Fatalf("aggregator error: %v", err)
	}
	alertService, err := monitorapp.NewAlertQueryService(alertRepo)
	if err != nil {
		logger.Fatalf("alert service error: %v", err)
	}

	inventoryHandler, err := invhttp.NewHandler(purchaseService, restockService, stockService, stockReader, stockReader, auditRepo)
	if err != nil {
		logger.Fatalf("inventory handler error: %v", err)
	}
	monitorHandler, err := monitorhttp.NewHandler(aggregator, alertService, machineRepo, cfg.Currency)
	if err != nil {
		logger.Fatalf("monitor handler error: %v", err)
	}
	catalogHandler, err := cataloghttp.NewHandler(catalogService, auditRepo)
	if err != nil {
		logger.Fatalf("catalog handler error: %v", err)
	}
	accountHandler, err := accounthttp.NewHandler(accountService, []byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("accounts handler error: %v", err)
	}

	go runDailyGenerate(context.Background(), aggregator, cfg.DailyGenerateAt, logger)

	policy := auth.NewDefaultPolicy(
		[]string{"/healthz", "/metrics", "/api/v1/auth/login"},
		[]string{"/api/v1/vend/"},
	)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/vend/", inventoryHandler)
	mux.Handle("/api/v1/transactions", inventoryHandler)
	mux.Handle("/api/v1/transactions/", inventoryHandler)
	mux.Handle("/api/v1/restocks", inventoryHandler)
	mux.Handle("/api/v1/restocks/", inventoryHandler)
	mux.Handle("/api/v1/stock", inventoryHandler)
	mux.Handle("/api/v1/alerts", monitorHandler)
	mux.Handle("/api/v1/stats", monitorHandler)
	mux.Handle("/api/v1/stats/", monitorHandler)
	mux.Handle("/api/v1/suppliers", catalogHandler)
	mux.Handle("/api/v1/suppliers/", catalogHandler)
	mux.Handle("/api/v1/machines", catalogHandler)
	mux.Handle("/api/v1/machines/", catalogHandler)
	mux.Handle("/api/v1/products", catalogHandler)
	mux.Handle("/api/v1/products/", catalogHandler)
	mux.Handle("/api/v1/auth/login", accountHandler)
	mux.Handle("/api/v1/accounts", accountHandler)
	mux.Handle("/api/v1/accounts/", accountHandler)
	mux.Handle("/api/v1/staff", accountHandler)
	mux.Handle("/api/v1/admins", accountHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

// runDailyGenerate recomputes the previous day's stats once a day at the
// configured UTC wall-clock time.
func runDailyGenerate(ctx context.Context, aggregator *monitorapp.Aggregator, dailyAt string, logger *log.Logger) {
	at, err := time.Parse("15:04", dailyAt)
	if err != nil {
		logger.Printf("daily stats schedule disabled: bad time %q", dailyAt)
		return
	}
	for {
		now := time.Now().UTC()
		next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, time.UTC)
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
		}
		yesterday := next.AddDate(0, 0, -1)
		if report, err := aggregator.Generate(ctx, yesterday); err != nil {
			logger.Printf("daily stats generate error: %v", err)
		} else {
			logger.Printf("daily stats generated: date=%s machines=%d", report.Date.Format("2006-01-02"), report.MachinesProcessed)
		}
	}
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
