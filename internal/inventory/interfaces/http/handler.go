package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	accounts "vendfleet/internal/accounts/domain"
	"vendfleet/internal/audit"
	"vendfleet/internal/auth"
	catalog "vendfleet/internal/catalog/domain"
	invapp "vendfleet/internal/inventory/application"
	inventory "vendfleet/internal/inventory/domain"
)

// TransactionLister reads recent transactions.
type TransactionLister interface {
	ListTransactions(ctx context.Context, limit int) ([]inventory.Transaction, error)
}

// RestockLister reads recent restocks.
type RestockLister interface {
	ListRestocks(ctx context.Context, limit int) ([]inventory.Restock, error)
}

// Handler provides purchase, restock and stock HTTP endpoints.
type Handler struct {
	purchases    *invapp.PurchaseService
	restocks     *invapp.RestockService
	stock        *invapp.StockService
	transactions TransactionLister
	restockList  RestockLister
	auditLog     audit.Logger
}

// NewHandler constructs a handler. auditLog may be nil.
func NewHandler(purchases *invapp.PurchaseService, restocks *invapp.RestockService, stock *invapp.StockService, transactions TransactionLister, restockList RestockLister, auditLog audit.Logger) (*Handler, error) {
	if purchases == nil || restocks == nil || stock == nil {
		return nil, errors.New("inventory handler: nil service")
	}
	return &Handler{
		purchases:    purchases,
		restocks:     restocks,
		stock:        stock,
		transactions: transactions,
		restockList:  restockList,
		auditLog:     auditLog,
	}, nil
}

func (h *Handler) recordAudit(r *http.Request, action, resourceType, resourceID string) {
	if h.auditLog == nil {
		return
	}
	_ = h.auditLog.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IP:           r.RemoteAddr,
		UserAgent:    r.UserAgent(),
	})
}

// ServeHTTP handles vend, transaction, restock and stock routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/vend/purchase":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handlePurchase(w, r)
	case r.URL.Path == "/api/v1/transactions":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleListTransactions(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/transactions/"):
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleVoidTransaction(w, r)
	case r.URL.Path == "/api/v1/restocks":
		switch r.Method {
		case http.MethodPost:
			h.handleRestock(w, r)
		case http.MethodGet:
			h.handleListRestocks(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case strings.HasPrefix(r.URL.Path, "/api/v1/restocks/"):
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleVoidRestock(w, r)
	case r.URL.Path == "/api/v1/stock":
		switch r.Method {
		case http.MethodGet:
			h.handleListStock(w, r)
		case http.MethodPost:
			h.handleCreateStock(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"user_id"`
		MachineID string `json:"machine_id"`
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.MachineID == "" || req.ProductID == "" {
		http.Error(w, "user_id, machine_id and product_id are required", http.StatusBadRequest)
		return
	}

	transaction, err := h.purchases.Purchase(r.Context(), req.UserID, req.MachineID, req.ProductID)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(transaction)
}

func (h *Handler) handleVoidTransaction(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/transactions/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err := h.purchases.Void(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	h.recordAudit(r, "transaction.void", "transaction", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	if h.transactions == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	list, err := h.transactions.ListTransactions(r.Context(), parseLimit(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *Handler) handleRestock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StaffID   string `json:"staff_id"`
		MachineID string `json:"machine_id"`
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.StaffID == "" || req.MachineID == "" || req.ProductID == "" {
		http.Error(w, "staff_id, machine_id and product_id are required", http.StatusBadRequest)
		return
	}

	restock, err := h.restocks.Restock(r.Context(), req.StaffID, req.MachineID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(restock)
}

func (h *Handler) handleVoidRestock(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/restocks/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err := h.restocks.Void(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	h.recordAudit(r, "restock.void", "restock", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListRestocks(w http.ResponseWriter, r *http.Request) {
	if h.restockList == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	list, err := h.restockList.ListRestocks(r.Context(), parseLimit(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *Handler) handleListStock(w http.ResponseWriter, r *http.Request) {
	entries, err := h.stock.ListByMachine(r.Context(), r.URL.Query().Get("machine_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

func (h *Handler) handleCreateStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MachineID    string `json:"machine_id"`
		ProductID    string `json:"product_id"`
		InitialStock int    `json:"initial_stock"`
		MaxCapacity  int    `json:"max_capacity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.MachineID == "" || req.ProductID == "" {
		http.Error(w, "machine_id and product_id are required", http.StatusBadRequest)
		return
	}

	entry, err := h.stock.CreateEntry(r.Context(), req.MachineID, req.ProductID, req.InitialStock, req.MaxCapacity)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(entry)
}

func parseLimit(r *http.Request) int {
	value := r.URL.Query().Get("limit")
	if value == "" {
		return 0
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inventory.ErrStockEntryNotFound),
		errors.Is(err, inventory.ErrTransactionNotFound),
		errors.Is(err, inventory.ErrRestockNotFound),
		errors.Is(err, catalog.ErrMachineNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, accounts.ErrAccountNotFound),
		errors.Is(err, accounts.ErrStaffNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrInsufficientBalance),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrInvalidCapacity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, inventory.ErrConcurrencyConflict),
		errors.Is(err, inventory.ErrConstraintViolation):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
