package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"vendfleet/internal/audit"
	"vendfleet/internal/auth"
	catalogapp "vendfleet/internal/catalog/application"
	catalog "vendfleet/internal/catalog/domain"
	inventory "vendfleet/internal/inventory/domain"
)

// Handler provides supplier, machine and product HTTP endpoints.
type Handler struct {
	service  *catalogapp.Service
	auditLog audit.Logger
}

// NewHandler constructs a handler. auditLog may be nil.
func NewHandler(service *catalogapp.Service, auditLog audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("catalog handler: nil service")
	}
	return &Handler{service: service, auditLog: auditLog}, nil
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

// ServeHTTP handles /api/v1/suppliers, /api/v1/machines and /api/v1/products.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/suppliers":
		h.handleSuppliers(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/suppliers/"):
		h.handleSupplierByID(w, r)
	case r.URL.Path == "/api/v1/machines":
		h.handleMachines(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/machines/"):
		h.handleMachineByID(w, r)
	case r.URL.Path == "/api/v1/products":
		h.handleProducts(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/products/"):
		h.handleProductByID(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleSuppliers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := h.service.ListSuppliers(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var req struct {
			Name    string `json:"name"`
			Contact string `json:"contact"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		supplier, err := h.service.CreateSupplier(r.Context(), req.Name, req.Contact)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, supplier)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleSupplierByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/suppliers/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := h.service.DeleteSupplier(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	h.recordAudit(r, "supplier.delete", "supplier", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMachines(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := h.service.ListMachines(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var req struct {
			Code       string `json:"code"`
			Location   string `json:"location"`
			RegionCode string `json:"region_code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		machine, err := h.service.CreateMachine(r.Context(), req.Code, req.Location, req.RegionCode)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, machine)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleMachineByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/machines/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		id := parts[0]
		switch r.Method {
		case http.MethodGet:
			machine, err := h.service.GetMachine(r.Context(), id)
			if err != nil {
				respondError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, machine)
		case http.MethodDelete:
			if err := h.service.DeleteMachine(r.Context(), id); err != nil {
				respondError(w, err)
				return
			}
			h.recordAudit(r, "machine.delete", "machine", id)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "status":
		if r.Method != http.MethodPatch {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		machine, err := h.service.SetMachineStatus(r.Context(), parts[0], req.Status)
		if err != nil {
			respondError(w, err)
			return
		}
		h.recordAudit(r, "machine.status."+req.Status, "machine", machine.ID)
		writeJSON(w, http.StatusOK, machine)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := h.service.ListProducts(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var req struct {
			Name       string          `json:"name"`
			CostPrice  decimal.Decimal `json:"cost_price"`
			SellPrice  decimal.Decimal `json:"sell_price"`
			SupplierID string          `json:"supplier_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		product, err := h.service.CreateProduct(r.Context(), req.Name, req.CostPrice, req.SellPrice, req.SupplierID)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, product)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleProductByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/products/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	h.recordAudit(r, "product.delete", "product", id)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrSupplierNotFound),
		errors.Is(err, catalog.ErrMachineNotFound),
		errors.Is(err, catalog.ErrProductNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, catalog.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, inventory.ErrConcurrencyConflict),
		errors.Is(err, inventory.ErrConstraintViolation):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
