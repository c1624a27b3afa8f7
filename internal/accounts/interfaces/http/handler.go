package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	accountapp "vendfleet/internal/accounts/application"
	accounts "vendfleet/internal/accounts/domain"
	"vendfleet/internal/auth"
)

// Handler provides account, staff, admin and login HTTP endpoints.
type Handler struct {
	service   *accountapp.Service
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewHandler constructs a handler.
func NewHandler(service *accountapp.Service, jwtSecret []byte, tokenTTL time.Duration) (*Handler, error) {
	if service == nil {
		return nil, errors.New("accounts handler: nil service")
	}
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &Handler{service: service, jwtSecret: jwtSecret, tokenTTL: tokenTTL}, nil
}

// ServeHTTP handles /api/v1/accounts, /api/v1/staff, /api/v1/admins and
// /api/v1/auth/login.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/auth/login":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleLogin(w, r)
	case r.URL.Path == "/api/v1/accounts":
		h.handleAccounts(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/accounts/"):
		h.handleAccountByID(w, r)
	case r.URL.Path == "/api/v1/staff":
		h.handleStaff(w, r)
	case r.URL.Path == "/api/v1/admins":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleCreateAdmin(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	admin, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	role, ok := auth.NormalizeRole(admin.Permission)
	if !ok {
		role = auth.RoleAdmin
	}
	token, err := auth.IssueToken(admin.ID, role, h.jwtSecret, h.tokenTTL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":    token,
		"role":     string(role),
		"username": admin.Username,
	})
}

func (h *Handler) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := h.service.ListAccounts(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var req struct {
			Username string          `json:"username"`
			Balance  decimal.Decimal `json:"balance"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		account, err := h.service.CreateAccount(r.Context(), req.Username, req.Balance)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, account)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleAccountByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/accounts/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		account, err := h.service.GetAccount(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, account)
	case http.MethodDelete:
		if err := h.service.DeleteAccount(r.Context(), id); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleStaff(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := h.service.ListStaff(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var req struct {
			StaffNo    string `json:"staff_no"`
			Name       string `json:"name"`
			Phone      string `json:"phone"`
			RegionCode string `json:"region_code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		staff, err := h.service.CreateStaff(r.Context(), req.StaffNo, req.Name, req.Phone, req.RegionCode)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, staff)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username   string `json:"username"`
		Password   string `json:"password"`
		Permission string `json:"permission"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	admin, err := h.service.CreateAdmin(r.Context(), req.Username, req.Password, req.Permission)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accounts.ErrAccountNotFound),
		errors.Is(err, accounts.ErrStaffNotFound),
		errors.Is(err, accounts.ErrAdminNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, accounts.ErrNegativeBalance):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
