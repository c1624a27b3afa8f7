package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	monitorapp "vendfleet/internal/monitor/application"
	monitor "vendfleet/internal/monitor/domain"
	monitorexport "vendfleet/internal/monitor/interfaces"
	"vendfleet/internal/observability/metrics"
)

const (
	timeLayout = time.RFC3339
	dateLayout = "2006-01-02"
)

// Handler provides alert and statistics HTTP endpoints.
type Handler struct {
	aggregator *monitorapp.Aggregator
	alerts     *monitorapp.AlertQueryService
	machines   monitorapp.MachineLister
	currency   string
}

// NewHandler constructs a handler. currency labels money columns in exports.
func NewHandler(aggregator *monitorapp.Aggregator, alerts *monitorapp.AlertQueryService, machines monitorapp.MachineLister, currency string) (*Handler, error) {
	if aggregator == nil {
		return nil, errors.New("monitor handler: nil aggregator")
	}
	if alerts == nil {
		return nil, errors.New("monitor handler: nil alert service")
	}
	if machines == nil {
		return nil, errors.New("monitor handler: nil machine lister")
	}
	return &Handler{aggregator: aggregator, alerts: alerts, machines: machines, currency: currency}, nil
}

// ServeHTTP handles /api/v1/alerts and /api/v1/stats routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/alerts":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleListAlerts(w, r)
	case "/api/v1/stats/generate":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleGenerate(w, r)
	case "/api/v1/stats":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleStatsForDate(w, r)
	case "/api/v1/stats/summary":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleSummary(w, r)
	case "/api/v1/stats/restock-costs":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleRestockCosts(w, r)
	case "/api/v1/stats/export":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleExport(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	from, err := parseTimeQuery(r, "from")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	to, err := parseTimeQuery(r, "to")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := h.alerts.List(r.Context(), r.URL.Query().Get("machine_id"), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	report, err := h.aggregator.Generate(r.Context(), date)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}

func (h *Handler) handleStatsForDate(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stats, err := h.aggregator.StatsForDate(r.Context(), date)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "today"
	}
	summary, err := h.aggregator.Summary(r.Context(), period)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}

func (h *Handler) handleRestockCosts(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "week"
	}
	totals, err := h.aggregator.RestockCostSummary(r.Context(), period)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(totals)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "pdf" {
		http.Error(w, "format must be xlsx or pdf", http.StatusBadRequest)
		return
	}

	stats, err := h.aggregator.StatsForDate(r.Context(), date)
	if err != nil {
		respondError(w, err)
		return
	}
	machines, err := h.machines.ListMachines(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	codes := make(map[string]string, len(machines))
	for _, machine := range machines {
		codes[machine.ID] = machine.Code
	}

	var payload []byte
	switch format {
	case "xlsx":
		payload, err = monitorexport.BuildDailyReportXLSX(date, stats, codes, h.currency)
	case "pdf":
		payload, err = monitorexport.BuildDailyReportPDF(date, stats, codes, h.currency)
	}
	if err != nil {
		metrics.IncExport(format, "error")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.IncExport(format, "success")

	filename := fmt.Sprintf("daily-report-%s.%s", date.Format(dateLayout), format)
	if format == "xlsx" {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	} else {
		w.Header().Set("Content-Type", "application/pdf")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(payload)
}

func parseDateQuery(r *http.Request) (time.Time, error) {
	value := r.URL.Query().Get("date")
	if value == "" {
		return time.Time{}, errors.New("date is required")
	}
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD")
	}
	return date, nil
}

func parseTimeQuery(r *http.Request, key string) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC3339", key)
	}
	return parsed, nil
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, monitor.ErrInvalidDate), errors.Is(err, monitor.ErrInvalidPeriod):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, monitor.ErrStatNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
