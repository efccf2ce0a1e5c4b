package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/emulator/internal/store"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/t212"
)

// BrokerHandler handles the brokerage-side endpoints.
type BrokerHandler struct {
	store *store.Store
}

// NewBrokerHandler creates a new BrokerHandler.
func NewBrokerHandler(s *store.Store) *BrokerHandler {
	return &BrokerHandler{store: s}
}

type exportRequest struct {
	TimeFrom string `json:"timeFrom"`
	TimeTo   string `json:"timeTo"`
}

// CreateExport handles POST /api/v0/history/exports.
func (h *BrokerHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "400", "invalid_request", "Failed to parse request body")
		return
	}
	if req.TimeFrom == "" || req.TimeTo == "" {
		writeJSONError(w, http.StatusBadRequest, "400", "invalid_parameter", "Missing timeFrom or timeTo")
		return
	}

	record, err := h.store.CreateExport(req.TimeFrom, req.TimeTo)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "500", "server_error", "Failed to create export")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"reportId": record.ID})
}

// ListExports handles GET /api/v0/history/exports. Exports finish on the
// first poll that observes them.
func (h *BrokerHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListExports()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "500", "server_error", "Failed to list exports")
		return
	}

	reports := make([]t212.ExportReport, 0, len(records))
	for _, record := range records {
		if record.Status != t212.ExportStatusFinished {
			if err := h.store.FinishExport(record.ID); err != nil {
				writeJSONError(w, http.StatusInternalServerError, "500", "server_error", "Failed to finish export")
				return
			}
		}
		reports = append(reports, t212.ExportReport{
			ReportID:     record.ID,
			Status:       t212.ExportStatusFinished,
			DownloadLink: fmt.Sprintf("http://%s/exports/%d/download", r.Host, record.ID),
		})
	}

	writeJSON(w, http.StatusOK, reports)
}

// Download handles GET /exports/{id}/download. Download links are pre-signed
// in the real API, so the route takes no Authorization header.
func (h *BrokerHandler) Download(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	if _, err := strconv.ParseInt(idStr, 10, 64); err != nil {
		writeJSONError(w, http.StatusBadRequest, "400", "invalid_parameter", "Invalid export ID")
		return
	}

	csv, err := h.store.ExportCSV()
	if err != nil {
		if err == store.ErrNotFound {
			writeJSONError(w, http.StatusNotFound, "404", "not_found", "No export data seeded")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "500", "server_error", "Failed to load export")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}

// AccountInfo handles GET /api/v0/equity/account/info.
func (h *BrokerHandler) AccountInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.store.Account()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "500", "server_error", "Failed to load account info")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Instruments handles GET /api/v0/equity/metadata/instruments.
func (h *BrokerHandler) Instruments(w http.ResponseWriter, r *http.Request) {
	instruments, err := h.store.Instruments()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "500", "server_error", "Failed to load instruments")
		return
	}
	if instruments == nil {
		instruments = []t212.Instrument{}
	}
	writeJSON(w, http.StatusOK, instruments)
}

// Portfolio handles GET /api/v0/equity/portfolio.
func (h *BrokerHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	positions, err := h.store.Positions()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "500", "server_error", "Failed to load portfolio")
		return
	}
	if positions == nil {
		positions = []t212.OpenPosition{}
	}
	writeJSON(w, http.StatusOK, positions)
}
