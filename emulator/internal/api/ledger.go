package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/emulator/internal/store"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/ynab"
)

// LedgerHandler handles the budget-ledger endpoints.
type LedgerHandler struct {
	store *store.Store
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(s *store.Store) *LedgerHandler {
	return &LedgerHandler{store: s}
}

// ListPayees handles GET /budgets/{budgetID}/payees.
func (h *LedgerHandler) ListPayees(w http.ResponseWriter, r *http.Request) {
	payees, err := h.store.ListPayees()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "500", "server_error", "Failed to list payees")
		return
	}

	var resp ynab.PayeesResponse
	resp.Data.Payees = payees
	if resp.Data.Payees == nil {
		resp.Data.Payees = []ynab.Payee{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListTransactions handles GET /budgets/{budgetID}/accounts/{accountID}/transactions.
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	txs, err := h.store.ListTransactions(accountID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "500", "server_error", "Failed to list transactions")
		return
	}

	var resp ynab.TransactionsResponse
	resp.Data.Transactions = txs
	if resp.Data.Transactions == nil {
		resp.Data.Transactions = []ynab.Transaction{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateTransactions handles POST /budgets/{budgetID}/transactions.
func (h *LedgerHandler) CreateTransactions(w http.ResponseWriter, r *http.Request) {
	var payload ynab.TransactionsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "400", "invalid_request", "Failed to parse request body")
		return
	}
	if len(payload.Transactions) == 0 {
		writeJSONError(w, http.StatusBadRequest, "400", "invalid_parameter", "Missing transactions")
		return
	}
	for _, tx := range payload.Transactions {
		if tx.AccountID == "" {
			writeJSONError(w, http.StatusBadRequest, "400", "invalid_parameter", "Missing account_id")
			return
		}
		if tx.Date == "" {
			writeJSONError(w, http.StatusBadRequest, "400", "invalid_parameter", "Missing date")
			return
		}
	}

	created, err := h.store.CreateTransactions(payload.Transactions)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "500", "server_error", "Failed to create transactions")
		return
	}

	var resp ynab.TransactionsResponse
	resp.Data.Transactions = created
	writeJSON(w, http.StatusCreated, resp)
}

// UpdateTransactions handles PATCH /budgets/{budgetID}/transactions.
func (h *LedgerHandler) UpdateTransactions(w http.ResponseWriter, r *http.Request) {
	var payload ynab.TransactionsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "400", "invalid_request", "Failed to parse request body")
		return
	}
	for _, tx := range payload.Transactions {
		if tx.ID == "" {
			writeJSONError(w, http.StatusBadRequest, "400", "invalid_parameter", "Missing transaction id")
			return
		}
	}

	updated, err := h.store.UpdateTransactions(payload.Transactions)
	if err != nil {
		if err == store.ErrNotFound {
			writeJSONError(w, http.StatusNotFound, "404", "not_found", "Transaction not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "500", "server_error", "Failed to update transactions")
		return
	}

	var resp ynab.TransactionsResponse
	resp.Data.Transactions = updated
	writeJSON(w, http.StatusOK, resp)
}
