package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/emulator/internal/store"
)

// NewRouter builds the emulator router serving both API surfaces: the broker
// under /api/v0 plus its unauthenticated download links, and the ledger under
// /budgets.
func NewRouter(st *store.Store, token string) chi.Router {
	broker := NewBrokerHandler(st)
	ledger := NewLedgerHandler(st)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Brokerage API.
	r.Route("/api/v0", func(r chi.Router) {
		r.Use(AuthMiddleware(token))

		r.Post("/history/exports", broker.CreateExport)
		r.Get("/history/exports", broker.ListExports)
		r.Get("/equity/account/info", broker.AccountInfo)
		r.Get("/equity/metadata/instruments", broker.Instruments)
		r.Get("/equity/portfolio", broker.Portfolio)
	})

	// Export downloads are pre-signed links, no auth.
	r.Get("/exports/{id}/download", broker.Download)

	// Ledger API.
	r.Route("/budgets", func(r chi.Router) {
		r.Use(AuthMiddleware(token))

		r.Get("/{budgetID}/payees", ledger.ListPayees)
		r.Get("/{budgetID}/accounts/{accountID}/transactions", ledger.ListTransactions)
		r.Post("/{budgetID}/transactions", ledger.CreateTransactions)
		r.Patch("/{budgetID}/transactions", ledger.UpdateTransactions)
	})

	// Health check endpoint.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
