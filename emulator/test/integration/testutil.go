// Package integration drives the real sync engine and API clients against
// the emulator.
package integration

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/emulator/internal/api"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/emulator/internal/store"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/t212"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/ynab"
)

const (
	testToken     = "test-token"
	testBudgetID  = "budget-1"
	testAccountID = "account-1"
)

// fixtureCSV is a deposit plus a 10-share buy of Apple at 100.00 EUR.
const fixtureCSV = `Action,Time,ISIN,Ticker,Name,No. of shares,Total,Currency (Total),Currency conversion fee,Notes,ID
Deposit,2024-05-01 09:00:00,,,,,100.00,EUR,,Bank transfer,dep-1
Market buy,2024-05-02 10:30:00,US0378331005,AAPL,Apple Inc.,10,100.00,EUR,,,buy-1
`

type testEnv struct {
	server *httptest.Server
	store  *store.Store
	source *t212.Client
	ledger *ynab.Client
}

// setupTestEnv starts an emulator on a temporary database, seeded with the
// fixture export and a live portfolio holding the bought shares at +5.00 EUR.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "emulator.db"))
	if err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	if err := st.SeedExportCSV(fixtureCSV); err != nil {
		t.Fatalf("Failed to seed export CSV: %v", err)
	}
	if err := st.SeedAccount(t212.AccountInfo{ID: 1, CurrencyCode: "EUR"}); err != nil {
		t.Fatalf("Failed to seed account: %v", err)
	}
	if err := st.SeedInstruments([]t212.Instrument{
		{ISIN: "US0378331005", Ticker: "AAPL", Name: "Apple Inc.", ShortName: "Apple"},
	}); err != nil {
		t.Fatalf("Failed to seed instruments: %v", err)
	}
	if err := st.SeedPositions([]t212.OpenPosition{
		{Ticker: "AAPL", Quantity: json.Number("10"), PnL: json.Number("5.00")},
	}); err != nil {
		t.Fatalf("Failed to seed positions: %v", err)
	}

	server := httptest.NewServer(api.NewRouter(st, testToken))
	t.Cleanup(server.Close)

	source := t212.NewClient(t212.ClientConfig{
		BaseURL:      server.URL,
		Token:        testToken,
		PollDelay:    10 * time.Millisecond,
		PollAttempts: 5,
	})
	ledger := ynab.NewClient(ynab.ClientConfig{
		BaseURL: server.URL,
		Token:   testToken,
	})

	return &testEnv{server: server, store: st, source: source, ledger: ledger}
}

// findByPayee returns the first stored transaction with the given payee name.
func (e *testEnv) findByPayee(t *testing.T, payeeName string) (ynab.Transaction, bool) {
	t.Helper()

	txs, err := e.store.ListTransactions(testAccountID)
	if err != nil {
		t.Fatalf("Failed to list transactions: %v", err)
	}
	for _, tx := range txs {
		if tx.PayeeName == payeeName {
			return tx, true
		}
	}
	return ynab.Transaction{}, false
}
