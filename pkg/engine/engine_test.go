package engine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/importid"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/t212"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/ynab"
)

const exportHeader = "Action,Time,ISIN,Ticker,Name,No. of shares,Price / share,Currency (Price / share),Exchange rate,Result,Currency (Result),Total,Currency (Total),Withholding tax,Currency (Withholding tax),Notes,ID,Currency conversion from amount,Currency (Currency conversion from amount),Currency conversion to amount,Currency (Currency conversion to amount),Currency conversion fee\n"

type fakeSource struct {
	csv         string
	currency    string
	instruments []t212.Instrument
	positions   []t212.OpenPosition
}

func (f *fakeSource) RequestExport(ctx context.Context, from, to time.Time) (int64, error) {
	return 42, nil
}

func (f *fakeSource) WaitForExport(ctx context.Context, reportID int64) (string, error) {
	return "link-42", nil
}

func (f *fakeSource) Download(ctx context.Context, link string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.csv)), nil
}

func (f *fakeSource) AccountCurrency(ctx context.Context) (string, error) {
	return f.currency, nil
}

func (f *fakeSource) Instruments(ctx context.Context) ([]t212.Instrument, error) {
	return f.instruments, nil
}

func (f *fakeSource) OpenPositions(ctx context.Context) ([]t212.OpenPosition, error) {
	return f.positions, nil
}

type fakeLedger struct {
	payees   []ynab.Payee
	existing []ynab.Transaction
	created  [][]ynab.Transaction
	updated  [][]ynab.Transaction
}

func (f *fakeLedger) Payees(ctx context.Context, budgetID string) ([]ynab.Payee, error) {
	return f.payees, nil
}

func (f *fakeLedger) Transactions(ctx context.Context, budgetID, accountID string) ([]ynab.Transaction, error) {
	return f.existing, nil
}

func (f *fakeLedger) CreateTransactions(ctx context.Context, budgetID string, txs []ynab.Transaction) error {
	f.created = append(f.created, txs)
	return nil
}

func (f *fakeLedger) UpdateTransactions(ctx context.Context, budgetID string, txs []ynab.Transaction) error {
	f.updated = append(f.updated, txs)
	return nil
}

func testOptions() Options {
	return Options{
		BudgetID:  "b1",
		AccountID: "acct-1",
		From:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Today:     "2024-06-01",
	}
}

func TestRunDepositAndBuy(t *testing.T) {
	src := &fakeSource{
		csv: exportHeader +
			"Deposit,2024-01-15 10:30:00,,,,,,,,,,100.00,EUR,,,,dep-1,,,,,\n" +
			"Market buy,2024-02-01 14:00:05,US0378331005,AAPL,Apple Inc,10,,,,,,1000.00,EUR,,,,buy-1,,,,,\n",
		currency:    "EUR",
		instruments: []t212.Instrument{{ISIN: "US0378331005", Ticker: "AAPL", Name: "Apple Inc"}},
		positions:   []t212.OpenPosition{{Ticker: "AAPL", Quantity: json.Number("10"), PnL: json.Number("50.00")}},
	}
	ledger := &fakeLedger{}

	result, err := Run(context.Background(), src, ledger, testOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Parsed != 2 {
		t.Errorf("Parsed = %d", result.Parsed)
	}
	if len(ledger.created) != 1 {
		t.Fatalf("create batches = %d, expected 1", len(ledger.created))
	}

	batch := ledger.created[0]
	if len(batch) != 3 {
		t.Fatalf("created %d entries, expected deposit + buy + holdings value", len(batch))
	}

	deposit := batch[0]
	if deposit.Amount != 100000 || deposit.PayeeName != "Deposit" || deposit.Cleared != ynab.Cleared {
		t.Errorf("deposit entry = %+v", deposit)
	}

	buy := batch[1]
	if buy.Amount != -1000000 || buy.Memo != "10xAAPL[US0378331005]" {
		t.Errorf("buy entry = %+v", buy)
	}

	holding := batch[2]
	if holding.Amount != 1050000 {
		t.Errorf("holdings value = %d, expected basis 1000000 + P&L 50000", holding.Amount)
	}
	if holding.Cleared != ynab.Uncleared || holding.Date != "2024-06-01" {
		t.Errorf("holdings entry = %+v", holding)
	}

	if len(ledger.updated) != 0 {
		t.Errorf("update batches = %d, expected 0", len(ledger.updated))
	}
}

func TestRunVersionConflict(t *testing.T) {
	src := &fakeSource{
		csv:      exportHeader + "Deposit,2024-01-15 10:30:00,,,,,,,,,,100.00,EUR,,,,dep-1,,,,,\n",
		currency: "EUR",
	}
	ledger := &fakeLedger{
		existing: []ynab.Transaction{{ID: "old-1", ImportID: "T212-v13:deadbeef"}},
	}

	_, err := Run(context.Background(), src, ledger, testOptions())
	var verr *VersionConflictError
	if !errors.As(err, &verr) {
		t.Fatalf("expected VersionConflictError, got %v", err)
	}
	if len(ledger.created) != 0 || len(ledger.updated) != 0 {
		t.Error("version conflict must abort before any mutation")
	}
}

func TestRunIdempotentRerun(t *testing.T) {
	tx := t212.Transaction{
		Time: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	src := &fakeSource{
		csv:      exportHeader + "Deposit,2024-01-15 10:30:00,,,,,,,,,,100.00,EUR,,,,dep-1,,,,,\n",
		currency: "EUR",
	}
	ledger := &fakeLedger{
		existing: []ynab.Transaction{{
			ID:       "led-1",
			ImportID: importid.Make(importid.SourceSeed(tx.Time, "dep-1")),
		}},
	}

	result, err := Run(context.Background(), src, ledger, testOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ledger.created) != 0 {
		t.Errorf("re-run created %d batches, expected 0", len(ledger.created))
	}
	if result.Report.Count() != 1 {
		t.Errorf("skip report count = %d, expected 1 duplicate", result.Report.Count())
	}
}

func TestRunAlienConversionCompletes(t *testing.T) {
	src := &fakeSource{
		csv: exportHeader +
			"Currency conversion,2024-04-01 08:00:00,,,,,,,,,,0.00,,,,,conv-1,100.00,USD,85.00,GBP,\n",
		currency: "EUR",
	}
	ledger := &fakeLedger{}

	result, err := Run(context.Background(), src, ledger, testOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ledger.created) != 0 || len(ledger.updated) != 0 {
		t.Error("unrepresentable conversion must produce no entries")
	}
	if result.Report.Count() != 1 {
		t.Errorf("skip report count = %d", result.Report.Count())
	}
}

func TestRunDryRun(t *testing.T) {
	src := &fakeSource{
		csv:      exportHeader + "Deposit,2024-01-15 10:30:00,,,,,,,,,,100.00,EUR,,,,dep-1,,,,,\n",
		currency: "EUR",
	}
	ledger := &fakeLedger{}

	opts := testOptions()
	opts.DryRun = true
	result, err := Run(context.Background(), src, ledger, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Created != 1 {
		t.Errorf("Created = %d", result.Created)
	}
	if len(ledger.created) != 0 || len(ledger.updated) != 0 {
		t.Error("dry run must not mutate the ledger")
	}
}
