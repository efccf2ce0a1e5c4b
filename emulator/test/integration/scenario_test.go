package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/engine"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/ynab"
)

func testOptions(dryRun bool) engine.Options {
	return engine.Options{
		BudgetID:  testBudgetID,
		AccountID: testAccountID,
		From:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Today:     "2024-06-01",
		DryRun:    dryRun,
	}
}

func TestSyncScenario(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	// First run: deposit, buy and the synthetic holdings entry.
	result, err := engine.Run(ctx, env.source, env.ledger, testOptions(false))
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if result.Parsed != 2 {
		t.Errorf("Parsed = %d, want 2", result.Parsed)
	}
	if result.Created != 3 {
		t.Errorf("Created = %d, want 3", result.Created)
	}
	if result.Updated != 0 {
		t.Errorf("Updated = %d, want 0", result.Updated)
	}
	if result.Report.Count() != 0 {
		t.Errorf("Skipped = %d, want 0", result.Report.Count())
	}

	txs, err := env.store.ListTransactions(testAccountID)
	if err != nil {
		t.Fatalf("Failed to list transactions: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("Stored transactions = %d, want 3", len(txs))
	}

	deposit, ok := env.findByPayee(t, "Deposit")
	if !ok {
		t.Fatal("Deposit entry not stored")
	}
	if deposit.Amount != 100000 {
		t.Errorf("Deposit amount = %d, want 100000", deposit.Amount)
	}
	if deposit.Cleared != ynab.Cleared {
		t.Errorf("Deposit cleared = %q, want %q", deposit.Cleared, ynab.Cleared)
	}

	var buy, holding ynab.Transaction
	for _, tx := range txs {
		if tx.PayeeName != "Stock: Apple Inc." {
			continue
		}
		if tx.Cleared == ynab.Uncleared {
			holding = tx
		} else {
			buy = tx
		}
	}
	if buy.ID == "" {
		t.Fatal("Buy entry not stored")
	}
	if buy.Amount != -100000 {
		t.Errorf("Buy amount = %d, want -100000", buy.Amount)
	}
	if buy.Memo != "10xAAPL[US0378331005]" {
		t.Errorf("Buy memo = %q, want %q", buy.Memo, "10xAAPL[US0378331005]")
	}

	if holding.ID == "" {
		t.Fatal("Holdings entry not stored")
	}
	// Cost basis 100.00 plus the full live P&L of 5.00.
	if holding.Amount != 105000 {
		t.Errorf("Holdings amount = %d, want 105000", holding.Amount)
	}
	if holding.Date != "2024-06-01" {
		t.Errorf("Holdings date = %q, want 2024-06-01", holding.Date)
	}
	if holding.Memo != "10xAAPL[US0378331005]" {
		t.Errorf("Holdings memo = %q, want %q", holding.Memo, "10xAAPL[US0378331005]")
	}

	// Payees materialize from transaction names.
	payees, err := env.store.ListPayees()
	if err != nil {
		t.Fatalf("Failed to list payees: %v", err)
	}
	names := make(map[string]bool, len(payees))
	for _, p := range payees {
		names[p.Name] = true
	}
	if !names["Deposit"] || !names["Stock: Apple Inc."] {
		t.Errorf("Payees missing after create, got %v", names)
	}

	// Second run: both export rows deduplicate, the holdings entry refreshes
	// in place.
	result, err = engine.Run(ctx, env.source, env.ledger, testOptions(false))
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if result.Created != 0 {
		t.Errorf("Second run Created = %d, want 0", result.Created)
	}
	if result.Updated != 1 {
		t.Errorf("Second run Updated = %d, want 1", result.Updated)
	}
	if result.Report.Count() != 2 {
		t.Errorf("Second run Skipped = %d, want 2", result.Report.Count())
	}

	txs, err = env.store.ListTransactions(testAccountID)
	if err != nil {
		t.Fatalf("Failed to list transactions: %v", err)
	}
	if len(txs) != 3 {
		t.Errorf("Stored transactions after rerun = %d, want 3", len(txs))
	}
	for _, tx := range txs {
		if tx.ID == holding.ID && tx.Amount != 105000 {
			t.Errorf("Holdings amount after rerun = %d, want 105000", tx.Amount)
		}
	}
}

func TestVersionConflictAbortsRun(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	// A ledger entry from an older import-id scheme blocks the run.
	_, err := env.store.CreateTransactions([]ynab.Transaction{{
		AccountID: testAccountID,
		Date:      "2024-01-01",
		Amount:    1000,
		PayeeName: "Stock: Old Corp.",
		Cleared:   ynab.Cleared,
		ImportID:  "T212-v13:00112233445566778899aabbcc",
	}})
	if err != nil {
		t.Fatalf("Failed to seed old entry: %v", err)
	}

	_, err = engine.Run(ctx, env.source, env.ledger, testOptions(false))
	var conflict *engine.VersionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Run error = %v, want VersionConflictError", err)
	}

	txs, err := env.store.ListTransactions(testAccountID)
	if err != nil {
		t.Fatalf("Failed to list transactions: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("Stored transactions = %d, want the seeded entry only", len(txs))
	}
}

func TestDryRunLeavesLedgerUntouched(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	result, err := engine.Run(ctx, env.source, env.ledger, testOptions(true))
	if err != nil {
		t.Fatalf("Dry run failed: %v", err)
	}
	if result.Created != 3 {
		t.Errorf("Created = %d, want 3", result.Created)
	}

	txs, err := env.store.ListTransactions(testAccountID)
	if err != nil {
		t.Fatalf("Failed to list transactions: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("Stored transactions = %d, want 0 after dry run", len(txs))
	}
}
