package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/classify"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/config"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/db"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/engine"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/importid"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/t212"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/ynab"
)

var (
	syncDays int
	dryRun   bool
)

// syncCmd represents the sync command.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync Trading212 transactions to YNAB",
	Long: `Sync transactions from the Trading212 API to the YNAB ledger.

This command:
1. Requests and downloads a CSV export of the account history
2. Classifies each transaction into idempotent ledger entries
3. Replays stock entries to rebuild per-security positions
4. Creates or updates one "current holdings value" entry per security
5. Records run statistics in SQLite

Example:
  t212-sync sync --days 365
  t212-sync sync --days 30 --dry-run`,
	Run: runSync,
}

func init() {
	// Flags
	syncCmd.Flags().IntVar(&syncDays, "days", 365, "How many days of history to export")
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Dry run mode (no ledger mutations)")
}

func runSync(cmd *cobra.Command, args []string) {
	slog.Info("Starting sync", "days", syncDays, "dry_run", dryRun)
	startedAt := time.Now()

	// Load configuration
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	// Validate required fields
	if err := cfg.Validate(
		"t212.token",
		"t212.apiUrl",
		"ynab.token",
		"ynab.budgetId",
		"ynab.accountId",
	); err != nil {
		exitOnError(err, "invalid configuration")
	}

	// Load the optional presentation mapping
	mapping, err := classify.LoadMapping(cfg.MappingPath)
	exitOnError(err, "failed to load category mapping")

	// Initialize API clients
	source := t212.NewClient(t212.ClientConfig{
		BaseURL: cfg.Trading212.APIURL,
		Token:   cfg.Trading212.Token,
	})
	ledger := ynab.NewClient(ynab.ClientConfig{
		Token: cfg.YNAB.Token,
	})

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -syncDays)

	result, err := engine.Run(context.Background(), source, ledger, engine.Options{
		BudgetID:  cfg.YNAB.BudgetID,
		AccountID: cfg.YNAB.AccountID,
		Categories: classify.Categories{
			Interest: cfg.CategoryInterest,
			Stocks:   cfg.CategoryStocks,
			Fees:     cfg.CategoryFees,
		},
		Mapping: mapping,
		From:    from,
		To:      to,
		DryRun:  dryRun,
	})
	exitOnError(err, "sync failed")

	// Record run history
	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open sync database", "path", cfg.DBPath, "error", err)
	} else {
		defer conn.Close()
		history := db.NewHistory(conn)
		if err := history.RecordRun(db.RunRecord{
			StartedAt:     startedAt,
			FinishedAt:    time.Now(),
			Parsed:        result.Parsed,
			Created:       result.Created,
			Updated:       result.Updated,
			Skipped:       result.Report.Count(),
			ImportVersion: importid.Version,
			DryRun:        dryRun,
		}); err != nil {
			slog.Error("Failed to record sync run", "error", err)
		}
	}

	fmt.Println("\n=== Sync Result ===")
	fmt.Printf("Parsed transactions: %d\n", result.Parsed)
	fmt.Printf("Created entries:     %d\n", result.Created)
	fmt.Printf("Updated entries:     %d\n", result.Updated)
	fmt.Printf("Skipped:             %d\n", result.Report.Count())
	for _, skip := range result.Report.Skips {
		fmt.Printf("  - %s (%s): %s %s\n", skip.TransactionID, skip.Action, skip.Reason, skip.Detail)
	}
	fmt.Println()

	slog.Info("Sync completed",
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Report.Count(),
	)
}
