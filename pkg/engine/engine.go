// Package engine sequences one sync run: export, concurrent reads,
// version-consistency gate, classification, position reconciliation, and the
// batched ledger mutations.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/classify"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/importid"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/money"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/position"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/t212"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/ynab"
)

// ExportSource is the brokerage side: the transaction export flow plus the
// account, catalog and portfolio reads.
type ExportSource interface {
	RequestExport(ctx context.Context, from, to time.Time) (int64, error)
	WaitForExport(ctx context.Context, reportID int64) (string, error)
	Download(ctx context.Context, link string) (io.ReadCloser, error)
	AccountCurrency(ctx context.Context) (string, error)
	Instruments(ctx context.Context) ([]t212.Instrument, error)
	OpenPositions(ctx context.Context) ([]t212.OpenPosition, error)
}

// Ledger is the budgeting side: payees, existing entries and the batched
// mutation calls.
type Ledger interface {
	Payees(ctx context.Context, budgetID string) ([]ynab.Payee, error)
	Transactions(ctx context.Context, budgetID, accountID string) ([]ynab.Transaction, error)
	CreateTransactions(ctx context.Context, budgetID string, txs []ynab.Transaction) error
	UpdateTransactions(ctx context.Context, budgetID string, txs []ynab.Transaction) error
}

// VersionConflictError reports a ledger entry generated under a different
// import-identity version. Proceeding would duplicate previously imported
// entries under the new scheme, so the run refuses to start mutating; the
// operator clears the old entries by hand.
type VersionConflictError struct {
	ImportID string
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("ledger entry %q carries a foreign import-id version (current is %s); clear old entries before re-running",
		e.ImportID, importid.Prefix())
}

// Options configures one run.
type Options struct {
	BudgetID   string
	AccountID  string
	Categories classify.Categories
	Mapping    *classify.Mapping

	From time.Time
	To   time.Time

	// Today overrides the date of synthetic holdings entries. Empty means
	// the current UTC date.
	Today string

	// DryRun classifies and reconciles but sends no mutation.
	DryRun bool
}

// Result summarizes one run.
type Result struct {
	Parsed  int
	Created int
	Updated int
	Report  *classify.Report
}

// Run executes one sync run. All classification happens in memory before any
// mutation is sent; each mutation is a single best-effort batch.
func Run(ctx context.Context, src ExportSource, ledger Ledger, opts Options) (*Result, error) {
	today := opts.Today
	if today == "" {
		today = time.Now().UTC().Format("2006-01-02")
	}

	txs, err := fetchExport(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	slog.Info("Parsed export", "transactions", len(txs))

	// The five reads are independent; issue them concurrently and join.
	var (
		currency    string
		instruments []t212.Instrument
		openPos     []t212.OpenPosition
		payees      []ynab.Payee
		existing    []ynab.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		currency, err = src.AccountCurrency(gctx)
		return err
	})
	g.Go(func() (err error) {
		instruments, err = src.Instruments(gctx)
		return err
	})
	g.Go(func() (err error) {
		openPos, err = src.OpenPositions(gctx)
		return err
	})
	g.Go(func() (err error) {
		payees, err = ledger.Payees(gctx, opts.BudgetID)
		return err
	})
	g.Go(func() (err error) {
		existing, err = ledger.Transactions(gctx, opts.BudgetID, opts.AccountID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Version gate before any classification: a mixed-version ledger makes
	// import-id deduplication unsound.
	importIDs := make(map[string]bool, len(existing))
	for _, tx := range existing {
		if importid.IsForeign(tx.ImportID) {
			return nil, &VersionConflictError{ImportID: tx.ImportID}
		}
		if tx.ImportID != "" {
			importIDs[tx.ImportID] = true
		}
	}

	classifier := classify.New(classify.Config{
		AccountID:  opts.AccountID,
		Currency:   currency,
		Payees:     payees,
		ImportIDs:  importIDs,
		Categories: opts.Categories,
		Mapping:    opts.Mapping,
	})
	entries, report := classifier.All(txs)
	for _, skip := range report.Skips {
		slog.Info("Skipped transaction",
			"id", skip.TransactionID, "action", skip.Action.String(),
			"reason", skip.Reason, "detail", skip.Detail)
	}

	snapshot, err := buildSnapshot(instruments, openPos)
	if err != nil {
		return nil, err
	}

	holdingCreates, updates, err := position.Reconcile(opts.AccountID, existing, entries, snapshot, today)
	if err != nil {
		return nil, err
	}

	toAdd := append(entries, holdingCreates...)
	result := &Result{
		Parsed:  len(txs),
		Created: len(toAdd),
		Updated: len(updates),
		Report:  report,
	}

	if opts.DryRun {
		slog.Info("Dry run, skipping ledger mutations",
			"would_create", len(toAdd), "would_update", len(updates))
		return result, nil
	}

	if len(toAdd) > 0 {
		if err := ledger.CreateTransactions(ctx, opts.BudgetID, toAdd); err != nil {
			return nil, fmt.Errorf("failed to create ledger entries: %w", err)
		}
	}
	if len(updates) > 0 {
		if err := ledger.UpdateTransactions(ctx, opts.BudgetID, updates); err != nil {
			return nil, fmt.Errorf("failed to update ledger entries: %w", err)
		}
	}

	slog.Info("Sync completed", "created", len(toAdd), "updated", len(updates), "skipped", report.Count())
	return result, nil
}

// fetchExport runs the request/poll/download flow and parses the CSV.
func fetchExport(ctx context.Context, src ExportSource, opts Options) ([]t212.Transaction, error) {
	reportID, err := src.RequestExport(ctx, opts.From, opts.To)
	if err != nil {
		return nil, err
	}
	slog.Debug("Requested export", "report_id", reportID)

	link, err := src.WaitForExport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	body, err := src.Download(ctx, link)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return t212.ReadExport(body)
}

// buildSnapshot converts the broker's decimal literals into fixed-point
// units.
func buildSnapshot(instruments []t212.Instrument, openPos []t212.OpenPosition) (position.Snapshot, error) {
	insts := make([]position.Instrument, 0, len(instruments))
	for _, inst := range instruments {
		insts = append(insts, position.Instrument{
			ISIN:      inst.ISIN,
			Ticker:    inst.Ticker,
			Name:      inst.Name,
			ShortName: inst.ShortName,
		})
	}

	positions := make([]position.OpenPosition, 0, len(openPos))
	for _, pos := range openPos {
		quantity, err := money.ParseShareUnits(pos.Quantity.String())
		if err != nil {
			return position.Snapshot{}, fmt.Errorf("open position %s quantity: %w", pos.Ticker, err)
		}
		pnl, err := money.ParseMilliunits(pos.PnL.String())
		if err != nil {
			return position.Snapshot{}, fmt.Errorf("open position %s ppl: %w", pos.Ticker, err)
		}
		positions = append(positions, position.OpenPosition{
			Ticker:   pos.Ticker,
			Quantity: quantity,
			PnL:      pnl,
		})
	}

	return position.NewSnapshot(insts, positions), nil
}
