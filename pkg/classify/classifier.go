package classify

import (
	"fmt"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/importid"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/memo"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/t212"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/ynab"
)

// Skip reasons.
const (
	SkipDuplicate     = "duplicate"
	SkipCrossCurrency = "cross-currency"
	SkipConversion    = "unrepresentable-conversion"
)

// Skip records a transaction that produced no ledger entry. Skips are data,
// not errors: the run continues and the report surfaces them to the caller.
type Skip struct {
	TransactionID string
	Action        t212.Action
	Reason        string
	Detail        string
}

// Report collects the skips of one classification pass.
type Report struct {
	Skips []Skip
}

// Count returns the number of skipped transactions.
func (r *Report) Count() int { return len(r.Skips) }

// Config configures a Classifier with the ledger state it depends on.
type Config struct {
	AccountID  string
	Currency   string            // account base currency
	Payees     []ynab.Payee      // existing payees, for exact-name resolution
	ImportIDs  map[string]bool   // import ids already present in the ledger
	Categories Categories        // category ids from the settings bundle
	Mapping    *Mapping          // presentation overrides; nil means defaults
}

// Classifier turns normalized transactions into ledger entries, skipping
// duplicates and entries the account currency cannot represent.
type Classifier struct {
	accountID string
	currency  string
	payees    map[string]string
	existing  map[string]bool
	cats      Categories
	mapping   *Mapping
}

// New creates a Classifier. Category ids from the mapping file win over the
// settings bundle where both are set.
func New(cfg Config) *Classifier {
	mapping := cfg.Mapping
	if mapping == nil {
		mapping = DefaultMapping()
	}

	cats := cfg.Categories
	if mapping.Categories.Interest != "" {
		cats.Interest = mapping.Categories.Interest
	}
	if mapping.Categories.Stocks != "" {
		cats.Stocks = mapping.Categories.Stocks
	}
	if mapping.Categories.Fees != "" {
		cats.Fees = mapping.Categories.Fees
	}

	payees := make(map[string]string, len(cfg.Payees))
	for _, p := range cfg.Payees {
		payees[p.Name] = p.ID
	}

	existing := cfg.ImportIDs
	if existing == nil {
		existing = map[string]bool{}
	}

	return &Classifier{
		accountID: cfg.AccountID,
		currency:  cfg.Currency,
		payees:    payees,
		existing:  existing,
		cats:      cats,
		mapping:   mapping,
	}
}

// All classifies a full export, accumulating entries and the skip report.
func (c *Classifier) All(txs []t212.Transaction) ([]ynab.Transaction, *Report) {
	var entries []ynab.Transaction
	report := &Report{}

	for _, tx := range txs {
		out, skip := c.Classify(tx)
		if skip != nil {
			report.Skips = append(report.Skips, *skip)
			continue
		}
		entries = append(entries, out...)
	}
	return entries, report
}

// Classify maps one transaction onto zero or more ledger entries. A nil skip
// and empty slice never occur together: every transaction either produces
// entries or a skip.
func (c *Classifier) Classify(tx t212.Transaction) ([]ynab.Transaction, *Skip) {
	id := importid.Make(importid.SourceSeed(tx.Time, tx.ID))

	if c.existing[id] {
		return nil, &Skip{TransactionID: tx.ID, Action: tx.Action, Reason: SkipDuplicate}
	}
	if tx.TotalCurrency != "" && tx.TotalCurrency != c.currency {
		return nil, &Skip{
			TransactionID: tx.ID,
			Action:        tx.Action,
			Reason:        SkipCrossCurrency,
			Detail:        fmt.Sprintf("total in %s, account in %s", tx.TotalCurrency, c.currency),
		}
	}

	base := ynab.Transaction{
		AccountID: c.accountID,
		Date:      tx.Time.UTC().Format("2006-01-02"),
		Cleared:   ynab.Cleared,
		ImportID:  id,
	}

	switch tx.Action {
	case t212.ActionDeposit, t212.ActionWithdrawal:
		base.Amount = tx.Total
		base.PayeeName = tx.Action.String()
		base.Memo = tx.Notes
		return []ynab.Transaction{base}, nil

	case t212.ActionInterestOnCash, t212.ActionLendingInterest:
		base.Amount = tx.Total
		c.resolvePayee(&base, c.mapping.Payees.Interest)
		base.CategoryID = c.cats.Interest
		base.FlagColor = c.mapping.Flags.Interest
		// Interest on cash is auto-approved; lending interest is reviewed by
		// hand and keeps a memo naming it.
		if tx.Action == t212.ActionInterestOnCash {
			base.Approved = true
		} else {
			base.Memo = "Lending interest"
		}
		return []ynab.Transaction{base}, nil

	case t212.ActionMarketBuy, t212.ActionMarketSell:
		return c.classifyTrade(tx, base), nil

	case t212.ActionDividend:
		base.Amount = tx.Total
		c.resolvePayee(&base, "Stock: "+tx.Name)
		base.Memo = memo.FormatDividend(shareCount(tx), tx.Ticker, tx.ISIN)
		base.CategoryID = c.cats.Stocks
		base.Approved = true
		return []ynab.Transaction{base}, nil

	case t212.ActionCurrencyConversion:
		return c.classifyConversion(tx, base)

	case t212.ActionNewCardCost:
		base.Amount = tx.Total
		c.resolvePayee(&base, c.mapping.Payees.Broker)
		base.Memo = "New card cost"
		base.CategoryID = c.cats.Fees
		return []ynab.Transaction{base}, nil
	}

	// parseRecord only emits the nine kinds above.
	return nil, &Skip{TransactionID: tx.ID, Action: tx.Action, Reason: "unhandled-action"}
}

// classifyTrade maps a market buy or sell: negative amounts for buys,
// positive for sells, with the position memo the reconciler replays. A
// positive currency-conversion fee splits the entry into a stock leg and a
// fee leg that sum to the total.
func (c *Classifier) classifyTrade(tx t212.Transaction, base ynab.Transaction) []ynab.Transaction {
	amount := tx.Total
	if amount < 0 {
		amount = -amount
	}
	if tx.Action == t212.ActionMarketBuy {
		amount = -amount
	}

	base.Amount = amount
	c.resolvePayee(&base, "Stock: "+tx.Name)
	base.Memo = memo.Format(shareCount(tx), tx.Ticker, tx.ISIN)
	base.CategoryID = c.cats.Stocks
	base.Approved = true

	if tx.ConversionFee != nil && *tx.ConversionFee > 0 {
		fee := *tx.ConversionFee
		base.SubTransactions = []ynab.SubTransaction{
			{
				// Stock leg: the fee added back, so the leg carries the pure
				// security cost.
				Amount:     amount + fee,
				Memo:       base.Memo,
				CategoryID: c.cats.Stocks,
			},
			{
				Amount:     -fee,
				Memo:       "Currency conversion fee",
				PayeeName:  c.mapping.Payees.Fees,
				CategoryID: c.cats.Fees,
			},
		}
	}
	return []ynab.Transaction{base}
}

// classifyConversion maps a currency conversion. Only a conversion with one
// leg in the account currency is representable; the matching leg decides the
// amount's direction.
func (c *Classifier) classifyConversion(tx t212.Transaction, base ynab.Transaction) ([]ynab.Transaction, *Skip) {
	switch {
	case tx.ConversionFromCurrency == c.currency && tx.ConversionFromAmount != nil:
		base.Amount = -*tx.ConversionFromAmount
	case tx.ConversionToCurrency == c.currency && tx.ConversionToAmount != nil:
		base.Amount = *tx.ConversionToAmount
	default:
		return nil, &Skip{
			TransactionID: tx.ID,
			Action:        tx.Action,
			Reason:        SkipConversion,
			Detail: fmt.Sprintf("%s -> %s, account in %s",
				tx.ConversionFromCurrency, tx.ConversionToCurrency, c.currency),
		}
	}

	c.resolvePayee(&base, c.mapping.Payees.Conversion)
	base.Memo = tx.Notes
	return []ynab.Transaction{base}, nil
}

// resolvePayee sets the payee name and, when an existing payee matches it
// exactly, its id as well.
func (c *Classifier) resolvePayee(entry *ynab.Transaction, name string) {
	entry.PayeeName = name
	if id, ok := c.payees[name]; ok {
		entry.PayeeID = id
	}
}

func shareCount(tx t212.Transaction) int64 {
	if tx.ShareCount == nil {
		return 0
	}
	return *tx.ShareCount
}
