// Package t212 provides a Trading212 API client and the parser that turns a
// CSV history export into typed transactions.
package t212

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action is the kind of a source transaction.
type Action int

const (
	ActionDeposit Action = iota
	ActionWithdrawal
	ActionMarketBuy
	ActionMarketSell
	ActionDividend
	ActionInterestOnCash
	ActionLendingInterest
	ActionCurrencyConversion
	ActionNewCardCost
)

var actionNames = map[Action]string{
	ActionDeposit:            "Deposit",
	ActionWithdrawal:         "Withdrawal",
	ActionMarketBuy:          "Market buy",
	ActionMarketSell:         "Market sell",
	ActionDividend:           "Dividend",
	ActionInterestOnCash:     "Interest on cash",
	ActionLendingInterest:    "Lending interest",
	ActionCurrencyConversion: "Currency conversion",
	ActionNewCardCost:        "New card cost",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Transaction is a validated, normalized export row. Immutable once parsed.
// Money fields are ledger milliunits, share counts 1e-10 share units.
// Optional fixed-point fields are nil when the source column was empty.
type Transaction struct {
	Action Action
	Time   time.Time // UTC
	ID     string    // unique per source transaction

	ISIN   string
	Ticker string
	Name   string

	ShareCount *int64

	Total         int64 // always present
	TotalCurrency string

	Result         *int64
	WithholdingTax *int64

	ConversionFromAmount   *int64
	ConversionFromCurrency string
	ConversionToAmount     *int64
	ConversionToCurrency   string
	ConversionFee          *int64

	Notes string
}

// ValidationError reports the first invalid or missing required field of an
// export record. It is fatal: the run aborts and the operator sees it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid export record: field %q: %s", e.Field, e.Reason)
}

// TimeoutError reports an export that never became ready within the polling
// budget.
type TimeoutError struct {
	ReportID int64
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("export %d not ready after %d polls", e.ReportID, e.Attempts)
}

// Instrument describes one security of the instrument catalog.
type Instrument struct {
	ISIN      string `json:"isin"`
	Ticker    string `json:"ticker"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

// OpenPosition is one live open position of the portfolio snapshot. Quantity
// and PnL stay json.Number so the fixed-point codec parses the exact decimal
// literal the API sent.
type OpenPosition struct {
	Ticker   string      `json:"ticker"`
	Quantity json.Number `json:"quantity"`
	PnL      json.Number `json:"ppl"`
}

// AccountInfo is the response from the account metadata endpoint.
type AccountInfo struct {
	ID           int64  `json:"id"`
	CurrencyCode string `json:"currencyCode"`
}

// exportRequest is the body of an export request. All sections are included;
// the classifier decides what to keep.
type exportRequest struct {
	DataIncluded exportDataIncluded `json:"dataIncluded"`
	TimeFrom     string             `json:"timeFrom"`
	TimeTo       string             `json:"timeTo"`
}

type exportDataIncluded struct {
	IncludeDividends    bool `json:"includeDividends"`
	IncludeInterest     bool `json:"includeInterest"`
	IncludeOrders       bool `json:"includeOrders"`
	IncludeTransactions bool `json:"includeTransactions"`
}

type exportResponse struct {
	ReportID int64 `json:"reportId"`
}

// ExportStatus values reported for a requested export.
const (
	ExportStatusQueued     = "Queued"
	ExportStatusProcessing = "Processing"
	ExportStatusFinished   = "Finished"
	ExportStatusFailed     = "Failed"
)

// ExportReport is one entry of the export list endpoint.
type ExportReport struct {
	ReportID     int64  `json:"reportId"`
	Status       string `json:"status"`
	DownloadLink string `json:"downloadLink"`
}
