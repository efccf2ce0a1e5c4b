package t212

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/money"
)

// Export column names. The reader maps columns by header, so column order and
// extra columns do not matter.
const (
	colAction         = "Action"
	colTime           = "Time"
	colISIN           = "ISIN"
	colTicker         = "Ticker"
	colName           = "Name"
	colShares         = "No. of shares"
	colResult         = "Result"
	colTotal          = "Total"
	colTotalCurrency  = "Currency (Total)"
	colWithholdingTax = "Withholding tax"
	colConvFrom       = "Currency conversion from amount"
	colConvFromCur    = "Currency (Currency conversion from amount)"
	colConvTo         = "Currency conversion to amount"
	colConvToCur      = "Currency (Currency conversion to amount)"
	colConvFee        = "Currency conversion fee"
	colNotes          = "Notes"
	colID             = "ID"
)

// timeLayout is the timestamp format of the export file, always UTC.
const timeLayout = "2006-01-02 15:04:05"

// actionsByLabel maps export action strings onto kinds. Dividend rows carry a
// parenthesized subtype ("Dividend (Dividend)", "Dividend (Ordinary)") and
// are matched by prefix instead.
var actionsByLabel = map[string]Action{
	"Deposit":             ActionDeposit,
	"Withdrawal":          ActionWithdrawal,
	"Market buy":          ActionMarketBuy,
	"Market sell":         ActionMarketSell,
	"Dividend":            ActionDividend,
	"Interest on cash":    ActionInterestOnCash,
	"Lending interest":    ActionLendingInterest,
	"Currency conversion": ActionCurrencyConversion,
	"New card cost":       ActionNewCardCost,
}

func parseAction(label string) (Action, bool) {
	if a, ok := actionsByLabel[label]; ok {
		return a, true
	}
	if strings.HasPrefix(label, "Dividend") {
		return ActionDividend, true
	}
	return 0, false
}

// ReadExport parses a raw CSV export into normalized transactions. The export
// is bounded by one year of trading activity and is fully materialized.
func ReadExport(r io.Reader) ([]Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	var txs []Transaction
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		tx, err := parseRecord(cols, record)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// parseRecord validates and normalizes one export row. Action, Time, ID and
// Total are required; everything else maps to its zero value (or nil) when
// the source field is empty.
func parseRecord(cols map[string]int, record []string) (Transaction, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var tx Transaction

	rawAction := field(colAction)
	if rawAction == "" {
		return tx, &ValidationError{Field: colAction, Reason: "missing"}
	}
	action, ok := parseAction(rawAction)
	if !ok {
		return tx, &ValidationError{Field: colAction, Reason: fmt.Sprintf("unrecognized action %q", rawAction)}
	}
	tx.Action = action

	rawTime := field(colTime)
	if rawTime == "" {
		return tx, &ValidationError{Field: colTime, Reason: "missing"}
	}
	ts, err := time.ParseInLocation(timeLayout, rawTime, time.UTC)
	if err != nil {
		return tx, &ValidationError{Field: colTime, Reason: fmt.Sprintf("bad timestamp %q", rawTime)}
	}
	tx.Time = ts

	tx.ID = field(colID)
	if tx.ID == "" {
		return tx, &ValidationError{Field: colID, Reason: "missing"}
	}

	rawTotal := field(colTotal)
	if rawTotal == "" {
		return tx, &ValidationError{Field: colTotal, Reason: "missing"}
	}
	tx.Total, err = money.ParseMilliunits(rawTotal)
	if err != nil {
		return tx, &ValidationError{Field: colTotal, Reason: err.Error()}
	}
	tx.TotalCurrency = field(colTotalCurrency)

	tx.ISIN = field(colISIN)
	tx.Ticker = field(colTicker)
	tx.Name = field(colName)
	tx.Notes = field(colNotes)
	tx.ConversionFromCurrency = field(colConvFromCur)
	tx.ConversionToCurrency = field(colConvToCur)

	if tx.ShareCount, err = optionalShares(field(colShares)); err != nil {
		return tx, &ValidationError{Field: colShares, Reason: err.Error()}
	}
	if tx.Result, err = optionalMoney(field(colResult)); err != nil {
		return tx, &ValidationError{Field: colResult, Reason: err.Error()}
	}
	if tx.WithholdingTax, err = optionalMoney(field(colWithholdingTax)); err != nil {
		return tx, &ValidationError{Field: colWithholdingTax, Reason: err.Error()}
	}
	if tx.ConversionFromAmount, err = optionalMoney(field(colConvFrom)); err != nil {
		return tx, &ValidationError{Field: colConvFrom, Reason: err.Error()}
	}
	if tx.ConversionToAmount, err = optionalMoney(field(colConvTo)); err != nil {
		return tx, &ValidationError{Field: colConvTo, Reason: err.Error()}
	}
	if tx.ConversionFee, err = optionalMoney(field(colConvFee)); err != nil {
		return tx, &ValidationError{Field: colConvFee, Reason: err.Error()}
	}

	return tx, nil
}

func optionalMoney(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := money.ParseMilliunits(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalShares(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := money.ParseShareUnits(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
