package t212

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const exportHeader = "Action,Time,ISIN,Ticker,Name,No. of shares,Price / share,Currency (Price / share),Exchange rate,Result,Currency (Result),Total,Currency (Total),Withholding tax,Currency (Withholding tax),Notes,ID,Currency conversion from amount,Currency (Currency conversion from amount),Currency conversion to amount,Currency (Currency conversion to amount),Currency conversion fee\n"

func TestReadExportDeposit(t *testing.T) {
	csv := exportHeader +
		"Deposit,2024-01-15 10:30:00,,,,,,,,,,100.00,EUR,,,Bank transfer,dep-1,,,,,\n"

	txs, err := ReadExport(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("parsed %d transactions, expected 1", len(txs))
	}

	tx := txs[0]
	if tx.Action != ActionDeposit {
		t.Errorf("Action = %v", tx.Action)
	}
	if want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC); !tx.Time.Equal(want) {
		t.Errorf("Time = %v, expected %v", tx.Time, want)
	}
	if tx.ID != "dep-1" {
		t.Errorf("ID = %q", tx.ID)
	}
	if tx.Total != 100000 {
		t.Errorf("Total = %d, expected 100000", tx.Total)
	}
	if tx.TotalCurrency != "EUR" {
		t.Errorf("TotalCurrency = %q", tx.TotalCurrency)
	}
	if tx.Notes != "Bank transfer" {
		t.Errorf("Notes = %q", tx.Notes)
	}
	if tx.ShareCount != nil || tx.Result != nil || tx.ConversionFee != nil {
		t.Error("empty optional fields should parse to nil")
	}
}

func TestReadExportMarketBuy(t *testing.T) {
	csv := exportHeader +
		"Market buy,2024-02-01 14:00:05,US0378331005,AAPL,Apple Inc,1.5,190.00,USD,1.08,,,285.00,EUR,,,,buy-1,,,,,0.43\n"

	txs, err := ReadExport(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}
	tx := txs[0]
	if tx.Action != ActionMarketBuy {
		t.Errorf("Action = %v", tx.Action)
	}
	if tx.ShareCount == nil || *tx.ShareCount != 15000000000 {
		t.Errorf("ShareCount = %v, expected 1.5 shares", tx.ShareCount)
	}
	if tx.ISIN != "US0378331005" || tx.Ticker != "AAPL" || tx.Name != "Apple Inc" {
		t.Errorf("security identity = %q/%q/%q", tx.ISIN, tx.Ticker, tx.Name)
	}
	if tx.ConversionFee == nil || *tx.ConversionFee != 430 {
		t.Errorf("ConversionFee = %v, expected 430", tx.ConversionFee)
	}
}

func TestReadExportDividendSubtype(t *testing.T) {
	csv := exportHeader +
		"Dividend (Ordinary),2024-03-01 09:00:00,US0378331005,AAPL,Apple Inc,1.5,,,,,,0.34,EUR,0.05,USD,,div-1,,,,,\n"

	txs, err := ReadExport(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}
	if txs[0].Action != ActionDividend {
		t.Errorf("Action = %v, expected Dividend", txs[0].Action)
	}
	if txs[0].WithholdingTax == nil || *txs[0].WithholdingTax != 50 {
		t.Errorf("WithholdingTax = %v", txs[0].WithholdingTax)
	}
}

func TestReadExportValidation(t *testing.T) {
	tests := []struct {
		name  string
		row   string
		field string
	}{
		{"unknown action", "Transfer,2024-01-15 10:30:00,,,,,,,,,,1.00,EUR,,,,x-1,,,,,", "Action"},
		{"missing time", "Deposit,,,,,,,,,,,1.00,EUR,,,,x-1,,,,,", "Time"},
		{"bad time", "Deposit,15/01/2024,,,,,,,,,,1.00,EUR,,,,x-1,,,,,", "Time"},
		{"missing id", "Deposit,2024-01-15 10:30:00,,,,,,,,,,1.00,EUR,,,,,,,,,", "ID"},
		{"missing total", "Deposit,2024-01-15 10:30:00,,,,,,,,,,,EUR,,,,x-1,,,,,", "Total"},
		{"bad total", "Deposit,2024-01-15 10:30:00,,,,,,,,,,abc,EUR,,,,x-1,,,,,", "Total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadExport(strings.NewReader(exportHeader + tt.row + "\n"))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, expected %q", verr.Field, tt.field)
			}
		})
	}
}

func TestReadExportSkipsBlankLines(t *testing.T) {
	csv := exportHeader +
		"\nDeposit,2024-01-15 10:30:00,,,,,,,,,,100.00,EUR,,,,dep-1,,,,,\n\n"

	txs, err := ReadExport(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("parsed %d transactions, expected 1", len(txs))
	}
}

func TestReadExportQuotedFields(t *testing.T) {
	csv := exportHeader +
		"Market sell,2024-02-02 11:00:00,US0378331005,AAPL,\"Apple, Inc\",1,,,,,,190.00,EUR,,,,sell-1,,,,,\n"

	txs, err := ReadExport(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}
	if txs[0].Name != "Apple, Inc" {
		t.Errorf("Name = %q", txs[0].Name)
	}
}
