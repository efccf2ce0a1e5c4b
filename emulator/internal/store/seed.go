package store

import (
	"encoding/json"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/t212"
)

// demoCSV is a small account history for manual emulator runs.
const demoCSV = `Action,Time,ISIN,Ticker,Name,No. of shares,Total,Currency (Total),Currency conversion fee,Notes,ID
Deposit,2024-05-01 09:00:00,,,,,1000.00,EUR,,Bank transfer,demo-dep-1
Market buy,2024-05-02 10:30:00,US0378331005,AAPL,Apple Inc.,2.5,450.00,EUR,1.50,,demo-buy-1
Interest on cash,2024-05-31 00:10:00,,,,,1.23,EUR,,,demo-int-1
`

// SeedDemo populates demo fixtures unless the store already carries export
// data. Used by the standalone server so a fresh database answers every
// endpoint.
func (s *Store) SeedDemo() (bool, error) {
	if _, err := s.ExportCSV(); err == nil {
		return false, nil
	} else if err != ErrNotFound {
		return false, err
	}

	if err := s.SeedExportCSV(demoCSV); err != nil {
		return false, err
	}
	if err := s.SeedAccount(t212.AccountInfo{ID: 1, CurrencyCode: "EUR"}); err != nil {
		return false, err
	}
	if err := s.SeedInstruments([]t212.Instrument{
		{ISIN: "US0378331005", Ticker: "AAPL", Name: "Apple Inc.", ShortName: "Apple"},
	}); err != nil {
		return false, err
	}
	if err := s.SeedPositions([]t212.OpenPosition{
		{Ticker: "AAPL", Quantity: json.Number("2.5"), PnL: json.Number("12.34")},
	}); err != nil {
		return false, err
	}
	if err := s.SeedPayees([]string{"Trading 212", "Interest"}); err != nil {
		return false, err
	}
	return true, nil
}
