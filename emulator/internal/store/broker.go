package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/t212"
)

// Metadata keys of the broker-side fixtures.
const (
	metaExportCSV   = "export_csv"
	metaInstruments = "instruments"
	metaPositions   = "positions"
	metaAccount     = "account"
)

// ExportRecord is one requested CSV export.
type ExportRecord struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	TimeFrom  string    `json:"timeFrom"`
	TimeTo    string    `json:"timeTo"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateExport records a new export request in Processing state.
func (s *Store) CreateExport(timeFrom, timeTo string) (*ExportRecord, error) {
	id, err := s.NextID(BucketExports)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	record := &ExportRecord{
		ID:        id,
		Status:    t212.ExportStatusProcessing,
		TimeFrom:  timeFrom,
		TimeTo:    timeTo,
		CreatedAt: time.Now(),
	}
	if err := s.Put(BucketExports, id, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListExports returns all export records in creation order.
func (s *Store) ListExports() ([]ExportRecord, error) {
	var records []ExportRecord
	err := s.ForEach(BucketExports, func(data []byte) error {
		var record ExportRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}
		records = append(records, record)
		return nil
	})
	return records, err
}

// FinishExport marks an export as finished.
func (s *Store) FinishExport(id int64) error {
	var record ExportRecord
	if err := s.Get(BucketExports, id, &record); err != nil {
		return err
	}
	record.Status = t212.ExportStatusFinished
	return s.Put(BucketExports, id, &record)
}

// SeedExportCSV sets the CSV text served for export downloads.
func (s *Store) SeedExportCSV(csv string) error {
	return s.SetMeta(metaExportCSV, csv)
}

// ExportCSV returns the seeded CSV text.
func (s *Store) ExportCSV() (string, error) {
	var csv string
	found, err := s.GetMeta(metaExportCSV, &csv)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrNotFound
	}
	return csv, nil
}

// SeedInstruments sets the instrument catalog.
func (s *Store) SeedInstruments(instruments []t212.Instrument) error {
	return s.SetMeta(metaInstruments, instruments)
}

// Instruments returns the seeded instrument catalog.
func (s *Store) Instruments() ([]t212.Instrument, error) {
	var instruments []t212.Instrument
	if _, err := s.GetMeta(metaInstruments, &instruments); err != nil {
		return nil, err
	}
	return instruments, nil
}

// SeedPositions sets the open positions of the portfolio.
func (s *Store) SeedPositions(positions []t212.OpenPosition) error {
	return s.SetMeta(metaPositions, positions)
}

// Positions returns the seeded open positions.
func (s *Store) Positions() ([]t212.OpenPosition, error) {
	var positions []t212.OpenPosition
	if _, err := s.GetMeta(metaPositions, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// SeedAccount sets the account metadata.
func (s *Store) SeedAccount(info t212.AccountInfo) error {
	return s.SetMeta(metaAccount, info)
}

// Account returns the account metadata, defaulting to a EUR account.
func (s *Store) Account() (t212.AccountInfo, error) {
	info := t212.AccountInfo{ID: 1, CurrencyCode: "EUR"}
	if _, err := s.GetMeta(metaAccount, &info); err != nil {
		return t212.AccountInfo{}, err
	}
	return info, nil
}
