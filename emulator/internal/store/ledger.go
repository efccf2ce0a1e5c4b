package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/ynab"
)

// ListPayees returns all payees.
func (s *Store) ListPayees() ([]ynab.Payee, error) {
	var payees []ynab.Payee
	err := s.ForEach(BucketPayees, func(data []byte) error {
		var payee ynab.Payee
		if err := json.Unmarshal(data, &payee); err != nil {
			return err
		}
		payees = append(payees, payee)
		return nil
	})
	return payees, err
}

// SeedPayees creates payees with generated ids.
func (s *Store) SeedPayees(names []string) error {
	for _, name := range names {
		if err := s.ensurePayee(name); err != nil {
			return err
		}
	}
	return nil
}

// ensurePayee creates a payee for the name unless one already exists.
func (s *Store) ensurePayee(name string) error {
	if name == "" {
		return nil
	}

	payees, err := s.ListPayees()
	if err != nil {
		return err
	}
	for _, p := range payees {
		if p.Name == name {
			return nil
		}
	}

	id, err := s.NextID(BucketPayees)
	if err != nil {
		return fmt.Errorf("failed to generate ID: %w", err)
	}
	return s.Put(BucketPayees, id, ynab.Payee{
		ID:   fmt.Sprintf("payee-%d", id),
		Name: name,
	})
}

// ListTransactions returns the ledger transactions of one account.
func (s *Store) ListTransactions(accountID string) ([]ynab.Transaction, error) {
	var txs []ynab.Transaction
	err := s.ForEach(BucketTransactions, func(data []byte) error {
		var tx ynab.Transaction
		if err := json.Unmarshal(data, &tx); err != nil {
			return err
		}
		if accountID == "" || tx.AccountID == accountID {
			txs = append(txs, tx)
		}
		return nil
	})
	return txs, err
}

// CreateTransactions stores new ledger transactions, assigning ids. Payee
// names without an existing payee get one created, the way the real ledger
// materializes payees from transaction names.
func (s *Store) CreateTransactions(txs []ynab.Transaction) ([]ynab.Transaction, error) {
	created := make([]ynab.Transaction, 0, len(txs))
	for _, tx := range txs {
		id, err := s.NextID(BucketTransactions)
		if err != nil {
			return nil, fmt.Errorf("failed to generate ID: %w", err)
		}
		tx.ID = fmt.Sprintf("txn-%d", id)

		if err := s.ensurePayee(tx.PayeeName); err != nil {
			return nil, err
		}
		if err := s.Put(BucketTransactions, id, tx); err != nil {
			return nil, err
		}
		created = append(created, tx)
	}
	return created, nil
}

// UpdateTransactions patches existing transactions, matched by id. Only the
// fields a patch can carry are overwritten.
func (s *Store) UpdateTransactions(patches []ynab.Transaction) ([]ynab.Transaction, error) {
	updated := make([]ynab.Transaction, 0, len(patches))
	for _, patch := range patches {
		key, existing, err := s.findTransaction(patch.ID)
		if err != nil {
			return nil, err
		}

		existing.Amount = patch.Amount
		if patch.Memo != "" {
			existing.Memo = patch.Memo
		}
		if patch.Cleared != "" {
			existing.Cleared = patch.Cleared
		}
		if patch.Date != "" {
			existing.Date = patch.Date
		}

		if err := s.Put(BucketTransactions, key, existing); err != nil {
			return nil, err
		}
		updated = append(updated, existing)
	}
	return updated, nil
}

// findTransaction locates a transaction and its bucket key by ledger id.
func (s *Store) findTransaction(id string) (int64, ynab.Transaction, error) {
	var (
		key   int64
		found ynab.Transaction
		ok    bool
	)
	err := s.db.View(func(btx *bolt.Tx) error {
		b := btx.Bucket([]byte(BucketTransactions))
		if b == nil {
			return fmt.Errorf("bucket %s not found", BucketTransactions)
		}
		return b.ForEach(func(k, v []byte) error {
			var tx ynab.Transaction
			if err := json.Unmarshal(v, &tx); err != nil {
				return err
			}
			if tx.ID == id {
				key = int64(binary.BigEndian.Uint64(k))
				found = tx
				ok = true
			}
			return nil
		})
	})
	if err != nil {
		return 0, ynab.Transaction{}, err
	}
	if !ok {
		return 0, ynab.Transaction{}, ErrNotFound
	}
	return key, found, nil
}
