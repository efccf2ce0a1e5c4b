// Package position rebuilds per-security holdings from the ledger and keeps
// one synthetic uncleared "current holdings value" entry per held security.
//
// Positions are never persisted: every run replays all stock-tagged ledger
// entries (existing plus about-to-be-added) from scratch, derives quantity
// and cost basis per ISIN, and marks the result to market against the live
// portfolio snapshot.
package position

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/importid"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/memo"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/money"
	"github.com/shunichi-ikebuchi/t212-ynab-sync/pkg/ynab"
)

// stockPayeePrefix tags ledger entries that take part in position replay.
const stockPayeePrefix = "Stock: "

// ConsistencyError reports a self-produced ledger entry or portfolio state
// that violates the system's own invariants. It indicates a logic bug and is
// fatal.
type ConsistencyError struct {
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency error: %s", e.Detail)
}

// Instrument identifies a security of the broker's catalog.
type Instrument struct {
	ISIN      string
	Ticker    string
	Name      string
	ShortName string
}

// OpenPosition is a live open position: quantity in 1e-10 share units,
// unrealized P&L in ledger milliunits.
type OpenPosition struct {
	Ticker   string
	Quantity int64
	PnL      int64
}

// Snapshot is the live portfolio state positions are marked against.
type Snapshot struct {
	instrumentsByISIN map[string]Instrument
	positionsByTicker map[string]OpenPosition
}

// NewSnapshot indexes the instrument catalog and open positions.
func NewSnapshot(instruments []Instrument, positions []OpenPosition) Snapshot {
	s := Snapshot{
		instrumentsByISIN: make(map[string]Instrument, len(instruments)),
		positionsByTicker: make(map[string]OpenPosition, len(positions)),
	}
	for _, inst := range instruments {
		s.instrumentsByISIN[inst.ISIN] = inst
	}
	for _, pos := range positions {
		s.positionsByTicker[pos.Ticker] = pos
	}
	return s
}

// state is the transient per-ISIN replay accumulator.
type state struct {
	quantity    int64 // 1e-10 share units currently modeled as held
	totalAmount int64 // aggregate cost basis, milliunits
	unclearedID string
}

// Reconcile replays existing plus newly classified entries and returns the
// holdings-value mutations: creates for securities without an uncleared
// holdings entry, updates (by id) for those with one.
func Reconcile(accountID string, existing, toAdd []ynab.Transaction, snap Snapshot, today string) (creates, updates []ynab.Transaction, err error) {
	states := make(map[string]*state)

	replay := make([]ynab.Transaction, 0, len(existing)+len(toAdd))
	replay = append(replay, existing...)
	replay = append(replay, toAdd...)

	for _, entry := range replay {
		if !strings.HasPrefix(entry.PayeeName, stockPayeePrefix) {
			continue
		}
		if !importid.IsCurrent(entry.ImportID) {
			continue
		}
		if memo.IsDividend(entry.Memo) {
			continue
		}

		quantity, isin, perr := memo.Parse(entry.Memo)
		if perr != nil {
			// Entries this system produced always carry a parsable memo.
			return nil, nil, &ConsistencyError{Detail: perr.Error()}
		}

		st := states[isin]
		if st == nil {
			st = &state{}
			states[isin] = st
		}

		if entry.Cleared == ynab.Uncleared {
			// The existing holdings-value entry: update target, not a lot.
			st.unclearedID = entry.ID
			continue
		}

		amount := stockLegAmount(entry)
		if amount > 0 {
			// A sale reduces the cost basis proportionally, re-rounded on
			// every partial sale.
			if st.quantity <= 0 {
				return nil, nil, &ConsistencyError{
					Detail: fmt.Sprintf("sale of %s with no held quantity", isin),
				}
			}
			st.totalAmount = money.ScaleRatio(st.totalAmount, st.quantity-quantity, st.quantity)
			st.quantity -= quantity
		} else {
			st.quantity += quantity
			st.totalAmount += -amount
		}
	}

	isins := make([]string, 0, len(states))
	for isin, st := range states {
		if st.quantity > 0 {
			isins = append(isins, isin)
		}
	}
	sort.Strings(isins)

	for _, isin := range isins {
		st := states[isin]

		inst, ok := snap.instrumentsByISIN[isin]
		if !ok {
			slog.Warn("Held security not in instrument catalog, skipping", "isin", isin)
			continue
		}
		live, ok := snap.positionsByTicker[inst.Ticker]
		if !ok {
			slog.Warn("Held security has no live open position, skipping",
				"isin", isin, "ticker", inst.Ticker)
			continue
		}
		if live.Quantity <= 0 {
			return nil, nil, &ConsistencyError{
				Detail: fmt.Sprintf("ledger holds %s of %s but live position quantity is %d",
					money.FormatShareUnits(st.quantity), isin, live.Quantity),
			}
		}

		// Unrealized P&L proportional to the ledger-held share of the live
		// position.
		markToMarket := money.ScaleRatio(live.PnL, st.quantity, live.Quantity)
		currentValue := st.totalAmount + markToMarket
		holdingMemo := memo.Format(st.quantity, inst.Ticker, isin)

		if st.unclearedID != "" {
			updates = append(updates, ynab.Transaction{
				ID:      st.unclearedID,
				Amount:  currentValue,
				Memo:    holdingMemo,
				Cleared: ynab.Uncleared,
			})
			continue
		}

		creates = append(creates, ynab.Transaction{
			AccountID: accountID,
			Date:      today,
			Amount:    currentValue,
			PayeeName: stockPayeePrefix + inst.Name,
			Memo:      holdingMemo,
			Cleared:   ynab.Uncleared,
			ImportID:  importid.Make(importid.HoldingSeed(isin, today, currentValue)),
		})
	}

	return creates, updates, nil
}

// stockLegAmount returns the amount attributable to the security itself: the
// split sub-entry carrying the position memo when the entry is split, else
// the entry's own amount.
func stockLegAmount(entry ynab.Transaction) int64 {
	for _, sub := range entry.SubTransactions {
		if strings.Contains(sub.Memo, "x") {
			return sub.Amount
		}
	}
	return entry.Amount
}
