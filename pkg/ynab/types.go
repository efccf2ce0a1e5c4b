// Package ynab provides a YNAB v1 API client and the wire types the sync
// engine exchanges with it.
package ynab

// Cleared statuses of a ledger transaction.
const (
	Cleared   = "cleared"
	Uncleared = "uncleared"
)

// Transaction is a ledger entry, both as returned by the API and as sent on
// create/update. ImportID is set only on creates; ID only on existing entries
// and updates.
type Transaction struct {
	ID              string           `json:"id,omitempty"`
	AccountID       string           `json:"account_id,omitempty"`
	Date            string           `json:"date,omitempty"` // YYYY-MM-DD
	Amount          int64            `json:"amount"`         // milliunits
	PayeeID         string           `json:"payee_id,omitempty"`
	PayeeName       string           `json:"payee_name,omitempty"`
	CategoryID      string           `json:"category_id,omitempty"`
	Memo            string           `json:"memo,omitempty"`
	Cleared         string           `json:"cleared,omitempty"`
	Approved        bool             `json:"approved,omitempty"`
	FlagColor       string           `json:"flag_color,omitempty"`
	ImportID        string           `json:"import_id,omitempty"`
	SubTransactions []SubTransaction `json:"subtransactions,omitempty"`
}

// SubTransaction is a split line whose amounts must sum to the parent amount.
type SubTransaction struct {
	Amount     int64  `json:"amount"`
	PayeeID    string `json:"payee_id,omitempty"`
	PayeeName  string `json:"payee_name,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	Memo       string `json:"memo,omitempty"`
}

// Payee is a budget payee.
type Payee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PayeesResponse is the response from /budgets/{id}/payees.
type PayeesResponse struct {
	Data struct {
		Payees []Payee `json:"payees"`
	} `json:"data"`
}

// TransactionsResponse is the response from transaction list endpoints.
type TransactionsResponse struct {
	Data struct {
		Transactions []Transaction `json:"transactions"`
	} `json:"data"`
}

// TransactionsPayload is the request body for batched create/update calls.
type TransactionsPayload struct {
	Transactions []Transaction `json:"transactions"`
}

// ErrorResponse is the error envelope of the YNAB API.
type ErrorResponse struct {
	Error struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Detail string `json:"detail"`
	} `json:"error"`
}
