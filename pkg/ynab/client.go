package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the public YNAB API endpoint.
const DefaultBaseURL = "https://api.ynab.com/v1"

// ClientConfig represents the configuration for the YNAB API client.
type ClientConfig struct {
	BaseURL string // Default: DefaultBaseURL
	Token   string
	Timeout time.Duration // Default: 30 seconds
}

// Client is a YNAB API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a new YNAB API client.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      config.Token,
	}
}

// Payees lists the payees of a budget.
func (c *Client) Payees(ctx context.Context, budgetID string) ([]Payee, error) {
	var resp PayeesResponse
	endpoint := fmt.Sprintf("%s/budgets/%s/payees", c.baseURL, budgetID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list payees: %w", err)
	}
	return resp.Data.Payees, nil
}

// Transactions lists all transactions of an account.
func (c *Client) Transactions(ctx context.Context, budgetID, accountID string) ([]Transaction, error) {
	var resp TransactionsResponse
	endpoint := fmt.Sprintf("%s/budgets/%s/accounts/%s/transactions", c.baseURL, budgetID, accountID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return resp.Data.Transactions, nil
}

// CreateTransactions creates transactions in a single batched call.
func (c *Client) CreateTransactions(ctx context.Context, budgetID string, txs []Transaction) error {
	endpoint := fmt.Sprintf("%s/budgets/%s/transactions", c.baseURL, budgetID)
	if err := c.do(ctx, http.MethodPost, endpoint, TransactionsPayload{Transactions: txs}, nil); err != nil {
		return fmt.Errorf("failed to create transactions: %w", err)
	}
	return nil
}

// UpdateTransactions updates existing transactions (matched by ID) in a
// single batched call.
func (c *Client) UpdateTransactions(ctx context.Context, budgetID string, txs []Transaction) error {
	endpoint := fmt.Sprintf("%s/budgets/%s/transactions", c.baseURL, budgetID)
	if err := c.do(ctx, http.MethodPatch, endpoint, TransactionsPayload{Transactions: txs}, nil); err != nil {
		return fmt.Errorf("failed to update transactions: %w", err)
	}
	return nil
}

// do issues one authenticated JSON request and decodes the response into out
// when out is non-nil.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.parseError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// parseError parses an error response from the YNAB API.
func (c *Client) parseError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("YNAB API error (status %d): failed to read error response", resp.StatusCode)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.ID == "" {
		return fmt.Errorf("YNAB API error (status %d): %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("YNAB API error: %s - %s", errResp.Error.Name, errResp.Error.Detail)
}
