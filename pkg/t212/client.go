package t212

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the live Trading212 API endpoint.
const DefaultBaseURL = "https://live.trading212.com"

// ClientConfig represents the configuration for the Trading212 API client.
type ClientConfig struct {
	BaseURL      string        // Default: DefaultBaseURL
	Token        string        // API key, sent as the Authorization header
	Timeout      time.Duration // Default: 30 seconds
	PollDelay    time.Duration // Delay between export status polls. Default: 2 seconds
	PollAttempts int           // Export status polls before giving up. Default: 30
}

// Client is a Trading212 API client.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	pollDelay    time.Duration
	pollAttempts int
}

// NewClient creates a new Trading212 API client.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pollDelay := config.PollDelay
	if pollDelay == 0 {
		pollDelay = 2 * time.Second
	}
	pollAttempts := config.PollAttempts
	if pollAttempts == 0 {
		pollAttempts = 30
	}

	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      baseURL,
		token:        config.Token,
		pollDelay:    pollDelay,
		pollAttempts: pollAttempts,
	}
}

// RequestExport asks for a CSV export of the given time range, all record
// kinds included, and returns the report ID to poll.
func (c *Client) RequestExport(ctx context.Context, from, to time.Time) (int64, error) {
	body := exportRequest{
		DataIncluded: exportDataIncluded{
			IncludeDividends:    true,
			IncludeInterest:     true,
			IncludeOrders:       true,
			IncludeTransactions: true,
		},
		TimeFrom: from.UTC().Format(time.RFC3339),
		TimeTo:   to.UTC().Format(time.RFC3339),
	}

	var resp exportResponse
	if err := c.do(ctx, http.MethodPost, "/api/v0/history/exports", body, &resp); err != nil {
		return 0, fmt.Errorf("failed to request export: %w", err)
	}
	return resp.ReportID, nil
}

// WaitForExport polls the export list until the report is finished and
// returns its download link. The loop is bounded: on exhaustion it returns a
// TimeoutError instead of spinning forever.
func (c *Client) WaitForExport(ctx context.Context, reportID int64) (string, error) {
	for attempt := 0; attempt < c.pollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.pollDelay):
			}
		}

		var reports []ExportReport
		if err := c.do(ctx, http.MethodGet, "/api/v0/history/exports", nil, &reports); err != nil {
			return "", fmt.Errorf("failed to poll export status: %w", err)
		}

		for _, report := range reports {
			if report.ReportID != reportID {
				continue
			}
			switch report.Status {
			case ExportStatusFinished:
				return report.DownloadLink, nil
			case ExportStatusFailed:
				return "", fmt.Errorf("export %d failed on the broker side", reportID)
			}
		}
	}
	return "", &TimeoutError{ReportID: reportID, Attempts: c.pollAttempts}
}

// Download fetches the raw CSV text behind an export download link.
func (c *Client) Download(ctx context.Context, link string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download export: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download export: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// AccountCurrency returns the account's base currency code.
func (c *Client) AccountCurrency(ctx context.Context) (string, error) {
	var info AccountInfo
	if err := c.do(ctx, http.MethodGet, "/api/v0/equity/account/info", nil, &info); err != nil {
		return "", fmt.Errorf("failed to fetch account info: %w", err)
	}
	return info.CurrencyCode, nil
}

// Instruments returns the tradable instrument catalog.
func (c *Client) Instruments(ctx context.Context) ([]Instrument, error) {
	var instruments []Instrument
	if err := c.do(ctx, http.MethodGet, "/api/v0/equity/metadata/instruments", nil, &instruments); err != nil {
		return nil, fmt.Errorf("failed to fetch instruments: %w", err)
	}
	return instruments, nil
}

// OpenPositions returns the live open positions of the portfolio.
func (c *Client) OpenPositions(ctx context.Context) ([]OpenPosition, error) {
	var positions []OpenPosition
	if err := c.do(ctx, http.MethodGet, "/api/v0/equity/portfolio", nil, &positions); err != nil {
		return nil, fmt.Errorf("failed to fetch open positions: %w", err)
	}
	return positions, nil
}

// do issues one authenticated JSON request against the API base URL.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Trading212 API error (status %d): %s", resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
