// Package client provides an HTTP client for the bullion registry API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bullion/internal/ledger"
)

// APIError is a non-2xx response from the registry API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("registry API: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("registry API: unexpected status %d", e.StatusCode)
}

// RegistryClient reads account registries over HTTP.
type RegistryClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRegistryClient creates a new registry API client. A nil httpClient
// gets a client with a 30 second timeout.
func NewRegistryClient(baseURL string, httpClient *http.Client) *RegistryClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &RegistryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// FetchRegistry downloads the raw registry records of an account. Numbers
// are kept as json.Number so amounts keep their precision.
func (c *RegistryClient) FetchRegistry(ctx context.Context, accountID string, from, to *time.Time) ([]map[string]any, error) {
	q := url.Values{}
	if from != nil {
		q.Set("from_date", from.UTC().Format(time.RFC3339))
	}
	if to != nil {
		q.Set("to_date", to.UTC().Format(time.RFC3339))
	}
	endpoint := c.baseURL + "/api/v1/accounts/" + url.PathEscape(accountID) + "/registry/export"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching registry: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading registry response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp.StatusCode, body)
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("decoding registry response: %w", err)
	}
	return records, nil
}

// FetchTransactions downloads a registry and maps it with the default field names.
func (c *RegistryClient) FetchTransactions(ctx context.Context, accountID string, from, to *time.Time) ([]ledger.Transaction, error) {
	records, err := c.FetchRegistry(ctx, accountID, from, to)
	if err != nil {
		return nil, err
	}
	return ledger.FromRecords(records, ledger.DefaultMapping())
}

// decodeRecords accepts a bare array or an object with a "data" array.
func decodeRecords(body []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Data []map[string]any `json:"data"`
		}
		if err := dec.Decode(&wrapped); err != nil {
			return nil, err
		}
		return orEmpty(wrapped.Data), nil
	}

	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	return orEmpty(records), nil
}

func orEmpty(records []map[string]any) []map[string]any {
	if records == nil {
		return []map[string]any{}
	}
	return records
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Code = payload.Error.Code
		apiErr.Message = payload.Error.Message
	}
	return apiErr
}
