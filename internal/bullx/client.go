// Package bullx implements the top-holders API client.
//
// Unlike the stats API client this one does not retry: a throttled holders
// fetch is decisive for the whole run, so a 429 surfaces immediately as
// upstream.ErrThrottled and the coordinator stops.
package bullx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"solana-trader-screener/internal/observability"
	"solana-trader-screener/internal/upstream"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api-neo.bullx.io"
	DefaultTimeout = 30 * time.Second

	// SolanaChainID is the BullX chain identifier for Solana.
	SolanaChainID = 1399811149
)

// Client fetches a token's top traders.
type Client struct {
	baseURL string
	client  *http.Client
	headers map[string]string
	cookies map[string]string

	// addressFilter optionally drops holder entries whose wallet address
	// fails the predicate (malformed base58, off-curve PDAs).
	addressFilter func(address string) bool
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the upstream base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithHeaders sets extra request headers.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithCookies sets request cookies (the upstream gates this endpoint
// behind a session).
func WithCookies(cookies map[string]string) ClientOption {
	return func(c *Client) {
		c.cookies = cookies
	}
}

// WithAddressFilter drops holder entries whose wallet address fails the
// predicate. Entries with an empty address are always dropped.
func WithAddressFilter(filter func(address string) bool) ClientOption {
	return func(c *Client) {
		c.addressFilter = filter
	}
}

// NewClient creates a holders API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TopTraders returns the token's top traders sorted by PnL, upstream-side.
// Returns upstream.ErrThrottled on HTTP 429 without retrying.
func (c *Client) TopTraders(ctx context.Context, tokenAddress string) ([]Trader, error) {
	reqBody := holdersRequest{
		Name: "holdersSummaryV2",
		Data: holdersRequestData{
			TokenAddress: tokenAddress,
			SortBy:       "pnlUSD",
			ChainID:      SolanaChainID,
			Filters:      holdersFilters{TagsFilters: []string{}},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal holders request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/api/holdersSummaryV2", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range c.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}

	resp, err := c.client.Do(req)
	if err != nil {
		observability.RecordHoldersFetch("transport_error")
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.RecordHoldersFetch("transport_error")
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		observability.RecordHoldersFetch("throttled")
		return nil, fmt.Errorf("holders API: %w", upstream.ErrThrottled)
	}
	if resp.StatusCode != http.StatusOK {
		observability.RecordHoldersFetch("bad_status")
		return nil, fmt.Errorf("holders API status %d: %s", resp.StatusCode, truncate(respBody, 200))
	}

	traders, err := decodeTraders(respBody)
	if err != nil {
		observability.RecordHoldersFetch("bad_json")
		return nil, err
	}
	observability.RecordHoldersFetch("ok")

	return c.filterTraders(traders), nil
}

// decodeTraders accepts both response shapes: a bare trader list or an
// object wrapping it in a data field.
func decodeTraders(body []byte) ([]Trader, error) {
	var bare []Trader
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var env holdersEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode holders response: %w", err)
	}
	return env.Data, nil
}

// filterTraders drops entries with no wallet address and, when a filter is
// configured, entries whose address fails it.
func (c *Client) filterTraders(traders []Trader) []Trader {
	kept := make([]Trader, 0, len(traders))
	for _, tr := range traders {
		if tr.WalletAddress == "" {
			continue
		}
		if c.addressFilter != nil && !c.addressFilter(tr.WalletAddress) {
			continue
		}
		kept = append(kept, tr)
	}
	return kept
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
