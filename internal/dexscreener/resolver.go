// Package dexscreener resolves token display names, best-effort.
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"solana-trader-screener/internal/domain"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.dexscreener.com"
	DefaultTimeout = 10 * time.Second
)

// Resolver looks up token names on Dexscreener.
type Resolver struct {
	baseURL string
	client  *http.Client
}

// ResolverOption configures Resolver.
type ResolverOption func(*Resolver)

// WithBaseURL overrides the upstream base URL.
func WithBaseURL(u string) ResolverOption {
	return func(r *Resolver) {
		r.baseURL = u
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ResolverOption {
	return func(r *Resolver) {
		r.client = client
	}
}

// NewResolver creates a token name resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// tokenResponse is the relevant slice of the pairs lookup response.
type tokenResponse struct {
	Pairs []struct {
		BaseToken struct {
			Name   string `json:"name"`
			Symbol string `json:"symbol"`
		} `json:"baseToken"`
	} `json:"pairs"`
}

// ResolveName returns the token's display name as "Name (SYMBOL)", or
// "UNKNOWN" on any failure. Best-effort: errors are swallowed because a
// missing name never blocks screening.
func (r *Resolver) ResolveName(ctx context.Context, address string) string {
	endpoint := fmt.Sprintf("%s/latest/dex/tokens/%s", r.baseURL, address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.UnknownName
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.UnknownName
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.UnknownName
	}

	var decoded tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.UnknownName
	}
	if len(decoded.Pairs) == 0 {
		return domain.UnknownName
	}

	base := decoded.Pairs[0].BaseToken
	if base.Name == "" {
		return domain.UnknownName
	}
	if base.Symbol != "" {
		return fmt.Sprintf("%s (%s)", base.Name, base.Symbol)
	}
	return base.Name
}
