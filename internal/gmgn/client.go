// Package gmgn implements the wallet statistics API client.
//
// The upstream throttles aggressively and returns application-level error
// codes inside HTTP 200 responses, so every request runs through a retry
// loop that only exits on a decoded payload, a cancelled context, or (when
// configured) an exhausted throttle budget.
package gmgn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"solana-trader-screener/internal/observability"
	"solana-trader-screener/internal/upstream"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://gmgn.ai"
	DefaultPeriod  = "7d"
	DefaultTimeout = 30 * time.Second

	// Retry backoff per failure class. Throttle and app-error sleeps get
	// uniform jitter on top (up to 2s and 1s respectively at the defaults).
	DefaultThrottleDelay  = 3 * time.Second
	DefaultAppErrorDelay  = 2 * time.Second
	DefaultParseDelay     = 2 * time.Second
	DefaultTransportDelay = 5 * time.Second
)

// Limiter gates requests to the upstream host. *ratelimit.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Client fetches per-wallet statistics with rate limiting and retries.
type Client struct {
	baseURL string
	client  *http.Client
	headers map[string]string
	limiter Limiter

	// throttleRetries bounds consecutive 429 responses per request.
	// Zero means retry forever: the upstream is assumed to recover
	// eventually and the run-level stop flag is the escape hatch.
	throttleRetries int

	throttleDelay  time.Duration
	appErrorDelay  time.Duration
	parseDelay     time.Duration
	transportDelay time.Duration
	throttleJitter time.Duration
	appErrorJitter time.Duration
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

// WithHeaders sets extra request headers (auth cookies, user agent).
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithLimiter sets the shared request limiter.
func WithLimiter(l Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithThrottleRetries bounds consecutive 429s per request; after n the
// request fails with upstream.ErrThrottled. n <= 0 restores the default
// unbounded behavior.
func WithThrottleRetries(n int) ClientOption {
	return func(c *Client) {
		if n < 0 {
			n = 0
		}
		c.throttleRetries = n
	}
}

// WithRetryDelays overrides the backoff per failure class. Jitter scales
// with the throttle and app-error delays. Intended for tests.
func WithRetryDelays(throttle, appError, parse, transport time.Duration) ClientOption {
	return func(c *Client) {
		c.throttleDelay = throttle
		c.appErrorDelay = appError
		c.parseDelay = parse
		c.transportDelay = transport
		c.throttleJitter = throttle * 2 / 3
		c.appErrorJitter = appError / 2
	}
}

// NewClient creates a wallet statistics API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		client:         &http.Client{Timeout: DefaultTimeout},
		throttleDelay:  DefaultThrottleDelay,
		appErrorDelay:  DefaultAppErrorDelay,
		parseDelay:     DefaultParseDelay,
		transportDelay: DefaultTransportDelay,
		throttleJitter: 2 * time.Second,
		appErrorJitter: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchWalletSummary returns the wallet's period summary, or nil when the
// upstream has no data for the wallet.
func (c *Client) FetchWalletSummary(ctx context.Context, wallet, period string) (*WalletSummary, error) {
	if period == "" {
		period = DefaultPeriod
	}
	endpoint := fmt.Sprintf("%s/api/v1/wallet_stat/sol/%s/%s", c.baseURL, wallet, period)

	data, err := c.fetch(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch wallet summary: %w", err)
	}
	if emptyData(data) {
		return nil, nil
	}

	var summary WalletSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("decode wallet summary: %w", err)
	}
	return &summary, nil
}

// FetchTopHoldings returns up to limit holdings ranked by total profit.
// The upstream sorts; the client only reads the first entries.
func (c *Client) FetchTopHoldings(ctx context.Context, wallet string, limit int) ([]HoldingEntry, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("orderby", "total_profit")
	params.Set("direction", "desc")
	params.Set("showsmall", "true")
	params.Set("sellout", "true")
	params.Set("tx30d", "true")
	endpoint := fmt.Sprintf("%s/api/v1/wallet_holdings/sol/%s?%s", c.baseURL, wallet, params.Encode())

	data, err := c.fetch(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch wallet holdings: %w", err)
	}
	if emptyData(data) {
		return nil, nil
	}

	var hd holdingsData
	if err := json.Unmarshal(data, &hd); err != nil {
		return nil, fmt.Errorf("decode wallet holdings: %w", err)
	}
	if len(hd.Holdings) > limit {
		hd.Holdings = hd.Holdings[:limit]
	}
	return hd.Holdings, nil
}

// fetch runs the request loop until a decoded data section, a cancelled
// context, or an exhausted throttle budget. Order per attempt is
// load-bearing: limiter slot first, then the cancellation check, then the
// request, so a stopped run never consumes a slot.
func (c *Client) fetch(ctx context.Context, endpoint string) (json.RawMessage, error) {
	throttles := 0
	for {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, status, err := c.doRequest(ctx, endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			observability.RecordStatsRetry("transport")
			if err := sleepCtx(ctx, c.transportDelay); err != nil {
				return nil, err
			}
			continue
		}

		if status == http.StatusTooManyRequests {
			throttles++
			if c.throttleRetries > 0 && throttles >= c.throttleRetries {
				return nil, fmt.Errorf("%d consecutive 429 responses: %w", throttles, upstream.ErrThrottled)
			}
			observability.RecordStatsRetry("throttled")
			if err := sleepCtx(ctx, jittered(c.throttleDelay, c.throttleJitter)); err != nil {
				return nil, err
			}
			continue
		}
		if status < 200 || status > 299 {
			observability.RecordStatsRetry("bad_status")
			if err := sleepCtx(ctx, c.transportDelay); err != nil {
				return nil, err
			}
			continue
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			observability.RecordStatsRetry("bad_json")
			if err := sleepCtx(ctx, c.parseDelay); err != nil {
				return nil, err
			}
			continue
		}
		if env.Code != 0 {
			observability.RecordStatsRetry("app_error")
			if err := sleepCtx(ctx, jittered(c.appErrorDelay, c.appErrorJitter)); err != nil {
				return nil, err
			}
			continue
		}

		return env.Data, nil
	}
}

// doRequest performs one HTTP attempt.
func (c *Client) doRequest(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// emptyData reports whether a data section carries no payload.
func emptyData(data json.RawMessage) bool {
	switch string(data) {
	case "", "null", "{}", "[]":
		return true
	}
	return false
}

func jittered(base, jitter time.Duration) time.Duration {
	if jitter <= 0 {
		return base
	}
	return base + time.Duration(rand.Float64()*float64(jitter))
}

// sleepCtx sleeps for d or until ctx is done. Every retry sleep is a
// cancellation checkpoint.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
