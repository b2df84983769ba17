package gecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dexpulse/trendwatch/internal/config"
	"github.com/dexpulse/trendwatch/internal/metrics"
	"github.com/dexpulse/trendwatch/internal/ratelimit"
	"github.com/sirupsen/logrus"
)

const acceptHeader = "application/json; version=20230302"

// Client handles communication with the GeckoTerminal-style market data API.
// One rate limit budget is shared across the pools and trades endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	maxRetries int
	retryBase  time.Duration
	log        *logrus.Logger
}

// NewClient creates a new market data client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		baseURL:    cfg.GeckoBaseURL,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		limiter:    ratelimit.New(cfg.RateLimitPerMin),
		maxRetries: cfg.RetryMax,
		retryBase:  cfg.RetryBase,
		log:        log,
	}
}

// ListPools fetches the top pools for a network, sorted by 24h volume
// descending. pageSize must be >= 1 and network a non-empty slug.
func (c *Client) ListPools(ctx context.Context, network string, pageSize int) ([]Pool, error) {
	if network == "" {
		return nil, fmt.Errorf("network slug is required")
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("page size must be >= 1, got %d", pageSize)
	}

	u, err := url.Parse(c.baseURL + "/networks/" + url.PathEscape(network) + "/pools")
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	q := u.Query()
	q.Set("sort", "-volume_usd.h24")
	q.Set("page[size]", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()

	var doc poolDocument
	if err := c.getJSON(ctx, "pools", u.String(), &doc); err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}

	pools := make([]Pool, 0, len(doc.Data))
	for _, res := range doc.Data {
		pools = append(pools, normalizePool(network, res))
	}
	return pools, nil
}

// ListTrades fetches recent trades for one pool, newest coverage the
// provider offers; filtering to a window is the caller's concern.
func (c *Client) ListTrades(ctx context.Context, network, poolID string) ([]Trade, error) {
	if network == "" {
		return nil, fmt.Errorf("network slug is required")
	}
	if poolID == "" {
		return nil, fmt.Errorf("pool id is required")
	}

	u := c.baseURL + "/networks/" + url.PathEscape(network) + "/pools/" + url.PathEscape(poolID) + "/trades"

	var doc tradeDocument
	if err := c.getJSON(ctx, "trades", u, &doc); err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}

	trades := make([]Trade, 0, len(doc.Data))
	for _, res := range doc.Data {
		trades = append(trades, normalizeTrade(res))
	}
	return trades, nil
}

// getJSON is the single retrying fetch path every endpoint goes through:
// rate limit wait, GET, status check, decode, with exponential backoff
// (base * 2^attempt) between attempts.
func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, v interface{}) error {
	start := time.Now()
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryBase * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				metrics.RecordAPIRequest(endpoint, time.Since(start), ctx.Err())
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			metrics.RecordAPIRequest(endpoint, time.Since(start), err)
			return fmt.Errorf("rate limit wait: %w", err)
		}

		lastErr = c.fetchOnce(ctx, rawURL, v)
		if lastErr == nil {
			metrics.RecordAPIRequest(endpoint, time.Since(start), nil)
			return nil
		}

		c.log.WithError(lastErr).WithFields(logrus.Fields{
			"endpoint": endpoint,
			"attempt":  attempt + 1,
		}).Warn("Market data request failed")
	}

	metrics.RecordAPIRequest(endpoint, time.Since(start), lastErr)
	return fmt.Errorf("after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, rawURL string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("accept", acceptHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func normalizePool(network string, res poolResource) Pool {
	a := res.Attributes

	pair := "?/?"
	switch {
	case a.Token0.Symbol != "" && a.Token1.Symbol != "":
		pair = a.Token0.Symbol + "/" + a.Token1.Symbol
	case a.Name != "":
		pair = a.Name
	}

	link := a.URL
	if link == "" {
		link = fmt.Sprintf("https://www.geckoterminal.com/%s/pools/%s", network, res.ID)
	}

	var createdAt time.Time
	if a.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, a.CreatedAt); err == nil {
			createdAt = ts
		}
	}

	return Pool{
		ID:           res.ID,
		Pair:         pair,
		Volume24hUSD: a.VolumeUSD.H24.Float64(),
		ReserveUSD:   a.ReserveUSD.Float64(),
		FDVUSD:       a.FDVUSD.Float64(),
		CreatedAt:    createdAt,
		URL:          link,
	}
}

func normalizeTrade(res tradeResource) Trade {
	a := res.Attributes

	var ts time.Time
	if a.BlockTimestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, a.BlockTimestamp); err == nil {
			ts = parsed.UTC()
		}
	}

	return Trade{
		Timestamp: ts,
		VolumeUSD: a.VolumeUSD.Float64(),
		PriceUSD:  a.PriceToUSD.Float64(),
		Side:      a.Kind,
	}
}
