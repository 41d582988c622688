// Package pricefeed implements the external price-source collaborator:
// an HTTP client that pulls the latest quote per security symbol and
// stores it for the engine to read. The engine itself never performs
// network I/O; a feed outage only means holdings keep valuing against
// the last stored observation (or cost basis when none exists).
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/finbase/portfolio-engine/internal/apperrors"
)

// chartResponse maps the quote endpoint's JSON. Only the fields the
// refresher needs are declared.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
		} `json:"result"`
		Error *string `json:"error"`
	} `json:"chart"`
}

// Quote is one latest-price observation from the feed.
type Quote struct {
	Symbol string
	Price  float64
	AsOf   time.Time
}

// Client fetches latest quotes over HTTP. An optional bearer token is
// attached when set (see TokenStore for how it is kept at rest).
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a feed client for the given base URL.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// LatestQuote fetches the most recent price for one symbol. Transport
// failures and non-2xx responses are reported as ErrUpstreamUnavailable
// so callers can distinguish "feed down" from bad data.
func (c *Client) LatestQuote(ctx context.Context, symbol string) (Quote, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", c.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to build quote request: %w", err)
	}
	req.Header.Set("User-Agent", "portfolio-engine/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("quote request for %s: %w: %v", symbol, apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Quote{}, fmt.Errorf("quote request for %s returned %d: %w", symbol, resp.StatusCode, apperrors.ErrUpstreamUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to read quote response: %w", err)
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Quote{}, fmt.Errorf("failed to decode quote response: %w", err)
	}

	if parsed.Chart.Error != nil {
		return Quote{}, fmt.Errorf("feed error for %s: %s", symbol, *parsed.Chart.Error)
	}
	if len(parsed.Chart.Result) == 0 {
		return Quote{}, fmt.Errorf("no quote data returned for %s", symbol)
	}

	meta := parsed.Chart.Result[0].Meta
	asOf := time.Unix(meta.RegularMarketTime, 0).UTC()
	if meta.RegularMarketTime == 0 {
		asOf = time.Now().UTC()
	}

	return Quote{
		Symbol: symbol,
		Price:  meta.RegularMarketPrice,
		AsOf:   asOf,
	}, nil
}
