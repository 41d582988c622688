package pricefeed_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finbase/portfolio-engine/internal/apperrors"
	"github.com/finbase/portfolio-engine/internal/pricefeed"
)

func quotePayload(symbol string, price float64, asOf int64) string {
	return fmt.Sprintf(`{
		"chart": {
			"result": [{"meta": {"symbol": %q, "regularMarketPrice": %v, "regularMarketTime": %d}}],
			"error": null
		}
	}`, symbol, price, asOf)
}

// TestClient_LatestQuote tests quote fetching against a stub feed.
//
// WHY: Feed outages must surface as ErrUpstreamUnavailable so the
// refresher can skip the symbol and keep valuing against the last stored
// observation instead of failing the pass.
func TestClient_LatestQuote(t *testing.T) {
	t.Run("parses a quote", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v8/finance/chart/AAPL" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			fmt.Fprint(w, quotePayload("AAPL", 231.5, 1755772800))
		}))
		defer server.Close()

		client := pricefeed.NewClient(server.URL, "")

		quote, err := client.LatestQuote(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("LatestQuote() returned unexpected error: %v", err)
		}
		if quote.Price != 231.5 {
			t.Errorf("Expected price 231.5, got %v", quote.Price)
		}
		if quote.Symbol != "AAPL" {
			t.Errorf("Expected symbol AAPL, got %s", quote.Symbol)
		}
		if quote.AsOf.IsZero() {
			t.Error("Expected as-of timestamp to be set")
		}
	})

	t.Run("attaches the bearer token when configured", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer secret" {
				t.Errorf("Expected bearer token, got %q", got)
			}
			fmt.Fprint(w, quotePayload("AAPL", 100, 0))
		}))
		defer server.Close()

		client := pricefeed.NewClient(server.URL, "secret")

		if _, err := client.LatestQuote(context.Background(), "AAPL"); err != nil {
			t.Fatalf("LatestQuote() returned unexpected error: %v", err)
		}
	})

	t.Run("non-2xx maps to upstream unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := pricefeed.NewClient(server.URL, "")

		_, err := client.LatestQuote(context.Background(), "AAPL")
		if !errors.Is(err, apperrors.ErrUpstreamUnavailable) {
			t.Errorf("Expected ErrUpstreamUnavailable, got %v", err)
		}
	})

	t.Run("transport failure maps to upstream unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // nothing listening anymore

		client := pricefeed.NewClient(server.URL, "")

		_, err := client.LatestQuote(context.Background(), "AAPL")
		if !errors.Is(err, apperrors.ErrUpstreamUnavailable) {
			t.Errorf("Expected ErrUpstreamUnavailable, got %v", err)
		}
	})

	t.Run("feed-level error is rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"chart": {"result": [], "error": "Not Found"}}`)
		}))
		defer server.Close()

		client := pricefeed.NewClient(server.URL, "")

		if _, err := client.LatestQuote(context.Background(), "MISSING"); err == nil {
			t.Error("Expected error for feed-level failure")
		}
	})
}
