package pricefeed_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/finbase/portfolio-engine/internal/apperrors"
	"github.com/finbase/portfolio-engine/internal/pricefeed"
	"github.com/finbase/portfolio-engine/internal/repository"
	"github.com/finbase/portfolio-engine/internal/testutil"
)

// TestRefresher_Refresh tests the feed-to-store pass.
//
// WHY: A single dead symbol must not sink the whole refresh; the engine
// keeps the last stored observation for it while every other symbol is
// updated.
func TestRefresher_Refresh(t *testing.T) {
	t.Run("stores quotes for every ledger security", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		testutil.NewTransaction("user-1").ForSecurity("account-1", "AAPL").Build(t, db)
		testutil.NewTransaction("user-1").ForSecurity("account-1", "MSFT").Build(t, db)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/v8/finance/chart/AAPL":
				fmt.Fprint(w, quotePayload("AAPL", 231.5, 1755772800))
			case "/v8/finance/chart/MSFT":
				fmt.Fprint(w, quotePayload("MSFT", 512.25, 1755772800))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		transactionRepo := repository.NewTransactionRepository(db)
		priceRepo := repository.NewPriceRepository(db)
		refresher := pricefeed.NewRefresher(
			pricefeed.NewClient(server.URL, ""),
			transactionRepo,
			priceRepo,
			zerolog.Nop(),
		)

		// Execute
		if err := refresher.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh() returned unexpected error: %v", err)
		}

		// Assert
		prices, err := priceRepo.GetLatest([]string{"AAPL", "MSFT"})
		if err != nil {
			t.Fatalf("GetLatest() returned unexpected error: %v", err)
		}
		if prices["AAPL"].Price != 231.5 {
			t.Errorf("Expected AAPL at 231.5, got %v", prices["AAPL"].Price)
		}
		if prices["MSFT"].Price != 512.25 {
			t.Errorf("Expected MSFT at 512.25, got %v", prices["MSFT"].Price)
		}
	})

	t.Run("a failing symbol is skipped, others still update", func(t *testing.T) {
		// Setup: DEAD answers 502, AAPL works
		db := testutil.SetupTestDB(t)
		testutil.NewTransaction("user-1").ForSecurity("account-1", "AAPL").Build(t, db)
		testutil.NewTransaction("user-1").ForSecurity("account-1", "DEAD").Build(t, db)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/v8/finance/chart/AAPL" {
				fmt.Fprint(w, quotePayload("AAPL", 231.5, 0))
				return
			}
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		priceRepo := repository.NewPriceRepository(db)
		refresher := pricefeed.NewRefresher(
			pricefeed.NewClient(server.URL, ""),
			repository.NewTransactionRepository(db),
			priceRepo,
			zerolog.Nop(),
		)

		// Execute
		if err := refresher.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh() returned unexpected error: %v", err)
		}

		// Assert
		prices, err := priceRepo.GetLatest([]string{"AAPL", "DEAD"})
		if err != nil {
			t.Fatalf("GetLatest() returned unexpected error: %v", err)
		}
		if _, ok := prices["DEAD"]; ok {
			t.Error("Expected no observation stored for the failing symbol")
		}
		if prices["AAPL"].Price != 231.5 {
			t.Errorf("Expected AAPL at 231.5, got %v", prices["AAPL"].Price)
		}
	})
}

// TestTokenStore tests the encrypted token round trip.
//
// WHY: The feed token is the only secret the engine persists. It must be
// unreadable in the settings table and absent tokens must surface as a
// distinct configuration error, not a decryption failure.
func TestTokenStore(t *testing.T) {
	// Base64 of a fixed 32-byte key. Test key only.
	const testKey = "QUFBQUFBQUFBQUFBQUFBQUFBQUFBQUFBQUFBQUFBQUE="

	t.Run("round trips a token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		settings := repository.NewSettingRepository(db)

		store, err := pricefeed.NewTokenStore(settings, testKey)
		if err != nil {
			t.Fatalf("NewTokenStore() returned unexpected error: %v", err)
		}

		if err := store.Save("feed-secret-token"); err != nil {
			t.Fatalf("Save() returned unexpected error: %v", err)
		}

		// Stored value must be ciphertext, not the token itself
		stored, ok, err := settings.Get(pricefeed.SettingFeedToken)
		if err != nil || !ok {
			t.Fatalf("Setting lookup failed: ok=%v err=%v", ok, err)
		}
		if stored == "feed-secret-token" {
			t.Error("Token stored in plaintext")
		}

		token, err := store.Load()
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if token != "feed-secret-token" {
			t.Errorf("Expected round-tripped token, got %q", token)
		}
	})

	t.Run("missing token reports not configured", func(t *testing.T) {
		db := testutil.SetupTestDB(t)

		store, err := pricefeed.NewTokenStore(repository.NewSettingRepository(db), testKey)
		if err != nil {
			t.Fatalf("NewTokenStore() returned unexpected error: %v", err)
		}

		_, err = store.Load()
		if !errors.Is(err, apperrors.ErrFeedTokenNotConfigured) {
			t.Errorf("Expected ErrFeedTokenNotConfigured, got %v", err)
		}
	})

	t.Run("rejects a malformed key", func(t *testing.T) {
		db := testutil.SetupTestDB(t)

		if _, err := pricefeed.NewTokenStore(repository.NewSettingRepository(db), "not-a-key"); err == nil {
			t.Error("Expected error for malformed fernet key")
		}
	})
}
