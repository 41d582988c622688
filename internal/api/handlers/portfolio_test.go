package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finbase/portfolio-engine/internal/api/handlers"
	"github.com/finbase/portfolio-engine/internal/model"
	"github.com/finbase/portfolio-engine/internal/testutil"
)

func TestPortfolioHandler_GetPortfolioSummary(t *testing.T) {
	t.Run("returns 404 before any recompute has run", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, db))

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/users/user-1/portfolio/summary",
			map[string]string{"userID": "user-1"},
		)
		w := httptest.NewRecorder()

		handler.GetPortfolioSummary(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns derived summary after a recompute", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecomputeService(t, db)
		handler := handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, db))

		testutil.NewTransaction("user-1").Buy(10, 100).Build(t, db)
		testutil.CreatePrice(t, db, "security-1", 120)
		if err := svc.RecomputeUser(context.Background(), "user-1"); err != nil {
			t.Fatalf("RecomputeUser() returned unexpected error: %v", err)
		}

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/users/user-1/portfolio/summary",
			map[string]string{"userID": "user-1"},
		)
		w := httptest.NewRecorder()

		handler.GetPortfolioSummary(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var summary model.PortfolioSummary
		if err := json.NewDecoder(w.Body).Decode(&summary); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if summary.TotalValue != 1200 {
			t.Errorf("Expected total value 1200, got %v", summary.TotalValue)
		}
		if len(summary.AssetTypes) != 6 {
			t.Errorf("Expected 6 asset type rows, got %d", len(summary.AssetTypes))
		}
	})
}

func TestPerformanceHandler_GetPerformance(t *testing.T) {
	t.Run("serves the snapshot for an explicit date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewPerformanceHandler(testutil.NewTestPerformanceService(t, db))
		testutil.CreateSnapshot(t, db, "user-1", "2026-08-20", 1000, 900)
		testutil.CreateSnapshot(t, db, "user-1", "2026-08-21", 1100, 900)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/users/user-1/performance?date=2026-08-21",
			map[string]string{"userID": "user-1"},
		)
		w := httptest.NewRecorder()

		handler.GetPerformance(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var performance model.Performance
		if err := json.NewDecoder(w.Body).Decode(&performance); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if performance.Snapshot.TotalValue != 1100 {
			t.Errorf("Expected snapshot total 1100, got %v", performance.Snapshot.TotalValue)
		}
		if performance.Day.Change != 100 {
			t.Errorf("Expected day change 100, got %v", performance.Day.Change)
		}
	})

	t.Run("rejects a malformed date parameter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewPerformanceHandler(testutil.NewTestPerformanceService(t, db))

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/users/user-1/performance?date=yesterday",
			map[string]string{"userID": "user-1"},
		)
		w := httptest.NewRecorder()

		handler.GetPerformance(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 without history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewPerformanceHandler(testutil.NewTestPerformanceService(t, db))

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/users/user-1/performance",
			map[string]string{"userID": "user-1"},
		)
		w := httptest.NewRecorder()

		handler.GetPerformance(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
