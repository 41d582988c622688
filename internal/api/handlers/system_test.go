package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finbase/portfolio-engine/internal/api/handlers"
	"github.com/finbase/portfolio-engine/internal/testutil"
	"github.com/finbase/portfolio-engine/internal/version"
)

func TestSystemHandler_Health(t *testing.T) {
	t.Run("reports ok when the database responds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewSystemHandler(db)

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("reports unavailable when the database is down", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewSystemHandler(db)

		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestSystemHandler_Version(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := handlers.NewSystemHandler(db)

	req := httptest.NewRequest(http.MethodGet, "/api/system/version", nil)
	w := httptest.NewRecorder()

	handler.Version(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var info version.Info
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if info.Version == "" {
		t.Error("Expected version to be populated")
	}
}
