package service_test

import (
	"errors"
	"testing"

	"github.com/finbase/portfolio-engine/internal/apperrors"
	"github.com/finbase/portfolio-engine/internal/model"
	"github.com/finbase/portfolio-engine/internal/testutil"
)

// TestAlertService_EvaluateAlerts tests one evaluation pass.
//
// WHY: Triggering is monotonic and last_checked must advance on every
// pass regardless of outcome, or operators cannot tell a healthy quiet
// alert from one that silently stopped being evaluated.
func TestAlertService_EvaluateAlerts(t *testing.T) {
	now := date("2026-08-21")

	t.Run("price alert fires at or above its threshold", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAlertService(t, db)
		testutil.CreatePrice(t, db, "security-1", 150)
		testutil.NewAlert("user-1", model.AlertPrice).WithSubject("security-1").Above(150).Build(t, db)

		// Execute
		alerts, err := svc.EvaluateAlerts("user-1", now)

		// Assert
		if err != nil {
			t.Fatalf("EvaluateAlerts() returned unexpected error: %v", err)
		}
		if len(alerts) != 1 {
			t.Fatalf("Expected 1 alert, got %d", len(alerts))
		}
		if !alerts[0].IsTriggered {
			t.Error("Expected alert to trigger at the threshold boundary")
		}
		if alerts[0].TriggeredAt == nil {
			t.Error("Expected triggered_at to be stamped")
		}
	})

	t.Run("below condition fires under the threshold", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAlertService(t, db)
		testutil.CreatePrice(t, db, "security-1", 80)
		testutil.NewAlert("user-1", model.AlertPrice).WithSubject("security-1").Below(90).Build(t, db)

		alerts, err := svc.EvaluateAlerts("user-1", now)
		if err != nil {
			t.Fatalf("EvaluateAlerts() returned unexpected error: %v", err)
		}
		if !alerts[0].IsTriggered {
			t.Error("Expected below-condition alert to trigger")
		}
	})

	t.Run("untriggered alert still advances last_checked", func(t *testing.T) {
		// Setup: price well under an above-threshold
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAlertService(t, db)
		testutil.CreatePrice(t, db, "security-1", 100)
		testutil.NewAlert("user-1", model.AlertPrice).WithSubject("security-1").Above(200).Build(t, db)

		// Execute
		alerts, err := svc.EvaluateAlerts("user-1", now)

		// Assert
		if err != nil {
			t.Fatalf("EvaluateAlerts() returned unexpected error: %v", err)
		}
		if alerts[0].IsTriggered {
			t.Error("Expected alert to stay untriggered")
		}
		if alerts[0].LastChecked == nil {
			t.Error("Expected last_checked to advance on a quiet pass")
		}
	})

	t.Run("missing metric skips trigger but still checks", func(t *testing.T) {
		// Setup: no price observation exists for the subject
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAlertService(t, db)
		testutil.NewAlert("user-1", model.AlertPrice).WithSubject("security-1").Above(1).Build(t, db)

		// Execute
		alerts, err := svc.EvaluateAlerts("user-1", now)

		// Assert
		if err != nil {
			t.Fatalf("EvaluateAlerts() returned unexpected error: %v", err)
		}
		if alerts[0].IsTriggered {
			t.Error("Alert must not trigger without a metric")
		}
		if alerts[0].LastChecked == nil {
			t.Error("Expected last_checked to advance even without a metric")
		}
	})

	t.Run("trigger is monotonic once fired", func(t *testing.T) {
		// Setup: fire the alert, then move the metric back under
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAlertService(t, db)
		testutil.CreatePrice(t, db, "security-1", 150)
		testutil.NewAlert("user-1", model.AlertPrice).WithSubject("security-1").Above(140).Build(t, db)

		first, err := svc.EvaluateAlerts("user-1", now)
		if err != nil {
			t.Fatalf("EvaluateAlerts() returned unexpected error: %v", err)
		}
		if !first[0].IsTriggered {
			t.Fatal("Expected alert to trigger on the first pass")
		}

		testutil.CreatePrice(t, db, "security-1", 100)

		// Execute
		second, err := svc.EvaluateAlerts("user-1", now.AddDate(0, 0, 1))

		// Assert
		if err != nil {
			t.Fatalf("EvaluateAlerts() returned unexpected error: %v", err)
		}
		if !second[0].IsTriggered {
			t.Error("Expected alert to stay triggered after the metric receded")
		}
		if !second[0].TriggeredAt.Equal(*first[0].TriggeredAt) {
			t.Error("Expected triggered_at to keep its original timestamp")
		}
	})

	t.Run("inactive alerts are not evaluated", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAlertService(t, db)
		testutil.CreatePrice(t, db, "security-1", 150)
		testutil.NewAlert("user-1", model.AlertPrice).WithSubject("security-1").Above(100).Inactive().Build(t, db)

		alerts, err := svc.EvaluateAlerts("user-1", now)
		if err != nil {
			t.Fatalf("EvaluateAlerts() returned unexpected error: %v", err)
		}
		if len(alerts) != 0 {
			t.Errorf("Expected no evaluated alerts, got %d", len(alerts))
		}
	})

	t.Run("maturity alert counts days to maturity", func(t *testing.T) {
		// Setup: a deposit maturing in 10 days, alert at 30 or fewer
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAlertService(t, db)
		deposit := testutil.NewFixedDeposit("user-1", 10000, 7).
			WithDates("2026-01-01", "2026-08-31").
			Build(t, db)
		testutil.NewAlert("user-1", model.AlertMaturity).WithSubject(deposit.ID).Below(30).Build(t, db)

		// Execute
		alerts, err := svc.EvaluateAlerts("user-1", now)

		// Assert
		if err != nil {
			t.Fatalf("EvaluateAlerts() returned unexpected error: %v", err)
		}
		if !alerts[0].IsTriggered {
			t.Error("Expected maturity alert to trigger inside the window")
		}
	})

	t.Run("goal progress alert reads derived progress", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAlertService(t, db)
		goal := testutil.NewGoal("user-1", 10000).WithCurrentAmount(9000).Build(t, db)
		testutil.NewAlert("user-1", model.AlertGoalProgress).WithSubject(goal.ID).Above(90).Build(t, db)

		alerts, err := svc.EvaluateAlerts("user-1", now)
		if err != nil {
			t.Fatalf("EvaluateAlerts() returned unexpected error: %v", err)
		}
		if !alerts[0].IsTriggered {
			t.Error("Expected goal progress alert to trigger at 90%")
		}
	})

	t.Run("performance alert skips without snapshot history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAlertService(t, db)
		testutil.NewAlert("user-1", model.AlertPerformance).Below(-5).Build(t, db)

		alerts, err := svc.EvaluateAlerts("user-1", now)
		if err != nil {
			t.Fatalf("EvaluateAlerts() returned unexpected error: %v", err)
		}
		if alerts[0].IsTriggered {
			t.Error("Performance alert must not trigger without history")
		}
	})

	t.Run("allocation drift alert reads stored deviation", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAlertService(t, db)
		goals := testutil.NewTestGoalService(t, db)
		testutil.CreateAllocationTarget(t, db, "user-1", model.AssetTypeSecurities, 60, 5)
		err := goals.RefreshAllocations("user-1", []model.AssetTypeSummary{
			{AssetType: model.AssetTypeSecurities, PercentageOfPortfolio: 72},
		})
		if err != nil {
			t.Fatalf("RefreshAllocations() returned unexpected error: %v", err)
		}
		testutil.NewAlert("user-1", model.AlertAllocationDrift).
			WithSubject(model.AssetTypeSecurities).
			Above(10).
			Build(t, db)

		// Execute
		alerts, err := svc.EvaluateAlerts("user-1", now)

		// Assert
		if err != nil {
			t.Fatalf("EvaluateAlerts() returned unexpected error: %v", err)
		}
		if !alerts[0].IsTriggered {
			t.Error("Expected drift alert to trigger at 12% deviation")
		}
	})
}

// TestAlertService_ResetAlert tests external acknowledgement.
//
// WHY: Reset is the only path that clears a trigger, so it must actually
// clear both flag and timestamp, and a reset of an unknown alert must
// surface as not found.
func TestAlertService_ResetAlert(t *testing.T) {
	t.Run("clears trigger state", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAlertService(t, db)
		alert := testutil.NewAlert("user-1", model.AlertPrice).
			WithSubject("security-1").
			Above(100).
			Triggered().
			Build(t, db)

		// Execute
		if err := svc.ResetAlert(alert.ID); err != nil {
			t.Fatalf("ResetAlert() returned unexpected error: %v", err)
		}

		// Assert: next evaluation pass sees it untriggered
		testutil.CreatePrice(t, db, "security-1", 50)
		alerts, err := svc.EvaluateAlerts("user-1", date("2026-08-21"))
		if err != nil {
			t.Fatalf("EvaluateAlerts() returned unexpected error: %v", err)
		}
		if alerts[0].IsTriggered {
			t.Error("Expected reset alert to be untriggered")
		}
		if alerts[0].TriggeredAt != nil {
			t.Error("Expected triggered_at to be cleared")
		}
	})

	t.Run("unknown alert returns not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAlertService(t, db)

		err := svc.ResetAlert("missing")
		if !errors.Is(err, apperrors.ErrAlertNotFound) {
			t.Errorf("Expected ErrAlertNotFound, got %v", err)
		}
	})
}
