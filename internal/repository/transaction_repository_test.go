package repository_test

import (
	"testing"
	"time"

	"github.com/finbase/portfolio-engine/internal/model"
	"github.com/finbase/portfolio-engine/internal/repository"
	"github.com/finbase/portfolio-engine/internal/testutil"
)

// TestTransactionRepository_Append tests sequence number assignment.
//
// WHY: Sequence numbers are the same-date tie-breaker for replay, so
// they must be gap-free and monotonic per ledger key while independent
// ledgers number independently.
func TestTransactionRepository_Append(t *testing.T) {
	t.Run("assigns monotonic per-ledger sequence numbers", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		base := model.Transaction{
			UserID:     "user-1",
			AccountID:  "account-1",
			SecurityID: "security-1",
			Type:       model.TransactionBuy,
			Date:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Quantity:   10,
			Price:      100,
		}

		// Execute
		first, err := repo.Append(base)
		if err != nil {
			t.Fatalf("Append() returned unexpected error: %v", err)
		}
		second, err := repo.Append(base)
		if err != nil {
			t.Fatalf("Append() returned unexpected error: %v", err)
		}

		// Assert
		if first.Seq != 1 || second.Seq != 2 {
			t.Errorf("Expected seqs 1 and 2, got %d and %d", first.Seq, second.Seq)
		}
	})

	t.Run("independent ledgers number independently", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		testutil.NewTransaction("user-1").Build(t, db)
		testutil.NewTransaction("user-1").Build(t, db)

		// Execute: first entry of a different security
		other, err := repo.Append(model.Transaction{
			UserID:     "user-1",
			AccountID:  "account-1",
			SecurityID: "security-2",
			Type:       model.TransactionBuy,
			Date:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Quantity:   5,
			Price:      50,
		})

		// Assert
		if err != nil {
			t.Fatalf("Append() returned unexpected error: %v", err)
		}
		if other.Seq != 1 {
			t.Errorf("Expected fresh ledger to start at seq 1, got %d", other.Seq)
		}
	})
}

// TestTransactionRepository_GetLedger tests the replay ordering contract.
//
// WHY: Replay applies the returned slice front to back, so the query must
// deliver (date, seq) ascending regardless of insertion order, including
// backdated entries inserted after later-dated ones.
func TestTransactionRepository_GetLedger(t *testing.T) {
	key := model.HoldingKey{UserID: "user-1", AccountID: "account-1", SecurityID: "security-1"}

	t.Run("orders by date then seq", func(t *testing.T) {
		// Setup: inserted out of date order
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		testutil.NewTransaction("user-1").Buy(10, 100).OnDate("2026-03-01").Build(t, db)
		testutil.NewTransaction("user-1").Buy(10, 120).OnDate("2026-01-01").Build(t, db)
		testutil.NewTransaction("user-1").Sell(5, 150).OnDate("2026-01-01").Build(t, db)

		// Execute
		ledger, err := repo.GetLedger(key)

		// Assert: backdated buy first, same-date sell by seq, then March
		if err != nil {
			t.Fatalf("GetLedger() returned unexpected error: %v", err)
		}
		if len(ledger) != 3 {
			t.Fatalf("Expected 3 transactions, got %d", len(ledger))
		}
		if got := ledger[0].Date.Format("2006-01-02"); got != "2026-01-01" {
			t.Errorf("Expected first entry on 2026-01-01, got %s", got)
		}
		if ledger[0].Seq >= ledger[1].Seq {
			t.Errorf("Expected same-date entries ordered by seq, got %d then %d", ledger[0].Seq, ledger[1].Seq)
		}
		if got := ledger[2].Date.Format("2006-01-02"); got != "2026-03-01" {
			t.Errorf("Expected last entry on 2026-03-01, got %s", got)
		}
	})

	t.Run("since filter returns only later sequences", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		testutil.NewTransaction("user-1").Buy(10, 100).OnDate("2026-01-01").Build(t, db)
		testutil.NewTransaction("user-1").Buy(10, 120).OnDate("2026-02-01").Build(t, db)

		tail, err := repo.GetLedgerSince(key, 1)
		if err != nil {
			t.Fatalf("GetLedgerSince() returned unexpected error: %v", err)
		}
		if len(tail) != 1 || tail[0].Seq != 2 {
			t.Errorf("Expected only seq 2, got %+v", tail)
		}
	})

	t.Run("empty ledger returns empty slice", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		ledger, err := repo.GetLedger(key)
		if err != nil {
			t.Fatalf("GetLedger() returned unexpected error: %v", err)
		}
		if len(ledger) != 0 {
			t.Errorf("Expected empty ledger, got %d entries", len(ledger))
		}
	})
}

// TestTransactionRepository_GetUserLedgers tests per-key grouping.
//
// WHY: The recompute pipeline replays each (account, security) ledger
// independently, so grouping must split on the full key, not just the
// security.
func TestTransactionRepository_GetUserLedgers(t *testing.T) {
	// Setup: same security held in two accounts plus another user's data
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)

	testutil.NewTransaction("user-1").ForSecurity("account-1", "security-1").Build(t, db)
	testutil.NewTransaction("user-1").ForSecurity("account-2", "security-1").Build(t, db)
	testutil.NewTransaction("user-1").ForSecurity("account-1", "security-2").Build(t, db)
	testutil.NewTransaction("user-2").Build(t, db)

	// Execute
	ledgers, err := repo.GetUserLedgers("user-1")

	// Assert
	if err != nil {
		t.Fatalf("GetUserLedgers() returned unexpected error: %v", err)
	}
	if len(ledgers) != 3 {
		t.Errorf("Expected 3 ledger keys, got %d", len(ledgers))
	}
	for key, ledger := range ledgers {
		if key.UserID != "user-1" {
			t.Errorf("Found foreign user %s in ledgers", key.UserID)
		}
		if len(ledger) != 1 {
			t.Errorf("Expected 1 entry for %v, got %d", key, len(ledger))
		}
	}
}
