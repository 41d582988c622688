package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/finbase/portfolio-engine/internal/model"
	"github.com/finbase/portfolio-engine/internal/repository"
)

// RecomputeService orchestrates the full derivation pipeline for a user:
// replay every ledger, revalue holdings against the latest prices, roll
// up asset-type summaries, snapshot the portfolio total, and refresh goal
// and allocation state.
//
// Everything it writes is derived from the immutable transaction log plus
// latest prices, so a pass is safe to re-run from scratch after a crash.
// Users are independent units of work and run in parallel; within a user,
// each (account, security) ledger replays sequentially.
type RecomputeService struct {
	transactionRepo *repository.TransactionRepository
	holdingRepo     *repository.HoldingRepository
	priceRepo       *repository.PriceRepository
	depositRepo     *repository.DepositRepository
	assetRepo       *repository.AssetRepository
	summaryRepo     *repository.SummaryRepository

	ledger      *LedgerService
	valuation   *ValuationService
	aggregation *AggregationService
	performance *PerformanceService
	goals       *GoalService
	alerts      *AlertService

	workers int
	log     zerolog.Logger

	// keyLocks serializes transaction appends per ledger key so concurrent
	// writers cannot interleave partial validate-then-insert sequences.
	keyMu    sync.Mutex
	keyLocks map[model.HoldingKey]*sync.Mutex
}

// NewRecomputeService creates a new RecomputeService with the provided dependencies.
func NewRecomputeService(
	transactionRepo *repository.TransactionRepository,
	holdingRepo *repository.HoldingRepository,
	priceRepo *repository.PriceRepository,
	depositRepo *repository.DepositRepository,
	assetRepo *repository.AssetRepository,
	summaryRepo *repository.SummaryRepository,
	ledger *LedgerService,
	valuation *ValuationService,
	aggregation *AggregationService,
	performance *PerformanceService,
	goals *GoalService,
	alerts *AlertService,
	workers int,
	log zerolog.Logger,
) *RecomputeService {
	return &RecomputeService{
		transactionRepo: transactionRepo,
		holdingRepo:     holdingRepo,
		priceRepo:       priceRepo,
		depositRepo:     depositRepo,
		assetRepo:       assetRepo,
		summaryRepo:     summaryRepo,
		ledger:          ledger,
		valuation:       valuation,
		aggregation:     aggregation,
		performance:     performance,
		goals:           goals,
		alerts:          alerts,
		workers:         workers,
		log:             log.With().Str("component", "recompute").Logger(),
		keyLocks:        make(map[model.HoldingKey]*sync.Mutex),
	}
}

// RecomputeUser re-derives all of one user's state as of now.
func (s *RecomputeService) RecomputeUser(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	today := time.Now().UTC()

	ledgers, err := s.transactionRepo.GetUserLedgers(userID)
	if err != nil {
		return fmt.Errorf("failed to load ledgers: %w", err)
	}

	keys := make([]model.HoldingKey, 0, len(ledgers))
	securityIDs := make([]string, 0, len(ledgers))
	for key := range ledgers {
		keys = append(keys, key)
		securityIDs = append(securityIDs, key.SecurityID)
	}
	// Deterministic replay order across runs.
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].AccountID != keys[j].AccountID {
			return keys[i].AccountID < keys[j].AccountID
		}
		return keys[i].SecurityID < keys[j].SecurityID
	})

	prices, err := s.priceRepo.GetLatest(securityIDs)
	if err != nil {
		return fmt.Errorf("failed to load prices: %w", err)
	}

	holdings := make([]model.Holding, 0, len(keys))
	for _, key := range keys {
		position := s.ledger.Replay(ledgers[key])

		holding := model.Holding{
			UserID:     key.UserID,
			AccountID:  key.AccountID,
			SecurityID: key.SecurityID,
			Position:   position,
		}
		holding = s.valuation.Revalue(holding, lastPriceFor(prices, key.SecurityID))

		if err := s.holdingRepo.Upsert(holding); err != nil {
			return fmt.Errorf("failed to persist holding: %w", err)
		}

		holdings = append(holdings, holding)
	}

	deposits, err := s.depositRepo.GetByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to load deposits: %w", err)
	}

	assets, err := s.assetRepo.GetByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to load physical assets: %w", err)
	}

	summaries, total := s.aggregation.Aggregate(userID, holdings, deposits, assets, today)

	if err := s.summaryRepo.Replace(userID, summaries); err != nil {
		return fmt.Errorf("failed to persist summaries: %w", err)
	}

	if err := s.performance.Snapshot(total, today); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}

	if err := s.goals.RefreshGoals(userID, total.TotalValue, today); err != nil {
		return fmt.Errorf("failed to refresh goals: %w", err)
	}

	if err := s.goals.RefreshAllocations(userID, summaries); err != nil {
		return fmt.Errorf("failed to refresh allocations: %w", err)
	}

	return nil
}

// RecomputeAll recomputes every user with transaction history using a
// bounded worker pool, one user per worker at a time. A failing user is
// logged and skipped so it cannot block or corrupt the others; it will be
// retried on the next scheduled pass. Returns the number of failed users.
func (s *RecomputeService) RecomputeAll(ctx context.Context) (int, error) {
	userIDs, err := s.transactionRepo.GetUserIDs()
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	var failed atomic.Int64

	g := &errgroup.Group{}
	g.SetLimit(s.workers)

	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			if err := s.RecomputeUser(ctx, userID); err != nil {
				failed.Add(1)
				s.log.Error().
					Err(err).
					Str("user", userID).
					Msg("User recompute failed, will retry next cycle")
			}
			return nil
		})
	}

	// Workers swallow per-user errors; Wait only surfaces cancellation.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return int(failed.Load()), err
	}

	return int(failed.Load()), nil
}

// EvaluateAllAlerts runs an alert evaluation pass for every user holding
// active alerts, with the same isolate-and-continue behavior as
// RecomputeAll. Returns the number of users whose pass failed.
func (s *RecomputeService) EvaluateAllAlerts(ctx context.Context, alertRepo *repository.AlertRepository) (int, error) {
	userIDs, err := alertRepo.GetUserIDs()
	if err != nil {
		return 0, fmt.Errorf("failed to list alert users: %w", err)
	}

	now := time.Now().UTC()
	failed := 0

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		if _, err := s.alerts.EvaluateAlerts(userID, now); err != nil {
			failed++
			s.log.Error().
				Err(err).
				Str("user", userID).
				Msg("Alert evaluation failed, will retry next cycle")
		}
	}

	return failed, nil
}

// AppendTransaction validates and stores a new ledger entry, then updates
// the affected holding incrementally. Validation replays the candidate
// stream strictly, so a sell exceeding the held quantity or an invalid
// split ratio is rejected before anything is written and the position is
// left untouched.
//
// Appends for the same (user, account, security) key serialize on a
// per-key lock; appends for different keys proceed independently.
func (s *RecomputeService) AppendTransaction(t model.Transaction) (model.Transaction, error) {
	key := model.HoldingKey{UserID: t.UserID, AccountID: t.AccountID, SecurityID: t.SecurityID}

	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.transactionRepo.GetLedger(key)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to load ledger: %w", err)
	}

	// Provisional sequence for ordering; the insert assigns the real one
	// under the same lock, so they agree.
	candidate := t
	candidate.Seq = nextSeq(existing)

	position, err := s.ledger.ReplayStrict(append(append([]model.Transaction{}, existing...), candidate))
	if err != nil {
		return model.Transaction{}, err
	}

	stored, err := s.transactionRepo.Append(t)
	if err != nil {
		return model.Transaction{}, err
	}

	prices, err := s.priceRepo.GetLatest([]string{key.SecurityID})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to load price: %w", err)
	}

	holding := model.Holding{
		UserID:     key.UserID,
		AccountID:  key.AccountID,
		SecurityID: key.SecurityID,
		Position:   position,
	}
	holding = s.valuation.Revalue(holding, lastPriceFor(prices, key.SecurityID))

	if err := s.holdingRepo.Upsert(holding); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to persist holding: %w", err)
	}

	return stored, nil
}

// lockFor returns the append lock for a ledger key, creating it on first use.
func (s *RecomputeService) lockFor(key model.HoldingKey) *sync.Mutex {
	s.keyMu.Lock()
	defer s.keyMu.Unlock()

	lock, ok := s.keyLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.keyLocks[key] = lock
	}

	return lock
}

// nextSeq returns the sequence number the next append will receive.
func nextSeq(transactions []model.Transaction) int64 {
	var maxSeq int64
	for _, t := range transactions {
		if t.Seq > maxSeq {
			maxSeq = t.Seq
		}
	}
	return maxSeq + 1
}

// lastPriceFor extracts a holding's latest price as a nullable value.
func lastPriceFor(prices map[string]model.SecurityPrice, securityID string) *float64 {
	if price, ok := prices[securityID]; ok {
		return &price.Price
	}
	return nil
}
