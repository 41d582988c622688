package service

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/finbase/portfolio-engine/internal/apperrors"
	"github.com/finbase/portfolio-engine/internal/model"
)

// LedgerService folds a security's transaction stream into a position
// using the weighted-average cost method. There is no per-lot tracking:
// every buy blends into a single running average price.
//
// Replay is strictly ordered by (date, seq) and price-independent; the
// same stream always produces bit-identical results. All valuation happens
// downstream in the ValuationService.
type LedgerService struct {
	log zerolog.Logger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(log zerolog.Logger) *LedgerService {
	return &LedgerService{
		log: log.With().Str("component", "ledger").Logger(),
	}
}

// Apply advances a position by a single transaction and returns the new
// position. The input position is never mutated: a rejected transaction
// (sell exceeding held quantity, non-positive split ratio) returns the
// original position unchanged alongside the error.
//
// Transaction semantics:
//   - "buy":      new_avg = (qty*avg + q*p) / (qty+q); qty += q
//   - "sell":     requires q <= qty; realized += q*(p - avg); qty -= q; avg unchanged
//   - "bonus":    qty += q; cost basis spread over more units (investment unchanged)
//   - "split":    qty *= ratio; avg /= ratio (investment unchanged); ratio > 0
//   - "dividend": cash income only, quantity and average cost untouched
//
// Fees accumulate on the position for all types but never enter the cost
// basis.
func (s *LedgerService) Apply(pos model.Position, t model.Transaction) (model.Position, error) {
	switch t.Type {
	case model.TransactionBuy:
		if t.Quantity > 0 {
			pos.AverageCost = (pos.Quantity*pos.AverageCost + t.Quantity*t.Price) / (pos.Quantity + t.Quantity)
			pos.Quantity += t.Quantity
		}

	case model.TransactionSell:
		if t.Quantity > pos.Quantity {
			return pos, fmt.Errorf("sell of %v against held %v: %w", t.Quantity, pos.Quantity, apperrors.ErrInsufficientQuantity)
		}
		pos.RealizedPnL += t.Quantity * (t.Price - pos.AverageCost)
		pos.Quantity -= t.Quantity
		if pos.Quantity == 0 {
			pos.AverageCost = 0
		}

	case model.TransactionBonus:
		// A zero-quantity bonus is a recorded no-op, not an error.
		if t.Quantity > 0 {
			newQuantity := pos.Quantity + t.Quantity
			pos.AverageCost = pos.Quantity * pos.AverageCost / newQuantity
			pos.Quantity = newQuantity
		}

	case model.TransactionSplit:
		ratio := t.SplitRatio()
		if ratio <= 0 {
			return pos, fmt.Errorf("split ratio %v: %w", ratio, apperrors.ErrInvalidRatio)
		}
		pos.Quantity *= ratio
		pos.AverageCost /= ratio

	case model.TransactionDividend:
		pos.DividendIncome += t.DividendAmount()

	default:
		return pos, fmt.Errorf("type %q: %w", t.Type, apperrors.ErrUnknownTransactionType)
	}

	pos.TotalFees += t.Fees
	pos.LastReplayedSeq = t.Seq

	if pos.Quantity < 0 {
		// Cannot be reached through the sell guard above; a negative
		// quantity here means corrupted input survived validation.
		return pos, fmt.Errorf("quantity %v after seq %d: %w", pos.Quantity, t.Seq, apperrors.ErrNegativeQuantity)
	}

	return pos, nil
}

// Replay folds a full transaction stream into a position from scratch.
// Transactions that violate a business rule are logged and skipped, so a
// single bad entry never poisons the rest of the ledger; appends are
// validated strictly before insertion, so skips here indicate data that
// predates validation.
func (s *LedgerService) Replay(transactions []model.Transaction) model.Position {
	return s.ReplayFrom(model.Position{}, transactions)
}

// ReplayFrom folds transactions on top of an existing position. Passing
// the position stored at a holding's last replayed sequence plus the
// transactions after that sequence must equal a full from-scratch replay;
// this is the incremental recompute contract.
func (s *LedgerService) ReplayFrom(pos model.Position, transactions []model.Transaction) model.Position {
	for _, t := range sortLedger(transactions) {
		next, err := s.Apply(pos, t)
		if err != nil {
			s.log.Warn().
				Err(err).
				Str("transaction", t.ID).
				Str("type", t.Type).
				Int64("seq", t.Seq).
				Msg("Skipping invalid ledger entry")
			continue
		}
		pos = next
	}

	return pos
}

// ReplayStrict folds a stream and stops at the first rule violation.
// Used to validate a candidate stream before an append is committed.
func (s *LedgerService) ReplayStrict(transactions []model.Transaction) (model.Position, error) {
	pos := model.Position{}
	for _, t := range sortLedger(transactions) {
		next, err := s.Apply(pos, t)
		if err != nil {
			return model.Position{}, err
		}
		pos = next
	}

	return pos, nil
}

// sortLedger returns the stream in replay order: date ascending, insertion
// sequence as the tie-breaker. The sort is stable and total, so iteration
// order of the input can never change the replayed result.
func sortLedger(transactions []model.Transaction) []model.Transaction {
	sorted := slices.Clone(transactions)
	slices.SortStableFunc(sorted, func(a, b model.Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		default:
			return 0
		}
	})
	return sorted
}
