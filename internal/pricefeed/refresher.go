package pricefeed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/finbase/portfolio-engine/internal/model"
	"github.com/finbase/portfolio-engine/internal/repository"
)

// symbolSource lists the security symbols that need price observations.
type symbolSource interface {
	SecurityIDs() ([]string, error)
}

// Refresher pulls latest quotes for every security present in the
// transaction log and upserts them into the price store. Per-symbol
// failures are logged and skipped; Refresh only errors when the whole
// pass cannot start.
type Refresher struct {
	client    *Client
	symbols   symbolSource
	priceRepo *repository.PriceRepository
	log       zerolog.Logger
}

// NewRefresher creates a price refresher.
func NewRefresher(client *Client, symbols symbolSource, priceRepo *repository.PriceRepository, log zerolog.Logger) *Refresher {
	return &Refresher{
		client:    client,
		symbols:   symbols,
		priceRepo: priceRepo,
		log:       log.With().Str("component", "pricefeed").Logger(),
	}
}

// Refresh updates the stored latest price for every known security.
// Security IDs double as feed symbols; the engine carries no separate
// securities master.
func (r *Refresher) Refresh(ctx context.Context) error {
	symbols, err := r.symbols.SecurityIDs()
	if err != nil {
		return fmt.Errorf("failed to list securities: %w", err)
	}

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return err
		}

		quote, err := r.client.LatestQuote(ctx, symbol)
		if err != nil {
			r.log.Warn().Err(err).Str("symbol", symbol).Msg("Quote fetch failed, keeping stored price")
			continue
		}

		err = r.priceRepo.Upsert(model.SecurityPrice{
			SecurityID: quote.Symbol,
			Price:      quote.Price,
			AsOf:       quote.AsOf,
		})
		if err != nil {
			r.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to store quote")
		}
	}

	return nil
}
