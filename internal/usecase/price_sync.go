package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/feirou/backend/internal/domain"
)

// SyncConfig holds configuration for the price-sync pipeline
type SyncConfig struct {
	Concurrency        int
	RadiusKm           int
	PeriodDays         int
	SortOrder          string
	EnableDebugLogging bool
}

// SyncSummary aggregates the outcome of a sync run.
type SyncSummary struct {
	ProductsSynced int `json:"productsSynced"`
	Observations   int `json:"observations"`
	Matched        int `json:"matched"`
	Saved          int `json:"saved"`
	Failures       int `json:"failures"`
}

// PriceSyncService reconciles external price observations against
// registered markets and persists the matched ones as price records.
// This feeds the historical data the optimizer later assigns from.
type PriceSyncService struct {
	catalog            domain.CatalogRepository
	feed               domain.PriceSource
	matcher            *MarketMatcher
	concurrency        int
	radiusKm           int
	periodDays         int
	sortOrder          string
	enableDebugLogging bool
}

// NewPriceSyncService creates a price-sync service with the given
// configuration, filling unset values with conservative defaults.
func NewPriceSyncService(
	catalog domain.CatalogRepository,
	feed domain.PriceSource,
	matcher *MarketMatcher,
	config SyncConfig,
) *PriceSyncService {
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	radius := config.RadiusKm
	if radius <= 0 {
		radius = 10
	}
	period := config.PeriodDays
	if period <= 0 {
		period = 7
	}
	sortOrder := config.SortOrder
	if sortOrder == "" {
		sortOrder = "price"
	}

	return &PriceSyncService{
		catalog:            catalog,
		feed:               feed,
		matcher:            matcher,
		concurrency:        concurrency,
		radiusKm:           radius,
		periodDays:         period,
		sortOrder:          sortOrder,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// SyncProducts runs the sync for the given products with bounded
// concurrency. Per-product failures are counted and logged, never abort
// the run; only a failure to list registered markets is fatal.
func (s *PriceSyncService) SyncProducts(ctx context.Context, products []domain.Product, categoryIDs []string) (*SyncSummary, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: no products to sync", domain.ErrInvalidRequest)
	}

	markets, err := s.catalog.ListMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing registered markets: %w", err)
	}

	var (
		mu      sync.Mutex
		summary SyncSummary
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, product := range products {
		g.Go(func() error {
			observations, matched, saved, err := s.syncProduct(ctx, product, markets, categoryIDs)

			mu.Lock()
			defer mu.Unlock()
			summary.ProductsSynced++
			summary.Observations += observations
			summary.Matched += matched
			summary.Saved += saved
			if err != nil {
				summary.Failures++
				log.Printf("[SYNC] product %s sync degraded: %v", product.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("[SYNC] run complete: products=%d observations=%d matched=%d saved=%d failures=%d",
		summary.ProductsSynced, summary.Observations, summary.Matched, summary.Saved, summary.Failures)
	return &summary, nil
}

// syncProduct queries the feed once per (product, category) combination
// and reconciles each observation against the registered markets. Feed
// failures mean "no observations for this category", not an error.
func (s *PriceSyncService) syncProduct(
	ctx context.Context,
	product domain.Product,
	markets []domain.RegisteredMarket,
	categoryIDs []string,
) (observations, matched, saved int, firstErr error) {
	categories := categoryIDs
	if len(categories) == 0 {
		categories = []string{product.CategoryID}
	}

	for _, categoryID := range categories {
		query := domain.PriceQuery{
			Term:       product.Name,
			CategoryID: categoryID,
			RadiusKm:   s.radiusKm,
			PeriodDays: s.periodDays,
			SortOrder:  s.sortOrder,
			GTIN:       product.Barcode,
		}

		results, err := s.feed.Search(ctx, query)
		if err != nil {
			if !errors.Is(err, domain.ErrNoObservations) && firstErr == nil {
				firstErr = err
			}
			continue
		}

		observations += len(results)
		for _, observation := range results {
			market, result := s.resolveMarket(markets, observation)
			if market == nil {
				continue
			}
			matched++

			record := domain.PriceRecord{
				MarketID:   market.ID,
				UnitPrice:  observation.Price,
				Condition:  observation.PriceCondition,
				RecordedAt: time.Now(),
			}
			if err := s.catalog.SavePriceRecord(ctx, product.ID, record); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			saved++

			if s.enableDebugLogging {
				log.Printf("[SYNC] product=%s matched market=%s overlap=%v addressHits=%d price=%.2f",
					product.ID, market.ID, result.NameTokenOverlap, result.TotalAddressHits, observation.Price)
			}
		}
	}
	return observations, matched, saved, firstErr
}

// resolveMarket returns the first registered market the observation
// matches, with the audit result. Every comparison is audit-logged so a
// reviewer can trace why an observation was or was not attributed.
func (s *PriceSyncService) resolveMarket(markets []domain.RegisteredMarket, observation domain.ExternalObservation) (*domain.RegisteredMarket, domain.MatchResult) {
	for i := range markets {
		result := s.matcher.Match(markets[i], observation)
		if result.WouldMatch {
			return &markets[i], result
		}
	}
	return nil, domain.MatchResult{}
}

// MatchMarket runs a single audit match for one registered market against
// an observation, without persisting anything. Exposed for the audit
// endpoint.
func (s *PriceSyncService) MatchMarket(ctx context.Context, marketID string, observation domain.ExternalObservation) (*domain.MatchResult, error) {
	markets, err := s.catalog.MarketsByIDs(ctx, []string{marketID})
	if err != nil {
		return nil, fmt.Errorf("loading market %s: %w", marketID, err)
	}
	if len(markets) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMarketNotFound, marketID)
	}

	result := s.matcher.Match(markets[0], observation)
	return &result, nil
}
