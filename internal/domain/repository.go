package domain

import (
	"context"
	"time"
)

// CatalogRepository is the read-mostly catalog store. The engine reads
// markets, products, and price history; only the price-sync pipeline
// writes, and only price records.
type CatalogRepository interface {
	ListMarkets(ctx context.Context) ([]RegisteredMarket, error)
	MarketsByIDs(ctx context.Context, ids []string) ([]RegisteredMarket, error)
	ListProducts(ctx context.Context) ([]Product, error)
	PriceRecords(ctx context.Context, productID string, marketIDs []string) ([]PriceRecord, error)
	SavePriceRecord(ctx context.Context, productID string, record PriceRecord) error
}

// PriceQuery are the search parameters for the external price feed.
type PriceQuery struct {
	Term       string
	CategoryID string
	RadiusKm   int
	PeriodDays int
	SortOrder  string
	GTIN       string
}

// PriceSource is the external price-comparison feed.
type PriceSource interface {
	Search(ctx context.Context, query PriceQuery) ([]ExternalObservation, error)
}

// RouteProvider computes travel distance/duration between two addresses.
// Configured reports whether a credential is present; callers treat an
// unconfigured provider differently from a failed live call.
type RouteProvider interface {
	Configured() bool
	ComputeRoute(ctx context.Context, origin, destination string) (*RouteLeg, error)
}

// NarrativeAdvisor optionally rephrases the deterministic verdict text.
// Implementations must be best-effort; any error means "keep the
// deterministic text".
type NarrativeAdvisor interface {
	Summarize(ctx context.Context, metrics VerdictMetrics) (*NarrativeResult, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
