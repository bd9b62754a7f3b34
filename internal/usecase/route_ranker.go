package usecase

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/feirou/backend/internal/domain"
)

// Fallback values when a live geo lookup fails for one market.
const (
	fallbackDistanceKm      = 5.0
	fallbackDurationMinutes = 15.0
)

// Randomized estimate bounds used when no geo service is configured at
// all. The jitter is intentional: it signals "no real data" to anyone
// reviewing a route, as opposed to the fixed constant of a single failed
// lookup.
const (
	randomEstimateMinKm     = 1.0
	randomEstimateMaxKm     = 10.0
	randomMinutesPerKmDrive = 3.0
)

// RouteRanker orders candidate markets by travel distance from the
// user's origin address, issuing one geo lookup per market concurrently.
type RouteRanker struct {
	routes             domain.RouteProvider
	enableDebugLogging bool
}

// NewRouteRanker creates a new route ranker. A nil provider behaves like
// an unconfigured one.
func NewRouteRanker(routes domain.RouteProvider, enableDebugLogging bool) *RouteRanker {
	return &RouteRanker{routes: routes, enableDebugLogging: enableDebugLogging}
}

// Rank looks up distance and duration for every market concurrently,
// sorts ascending by distance, and assigns 1-based visit order. Lookups
// are fully isolated: one market's failure degrades only that market to
// the fixed fallback, never the batch. Results are collected only after
// all lookups settle.
func (r *RouteRanker) Rank(ctx context.Context, origin string, markets []domain.RegisteredMarket) []domain.RankedMarket {
	ranked := make([]domain.RankedMarket, len(markets))

	if r.routes == nil || !r.routes.Configured() {
		for i, market := range markets {
			distance := randomEstimateMinKm + rand.Float64()*(randomEstimateMaxKm-randomEstimateMinKm)
			ranked[i] = domain.RankedMarket{
				Market:          market,
				DistanceKm:      distance,
				DurationMinutes: distance * randomMinutesPerKmDrive,
				Fallback:        domain.FallbackNoGeoService,
			}
		}
		if r.enableDebugLogging {
			log.Printf("[GEO] no geo service configured, using randomized estimates for %d markets", len(markets))
		}
	} else {
		var wg sync.WaitGroup
		for i, market := range markets {
			wg.Add(1)
			go func(i int, market domain.RegisteredMarket) {
				defer wg.Done()
				ranked[i] = r.lookupMarket(ctx, origin, market)
			}(i, market)
		}
		wg.Wait()
	}

	// Stable sort keeps input order on equal distances.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	for i := range ranked {
		ranked[i].VisitOrder = i + 1
	}

	return ranked
}

// lookupMarket performs a single geo lookup, degrading to the fixed
// fallback on any error. Failures are logged, never propagated.
func (r *RouteRanker) lookupMarket(ctx context.Context, origin string, market domain.RegisteredMarket) domain.RankedMarket {
	leg, err := r.routes.ComputeRoute(ctx, origin, destinationAddress(market))
	if err != nil || leg == nil {
		if r.enableDebugLogging {
			log.Printf("[GEO] lookup failed for market %s, using fixed fallback: %v", market.ID, err)
		}
		return domain.RankedMarket{
			Market:          market,
			DistanceKm:      fallbackDistanceKm,
			DurationMinutes: fallbackDurationMinutes,
			Fallback:        domain.FallbackGeoCallFailed,
		}
	}

	return domain.RankedMarket{
		Market:          market,
		DistanceKm:      leg.DistanceMeters / 1000,
		DurationMinutes: leg.DurationSeconds / 60,
	}
}

// destinationAddress renders a market's address for the geo provider,
// falling back to the market name when no address is recorded.
func destinationAddress(market domain.RegisteredMarket) string {
	if market.Address == nil {
		return market.Name
	}

	parts := make([]string, 0, 3)
	if market.Address.Street != "" {
		street := market.Address.Street
		if market.Address.Number != "" {
			street = fmt.Sprintf("%s, %s", street, market.Address.Number)
		}
		parts = append(parts, street)
	}
	if market.Address.Neighborhood != "" {
		parts = append(parts, market.Address.Neighborhood)
	}
	if len(parts) == 0 {
		return market.Name
	}
	return strings.Join(parts, " - ")
}
