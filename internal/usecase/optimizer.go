package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/feirou/backend/internal/domain"
)

// Optimizer is the top-level entry point for a shopping-route
// optimization request. It fans out to the route ranker, assigns each
// list item to its cheapest candidate market, buckets assignments per
// market, and produces the cost/benefit verdict.
type Optimizer struct {
	catalog            domain.CatalogRepository
	ranker             *RouteRanker
	assigner           *PriceAssigner
	analyzer           *CostBenefitAnalyzer
	enableDebugLogging bool
}

// NewOptimizer creates a new optimizer with its collaborators.
func NewOptimizer(
	catalog domain.CatalogRepository,
	ranker *RouteRanker,
	assigner *PriceAssigner,
	analyzer *CostBenefitAnalyzer,
	enableDebugLogging bool,
) *Optimizer {
	return &Optimizer{
		catalog:            catalog,
		ranker:             ranker,
		assigner:           assigner,
		analyzer:           analyzer,
		enableDebugLogging: enableDebugLogging,
	}
}

// Optimize runs the full pipeline. The caller receives either a
// validation error or a complete report; degraded sub-computations show
// up as fallback values inside the report, never as partial output.
func (o *Optimizer) Optimize(ctx context.Context, request domain.OptimizeRequest) (*domain.RouteReport, error) {
	if strings.TrimSpace(request.UserAddress) == "" {
		return nil, fmt.Errorf("%w: user address is required", domain.ErrInvalidRequest)
	}
	if len(request.SelectedMarketIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one market must be selected", domain.ErrInvalidRequest)
	}
	if len(request.Items) == 0 {
		return nil, fmt.Errorf("%w: shopping list has no items", domain.ErrInvalidRequest)
	}

	markets, err := o.catalog.MarketsByIDs(ctx, request.SelectedMarketIDs)
	if err != nil {
		return nil, fmt.Errorf("loading selected markets: %w", err)
	}
	if len(markets) == 0 {
		return nil, fmt.Errorf("%w: selected IDs %v", domain.ErrNoCandidateMarkets, request.SelectedMarketIDs)
	}

	ranked := o.ranker.Rank(ctx, request.UserAddress, markets)

	candidateIDs := make([]string, len(ranked))
	buckets := make(map[string]*domain.MarketAssignment, len(ranked))
	for i, rm := range ranked {
		candidateIDs[i] = rm.Market.ID
		buckets[rm.Market.ID] = &domain.MarketAssignment{
			MarketID:        rm.Market.ID,
			MarketName:      rm.Market.Name,
			DistanceKm:      rm.DistanceKm,
			DurationMinutes: rm.DurationMinutes,
			VisitOrder:      rm.VisitOrder,
		}
	}

	var unassigned []domain.UnassignedItem
	for _, item := range request.Items {
		if len(item.PriceRecords) == 0 {
			item.PriceRecords = o.loadPriceRecords(ctx, item.ProductID, candidateIDs)
		}

		assigned := o.assigner.Assign(item, candidateIDs)
		if assigned == nil {
			unassigned = append(unassigned, domain.UnassignedItem{
				ItemID:    item.ID,
				ProductID: item.ProductID,
				Reason:    "no price records in any selected market",
			})
			continue
		}

		bucket := buckets[assigned.MarketID]
		bucket.Items = append(bucket.Items, domain.AssignedItem{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: assigned.UnitPrice,
			LineTotal: assigned.LineTotal,
			Savings:   assigned.Savings,
		})
		bucket.TotalCost += assigned.LineTotal
		bucket.TotalSavings += assigned.Savings
	}

	report := &domain.RouteReport{UnassignedItems: unassigned}

	// Keep only markets that received items, in visit order, and
	// renumber so the sequence stays dense.
	order := 0
	for _, rm := range ranked {
		bucket := buckets[rm.Market.ID]
		if len(bucket.Items) == 0 {
			continue
		}
		order++
		bucket.VisitOrder = order
		report.OptimizedRoute = append(report.OptimizedRoute, *bucket)
		report.TotalCost += bucket.TotalCost
		report.TotalEstimatedSavings += bucket.TotalSavings
		report.TotalDistanceKm += bucket.DistanceKm
		report.TotalDurationMinutes += bucket.DurationMinutes
	}

	report.Verdict = o.analyzer.Evaluate(ctx, report.TotalEstimatedSavings, report.TotalDistanceKm, report.TotalDurationMinutes)
	report.Summary = report.Verdict.SummaryText

	if o.enableDebugLogging {
		log.Printf("[OPTIMIZE] markets=%d assigned=%d unassigned=%d savings=%.2f worthIt=%v",
			len(report.OptimizedRoute), len(request.Items)-len(unassigned), len(unassigned),
			report.TotalEstimatedSavings, report.Verdict.WorthIt)
	}

	return report, nil
}

// loadPriceRecords pulls an item's price history from the catalog.
// Failures degrade to an empty history (the item is reported unassigned)
// rather than aborting the request.
func (o *Optimizer) loadPriceRecords(ctx context.Context, productID string, marketIDs []string) []domain.PriceRecord {
	if o.catalog == nil {
		return nil
	}
	records, err := o.catalog.PriceRecords(ctx, productID, marketIDs)
	if err != nil {
		log.Printf("[OPTIMIZE] loading price records for product %s failed: %v", productID, err)
		return nil
	}
	return records
}
