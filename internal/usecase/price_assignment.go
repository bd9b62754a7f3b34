package usecase

import (
	"log"

	"github.com/feirou/backend/internal/domain"
)

// PriceAssigner picks, for one shopping-list item, the candidate market
// with the lowest historical average price. Pure and side-effect-free
// apart from optional debug logging.
type PriceAssigner struct {
	enableDebugLogging bool
}

// NewPriceAssigner creates a new price assigner
func NewPriceAssigner(enableDebugLogging bool) *PriceAssigner {
	return &PriceAssigner{enableDebugLogging: enableDebugLogging}
}

// Assign computes per-market average prices from the item's history,
// restricted to the candidate market set, and returns the cheapest
// market's assignment. Returns nil when no candidate market has any
// record; the caller reports the item as unassigned.
//
// Ties on the minimum average break toward the smallest market ID so the
// result does not depend on candidate iteration order.
func (a *PriceAssigner) Assign(item domain.ShoppingListItem, candidateMarketIDs []string) *domain.AssignedPrice {
	candidates := make(map[string]bool, len(candidateMarketIDs))
	for _, id := range candidateMarketIDs {
		candidates[id] = true
	}

	// History outside the candidate set is irrelevant and must be ignored.
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, record := range item.PriceRecords {
		if !candidates[record.MarketID] {
			continue
		}
		sums[record.MarketID] += record.UnitPrice
		counts[record.MarketID]++
	}

	if len(counts) == 0 {
		return nil
	}

	var (
		bestMarketID string
		bestAverage  float64
		bestCount    int
		averageSum   float64
	)
	for _, marketID := range candidateMarketIDs {
		count, ok := counts[marketID]
		if !ok {
			continue
		}
		average := sums[marketID] / float64(count)
		averageSum += average

		if bestMarketID == "" || average < bestAverage ||
			(average == bestAverage && marketID < bestMarketID) {
			bestMarketID = marketID
			bestAverage = average
			bestCount = count
		}
	}

	// Cross-market average is the mean of per-market averages, not a
	// global mean of raw records.
	crossMarketAverage := averageSum / float64(len(counts))

	savings := (crossMarketAverage - bestAverage) * item.Quantity
	if savings < 0 {
		savings = 0
	}

	if a.enableDebugLogging {
		log.Printf("[ASSIGN] item=%s product=%s market=%s avg=%.2f crossAvg=%.2f savings=%.2f",
			item.ID, item.ProductID, bestMarketID, bestAverage, crossMarketAverage, savings)
	}

	return &domain.AssignedPrice{
		MarketID:           bestMarketID,
		UnitPrice:          bestAverage,
		LineTotal:          bestAverage * item.Quantity,
		Savings:            savings,
		CrossMarketAverage: crossMarketAverage,
		RecordCount:        bestCount,
	}
}

// Quotes returns the per-market price aggregates for an item, restricted
// to the candidate set, in candidate order. Useful for audit output.
func (a *PriceAssigner) Quotes(item domain.ShoppingListItem, candidateMarketIDs []string) []domain.PriceQuote {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	candidates := make(map[string]bool, len(candidateMarketIDs))
	for _, id := range candidateMarketIDs {
		candidates[id] = true
	}
	for _, record := range item.PriceRecords {
		if !candidates[record.MarketID] {
			continue
		}
		sums[record.MarketID] += record.UnitPrice
		counts[record.MarketID]++
	}

	var quotes []domain.PriceQuote
	for _, marketID := range candidateMarketIDs {
		count, ok := counts[marketID]
		if !ok {
			continue
		}
		quotes = append(quotes, domain.PriceQuote{
			MarketID:     marketID,
			AveragePrice: sums[marketID] / float64(count),
			RecordCount:  count,
		})
	}
	return quotes
}
