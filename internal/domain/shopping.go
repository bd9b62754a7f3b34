package domain

import "time"

// PriceRecord is one historical unit-price observation for a product at a
// specific market, produced by the price-sync pipeline.
type PriceRecord struct {
	MarketID   string    `json:"marketId"`
	UnitPrice  float64   `json:"unitPrice"`
	Condition  string    `json:"condition,omitempty"`
	RecordedAt time.Time `json:"recordedAt,omitempty"`
}

// ShoppingListItem is an item the user wants to buy. PriceRecords may be
// supplied inline by the caller; when empty the orchestrator loads them
// from the catalog store.
type ShoppingListItem struct {
	ID           string        `json:"id"`
	ProductID    string        `json:"productId"`
	Quantity     float64       `json:"quantity"`
	PriceRecords []PriceRecord `json:"priceRecords,omitempty"`
}

// PriceQuote is the per-market aggregate derived from price history.
type PriceQuote struct {
	MarketID     string  `json:"marketId"`
	AveragePrice float64 `json:"averagePrice"`
	RecordCount  int     `json:"recordCount"`
}

// AssignedPrice is the outcome of assigning one list item to the market
// with the lowest historical average price among the candidates.
type AssignedPrice struct {
	MarketID           string  `json:"marketId"`
	UnitPrice          float64 `json:"unitPrice"` // the winning market's average price
	LineTotal          float64 `json:"lineTotal"`
	Savings            float64 `json:"savings"` // vs. the cross-market average, never negative
	CrossMarketAverage float64 `json:"crossMarketAverage"`
	RecordCount        int     `json:"recordCount"`
}

// RouteLeg is the raw distance/duration returned by the geo provider.
type RouteLeg struct {
	DistanceMeters  float64 `json:"distanceMeters"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// FallbackReason distinguishes how a ranked market got its distance when
// no real geo data was available. An unconfigured provider and a failed
// live call are deliberately separate paths.
type FallbackReason string

const (
	FallbackNone          FallbackReason = ""
	FallbackNoGeoService  FallbackReason = "no_geo_service_configured"
	FallbackGeoCallFailed FallbackReason = "geo_service_call_failed"
)

// RankedMarket is a market ordered by travel distance from the user.
type RankedMarket struct {
	Market          RegisteredMarket `json:"market"`
	DistanceKm      float64          `json:"distanceKm"`
	DurationMinutes float64          `json:"durationMinutes"`
	VisitOrder      int              `json:"visitOrder"`
	Fallback        FallbackReason   `json:"fallback,omitempty"`
}

// AssignedItem is one shopping-list item placed in a market's bucket.
type AssignedItem struct {
	ItemID    string  `json:"itemId"`
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
	Savings   float64 `json:"savings"`
}

// MarketAssignment groups the items to buy at one market, with the
// market's position in the visiting sequence.
type MarketAssignment struct {
	MarketID        string         `json:"marketId"`
	MarketName      string         `json:"marketName"`
	Items           []AssignedItem `json:"items"`
	TotalCost       float64        `json:"totalCost"`
	TotalSavings    float64        `json:"totalSavings"`
	DistanceKm      float64        `json:"distanceKm"`
	DurationMinutes float64        `json:"durationMinutes"`
	VisitOrder      int            `json:"visitOrder"`
}

// UnassignedItem is a list item with no price history in any selected
// market. It is reported explicitly, never silently dropped.
type UnassignedItem struct {
	ItemID    string `json:"itemId"`
	ProductID string `json:"productId"`
	Reason    string `json:"reason"`
}

// RouteVerdict is the cost/benefit breakdown for the multi-market trip.
type RouteVerdict struct {
	WorthIt            bool    `json:"worthIt"`
	TotalSavings       float64 `json:"totalSavings"`
	EstimatedFuelCost  float64 `json:"estimatedFuelCost"`
	EstimatedTimeCost  float64 `json:"estimatedTimeCost"`
	NetBenefit         float64 `json:"netBenefit"`
	SummaryText        string  `json:"summaryText"`
	RecommendationText string  `json:"recommendationText"`
}

// VerdictMetrics is the deterministic verdict handed to the optional
// narrative advisor for rephrasing.
type VerdictMetrics struct {
	TotalSavings         float64 `json:"totalSavings"`
	TotalDistanceKm      float64 `json:"totalDistanceKm"`
	TotalDurationMinutes float64 `json:"totalDurationMinutes"`
	EstimatedFuelCost    float64 `json:"estimatedFuelCost"`
	EstimatedTimeCost    float64 `json:"estimatedTimeCost"`
	NetBenefit           float64 `json:"netBenefit"`
	WorthIt              bool    `json:"worthIt"`
	Summary              string  `json:"summary"`
	Recommendation       string  `json:"recommendation"`
}

// NarrativeResult is the advisor's rephrased verdict.
type NarrativeResult struct {
	WorthIt        bool   `json:"worthIt"`
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
}

// OptimizeRequest is the input to a shopping-route optimization.
type OptimizeRequest struct {
	UserAddress       string             `json:"userAddress"`
	SelectedMarketIDs []string           `json:"selectedMarketIds"`
	Items             []ShoppingListItem `json:"items"`
}

// RouteReport is the complete optimization result returned to the caller.
type RouteReport struct {
	OptimizedRoute        []MarketAssignment `json:"optimizedRoute"`
	UnassignedItems       []UnassignedItem   `json:"unassignedItems"`
	TotalCost             float64            `json:"totalCost"`
	TotalEstimatedSavings float64            `json:"totalEstimatedSavings"`
	TotalDistanceKm       float64            `json:"totalDistanceKm"`
	TotalDurationMinutes  float64            `json:"totalDurationMinutes"`
	Verdict               RouteVerdict       `json:"aiAnalysis"`
	Summary               string             `json:"summary"`
}
