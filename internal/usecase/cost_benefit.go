package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/feirou/backend/internal/domain"
)

// Default cost model values, applied when configuration leaves a field
// zero or negative.
const (
	defaultFuelPricePerLiter        = 5.5
	defaultFuelEfficiencyKmPerLiter = 10.0
	defaultHourlyTimeValue          = 30.0
)

// CostModel holds the pricing assumptions behind the worth-it verdict.
type CostModel struct {
	FuelPricePerLiter        float64
	FuelEfficiencyKmPerLiter float64
	HourlyTimeValue          float64
}

// DefaultCostModel returns the documented default pricing assumptions.
func DefaultCostModel() CostModel {
	return CostModel{
		FuelPricePerLiter:        defaultFuelPricePerLiter,
		FuelEfficiencyKmPerLiter: defaultFuelEfficiencyKmPerLiter,
		HourlyTimeValue:          defaultHourlyTimeValue,
	}
}

// CostBenefitAnalyzer turns total savings, distance, and duration into a
// worth-it verdict with a numeric breakdown. The advisor is optional and
// best-effort: it may rephrase the two text fields, nothing else.
type CostBenefitAnalyzer struct {
	model              CostModel
	advisor            domain.NarrativeAdvisor
	enableDebugLogging bool
}

// NewCostBenefitAnalyzer creates an analyzer, filling unset cost-model
// fields with the defaults.
func NewCostBenefitAnalyzer(model CostModel, advisor domain.NarrativeAdvisor, enableDebugLogging bool) *CostBenefitAnalyzer {
	if model.FuelPricePerLiter <= 0 {
		model.FuelPricePerLiter = defaultFuelPricePerLiter
	}
	if model.FuelEfficiencyKmPerLiter <= 0 {
		model.FuelEfficiencyKmPerLiter = defaultFuelEfficiencyKmPerLiter
	}
	if model.HourlyTimeValue <= 0 {
		model.HourlyTimeValue = defaultHourlyTimeValue
	}

	return &CostBenefitAnalyzer{
		model:              model,
		advisor:            advisor,
		enableDebugLogging: enableDebugLogging,
	}
}

// Evaluate computes the verdict. WorthIt requires a strictly positive net
// benefit; exactly breaking even is not worth the trip.
func (a *CostBenefitAnalyzer) Evaluate(ctx context.Context, totalSavings, totalDistanceKm, totalDurationMinutes float64) domain.RouteVerdict {
	fuelCost := (totalDistanceKm / a.model.FuelEfficiencyKmPerLiter) * a.model.FuelPricePerLiter
	timeCost := (totalDurationMinutes / 60) * a.model.HourlyTimeValue
	netBenefit := totalSavings - fuelCost - timeCost

	verdict := domain.RouteVerdict{
		WorthIt:           netBenefit > 0,
		TotalSavings:      totalSavings,
		EstimatedFuelCost: fuelCost,
		EstimatedTimeCost: timeCost,
		NetBenefit:        netBenefit,
	}
	verdict.SummaryText, verdict.RecommendationText = deterministicText(verdict)

	if a.advisor != nil {
		a.applyNarrative(ctx, &verdict, totalDistanceKm, totalDurationMinutes)
	}

	return verdict
}

// deterministicText produces the two fixed message variants keyed on the
// verdict, with no external dependency.
func deterministicText(v domain.RouteVerdict) (summary, recommendation string) {
	if v.WorthIt {
		summary = fmt.Sprintf(
			"Splitting purchases across the selected markets is worth the trip: estimated savings of R$ %.2f outweigh fuel (R$ %.2f) and time (R$ %.2f) costs by R$ %.2f.",
			v.TotalSavings, v.EstimatedFuelCost, v.EstimatedTimeCost, v.NetBenefit)
		recommendation = "Follow the suggested visit order to capture the lowest recorded price for each item."
		return
	}
	summary = fmt.Sprintf(
		"Visiting multiple markets is not worth it: fuel (R$ %.2f) and time (R$ %.2f) costs cancel out the estimated savings of R$ %.2f.",
		v.EstimatedFuelCost, v.EstimatedTimeCost, v.TotalSavings)
	recommendation = "Buy everything at the nearest market from your selection instead of splitting the trip."
	return
}

// applyNarrative asks the advisor to rephrase the summary and
// recommendation. Any failure or empty field keeps the deterministic
// text; the verdict numbers are never touched.
func (a *CostBenefitAnalyzer) applyNarrative(ctx context.Context, verdict *domain.RouteVerdict, totalDistanceKm, totalDurationMinutes float64) {
	result, err := a.advisor.Summarize(ctx, domain.VerdictMetrics{
		TotalSavings:         verdict.TotalSavings,
		TotalDistanceKm:      totalDistanceKm,
		TotalDurationMinutes: totalDurationMinutes,
		EstimatedFuelCost:    verdict.EstimatedFuelCost,
		EstimatedTimeCost:    verdict.EstimatedTimeCost,
		NetBenefit:           verdict.NetBenefit,
		WorthIt:              verdict.WorthIt,
		Summary:              verdict.SummaryText,
		Recommendation:       verdict.RecommendationText,
	})
	if err != nil || result == nil {
		if a.enableDebugLogging {
			log.Printf("[AI] narrative advisor unavailable, keeping deterministic text: %v", err)
		}
		return
	}

	if result.Summary != "" {
		verdict.SummaryText = result.Summary
	}
	if result.Recommendation != "" {
		verdict.RecommendationText = result.Recommendation
	}
}
