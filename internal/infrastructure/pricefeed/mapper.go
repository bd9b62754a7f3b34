package pricefeed

import "github.com/feirou/backend/internal/domain"

// searchResponse is the feed's search payload
type searchResponse struct {
	Results []feedResult `json:"results"`
	Total   int          `json:"total"`
}

// feedResult is one raw feed record
type feedResult struct {
	Establishment feedEstablishment `json:"establishment"`
	Price         float64           `json:"price"`
	Condition     string            `json:"condition,omitempty"`
}

type feedEstablishment struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// mapObservations converts raw feed records to domain observations.
// Records priced at zero or below are dropped; the feed emits them for
// out-of-stock listings.
func mapObservations(results []feedResult) []domain.ExternalObservation {
	observations := make([]domain.ExternalObservation, 0, len(results))
	for _, result := range results {
		if result.Price <= 0 {
			continue
		}
		observations = append(observations, domain.ExternalObservation{
			EstablishmentName: result.Establishment.Name,
			AddressText:       result.Establishment.Address,
			Price:             result.Price,
			PriceCondition:    result.Condition,
		})
	}
	return observations
}
