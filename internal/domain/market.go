package domain

// Address is the structured street address of a registered market.
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
}

// RegisteredMarket is a market stored in the application's own catalog.
// Records are read-only to the matching and optimization engine.
type RegisteredMarket struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	LegalName string   `json:"legalName,omitempty"` // razão social, often noisier than Name
	Address   *Address `json:"address,omitempty"`
}

// ExternalObservation is one raw price record returned by the external
// price-comparison feed. There is no shared identifier with the catalog,
// so the establishment must be reconciled by fuzzy matching.
type ExternalObservation struct {
	EstablishmentName string  `json:"establishmentName"`
	AddressText       string  `json:"addressText"`
	Price             float64 `json:"price"`
	PriceCondition    string  `json:"priceCondition,omitempty"` // e.g. "varejo", "atacado >= 6 un"
}

// AddressComponentHits records which address components of the registered
// market were found inside the observation's free-form address text.
type AddressComponentHits struct {
	Street       bool `json:"street"`
	Number       bool `json:"number"`
	Neighborhood bool `json:"neighborhood"`
}

// MatchResult is the audit artifact of a market identity resolution.
// It is never persisted; callers log it.
type MatchResult struct {
	MatchesName          bool                 `json:"matchesName"`
	MatchesAddress       bool                 `json:"matchesAddress"`
	WouldMatch           bool                 `json:"wouldMatch"`
	NameTokenOverlap     []string             `json:"nameTokenOverlap,omitempty"`
	AddressComponentHits AddressComponentHits `json:"addressComponentHits"`
	TotalAddressHits     int                  `json:"totalAddressHits"`
}

// Product is a catalog product used to drive price-sync queries.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Barcode    string `json:"barcode,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`
}
