package usecase

import (
	"log"
	"strings"

	"github.com/feirou/backend/internal/domain"
)

// Matching thresholds
const (
	minOverlapTokenLen = 3 // tokens shorter than this never count toward name overlap
	shortLegalNameLen  = 2 // legal names with this many significant tokens or fewer need only 1 shared token
	minAddressHits     = 2 // 2 of {street, number, neighborhood}, tolerating formatting drift
)

// MatcherConfig holds configuration for the market matcher
type MatcherConfig struct {
	ExtraStopWords     []string
	EnableDebugLogging bool
}

// MarketMatcher decides whether an external establishment observation
// corresponds to a registered market. It is pure and side-effect-free
// apart from optional debug logging.
type MarketMatcher struct {
	stopWords          map[string]bool
	enableDebugLogging bool
}

// NewMarketMatcher creates a matcher with the corporate stopword list,
// optionally extended from configuration.
func NewMarketMatcher(config MatcherConfig) *MarketMatcher {
	stopWords := make(map[string]bool, len(corporateStopWords)+len(config.ExtraStopWords))
	for w := range corporateStopWords {
		stopWords[w] = true
	}
	for _, w := range config.ExtraStopWords {
		stopWords[normalizeText(strings.TrimSpace(w))] = true
	}

	return &MarketMatcher{
		stopWords:          stopWords,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Match compares a registered market against an external observation.
// Name and address are evaluated independently; both must pass for
// WouldMatch. Malformed or empty observation text yields zero overlap,
// never an error.
func (m *MarketMatcher) Match(market domain.RegisteredMarket, observation domain.ExternalObservation) domain.MatchResult {
	result := domain.MatchResult{}

	// Legal name carries the tokens the price feed tends to echo;
	// fall back to the display name when none is recorded.
	legalName := market.LegalName
	if legalName == "" {
		legalName = market.Name
	}

	marketTokens := significantTokens(tokenize(legalName, m.stopWords), minOverlapTokenLen)
	observationTokens := significantTokens(tokenize(observation.EstablishmentName, m.stopWords), minOverlapTokenLen)

	result.NameTokenOverlap = tokenIntersection(marketTokens, observationTokens)

	required := 2
	if len(marketTokens) <= shortLegalNameLen {
		required = 1
	}
	result.MatchesName = len(result.NameTokenOverlap) >= required

	result.MatchesAddress, result.AddressComponentHits, result.TotalAddressHits = m.matchAddress(market.Address, observation.AddressText)
	result.WouldMatch = result.MatchesName && result.MatchesAddress

	if m.enableDebugLogging {
		log.Printf("[MATCH] market=%q observation=%q overlap=%v addressHits=%d wouldMatch=%v",
			market.Name, observation.EstablishmentName, result.NameTokenOverlap, result.TotalAddressHits, result.WouldMatch)
	}

	return result
}

// matchAddress checks containment of the registered address components in
// the observation's free-form address text. A market with no recorded
// address matches on name alone: the permissive default is deliberate,
// since an absent address cannot be falsified.
func (m *MarketMatcher) matchAddress(address *domain.Address, addressText string) (bool, domain.AddressComponentHits, int) {
	var hits domain.AddressComponentHits

	if address == nil {
		return true, hits, 0
	}

	normalized := normalizeText(addressText)
	observationTokens := strings.Fields(punctuationRegex.ReplaceAllString(normalized, " "))

	hits.Street = componentPresent(address.Street, normalized, observationTokens)
	hits.Number = componentPresent(address.Number, normalized, observationTokens)
	hits.Neighborhood = componentPresent(address.Neighborhood, normalized, observationTokens)

	total := 0
	for _, hit := range []bool{hits.Street, hits.Number, hits.Neighborhood} {
		if hit {
			total++
		}
	}

	return total >= minAddressHits, hits, total
}

// componentPresent reports whether an address component is found in the
// observation text. Numeric tokens must appear as exact tokens (so street
// number 123 does not match 1234); word tokens of 4+ characters are
// substring-checked, which tolerates abbreviated street types ("R" for
// "Rua") and pluralized forms in the feed.
func componentPresent(component, normalizedText string, observationTokens []string) bool {
	component = normalizeText(strings.TrimSpace(component))
	if component == "" {
		return false
	}

	considered := 0
	for _, token := range strings.Fields(punctuationRegex.ReplaceAllString(component, " ")) {
		if isNumericToken(token) {
			considered++
			if !containsToken(observationTokens, token) {
				return false
			}
			continue
		}
		if len([]rune(token)) < 4 {
			continue
		}
		considered++
		if !strings.Contains(normalizedText, token) {
			return false
		}
	}

	// A component made only of short connectors gives no signal; try the
	// whole component as a substring before giving up.
	if considered == 0 {
		return strings.Contains(normalizedText, component)
	}
	return true
}

func containsToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}

// isNumericToken checks if a string contains only digits
func isNumericToken(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
