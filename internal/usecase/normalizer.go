package usecase

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// accentFolder strips combining marks after NFD decomposition, so
// "Preço" and "PRECO" normalize to the same token.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// corporateStopWords are generic corporate suffixes and market-sector
// words that carry no discriminating signal when comparing market names.
var corporateStopWords = map[string]bool{
	// Legal suffixes (razão social noise)
	"ltda": true, "me": true, "epp": true, "sa": true, "eireli": true,
	"cia": true, "filial": true, "matriz": true,
	// Sector words shared by nearly every establishment
	"comercio": true, "comercial": true, "industria": true,
	"distribuidora": true, "atacadista": true, "varejista": true,
	"supermercado": true, "supermercados": true, "hipermercado": true,
	"mercado": true, "mercados": true, "mercearia": true,
	"alimentos": true, "produtos": true,
	// Connectors left over after punctuation stripping
	"de": true, "do": true, "da": true, "dos": true, "das": true, "e": true,
}

// normalizeText lowercases and folds diacritics. Folding failures fall
// back to the plain lowercased input.
func normalizeText(s string) string {
	lower := strings.ToLower(s)
	folded, _, err := transform.String(accentFolder, lower)
	if err != nil {
		return lower
	}
	return folded
}

// tokenize splits text into normalized tokens: lowercase, accents folded,
// punctuation removed, stop words dropped. Empty input yields no tokens.
func tokenize(s string, stopWords map[string]bool) []string {
	cleaned := punctuationRegex.ReplaceAllString(normalizeText(s), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if stopWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// significantTokens keeps tokens of at least minLen characters; short
// connectors and stray initials are excluded from overlap decisions.
func significantTokens(tokens []string, minLen int) []string {
	var out []string
	for _, t := range tokens {
		if len([]rune(t)) >= minLen {
			out = append(out, t)
		}
	}
	return out
}

// tokenIntersection returns the tokens present in both lists, deduplicated,
// in first-seen order of the first list.
func tokenIntersection(tokens1, tokens2 []string) []string {
	set := make(map[string]bool, len(tokens2))
	for _, t := range tokens2 {
		set[t] = true
	}

	var matched []string
	seen := make(map[string]bool, len(tokens1))
	for _, t := range tokens1 {
		if set[t] && !seen[t] {
			matched = append(matched, t)
			seen[t] = true
		}
	}
	return matched
}
