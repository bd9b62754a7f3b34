package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/feirou/backend/internal/domain"
)

// Package-level compiled regex pattern for cache-key normalization
var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)

// Client calls the geo routing service to compute travel distance and
// duration between two addresses. An optional cache avoids repeated
// lookups for the same address pair within a request burst.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	cache      domain.CacheRepository
	cacheTTL   time.Duration
	debug      bool
}

// NewClient creates a new geo client. The cache may be nil.
func NewClient(apiKey, baseURL string, cache domain.CacheRepository, cacheTTL time.Duration) *Client {
	if cacheTTL <= 0 {
		cacheTTL = 1 * time.Hour
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		apiKey:   apiKey,
		baseURL:  baseURL,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// Configured reports whether a credential is present. Callers use this
// to pick the "no real data" code path instead of issuing doomed calls.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// ComputeRoute looks up the driving route between two addresses.
func (c *Client) ComputeRoute(ctx context.Context, origin, destination string) (*domain.RouteLeg, error) {
	if !c.Configured() {
		return nil, domain.ErrGeoNotConfigured
	}

	cacheKey := routeCacheKey(origin, destination)
	if leg := c.fromCache(ctx, cacheKey); leg != nil {
		return leg, nil
	}

	endpoint := fmt.Sprintf("%s/v1/routes", c.baseURL)
	params := url.Values{}
	params.Add("origin", origin)
	params.Add("destination", destination)
	params.Add("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s?%s", endpoint, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Feirou/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeoCallFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if c.debug {
			log.Printf("[GEO] status %d for %q -> %q: %s", resp.StatusCode, origin, destination, string(body))
		}
		return nil, fmt.Errorf("%w: status %d", domain.ErrGeoCallFailed, resp.StatusCode)
	}

	var leg domain.RouteLeg
	if err := json.NewDecoder(resp.Body).Decode(&leg); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", domain.ErrGeoCallFailed, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, &leg, c.cacheTTL); err != nil && c.debug {
			log.Printf("[GEO] caching route failed: %v", err)
		}
	}

	if c.debug {
		log.Printf("[GEO] %q -> %q: %.0fm %.0fs", origin, destination, leg.DistanceMeters, leg.DurationSeconds)
	}
	return &leg, nil
}

// fromCache returns a cached leg or nil.
func (c *Client) fromCache(ctx context.Context, key string) *domain.RouteLeg {
	if c.cache == nil {
		return nil
	}
	value, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil
	}
	leg, ok := value.(*domain.RouteLeg)
	if !ok {
		return nil
	}
	return leg
}

// routeCacheKey builds a normalized cache key for an address pair.
// Format: "route:{normalized_origin}:{normalized_destination}"
func routeCacheKey(origin, destination string) string {
	return fmt.Sprintf("route:%s:%s", normalizeForCacheKey(origin), normalizeForCacheKey(destination))
}

// normalizeForCacheKey normalizes a string for use as cache key component.
func normalizeForCacheKey(s string) string {
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	return strings.Join(strings.Fields(result), " ")
}
