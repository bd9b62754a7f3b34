package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/feirou/backend/internal/domain"
)

// Client handles communication with the external price-comparison feed
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new price feed client
func NewClient(apiKey, baseURL string) *Client {
	// The public feed allows roughly 2 requests per second per key.
	limiter := rate.NewLimiter(rate.Limit(2), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// exponentialBackoff returns the wait before the next retry attempt.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Feirou/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPriceFeedFailure, err)
	}

	return resp, nil
}

// Search queries the feed for price observations matching the query.
// Non-2xx responses and malformed payloads resolve to ErrNoObservations
// rather than a hard failure; callers skip the query and move on.
func (c *Client) Search(ctx context.Context, query domain.PriceQuery) ([]domain.ExternalObservation, error) {
	if c.debug {
		log.Printf("[FEED] Search term=%q category=%q gtin=%q", query.Term, query.CategoryID, query.GTIN)
	}

	endpoint := fmt.Sprintf("%s/v1/prices/search", c.baseURL)
	params := url.Values{}
	params.Add("term", query.Term)
	params.Add("api_key", c.apiKey)
	if query.CategoryID != "" {
		params.Add("category", query.CategoryID)
	}
	if query.RadiusKm > 0 {
		params.Add("radius_km", strconv.Itoa(query.RadiusKm))
	}
	if query.PeriodDays > 0 {
		params.Add("period_days", strconv.Itoa(query.PeriodDays))
	}
	if query.SortOrder != "" {
		params.Add("sort", query.SortOrder)
	}
	if query.GTIN != "" {
		params.Add("gtin", query.GTIN)
	}

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if c.debug {
				log.Printf("[FEED] request error (attempt %d): %v", attempt, err)
			}
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[FEED] status %d (attempt %d): %s", resp.StatusCode, attempt, string(body))
			}
			if resp.StatusCode == http.StatusNotFound {
				return nil, domain.ErrNoObservations
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrPriceFeedFailure, resp.StatusCode)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		var searchResp searchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			if c.debug {
				log.Printf("[FEED] malformed response for %q: %v", query.Term, err)
			}
			return nil, fmt.Errorf("%w: malformed response", domain.ErrNoObservations)
		}

		if len(searchResp.Results) == 0 {
			return nil, domain.ErrNoObservations
		}

		if c.debug {
			log.Printf("[FEED] %d observations for %q", len(searchResp.Results), query.Term)
		}
		return mapObservations(searchResp.Results), nil
	}

	return nil, lastErr
}
