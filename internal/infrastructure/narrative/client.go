package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/feirou/backend/internal/domain"
)

// Client rephrases the deterministic route verdict through a
// chat-completions style LLM API. Every failure resolves to
// ErrNarrativeUnavailable; callers keep the deterministic text.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	debug      bool
}

// NewClient creates a new narrative advisor client
func NewClient(apiKey, baseURL, model string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize asks the model to rewrite the verdict in friendly Portuguese.
// The model must answer with a JSON object; anything else is an error.
func (c *Client) Summarize(ctx context.Context, metrics domain.VerdictMetrics) (*domain.NarrativeResult, error) {
	prompt := buildPrompt(metrics)

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNarrativeUnavailable, err)
	}

	endpoint := fmt.Sprintf("%s/v1/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNarrativeUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.debug {
			log.Printf("[AI] request error: %v", err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrNarrativeUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		if c.debug {
			log.Printf("[AI] status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("%w: status %d", domain.ErrNarrativeUnavailable, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("%w: malformed response", domain.ErrNarrativeUnavailable)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", domain.ErrNarrativeUnavailable)
	}

	content := stripCodeFence(chatResp.Choices[0].Message.Content)

	var result domain.NarrativeResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		if c.debug {
			log.Printf("[AI] unparseable content: %s", content)
		}
		return nil, fmt.Errorf("%w: unparseable content", domain.ErrNarrativeUnavailable)
	}

	if c.debug {
		log.Printf("[AI] rephrased verdict worthIt=%t", result.WorthIt)
	}
	return &result, nil
}

func buildPrompt(m domain.VerdictMetrics) string {
	var sb strings.Builder
	sb.WriteString("You are a shopping assistant for Brazilian grocery buyers. ")
	sb.WriteString("Rewrite the following trip verdict as a short, friendly message in Portuguese. ")
	sb.WriteString("Do not change the decision or any number. ")
	sb.WriteString("Answer only with a JSON object with the keys worthIt (boolean), summary (string) and recommendation (string).\n\n")
	fmt.Fprintf(&sb, "Decision: worth it = %t\n", m.WorthIt)
	fmt.Fprintf(&sb, "Estimated savings: R$ %.2f\n", m.TotalSavings)
	fmt.Fprintf(&sb, "Fuel cost: R$ %.2f\n", m.EstimatedFuelCost)
	fmt.Fprintf(&sb, "Time cost: R$ %.2f\n", m.EstimatedTimeCost)
	fmt.Fprintf(&sb, "Net benefit: R$ %.2f\n", m.NetBenefit)
	fmt.Fprintf(&sb, "Total distance: %.1f km\n", m.TotalDistanceKm)
	fmt.Fprintf(&sb, "Total duration: %.0f minutes\n", m.TotalDurationMinutes)
	fmt.Fprintf(&sb, "Current summary: %s\n", m.Summary)
	fmt.Fprintf(&sb, "Current recommendation: %s\n", m.Recommendation)
	return sb.String()
}

// stripCodeFence removes a surrounding ```json ... ``` block when the
// model wraps its answer in markdown.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
