package narrative

import (
	"context"

	"github.com/feirou/backend/internal/domain"
)

// Noop is the advisor used when no LLM credential is configured. It
// always reports unavailability, so the deterministic verdict text is
// what callers end up serving.
type Noop struct{}

// NewNoop creates a disabled narrative advisor
func NewNoop() *Noop {
	return &Noop{}
}

// Summarize always fails with ErrNarrativeUnavailable.
func (n *Noop) Summarize(ctx context.Context, metrics domain.VerdictMetrics) (*domain.NarrativeResult, error) {
	return nil, domain.ErrNarrativeUnavailable
}
