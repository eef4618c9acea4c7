// internal/chat/budget.go
package chat

import (
	"github.com/mwiater/noteweave/internal/chunker"
	"github.com/mwiater/noteweave/internal/llm"
)

// BudgetLevel is an advisory signal about prompt size. It is never enforced:
// the session sends the prompt regardless.
type BudgetLevel int

const (
	// BudgetOK means the prompt is under 80% of the configured maximum.
	BudgetOK BudgetLevel = iota
	// BudgetWarn means the prompt crossed 80% of the configured maximum.
	BudgetWarn
	// BudgetCritical means the prompt crossed 95% of the configured maximum.
	BudgetCritical
)

// Budget reports the estimated prompt size against the configured maximum.
type Budget struct {
	EstimatedTokens int
	MaxTokens       int
	Ratio           float64
	Level           BudgetLevel
}

// EstimateBudget sums the chars/4 token estimate over the assembled prompt.
func EstimateBudget(messages []llm.Message, maxTokens int) Budget {
	total := 0
	for _, msg := range messages {
		total += chunker.EstimateTokens(msg.Content)
	}

	b := Budget{EstimatedTokens: total, MaxTokens: maxTokens}
	if maxTokens <= 0 {
		return b
	}
	b.Ratio = float64(total) / float64(maxTokens)
	switch {
	case b.Ratio >= 0.95:
		b.Level = BudgetCritical
	case b.Ratio >= 0.8:
		b.Level = BudgetWarn
	}
	return b
}
