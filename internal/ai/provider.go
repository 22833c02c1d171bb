// Package ai generates article summaries through external model
// providers, falling back across providers in a configured order.
package ai

import "context"

// Provider is one summary backend. Complete sends the prompt and
// returns the raw model text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}
