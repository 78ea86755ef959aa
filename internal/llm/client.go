// Package llm implements the model gateway: single-shot structured
// generation calls against the four prediction providers.
package llm

import (
	"context"
)

// GenerationRequest carries everything a provider needs for one call.
type GenerationRequest struct {
	Date     string
	Category string
	Topics   []string
}

// PredictionDraft is a raw prediction item as returned by a provider,
// before display fields are derived.
type PredictionDraft struct {
	Title   string  `json:"title"`
	Chance  float64 `json:"chance"`
	Content string  `json:"content"`
}

// GenerationResult is a validated provider response: the category (which
// a provider may override) and exactly three prediction drafts.
type GenerationResult struct {
	Category    string            `json:"category"`
	Predictions []PredictionDraft `json:"predictions"`
}

// Client defines the interface for prediction providers.
// Implementations make exactly one network call per Generate invocation;
// retry policy belongs to the orchestrator, never to the gateway.
type Client interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

// Config holds configuration for a single provider client.
type Config struct {
	APIKey        string
	Model         string
	BaseURL       string
	MaxTokens     int
	DisableSearch bool
}
