package llm

import (
	"fmt"

	"github.com/futurizm/futurizm/internal/common"
	"github.com/futurizm/futurizm/internal/model"
)

// NewClient creates the provider client for a model key.
// An unknown key is rejected here, before any client is constructed or
// any network call is possible.
func NewClient(key model.ModelKey, cfg Config) (Client, error) {
	switch key {
	case model.ModelGrok:
		return newGrokClient(cfg)
	case model.ModelClaude:
		return newAnthropicClient(cfg)
	case model.ModelGPT:
		return newOpenAIClient(cfg)
	case model.ModelGemini:
		return newGeminiClient(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidModelKey, key)
	}
}
