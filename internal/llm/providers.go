package llm

import (
	"github.com/futurizm/futurizm/internal/model"
)

// searchVariant selects how a provider's live web search is wired.
// Each provider exposes search through a different request shape, so the
// variant is a tag consumed by that provider's client; anything a client
// does not recognize degrades silently to no search.
type searchVariant int

const (
	searchNone searchVariant = iota
	searchXAI                // search_parameters pinned to the cycle date
	searchAnthropic          // web_search_20250305 tool
	searchOpenAI             // web_search tool on the Responses API
	searchGoogle             // google_search tool
)

// providerSpec is the normalized capability descriptor for one provider.
type providerSpec struct {
	usesStructuredSchema bool
	search               searchVariant
}

var providerSpecs = map[model.ModelKey]providerSpec{
	model.ModelGrok:   {search: searchXAI},
	model.ModelClaude: {search: searchAnthropic},
	model.ModelGPT:    {search: searchOpenAI},
	model.ModelGemini: {usesStructuredSchema: true, search: searchGoogle},
}
