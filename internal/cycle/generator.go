package cycle

import (
	"context"
	"fmt"
	"time"

	"github.com/futurizm/futurizm/internal/common"
	"github.com/futurizm/futurizm/internal/llm"
	"github.com/futurizm/futurizm/internal/model"
	"github.com/futurizm/futurizm/internal/service"
)

// DefaultGenerationTimeout bounds a single gateway call. Providers with
// live search enabled can take minutes; without a bound a hung provider
// would stall the whole sequential cycle.
const DefaultGenerationTimeout = 2 * time.Minute

// Generator is the atomic generation unit: one model, one category, one
// gateway call, one store write.
type Generator struct {
	clients map[model.ModelKey]llm.Client
	store   service.Storage
	clock   *Clock
	timeout time.Duration
}

// NewGenerator creates a Generator over the given provider clients.
func NewGenerator(clients map[model.ModelKey]llm.Client, store service.Storage, clock *Clock, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	return &Generator{
		clients: clients,
		store:   store,
		clock:   clock,
		timeout: timeout,
	}
}

// GenerateForModel produces one model's predictions for one category and
// persists them. The returned category may differ from the input when the
// provider chose its own. A store write failure is logged and swallowed:
// the result is still usable by the caller, and the orchestrator's
// verification pass catches the missing record.
func (g *Generator) GenerateForModel(ctx context.Context, key model.ModelKey, category string, topics []string) ([]model.PredictionItem, string, error) {
	if !model.ValidModelKey(key) {
		return nil, "", fmt.Errorf("%w: %q", common.ErrInvalidModelKey, key)
	}

	client, ok := g.clients[key]
	if !ok {
		return nil, "", fmt.Errorf("%w: no client configured for %q", common.ErrInvalidModelKey, key)
	}

	// Resolve the cycle date exactly once so the prompt and the store key
	// cannot disagree across a boundary crossing mid-call.
	date := g.clock.CycleDate()

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := client.Generate(callCtx, llm.GenerationRequest{
		Date:     date,
		Category: category,
		Topics:   topics,
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return nil, "", fmt.Errorf("%w: timed out after %s", common.ErrGenerationFailed, g.timeout)
		}
		return nil, "", err
	}

	items := make([]model.PredictionItem, 0, len(result.Predictions))
	for _, draft := range result.Predictions {
		items = append(items, model.PredictionItem{
			Title:       draft.Title,
			Chance:      draft.Chance,
			ChanceColor: model.ColorForChance(draft.Chance),
			Content:     draft.Content,
		})
	}

	record := &model.Prediction{
		Date:     date,
		Model:    key,
		Category: result.Category,
		Items:    items,
	}
	if err := g.store.UpsertPrediction(ctx, record); err != nil {
		common.LogError(err, "failed to persist prediction, result still returned", common.Fields{
			"model":    key,
			"date":     date,
			"category": result.Category,
		})
	}

	return items, result.Category, nil
}
