package cycle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futurizm/futurizm/internal/common"
	"github.com/futurizm/futurizm/internal/llm"
	"github.com/futurizm/futurizm/internal/model"
)

func testGenerator(t *testing.T, client llm.Client) (*Generator, *memoryStore) {
	t.Helper()

	pacific, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	store := newMemoryStore()
	clock := fixedClock(time.Date(2025, 3, 15, 12, 0, 0, 0, pacific))
	clients := map[model.ModelKey]llm.Client{}
	if client != nil {
		for _, key := range model.AllModelKeys() {
			clients[key] = client
		}
	}

	return NewGenerator(clients, store, clock, 0), store
}

func TestGenerateForModel_Success(t *testing.T) {
	client := &mockClient{generate: func(_ int, req llm.GenerationRequest) (llm.GenerationResult, error) {
		assert.Equal(t, "2025-03-15", req.Date)
		assert.Equal(t, "Politics", req.Category)
		return llm.GenerationResult{Category: "Politics", Predictions: validDrafts()}, nil
	}}
	generator, store := testGenerator(t, client)

	items, category, err := generator.GenerateForModel(context.Background(), model.ModelGrok, "Politics", []string{"Election Update"})
	require.NoError(t, err)
	assert.Equal(t, "Politics", category)
	require.Len(t, items, 3)

	// Chance color is derived here, never taken from the provider.
	assert.Equal(t, model.ChanceHigh, items[0].ChanceColor)
	assert.Equal(t, model.ChanceLow, items[1].ChanceColor)
	assert.Equal(t, model.ChanceHigh, items[2].ChanceColor)

	records, err := store.GetPredictionsByDate(context.Background(), "2025-03-15")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.ModelGrok, records[0].Model)
	assert.Equal(t, "Politics", records[0].Category)
}

func TestGenerateForModel_ProviderCategoryWins(t *testing.T) {
	client := &mockClient{generate: func(_ int, _ llm.GenerationRequest) (llm.GenerationResult, error) {
		return llm.GenerationResult{Category: "Elections", Predictions: validDrafts()}, nil
	}}
	generator, store := testGenerator(t, client)

	_, category, err := generator.GenerateForModel(context.Background(), model.ModelGPT, "Politics", nil)
	require.NoError(t, err)
	assert.Equal(t, "Elections", category)

	records, err := store.GetPredictionsByDate(context.Background(), "2025-03-15")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Elections", records[0].Category)
}

func TestGenerateForModel_InvalidKey(t *testing.T) {
	generator, _ := testGenerator(t, &mockClient{generate: func(_ int, _ llm.GenerationRequest) (llm.GenerationResult, error) {
		return llm.GenerationResult{}, errors.New("should not be called")
	}})

	_, _, err := generator.GenerateForModel(context.Background(), "llama", "Politics", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidModelKey)
}

func TestGenerateForModel_NoClientConfigured(t *testing.T) {
	generator, _ := testGenerator(t, nil)

	_, _, err := generator.GenerateForModel(context.Background(), model.ModelGrok, "Politics", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidModelKey)
}

func TestGenerateForModel_GatewayError(t *testing.T) {
	client := &mockClient{generate: func(_ int, _ llm.GenerationRequest) (llm.GenerationResult, error) {
		return llm.GenerationResult{}, fmt.Errorf("%w: provider exploded", common.ErrGenerationFailed)
	}}
	generator, store := testGenerator(t, client)

	_, _, err := generator.GenerateForModel(context.Background(), model.ModelClaude, "Politics", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrGenerationFailed)

	records, readErr := store.GetPredictionsByDate(context.Background(), "2025-03-15")
	require.NoError(t, readErr)
	assert.Empty(t, records, "failed generations must not be persisted")
}

func TestGenerateForModel_Timeout(t *testing.T) {
	client := &mockClient{generate: func(_ int, _ llm.GenerationRequest) (llm.GenerationResult, error) {
		time.Sleep(50 * time.Millisecond)
		return llm.GenerationResult{}, context.DeadlineExceeded
	}}

	pacific, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	clock := fixedClock(time.Date(2025, 3, 15, 12, 0, 0, 0, pacific))
	store := newMemoryStore()
	generator := NewGenerator(map[model.ModelKey]llm.Client{model.ModelGrok: client}, store, clock, time.Millisecond)

	_, _, err = generator.GenerateForModel(context.Background(), model.ModelGrok, "Politics", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrGenerationFailed)
	assert.Contains(t, err.Error(), "timed out")
}

func TestGenerateForModel_StoreFailureSwallowed(t *testing.T) {
	client := &mockClient{generate: func(_ int, _ llm.GenerationRequest) (llm.GenerationResult, error) {
		return llm.GenerationResult{Category: "Politics", Predictions: validDrafts()}, nil
	}}
	generator, store := testGenerator(t, client)
	store.upsertErr = errors.New("disk full")

	// A write failure is logged, not surfaced: the verification pass is
	// responsible for noticing the missing record.
	items, _, err := generator.GenerateForModel(context.Background(), model.ModelGemini, "Politics", nil)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}
