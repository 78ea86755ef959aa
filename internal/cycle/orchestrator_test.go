package cycle

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futurizm/futurizm/internal/common"
	"github.com/futurizm/futurizm/internal/model"
)

func testOrchestrator(t *testing.T) (*Orchestrator, *mockGenerator, *memoryStore, *[]time.Duration) {
	t.Helper()

	pacific, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	clock := fixedClock(time.Date(2025, 3, 15, 12, 0, 0, 0, pacific))
	store := newMemoryStore()
	generator := newMockGenerator(store, clock)

	var delays []time.Duration
	orchestrator := NewOrchestrator(generator, store, &mockTrends{categories: fourCategories()}, clock).
		WithSleeper(noSleep(&delays)).
		WithRand(rand.New(rand.NewSource(7)))

	return orchestrator, generator, store, &delays
}

func TestRunCycle_AllModelsSucceed(t *testing.T) {
	orchestrator, generator, _, delays := testOrchestrator(t)

	report, err := orchestrator.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2025-03-15", report.Date)
	assert.Equal(t, TrendSourceGoogle, report.TrendSource)
	require.Len(t, report.Results, 4)
	for i, result := range report.Results {
		assert.Equal(t, model.AllModelKeys()[i], result.Model)
		assert.Equal(t, "success", result.Status)
		assert.Len(t, result.Items, 3)
	}

	v := report.Verification
	require.NotNil(t, v)
	assert.Equal(t, model.AllModelKeys(), v.Verified)
	assert.Empty(t, v.Retried)
	assert.Empty(t, v.Failed)
	assert.True(t, v.AllModelsSucceeded)
	assert.Equal(t, "4/4 models have predictions", v.Summary)

	// One generation per model, no backoff.
	for _, key := range model.AllModelKeys() {
		assert.Equal(t, 1, generator.calls[key])
	}
	assert.Empty(t, *delays)
}

func TestRunCycle_AssignsCategoriesInOrder(t *testing.T) {
	orchestrator, generator, _, _ := testOrchestrator(t)

	report, err := orchestrator.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Politics", report.Results[0].Category)
	assert.Equal(t, "Sports", report.Results[1].Category)
	assert.Equal(t, "Business", report.Results[2].Category)
	assert.Equal(t, "Science", report.Results[3].Category)

	assert.Equal(t, fourCategories()[1].Topics, generator.topics[model.ModelClaude][0])
}

func TestRunCycle_TrendFeedFailureFallsBack(t *testing.T) {
	orchestrator, _, _, _ := testOrchestrator(t)
	orchestrator.trends = &mockTrends{err: errors.New("feed down")}

	report, err := orchestrator.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, TrendSourceFallback, report.TrendSource)
	require.Len(t, report.Results, 4)
	for _, result := range report.Results {
		assert.Equal(t, "success", result.Status)
		assert.NotEmpty(t, result.Category)
	}
}

func TestRunCycle_RetriesFailedModelWithCycleCategory(t *testing.T) {
	orchestrator, generator, _, delays := testOrchestrator(t)
	generator.failures[model.ModelClaude] = 1

	report, err := orchestrator.RunCycle(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Results, 4)
	assert.Equal(t, "error", report.Results[1].Status)
	assert.NotEmpty(t, report.Results[1].Error)

	v := report.Verification
	assert.Equal(t, []model.ModelKey{model.ModelGrok, model.ModelGPT, model.ModelGemini}, v.Verified)
	assert.Equal(t, []model.ModelKey{model.ModelClaude}, v.Retried)
	assert.Empty(t, v.Failed)
	assert.True(t, v.AllModelsSucceeded)
	assert.Equal(t, "4/4 models have predictions", v.Summary)

	// The cycle retry reuses the category fetched at cycle start.
	claudeCalls := generator.topics[model.ModelClaude]
	require.Len(t, claudeCalls, 2)
	assert.Equal(t, fourCategories()[1].Topics, claudeCalls[1])

	// First retry attempt succeeded, so no backoff was needed.
	assert.Empty(t, *delays)
}

func TestRunCycle_ModelExhaustsRetries(t *testing.T) {
	orchestrator, generator, _, delays := testOrchestrator(t)
	generator.failures[model.ModelGemini] = -1

	report, err := orchestrator.RunCycle(context.Background())
	require.NoError(t, err)

	v := report.Verification
	assert.Equal(t, []model.ModelKey{model.ModelGrok, model.ModelClaude, model.ModelGPT}, v.Verified)
	assert.Empty(t, v.Retried)
	assert.Equal(t, []model.ModelKey{model.ModelGemini}, v.Failed)
	assert.False(t, v.AllModelsSucceeded)
	assert.Equal(t, "3/4 models have predictions", v.Summary)

	// Initial attempt plus three retry attempts, backing off 2s then 4s.
	assert.Equal(t, 4, generator.calls[model.ModelGemini])
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *delays)
}

func TestRunCycle_VerificationReadFailureRetriesEverything(t *testing.T) {
	orchestrator, generator, store, _ := testOrchestrator(t)
	store.readErr = errors.New("disk gone")

	report, err := orchestrator.RunCycle(context.Background())
	require.NoError(t, err)

	// The store is authoritative: if it cannot be read, nothing counts as
	// verified, and every model goes through the retry pass.
	v := report.Verification
	assert.Empty(t, v.Verified)
	assert.Equal(t, model.AllModelKeys(), v.Retried)
	assert.Empty(t, v.Failed)
	assert.True(t, v.AllModelsSucceeded)

	for _, key := range model.AllModelKeys() {
		assert.Equal(t, 2, generator.calls[key], "initial attempt plus one retry for %s", key)
	}
}

func TestVerifyAndRetry_UsesGenericCategory(t *testing.T) {
	orchestrator, generator, store, _ := testOrchestrator(t)

	// Two models already have records for the date.
	for _, key := range []model.ModelKey{model.ModelGrok, model.ModelGPT} {
		require.NoError(t, store.UpsertPrediction(context.Background(), &model.Prediction{
			Date:     "2025-03-15",
			Model:    key,
			Category: "Politics",
			Items:    validItems(),
		}))
	}

	result, err := orchestrator.VerifyAndRetry(context.Background(), "2025-03-15")
	require.NoError(t, err)

	assert.Equal(t, "2025-03-15", result.Date)
	assert.Equal(t, []model.ModelKey{model.ModelGrok, model.ModelGPT}, result.Verified)
	assert.Equal(t, []model.ModelKey{model.ModelClaude, model.ModelGemini}, result.Retried)
	assert.Empty(t, result.Failed)
	assert.True(t, result.AllModelsSucceeded)

	// The standalone pass always retries with the fixed generic category.
	require.NotEmpty(t, generator.topics[model.ModelClaude])
	assert.Equal(t, []string{"AI Innovation", "Tech Earnings", "Software Updates"}, generator.topics[model.ModelClaude][0])
	assert.Zero(t, generator.calls[model.ModelGrok], "verified models are not regenerated")
}

func TestVerifyAndRetry_DefaultsToCycleDate(t *testing.T) {
	orchestrator, _, _, _ := testOrchestrator(t)

	result, err := orchestrator.VerifyAndRetry(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", result.Date)
}

func TestVerifyAndRetry_ReadFailure(t *testing.T) {
	orchestrator, _, store, _ := testOrchestrator(t)
	store.readErr = errors.New("disk gone")

	_, err := orchestrator.VerifyAndRetry(context.Background(), "2025-03-15")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrVerificationQueryFailed)
}

func TestStatus(t *testing.T) {
	orchestrator, _, store, _ := testOrchestrator(t)

	require.NoError(t, store.UpsertPrediction(context.Background(), &model.Prediction{
		Date:     "2025-03-15",
		Model:    model.ModelGrok,
		Category: "Politics",
		Items:    validItems(),
	}))

	status, err := orchestrator.Status(context.Background(), "2025-03-15")
	require.NoError(t, err)

	assert.Equal(t, "incomplete", status.Status)
	assert.Equal(t, "1/4 models have predictions", status.Summary)
	assert.Equal(t, []model.ModelKey{model.ModelGrok}, status.Present)
	assert.Equal(t, []model.ModelKey{model.ModelClaude, model.ModelGPT, model.ModelGemini}, status.Missing)
	require.Len(t, status.Predictions, 1)
	assert.Equal(t, model.ModelGrok, status.Predictions[0].Model)
}

func TestStatus_Complete(t *testing.T) {
	orchestrator, _, store, _ := testOrchestrator(t)

	for _, key := range model.AllModelKeys() {
		require.NoError(t, store.UpsertPrediction(context.Background(), &model.Prediction{
			Date:     "2025-03-15",
			Model:    key,
			Category: "Politics",
			Items:    validItems(),
		}))
	}

	status, err := orchestrator.Status(context.Background(), "2025-03-15")
	require.NoError(t, err)

	assert.Equal(t, "complete", status.Status)
	assert.Equal(t, "4/4 models have predictions", status.Summary)
	assert.Empty(t, status.Missing)
}

func TestStatus_ReadFailure(t *testing.T) {
	orchestrator, _, store, _ := testOrchestrator(t)
	store.readErr = errors.New("disk gone")

	_, err := orchestrator.Status(context.Background(), "2025-03-15")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrVerificationQueryFailed)
}
