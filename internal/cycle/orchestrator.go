package cycle

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/futurizm/futurizm/internal/common"
	"github.com/futurizm/futurizm/internal/model"
	"github.com/futurizm/futurizm/internal/service"
	"github.com/futurizm/futurizm/internal/trends"
)

// Trend source labels reported in a cycle summary.
const (
	TrendSourceGoogle   = "google-trends"
	TrendSourceFallback = "fallback"
)

// maxRetryAttempts bounds the retry pass per missing model.
const maxRetryAttempts = 3

// retryBaseDelay seeds the exponential backoff: 2s after the first failed
// attempt, 4s after the second, nothing after the last.
const retryBaseDelay = 2 * time.Second

// genericRetryCategory is the fixed category/topic set used by the
// standalone verification endpoint's retry pass. The cycle-triggered
// retry pass reuses the categories fetched at cycle start instead; the
// two paths intentionally differ.
var genericRetryCategory = model.TrendingCategory{
	Name:   "Technology",
	Topics: []string{"AI Innovation", "Tech Earnings", "Software Updates"},
}

// retryTopics resolves the category/topic pair to use when retrying one
// model. It is a strategy value so the two retry call sites can keep
// their distinct behaviors without duplicating the retry loop.
type retryTopics func(key model.ModelKey) model.TrendingCategory

// Orchestrator coordinates a full prediction cycle: generate all four
// models sequentially, verify against the store, retry only the missing.
type Orchestrator struct {
	generator service.Generator
	store     service.Storage
	trends    service.TrendSource
	clock     *Clock
	sleep     common.Sleeper
	rng       *rand.Rand
}

// NewOrchestrator creates an Orchestrator with default backoff sleeping
// and time-seeded fallback randomness.
func NewOrchestrator(generator service.Generator, store service.Storage, trendSource service.TrendSource, clock *Clock) *Orchestrator {
	return &Orchestrator{
		generator: generator,
		store:     store,
		trends:    trendSource,
		clock:     clock,
		sleep:     common.DefaultSleeper,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithSleeper overrides the backoff sleeper, for tests.
func (o *Orchestrator) WithSleeper(sleep common.Sleeper) *Orchestrator {
	o.sleep = sleep
	return o
}

// WithRand overrides the fallback-selection randomness source, for tests.
func (o *Orchestrator) WithRand(rng *rand.Rand) *Orchestrator {
	o.rng = rng
	return o
}

// RunCycle executes one full generation cycle for the current cycle date.
// Per-model failures never abort the cycle; the report always covers all
// four models.
func (o *Orchestrator) RunCycle(ctx context.Context) (*service.CycleReport, error) {
	date := o.clock.CycleDate()

	categories, trendSource := o.resolveCategories(ctx)

	// Generating: all four models, fixed order, sequential. Failures are
	// recorded, never propagated.
	keys := model.AllModelKeys()
	results := make([]service.ModelResult, 0, len(keys))
	assigned := make(map[model.ModelKey]model.TrendingCategory, len(keys))

	for i, key := range keys {
		category := o.categoryAt(categories, i)
		assigned[key] = category

		result := service.ModelResult{Model: key, Category: category.Name}

		items, effectiveCategory, err := o.generator.GenerateForModel(ctx, key, category.Name, category.Topics)
		if err != nil {
			result.Status = "error"
			result.Error = err.Error()
			slog.Error("initial generation failed", "model", key, "category", category.Name, "error", err)
		} else {
			result.Status = "success"
			result.Items = items
			result.Category = effectiveCategory
		}

		results = append(results, result)
	}

	// Verifying + Retrying. The cycle path retries with the categories
	// fetched above rather than the generic set.
	verification := o.verifyAndRetry(ctx, date, func(key model.ModelKey) model.TrendingCategory {
		if category, ok := assigned[key]; ok {
			return category
		}
		return genericRetryCategory
	})

	return &service.CycleReport{
		Date:         date,
		TrendSource:  trendSource,
		Results:      results,
		Verification: verification,
	}, nil
}

// VerifyAndRetry runs only the verification/retry phase against existing
// store state for a date, using the fixed generic category for every
// retried model. An empty date means the current cycle date.
func (o *Orchestrator) VerifyAndRetry(ctx context.Context, date string) (*service.VerificationResult, error) {
	if date == "" {
		date = o.clock.CycleDate()
	}

	// Unlike the cycle path, a read failure here is surfaced: the caller
	// asked specifically about stored state we cannot see.
	if _, err := o.store.GetPredictionsByDate(ctx, date); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrVerificationQueryFailed, err)
	}

	return o.verifyAndRetry(ctx, date, func(model.ModelKey) model.TrendingCategory {
		return genericRetryCategory
	}), nil
}

// Status reports which models have stored predictions for a date without
// generating anything. An empty date means the current cycle date.
func (o *Orchestrator) Status(ctx context.Context, date string) (*service.CycleStatus, error) {
	if date == "" {
		date = o.clock.CycleDate()
	}

	records, err := o.store.GetPredictionsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrVerificationQueryFailed, err)
	}

	present := make(map[model.ModelKey]bool, len(records))
	statusRecords := make([]service.StatusRecord, 0, len(records))
	for _, record := range records {
		present[record.Model] = true
		statusRecords = append(statusRecords, service.StatusRecord{
			Model:     record.Model,
			Category:  record.Category,
			CreatedAt: record.CreatedAt,
		})
	}

	var presentKeys, missingKeys []model.ModelKey
	for _, key := range model.AllModelKeys() {
		if present[key] {
			presentKeys = append(presentKeys, key)
		} else {
			missingKeys = append(missingKeys, key)
		}
	}

	status := "incomplete"
	if len(missingKeys) == 0 {
		status = "complete"
	}

	return &service.CycleStatus{
		Date:        date,
		Status:      status,
		Summary:     summaryLine(len(presentKeys)),
		Present:     presentKeys,
		Missing:     missingKeys,
		Predictions: statusRecords,
	}, nil
}

// verifyAndRetry is the shared verification/retry pass. The store read is
// authoritative: in-memory generation results are not trusted, because a
// "successful" generation may have had its write swallowed. A failed read
// conservatively treats all four models as unverified and retries them all.
func (o *Orchestrator) verifyAndRetry(ctx context.Context, date string, topicsFor retryTopics) *service.VerificationResult {
	present := make(map[model.ModelKey]bool)

	records, err := o.store.GetPredictionsByDate(ctx, date)
	if err != nil {
		slog.Error("verification query failed, assuming all models unverified", "date", date, "error", err)
	} else {
		for _, record := range records {
			present[record.Model] = true
		}
	}

	var verified, retried, failed []model.ModelKey
	for _, key := range model.AllModelKeys() {
		if present[key] {
			verified = append(verified, key)
			continue
		}

		if o.retryModel(ctx, key, topicsFor(key)) {
			retried = append(retried, key)
		} else {
			failed = append(failed, key)
		}
	}

	return &service.VerificationResult{
		Date:               date,
		Verified:           verified,
		Retried:            retried,
		Failed:             failed,
		AllModelsSucceeded: len(failed) == 0,
		Summary:            summaryLine(len(verified) + len(retried)),
	}
}

// retryModel attempts one missing model up to maxRetryAttempts times with
// exponential backoff. A retry counts as success only when the generation
// returns no error and a non-empty item list.
func (o *Orchestrator) retryModel(ctx context.Context, key model.ModelKey, category model.TrendingCategory) bool {
	opts := service.RetryOptions{
		MaxAttempts:  maxRetryAttempts,
		InitialDelay: retryBaseDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	err := common.WithRetrySleeper(ctx, func() error {
		items, _, genErr := o.generator.GenerateForModel(ctx, key, category.Name, category.Topics)
		if genErr != nil {
			return genErr
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: no predictions returned", common.ErrGenerationFailed)
		}
		return nil
	}, opts, o.sleep)

	if err != nil {
		slog.Error("model failed all retry attempts", "model", key, "attempts", maxRetryAttempts, "error", err)
		return false
	}

	slog.Info("model succeeded on retry", "model", key, "category", category.Name)
	return true
}

// resolveCategories fetches trending categories, falling back to a
// randomized selection from the local catalog when the feed fails.
func (o *Orchestrator) resolveCategories(ctx context.Context) ([]model.TrendingCategory, string) {
	categories, err := o.trends.TrendingCategories(ctx)
	if err != nil || len(categories) == 0 {
		slog.Warn("trending topics unavailable, using random fallback categories", "error", err)
		return trends.Fallbacks(o.rng, len(model.AllModelKeys())), TrendSourceFallback
	}
	return categories, TrendSourceGoogle
}

// categoryAt returns the i-th resolved category, drawing a random
// fallback when the list is short.
func (o *Orchestrator) categoryAt(categories []model.TrendingCategory, i int) model.TrendingCategory {
	if i < len(categories) {
		return categories[i]
	}
	return trends.Fallbacks(o.rng, 1)[0]
}

func summaryLine(succeeded int) string {
	return fmt.Sprintf("%d/%d models have predictions", succeeded, len(model.AllModelKeys()))
}
