package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/futurizm/futurizm/internal/model"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run one full prediction cycle now",
		Long: `Run the complete daily cycle from the command line: fetch trending
topics, generate predictions from all four models, verify the results
landed in the store, and retry any model that is missing.`,
		RunE: runGenerate,
	}

	cmd.Flags().String("model", "", "generate for a single model only (grok, claude, gpt, gemini)")
	cmd.Flags().String("category", "", "category for single-model generation")
	cmd.Flags().StringSlice("topics", nil, "topics for single-model generation")

	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	orchestrator, generator, err := createOrchestrator(store)
	if err != nil {
		return err
	}

	// Single-model mode bypasses the orchestrator entirely.
	if modelFlag, _ := cmd.Flags().GetString("model"); modelFlag != "" {
		category, _ := cmd.Flags().GetString("category")
		topics, _ := cmd.Flags().GetStringSlice("topics")

		items, effectiveCategory, err := generator.GenerateForModel(ctx, model.ModelKey(modelFlag), category, topics)
		if err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}

		slog.Info("✅ Generation complete", "model", modelFlag, "category", effectiveCategory)
		for _, item := range items {
			slog.Info("Prediction", "title", item.Title, "chance", item.Chance, "color", item.ChanceColor)
		}
		return nil
	}

	slog.Info("🔮 Running full prediction cycle...")

	report, err := orchestrator.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("cycle failed: %w", err)
	}

	for _, result := range report.Results {
		if result.Status == "success" {
			slog.Info("Model succeeded", "model", result.Model, "category", result.Category)
		} else {
			slog.Warn("Model failed", "model", result.Model, "error", result.Error)
		}
	}

	v := report.Verification
	slog.Info("✅ Cycle complete",
		"date", report.Date,
		"trendSource", report.TrendSource,
		"summary", v.Summary,
		"verified", v.Verified,
		"retried", v.Retried,
		"failed", v.Failed)

	if !v.AllModelsSucceeded {
		return fmt.Errorf("cycle incomplete: %s", v.Summary)
	}
	return nil
}
