package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/futurizm/futurizm/internal/service"
)

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check which models have predictions for a date",
		Long: `Report which of the four models have stored predictions for a cycle
date. With --retry, models that are missing are regenerated with a
generic category before reporting.`,
		RunE: runVerify,
	}

	cmd.Flags().String("date", "", "cycle date to check (YYYY-MM-DD, default: current cycle date)")
	cmd.Flags().Bool("retry", false, "retry generation for missing models")

	return cmd
}

func runVerify(cmd *cobra.Command, _ []string) error {
	date, _ := cmd.Flags().GetString("date")
	retry, _ := cmd.Flags().GetBool("retry")

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	var orchestrator service.Orchestrator
	if retry {
		orchestrator, _, err = createOrchestrator(store)
	} else {
		// The read-only path needs no provider credentials.
		orchestrator, err = createReadOnlyOrchestrator(store)
	}
	if err != nil {
		return err
	}

	if retry {
		result, err := orchestrator.VerifyAndRetry(ctx, date)
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		slog.Info("✅ Verification complete",
			"date", result.Date,
			"summary", result.Summary,
			"verified", result.Verified,
			"retried", result.Retried,
			"failed", result.Failed)
		if !result.AllModelsSucceeded {
			return fmt.Errorf("verification incomplete: %s", result.Summary)
		}
		return nil
	}

	status, err := orchestrator.Status(ctx, date)
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}

	slog.Info("📊 Prediction status",
		"date", status.Date,
		"status", status.Status,
		"summary", status.Summary,
		"present", status.Present,
		"missing", status.Missing)
	return nil
}
