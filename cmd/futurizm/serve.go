package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/futurizm/futurizm/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Start the JSON API used by the daily scheduler and the read surface.

The scheduler hits GET /api/generate once per day; the rest of the API
serves stored predictions, like counters and per-model metrics.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
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

	cfg := server.Config{
		Addr:              viper.GetString("server.addr"),
		CronSecret:        viper.GetString("server.cron_secret"),
		EnforceCronSecret: viper.GetBool("server.enforce_cron_secret"),
	}
	if cfg.EnforceCronSecret && cfg.CronSecret == "" {
		return fmt.Errorf("server.enforce_cron_secret is set but server.cron_secret is empty")
	}

	slog.Info("🔮 Starting futurizm server", "addr", cfg.Addr)

	srv := server.NewServer(cfg, orchestrator, generator, store)
	return srv.Start(ctx)
}
