package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/futurizm/futurizm/internal/common"
	"github.com/futurizm/futurizm/internal/config"
	"github.com/futurizm/futurizm/internal/cycle"
	"github.com/futurizm/futurizm/internal/llm"
	"github.com/futurizm/futurizm/internal/model"
	"github.com/futurizm/futurizm/internal/service"
	"github.com/futurizm/futurizm/internal/storage"
	"github.com/futurizm/futurizm/internal/trends"
)

// providerEnvKeys maps each model to the conventional environment
// variable for its API key, checked when the viper config has none.
var providerEnvKeys = map[model.ModelKey]string{
	model.ModelGrok:   "XAI_API_KEY",
	model.ModelClaude: "ANTHROPIC_API_KEY",
	model.ModelGPT:    "OPENAI_API_KEY",
	model.ModelGemini: "GEMINI_API_KEY",
}

// databasePath resolves the sqlite path from config, defaulting to the
// XDG data directory.
func databasePath() (string, error) {
	if dbPath := viper.GetString("database.path"); dbPath != "" {
		return config.ExpandPath(dbPath), nil
	}
	return config.DefaultDatabasePath()
}

// openStorage opens and migrates the sqlite store.
func openStorage() (*storage.SQLiteStorage, error) {
	dbPath, err := databasePath()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// createClients builds one provider client per model key from config.
// Every provider needs a key; a cycle with a misconfigured provider
// would silently produce 3/4 days forever.
func createClients() (map[model.ModelKey]llm.Client, error) {
	clients := make(map[model.ModelKey]llm.Client, len(providerEnvKeys))

	for _, key := range model.AllModelKeys() {
		prefix := fmt.Sprintf("providers.%s", key)

		apiKey := viper.GetString(prefix + ".api_key")
		if apiKey == "" {
			apiKey = os.Getenv(providerEnvKeys[key])
		}
		if apiKey == "" {
			return nil, common.NewUserError(
				fmt.Sprintf("%s API key not found in config or %s environment variable", key, providerEnvKeys[key]),
				common.ErrMissingConfig)
		}

		client, err := llm.NewClient(key, llm.Config{
			APIKey:        apiKey,
			Model:         viper.GetString(prefix + ".model"),
			BaseURL:       viper.GetString(prefix + ".base_url"),
			MaxTokens:     viper.GetInt(prefix + ".max_tokens"),
			DisableSearch: viper.GetBool(prefix + ".disable_search"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s client: %w", key, err)
		}
		clients[key] = client
	}

	return clients, nil
}

// createReadOnlyOrchestrator wires an orchestrator suitable only for
// Status queries, so read paths work without provider credentials.
func createReadOnlyOrchestrator(store service.Storage) (*cycle.Orchestrator, error) {
	clock, err := cycle.NewClock()
	if err != nil {
		return nil, fmt.Errorf("failed to load reference timezone: %w", err)
	}
	return cycle.NewOrchestrator(nil, store, nil, clock), nil
}

// createOrchestrator wires the full cycle pipeline against an open store.
func createOrchestrator(store service.Storage) (*cycle.Orchestrator, *cycle.Generator, error) {
	clients, err := createClients()
	if err != nil {
		return nil, nil, err
	}

	clock, err := cycle.NewClock()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load reference timezone: %w", err)
	}

	generator := cycle.NewGenerator(clients, store, clock, viper.GetDuration("generation.timeout"))
	trendSource := trends.NewGoogleTrends(viper.GetString("trends.feed_url"))
	orchestrator := cycle.NewOrchestrator(generator, store, trendSource, clock)

	return orchestrator, generator, nil
}
