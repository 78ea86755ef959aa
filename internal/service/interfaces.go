// Package service defines the interfaces and shared result types for all
// application services.
package service

import (
	"context"
	"time"

	"github.com/futurizm/futurizm/internal/model"
)

// Storage defines the contract for the prediction persistence layer.
type Storage interface {
	// Prediction operations
	UpsertPrediction(ctx context.Context, p *model.Prediction) error
	GetPredictionsByDate(ctx context.Context, date string) ([]model.Prediction, error)
	ListDates(ctx context.Context) ([]string, error)

	// Like counter, mutated only by the like/unlike endpoint
	IncrementLikes(ctx context.Context, predictionID string) error
	DecrementLikes(ctx context.Context, predictionID string) error

	// Aggregate reporting
	ModelMetrics(ctx context.Context) ([]ModelMetrics, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// TrendSource provides the category/topic pairs a cycle generates against.
type TrendSource interface {
	TrendingCategories(ctx context.Context) ([]model.TrendingCategory, error)
}

// Generator is the atomic "one model, one category" generation unit:
// call the model gateway, derive display fields, persist, and return the
// items plus the effective category.
type Generator interface {
	GenerateForModel(ctx context.Context, key model.ModelKey, category string, topics []string) ([]model.PredictionItem, string, error)
}

// Orchestrator coordinates a full generation cycle and its
// verification/retry passes.
type Orchestrator interface {
	RunCycle(ctx context.Context) (*CycleReport, error)
	VerifyAndRetry(ctx context.Context, date string) (*VerificationResult, error)
	Status(ctx context.Context, date string) (*CycleStatus, error)
}

// ModelResult records the outcome of one model's initial generation
// attempt within a cycle.
type ModelResult struct {
	Model    model.ModelKey         `json:"model"`
	Category string                 `json:"category"`
	Status   string                 `json:"status"` // "success" or "error"
	Items    []model.PredictionItem `json:"predictions,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// VerificationResult is the outcome of a verification/retry pass.
// Verified, Retried and Failed partition the four-model set.
type VerificationResult struct {
	Date               string           `json:"date"`
	Verified           []model.ModelKey `json:"verified"`
	Retried            []model.ModelKey `json:"retried"`
	Failed             []model.ModelKey `json:"failed"`
	AllModelsSucceeded bool             `json:"allModelsSucceeded"`
	Summary            string           `json:"summary"`
}

// CycleReport summarizes one full orchestrator run.
type CycleReport struct {
	Date         string              `json:"date"`
	TrendSource  string              `json:"trendSource"` // "google-trends" or "fallback"
	Results      []ModelResult       `json:"results"`
	Verification *VerificationResult `json:"verification"`
}

// CycleStatus is the read-only presence report for a cycle date.
type CycleStatus struct {
	Date        string           `json:"date"`
	Status      string           `json:"status"` // "complete" or "incomplete"
	Summary     string           `json:"summary"`
	Present     []model.ModelKey `json:"present"`
	Missing     []model.ModelKey `json:"missing"`
	Predictions []StatusRecord   `json:"predictions"`
}

// StatusRecord is the per-record detail included in a CycleStatus.
type StatusRecord struct {
	Model     model.ModelKey `json:"model"`
	Category  string         `json:"category"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ModelMetrics aggregates prediction statistics for one model.
type ModelMetrics struct {
	Model            string `json:"model"`
	TotalPredictions int    `json:"totalPredictions"`
	AverageChance    int    `json:"averageChance"`
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
