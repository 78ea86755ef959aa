// Package model contains the core domain types for the prediction service.
package model

import "time"

// ModelKey identifies one of the four prediction models.
type ModelKey string

// The four supported models, in the fixed order a cycle attempts them.
const (
	ModelGrok   ModelKey = "grok"
	ModelClaude ModelKey = "claude"
	ModelGPT    ModelKey = "gpt"
	ModelGemini ModelKey = "gemini"
)

// AllModelKeys returns the four model keys in cycle order.
// Callers must not mutate the returned slice.
func AllModelKeys() []ModelKey {
	return []ModelKey{ModelGrok, ModelClaude, ModelGPT, ModelGemini}
}

// ValidModelKey reports whether key is one of the four known models.
func ValidModelKey(key ModelKey) bool {
	switch key {
	case ModelGrok, ModelClaude, ModelGPT, ModelGemini:
		return true
	default:
		return false
	}
}

// ModelInfo describes the provider-side identity of a model key.
type ModelInfo struct {
	APIModel string
	Label    string
	Version  string
}

var modelInfo = map[ModelKey]ModelInfo{
	ModelGrok:   {APIModel: "grok-4", Label: "GROK", Version: "4"},
	ModelClaude: {APIModel: "claude-sonnet-4-5", Label: "CLAUDE", Version: "4.5"},
	ModelGPT:    {APIModel: "gpt-5.2", Label: "GPT", Version: "5"},
	ModelGemini: {APIModel: "gemini-3-pro", Label: "GEMINI", Version: "3"},
}

// InfoFor returns the provider identity for a model key.
// The second return value is false for unknown keys.
func InfoFor(key ModelKey) (ModelInfo, bool) {
	info, ok := modelInfo[key]
	return info, ok
}

// ChanceColor is the display bucket derived from a prediction's chance.
type ChanceColor string

// A chance of 50 or above is "high", anything below is "low".
const (
	ChanceHigh ChanceColor = "high"
	ChanceLow  ChanceColor = "low"
)

// ColorForChance derives the display bucket for a chance percentage.
func ColorForChance(chance float64) ChanceColor {
	if chance >= 50 {
		return ChanceHigh
	}
	return ChanceLow
}

// PredictionItem is a single prediction produced by a model.
// Title is a 3-4 word headline, Chance a 0-100 percentage, Content a
// 25-30 word explanation. ChanceColor is derived, never model-supplied.
type PredictionItem struct {
	Title       string      `json:"title"`
	Chance      float64     `json:"chance"`
	ChanceColor ChanceColor `json:"chanceColor"`
	Content     string      `json:"content"`
}

// PredictionsPerModel is the number of items a valid generation contains.
const PredictionsPerModel = 3

// Prediction is the persisted record of one model's predictions for one
// cycle date and category. The store's conflict key is (Date, Model,
// Category).
type Prediction struct {
	ID         string           `json:"id"`
	Date       string           `json:"date"`
	Model      ModelKey         `json:"model"`
	Category   string           `json:"category"`
	Items      []PredictionItem `json:"predictions"`
	LikesCount int              `json:"likes_count"`
	CreatedAt  time.Time        `json:"created_at"`
}

// TrendingCategory pairs a category label with the topics a model is
// asked to predict on.
type TrendingCategory struct {
	Name   string
	Topics []string
}
