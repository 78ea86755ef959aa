package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futurizm/futurizm/internal/common"
	"github.com/futurizm/futurizm/internal/model"
)

// cleanMarkdownWrapper strips an optional surrounding markdown code fence
// from a provider response. Providers are told not to fence their output,
// but several do anyway.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	// Drop a language tag like "json" on the opening fence line.
	if idx := strings.Index(content, "\n"); idx != -1 {
		first := strings.TrimSpace(content[:idx])
		if first != "" && !strings.ContainsAny(first, "{[") {
			content = content[idx+1:]
		}
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")

	return strings.TrimSpace(content)
}

// parseGenerationResult parses raw provider text into a validated
// GenerationResult. fallbackCategory is used when the provider omits the
// category field. Every failure mode surfaces as ErrGenerationFailed; the
// orchestrator does not distinguish between them.
func parseGenerationResult(raw, fallbackCategory string) (GenerationResult, error) {
	content := cleanMarkdownWrapper(raw)
	if content == "" {
		return GenerationResult{}, fmt.Errorf("%w: empty response", common.ErrGenerationFailed)
	}

	var result GenerationResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return GenerationResult{}, fmt.Errorf("%w: unparseable response: %v", common.ErrGenerationFailed, err)
	}

	if result.Category == "" {
		result.Category = fallbackCategory
	}

	if err := validateResult(result); err != nil {
		return GenerationResult{}, err
	}

	return result, nil
}

// validateResult enforces the generation schema: exactly three items,
// each with a title, content, and a chance in [0,100].
func validateResult(result GenerationResult) error {
	if len(result.Predictions) != model.PredictionsPerModel {
		return fmt.Errorf("%w: expected %d predictions, got %d",
			common.ErrGenerationFailed, model.PredictionsPerModel, len(result.Predictions))
	}

	for i, p := range result.Predictions {
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("%w: prediction %d missing title", common.ErrGenerationFailed, i+1)
		}
		if strings.TrimSpace(p.Content) == "" {
			return fmt.Errorf("%w: prediction %d missing content", common.ErrGenerationFailed, i+1)
		}
		if p.Chance < 0 || p.Chance > 100 {
			return fmt.Errorf("%w: prediction %d chance %.1f outside [0,100]",
				common.ErrGenerationFailed, i+1, p.Chance)
		}
	}

	return nil
}
