package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/futurizm/futurizm/internal/common"
	"github.com/futurizm/futurizm/internal/model"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// geminiClient implements the Client interface for the Gemini API. It is
// the one provider that supports schema-constrained output directly, so
// the response is requested as JSON conforming to the prediction schema
// rather than free text.
type geminiClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	search     searchVariant
	structured bool
}

// geminiResponseSchema constrains the generated output to the prediction
// shape. Gemini enforces it server-side; the shared validator still runs
// afterwards so the store can never see a malformed record.
var geminiResponseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"category": map[string]any{"type": "string"},
		"predictions": map[string]any{
			"type":     "array",
			"minItems": model.PredictionsPerModel,
			"maxItems": model.PredictionsPerModel,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":   map[string]any{"type": "string"},
					"chance":  map[string]any{"type": "number"},
					"content": map[string]any{"type": "string"},
				},
				"required": []string{"title", "chance", "content"},
			},
		},
	},
	"required": []string{"predictions"},
}

// newGeminiClient creates a new Gemini API client.
func newGeminiClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", common.ErrMissingConfig)
	}

	m := cfg.Model
	if m == "" {
		if info, ok := model.InfoFor(model.ModelGemini); ok {
			m = info.APIModel
		}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	spec := providerSpecs[model.ModelGemini]
	search := spec.search
	if cfg.DisableSearch {
		search = searchNone
	}

	return &geminiClient{
		apiKey:     cfg.APIKey,
		model:      m,
		baseURL:    baseURL,
		maxTokens:  maxTokens,
		search:     search,
		structured: spec.usesStructuredSchema,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Generate sends a single generation request to Gemini.
func (c *geminiClient) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	generationConfig := map[string]any{
		"maxOutputTokens": c.maxTokens,
	}
	if c.structured {
		generationConfig["responseMimeType"] = "application/json"
		generationConfig["responseSchema"] = geminiResponseSchema
	}

	requestBody := map[string]any{
		"systemInstruction": map[string]any{
			"parts": []map[string]string{{"text": systemPrompt}},
		},
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": buildPrompt(req)}},
			},
		},
		"generationConfig": generationConfig,
	}

	if c.search == searchGoogle {
		requestBody["tools"] = []map[string]any{
			{"google_search": map[string]any{}},
		}
	} else if c.search != searchNone {
		slog.Debug("unrecognized search variant for gemini, proceeding without search", "variant", int(c.search))
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("%w: failed to marshal request: %v", common.ErrGenerationFailed, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(jsonBody)))
	if err != nil {
		return GenerationResult{}, fmt.Errorf("%w: failed to create request: %v", common.ErrGenerationFailed, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("%w: request failed: %v", common.ErrGenerationFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("%w: failed to read response: %v", common.ErrGenerationFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return GenerationResult{}, fmt.Errorf("%w: gemini API error (status %d): %s", common.ErrGenerationFailed, resp.StatusCode, string(body))
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return GenerationResult{}, fmt.Errorf("%w: failed to parse response: %v", common.ErrGenerationFailed, err)
	}

	if len(response.Candidates) == 0 {
		return GenerationResult{}, fmt.Errorf("%w: no candidates returned", common.ErrGenerationFailed)
	}

	var text strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return parseGenerationResult(text.String(), req.Category)
}
