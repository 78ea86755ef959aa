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

const defaultAnthropicBaseURL = "https://api.anthropic.com"

// anthropicClient implements the Client interface for the Anthropic API.
type anthropicClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	search     searchVariant
}

// newAnthropicClient creates a new Anthropic API client.
func newAnthropicClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", common.ErrMissingConfig)
	}

	m := cfg.Model
	if m == "" {
		if info, ok := model.InfoFor(model.ModelClaude); ok {
			m = info.APIModel
		}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	search := providerSpecs[model.ModelClaude].search
	if cfg.DisableSearch {
		search = searchNone
	}

	return &anthropicClient{
		apiKey:    cfg.APIKey,
		model:     m,
		baseURL:   baseURL,
		maxTokens: maxTokens,
		search:    search,
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

// Generate sends a single generation request to Anthropic.
func (c *anthropicClient) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	requestBody := map[string]any{
		"model":      c.model,
		"max_tokens": c.maxTokens,
		"system":     systemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": buildPrompt(req)},
		},
	}

	if c.search == searchAnthropic {
		requestBody["tools"] = []map[string]any{
			{
				"type":     "web_search_20250305",
				"name":     "web_search",
				"max_uses": 5,
				"user_location": map[string]string{
					"type":     "approximate",
					"country":  "US",
					"region":   "California",
					"city":     "San Francisco",
					"timezone": "America/Los_Angeles",
				},
			},
		}
	} else if c.search != searchNone {
		slog.Debug("unrecognized search variant for claude, proceeding without search", "variant", int(c.search))
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("%w: failed to marshal request: %v", common.ErrGenerationFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", strings.NewReader(string(jsonBody)))
	if err != nil {
		return GenerationResult{}, fmt.Errorf("%w: failed to create request: %v", common.ErrGenerationFailed, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

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
		return GenerationResult{}, fmt.Errorf("%w: anthropic API error (status %d): %s", common.ErrGenerationFailed, resp.StatusCode, string(body))
	}

	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return GenerationResult{}, fmt.Errorf("%w: failed to parse response: %v", common.ErrGenerationFailed, err)
	}

	// Web search runs interleave tool-use blocks with text blocks; the
	// final answer is the concatenation of the text blocks.
	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return GenerationResult{}, fmt.Errorf("%w: no text content in response", common.ErrGenerationFailed)
	}

	return parseGenerationResult(text.String(), req.Category)
}
