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

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// openAIClient implements the Client interface for the OpenAI Responses
// API, which is where OpenAI exposes its hosted web_search tool.
type openAIClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	search     searchVariant
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}

	m := cfg.Model
	if m == "" {
		if info, ok := model.InfoFor(model.ModelGPT); ok {
			m = info.APIModel
		}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	search := providerSpecs[model.ModelGPT].search
	if cfg.DisableSearch {
		search = searchNone
	}

	return &openAIClient{
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

// Generate sends a single generation request to OpenAI.
func (c *openAIClient) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	requestBody := map[string]any{
		"model":             c.model,
		"instructions":      systemPrompt,
		"input":             buildPrompt(req),
		"max_output_tokens": c.maxTokens,
	}

	if c.search == searchOpenAI {
		requestBody["tools"] = []map[string]any{
			{"type": "web_search"},
		}
	} else if c.search != searchNone {
		slog.Debug("unrecognized search variant for gpt, proceeding without search", "variant", int(c.search))
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("%w: failed to marshal request: %v", common.ErrGenerationFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", strings.NewReader(string(jsonBody)))
	if err != nil {
		return GenerationResult{}, fmt.Errorf("%w: failed to create request: %v", common.ErrGenerationFailed, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		return GenerationResult{}, fmt.Errorf("%w: OpenAI API error (status %d): %s", common.ErrGenerationFailed, resp.StatusCode, string(body))
	}

	var response struct {
		Output []struct {
			Type    string `json:"type"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return GenerationResult{}, fmt.Errorf("%w: failed to parse response: %v", common.ErrGenerationFailed, err)
	}

	// The output list mixes web_search_call items with the final message;
	// collect the output_text parts of message items.
	var text strings.Builder
	for _, item := range response.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" {
				text.WriteString(part.Text)
			}
		}
	}

	if text.Len() == 0 {
		return GenerationResult{}, fmt.Errorf("%w: no output text in response", common.ErrGenerationFailed)
	}

	return parseGenerationResult(text.String(), req.Category)
}
