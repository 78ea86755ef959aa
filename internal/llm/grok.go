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

const defaultGrokBaseURL = "https://api.x.ai/v1"

// grokClient implements the Client interface for the xAI API, which is
// wire-compatible with OpenAI chat completions plus xAI-specific
// search_parameters.
type grokClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	search     searchVariant
}

// newGrokClient creates a new xAI API client.
func newGrokClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: xAI API key is required", common.ErrMissingConfig)
	}

	m := cfg.Model
	if m == "" {
		if info, ok := model.InfoFor(model.ModelGrok); ok {
			m = info.APIModel
		}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGrokBaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	search := providerSpecs[model.ModelGrok].search
	if cfg.DisableSearch {
		search = searchNone
	}

	return &grokClient{
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

// Generate sends a single generation request to xAI.
func (c *grokClient) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": buildPrompt(req)},
		},
		"max_tokens": c.maxTokens,
	}

	// Live search pinned to the cycle date so citations stay inside the
	// prediction day. An unexpected variant means no search config.
	if c.search == searchXAI {
		requestBody["search_parameters"] = map[string]any{
			"mode":             "auto",
			"return_citations": true,
			"from_date":        req.Date,
			"to_date":          req.Date,
		}
	} else if c.search != searchNone {
		slog.Debug("unrecognized search variant for grok, proceeding without search", "variant", int(c.search))
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("%w: failed to marshal request: %v", common.ErrGenerationFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", strings.NewReader(string(jsonBody)))
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
		return GenerationResult{}, fmt.Errorf("%w: xAI API error (status %d): %s", common.ErrGenerationFailed, resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return GenerationResult{}, fmt.Errorf("%w: failed to parse response: %v", common.ErrGenerationFailed, err)
	}

	if len(response.Choices) == 0 {
		return GenerationResult{}, fmt.Errorf("%w: no completion choices returned", common.ErrGenerationFailed)
	}

	return parseGenerationResult(response.Choices[0].Message.Content, req.Category)
}
