package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nikolliervin/code-unc/internal/model"
)

const openaiAPIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI implements Client for OpenAI's chat completions API.
type OpenAI struct {
	apiKey   string
	model    string
	baseURL  string
	settings Settings
	client   *http.Client
}

// NewOpenAI creates an OpenAI client. The key comes from settings or
// OPENAI_API_KEY.
func NewOpenAI(s Settings) (*OpenAI, error) {
	key, err := s.apiKey("OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = openaiAPIURL
	}
	return &OpenAI{
		apiKey:   key,
		model:    s.Model,
		baseURL:  baseURL,
		settings: s,
		client:   &http.Client{Timeout: s.timeout()},
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Review(ctx context.Context, req Request) (model.RawResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	body := chatRequest{
		Model:     o.model,
		MaxTokens: maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return model.RawResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	var resp model.RawResponse
	err = retryWithBackoff(ctx, o.settings.retries(), o.settings.delay(), func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

		httpResp, err := o.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer httpResp.Body.Close()

		respBody, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		switch {
		case httpResp.StatusCode == http.StatusTooManyRequests:
			return &RateLimitError{Provider: o.Name()}
		case httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden:
			return &AuthError{Provider: o.Name(), Message: string(respBody)}
		case httpResp.StatusCode != http.StatusOK:
			return fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
		}

		var result chatResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		if len(result.Choices) == 0 {
			return fmt.Errorf("no choices in response")
		}

		resp = model.RawResponse{
			Content:    result.Choices[0].Message.Content,
			Provider:   o.Name(),
			Model:      o.model,
			TokensUsed: result.Usage.TotalTokens,
			ReceivedAt: time.Now().UTC(),
		}
		return nil
	})

	return resp, err
}

// The chat completions wire types are shared with Mistral, whose API
// speaks the same dialect.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatUsage struct {
	TotalTokens int `json:"total_tokens"`
}
