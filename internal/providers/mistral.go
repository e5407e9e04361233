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

const mistralAPIURL = "https://api.mistral.ai/v1/chat/completions"

// Mistral implements Client for Mistral's chat completions API, which
// is wire-compatible with OpenAI's.
type Mistral struct {
	apiKey   string
	model    string
	baseURL  string
	settings Settings
	client   *http.Client
}

// NewMistral creates a Mistral client. The key comes from settings or
// MISTRAL_API_KEY.
func NewMistral(s Settings) (*Mistral, error) {
	key, err := s.apiKey("MISTRAL_API_KEY")
	if err != nil {
		return nil, err
	}
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = mistralAPIURL
	}
	return &Mistral{
		apiKey:   key,
		model:    s.Model,
		baseURL:  baseURL,
		settings: s,
		client:   &http.Client{Timeout: s.timeout()},
	}, nil
}

func (m *Mistral) Name() string { return "mistral" }

func (m *Mistral) Review(ctx context.Context, req Request) (model.RawResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	body := chatRequest{
		Model:     m.model,
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
	err = retryWithBackoff(ctx, m.settings.retries(), m.settings.delay(), func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)

		httpResp, err := m.client.Do(httpReq)
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
			return &RateLimitError{Provider: m.Name()}
		case httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden:
			return &AuthError{Provider: m.Name(), Message: string(respBody)}
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
			Provider:   m.Name(),
			Model:      m.model,
			TokensUsed: result.Usage.TotalTokens,
			ReceivedAt: time.Now().UTC(),
		}
		return nil
	})

	return resp, err
}
