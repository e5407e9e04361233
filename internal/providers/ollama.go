package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nikolliervin/code-unc/internal/model"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama implements Client for a local Ollama server. No API key is
// required.
type Ollama struct {
	model    string
	baseURL  string
	settings Settings
	client   *http.Client
}

// NewOllama creates an Ollama client. The base URL comes from settings
// or OLLAMA_HOST, defaulting to localhost.
func NewOllama(s Settings) (*Ollama, error) {
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	return &Ollama{
		model:    s.Model,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		settings: s,
		client:   &http.Client{Timeout: s.timeout()},
	}, nil
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Review(ctx context.Context, req Request) (model.RawResponse, error) {
	body := ollamaRequest{
		Model:  o.model,
		System: req.SystemPrompt,
		Prompt: req.UserPrompt,
		Stream: false,
	}
	if req.Temperature > 0 {
		body.Options = &ollamaOptions{Temperature: req.Temperature}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return model.RawResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	var resp model.RawResponse
	err = retryWithBackoff(ctx, o.settings.retries(), o.settings.delay(), func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		httpResp, err := o.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer httpResp.Body.Close()

		respBody, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		if httpResp.StatusCode != http.StatusOK {
			return fmt.Errorf("ollama error (status %d): %s", httpResp.StatusCode, string(respBody))
		}

		var result ollamaResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}

		resp = model.RawResponse{
			Content:    result.Response,
			Provider:   o.Name(),
			Model:      o.model,
			TokensUsed: result.PromptEvalCount + result.EvalCount,
			ReceivedAt: time.Now().UTC(),
		}
		return nil
	})

	return resp, err
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system,omitempty"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options *ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type ollamaResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}
