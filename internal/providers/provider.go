// Package providers implements the HTTP clients for the supported model
// APIs behind a single Client interface.
package providers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nikolliervin/code-unc/internal/model"
)

// Request is the payload sent to a provider for one review.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Client is the provider abstraction. Review is the only blocking,
// cancellable point in the pipeline; implementations must honor ctx.
type Client interface {
	Review(ctx context.Context, req Request) (model.RawResponse, error)
	Name() string
}

// Settings configures a provider client. Zero values fall back to
// sensible defaults.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

func (s Settings) timeout() time.Duration {
	if s.Timeout <= 0 {
		return 120 * time.Second
	}
	return s.Timeout
}

func (s Settings) retries() int {
	if s.MaxRetries <= 0 {
		return 3
	}
	return s.MaxRetries
}

func (s Settings) delay() time.Duration {
	if s.RetryDelay <= 0 {
		return time.Second
	}
	return s.RetryDelay
}

// apiKey resolves the key from settings or the named environment
// variable.
func (s Settings) apiKey(envVar string) (string, error) {
	if s.APIKey != "" {
		return s.APIKey, nil
	}
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s is not set", envVar)
}

// New creates a provider client by name.
func New(s Settings) (Client, error) {
	switch s.Provider {
	case "anthropic":
		return NewAnthropic(s)
	case "openai":
		return NewOpenAI(s)
	case "gemini", "google":
		return NewGemini(s)
	case "mistral":
		return NewMistral(s)
	case "ollama":
		return NewOllama(s)
	default:
		return nil, fmt.Errorf("unknown provider: %s", s.Provider)
	}
}

// Names lists the supported provider identifiers.
func Names() []string {
	return []string{"anthropic", "openai", "gemini", "mistral", "ollama"}
}
