// Package advisor turns a user's financial summary into short, actionable
// advice through a hosted text-generation model.
//
// Advisor.Advise never fails: every failure path resolves to a localized
// fallback sentence, so callers can render whatever comes back.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"arthasync/internal/core"
)

// Providers understood by NewGenerator.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ErrNotConfigured is returned by NewGenerator when no API key is set.
var ErrNotConfigured = errors.New("advice provider not configured")

// Request is one text-generation call.
type Request struct {
	SystemPersona string
	Prompt        string
	Language      core.Language
}

// TextGenerator is the external text-generation capability.
type TextGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the provider endpoint, e.g. a proxy or a local
	// OpenAI-compatible server.
	BaseURL    string
	HTTPClient *http.Client
}

// NewGenerator builds the generator for cfg.Provider. An empty API key
// yields ErrNotConfigured so callers can run in disabled mode.
func NewGenerator(ctx context.Context, cfg Config) (TextGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderGemini:
		return newGeminiGenerator(ctx, cfg)
	case ProviderOpenAI:
		return newOpenAIGenerator(cfg)
	default:
		return nil, fmt.Errorf("unsupported advice provider: %s", cfg.Provider)
	}
}

func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
