package llm

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Message is one turn of chat context sent to the model
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// Provider interface for AI backends
type Provider interface {
	// GenerateAction runs a chat completion in JSON mode over the full
	// conversation context and returns the raw completion text.
	GenerateAction(ctx context.Context, systemPrompt string, history []Message) (string, error)
	GetProviderName() string
}

// Transcriber is implemented by providers that support speech-to-text
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader, language string) (string, error)
}

// ProviderType for factory
type ProviderType string

const (
	ProviderOpenAI   ProviderType = "openai"
	ProviderDeepSeek ProviderType = "deepseek"
)

// ProviderConfig to create a provider
type ProviderConfig struct {
	Type ProviderType

	// API Keys
	OpenAIKey   string
	DeepSeekKey string

	// Model configs
	Model       string
	Temperature float32
	MaxTokens   int
}

// NewProvider factory to create an AI provider
func NewProvider(cfg *ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required")
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case ProviderDeepSeek:
		if cfg.DeepSeekKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY is required")
		}
		return NewDeepSeekProvider(cfg.DeepSeekKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s", cfg.Type)
	}
}

// LoadProviderFromEnv loads config from environment variables
func LoadProviderFromEnv() (*ProviderConfig, error) {
	providerType := os.Getenv("LLM_PROVIDER")
	if providerType == "" {
		providerType = "openai" // default
	}

	cfg := &ProviderConfig{
		Type:        ProviderType(providerType),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		DeepSeekKey: os.Getenv("DEEPSEEK_API_KEY"),
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		cfg.Model = model
	} else {
		switch cfg.Type {
		case ProviderOpenAI:
			cfg.Model = "gpt-4o-mini"
		case ProviderDeepSeek:
			cfg.Model = "deepseek-chat"
		}
	}

	cfg.Temperature = 0.7
	cfg.MaxTokens = 1024

	return cfg, nil
}
