package llm

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"
)

const (
	requestTimeout = 15 * time.Second
	maxAttempts    = 2
)

// Service wraps an AI provider with a bounded timeout and a small retry
// budget for transient network failures.
type Service struct {
	provider Provider
}

// NewService creates the service with the provider configured in the environment
func NewService() *Service {
	cfg, err := LoadProviderFromEnv()
	if err != nil {
		log.Fatalf("❌ Failed to load LLM config: %v", err)
	}

	provider, err := NewProvider(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to create LLM provider: %v", err)
	}

	log.Printf("🤖 Using LLM provider: %s (model: %s)", provider.GetProviderName(), cfg.Model)

	return &Service{provider: provider}
}

// NewServiceWithProvider creates service with custom provider (for testing)
func NewServiceWithProvider(provider Provider) *Service {
	return &Service{provider: provider}
}

// GenerateAction runs the intent completion, retrying once on failure
func (s *Service) GenerateAction(ctx context.Context, systemPrompt string, history []Message) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		raw, err := s.provider.GenerateAction(attemptCtx, systemPrompt, history)
		cancel()
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break // caller is gone, no point retrying
		}
		log.Printf("⚠️ LLM attempt %d/%d failed: %v", attempt, maxAttempts, err)
	}
	return "", lastErr
}

// Transcribe converts audio to text. Fails if the configured provider has no
// speech-to-text support.
func (s *Service) Transcribe(ctx context.Context, filename string, audio io.Reader, language string) (string, error) {
	transcriber, ok := s.provider.(Transcriber)
	if !ok {
		return "", fmt.Errorf("provider %s does not support transcription", s.provider.GetProviderName())
	}

	attemptCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	return transcriber.Transcribe(attemptCtx, filename, audio, language)
}

// GetProviderName returns current provider name
func (s *Service) GetProviderName() string {
	return s.provider.GetProviderName()
}
