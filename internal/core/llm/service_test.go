package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyProvider struct {
	failures int
	calls    int
}

func (p *flakyProvider) GenerateAction(ctx context.Context, systemPrompt string, history []Message) (string, error) {
	p.calls++
	if p.calls <= p.failures {
		return "", errors.New("connection reset")
	}
	return `{"type":"greeting","data":{"response":"hola"}}`, nil
}

func (p *flakyProvider) GetProviderName() string { return "flaky" }

func TestGenerateActionRetriesOnce(t *testing.T) {
	provider := &flakyProvider{failures: 1}
	svc := NewServiceWithProvider(provider)

	raw, err := svc.GenerateAction(context.Background(), "system", nil)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"greeting","data":{"response":"hola"}}`, raw)
	assert.Equal(t, 2, provider.calls)
}

func TestGenerateActionGivesUpAfterRetry(t *testing.T) {
	provider := &flakyProvider{failures: 10}
	svc := NewServiceWithProvider(provider)

	_, err := svc.GenerateAction(context.Background(), "system", nil)
	assert.Error(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestGenerateActionStopsWhenCallerGone(t *testing.T) {
	provider := &flakyProvider{failures: 10}
	svc := NewServiceWithProvider(provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GenerateAction(ctx, "system", nil)
	assert.Error(t, err)
	assert.Equal(t, 1, provider.calls, "no retry once the caller cancelled")
}

func TestTranscribeRequiresSpeechSupport(t *testing.T) {
	svc := NewServiceWithProvider(&flakyProvider{})

	_, err := svc.Transcribe(context.Background(), "audio.mp3", nil, "es")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support transcription")
}
