package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TelnyxClient sends Call Control commands back to Telnyx for inbound calls
type TelnyxClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewTelnyxClient(apiKey, baseURL string) *TelnyxClient {
	return &TelnyxClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *TelnyxClient) sendCommand(ctx context.Context, callControlID, command string, payload map[string]interface{}) error {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telnyx command: %w", err)
	}

	url := fmt.Sprintf("%s/calls/%s/actions/%s", c.baseURL, callControlID, command)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telnyx request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telnyx request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telnyx returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// Answer picks up an inbound call
func (c *TelnyxClient) Answer(ctx context.Context, callControlID string) error {
	return c.sendCommand(ctx, callControlID, "answer", nil)
}

// Speak plays a TTS message into the call
func (c *TelnyxClient) Speak(ctx context.Context, callControlID, text string) error {
	return c.sendCommand(ctx, callControlID, "speak", map[string]interface{}{
		"payload":  text,
		"voice":    "female",
		"language": "es-ES",
	})
}
