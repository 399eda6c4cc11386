package openai

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

	"github.com/kotobalabs/kotoba-backend/internal/pkg/envutil"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
	"github.com/kotobalabs/kotoba-backend/internal/voice"
)

// Message is one chat turn sent to the completion endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the OpenAI API surface the backend consumes: text generation
// for lesson/card content and speech synthesis for the TTS worker.
type Client interface {
	// Completion sends the messages and returns the raw response content.
	// Callers own parsing; the client makes no format guarantees.
	Completion(ctx context.Context, messages []Message) (string, error)

	// Synthesize renders input with the given voice profile and returns
	// the encoded audio bytes.
	Synthesize(ctx context.Context, input string, profile voice.Profile) ([]byte, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

func NewClient(baseLog *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := strings.TrimRight(envutil.Str("OPENAI_BASE_URL", "https://api.openai.com"), "/")
	model := envutil.Str("OPENAI_MODEL", "gpt-4o-mini")

	return &client{
		log:        baseLog.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		maxRetries: envutil.Int("OPENAI_MAX_RETRIES", 3),
	}, nil
}

func (c *client) Completion(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("completion requires at least one message")
	}
	payload := map[string]any{
		"model":    c.model,
		"messages": messages,
	}
	raw, err := c.post(ctx, "/v1/chat/completions", payload, "application/json")
	if err != nil {
		return "", err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *client) Synthesize(ctx context.Context, input string, profile voice.Profile) ([]byte, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("synthesize requires input text")
	}
	format := profile.Format
	if format == "" {
		format = "mp3"
	}
	speed := profile.Speed
	if speed == 0 {
		speed = 1.0
	}
	payload := map[string]any{
		"model":           profile.Model,
		"input":           input,
		"voice":           profile.Name,
		"speed":           speed,
		"response_format": format,
	}
	return c.post(ctx, "/v1/audio/speech", payload, "application/json")
}

func (c *client) post(ctx context.Context, path string, payload any, contentType string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoffDelay(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		data, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			if readErr != nil {
				return nil, fmt.Errorf("read response body: %w", readErr)
			}
			return data, nil
		}

		lastErr = fmt.Errorf("openai %s: status=%d body=%s", path, resp.StatusCode, strings.TrimSpace(string(data)))
		if !retryableStatus(resp.StatusCode) {
			return nil, lastErr
		}
		c.log.Warn("OpenAI request retrying", "path", path, "status", resp.StatusCode, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("openai %s: retries exhausted: %w", path, lastErr)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func backoffDelay(attempt int) time.Duration {
	d := 500 * time.Millisecond
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= 8*time.Second {
			return 8 * time.Second
		}
	}
	return d
}
