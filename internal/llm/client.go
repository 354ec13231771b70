// internal/llm/client.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "macromaps/internal/common/errors"
	"macromaps/internal/common/logger"
	"macromaps/internal/common/metrics"
)

// Tier is one configured model: name, response-size ceiling and the
// mandatory per-call timeout.
type Tier struct {
	Name      string // tier label for logs and metrics
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Config carries the completion endpoint plus the three model tiers the
// pipeline uses.
type Config struct {
	BaseURL string
	APIKey  string
	Retry   RetryPolicy

	Classification Tier
	Analysis       Tier
	Aggregation    Tier
}

// Client talks to an OpenAI-style chat-completions endpoint with optional
// image-URL content parts. Safe for concurrent use.
type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		// No transport timeout: each call carries its own context deadline.
		client: &http.Client{},
		logger: log.With(map[string]interface{}{
			"component": "llm",
		}),
	}
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

func textMessage(role, text string) chatMessage {
	return chatMessage{Role: role, Content: text}
}

func visionMessage(text, imageURL string) chatMessage {
	return chatMessage{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: text},
			{Type: "image_url", ImageURL: &imageRef{URL: imageURL}},
		},
	}
}

// complete issues one chat completion against the given tier and returns the
// raw message content. The tier's timeout bounds the whole call including
// retries.
func (c *Client) complete(ctx context.Context, tier Tier, messages []chatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, tier.Timeout)
	defer cancel()

	body, err := json.Marshal(map[string]interface{}{
		"model":           tier.Model,
		"messages":        messages,
		"max_tokens":      tier.MaxTokens,
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var content string
	callErr := c.config.Retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("status %d", resp.StatusCode)
		}

		var apiResponse struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
			return fmt.Errorf("decode error: %v", err)
		}
		if len(apiResponse.Choices) == 0 {
			return fmt.Errorf("empty choices")
		}

		content = apiResponse.Choices[0].Message.Content
		return nil
	})

	if callErr != nil {
		metrics.LLMCalls.WithLabelValues(tier.Name, "error").Inc()
		if errors.Is(callErr, context.DeadlineExceeded) {
			return "", apperrors.NewLLMTimeoutError(tier.Name)
		}
		return "", callErr
	}

	metrics.LLMCalls.WithLabelValues(tier.Name, "ok").Inc()
	return content, nil
}

// extractJSON trims markdown code fences that some models wrap around JSON
// output even in JSON mode.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
