package therapy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/adiyogi/wellness-api/model"
)

// TurnResult holds the generated assistant turn
type TurnResult struct {
	AssistantText string        `json:"assistant_text"`
	Emotion       string        `json:"emotion"`
	Extra         model.JSONMap `json:"extra"`
}

// Runner produces one assistant turn for a therapy session. The implementation
// is an opaque external service; callers do not retry on failure.
type Runner interface {
	RunTurn(ctx context.Context, issue, sessionID, userMessage string) (*TurnResult, error)
}

// Config holds configuration for the therapy service client
type Config struct {
	BaseURL string
	APIKey  string
}

// Client calls the external therapy inference service over HTTP
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new therapy service client. No timeout is set on the
// underlying HTTP client; cancellation comes from the request context.
func NewClient(config Config) *Client {
	return &Client{
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		httpClient: &http.Client{},
	}
}

type turnRequest struct {
	Issue       string `json:"issue"`
	SessionID   string `json:"session_id"`
	UserMessage string `json:"user_message"`
}

// RunTurn posts the user turn to the inference service and decodes the reply.
// Missing response fields decode to their zero values.
func (c *Client) RunTurn(ctx context.Context, issue, sessionID, userMessage string) (*TurnResult, error) {
	payload, err := json.Marshal(turnRequest{
		Issue:       issue,
		SessionID:   sessionID,
		UserMessage: userMessage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode turn request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/turn", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create turn request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("therapy service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("therapy service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result TurnResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode turn response: %w", err)
	}

	return &result, nil
}
