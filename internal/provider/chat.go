package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ChatMessage is one turn of an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"` // user / assistant / system
	Content string `json:"content"`
}

// ChatClient answers a user message given the conversation so far.
type ChatClient interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// HTTPChatClient calls an external chat-completion HTTP service.
type HTTPChatClient struct {
	URL    string
	APIKey string
	Model  string
	Client *http.Client
}

func NewChatClient(url, apiKey, model string, timeout time.Duration) *HTTPChatClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPChatClient{
		URL:    url,
		APIKey: apiKey,
		Model:  model,
		Client: &http.Client{Timeout: timeout},
	}
}

type chatCompletionReq struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type chatCompletionResp struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

func (c *HTTPChatClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	payload, err := json.Marshal(chatCompletionReq{
		Model:    c.Model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call chat service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat service returned %d", resp.StatusCode)
	}

	var result chatCompletionResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("chat service returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}
