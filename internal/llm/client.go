// internal/llm/client.go
// Package llm is a thin client for OpenAI-compatible embedding and chat
// completion endpoints. It performs no retries: a failed call is reported to
// the caller, who decides whether to skip, surface, or ignore it.
package llm

import (
	"net/http"
	"time"
)

// Message roles used throughout the chat flow.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config carries the endpoints, models, and credential the client talks to.
type Config struct {
	EmbeddingEndpoint string
	EmbeddingModel    string
	ChatEndpoint      string
	ChatModel         string
	APIKey            string
	Debug             bool
}

// Client issues embedding and completion requests.
type Client struct {
	client *http.Client
	cfg    Config
}

// NewClient constructs a Client. The timeout bounds every request made through
// the underlying http.Client; pass 0 for no client-side deadline.
func NewClient(cfg Config, timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		cfg: cfg,
	}
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return c.cfg.APIKey != ""
}
