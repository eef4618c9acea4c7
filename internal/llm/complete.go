// internal/llm/complete.go
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mwiater/noteweave/internal/logging"
)

// StreamCallbacks receive incremental output from a streaming completion.
// OnDelta is invoked for each content fragment in arrival order; OnComplete
// once after the stream finishes cleanly.
type StreamCallbacks struct {
	OnDelta    func(delta string) error
	OnComplete func() error
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Complete issues a non-streaming chat completion and returns the assistant's
// message content.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	resp, err := c.postCompletion(ctx, messages, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	if c.cfg.Debug {
		logging.LogRequest("LLM->NOTEWEAVE", c.cfg.ChatEndpoint, c.cfg.ChatModel, body)
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ParseError{Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &ParseError{Err: fmt.Errorf("completion response contained no choices")}
	}
	return parsed.Choices[0].Message.Content, nil
}

// Stream issues a streaming chat completion, forwarding each content delta in
// arrival order. Malformed stream fragments are skipped, not fatal.
func (c *Client) Stream(ctx context.Context, messages []Message, callbacks StreamCallbacks) error {
	resp, err := c.postCompletion(ctx, messages, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return &TransportError{Err: err}
		}
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			if c.cfg.Debug {
				logging.LogEvent("llm: skipping malformed stream fragment: %v", err)
			}
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		if callbacks.OnDelta != nil {
			if err := callbacks.OnDelta(content); err != nil {
				return err
			}
		}
	}

	if callbacks.OnComplete != nil {
		return callbacks.OnComplete()
	}
	return nil
}

func (c *Client) postCompletion(ctx context.Context, messages []Message, stream bool) (*http.Response, error) {
	if strings.TrimSpace(c.cfg.ChatEndpoint) == "" {
		return nil, ErrMissingEndpoint
	}
	if c.cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}

	body, err := json.Marshal(completionRequest{
		Model:    c.cfg.ChatModel,
		Messages: messages,
		Stream:   stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}
	if c.cfg.Debug {
		logging.LogRequest("NOTEWEAVE->LLM", c.cfg.ChatEndpoint, c.cfg.ChatModel, body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ChatEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return resp, nil
}
