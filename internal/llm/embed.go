// internal/llm/embed.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mwiater/noteweave/internal/logging"
)

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed requests an embedding vector for text from the configured endpoint.
// Only the first element of the response data array is used.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(c.cfg.EmbeddingEndpoint) == "" {
		return nil, ErrMissingEndpoint
	}
	if strings.TrimSpace(c.cfg.EmbeddingModel) == "" {
		return nil, fmt.Errorf("llm: embedding model is empty")
	}

	body, err := json.Marshal(embeddingRequest{Model: c.cfg.EmbeddingModel, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.EmbeddingEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if c.cfg.Debug {
		logging.LogRequest("LLM->NOTEWEAVE", c.cfg.EmbeddingEndpoint, c.cfg.EmbeddingModel, raw)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, &ParseError{Err: fmt.Errorf("embedding response contained no vector")}
	}

	return parsed.Data[0].Embedding, nil
}
