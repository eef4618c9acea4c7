// scripts/endpoint_integration_check.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mwiater/noteweave/internal/appconfig"
)

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func main() {
	configPath := flag.String("config", appconfig.DefaultConfigPath, "Path to config JSON")
	embedURL := flag.String("embed-url", "", "Override embedding endpoint URL")
	chatURL := flag.String("chat-url", "", "Override chat endpoint URL")
	timeout := flag.Duration("timeout", 30*time.Second, "HTTP timeout")
	flag.Parse()

	cfg, err := appconfig.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *embedURL != "" {
		cfg.EmbeddingEndpoint = *embedURL
	}
	if *chatURL != "" {
		cfg.ChatEndpoint = *chatURL
	}

	client := &http.Client{Timeout: *timeout}
	apiKey := cfg.ResolveAPIKey()

	fmt.Printf("Embedding endpoint: %s (model %s)\n", cfg.EmbeddingEndpoint, cfg.EmbeddingModel)
	fmt.Printf("Chat endpoint:      %s (model %s)\n\n", cfg.ChatEndpoint, cfg.ChatModel)

	if err := checkEmbedding(client, cfg, apiKey); err != nil {
		fmt.Fprintf(os.Stderr, "embedding check failed: %v\n", err)
	}

	if err := probeChat(client, cfg, apiKey); err != nil {
		fmt.Fprintf(os.Stderr, "chat probe failed: %v\n", err)
	}
}

func checkEmbedding(client *http.Client, cfg appconfig.Config, apiKey string) error {
	fmt.Println("== embeddings ==")
	payload := map[string]any{
		"model": cfg.EmbeddingModel,
		"input": "integration check",
	}
	status, body, err := postJSON(client, cfg.EmbeddingEndpoint, apiKey, payload)
	if err != nil {
		return err
	}
	fmt.Printf("Status: %d\n", status)

	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		fmt.Printf("Parse: %v\nRaw:\n%s\n\n", err, indentJSON(body))
		return nil
	}
	if len(parsed.Data) == 0 {
		fmt.Printf("No embedding in response. Raw:\n%s\n\n", indentJSON(body))
		return nil
	}
	fmt.Printf("Embedding dimensions: %d\n\n", len(parsed.Data[0].Embedding))
	return nil
}

func probeChat(client *http.Client, cfg appconfig.Config, apiKey string) error {
	fmt.Println("== chat completions ==")
	payload := map[string]any{
		"model": cfg.ChatModel,
		"messages": []map[string]string{
			{"role": "user", "content": "ping"},
		},
		"stream": false,
	}
	status, body, err := postJSON(client, cfg.ChatEndpoint, apiKey, payload)
	if err != nil {
		return err
	}
	accepted := status >= 200 && status < 300
	fmt.Printf("Status: %d accepted=%v\n", status, accepted)

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Choices) > 0 {
		reply := strings.TrimSpace(parsed.Choices[0].Message.Content)
		if len(reply) > 200 {
			reply = reply[:200] + "..."
		}
		fmt.Printf("Reply: %s\n\n", reply)
		return nil
	}
	fmt.Printf("Raw:\n%s\n\n", indentJSON(body))
	return nil
}

func postJSON(client *http.Client, url, apiKey string, payload map[string]any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), client.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func indentJSON(body []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return string(body)
	}
	return out.String()
}
