// internal/llm/client_test.go
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testClient(embedURL, chatURL string) *Client {
	return NewClient(Config{
		EmbeddingEndpoint: embedURL,
		EmbeddingModel:    "test-embed",
		ChatEndpoint:      chatURL,
		ChatModel:         "test-chat",
		APIKey:            "test-key",
	}, 5*time.Second)
}

func TestEmbed(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	var capturedAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedAuth = r.Header.Get("Authorization")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		capturedBody = body
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]},{"embedding":[9,9]}]}`))
	}))
	defer server.Close()

	client := testClient(server.URL, "")
	vec, err := client.Embed(context.Background(), "hello vault")
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Fatalf("expected first embedding used, got %v", vec)
	}
	if capturedAuth != "Bearer test-key" {
		t.Fatalf("expected bearer auth, got %q", capturedAuth)
	}

	var payload map[string]any
	if err := json.Unmarshal(capturedBody, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["model"] != "test-embed" || payload["input"] != "hello vault" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestEmbedAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := testClient(server.URL, "")
	_, err := client.Embed(context.Background(), "text")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", apiErr.Status)
	}
}

func TestEmbedTransportError(t *testing.T) {
	t.Parallel()

	client := testClient("http://127.0.0.1:1", "")
	_, err := client.Embed(context.Background(), "text")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestEmbedParseError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := testClient(server.URL, "")
	_, err := client.Embed(context.Background(), "text")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestComplete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("unmarshal payload: %v", err)
		}
		if stream, ok := payload["stream"].(bool); !ok || stream {
			t.Errorf("expected stream=false, got %v", payload["stream"])
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"the answer"}}]}`))
	}))
	defer server.Close()

	client := testClient("", server.URL)
	got, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "question"}})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "the answer" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestStream(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		lines := []string{
			`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
			``,
			`data: {"choices":[{"delta":{"content":"lo"}}]}`,
			`data: not valid json`,
			`data: {"choices":[{"delta":{"content":"!"}}]}`,
			`data: [DONE]`,
			`data: {"choices":[{"delta":{"content":"ignored"}}]}`,
		}
		for _, line := range lines {
			_, _ = w.Write([]byte(line + "\n"))
		}
	}))
	defer server.Close()

	client := testClient("", server.URL)

	var buf strings.Builder
	completed := false
	err := client.Stream(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, StreamCallbacks{
		OnDelta: func(delta string) error {
			buf.WriteString(delta)
			return nil
		},
		OnComplete: func() error {
			completed = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	if buf.String() != "Hello!" {
		t.Fatalf("expected accumulated 'Hello!', got %q", buf.String())
	}
	if !completed {
		t.Fatal("expected OnComplete to fire")
	}
}

func TestStreamAPIErrorBeforeBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient("", server.URL)
	err := client.Stream(context.Background(), nil, StreamCallbacks{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 APIError, got %v", err)
	}
}

func TestCompletionRequiresCredential(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{ChatEndpoint: "http://localhost:9999", ChatModel: "m"}, time.Second)
	_, err := client.Complete(context.Background(), nil)
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestCompletionRequiresEndpoint(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{APIKey: "k"}, time.Second)
	_, err := client.Complete(context.Background(), nil)
	if !errors.Is(err, ErrMissingEndpoint) {
		t.Fatalf("expected ErrMissingEndpoint, got %v", err)
	}
}
