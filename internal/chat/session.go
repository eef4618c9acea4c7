// internal/chat/session.go
// Package chat orchestrates retrieval-augmented chat: it owns the message
// history, assembles the prompt from manual and retrieved context, and
// accumulates the streamed response.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mwiater/noteweave/internal/index"
	"github.com/mwiater/noteweave/internal/llm"
	"github.com/mwiater/noteweave/internal/logging"
)

// ErrSendInFlight is returned when a send is requested while a previous one
// is still streaming. New sends are rejected, not queued.
var ErrSendInFlight = errors.New("chat: a send is already in flight")

// ErrEmptyMessage is returned for a blank or whitespace-only submit.
var ErrEmptyMessage = errors.New("chat: message is empty")

// LLM is the slice of the llm client the session depends on.
type LLM interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Stream(ctx context.Context, messages []llm.Message, callbacks llm.StreamCallbacks) error
	HasCredential() bool
}

// Indexer exposes the current index snapshot for retrieval.
type Indexer interface {
	Snapshot() *index.VaultIndex
}

// ContextNote is a manually added reference note, included in the prompt in
// full rather than chunked.
type ContextNote struct {
	Path    string
	Content string
}

// Options configure a chat session.
type Options struct {
	SystemPrompt   string
	UserName       string
	SemanticSearch bool
	TopK           int
	MaxTokens      int
}

// Session is one chat conversation. History is append-only except for the
// rollback of the optimistic user message when a send fails. Send runs on its
// own goroutine under the TUI, so the mutable state is guarded by mu and the
// accessors are safe to call while a send is streaming.
type Session struct {
	client  LLM
	indexer Indexer
	opts    Options

	mu           sync.Mutex
	history      []llm.Message
	contextNotes []ContextNote
	lastBudget   Budget

	sending atomic.Bool
}

// NewSession creates an empty chat session.
func NewSession(client LLM, indexer Indexer, opts Options) *Session {
	return &Session{
		client:  client,
		indexer: indexer,
		opts:    opts,
	}
}

// History returns a copy of the conversation so far.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}

// AddContextNote adds a manual reference note, deduplicated by path.
func (s *Session) AddContextNote(note ContextNote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.contextNotes {
		if existing.Path == note.Path {
			return
		}
	}
	s.contextNotes = append(s.contextNotes, note)
}

// RemoveContextNote drops a manual reference note by path.
func (s *Session) RemoveContextNote(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.contextNotes {
		if existing.Path == path {
			s.contextNotes = append(s.contextNotes[:i], s.contextNotes[i+1:]...)
			return
		}
	}
}

// ContextNotes returns the manual reference notes in add order.
func (s *Session) ContextNotes() []ContextNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ContextNote, len(s.contextNotes))
	copy(out, s.contextNotes)
	return out
}

// Budget returns the advisory prompt budget computed for the most recent send.
func (s *Session) Budget() Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBudget
}

// Sending reports whether a send is currently streaming.
func (s *Session) Sending() bool {
	return s.sending.Load()
}

// Send submits the user's input and streams the assistant's reply through
// callbacks. The user message is appended optimistically and rolled back if
// the completion fails for any reason; retrieval failures are swallowed and
// the chat proceeds without auxiliary context.
func (s *Session) Send(ctx context.Context, input string, callbacks llm.StreamCallbacks) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return ErrEmptyMessage
	}
	if !s.client.HasCredential() {
		return llm.ErrMissingCredential
	}
	if !s.sending.CompareAndSwap(false, true) {
		return ErrSendInFlight
	}
	defer s.sending.Store(false)

	s.mu.Lock()
	s.history = append(s.history, llm.Message{Role: llm.RoleUser, Content: input})
	s.mu.Unlock()

	retrieved := s.retrieve(ctx, input)

	s.mu.Lock()
	system := buildSystemPrompt(s.opts.SystemPrompt, s.opts.UserName, s.contextNotes, retrieved)
	messages := make([]llm.Message, 0, len(s.history)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	messages = append(messages, s.history...)
	s.lastBudget = EstimateBudget(messages, s.opts.MaxTokens)
	budget := s.lastBudget
	s.mu.Unlock()

	if budget.Level != BudgetOK {
		logging.LogEvent("chat: prompt at %.0f%% of the configured token budget", budget.Ratio*100)
	}

	var response strings.Builder
	err := s.client.Stream(ctx, messages, llm.StreamCallbacks{
		OnDelta: func(delta string) error {
			response.WriteString(delta)
			if callbacks.OnDelta != nil {
				return callbacks.OnDelta(delta)
			}
			return nil
		},
		OnComplete: func() error {
			return nil
		},
	})
	if err != nil {
		// Roll back the optimistic user message; no partial assistant
		// message is committed.
		s.mu.Lock()
		s.history = s.history[:len(s.history)-1]
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.history = append(s.history, llm.Message{Role: llm.RoleAssistant, Content: response.String()})
	s.mu.Unlock()
	if callbacks.OnComplete != nil {
		return callbacks.OnComplete()
	}
	return nil
}

// retrieve embeds the query and searches the index. Any failure here is
// logged and swallowed; the chat proceeds without auxiliary context.
func (s *Session) retrieve(ctx context.Context, query string) []index.MatchingChunk {
	if !s.opts.SemanticSearch || s.indexer == nil {
		return nil
	}
	snapshot := s.indexer.Snapshot()
	if snapshot.Len() == 0 {
		return nil
	}

	queryVec, err := s.client.Embed(ctx, query)
	if err != nil {
		logging.LogEvent("chat: semantic search unavailable: %v", err)
		return nil
	}

	topK := s.opts.TopK
	if topK <= 0 {
		topK = 5
	}
	return snapshot.Search(queryVec, topK)
}
