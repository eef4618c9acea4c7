// cli/cli_test.go
package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwiater/noteweave/internal/chat"
	"github.com/mwiater/noteweave/internal/index"
	"github.com/mwiater/noteweave/internal/llm"
	"github.com/mwiater/noteweave/internal/vault"
)

// newTestModel builds a model over a throwaway vault containing a single note.
func newTestModel(t *testing.T) *model {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "note.md"), []byte("grow tomatoes in spring"), 0o644); err != nil {
		t.Fatalf("write note: %v", err)
	}

	v, err := vault.New(dir, nil, nil)
	if err != nil {
		t.Fatalf("open vault: %v", err)
	}

	client := llm.NewClient(llm.Config{APIKey: "test-key", ChatEndpoint: "http://127.0.0.1:1/v1/chat/completions", ChatModel: "test-model"}, time.Second)
	manager := index.NewManager(v, client, 512, 64)
	session := chat.NewSession(client, manager, chat.Options{MaxTokens: 8192})

	cfg := &Config{VaultPath: dir, ChatModel: "test-model"}
	return initialModel(context.Background(), cfg, session, v, manager)
}

// TestUpdate tests the Update function of the Bubble Tea model. It verifies
// that the model correctly handles key presses and window size changes, and
// that the note picker can be opened, populated, and dismissed.
func TestUpdate(t *testing.T) {
	m := newTestModel(t)

	if m.state != viewChat {
		t.Errorf("Expected initial state to be viewChat, got %v", m.state)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Error("Expected a quit command, but got nil")
	}

	newModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = newModel.(*model)
	if m.width != 100 || m.height != 30 {
		t.Errorf("Expected width 100 and height 30, got %d and %d", m.width, m.height)
	}

	newModel, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = newModel.(*model)
	if m.state != viewNotePicker {
		t.Fatalf("Expected state to be viewNotePicker, got %v", m.state)
	}
	if cmd == nil {
		t.Fatal("Expected a command to list notes, but got nil")
	}

	msg := cmd()
	ready, ok := msg.(notesReadyMsg)
	if !ok {
		t.Fatalf("Expected notesReadyMsg, got %T", msg)
	}
	if len(ready.notes) != 1 {
		t.Fatalf("Expected 1 note in picker, got %d", len(ready.notes))
	}
	newModel, _ = m.Update(ready)
	m = newModel.(*model)
	if len(m.noteList.Items()) != 1 {
		t.Fatalf("Expected note list to hold 1 item, got %d", len(m.noteList.Items()))
	}

	newModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = newModel.(*model)
	if m.state != viewChat {
		t.Errorf("Expected esc to return to viewChat, got %v", m.state)
	}
}

// TestPinNote verifies that picking a note adds its full content to the
// session's context notes and that a missing note surfaces an error.
func TestPinNote(t *testing.T) {
	m := newTestModel(t)

	m.pinNote("note.md")
	notes := m.session.ContextNotes()
	if len(notes) != 1 {
		t.Fatalf("expected 1 context note, got %d", len(notes))
	}
	if notes[0].Path != "note.md" || !strings.Contains(notes[0].Content, "tomatoes") {
		t.Fatalf("unexpected context note: %+v", notes[0])
	}

	m.pinNote("missing.md")
	if m.err == nil {
		t.Fatal("expected error pinning a missing note")
	}
	if len(m.session.ContextNotes()) != 1 {
		t.Fatalf("expected context notes unchanged, got %d", len(m.session.ContextNotes()))
	}
}

// TestStreamFlow covers the streaming message lifecycle: submitting input
// starts loading, chunks accumulate in the response buffer, and stream end or
// error resets the loading state.
func TestStreamFlow(t *testing.T) {
	m := newTestModel(t)
	_, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	m.textArea.SetValue("hello")
	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = newModel.(*model)
	if !m.isLoading {
		t.Fatal("expected loading after submitting input")
	}
	if m.textArea.Value() != "" {
		t.Fatalf("expected text area reset, got %q", m.textArea.Value())
	}

	newModel, _ = m.Update(streamChunkMsg("wor"))
	m = newModel.(*model)
	newModel, _ = m.Update(streamChunkMsg("ld"))
	m = newModel.(*model)
	if m.responseBuf.String() != "world" {
		t.Fatalf("expected response buffer 'world', got %q", m.responseBuf.String())
	}

	newModel, _ = m.Update(streamEndMsg{})
	m = newModel.(*model)
	if m.isLoading {
		t.Fatal("expected not loading after stream end")
	}
	if m.responseBuf.Len() != 0 {
		t.Fatal("expected response buffer cleared after stream end")
	}

	m.textArea.SetValue("again")
	newModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = newModel.(*model)
	newModel, _ = m.Update(streamErr{error: errors.New("boom")})
	m = newModel.(*model)
	if m.isLoading {
		t.Fatal("expected not loading after stream error")
	}
	if m.err == nil || !strings.Contains(m.err.Error(), "boom") {
		t.Fatalf("expected stream error surfaced, got %v", m.err)
	}
}

// TestView tests the View function of the Bubble Tea model. It checks that the
// correct UI is rendered for different states of the application.
func TestView(t *testing.T) {
	m := newTestModel(t)

	m.width = 0
	view := m.View()
	if view != "Initializing..." {
		t.Errorf("Expected view to be 'Initializing...', got '%s'", view)
	}

	newModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = newModel.(*model)

	view = m.View()
	if !strings.Contains(view, "test-model") {
		t.Errorf("Expected view to contain the model name, got '%s'", view)
	}
	if !strings.Contains(view, "Index: 0 chunks") {
		t.Errorf("Expected view to show index size, got '%s'", view)
	}

	m.err = errors.New("test error")
	view = m.View()
	if !strings.Contains(view, "Error") {
		t.Errorf("Expected view to contain 'Error', got '%s'", view)
	}
	m.err = nil

	m.state = viewNotePicker
	view = m.View()
	if !strings.Contains(view, "Pin a note as context") {
		t.Errorf("Expected picker title in view, got '%s'", view)
	}
}

// TestRenderBudgetBadge verifies the advisory badge only appears above the
// warning threshold.
func TestRenderBudgetBadge(t *testing.T) {
	if out := renderBudgetBadge(chat.Budget{Level: chat.BudgetOK, Ratio: 0.4}); out != "" {
		t.Errorf("expected no badge below warning threshold, got %q", out)
	}
	if out := renderBudgetBadge(chat.Budget{Level: chat.BudgetWarn, Ratio: 0.85}); !strings.Contains(out, "85%") {
		t.Errorf("expected warning badge with percentage, got %q", out)
	}
	if out := renderBudgetBadge(chat.Budget{Level: chat.BudgetCritical, Ratio: 0.97}); !strings.Contains(out, "97%") {
		t.Errorf("expected critical badge with percentage, got %q", out)
	}
}
