// cli/cli.go
// Package cli provides the interactive chat interface for the noteweave application.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/noteweave/internal/appconfig"
	"github.com/mwiater/noteweave/internal/chat"
	"github.com/mwiater/noteweave/internal/index"
	"github.com/mwiater/noteweave/internal/llm"
	"github.com/mwiater/noteweave/internal/logging"
	"github.com/mwiater/noteweave/internal/vault"
)

// Config represents the shared application configuration for the CLI.
type Config = appconfig.Config

// chatMessage represents a single message exchanged with the model.
type chatMessage = llm.Message

// viewState represents the current view or screen of the application.
type viewState int

const (
	// viewChat is the state where the user is interacting with the chat.
	viewChat viewState = iota
	// viewNotePicker is the state where the user picks a note to pin as context.
	viewNotePicker
)

// model is the main application model for the Bubble Tea UI.
type model struct {
	ctx              context.Context
	config           *Config
	session          *chat.Session
	vault            *vault.Vault
	manager          *index.Manager
	state            viewState
	isLoading        bool
	err              error
	noteList         list.Model
	textArea         textarea.Model
	viewport         viewport.Model
	spinner          spinner.Model
	responseBuf      strings.Builder
	width, height    int
	program          *tea.Program
	requestStartTime time.Time
}

// initialModel creates and initializes a new model with default values.
func initialModel(ctx context.Context, cfg *Config, session *chat.Session, v *vault.Vault, manager *index.Manager) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.Focus()
	ta.Prompt = "Ask your notes: "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	noteList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	noteList.Title = "Pin a note as context"

	vp := viewport.New(100, 5)

	return &model{
		ctx:      ctx,
		config:   cfg,
		session:  session,
		vault:    v,
		manager:  manager,
		state:    viewChat,
		spinner:  s,
		textArea: ta,
		noteList: noteList,
		viewport: vp,
	}
}

// item represents a selectable item in a Bubble Tea list.
type item struct {
	title  string
	desc   string
	pinned bool
}

// Title returns the title of the list item.
func (i item) Title() string { return i.title }

// Description returns the description of the list item.
func (i item) Description() string {
	if i.pinned {
		return "Currently pinned"
	}
	return i.desc
}

// FilterValue returns the title of the item, used for filtering.
func (i item) FilterValue() string { return i.title }

// notesReadyMsg is a message sent when the vault's notes have been listed for the picker.
type notesReadyMsg struct{ notes []list.Item }

// notesLoadErr is a message sent when an error occurs while listing vault notes.
type notesLoadErr struct{ error }

// streamChunkMsg is a message sent when a new chunk of a streaming response is received.
type streamChunkMsg string

// streamEndMsg is a message sent when a streaming response has completed.
type streamEndMsg struct{}

// streamErr is a message sent when an error occurs during a streaming response.
type streamErr struct{ error }

// tickMsg is a message sent at regular intervals, used for animations and timed updates.
type tickMsg time.Time

// listNotesCmd creates a Bubble Tea command that lists the vault's notes for
// the context-note picker, marking the ones already pinned.
func listNotesCmd(v *vault.Vault, session *chat.Session) tea.Cmd {
	return func() tea.Msg {
		notes, err := v.Notes()
		if err != nil {
			return notesLoadErr{error: err}
		}

		pinned := make(map[string]struct{})
		for _, n := range session.ContextNotes() {
			pinned[n.Path] = struct{}{}
		}

		items := make([]list.Item, len(notes))
		for i, n := range notes {
			_, isPinned := pinned[n.Path]
			items[i] = item{title: n.Path, desc: "Pin this note", pinned: isPinned}
		}
		return notesReadyMsg{notes: items}
	}
}

// streamChatCmd creates a Bubble Tea command that submits the user's input to
// the chat session and forwards streamed chunks back into the program.
func streamChatCmd(ctx context.Context, p *tea.Program, session *chat.Session, input string) tea.Cmd {
	return func() tea.Msg {
		go func() {
			err := session.Send(ctx, input, llm.StreamCallbacks{
				OnDelta: func(delta string) error {
					p.Send(streamChunkMsg(delta))
					return nil
				},
				OnComplete: func() error {
					p.Send(streamEndMsg{})
					return nil
				},
			})
			if err != nil {
				p.Send(streamErr{error: err})
			}
		}()

		return nil
	}
}

// tickCmd creates a Bubble Tea command that sends a tickMsg at a regular interval.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the Bubble Tea model and returns a command to start the spinner animation.
func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update is the central update function for the Bubble Tea model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+n":
			if m.state == viewChat && !m.isLoading {
				m.state = viewNotePicker
				return m, listNotesCmd(m.vault, m.session)
			}
		case "esc":
			if m.state == viewNotePicker {
				m.state = viewChat
				m.textArea.Focus()
				return m, nil
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.noteList.SetSize(msg.Width-2, msg.Height-4)
		m.textArea.SetWidth(msg.Width - 3)
		headerHeight := 3
		footerHeight := 4
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - headerHeight - footerHeight

	case notesReadyMsg:
		m.noteList.SetItems(msg.notes)
		return m, nil

	case notesLoadErr:
		m.state = viewChat
		m.err = msg.error
		return m, nil

	case streamChunkMsg:
		m.responseBuf.WriteString(string(msg))
		m.viewport.GotoBottom()
		return m, nil

	case streamEndMsg:
		m.responseBuf.Reset()
		m.isLoading = false
		m.textArea.Focus()
		m.viewport.GotoBottom()
		return m, nil

	case streamErr:
		m.responseBuf.Reset()
		m.isLoading = false
		m.err = msg.error
		m.textArea.Focus()
		return m, nil

	case tickMsg:
		if m.isLoading {
			return m, tickCmd()
		}
		return m, nil
	}

	switch m.state {
	case viewNotePicker:
		m.noteList, cmd = m.noteList.Update(msg)
		cmds = append(cmds, cmd)
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
			if selectedItem, ok := m.noteList.SelectedItem().(item); ok {
				m.pinNote(selectedItem.Title())
				m.state = viewChat
				m.textArea.Focus()
			}
		}

	case viewChat:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

		m.textArea, cmd = m.textArea.Update(msg)
		cmds = append(cmds, cmd)

		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
			userInput := strings.TrimSpace(m.textArea.Value())
			if userInput != "" && !m.isLoading {
				m.requestStartTime = time.Now()
				m.textArea.Reset()
				m.isLoading = true
				m.err = nil

				cmds = append(cmds, m.spinner.Tick, streamChatCmd(m.ctx, m.program, m.session, userInput), tickCmd())
			}
		}
	}

	if m.isLoading {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// pinNote reads the selected note and adds it to the session's context notes.
func (m *model) pinNote(relPath string) {
	note, ok := m.vault.Resolve(relPath)
	if !ok {
		m.err = fmt.Errorf("note not found: %s", relPath)
		return
	}
	content, err := m.vault.Read(note)
	if err != nil {
		m.err = err
		return
	}
	m.session.AddContextNote(chat.ContextNote{Path: note.Path, Content: content})
}

// View renders the application's UI based on the current state of the model.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.state {
	case viewNotePicker:
		return lipgloss.NewStyle().Margin(1, 2).Render(m.noteList.View())

	case viewChat:
		return m.chatView()

	default:
		return "Unknown state"
	}
}

// chatView renders the chat interface, including the header, chat history,
// current response (if streaming), and the input text area.
func (m *model) chatView() string {
	var builder strings.Builder

	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Background(lipgloss.Color("0")).Foreground(lipgloss.Color("255")).Padding(0, 1)

	modelInfo := fmt.Sprintf("Model: %s", m.config.ChatModel)
	indexInfo := fmt.Sprintf("Index: %d chunks", m.manager.Snapshot().Len())

	var searchInfo string
	if m.config.SemanticSearch {
		searchInfo = "Retrieval: on"
	} else {
		searchInfo = "Retrieval: off"
	}

	pinnedInfo := fmt.Sprintf("Pinned: %d", len(m.session.ContextNotes()))

	status := lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render("noteweave"),
		headerStyle.Render(modelInfo),
		headerStyle.MarginLeft(1).Render(indexInfo),
		headerStyle.MarginLeft(1).Render(searchInfo),
		headerStyle.MarginLeft(1).Render(pinnedInfo),
		renderBudgetBadge(m.session.Budget()),
	)

	help := lipgloss.NewStyle().Render(" (ctrl+n to pin a note, esc to quit)")
	builder.WriteString(status + help + "\n\n")

	var historyBuilder strings.Builder
	userStyle := lipgloss.NewStyle().Bold(true)
	assistantStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))

	for _, msg := range m.session.History() {
		var role string
		if msg.Role == llm.RoleAssistant {
			role = assistantStyle.Render("Assistant: ")
		} else {
			role = userStyle.Render(m.userLabel())
		}
		wrappedContent := lipgloss.NewStyle().Width(m.width - lipgloss.Width(role) - 2).Render(msg.Content)
		historyBuilder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, role, wrappedContent) + "\n")
	}

	if m.responseBuf.Len() > 0 {
		role := assistantStyle.Render("Assistant: ")
		wrappedContent := lipgloss.NewStyle().Width(m.width - lipgloss.Width(role) - 2).Render(m.responseBuf.String())
		historyBuilder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, role, wrappedContent))
	}

	m.viewport.SetContent(historyBuilder.String())
	builder.WriteString(m.viewport.View())

	if m.isLoading {
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		loadingText := fmt.Sprintf(" Assistant is thinking... %ss", timer)
		builder.WriteString("\n" + m.spinner.View() + loadingText)
	} else {
		builder.WriteString("\n" + m.textArea.View())
	}

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		builder.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return builder.String()
}

// userLabel returns the history label for the user's messages.
func (m *model) userLabel() string {
	if m.config.UserName != "" {
		return m.config.UserName + ": "
	}
	return "You: "
}

// renderBudgetBadge formats the advisory context-budget indicator. The badge
// only appears once usage crosses the warning threshold.
func renderBudgetBadge(b chat.Budget) string {
	switch b.Level {
	case chat.BudgetCritical:
		style := lipgloss.NewStyle().Background(lipgloss.Color("9")).Foreground(lipgloss.Color("230")).Padding(0, 1).MarginLeft(1)
		return style.Render(fmt.Sprintf("Context: %d%%", int(b.Ratio*100)))
	case chat.BudgetWarn:
		style := lipgloss.NewStyle().Background(lipgloss.Color("214")).Foreground(lipgloss.Color("0")).Padding(0, 1).MarginLeft(1)
		return style.Render(fmt.Sprintf("Context: %d%%", int(b.Ratio*100)))
	default:
		return ""
	}
}

// StartChat initializes and runs the interactive TUI for chatting over a vault.
func StartChat(cfg *appconfig.Config) error {
	if cfg == nil {
		return errors.New("configuration is not loaded")
	}

	f, err := tea.LogToFile(cfg.LogFilePath(), "debug")
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}
	defer f.Close()

	v, err := vault.New(cfg.VaultPath, cfg.Extensions(), cfg.ExcludeGlobs)
	if err != nil {
		return err
	}

	client := llm.NewClient(llm.Config{
		EmbeddingEndpoint: cfg.EmbeddingEndpoint,
		EmbeddingModel:    cfg.EmbeddingModel,
		ChatEndpoint:      cfg.ChatEndpoint,
		ChatModel:         cfg.ChatModel,
		APIKey:            cfg.ResolveAPIKey(),
		Debug:             cfg.Debug,
	}, cfg.RequestTimeout())

	size, overlap := cfg.ChunkSettings()
	manager := index.NewManager(v, client, size, overlap)
	if err := manager.Load(cfg.IndexFilePath()); err != nil {
		logging.LogEvent("could not load persisted index: %v", err)
	}

	session := chat.NewSession(client, manager, chat.Options{
		SystemPrompt:   cfg.SystemPrompt,
		UserName:       cfg.UserName,
		SemanticSearch: cfg.SemanticSearch,
		TopK:           cfg.ResolvedTopK(),
		MaxTokens:      cfg.MaxTokens(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		log.Println("Cancelling all running requests...")
		cancel()
	}()

	m := initialModel(ctx, cfg, session, v, manager)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m.program = p

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
