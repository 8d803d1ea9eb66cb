// Package tui is the interactive chat front end.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"careerbot/internal/assistant"
	"careerbot/internal/domain"
)

// Handler is the TUI-facing subset of the assistant.
type Handler interface {
	Handle(ctx context.Context, conv *domain.Conversation, input string) (domain.Turn, error)
	SwitchMode(conv *domain.Conversation, mode domain.Mode) domain.Turn
}

// Saver persists conversations between sessions.
type Saver interface {
	SaveConversation(ctx context.Context, conv *domain.Conversation) error
}

// RefreshFunc rebuilds the job index from the corpus.
type RefreshFunc func(ctx context.Context) error

// RefreshedMsg reports a finished index refresh. It is also sent by the
// corpus watcher through Program.Send.
type RefreshedMsg struct{ Err error }

type replyMsg struct {
	conv *domain.Conversation
	err  error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	ctx      context.Context
	handler  Handler
	saver    Saver
	refresh  RefreshFunc
	conv     *domain.Conversation
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	busy     bool
	status   string
	ready    bool
}

// New creates a chat model for conv. saver and refresh may be nil.
func New(ctx context.Context, handler Handler, saver Saver, refresh RefreshFunc, conv *domain.Conversation) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about jobs, interviews or resumes. /help for commands"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	if len(conv.Turns) == 0 {
		conv.Append(domain.RoleAssistant, assistant.Welcome(conv.Mode), nil)
	}
	return Model{
		ctx:      ctx,
		handler:  handler,
		saver:    saver,
		refresh:  refresh,
		conv:     conv,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   fmt.Sprintf("Mode: %s", conv.Mode),
	}
}

// Conversation returns the conversation as last committed by a reply.
func (m Model) Conversation() *domain.Conversation { return m.conv }

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and reply events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ih := inputStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, input line
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.render()
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case replyMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.conv = msg.conv
		m.status = fmt.Sprintf("Mode: %s", m.conv.Mode)
		m.render()
		return m, nil
	case RefreshedMsg:
		if msg.Err != nil {
			m.status = "Refresh failed: " + msg.Err.Error()
		} else {
			m.status = "Job listings refreshed."
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.Type {
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.busy {
				return m, nil
			}
			m.input.SetValue("")
			if strings.HasPrefix(text, "/") {
				return m.command(text)
			}
			m.busy = true
			m.status = "Thinking..."
			return m, tea.Batch(m.spinner.Tick, m.send(text))
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send answers text on a copy of the conversation so the rendered one stays
// consistent until the reply lands.
func (m Model) send(text string) tea.Cmd {
	conv := m.conv.Clone()
	return func() tea.Msg {
		if _, err := m.handler.Handle(m.ctx, conv, text); err != nil {
			return replyMsg{err: err}
		}
		return replyMsg{conv: conv, err: m.save(conv)}
	}
}

func (m Model) save(conv *domain.Conversation) error {
	if m.saver == nil {
		return nil
	}
	if err := m.saver.SaveConversation(m.ctx, conv); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

func (m Model) command(text string) (tea.Model, tea.Cmd) {
	name := strings.ToLower(strings.TrimPrefix(strings.Fields(text)[0], "/"))
	switch name {
	case "quit", "exit":
		return m, tea.Quit
	case "help":
		m.status = helpText
		return m, nil
	case "clear":
		conv := m.conv.Clone()
		conv.Reset()
		conv.Append(domain.RoleAssistant, assistant.Welcome(conv.Mode), nil)
		m.busy = true
		return m, func() tea.Msg { return replyMsg{conv: conv, err: m.save(conv)} }
	case "refresh":
		if m.refresh == nil {
			m.status = "Refresh is not available."
			return m, nil
		}
		m.status = "Refreshing job listings..."
		refresh, ctx := m.refresh, m.ctx
		return m, func() tea.Msg { return RefreshedMsg{Err: refresh(ctx)} }
	}
	mode, ok := assistant.ParseMode(name)
	if !ok {
		m.status = fmt.Sprintf("Unknown command /%s. %s", name, helpText)
		return m, nil
	}
	conv := m.conv.Clone()
	m.handler.SwitchMode(conv, mode)
	m.busy = true
	return m, func() tea.Msg { return replyMsg{conv: conv, err: m.save(conv)} }
}

const helpText = "Commands: /general /jobs /resume /interview /mentorship /clear /refresh /quit"

// View renders the header, transcript, input and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Career Assistant")
	status := statusStyle.Render(m.status)
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + transcriptStyle.Render(m.viewport.View()) + "\n" + inputStyle.Render(m.input.View()) + "\n" + status
}

func (m *Model) render() {
	m.viewport.SetContent(renderTranscript(m.conv.Turns, m.viewport.Width))
	m.viewport.GotoBottom()
}

func renderTranscript(turns []domain.Turn, width int) string {
	body := lipgloss.NewStyle().Width(max(20, width-2))
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if t.Role == domain.RoleUser {
			b.WriteString(userStyle.Render("You"))
		} else {
			b.WriteString(botStyle.Render("Assistant"))
		}
		b.WriteString("\n")
		b.WriteString(body.Render(t.Content))
	}
	return b.String()
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
