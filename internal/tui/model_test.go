package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"careerbot/internal/domain"
)

type echoHandler struct{}

func (echoHandler) Handle(_ context.Context, conv *domain.Conversation, input string) (domain.Turn, error) {
	conv.Append(domain.RoleUser, input, nil)
	return conv.Append(domain.RoleAssistant, "echo: "+input, nil), nil
}

func (echoHandler) SwitchMode(conv *domain.Conversation, mode domain.Mode) domain.Turn {
	conv.Mode = mode
	return conv.Append(domain.RoleAssistant, "switched to "+string(mode), nil)
}

type failingHandler struct{ echoHandler }

func (failingHandler) Handle(context.Context, *domain.Conversation, string) (domain.Turn, error) {
	return domain.Turn{}, errors.New("boom")
}

type memorySaver struct{ saved []*domain.Conversation }

func (s *memorySaver) SaveConversation(_ context.Context, conv *domain.Conversation) error {
	s.saved = append(s.saved, conv)
	return nil
}

// drain runs cmd and any batched commands, feeding the resulting messages
// back into the model. Spinner ticks are skipped.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			inner := c()
			if _, ok := inner.(replyMsg); ok {
				next, _ := m.Update(inner)
				m = next.(Model)
			}
		}
		return m
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func submit(t *testing.T, m Model, text string) Model {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return drain(t, next.(Model), cmd)
}

func newModel(h Handler, s Saver, r RefreshFunc) Model {
	conv := &domain.Conversation{UserID: "u1", Mode: domain.ModeGeneral}
	m := New(context.Background(), h, s, r, conv)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func TestModel_StartsWithWelcome(t *testing.T) {
	m := newModel(echoHandler{}, nil, nil)
	turns := m.Conversation().Turns
	if len(turns) != 1 || turns[0].Role != domain.RoleAssistant {
		t.Fatalf("expected a welcome turn, got %+v", turns)
	}
}

func TestModel_SendCommitsReplyAndSaves(t *testing.T) {
	saver := &memorySaver{}
	m := newModel(echoHandler{}, saver, nil)
	m = submit(t, m, "hello")

	turns := m.Conversation().Turns
	if len(turns) != 3 || turns[2].Content != "echo: hello" {
		t.Fatalf("unexpected turns: %+v", turns)
	}
	if m.busy {
		t.Error("model should not be busy after the reply")
	}
	if len(saver.saved) != 1 {
		t.Errorf("expected one save, got %d", len(saver.saved))
	}
	if !strings.Contains(m.viewport.View(), "echo: hello") {
		t.Error("transcript should show the reply")
	}
}

func TestModel_HandlerErrorKeepsConversation(t *testing.T) {
	m := newModel(failingHandler{}, nil, nil)
	m = submit(t, m, "hello")
	if len(m.Conversation().Turns) != 1 {
		t.Errorf("failed turn must not be committed: %+v", m.Conversation().Turns)
	}
	if !strings.Contains(m.status, "boom") {
		t.Errorf("status should report the error, got %q", m.status)
	}
}

func TestModel_ModeCommand(t *testing.T) {
	m := newModel(echoHandler{}, nil, nil)
	m = submit(t, m, "/jobs")
	if m.Conversation().Mode != domain.ModeJobs {
		t.Errorf("expected jobs mode, got %s", m.Conversation().Mode)
	}
	m = submit(t, m, "/nonsense")
	if !strings.Contains(m.status, "Unknown command") {
		t.Errorf("unexpected status: %q", m.status)
	}
}

func TestModel_ClearResetsHistory(t *testing.T) {
	m := newModel(echoHandler{}, nil, nil)
	m = submit(t, m, "hello")
	m = submit(t, m, "/clear")
	turns := m.Conversation().Turns
	if len(turns) != 1 || turns[0].Role != domain.RoleAssistant {
		t.Errorf("expected only the welcome turn, got %+v", turns)
	}
}

func TestModel_Refresh(t *testing.T) {
	calls := 0
	m := newModel(echoHandler{}, nil, func(context.Context) error {
		calls++
		return nil
	})
	m = submit(t, m, "/refresh")
	if calls != 1 {
		t.Errorf("expected one refresh, got %d", calls)
	}
	if m.status != "Job listings refreshed." {
		t.Errorf("unexpected status: %q", m.status)
	}

	next, _ := m.Update(RefreshedMsg{Err: errors.New("disk full")})
	if got := next.(Model).status; !strings.Contains(got, "disk full") {
		t.Errorf("unexpected status: %q", got)
	}
}
