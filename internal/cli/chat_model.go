package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/elicit/internal/cli/formatter"
	"github.com/alexanderramin/elicit/internal/domain"
	"github.com/alexanderramin/elicit/internal/interview"
	"github.com/alexanderramin/elicit/internal/service"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const endCommand = "/end"

// chatModel is the interactive interview. Turns and the final save run as
// commands so the view stays responsive while the collaborator answers.
type chatModel struct {
	ctx     context.Context
	svc     service.InterviewService
	token   string
	session *interview.Session
	voice   bool

	input    textinput.Model
	viewport viewport.Model
	lines    []string
	busy     bool

	result    *service.CompleteResult
	err       error
	abandoned bool
}

type turnDoneMsg struct {
	result *interview.TurnResult
	err    error
}

type completeDoneMsg struct {
	result *service.CompleteResult
	err    error
}

func newChatModel(ctx context.Context, svc service.InterviewService, token string, s *interview.Session, voice bool) *chatModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = interview.MaxMessageChars
	ti.Placeholder = "Type your answer, " + endCommand + " to finish"
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.Focus()

	m := &chatModel{
		ctx:      ctx,
		svc:      svc,
		token:    token,
		session:  s,
		voice:    voice,
		input:    ti,
		viewport: viewport.New(80, 20),
	}
	for _, msg := range s.Transcript() {
		m.lines = append(m.lines, formatter.FormatMessage(msg))
	}
	m.refresh()
	return m
}

func (m *chatModel) Init() tea.Cmd {
	return nil
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(3, msg.Height-4)
		m.input.Width = max(10, msg.Width-6)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.result == nil {
				m.abandoned = true
			}
			return m, tea.Quit
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if m.busy || text == "" {
				return m, nil
			}
			m.input.Reset()
			return m, m.submit(text)
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case turnDoneMsg:
		m.busy = false
		if errors.Is(msg.err, interview.ErrSessionComplete) {
			return m, m.complete()
		}
		if msg.err != nil {
			m.appendLine(formatter.StyleRed.Render("error: " + msg.err.Error()))
			return m, nil
		}
		m.appendLine(formatter.FormatMessage(msg.result.Reply))
		if msg.result.Completed {
			return m, m.complete()
		}
		return m, nil

	case completeDoneMsg:
		m.busy = false
		m.result, m.err = msg.result, msg.err
		if msg.err != nil {
			m.appendLine(formatter.StyleRed.Render("error: " + msg.err.Error()))
		} else {
			m.appendLine(formatter.FormatCompletion(msg.result.Persisted, msg.result.NotPersistedReason, msg.result.CounterUpdated))
		}
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *chatModel) submit(text string) tea.Cmd {
	if strings.EqualFold(text, endCommand) {
		m.svc.EndEarly(m.ctx, m.session)
		m.appendLine(formatter.Dim("Ending the interview."))
		return m.complete()
	}

	m.appendLine(formatter.FormatMessage(domain.InterviewMessage{Role: domain.RoleParticipant, Content: text}))
	m.busy = true
	ctx, svc, s, voice := m.ctx, m.svc, m.session, m.voice
	return func() tea.Msg {
		res, err := svc.Turn(ctx, s, text, voice)
		return turnDoneMsg{result: res, err: err}
	}
}

func (m *chatModel) complete() tea.Cmd {
	m.busy = true
	m.appendLine(formatter.Dim("Saving your interview..."))
	ctx, svc, token, rec := m.ctx, m.svc, m.token, m.session.Record()
	return func() tea.Msg {
		res, err := svc.Complete(ctx, token, rec)
		return completeDoneMsg{result: res, err: err}
	}
}

func (m *chatModel) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.refresh()
}

func (m *chatModel) refresh() {
	wrap := lipgloss.NewStyle().Width(m.viewport.Width)
	m.viewport.SetContent(wrap.Render(strings.Join(m.lines, "\n")))
	m.viewport.GotoBottom()
}

func (m *chatModel) View() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	progress := m.session.Progress()
	status := fmt.Sprintf("%s  %s", formatter.PhaseBadge(progress.CurrentPhase),
		formatter.Dim(fmt.Sprintf("%d/%d questions", len(progress.QuestionsAsked), progress.TotalQuestions)))
	if m.busy {
		status += "  " + formatter.StylePurple.Render("thinking...")
	}
	b.WriteString(status + "\n")

	b.WriteString(formatter.StyleBlue.Render("you") + formatter.Dim("> "))
	b.WriteString(m.input.View())
	return b.String()
}
