// Package tui is the Bubble Tea chat front end: a scrolling transcript, a
// text input, and a status line. All event logic lives behind the Assistant
// port; the UI only shuttles strings.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"avevents/internal/domain"
)

// Model is the Bubble Tea model for the chat application.
type Model struct {
	assistant domain.Assistant
	sessionID string
	input     textinput.Model
	viewport  viewport.Model
	turns     []turn
	status    string
	ready     bool
}

type turn struct {
	user      string
	assistant string
}

// New creates a chat model bound to one session. Prior history, if any, is
// shown above the new conversation.
func New(assistant domain.Assistant, sessionID string, history []domain.Message) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about events and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		assistant: assistant,
		sessionID: sessionID,
		input:     ti,
		viewport:  vp,
		turns:     pairHistory(history),
		status:    "Ready. Ask about Auroville events.",
	}
}

// pairHistory folds a flat transcript into user/assistant turns.
func pairHistory(history []domain.Message) []turn {
	var turns []turn
	var current turn
	for _, m := range history {
		switch m.Role {
		case "user":
			if current.user != "" || current.assistant != "" {
				turns = append(turns, current)
				current = turn{}
			}
			current.user = m.Content
		case "assistant":
			current.assistant = m.Content
		}
	}
	if current.user != "" || current.assistant != "" {
		turns = append(turns, current)
	}
	return turns
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header + status + input frame + spacer
		vh := msg.Height - reserved - th
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.input.Width = max(20, msg.Width-4)
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				answer := m.assistant.Respond(context.Background(), m.sessionID, q)
				m.turns = append(m.turns, turn{user: q, assistant: answer})
				m.status = fmt.Sprintf("Answered %q", q)
				m.input.SetValue("")
				m.viewport.SetContent(m.renderTranscript())
				m.viewport.GotoBottom()
				return m, nil
			}
		case "pgup":
			m.viewport.LineUp(5)
			return m, nil
		case "pgdown":
			m.viewport.LineDown(5)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Auroville Events Assistant")
	transcript := transcriptStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.turns) == 0 {
		return "No messages yet. Ask about events, then drill in with 'details(3)'."
	}
	var b strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			b.WriteString("\n")
		}
		if t.user != "" {
			b.WriteString(userStyle.Render("You: "+t.user) + "\n")
		}
		if t.assistant != "" {
			b.WriteString(t.assistant + "\n")
		}
	}
	return b.String()
}

var (
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
