package tui

import (
	"context"
	"strings"
	"time"

	"github.com/julienfritschheydon/doodates/internal/chat"
	"github.com/julienfritschheydon/doodates/internal/gateway"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1).
			Bold(true)

	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	chatWindowStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	pollWindowStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(0, 1)

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)

// --- Types ---

type line struct {
	role chat.Role
	text string
}

type replyMsg struct {
	text string
	err  error
}

// Model is the interactive chat screen: conversation on the left, the live
// poll document on the right.
type Model struct {
	rt      *gateway.Runtime
	service *chat.Service

	input    textinput.Model
	history  []line
	waiting  bool
	quitting bool
	width    int
	height   int
}

func New(rt *gateway.Runtime) Model {
	ti := textinput.New()
	ti.Placeholder = "ajoute le 3 décembre…"
	ti.Focus()

	return Model{
		rt:      rt,
		service: rt.NewChat(),
		input:   ti,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if m.waiting {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.history = append(m.history, line{role: chat.RoleUser, text: text})
			m.input.SetValue("")
			m.waiting = true
			return m, m.send(text)
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.history = append(m.history, line{role: chat.RoleSystem, text: msg.err.Error()})
		} else {
			m.history = append(m.history, line{role: chat.RoleAssistant, text: msg.text})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) send(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		reply, err := m.service.Send(ctx, text)
		return replyMsg{text: reply, err: err}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(" DooDates "))
	s.WriteString("\n\n")

	chatWidth := m.width * 3 / 5
	pollWidth := m.width - chatWidth - 10
	if chatWidth < 30 {
		chatWidth = 30
	}
	if pollWidth < 20 {
		pollWidth = 20
	}

	var conv strings.Builder
	start := 0
	maxLines := m.height - 12
	if maxLines > 0 && len(m.history) > maxLines {
		start = len(m.history) - maxLines
	}
	for _, l := range m.history[start:] {
		switch l.role {
		case chat.RoleUser:
			conv.WriteString(userStyle.Render("vous: ") + l.text + "\n")
		case chat.RoleAssistant:
			conv.WriteString(assistantStyle.Render(l.text) + "\n")
		default:
			conv.WriteString(errStyle.Render("erreur: "+l.text) + "\n")
		}
	}
	if m.waiting {
		conv.WriteString(helpStyle.Render("…") + "\n")
	}

	chatPane := chatWindowStyle.Width(chatWidth).Render(conv.String())
	pollPane := pollWindowStyle.Width(pollWidth).Render(gateway.DescribePoll(m.rt.Store.Current()))
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chatPane, " ", pollPane))

	s.WriteString("\n\n" + m.input.View())
	s.WriteString("\n" + helpStyle.Render("esc/ctrl+c: quitter • entrée: envoyer"))

	return docStyle.Render(s.String())
}

// Run starts the chat TUI on top of an initialized runtime.
func Run(rt *gateway.Runtime) error {
	p := tea.NewProgram(New(rt), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
