// Package dashboard renders the live popup: the active tab's countdown,
// today's total, and the productivity grade.
package dashboard

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/focusflow/focusflow/bus"
	"github.com/focusflow/focusflow/internal/timeutil"
)

type keymap struct {
	deepWork key.Binding
	quit     key.Binding
}

var defaultKeymap = keymap{
	deepWork: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "toggle deep work"),
	),
	quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type styles struct {
	base      lipgloss.Style
	countdown lipgloss.Style
	label     lipgloss.Style
	grade     lipgloss.Style
	hint      lipgloss.Style
}

const (
	colorPrimary = lipgloss.Color("#6366f1")
	colorSuccess = lipgloss.Color("#10b981")
	colorWarning = lipgloss.Color("#f59e0b")
	colorDanger  = lipgloss.Color("#ef4444")
	colorMuted   = lipgloss.Color("#9ca3af")
)

func newStyles() styles {
	return styles{
		base:      lipgloss.NewStyle().Padding(1, 2),
		countdown: lipgloss.NewStyle().Bold(true),
		label:     lipgloss.NewStyle().Foreground(colorMuted),
		grade:     lipgloss.NewStyle().Bold(true).Padding(0, 1),
		hint:      lipgloss.NewStyle().Foreground(colorMuted),
	}
}

type tickMsg time.Time

type statusMsg struct {
	summary  Summary
	reply    bus.TimeReply
	hasTimer bool
	fetchErr error
}

// Model is the bubbletea model for the popup dashboard.
type Model struct {
	client *Client
	status statusMsg
	help   help.Model
	styles styles
	keymap keymap
	loaded bool
}

// NewModel returns a dashboard connected to the daemon.
func NewModel(client *Client) *Model {
	return &Model{
		client: client,
		help:   help.New(),
		styles: newStyles(),
		keymap: defaultKeymap,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		var status statusMsg

		summary, err := m.client.Summary()
		if err != nil {
			status.fetchErr = err
			return status
		}

		status.summary = summary

		reply, ok, err := m.client.ActiveTime()
		if err != nil {
			status.fetchErr = err
			return status
		}

		status.reply = reply
		status.hasTimer = ok

		return status
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tickCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tickCmd())

	case statusMsg:
		m.status = msg
		m.loaded = true

		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.quit):
			return m, tea.Quit

		case key.Matches(msg, m.keymap.deepWork):
			enabled := !m.status.summary.DeepWork

			return m, func() tea.Msg {
				if err := m.client.SetDeepWork(enabled); err != nil {
					slog.Debug("deep work toggle failed", "error", err)
				}

				return nil
			}
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

		return m, nil

	default:
		slog.Debug(spew.Sdump(msg))
	}

	return m, nil
}

func (m *Model) countdownView() (countdown, label string, color lipgloss.Color) {
	if !m.status.hasTimer {
		return "00:00:00", "No Active Limit", colorPrimary
	}

	remaining := m.status.reply.Limit - m.status.reply.Elapsed
	if remaining <= 0 {
		return "LIMIT REACHED", "Focus Broken!", colorDanger
	}

	return timeutil.FormatTime(remaining), "Time Remaining", colorSuccess
}

func gradeColor(grade string) lipgloss.Color {
	switch grade {
	case "A+":
		return colorSuccess
	case "B":
		return colorPrimary
	case "C":
		return colorWarning
	default:
		return colorDanger
	}
}

func (m *Model) View() string {
	var s strings.Builder

	if !m.loaded {
		return m.styles.base.Render("Connecting to focusflow daemon...")
	}

	if m.status.fetchErr != nil {
		return m.styles.base.Render(
			"Daemon unreachable. Is `focusflow serve` running?",
		)
	}

	countdown, label, color := m.countdownView()

	s.WriteString(
		m.styles.countdown.Foreground(color).Render(countdown),
	)
	s.WriteString("\n")
	s.WriteString(m.styles.label.Render(label))
	s.WriteString("\n\n")

	total := m.status.summary.TotalWastedToday
	mins, secs := timeutil.SecsToMinsAndSecs(total)

	daily := fmt.Sprintf("%ds", secs)
	if mins > 0 {
		daily = fmt.Sprintf("%dm %ds", mins, secs)
	}

	grade := m.status.summary.Grade

	s.WriteString(fmt.Sprintf(
		"Today: %s  %s",
		daily,
		m.styles.grade.Background(gradeColor(grade)).Render(grade),
	))
	s.WriteString("\n")

	if m.status.summary.DeepWork {
		s.WriteString(
			lipgloss.NewStyle().
				Foreground(colorDanger).
				Render("DEEP WORK ACTIVE"),
		)
		s.WriteString("\n")
	}

	s.WriteString("\n" + m.help.ShortHelpView([]key.Binding{
		m.keymap.deepWork,
		m.keymap.quit,
	}))

	return m.styles.base.Render(s.String())
}
