package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/togetter/internal/checklist"
	"github.com/five82/togetter/internal/logtail"
	"github.com/five82/togetter/internal/session"
	"github.com/five82/togetter/internal/state"
)

// InboundMsg carries one message received from the host.
type InboundMsg []byte

// ResyncMsg asks the model to request a fresh snapshot.
type ResyncMsg struct{}

// Resetter restarts the resync countdown.
type Resetter interface {
	Reset()
}

// Options configure the UI.
type Options struct {
	Session *session.Session
	// Resync, when set, is reset every time a snapshot arrives.
	Resync Resetter
	// Link, when set, supplies the connection state shown in the footer.
	Link *state.Store
	// LogPath is the device log shown by the log view.
	LogPath   string
	ThemeName string
}

// logViewLines bounds how much of the device log is read into memory.
const logViewLines = 200

// Model is the root application state for Bubble Tea.
type Model struct {
	sess    *session.Session
	resync  Resetter
	link    *state.Store
	logPath string

	keys     keyMap
	help     help.Model
	theme    Theme
	showHelp bool
	showLogs bool
	logLines []string
	logErr   error

	cursor int
	width  int
	height int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	return Model{
		sess:    opts.Session,
		resync:  opts.Resync,
		link:    opts.Link,
		logPath: opts.LogPath,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		theme:   GetTheme(opts.ThemeName),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Cursor returns the focused row.
func (m Model) Cursor() int { return m.cursor }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case InboundMsg:
		effect, err := m.sess.Receive(msg)
		if err != nil {
			return m, nil
		}
		if m.resync != nil {
			m.resync.Reset()
		}
		m.apply(effect)
		return m, nil

	case ResyncMsg:
		m.sess.Tick()
		if m.showLogs {
			m.refreshLogs()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Logs):
		m.showLogs = !m.showLogs
		if m.showLogs {
			m.refreshLogs()
		}
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.sess.RowCount()-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = m.sess.RowCount() - 1
	case key.Matches(msg, m.keys.Select):
		m.apply(m.sess.Activate(m.cursor))
	case key.Matches(msg, m.keys.LongSelect):
		m.sess.LongActivate(m.cursor)
	case key.Matches(msg, m.keys.Resync):
		m.sess.Tick()
	}
	return m, nil
}

// apply moves the cursor as the effect asks and keeps it on a real row.
func (m *Model) apply(e session.Effect) {
	switch e.Focus {
	case session.FocusFirst:
		m.cursor = 0
	case session.FocusNext:
		m.cursor++
	}
	if last := m.sess.RowCount() - 1; m.cursor > last {
		m.cursor = last
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View implements tea.Model.
func (m Model) View() string {
	styles := m.theme.Styles()
	width := m.width
	if width <= 0 {
		width = 32
	}

	var b strings.Builder
	b.WriteString(styles.Header.Width(width).Render(m.sess.Header()))
	b.WriteString("\n")

	if m.showLogs {
		m.renderLogs(&b, styles)
	} else {
		rows := m.sess.RowCount()
		start, end := m.window(rows)
		for i := start; i < end; i++ {
			row, err := m.sess.ItemAt(i)
			if err != nil {
				continue
			}
			b.WriteString(renderRow(styles, row, i == m.cursor, width))
			b.WriteString("\n")
		}
	}

	footer := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.showHelp {
		footer = m.help.FullHelpView(m.keys.FullHelp())
	}
	if status := m.linkStatus(styles); status != "" {
		footer = status + "  " + footer
	}
	b.WriteString(styles.Footer.Render(footer))
	return b.String()
}

func (m Model) linkStatus(styles Styles) string {
	if m.link == nil {
		return ""
	}
	snap := m.link.Snapshot()
	switch {
	case snap.Connected:
		return ""
	case snap.IsOffline():
		return styles.Offline.Render(fmt.Sprintf("offline (%d failed)", snap.ConsecutiveFailures))
	default:
		return styles.Pending.Render("connecting")
	}
}

func (m *Model) refreshLogs() {
	m.logLines, m.logErr = logtail.Read(m.logPath, logViewLines)
}

// renderLogs writes the tail of the device log that fits above the footer.
func (m Model) renderLogs(b *strings.Builder, styles Styles) {
	if m.logErr != nil {
		b.WriteString(styles.Offline.Render(m.logErr.Error()))
		b.WriteString("\n")
		return
	}
	lines := m.logLines
	if visible := m.height - 2; visible > 0 && len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}
	if len(lines) == 0 {
		b.WriteString(styles.Placeholder.Render("(log is empty)"))
		b.WriteString("\n")
		return
	}
	for _, line := range lines {
		b.WriteString(styles.LogLine.Render(line))
		b.WriteString("\n")
	}
}

// window returns the row range that fits the terminal with the cursor in it.
func (m Model) window(rows int) (int, int) {
	visible := m.height - 2
	if m.showHelp {
		visible -= 3
	}
	if visible <= 0 || rows <= visible {
		return 0, rows
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	return start, start + visible
}

func renderRow(styles Styles, row checklist.Row, selected bool, width int) string {
	if row.Placeholder {
		line := styles.Placeholder.Render(row.Name)
		if selected {
			line = styles.Selected.Render(row.Name)
		}
		return pad(line, width)
	}

	mark := "[ ]"
	name := styles.Row.Render(row.Name)
	if row.Collected {
		mark = "[x]"
		name = styles.Collected.Render(row.Name)
	}
	left := mark + " " + name

	right := ""
	if row.Amount > 1 {
		right = styles.Amount.Render(fmt.Sprintf("%d", row.Amount))
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right
	if selected {
		return styles.Selected.Render(pad(line, width))
	}
	return line
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// NewProgram wraps m in a full-screen program bound to ctx.
func NewProgram(ctx context.Context, m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
}
