// Package tui provides a Bubble Tea TUI for browsing the tracked task list
// and the snapshot log.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/awendt/warden/internal/snapshot"
	"github.com/awendt/warden/internal/task"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	timeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))

	statusPendingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	statusInProgressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	statusCompletedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// ── Tab definitions ─────────────────

type tabID int

const (
	tabTasks tabID = iota
	tabSnapshots
	tabCount
)

var tabNames = [tabCount]string{"Tasks", "Snapshots"}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the viewer.
type Model struct {
	incomplete []task.Record
	completed  []task.Record
	snapshots  []snapshot.Snapshot
	activeTab  tabID
	viewports  [tabCount]viewport.Model
	width      int
	height     int
	ready      bool
}

// New creates a viewer over the given task list and snapshot log contents.
func New(incomplete, completed []task.Record, snaps []snapshot.Snapshot) Model {
	return Model{
		incomplete: incomplete,
		completed:  completed,
		snapshots:  snaps,
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1", "2":
			m.activeTab = tabID(msg.String()[0] - '1')
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  warden")

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	hint := "  ←/→ tab  ↑/↓ scroll  q quit"
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(pct) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(hint + strings.Repeat(" ", pad) + pct)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

// ── Viewport management ───────────────────────────────────────────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

// ── Tab renderers ─────────────────────────────────────────────────────────────

func (m *Model) renderTab(t tabID) string {
	if t == tabSnapshots {
		return m.renderSnapshots()
	}
	return m.renderTasks()
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func styledStatus(s task.Status) string {
	switch s {
	case task.StatusInProgress:
		return statusInProgressStyle.Render("in progress")
	case task.StatusCompleted:
		return statusCompletedStyle.Render("completed")
	default:
		return statusPendingStyle.Render("pending")
	}
}

func (m *Model) renderTasks() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Open (%d)", len(m.incomplete))))
	if len(m.incomplete) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
	}
	for _, t := range m.incomplete {
		fmt.Fprintf(&sb, "  %s  %s\n", styledStatus(t.Status), t.Content)
	}

	sb.WriteString(heading(fmt.Sprintf("Completed (%d)", len(m.completed))))
	if len(m.completed) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
	}
	for _, t := range m.completed {
		fmt.Fprintf(&sb, "  %s  %s\n", styledStatus(t.Status), t.Content)
	}
	return sb.String()
}

func (m *Model) renderSnapshots() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Snapshots (%d)", len(m.snapshots))))
	if len(m.snapshots) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}

	// Newest first: the latest snapshot is the one a handover cares about.
	for i := len(m.snapshots) - 1; i >= 0; i-- {
		s := m.snapshots[i]
		fmt.Fprintf(&sb, "  %s  %s  %s\n",
			timeStyle.Render(s.TakenAt.Format("2006-01-02 15:04:05")),
			string(s.Trigger),
			dimStyle.Render("session "+s.SessionID),
		)
		fmt.Fprintf(&sb, "      %d task(s), %d planning note(s)\n", len(s.Tasks), len(s.PlanningNotes))
		for _, n := range s.PlanningNotes {
			if len(n) > 100 {
				n = n[:100] + "…"
			}
			fmt.Fprintf(&sb, "      • %s\n", n)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
