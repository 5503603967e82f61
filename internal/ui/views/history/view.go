package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "lootledger/internal/modules/session/dto"
	"lootledger/internal/platform/money"
	"lootledger/internal/ui/theme"
)

// Port is the minimal interface this view needs from the session use-case.
type Port interface {
	List(ctx context.Context, identity string, includeArchived bool) ([]sessiondto.SessionOutput, error)
}

type SessionsLoadedMsg struct {
	Sessions []sessiondto.SessionOutput
	Err      error
}

type sessionItem struct {
	session sessiondto.SessionOutput
}

func (i sessionItem) Title() string {
	return i.session.StartedAt.Local().Format("2006-01-02 15:04") + "  " + money.Format(i.session.NetWorth)
}

func (i sessionItem) Description() string {
	return fmt.Sprintf("%s  %s", i.session.Status, (time.Duration(i.session.DurationSec) * time.Second).String())
}

func (i sessionItem) FilterValue() string { return i.session.ID + " " + i.session.Status }

// Model lists past sessions of one identity with a detail pane.
type Model struct {
	port            Port
	identity        string
	includeArchived bool
	list            list.Model
	detail          viewport.Model
	width           int
	height          int
}

func New(port Port, identity string) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Sessions"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text).Padding(1)

	return Model{port: port, identity: identity, list: l, detail: vp}
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// Reload fetches the session list again.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return SessionsLoadedMsg{Err: fmt.Errorf("history not configured")}
		}
		sessions, err := m.port.List(context.Background(), m.identity, m.includeArchived)
		return SessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case SessionsLoadedMsg:
		if msg.Err != nil {
			m.list.Title = "Sessions: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Sessions"
		items := make([]list.Item, 0, len(msg.Sessions))
		for i := len(msg.Sessions) - 1; i >= 0; i-- {
			items = append(items, sessionItem{session: msg.Sessions[i]})
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.detail.SetContent(m.renderDetail())

	case tea.KeyMsg:
		if msg.String() == "a" && !m.Filtering() {
			m.includeArchived = !m.includeArchived
			return m, m.Reload()
		}
	}

	var lCmd tea.Cmd
	m.list, lCmd = m.list.Update(msg)
	m.detail.SetContent(m.renderDetail())
	cmds = append(cmds, lCmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// SelectedSessionID returns the highlighted session, if any.
func (m Model) SelectedSessionID() (string, bool) {
	if item, ok := m.list.SelectedItem().(sessionItem); ok {
		return item.session.ID, true
	}
	return "", false
}

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = detailW - 4
	m.detail.Height = m.height - 4
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(sessionItem)
	if !ok {
		return theme.Muted.Render("No sessions yet")
	}
	s := item.session
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(s.Identity) + "\n\n")
	row := func(label, value string) {
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("%-10s", label)) + value + "\n")
	}
	row("id", s.ID)
	row("status", s.Status)
	row("started", s.StartedAt.Local().Format(time.RFC1123))
	if s.EndedAt != nil {
		row("ended", s.EndedAt.Local().Format(time.RFC1123))
	}
	row("duration", (time.Duration(s.DurationSec) * time.Second).String())
	row("net worth", theme.Gold.Render(money.Format(s.NetWorth)))
	row("cash", money.Format(s.Cash))
	row("inventory", money.Format(s.Inventory))
	row("income", money.Format(s.Income))
	row("expenses", money.Format(s.Expenses))
	row("realized", money.Format(s.Realized))
	if len(s.MergedFrom) > 0 {
		row("merged", strings.Join(s.MergedFrom, ", "))
	}
	archived := "hidden"
	if m.includeArchived {
		archived = "shown"
	}
	sb.WriteString("\n" + theme.Muted.Render("a: archived "+archived+"  :archive/delete <id>"))
	return sb.String()
}
