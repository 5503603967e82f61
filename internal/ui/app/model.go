package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	metricsdto "lootledger/internal/modules/metrics/dto"
	sessiondto "lootledger/internal/modules/session/dto"
	apperrors "lootledger/internal/platform/errors"
	"lootledger/internal/platform/money"
	"lootledger/internal/ui/components"
	"lootledger/internal/ui/theme"
	historyview "lootledger/internal/ui/views/history"
	liveview "lootledger/internal/ui/views/live"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.

type sessionPort interface {
	Start(ctx context.Context, identity string) (sessiondto.SessionOutput, error)
	Pause(ctx context.Context, identity string) (sessiondto.SessionOutput, error)
	Resume(ctx context.Context, identity string) (sessiondto.SessionOutput, error)
	Stop(ctx context.Context, identity string) (sessiondto.SessionOutput, error)
	Connect(ctx context.Context, identity string) (sessiondto.SessionOutput, error)
	Disconnect(ctx context.Context, identity string) (sessiondto.SessionOutput, error)
	Active(ctx context.Context, identity string) (sessiondto.SessionOutput, error)
	Loot(ctx context.Context, identity string, itemID, count int64) (sessiondto.SignalOutput, error)
	Sell(ctx context.Context, identity string, itemID, count, proceeds int64) (sessiondto.SignalOutput, error)
	Remove(ctx context.Context, identity string, itemID, count int64, reason string) (sessiondto.SignalOutput, error)
	Money(ctx context.Context, identity string, amount int64, source string) (sessiondto.SignalOutput, error)
	Counter(ctx context.Context, identity, name string, value, max int64) (sessiondto.SignalOutput, error)
	Archive(ctx context.Context, sessionID string) (sessiondto.UndoToken, error)
	Delete(ctx context.Context, sessionID string) (sessiondto.UndoToken, error)
	Undo(ctx context.Context, token string) (sessiondto.UndoOutput, error)
	List(ctx context.Context, identity string, includeArchived bool) ([]sessiondto.SessionOutput, error)
}

type metricsPort interface {
	Active(ctx context.Context, identity string) (metricsdto.Metrics, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabLive tabID = iota
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{"Live", "History"}

// ─── async messages ───────────────────────────────────────────────────────────

type activeLoadedMsg struct {
	active sessiondto.SessionOutput
	err    error
}

// commandDoneMsg reports the outcome of a palette command.
type commandDoneMsg struct {
	status string
	undo   string
	err    error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab      key.Binding
	Help     key.Binding
	Palette  key.Binding
	Quit     key.Binding
	Refresh  key.Binding
	Pause    key.Binding
	Archived key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Pause:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause/resume")),
		Archived: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle archived")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Refresh, k.Pause},
		{k.Archived},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model for one identity. It owns tab routing,
// the help overlay and the command palette. Session mutations go through the
// session port; rendering is delegated to sub-views.
type Model struct {
	identity string
	session  sessionPort

	liveView    liveview.Model
	historyView historyview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	active    sessiondto.SessionOutput
	hasActive bool
	lastUndo  string
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(identity string, session sessionPort, metrics metricsPort, refresh time.Duration) Model {
	var live liveview.Model
	if metrics != nil {
		live = liveview.New(metrics, identity, refresh)
	} else {
		live = liveview.New(nil, identity, refresh)
	}
	var hist historyview.Model
	if session != nil {
		hist = historyview.New(session, identity)
	} else {
		hist = historyview.New(nil, identity)
	}
	return Model{
		identity:    identity,
		session:     session,
		liveView:    live,
		historyView: hist,
		activeTab:   tabLive,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.liveView.Init(),
		m.historyView.Init(),
		m.loadActiveCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case activeLoadedMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, apperrors.ErrNoActiveSession) {
				m.status = "active session check: " + msg.err.Error()
			}
			m.hasActive = false
			m.active = sessiondto.SessionOutput{}
		} else {
			m.hasActive = true
			m.active = msg.active
		}
		return m, nil

	case commandDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		if msg.undo != "" {
			m.lastUndo = msg.undo
		}
		return m, tea.Batch(m.loadActiveCmd(), m.liveView.Refresh(), m.historyView.Reload())

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the history list while its filter is open.
		if m.activeTab == tabHistory && m.historyView.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "r":
			return m, tea.Batch(m.loadActiveCmd(), m.liveView.Refresh(), m.historyView.Reload())
		case "p":
			if m.hasActive && m.active.Status == "paused" {
				return m, m.run("resumed", func(ctx context.Context) (string, error) {
					_, err := m.session.Resume(ctx, m.identity)
					return "", err
				})
			}
			return m, m.run("paused", func(ctx context.Context) (string, error) {
				_, err := m.session.Pause(ctx, m.identity)
				return "", err
			})
		}
	}

	// Data messages reach both tabs; keys only the visible one.
	var cmd tea.Cmd
	switch msg.(type) {
	case tea.KeyMsg:
		if m.activeTab == tabLive {
			m.liveView, cmd = m.liveView.Update(msg)
		} else {
			m.historyView, cmd = m.historyView.Update(msg)
		}
		cmds = append(cmds, cmd)
	default:
		m.liveView, cmd = m.liveView.Update(msg)
		cmds = append(cmds, cmd)
		m.historyView, cmd = m.historyView.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabHistory:
		content = m.historyView.View()
	default:
		content = m.liveView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "lootledger  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.hasActive {
		left = theme.Hot.Render("● "+m.identity+" "+m.active.Status) + "  " + left
	}
	if m.lastUndo != "" {
		left += theme.Muted.Render("  undo " + m.lastUndo)
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	if m.session == nil {
		m.status = "session adapter not configured"
		return m, nil
	}
	id := m.identity
	args := parts[1:]

	switch parts[0] {
	case "start":
		return m, m.run("session started", func(ctx context.Context) (string, error) {
			_, err := m.session.Start(ctx, id)
			return "", err
		})
	case "pause":
		return m, m.run("paused", func(ctx context.Context) (string, error) {
			_, err := m.session.Pause(ctx, id)
			return "", err
		})
	case "resume":
		return m, m.run("resumed", func(ctx context.Context) (string, error) {
			_, err := m.session.Resume(ctx, id)
			return "", err
		})
	case "stop":
		return m, m.run("session stopped", func(ctx context.Context) (string, error) {
			_, err := m.session.Stop(ctx, id)
			return "", err
		})
	case "connect":
		return m, m.run("connected", func(ctx context.Context) (string, error) {
			_, err := m.session.Connect(ctx, id)
			return "", err
		})
	case "disconnect":
		return m, m.run("disconnected", func(ctx context.Context) (string, error) {
			_, err := m.session.Disconnect(ctx, id)
			return "", err
		})

	case "loot":
		nums, err := parseInts(args, 2)
		if err != nil {
			m.status = "usage: loot <item> <count>"
			return m, nil
		}
		return m, m.run("", func(ctx context.Context) (string, error) {
			out, err := m.session.Loot(ctx, id, nums[0], nums[1])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("looted %d × %d (%s @ %s)", nums[1], nums[0], out.Bucket, money.Format(out.ValuePerUnit)), nil
		})

	case "sell":
		if len(args) < 3 {
			m.status = "usage: sell <item> <count> <proceeds>"
			return m, nil
		}
		nums, err := parseInts(args[:2], 2)
		if err != nil {
			m.status = "usage: sell <item> <count> <proceeds>"
			return m, nil
		}
		proceeds, err := money.Parse(args[2])
		if err != nil {
			m.status = "invalid proceeds: " + err.Error()
			return m, nil
		}
		return m, m.run("", func(ctx context.Context) (string, error) {
			if _, err := m.session.Sell(ctx, id, nums[0], nums[1], proceeds); err != nil {
				return "", err
			}
			return fmt.Sprintf("sold %d × %d for %s", nums[1], nums[0], money.Format(proceeds)), nil
		})

	case "remove":
		if len(args) < 2 {
			m.status = "usage: remove <item> <count> [reason]"
			return m, nil
		}
		nums, err := parseInts(args[:2], 2)
		if err != nil {
			m.status = "usage: remove <item> <count> [reason]"
			return m, nil
		}
		reason := strings.Join(args[2:], " ")
		return m, m.run("", func(ctx context.Context) (string, error) {
			if _, err := m.session.Remove(ctx, id, nums[0], nums[1], reason); err != nil {
				return "", err
			}
			return fmt.Sprintf("removed %d × %d", nums[1], nums[0]), nil
		})

	case "money":
		if len(args) < 2 {
			m.status = "usage: money <amount> <source>"
			return m, nil
		}
		amount, err := money.Parse(args[0])
		if err != nil {
			m.status = "invalid amount: " + err.Error()
			return m, nil
		}
		source := strings.Join(args[1:], " ")
		return m, m.run("", func(ctx context.Context) (string, error) {
			if _, err := m.session.Money(ctx, id, amount, source); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s %s", money.Format(amount), source), nil
		})

	case "counter":
		if len(args) < 3 {
			m.status = "usage: counter <name> <value> <max>"
			return m, nil
		}
		nums, err := parseInts(args[1:3], 2)
		if err != nil {
			m.status = "usage: counter <name> <value> <max>"
			return m, nil
		}
		name := args[0]
		return m, m.run("", func(ctx context.Context) (string, error) {
			out, err := m.session.Counter(ctx, id, name, nums[0], nums[1])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s +%d", name, out.CounterDelta), nil
		})

	case "archive", "delete":
		target := m.selectedOr(args)
		if target == "" {
			m.status = "usage: " + parts[0] + " <session>"
			return m, nil
		}
		verb := parts[0]
		return m, m.runUndoable(func(ctx context.Context) (sessiondto.UndoToken, error) {
			if verb == "archive" {
				return m.session.Archive(ctx, target)
			}
			return m.session.Delete(ctx, target)
		}, verb+"d "+target)

	case "undo":
		token := m.lastUndo
		if len(args) > 0 {
			token = args[0]
		}
		if token == "" {
			m.status = "nothing to undo"
			return m, nil
		}
		m.lastUndo = ""
		return m, m.run("", func(ctx context.Context) (string, error) {
			out, err := m.session.Undo(ctx, token)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("undid %s (%d restored)", out.Kind, len(out.Restored)), nil
		})

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m Model) selectedOr(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if m.activeTab == tabHistory {
		if id, ok := m.historyView.SelectedSessionID(); ok {
			return id
		}
	}
	return ""
}

func parseInts(args []string, n int) ([]int64, error) {
	if len(args) < n {
		return nil, fmt.Errorf("want %d numbers", n)
	}
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseInt(args[i], 10, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.liveView, _ = m.liveView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) run(okStatus string, fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		status, err := fn(context.Background())
		if status == "" {
			status = okStatus
		}
		return commandDoneMsg{status: status, err: err}
	}
}

func (m Model) runUndoable(fn func(ctx context.Context) (sessiondto.UndoToken, error), okStatus string) tea.Cmd {
	return func() tea.Msg {
		token, err := fn(context.Background())
		if err != nil {
			return commandDoneMsg{err: err}
		}
		return commandDoneMsg{status: okStatus, undo: token.Token}
	}
}

func (m Model) loadActiveCmd() tea.Cmd {
	return func() tea.Msg {
		if m.session == nil {
			return activeLoadedMsg{err: apperrors.ErrNoActiveSession}
		}
		active, err := m.session.Active(context.Background(), m.identity)
		return activeLoadedMsg{active: active, err: err}
	}
}
