package live

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	metricsdto "lootledger/internal/modules/metrics/dto"
	"lootledger/internal/platform/money"
	"lootledger/internal/ui/theme"
)

// Port is the minimal interface this view needs from the metrics use-case.
type Port interface {
	Active(ctx context.Context, identity string) (metricsdto.Metrics, error)
}

// MetricsLoadedMsg carries one refresh result.
type MetricsLoadedMsg struct {
	Metrics metricsdto.Metrics
	Err     error
}

type refreshMsg struct{}

var categoryLabels = map[string]string{
	"net_worth":    "Net worth",
	"cash":         "Cash",
	"inventory":    "Inventory",
	"income":       "Income",
	"looted":       "Looted",
	"coin":         "Coin",
	"vendor_sales": "Vendor sales",
	"expenses":     "Expenses",
	"realized":     "Realized",
}

// Model polls metrics of one identity and renders them.
type Model struct {
	port     Port
	identity string
	interval time.Duration
	metrics  metricsdto.Metrics
	err      error
	loaded   bool
	body     viewport.Model
	spinner  spinner.Model
	width    int
	height   int
}

func New(port Port, identity string, interval time.Duration) Model {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Foreground(theme.Text)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, identity: identity, interval: interval, body: vp, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Refresh(), m.spinner.Tick)
}

// Refresh loads metrics now.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return MetricsLoadedMsg{Err: fmt.Errorf("metrics not configured")}
		}
		out, err := m.port.Active(context.Background(), m.identity)
		return MetricsLoadedMsg{Metrics: out, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.body.Width = msg.Width
		m.body.Height = msg.Height
		m.body.SetContent(m.render())

	case MetricsLoadedMsg:
		m.loaded = true
		m.err = msg.Err
		if msg.Err == nil {
			m.metrics = msg.Metrics
		}
		m.body.SetContent(m.render())
		cmds = append(cmds, tea.Tick(m.interval, func(time.Time) tea.Msg { return refreshMsg{} }))

	case refreshMsg:
		cmds = append(cmds, m.Refresh())

	case spinner.TickMsg:
		if !m.loaded {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var vCmd tea.Cmd
	m.body, vCmd = m.body.Update(msg)
	cmds = append(cmds, vCmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if !m.loaded {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading session…")
	}
	return m.body.View()
}

// Metrics returns the last successful refresh.
func (m Model) Metrics() metricsdto.Metrics { return m.metrics }

func (m Model) render() string {
	if m.err != nil {
		return theme.Muted.Render(m.identity+": "+m.err.Error()) + "\n\n" +
			theme.Muted.Render(": start  to open a session")
	}
	mt := m.metrics
	header := theme.Title.Render(mt.Identity) + "  " +
		theme.Muted.Render(fmt.Sprintf("%s  %s", mt.Status, (time.Duration(mt.DurationSec)*time.Second).String()))

	half := (m.width - 4) / 2
	if half < 30 {
		half = 30
	}
	left := lipgloss.JoinVertical(lipgloss.Left,
		pane("Totals", renderCategories(mt.Categories), half),
		pane("Inventory by bucket", renderLines(mt.Buckets, 0), half),
		pane("Counters", renderCounters(mt.Counters), half),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		pane("Top items", renderLines(mt.TopItems.Lines, mt.TopItems.More), half),
		pane("Top income", renderLines(mt.TopIncome.Lines, mt.TopIncome.More), half),
		pane("Top expenses", renderLines(mt.TopExpenses.Lines, mt.TopExpenses.More), half),
	)
	return header + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func pane(title, body string, width int) string {
	return theme.Pane.Width(width).Render(theme.Title.Render(title) + "\n" + body)
}

func renderCategories(categories []metricsdto.Category) string {
	var sb strings.Builder
	for _, c := range categories {
		label := categoryLabels[c.Name]
		if label == "" {
			label = c.Name
		}
		value := money.Format(c.Total)
		switch {
		case c.Name == "net_worth":
			value = theme.Gold.Render(value)
		case c.Name == "expenses" && c.Total > 0:
			value = theme.Loss.Render(value)
		case c.Total > 0:
			value = theme.Gain.Render(value)
		}
		fmt.Fprintf(&sb, "%-13s %s %s\n", label, value, theme.Muted.Render(money.Format(c.Rate)+"/h"))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderLines(lines []metricsdto.Line, more int) string {
	if len(lines) == 0 {
		return theme.Muted.Render("none")
	}
	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "%-24s %s\n", truncate(l.Label, 24), money.Format(l.Amount))
	}
	if more > 0 {
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("+%d more", more)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderCounters(counters []metricsdto.Counter) string {
	if len(counters) == 0 {
		return theme.Muted.Render("none")
	}
	var sb strings.Builder
	for _, c := range counters {
		fmt.Fprintf(&sb, "%-13s %d %s\n", c.Name, c.Total, theme.Muted.Render(fmt.Sprintf("%d/h", c.Rate)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
