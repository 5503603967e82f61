package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lootledger/internal/ui/theme"
)

// PaletteSubmitMsg carries the confirmed command line.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is sent on esc.
type PaletteCancelMsg struct{}

const (
	maxRecall = 32
	hintLimit = 6
)

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle   = lipgloss.NewStyle().Foreground(theme.Subtext0)
	chosenStyle = lipgloss.NewStyle().Foreground(theme.Lavender).Bold(true)
)

// commands must stay in sync with executePalette in app/model.go.
var commands = []string{
	"start",
	"pause",
	"resume",
	"stop",
	"connect",
	"disconnect",
	"loot <item> <count>",
	"sell <item> <count> <proceeds>",
	"remove <item> <count> [reason]",
	"money <amount> <source>",
	"counter <name> <value> <max>",
	"archive <session>",
	"delete <session>",
	"undo [token]",
}

// Hints lists the commands whose verb starts with the first word of line.
// Once arguments are being typed only the exact verb matches.
func Hints(line string, limit int) []string {
	fields := strings.Fields(strings.ToLower(line))
	verb := ""
	if len(fields) > 0 {
		verb = fields[0]
	}
	typingArgs := len(fields) > 1 || strings.HasSuffix(line, " ")
	var out []string
	for _, c := range commands {
		name, _, _ := strings.Cut(c, " ")
		if typingArgs && name != verb {
			continue
		}
		if !strings.HasPrefix(name, verb) {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Palette is the ":" command line. tab completes the verb; up and down walk
// earlier submissions.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
	recall  []string
	cursor  int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Prompt = ": "
	ti.Placeholder = "loot 2589 4"
	ti.CharLimit = 256
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

func (p *Palette) SetWidth(w int) { p.width = w }

// Open shows an empty palette and focuses it.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.cursor = len(p.recall)
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return p, cmd
	}
	switch key.String() {
	case "esc":
		p.close()
		return p, func() tea.Msg { return PaletteCancelMsg{} }
	case "enter":
		line := strings.TrimSpace(p.input.Value())
		p.close()
		if line != "" {
			p.remember(line)
		}
		return p, func() tea.Msg { return PaletteSubmitMsg{Input: line} }
	case "tab":
		p.complete()
		return p, nil
	case "up":
		if p.cursor > 0 {
			p.cursor--
			p.input.SetValue(p.recall[p.cursor])
			p.input.CursorEnd()
		}
		return p, nil
	case "down":
		if p.cursor < len(p.recall) {
			p.cursor++
			if p.cursor == len(p.recall) {
				p.input.SetValue("")
			} else {
				p.input.SetValue(p.recall[p.cursor])
			}
			p.input.CursorEnd()
		}
		return p, nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Palette) remember(line string) {
	if n := len(p.recall); n > 0 && p.recall[n-1] == line {
		return
	}
	p.recall = append(p.recall, line)
	if len(p.recall) > maxRecall {
		p.recall = p.recall[len(p.recall)-maxRecall:]
	}
}

// complete fills in the verb when exactly one command matches.
func (p *Palette) complete() {
	value := p.input.Value()
	if strings.Contains(strings.TrimSpace(value), " ") {
		return
	}
	matches := Hints(value, 0)
	if len(matches) != 1 {
		return
	}
	name, _, _ := strings.Cut(matches[0], " ")
	p.input.SetValue(name + " ")
	p.input.CursorEnd()
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(p.input.View() + "\n")
	hints := Hints(p.input.Value(), hintLimit)
	if len(hints) > 0 {
		sb.WriteString("\n")
	}
	for i, h := range hints {
		style := hintStyle
		if len(hints) == 1 && i == 0 {
			style = chosenStyle
		}
		sb.WriteString(style.Render("  "+h) + "\n")
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
