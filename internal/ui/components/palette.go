package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"leverlab/internal/ui/theme"
)

// PaletteSubmitMsg carries the confirmed command line.
type PaletteSubmitMsg struct{ Input string }

type PaletteCancelMsg struct{}

// Command is one palette entry. Usage is shown as the hint.
type Command struct {
	Name  string
	Usage string
}

const (
	maxHints  = 5
	maxRecall = 20
)

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// Palette is a one-line command prompt with prefix hints, tab completion
// and recall of earlier commands.
type Palette struct {
	input    textinput.Model
	commands []Command
	recall   []string
	recallAt int
	visible  bool
	width    int
}

func NewPalette(commands ...Command) Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 256
	return Palette{input: ti, commands: commands}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows an empty prompt and returns its focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.recallAt = len(p.recall)
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.close()
			p.remember(val)
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "tab":
			p.complete()
			return p, nil
		case "up":
			p.step(-1)
			return p, nil
		case "down":
			p.step(1)
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p *Palette) remember(val string) {
	if val == "" || (len(p.recall) > 0 && p.recall[len(p.recall)-1] == val) {
		return
	}
	p.recall = append(p.recall, val)
	if len(p.recall) > maxRecall {
		p.recall = p.recall[len(p.recall)-maxRecall:]
	}
}

func (p *Palette) step(delta int) {
	next := p.recallAt + delta
	if next < 0 || next > len(p.recall) {
		return
	}
	p.recallAt = next
	if next == len(p.recall) {
		p.input.SetValue("")
		return
	}
	p.input.SetValue(p.recall[next])
	p.input.CursorEnd()
}

// complete fills in the command name when exactly one command matches the
// typed prefix.
func (p *Palette) complete() {
	val := p.input.Value()
	if strings.Contains(val, " ") {
		return
	}
	if m := p.matching(val); len(m) == 1 {
		p.input.SetValue(m[0].Name + " ")
		p.input.CursorEnd()
	}
}

func (p Palette) matching(prefix string) []Command {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if name, _, found := strings.Cut(prefix, " "); found {
		prefix = name
	}
	var out []Command
	for _, c := range p.commands {
		if strings.HasPrefix(c.Name, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if hints := p.matching(p.input.Value()); len(hints) > 0 {
		sb.WriteString("\n")
		for i, c := range hints {
			if i == maxHints {
				break
			}
			sb.WriteString(hintStyle.Render("  "+c.Usage) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
