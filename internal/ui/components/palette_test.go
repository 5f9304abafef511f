package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCommands = []Command{
	{Name: "focus:refresh", Usage: "focus:refresh"},
	{Name: "focus:start", Usage: "focus:start <1|2> [replace]"},
	{Name: "history:reload", Usage: "history:reload"},
}

func typeText(p Palette, s string) Palette {
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return p
}

func press(p Palette, k tea.KeyType) (Palette, tea.Cmd) {
	return p.Update(tea.KeyMsg{Type: k})
}

func TestPaletteCompletesUniquePrefix(t *testing.T) {
	p := NewPalette(testCommands...)
	p.Open()
	p = typeText(p, "h")
	p, _ = press(p, tea.KeyTab)
	assert.Equal(t, "history:reload ", p.input.Value())

	p.Open()
	p = typeText(p, "focus:")
	p, _ = press(p, tea.KeyTab)
	assert.Equal(t, "focus:", p.input.Value(), "ambiguous prefix stays as typed")
	assert.Len(t, p.matching("focus:start 2"), 1)
}

func TestPaletteSubmitAndRecall(t *testing.T) {
	p := NewPalette(testCommands...)
	p.Open()
	p = typeText(p, " focus:start 2 ")
	p, cmd := press(p, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, PaletteSubmitMsg{Input: "focus:start 2"}, cmd())
	assert.False(t, p.Visible())

	p.Open()
	p, _ = press(p, tea.KeyUp)
	assert.Equal(t, "focus:start 2", p.input.Value())
	p, _ = press(p, tea.KeyUp)
	assert.Equal(t, "focus:start 2", p.input.Value(), "recall stops at the oldest entry")
	p, _ = press(p, tea.KeyDown)
	assert.Empty(t, p.input.Value())
}

func TestPaletteEscCancels(t *testing.T) {
	p := NewPalette(testCommands...)
	p.Open()
	p, cmd := press(p, tea.KeyEsc)
	require.NotNil(t, cmd)
	assert.Equal(t, PaletteCancelMsg{}, cmd())
	assert.False(t, p.Visible())
	assert.Empty(t, p.recall)
}

func TestPaletteIgnoresInputWhenHidden(t *testing.T) {
	p := NewPalette(testCommands...)
	p = typeText(p, "x")
	assert.Empty(t, p.input.Value())
	assert.Empty(t, p.View())
}
