package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	experimentdto "leverlab/internal/modules/experiment/dto"
	"leverlab/internal/ui/theme"
)

// reviewPane scrolls a loaded review. The narrative is markdown and goes
// through glamour; the metric table is drawn with lipgloss.
type reviewPane struct {
	viewport viewport.Model
	renderer *glamour.TermRenderer
	view     *experimentdto.ReviewViewOutput
	content  string
}

func newReviewPane() reviewPane {
	return reviewPane{
		viewport: viewport.New(0, 0),
		renderer: newRenderer(0),
	}
}

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

func (p *reviewPane) resize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = max(height, 1)
	// rewrap at the new width
	if r := newRenderer(width); r != nil {
		p.renderer = r
	}
	if p.view != nil {
		p.setContent()
	}
}

func (p *reviewPane) show(view experimentdto.ReviewViewOutput) {
	p.view = &view
	p.setContent()
	p.viewport.GotoTop()
}

func (p *reviewPane) setContent() {
	narrative := reviewMarkdown(*p.view)
	if p.renderer != nil && narrative != "" {
		if rendered, err := p.renderer.Render(narrative); err == nil {
			narrative = rendered
		}
	}
	p.content = renderReviewSummary(*p.view) + narrative
	p.viewport.SetContent(p.content)
}

func (p reviewPane) update(msg tea.Msg) (reviewPane, tea.Cmd) {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p reviewPane) render() string {
	if p.view == nil {
		return theme.Muted.Render("Select an experiment in History and press enter.")
	}
	return p.viewport.View() + "\n" + theme.Muted.Render(fmt.Sprintf("%.0f%%  pgup/pgdn: scroll", p.viewport.ScrollPercent()*100))
}
