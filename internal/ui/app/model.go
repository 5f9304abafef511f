package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	experimentdto "leverlab/internal/modules/experiment/dto"
	focusdto "leverlab/internal/modules/focus/dto"
	apperrors "leverlab/internal/platform/errors"
	"leverlab/internal/ui/components"
	"leverlab/internal/ui/theme"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// The dashboard talks to the inbound CLI handlers through these narrow views.

type experimentPort interface {
	Start(ctx context.Context, input experimentdto.StartInput) (experimentdto.StartOutput, error)
	End(ctx context.Context, userID, id, endDate string) (experimentdto.EndOutput, error)
	Review(ctx context.Context, input experimentdto.ReviewInput) (experimentdto.ExperimentOutput, error)
	Finalize(ctx context.Context, input experimentdto.ReviewInput) (experimentdto.FinalizeOutput, error)
	Active(ctx context.Context, userID string) (experimentdto.ExperimentOutput, error)
	History(ctx context.Context, userID string, limit, offset int, includePending bool) ([]experimentdto.ExperimentOutput, error)
	ReviewView(ctx context.Context, userID, id string) (experimentdto.ReviewViewOutput, error)
	Preview(ctx context.Context, userID, id, asOf string) (experimentdto.PreviewOutput, error)
}

type focusPort interface {
	Next(ctx context.Context, userID, date string, refresh bool) (focusdto.NextOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabToday tabID = iota
	tabFocus
	tabHistory
	tabReview
	tabCount
)

var tabLabels = [tabCount]string{"Today", "Next focus", "History", "Review"}

const historyLimit = 20

// ─── async messages ──────────────────────────────────────────────────────────
// Every load carries the generation it was issued under. Update drops any
// result whose generation is no longer current, so a slow response can never
// overwrite a newer one.

type snapshot struct {
	active  *experimentdto.ExperimentOutput
	preview *experimentdto.PreviewOutput
	focus   focusdto.NextOutput
	history []experimentdto.ExperimentOutput
}

type dashboardLoadedMsg struct {
	gen  uint64
	snap snapshot
	err  error
}

type reviewLoadedMsg struct {
	gen  uint64
	view experimentdto.ReviewViewOutput
	err  error
}

// actionDoneMsg reports a mutation; the dashboard reloads after it.
type actionDoneMsg struct {
	status string
	err    error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Pick    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "move")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↑/↓", "move")),
		Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open review")),
		Pick:    key.NewBinding(key.WithKeys("1", "2"), key.WithHelp("1/2", "start suggestion")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Refresh, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Up, k.Enter},
		{k.Pick, k.Refresh},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model of the dashboard.
type Model struct {
	userID string

	experiments experimentPort
	focus       focusPort

	gen       uint64
	reviewGen uint64
	loading   bool

	snap    snapshot
	review  reviewPane
	cursor  int
	loadErr error
	spinner spinner.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

func NewModel(userID string, experiments experimentPort, focus focusPort) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Hot
	return Model{
		userID:      userID,
		experiments: experiments,
		focus:       focus,
		loading:     true,
		review:      newReviewPane(),
		spinner:     sp,
		activeTab:   tabToday,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(paletteCommands...),
		status:      "loading…",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(m.gen, false), m.spinner.Tick)
}

// refresh starts a new generation and returns the command that loads it.
func (m Model) refresh(force bool) (Model, tea.Cmd) {
	m.gen++
	m.loading = true
	return m, m.loadCmd(m.gen, force)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		// pane border and padding take 4 columns, the bars 5 rows
		m.review.resize(max(m.width-8, 20), m.height-9)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dashboardLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.loadErr = msg.err
		if msg.err != nil {
			m.status = "load failed: " + msg.err.Error()
			return m, nil
		}
		m.snap = msg.snap
		if m.cursor >= len(m.snap.history) {
			m.cursor = max(len(m.snap.history)-1, 0)
		}
		m.status = "ready"

	case reviewLoadedMsg:
		if msg.gen != m.reviewGen {
			return m, nil
		}
		if msg.err != nil {
			m.status = "review: " + msg.err.Error()
			return m, nil
		}
		m.review.show(msg.view)
		m.activeTab = tabReview
		m.status = "review: " + msg.view.Experiment.Title

	case actionDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		var cmd tea.Cmd
		m, cmd = m.refresh(true)
		return m, tea.Batch(cmd, m.spinner.Tick)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = true
		case ":":
			return m, m.palette.Open()
		case "r":
			var cmd tea.Cmd
			m, cmd = m.refresh(true)
			m.status = "refreshing…"
			return m, tea.Batch(cmd, m.spinner.Tick)
		case "up", "k":
			if m.activeTab == tabHistory && m.cursor > 0 {
				m.cursor--
			}
			if m.activeTab == tabReview {
				return m.scrollReview(msg)
			}
		case "down", "j":
			if m.activeTab == tabHistory && m.cursor < len(m.snap.history)-1 {
				m.cursor++
			}
			if m.activeTab == tabReview {
				return m.scrollReview(msg)
			}
		case "pgup", "pgdown":
			if m.activeTab == tabReview {
				return m.scrollReview(msg)
			}
		case "enter":
			if m.activeTab == tabHistory && len(m.snap.history) > 0 {
				var cmd tea.Cmd
				m, cmd = m.openReview(m.snap.history[m.cursor].ID)
				return m, cmd
			}
		case "1", "2":
			if m.activeTab == tabFocus {
				n, _ := strconv.Atoi(msg.String())
				return m.startOption(n, false)
			}
		}
	}
	return m, nil
}

func (m Model) scrollReview(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.review, cmd = m.review.update(msg)
	return m, cmd
}

func (m Model) openReview(id string) (Model, tea.Cmd) {
	m.reviewGen++
	gen := m.reviewGen
	m.status = "loading review…"
	return m, func() tea.Msg {
		view, err := m.experiments.ReviewView(context.Background(), m.userID, id)
		return reviewLoadedMsg{gen: gen, view: view, err: err}
	}
}

func (m Model) startOption(n int, replace bool) (tea.Model, tea.Cmd) {
	if n < 1 || n > len(m.snap.focus.Options) {
		m.status = fmt.Sprintf("no suggestion %d", n)
		return m, nil
	}
	p := m.snap.focus.Options[n-1].Preset
	input := experimentdto.StartInput{
		UserID:          m.userID,
		Title:           p.Title,
		LeverType:       p.LeverType,
		LeverRef:        p.LeverRef,
		TargetMetric:    p.TargetMetric,
		BaselineDays:    p.BaselineDays,
		RecommendedDays: p.RecommendedDays,
		Effort:          p.Effort,
		Impact:          p.Impact,
		ReplaceActive:   replace,
	}
	return m, func() tea.Msg {
		out, err := m.experiments.Start(context.Background(), input)
		if err != nil {
			return actionDoneMsg{err: fmt.Errorf("start: %w", err)}
		}
		return actionDoneMsg{status: "started: " + out.Experiment.Title}
	}
}

// ─── palette execution ───────────────────────────────────────────────────────

// paletteCommands must stay in sync with the switch in executePalette.
var paletteCommands = []components.Command{
	{Name: "focus:refresh", Usage: "focus:refresh"},
	{Name: "focus:start", Usage: "focus:start <1|2> [replace]"},
	{Name: "experiment:end", Usage: "experiment:end [YYYY-MM-DD]"},
	{Name: "experiment:rate", Usage: "experiment:rate <rating>"},
	{Name: "experiment:finalize", Usage: "experiment:finalize [rating]"},
	{Name: "history:reload", Usage: "history:reload"},
}

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "focus:refresh":
		var cmd tea.Cmd
		m, cmd = m.refresh(true)
		m.activeTab = tabFocus
		return m, cmd

	case "focus:start":
		if len(parts) < 2 {
			m.status = "usage: focus:start <1|2> [replace]"
			return m, nil
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			m.status = "invalid suggestion number"
			return m, nil
		}
		return m.startOption(n, len(parts) > 2 && parts[2] == "replace")

	case "experiment:end":
		if m.snap.active == nil {
			m.status = "no active experiment"
			return m, nil
		}
		endDate := ""
		if len(parts) > 1 {
			endDate = parts[1]
		}
		id := m.snap.active.ID
		return m, func() tea.Msg {
			out, err := m.experiments.End(context.Background(), m.userID, id, endDate)
			if err != nil {
				return actionDoneMsg{err: fmt.Errorf("end: %w", err)}
			}
			if out.AlreadyEnded {
				return actionDoneMsg{status: "already ended"}
			}
			return actionDoneMsg{status: "ended: " + out.Experiment.Title}
		}

	case "experiment:rate", "experiment:finalize":
		target := m.reviewTarget()
		if target == "" {
			m.status = "open a review first"
			return m, nil
		}
		in := experimentdto.ReviewInput{UserID: m.userID, ID: target}
		if len(parts) > 1 {
			in.Rating = parts[1]
		}
		finalize := parts[0] == "experiment:finalize"
		return m, func() tea.Msg {
			ctx := context.Background()
			if !finalize {
				if _, err := m.experiments.Review(ctx, in); err != nil {
					return actionDoneMsg{err: fmt.Errorf("review: %w", err)}
				}
				return actionDoneMsg{status: "rating saved"}
			}
			out, err := m.experiments.Finalize(ctx, in)
			if err != nil {
				return actionDoneMsg{err: fmt.Errorf("finalize: %w", err)}
			}
			if out.AlreadyCompleted {
				return actionDoneMsg{status: "already finalized"}
			}
			return actionDoneMsg{status: "finalized: " + out.Review.Conclusion}
		}

	case "history:reload":
		var cmd tea.Cmd
		m, cmd = m.refresh(false)
		m.activeTab = tabHistory
		return m, cmd

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

func (m Model) reviewTarget() string {
	if m.review.view != nil {
		return m.review.view.Experiment.ID
	}
	if m.activeTab == tabHistory && len(m.snap.history) > 0 {
		return m.snap.history[m.cursor].ID
	}
	return ""
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) loadCmd(gen uint64, force bool) tea.Cmd {
	userID := m.userID
	experiments, focus := m.experiments, m.focus
	return func() tea.Msg {
		var snap snapshot
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			active, err := experiments.Active(ctx, userID)
			if errors.Is(err, apperrors.ErrNoActiveExperiment) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("active experiment: %w", err)
			}
			snap.active = &active
			preview, err := experiments.Preview(ctx, userID, active.ID, "")
			if err != nil {
				return fmt.Errorf("preview: %w", err)
			}
			snap.preview = &preview
			return nil
		})
		g.Go(func() error {
			next, err := focus.Next(ctx, userID, "", force)
			if err != nil {
				return fmt.Errorf("next focus: %w", err)
			}
			snap.focus = next
			return nil
		})
		g.Go(func() error {
			list, err := experiments.History(ctx, userID, historyLimit, 0, true)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			snap.history = list
			return nil
		})
		err := g.Wait()
		return dashboardLoadedMsg{gen: gen, snap: snap, err: err}
	}
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
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = theme.Pane.Width(max(m.width-4, 20)).Render(m.activeView())
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	if m.loadErr != nil && m.activeTab != tabReview {
		return theme.Hot.Render("Could not load the dashboard") + "\n" + theme.Muted.Render(m.loadErr.Error())
	}
	switch m.activeTab {
	case tabToday:
		return renderToday(m.snap.active, m.snap.preview)
	case tabFocus:
		return renderFocus(m.snap.focus)
	case tabHistory:
		return renderHistory(m.snap.history, m.cursor)
	case tabReview:
		return m.review.render()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + tabLabels[i] + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + tabLabels[i] + " ")
		}
	}
	bar := "leverlab  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.loading {
		left = m.spinner.View() + " " + left
	}
	if m.snap.active != nil {
		left = theme.Hot.Render("● "+m.snap.active.Title) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  r:refresh  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}
