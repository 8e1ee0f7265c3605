// Package tui renders the live planning feed: stage events as they stream
// from the pipeline, then the ranked recommendation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/calebmb/pathfinder/internal/events"
	"github.com/calebmb/pathfinder/pkg/models"
)

// maxVisibleEvents bounds the scrollback kept on screen.
const maxVisibleEvents = 18

// EventMsg delivers one pipeline event to the feed model.
type EventMsg struct {
	Event events.Event
}

// DoneMsg delivers the terminal result or error.
type DoneMsg struct {
	Result *models.PlanResult
	Err    error
}

// Model is the bubbletea model for the live feed view.
type Model struct {
	request string

	spin   spinner.Model
	events []events.Event
	result *models.PlanResult
	err    error
	done   bool

	width int

	headerStyle lipgloss.Style
	nodeStyles  map[string]lipgloss.Style
	dimStyle    lipgloss.Style
	scoreStyle  lipgloss.Style
	warnStyle   lipgloss.Style
}

// NewModel creates the feed model for one plan request.
func NewModel(request string) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	nodeColor := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Bold(true)
	}

	return Model{
		request:     request,
		spin:        spin,
		width:       80,
		headerStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		dimStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		scoreStyle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		warnStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		nodeStyles: map[string]lipgloss.Style{
			events.NodeCommander:   nodeColor("39"),
			events.NodeScout:       nodeColor("78"),
			events.NodeVibe:        nodeColor("213"),
			events.NodeAccess:      nodeColor("81"),
			events.NodeCost:        nodeColor("220"),
			events.NodeCritic:      nodeColor("203"),
			events.NodeSynthesiser: nodeColor("141"),
			events.NodeGraph:       nodeColor("245"),
		},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case EventMsg:
		m.events = append(m.events, msg.Event)
		if len(m.events) > maxVisibleEvents {
			m.events = m.events[len(m.events)-maxVisibleEvents:]
		}
		return m, nil

	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerStyle.Render("pathfinder"))
	b.WriteString(m.dimStyle.Render("  planning: " + m.request))
	b.WriteString("\n\n")

	for _, ev := range m.events {
		style, ok := m.nodeStyles[ev.Node]
		if !ok {
			style = m.dimStyle
		}
		label := style.Render(fmt.Sprintf("%-14s", ev.Node))
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			m.dimStyle.Render(ev.Timestamp.Format("15:04:05")), label, ev.Message))
	}

	b.WriteString("\n")
	if !m.done {
		b.WriteString(fmt.Sprintf("  %s working...\n", m.spin.View()))
		b.WriteString(m.dimStyle.Render("  q to quit"))
		return b.String()
	}

	if m.err != nil {
		b.WriteString(m.warnStyle.Render(fmt.Sprintf("  run failed: %v\n", m.err)))
		b.WriteString(m.dimStyle.Render("\n  q to quit"))
		return b.String()
	}

	b.WriteString(m.renderResult())
	b.WriteString(m.dimStyle.Render("\n  q to quit"))
	return b.String()
}

func (m Model) renderResult() string {
	var b strings.Builder

	if m.result.Degraded {
		b.WriteString(m.warnStyle.Render(fmt.Sprintf(
			"  best available despite an unresolved objection: %s\n\n", m.result.VetoReason)))
	}
	if len(m.result.Venues) == 0 {
		b.WriteString("  no venues found for this request\n")
		return b.String()
	}

	for _, rv := range m.result.Venues {
		b.WriteString(fmt.Sprintf("  %d. %s %s\n",
			rv.Rank,
			m.headerStyle.Render(rv.Venue.Name),
			m.scoreStyle.Render(fmt.Sprintf("%.2f", rv.Score))))
		b.WriteString(m.dimStyle.Render("     " + rv.Why + "\n"))
		if rv.WatchOut != "" {
			b.WriteString(m.warnStyle.Render("     watch out: " + rv.WatchOut + "\n"))
		}
	}
	return b.String()
}
