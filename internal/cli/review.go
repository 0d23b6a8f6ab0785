package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/relock/pkg/relock"
)

// =============================================================================
// Decision Review UI
// =============================================================================

// reviewDecisions shows the decision log in an interactive list and returns
// whether the user accepted the result.
func reviewDecisions(decisions []relock.Decision) (bool, error) {
	model := newDecisionListModel(decisions)
	program := tea.NewProgram(model)
	final, err := program.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(decisionListModel)
	if !ok {
		return false, nil
	}
	return m.accepted, nil
}

// decisionListModel is a scrollable list over the relock decision log.
type decisionListModel struct {
	decisions []relock.Decision
	cursor    int
	offset    int
	height    int
	accepted  bool
}

func newDecisionListModel(decisions []relock.Decision) decisionListModel {
	return decisionListModel{
		decisions: decisions,
		height:    20,
	}
}

func (m decisionListModel) Init() tea.Cmd {
	return nil
}

func (m decisionListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height - 4 // title + blank + help lines
		if m.height < 1 {
			m.height = 1
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.accepted = false
			return m, tea.Quit
		case "enter", "y":
			m.accepted = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.decisions)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	}
	return m, nil
}

func (m decisionListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Relock decisions (%d)", len(m.decisions))))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.decisions) {
		end = len(m.decisions)
	}
	for i := m.offset; i < end; i++ {
		d := m.decisions[i]
		prefix := "  "
		if i == m.cursor {
			prefix = StyleInfo.Render("> ")
		}
		line := fmt.Sprintf("%s%-8s %s",
			prefix,
			styleForAction(d.Action).Render(string(d.Action)),
			StyleValue.Render(d.Name))
		b.WriteString(line)
		b.WriteString(StyleDim.Render(fmt.Sprintf("  at %s", d.Location())))
		if d.PrevRange != "" || d.CurrRange != "" {
			b.WriteString(StyleLabel.Render(fmt.Sprintf("  %s %s %s", d.PrevRange, iconArrow, d.CurrRange)))
		}
		b.WriteString(StyleDim.Render("  " + d.Reason))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render("enter accept · q abort · ↑/↓ navigate"))
	b.WriteString("\n")
	return b.String()
}
