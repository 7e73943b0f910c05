package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/ncdintake/cmd/ncdintake/wizard/help"
	"github.com/mrsinham/ncdintake/internal/intake"
)

const minHelpWidth = 24

var (
	helpPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63")).
			Bold(true)

	helpDetailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// HelpPanel shows the rules of the focused field for one flow, and what is
// wrong with its value after a failed validation.
type HelpPanel struct {
	flow    intake.FlowKind
	field   string
	problem string
	width   int
	height  int
}

// NewHelpPanel creates a help panel for flow.
func NewHelpPanel(flow intake.FlowKind) *HelpPanel {
	return &HelpPanel{flow: flow, width: 60}
}

// Focus selects the field to describe. problem is its current validation
// error, empty when the value is fine.
func (h *HelpPanel) Focus(field, problem string) {
	h.field = field
	h.problem = problem
}

// Field returns the key whose help is displayed.
func (h *HelpPanel) Field() string { return h.field }

// SetSize bounds the panel. A height of 0 leaves it unbounded.
func (h *HelpPanel) SetSize(width, height int) {
	h.width = max(width, minHelpWidth)
	h.height = height
}

// Lines returns the plain text of the panel, before styling.
func (h *HelpPanel) Lines() []string {
	text, ok := help.For(h.flow, h.field)
	if !ok {
		if h.problem != "" {
			return []string{"✗ " + h.problem}
		}
		return nil
	}
	lines := []string{text.Title}
	if h.problem != "" {
		lines = append(lines, "✗ "+h.problem)
	}
	lines = append(lines, "", text.Description, "")
	lines = append(lines, strings.Split(text.Details, "\n")...)

	// The border takes two rows.
	if h.height > 0 && len(lines) > h.height-2 {
		lines = lines[:max(h.height-2, 1)]
	}
	return lines
}

// View renders the panel, or "" when there is nothing to say.
func (h *HelpPanel) View() string {
	lines := h.Lines()
	if len(lines) == 0 {
		return ""
	}
	rendered := make([]string, len(lines))
	for i, l := range lines {
		switch {
		case i == 0 && !strings.HasPrefix(l, "✗ "):
			rendered[i] = helpTitleStyle.Render(l)
		case strings.HasPrefix(l, "✗ "):
			rendered[i] = ErrorStyle.Render(l)
		default:
			rendered[i] = helpDetailStyle.Render(l)
		}
	}
	return helpPanelStyle.Width(h.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, rendered...))
}
