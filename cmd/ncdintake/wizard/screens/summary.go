package screens

import (
	"encoding/json"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/ncdintake/cmd/ncdintake/wizard/components"
)

// SummaryAction represents the action selected on the summary screen
type SummaryAction int

const (
	// SummaryActionBack returns to the last step
	SummaryActionBack SummaryAction = iota
	// SummaryActionSubmit sends the payload to the registry
	SummaryActionSubmit
	// SummaryActionSaveDraft saves the wizard state to a YAML draft
	SummaryActionSaveDraft
	// SummaryActionCancel exits the wizard
	SummaryActionCancel
)

const (
	actionBack      = "back"
	actionSubmit    = "submit"
	actionSaveDraft = "save_draft"
	actionCancel    = "cancel"

	previewMaxLines = 30
)

var (
	summaryPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Padding(1, 2)

	summaryTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("63")).
				Bold(true).
				MarginBottom(1)

	summaryLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))

	summaryValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Bold(true)

	payloadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// SummaryScreen displays the request body before submission
type SummaryScreen struct {
	form      *huh.Form
	title     string
	endpoint  string
	preview   string
	action    string
	done      bool
	cancelled bool
	width     int
	height    int
}

// NewSummaryScreen creates a new summary screen for payload, which will
// be posted to endpoint.
func NewSummaryScreen(title, endpoint string, payload any) *SummaryScreen {
	s := &SummaryScreen{
		title:    title,
		endpoint: endpoint,
		preview:  Preview(payload),
		action:   actionSubmit,
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("action").
				Title("Select an action").
				Options(
					huh.NewOption("Submit to the registry", actionSubmit),
					huh.NewOption("Save draft to YAML", actionSaveDraft),
					huh.NewOption("Back to edit", actionBack),
					huh.NewOption("Cancel and exit", actionCancel),
				).
				Value(&s.action),
		),
	).WithShowHelp(false)

	return s
}

// Preview renders payload as indented JSON, truncated for display.
func Preview(payload any) string {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "payload unavailable: " + err.Error()
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) > previewMaxLines {
		lines = append(lines[:previewMaxLines], "  ...")
	}
	return strings.Join(lines, "\n")
}

// Init implements tea.Model
func (s *SummaryScreen) Init() tea.Cmd {
	return s.form.Init()
}

// Update implements tea.Model
func (s *SummaryScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			s.cancelled = true
			return s, tea.Quit
		case "esc":
			s.action = actionBack
			s.done = true
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.done = true
	}

	return s, cmd
}

// View implements tea.Model
func (s *SummaryScreen) View() string {
	if s.cancelled {
		return "Cancelled.\n"
	}

	title := components.TitleStyle.Render("SUMMARY - " + strings.ToUpper(s.title))

	var sb strings.Builder
	sb.WriteString(summaryTitleStyle.Render("Request"))
	sb.WriteString("\n")
	sb.WriteString(summaryLabelStyle.Render("POST "))
	sb.WriteString(summaryValueStyle.Render(s.endpoint))
	sb.WriteString("\n\n")
	sb.WriteString(payloadStyle.Render(s.preview))

	width := 70
	if s.width > 0 && s.width-4 < width {
		width = s.width - 4
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		summaryPanelStyle.Width(width).Render(sb.String()),
		"",
		s.form.View(),
		"",
		"Enter: Select action | Esc: Back",
	)
}

// Done returns true if the form was completed
func (s *SummaryScreen) Done() bool {
	return s.done
}

// Cancelled returns true if the user cancelled
func (s *SummaryScreen) Cancelled() bool {
	return s.cancelled
}

// Action returns the selected action
func (s *SummaryScreen) Action() SummaryAction {
	switch s.action {
	case actionBack:
		return SummaryActionBack
	case actionSaveDraft:
		return SummaryActionSaveDraft
	case actionCancel:
		return SummaryActionCancel
	default:
		return SummaryActionSubmit
	}
}
