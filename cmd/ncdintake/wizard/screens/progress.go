package screens

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/ncdintake/cmd/ncdintake/wizard/components"
	"github.com/mrsinham/ncdintake/internal/intake"
)

// SubmitResultMsg carries the outcome of Controller.Submit back into the
// program.
type SubmitResultMsg struct {
	Result   *intake.Result
	Err      error
	Duration time.Duration
}

var (
	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	progressElapsedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))
)

// SubmittingScreen is shown while a submission is in flight. Input is
// ignored apart from Ctrl+C.
type SubmittingScreen struct {
	spinner   spinner.Model
	endpoint  string
	startTime time.Time
	cancelled bool
	width     int
	height    int
}

// NewSubmittingScreen creates a new submitting screen
func NewSubmittingScreen(endpoint string) *SubmittingScreen {
	return &SubmittingScreen{
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		endpoint:  endpoint,
		startTime: time.Now(),
	}
}

// Init implements tea.Model
func (s *SubmittingScreen) Init() tea.Cmd {
	return s.spinner.Tick
}

// Update implements tea.Model
func (s *SubmittingScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			s.cancelled = true
			return s, tea.Quit
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

// View implements tea.Model
func (s *SubmittingScreen) View() string {
	if s.cancelled {
		return "Cancelled.\n"
	}
	elapsed := time.Since(s.startTime)
	return lipgloss.JoinVertical(lipgloss.Left,
		components.TitleStyle.Render("Submitting..."),
		s.spinner.View()+" POST "+s.endpoint,
		"",
		progressElapsedStyle.Render(fmt.Sprintf("Elapsed: %.1fs", elapsed.Seconds())),
		"",
		components.HintStyle.Render("Press Ctrl+C to quit"),
	)
}

// Cancelled returns true if the user cancelled
func (s *SubmittingScreen) Cancelled() bool {
	return s.cancelled
}

// Completion screen styles
var (
	completionSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).
				Bold(true)

	completionLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))

	completionValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Bold(true)

	completionButtonFocusedStyle = lipgloss.NewStyle().
					Background(lipgloss.Color("33")).
					Foreground(lipgloss.Color("255")).
					Padding(0, 2).
					Bold(true)
)

// CompletionScreen displays an accepted submission
type CompletionScreen struct {
	notification string
	details      []detail
	duration     time.Duration
	done         bool
	width        int
	height       int
}

type detail struct {
	label string
	value string
}

// NewCompletionScreen creates a new completion screen
func NewCompletionScreen(msg SubmitResultMsg) *CompletionScreen {
	s := &CompletionScreen{duration: msg.Duration}
	if msg.Result == nil {
		return s
	}
	s.notification = msg.Result.Notification
	if resp := msg.Result.Response; resp != nil {
		var data map[string]any
		if err := resp.DecodeData(&data); err == nil {
			keys := make([]string, 0, len(data))
			for k := range data {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if v, ok := data[k].(string); ok {
					s.details = append(s.details, detail{k, v})
				}
			}
		}
	}
	return s
}

// Init implements tea.Model
func (s *CompletionScreen) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s *CompletionScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "enter", "q":
			s.done = true
			return s, tea.Quit
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	return s, nil
}

// View implements tea.Model
func (s *CompletionScreen) View() string {
	var sb strings.Builder

	sb.WriteString(completionSuccessStyle.Render("✓ " + s.notification))
	sb.WriteString("\n\n")

	for _, d := range append(s.details, detail{"duration", fmt.Sprintf("%.1fs", s.duration.Seconds())}) {
		sb.WriteString("  ")
		sb.WriteString(completionLabelStyle.Render(d.label + ":"))
		sb.WriteString(" ")
		sb.WriteString(completionValueStyle.Render(d.value))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(completionButtonFocusedStyle.Render("Exit"))
	sb.WriteString("\n\n")
	sb.WriteString(components.HintStyle.Render("Press Enter or q to exit"))

	return sb.String()
}

// Done returns true if the user is finished
func (s *CompletionScreen) Done() bool {
	return s.done
}

// ErrorScreen displays an error that ended the wizard
type ErrorScreen struct {
	err    error
	done   bool
	width  int
	height int
}

var (
	errorTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	errorMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))
)

// NewErrorScreen creates a new error screen
func NewErrorScreen(err error) *ErrorScreen {
	return &ErrorScreen{
		err: err,
	}
}

// Init implements tea.Model
func (s *ErrorScreen) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s *ErrorScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "enter", "q":
			s.done = true
			return s, tea.Quit
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	return s, nil
}

// View implements tea.Model
func (s *ErrorScreen) View() string {
	var sb strings.Builder

	sb.WriteString(errorTitleStyle.Render("✗ Submission failed"))
	sb.WriteString("\n\n")
	sb.WriteString(components.TitleStyle.Render("Error:"))
	sb.WriteString("\n  ")
	sb.WriteString(errorMessageStyle.Render(s.err.Error()))
	sb.WriteString("\n\n")
	sb.WriteString(components.HintStyle.Render("Press Enter or q to exit"))

	return sb.String()
}

// Done returns true if the user is finished
func (s *ErrorScreen) Done() bool {
	return s.done
}

// Error returns the error
func (s *ErrorScreen) Error() error {
	return s.err
}
