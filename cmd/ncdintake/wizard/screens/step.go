// Package screens holds the bubbletea models of the wizard phases. Screens
// only know the intake types; the wizard decides what happens next.
package screens

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/ncdintake/cmd/ncdintake/wizard/components"
	"github.com/mrsinham/ncdintake/cmd/ncdintake/wizard/help"
	"github.com/mrsinham/ncdintake/internal/intake"
)

// StepScreen renders one step of a flow as a huh form.
type StepScreen struct {
	form      *huh.Form
	helpPanel *components.HelpPanel
	flowTitle string
	step      intake.Step
	number    int
	total     int
	notice    string

	values   map[string]*string
	selected map[string]*[]string
	errors   map[string]string
	orphans  []string

	done      bool
	back      bool
	cancelled bool
	width     int
	height    int
}

// NewStepScreen builds the form of step number (1-based) of flow,
// prefilled from state. Errors in state are shown under their fields;
// errors of fields living on other steps are listed under notice.
func NewStepScreen(flow *intake.Flow, number int, state *intake.WizardState, notice string) *StepScreen {
	step := flow.StepAt(number)
	s := &StepScreen{
		helpPanel: components.NewHelpPanel(flow.Kind),
		flowTitle: flow.Title,
		step:      step,
		number:    number,
		total:     flow.LastStep(),
		notice:    notice,
		values:    make(map[string]*string),
		selected:  make(map[string]*[]string),
		errors:    make(map[string]string, len(state.Errors)),
	}
	for k, v := range state.Errors {
		s.errors[k] = v
	}

	var groups []*huh.Group
	if len(step.Fields) > 0 {
		fields := make([]huh.Field, 0, len(step.Fields))
		for _, f := range step.Fields {
			fields = append(fields, s.field(f, state))
		}
		groups = append(groups, huh.NewGroup(fields...))
	}
	for _, g := range step.Checklists {
		groups = append(groups, s.checklist(g, state))
	}

	onStep := make(map[string]bool)
	for _, f := range step.Fields {
		onStep[f.Name] = true
	}
	for name, msg := range s.errors {
		if !onStep[name] {
			s.orphans = append(s.orphans, fmt.Sprintf("%s: %s", name, msg))
		}
	}
	sort.Strings(s.orphans)

	s.form = huh.NewForm(groups...).WithShowHelp(false).WithShowErrors(true)
	if len(step.Fields) > 0 {
		s.focus(step.Fields[0].Name)
	}
	return s
}

func (s *StepScreen) description(f intake.Field) string {
	if msg, ok := s.errors[f.Name]; ok {
		return components.ErrorStyle.Render("✗ " + msg)
	}
	return f.Help
}

func (s *StepScreen) field(f intake.Field, state *intake.WizardState) huh.Field {
	v := state.Fields[f.Name]
	s.values[f.Name] = &v

	switch f.Kind {
	case intake.KindSelect:
		return huh.NewSelect[string]().
			Key(f.Name).
			Title(f.Label).
			Description(s.description(f)).
			Options(huh.NewOptions(f.Options...)...).
			Value(s.values[f.Name])
	case intake.KindLongText:
		return huh.NewText().
			Key(f.Name).
			Title(f.Label).
			Description(s.description(f)).
			Lines(3).
			Value(s.values[f.Name])
	}

	in := huh.NewInput().
		Key(f.Name).
		Title(f.Label).
		Description(s.description(f)).
		Value(s.values[f.Name])
	switch f.Kind {
	case intake.KindSecret:
		in = in.EchoMode(huh.EchoModePassword)
	case intake.KindDate:
		in = in.Placeholder("YYYY-MM-DD")
	}
	return in
}

func (s *StepScreen) checklist(g intake.ChecklistGroup, state *intake.WizardState) *huh.Group {
	var sel []string
	opts := make([]huh.Option[string], 0, len(g.Items))
	for _, item := range g.Items {
		checked := state.Checked(g.FlagName(item.Key))
		if checked {
			sel = append(sel, item.Key)
		}
		opts = append(opts, huh.NewOption(item.Label, item.Key).Selected(checked))
	}
	s.selected[g.Name] = &sel

	extra := state.Fields[g.AdditionalField()]
	s.values[g.AdditionalField()] = &extra

	return huh.NewGroup(
		huh.NewMultiSelect[string]().
			Key(g.Name).
			Title(g.Title).
			Options(opts...).
			Value(s.selected[g.Name]),
		huh.NewInput().
			Key(g.AdditionalField()).
			Title("Other").
			Description("Comma-separated, for items not listed above").
			Value(s.values[g.AdditionalField()]),
	)
}

// Apply writes the form values into state.
func (s *StepScreen) Apply(state *intake.WizardState) {
	for name, v := range s.values {
		state.Set(name, *v)
	}
	for _, g := range s.step.Checklists {
		picked := make(map[string]bool)
		if sel := s.selected[g.Name]; sel != nil {
			for _, k := range *sel {
				picked[k] = true
			}
		}
		for _, item := range g.Items {
			state.SetFlag(g.FlagName(item.Key), picked[item.Key])
		}
	}
}

// SetValue overrides a text value before Apply.
func (s *StepScreen) SetValue(name, value string) bool {
	v, ok := s.values[name]
	if ok {
		*v = value
	}
	return ok
}

// SetSelected overrides the checked items of a checklist before Apply.
func (s *StepScreen) SetSelected(group string, keys ...string) bool {
	sel, ok := s.selected[group]
	if ok {
		*sel = append([]string(nil), keys...)
	}
	return ok
}

// focus points the help panel at the field with key.
func (s *StepScreen) focus(key string) {
	s.helpPanel.Focus(s.helpKey(key), s.errors[key])
}

// HelpLines returns the help panel text for the focused field.
func (s *StepScreen) HelpLines() []string { return s.helpPanel.Lines() }

func (s *StepScreen) helpKey(key string) string {
	for _, g := range s.step.Checklists {
		if key == g.Name || key == g.AdditionalField() {
			return help.ChecklistKey
		}
	}
	return key
}

// Init implements tea.Model
func (s *StepScreen) Init() tea.Cmd {
	return s.form.Init()
}

// Update implements tea.Model
func (s *StepScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			s.cancelled = true
			return s, tea.Quit
		case "esc":
			s.back = true
			s.done = true
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.helpPanel.SetSize(msg.Width/3, msg.Height/2)
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if focused := s.form.GetFocusedField(); focused != nil {
		s.focus(focused.GetKey())
	}

	if s.form.State == huh.StateCompleted {
		s.done = true
	}

	return s, cmd
}

// View implements tea.Model
func (s *StepScreen) View() string {
	if s.cancelled {
		return "Cancelled.\n"
	}

	title := components.TitleStyle.Render(fmt.Sprintf("%s - STEP %d/%d", strings.ToUpper(s.flowTitle), s.number, s.total))
	subtitle := components.SubtitleStyle.Render(s.step.Title)

	parts := []string{title, subtitle}
	if s.notice != "" {
		parts = append(parts, components.NoticeStyle.Render(s.notice))
	}
	for _, o := range s.orphans {
		parts = append(parts, components.ErrorStyle.Render("  "+o))
	}

	body := s.form.View()
	if panel := s.helpPanel.View(); panel != "" {
		if s.width >= 100 {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", panel)
		} else {
			body = lipgloss.JoinVertical(lipgloss.Left, body, "", panel)
		}
	}
	parts = append(parts, "", body, "", components.HintStyle.Render("Tab: Next field | Enter: Continue | Esc: Previous step | Ctrl+C: Quit"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Done returns true if the form was completed or the user went back
func (s *StepScreen) Done() bool { return s.done }

// Back returns true if the user asked for the previous step
func (s *StepScreen) Back() bool { return s.back }

// Cancelled returns true if the user cancelled
func (s *StepScreen) Cancelled() bool { return s.cancelled }

// Number returns the 1-based step number
func (s *StepScreen) Number() int { return s.number }

// Orphans lists the errors of fields that are not on this step.
func (s *StepScreen) Orphans() []string { return s.orphans }
