package wizard

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/mrsinham/ncdintake/cmd/ncdintake/wizard/components"
	"github.com/mrsinham/ncdintake/cmd/ncdintake/wizard/screens"
	"github.com/mrsinham/ncdintake/internal/intake"
)

// DefaultDraftPath is proposed when saving a draft.
const DefaultDraftPath = "intake-draft.yaml"

// Options configures a Wizard.
type Options struct {
	// DraftPath is proposed on the save-draft screen.
	DraftPath string
	Logger    zerolog.Logger
}

// Wizard is the main model orchestrating the screens of one flow.
type Wizard struct {
	phase Phase
	ctx   context.Context
	ctrl  *intake.Controller
	log   zerolog.Logger

	stepScreen       *screens.StepScreen
	summaryScreen    *screens.SummaryScreen
	submittingScreen *screens.SubmittingScreen
	completionScreen *screens.CompletionScreen
	errorScreen      *screens.ErrorScreen

	saveDraftForm *huh.Form
	draftPath     string
	savedTo       string

	result    *intake.Result
	width     int
	height    int
	cancelled bool
	err       error
}

// NewWizard creates a wizard positioned on the current step of ctrl.
// ctx bounds the submission.
func NewWizard(ctx context.Context, ctrl *intake.Controller, opts Options) *Wizard {
	if opts.DraftPath == "" {
		opts.DraftPath = DefaultDraftPath
	}
	w := &Wizard{
		phase:     PhaseStep,
		ctx:       ctx,
		ctrl:      ctrl,
		log:       opts.Logger.With().Str("component", "wizard").Logger(),
		draftPath: opts.DraftPath,
	}
	w.stepScreen = w.newStepScreen("")
	return w
}

func (w *Wizard) newStepScreen(notice string) *screens.StepScreen {
	state := w.ctrl.State()
	return screens.NewStepScreen(w.ctrl.Flow(), state.Step, state, notice)
}

// Init implements tea.Model
func (w *Wizard) Init() tea.Cmd {
	return w.stepScreen.Init()
}

// Update implements tea.Model
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		w.width = msg.Width
		w.height = msg.Height
	}

	switch w.phase {
	case PhaseStep:
		return w.updateStep(msg)
	case PhaseSummary:
		return w.updateSummary(msg)
	case PhaseSaveDraft:
		return w.updateSaveDraft(msg)
	case PhaseSubmitting:
		return w.updateSubmitting(msg)
	case PhaseComplete:
		return w.updateComplete(msg)
	case PhaseError:
		return w.updateError(msg)
	}

	return w, nil
}

func (w *Wizard) updateStep(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.stepScreen.Update(msg)
	w.stepScreen = model.(*screens.StepScreen)

	if w.stepScreen.Cancelled() {
		w.cancelled = true
		return w, tea.Quit
	}

	if w.stepScreen.Done() {
		return w.commitStep()
	}

	return w, cmd
}

// commitStep copies the finished step screen into the controller and
// moves to the next screen.
func (w *Wizard) commitStep() (tea.Model, tea.Cmd) {
	w.stepScreen.Apply(w.ctrl.State())

	if w.stepScreen.Back() {
		w.ctrl.Previous()
		w.ctrl.State().Errors = map[string]string{}
		return w.transitionToStep("")
	}

	last := w.ctrl.IsLastStep()
	if !w.ctrl.Next() {
		return w.transitionToStep("Please correct the highlighted fields.")
	}
	if last {
		return w.transitionToSummary()
	}
	return w.transitionToStep("")
}

func (w *Wizard) transitionToStep(notice string) (tea.Model, tea.Cmd) {
	w.phase = PhaseStep
	w.stepScreen = w.newStepScreen(notice)
	w.log.Debug().Int("step", w.ctrl.State().Step).Msg("showing step")
	return w, w.sized(w.stepScreen.Init())
}

func (w *Wizard) transitionToSummary() (tea.Model, tea.Cmd) {
	w.phase = PhaseSummary
	flow := w.ctrl.Flow()
	w.summaryScreen = screens.NewSummaryScreen(flow.Title, flow.Endpoint, w.ctrl.Payload())
	return w, w.sized(w.summaryScreen.Init())
}

// sized replays the last window size so a fresh screen lays out at once.
func (w *Wizard) sized(cmd tea.Cmd) tea.Cmd {
	if w.width == 0 {
		return cmd
	}
	width, height := w.width, w.height
	return tea.Batch(cmd, func() tea.Msg { return tea.WindowSizeMsg{Width: width, Height: height} })
}

func (w *Wizard) updateSummary(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.summaryScreen.Update(msg)
	w.summaryScreen = model.(*screens.SummaryScreen)

	if w.summaryScreen.Cancelled() {
		w.cancelled = true
		return w, tea.Quit
	}

	if w.summaryScreen.Done() {
		switch w.summaryScreen.Action() {
		case screens.SummaryActionBack:
			return w.transitionToStep("")
		case screens.SummaryActionSubmit:
			return w.startSubmission()
		case screens.SummaryActionSaveDraft:
			return w.transitionToSaveDraft()
		case screens.SummaryActionCancel:
			w.cancelled = true
			return w, tea.Quit
		}
	}

	return w, cmd
}

func (w *Wizard) transitionToSaveDraft() (tea.Model, tea.Cmd) {
	w.phase = PhaseSaveDraft

	w.saveDraftForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("draft_path").
				Title("Save draft to").
				Description("Resume later with: ncdintake wizard --from <path>").
				Value(&w.draftPath).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("path is required")
					}
					return nil
				}),
		),
	).WithShowHelp(false)

	return w, w.saveDraftForm.Init()
}

func (w *Wizard) updateSaveDraft(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return w.transitionToSummary()
		case "ctrl+c":
			w.cancelled = true
			return w, tea.Quit
		}
	}

	form, cmd := w.saveDraftForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		w.saveDraftForm = f
	}

	if w.saveDraftForm.State == huh.StateCompleted {
		if err := w.saveDraft(w.draftPath); err != nil {
			w.err = err
			w.phase = PhaseError
			w.errorScreen = screens.NewErrorScreen(err)
			return w, nil
		}
		return w.transitionToSummary()
	}

	return w, cmd
}

func (w *Wizard) saveDraft(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving draft path: %w", err)
	}
	if err := SaveDraft(abs, ToDraft(w.ctrl.Flow(), w.ctrl.State())); err != nil {
		return err
	}
	w.savedTo = abs
	w.log.Info().Str("path", abs).Msg("draft saved")
	return nil
}

func (w *Wizard) viewSaveDraft() string {
	title := components.TitleStyle.Render("SAVE DRAFT")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		w.saveDraftForm.View(),
		"",
		"Enter: Save | Esc: Back to summary",
	)
}

func (w *Wizard) startSubmission() (tea.Model, tea.Cmd) {
	w.phase = PhaseSubmitting
	w.submittingScreen = screens.NewSubmittingScreen(w.ctrl.Flow().Endpoint)
	return w, tea.Batch(w.submittingScreen.Init(), w.submit())
}

// submit runs the submission off the event loop.
func (w *Wizard) submit() tea.Cmd {
	ctx, ctrl := w.ctx, w.ctrl
	return func() tea.Msg {
		start := time.Now()
		res, err := ctrl.Submit(ctx)
		return screens.SubmitResultMsg{Result: res, Err: err, Duration: time.Since(start)}
	}
}

func (w *Wizard) updateSubmitting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(screens.SubmitResultMsg); ok {
		return w.handleResult(msg)
	}

	model, cmd := w.submittingScreen.Update(msg)
	w.submittingScreen = model.(*screens.SubmittingScreen)

	if w.submittingScreen.Cancelled() {
		w.cancelled = true
		return w, tea.Quit
	}

	return w, cmd
}

func (w *Wizard) handleResult(msg screens.SubmitResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		w.err = msg.Err
		w.phase = PhaseError
		w.errorScreen = screens.NewErrorScreen(msg.Err)
		return w, nil
	}

	w.result = msg.Result
	if msg.Result.OK {
		w.phase = PhaseComplete
		w.completionScreen = screens.NewCompletionScreen(msg)
		return w, nil
	}

	// Rejected: stay on the last step with the mapped errors.
	return w.transitionToStep(msg.Result.Notification)
}

func (w *Wizard) updateComplete(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.completionScreen.Update(msg)
	w.completionScreen = model.(*screens.CompletionScreen)
	return w, cmd
}

func (w *Wizard) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.errorScreen.Update(msg)
	w.errorScreen = model.(*screens.ErrorScreen)
	return w, cmd
}

// View implements tea.Model
func (w *Wizard) View() string {
	switch w.phase {
	case PhaseStep:
		return w.stepScreen.View()
	case PhaseSummary:
		view := w.summaryScreen.View()
		if w.savedTo != "" {
			view = lipgloss.JoinVertical(lipgloss.Left, view, "", components.HintStyle.Render("Draft saved to "+w.savedTo))
		}
		return view
	case PhaseSaveDraft:
		return w.viewSaveDraft()
	case PhaseSubmitting:
		return w.submittingScreen.View()
	case PhaseComplete:
		return w.completionScreen.View()
	case PhaseError:
		return w.errorScreen.View()
	}

	return ""
}

// Phase returns the current phase.
func (w *Wizard) Phase() Phase { return w.phase }

// Result returns the outcome of the last submission, nil before one.
func (w *Wizard) Result() *intake.Result { return w.result }

// Cancelled reports whether the user quit before submitting.
func (w *Wizard) Cancelled() bool { return w.cancelled }

// Run starts the wizard for ctrl and blocks until the user leaves it. The
// returned result is nil when nothing was accepted.
func Run(ctx context.Context, ctrl *intake.Controller, opts Options) (*intake.Result, error) {
	w := NewWizard(ctx, ctrl, opts)
	p := tea.NewProgram(w, tea.WithAltScreen(), tea.WithContext(ctx))

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running wizard: %w", err)
	}

	if fw, ok := finalModel.(*Wizard); ok {
		if fw.err != nil {
			return nil, fw.err
		}
		if fw.cancelled {
			return nil, nil
		}
		if fw.result != nil && fw.result.OK {
			return fw.result, nil
		}
	}

	return nil, nil
}
