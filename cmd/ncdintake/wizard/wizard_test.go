package wizard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mrsinham/ncdintake/cmd/ncdintake/wizard/screens"
	"github.com/mrsinham/ncdintake/internal/apiclient"
	"github.com/mrsinham/ncdintake/internal/intake"
)

type fakePoster struct {
	mu    sync.Mutex
	paths []string
	resp  *apiclient.Response
	err   error
}

func (f *fakePoster) PostJSON(_ context.Context, path string, _ any) (*apiclient.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	return f.resp, f.err
}

func newTestWizard(t *testing.T, kind intake.FlowKind, p intake.Poster) *Wizard {
	t.Helper()
	flow, err := intake.NewFlow(kind, intake.Diabetes)
	if err != nil {
		t.Fatalf("NewFlow failed: %v", err)
	}
	ctrl := intake.NewController(flow, p, intake.Options{
		Now:   func() time.Time { return time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC) },
		Token: func() string { return "AB12CD34" },
	})
	return NewWizard(context.Background(), ctrl, Options{DraftPath: filepath.Join(t.TempDir(), "draft.yaml")})
}

func setValues(t *testing.T, s *screens.StepScreen, values map[string]string) {
	t.Helper()
	for k, v := range values {
		if !s.SetValue(k, v) {
			t.Fatalf("Field %q is not on step %d", k, s.Number())
		}
	}
}

func fillVitalsStep1(t *testing.T, w *Wizard) {
	setValues(t, w.stepScreen, map[string]string{
		intake.FieldPhone:       "0788123456",
		intake.FieldHeight:      "170",
		intake.FieldWeight:      "70",
		intake.FieldTemperature: "36.6",
	})
}

func fillVitalsStep2(t *testing.T, w *Wizard) {
	setValues(t, w.stepScreen, map[string]string{
		intake.FieldBloodPressure: "120/80",
		intake.FieldHeartRate:     "72",
		intake.FieldRespiratory:   "16",
		intake.FieldOxygen:        "98",
	})
}

func TestNewWizard_StartsOnFirstStep(t *testing.T) {
	w := newTestWizard(t, intake.FlowVitals, &fakePoster{})

	if w.Phase() != PhaseStep {
		t.Errorf("Expected phase step, got %s", w.Phase())
	}
	if w.stepScreen.Number() != 1 {
		t.Errorf("Expected step 1, got %d", w.stepScreen.Number())
	}
}

func TestCommitStep_InvalidStaysWithErrors(t *testing.T) {
	w := newTestWizard(t, intake.FlowVitals, &fakePoster{})

	w.commitStep()

	if w.Phase() != PhaseStep {
		t.Errorf("Expected phase step, got %s", w.Phase())
	}
	if w.ctrl.State().Step != 1 {
		t.Errorf("Expected to stay on step 1, got %d", w.ctrl.State().Step)
	}
	if _, ok := w.ctrl.State().Errors[intake.FieldPhone]; !ok {
		t.Errorf("Expected an error on %s, got %v", intake.FieldPhone, w.ctrl.State().Errors)
	}
}

func TestStepScreen_HelpFollowsFlowAndErrors(t *testing.T) {
	w := newTestWizard(t, intake.FlowVitals, &fakePoster{})
	lines := w.stepScreen.HelpLines()
	if !slices.Contains(lines, "10 or more digits only (e.g. 0788123456).") {
		t.Errorf("Expected the vitals phone rule, got %q", lines)
	}
	if slices.Contains(lines, "✗ Phone number is required") {
		t.Errorf("Expected no problem before validation, got %q", lines)
	}

	w.commitStep()
	lines = w.stepScreen.HelpLines()
	if !slices.Contains(lines, "✗ Phone number is required") {
		t.Errorf("Expected the phone error in the help, got %q", lines)
	}

	intakeWizard := newTestWizard(t, intake.FlowIntake, &fakePoster{})
	if got := intakeWizard.stepScreen.HelpLines(); len(got) == 0 || got[0] != "FIRST NAME" {
		t.Errorf("Expected the first name help on the intake form, got %q", got)
	}
}

func TestCommitStep_AdvancesToSummary(t *testing.T) {
	w := newTestWizard(t, intake.FlowVitals, &fakePoster{})

	fillVitalsStep1(t, w)
	w.commitStep()
	if w.ctrl.State().Step != 2 || w.stepScreen.Number() != 2 {
		t.Fatalf("Expected step 2, got state %d screen %d (errors %v)", w.ctrl.State().Step, w.stepScreen.Number(), w.ctrl.State().Errors)
	}

	fillVitalsStep2(t, w)
	w.commitStep()
	if w.Phase() != PhaseSummary {
		t.Fatalf("Expected phase summary, got %s (errors %v)", w.Phase(), w.ctrl.State().Errors)
	}
	if w.summaryScreen == nil {
		t.Fatal("Expected a summary screen")
	}
}

func TestCommitStep_HeightOutOfRange(t *testing.T) {
	w := newTestWizard(t, intake.FlowVitals, &fakePoster{})

	fillVitalsStep1(t, w)
	w.stepScreen.SetValue(intake.FieldHeight, "300")
	w.commitStep()

	if w.ctrl.State().Step != 1 {
		t.Errorf("Expected to stay on step 1, got %d", w.ctrl.State().Step)
	}
	if _, ok := w.ctrl.State().Errors[intake.FieldHeight]; !ok {
		t.Errorf("Expected a height error, got %v", w.ctrl.State().Errors)
	}
}

func TestCommitStep_BackKeepsValues(t *testing.T) {
	w := newTestWizard(t, intake.FlowVitals, &fakePoster{})
	fillVitalsStep1(t, w)
	w.commitStep()

	w.stepScreen.SetValue(intake.FieldHeartRate, "80")
	w.stepScreen.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !w.stepScreen.Back() {
		t.Fatal("Expected esc to request the previous step")
	}
	w.commitStep()

	if w.ctrl.State().Step != 1 {
		t.Errorf("Expected step 1, got %d", w.ctrl.State().Step)
	}
	if got := w.ctrl.State().Value(intake.FieldHeartRate); got != "80" {
		t.Errorf("Expected heart rate 80 kept, got %q", got)
	}
	if got := w.ctrl.State().Value(intake.FieldPhone); got != "0788123456" {
		t.Errorf("Expected phone kept, got %q", got)
	}
}

func TestChecklistSelection_ReachesState(t *testing.T) {
	w := newTestWizard(t, intake.FlowConsultation, &fakePoster{})

	w.stepScreen.SetValue(intake.FieldPhone, "0788123456")
	symptoms := intake.Symptoms(intake.Diabetes)
	if !w.stepScreen.SetSelected(symptoms.Name, "polyuria") {
		t.Fatalf("Expected checklist %q on step 1", symptoms.Name)
	}
	w.stepScreen.SetValue(symptoms.AdditionalField(), "Foo, Bar")
	w.commitStep()

	got := symptoms.FromState(w.ctrl.State())
	want := []string{"Polyuria", "Foo", "Bar"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
			break
		}
	}
}

func submitVitals(t *testing.T, p *fakePoster) *Wizard {
	t.Helper()
	w := newTestWizard(t, intake.FlowVitals, p)
	fillVitalsStep1(t, w)
	w.commitStep()
	fillVitalsStep2(t, w)
	w.commitStep()

	w.startSubmission()
	if w.Phase() != PhaseSubmitting {
		t.Fatalf("Expected phase submitting, got %s", w.Phase())
	}
	w.Update(w.submit()())
	return w
}

func TestSubmission_Accepted(t *testing.T) {
	p := &fakePoster{resp: &apiclient.Response{Status: apiclient.StatusOK, Data: []byte(`{"consultationId":"CONS-15062025-AB12CD34"}`)}}
	w := submitVitals(t, p)

	if w.Phase() != PhaseComplete {
		t.Fatalf("Expected phase complete, got %s", w.Phase())
	}
	if w.Result() == nil || !w.Result().OK {
		t.Errorf("Expected an accepted result, got %+v", w.Result())
	}
	if len(p.paths) != 1 || p.paths[0] != "/registerDiabVitals" {
		t.Errorf("Expected one POST to /registerDiabVitals, got %v", p.paths)
	}
}

func TestSubmission_RejectedReturnsToLastStep(t *testing.T) {
	p := &fakePoster{resp: &apiclient.Response{Status: "error", Error: "phone number not registered"}}
	w := submitVitals(t, p)

	if w.Phase() != PhaseStep {
		t.Fatalf("Expected phase step, got %s", w.Phase())
	}
	if w.ctrl.State().Step != 2 {
		t.Errorf("Expected to stay on the last step, got %d", w.ctrl.State().Step)
	}
	if len(w.stepScreen.Orphans()) != 1 {
		t.Errorf("Expected the phone error listed on the last step, got %v", w.stepScreen.Orphans())
	}
}

func TestSubmission_TransportFailure(t *testing.T) {
	p := &fakePoster{err: context.DeadlineExceeded}
	w := submitVitals(t, p)

	if w.Phase() != PhaseStep {
		t.Fatalf("Expected phase step, got %s", w.Phase())
	}
	if w.Result() == nil || w.Result().Notification != intake.GenericFailure {
		t.Errorf("Expected generic failure, got %+v", w.Result())
	}
}

func TestSubmission_MisuseShowsError(t *testing.T) {
	w := newTestWizard(t, intake.FlowVitals, &fakePoster{})
	w.phase = PhaseSubmitting
	w.submittingScreen = screens.NewSubmittingScreen("/registerDiabVitals")

	w.Update(w.submit()())

	if w.Phase() != PhaseError {
		t.Fatalf("Expected phase error, got %s", w.Phase())
	}
	if !errors.Is(w.err, intake.ErrNotLastStep) {
		t.Errorf("Expected ErrNotLastStep, got %v", w.err)
	}
}

func TestSaveDraft_OmitsSecrets(t *testing.T) {
	w := newTestWizard(t, intake.FlowUser, &fakePoster{})
	setValues(t, w.stepScreen, map[string]string{
		intake.FieldFirstName: "Jane",
		intake.FieldPassword:  "Secret123",
		intake.FieldConfirm:   "Secret123",
	})
	w.stepScreen.Apply(w.ctrl.State())

	path := filepath.Join(t.TempDir(), "nested", "draft.yaml")
	if err := w.saveDraft(path); err != nil {
		t.Fatalf("saveDraft failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	d, err := LoadDraft(path)
	if err != nil {
		t.Fatalf("LoadDraft failed: %v", err)
	}
	if d.Fields[intake.FieldFirstName] != "Jane" {
		t.Errorf("Expected first name Jane, got %q", d.Fields[intake.FieldFirstName])
	}
	if _, ok := d.Fields[intake.FieldPassword]; ok {
		t.Error("Expected password to be left out of the draft")
	}
	if d.Registry != "" {
		t.Errorf("Expected no registry for the user flow, got %q", d.Registry)
	}
}
