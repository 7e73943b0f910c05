package intake_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"

	"github.com/mrsinham/ncdintake/internal/apiclient"
	"github.com/mrsinham/ncdintake/internal/intake"
	"github.com/mrsinham/ncdintake/internal/mockapi"
)

// scenarioNow pins age and birth date checks.
var scenarioNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

// countingPoster counts the requests sent per endpoint.
type countingPoster struct {
	next intake.Poster

	mu    sync.Mutex
	calls map[string]int
}

func (p *countingPoster) PostJSON(ctx context.Context, path string, body any) (*apiclient.Response, error) {
	p.mu.Lock()
	p.calls[path]++
	p.mu.Unlock()
	return p.next.PostJSON(ctx, path, body)
}

// testContext holds state for a single scenario
type testContext struct {
	srv    *httptest.Server
	store  *mockapi.MemoryStore
	poster *countingPoster
	ctrl   *intake.Controller
	result *intake.Result
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	tc := &testContext{}

	sc.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if tc.srv != nil {
			tc.srv.Close()
		}
		return ctx, nil
	})

	sc.Step(`^the registry API is running$`, tc.registryAPIIsRunning)
	sc.Step(`^an? "([^"]*)" form for the "([^"]*)" registry$`, tc.aFormForRegistry)
	sc.Step(`^a patient is already registered with phone "([^"]*)"$`, tc.aPatientIsRegisteredWithPhone)
	sc.Step(`^I fill in:$`, tc.iFillIn)
	sc.Step(`^I fill "([^"]*)" with "([^"]*)"$`, tc.iFillWith)
	sc.Step(`^I check "([^"]*)" in "([^"]*)"$`, tc.iCheckIn)
	sc.Step(`^I go to the next step$`, tc.iGoToTheNextStep)
	sc.Step(`^I go back$`, tc.iGoBack)
	sc.Step(`^I complete every step$`, tc.iCompleteEveryStep)
	sc.Step(`^I submit the form$`, tc.iSubmitTheForm)
	sc.Step(`^the submission is accepted with "([^"]*)"$`, tc.submissionIsAccepted)
	sc.Step(`^the submission is rejected with "([^"]*)" on "([^"]*)"$`, tc.submissionIsRejected)
	sc.Step(`^the form is on step (\d+)$`, tc.formIsOnStep)
	sc.Step(`^"([^"]*)" has an error$`, tc.fieldHasError)
	sc.Step(`^"([^"]*)" has no error$`, tc.fieldHasNoError)
	sc.Step(`^"([^"]*)" still reads "([^"]*)"$`, tc.fieldStillReads)
	sc.Step(`^the API received (\d+) requests? on "([^"]*)"$`, tc.apiReceivedRequests)
	sc.Step(`^the "([^"]*)" registry holds (\d+) patients?$`, tc.registryHoldsPatients)
	sc.Step(`^the last patient has a BMI of "([^"]*)" and an age of (\d+)$`, tc.lastPatientHasBMIAndAge)
	sc.Step(`^the last patient has the clinical symptoms "([^"]*)"$`, tc.lastPatientHasSymptoms)
}

func (tc *testContext) registryAPIIsRunning() error {
	tc.store = mockapi.NewMemoryStore()
	tc.srv = httptest.NewServer(mockapi.New(mockapi.Options{
		Store:     tc.store,
		JWTSecret: "feature-secret-0123456789",
		Logger:    zerolog.Nop(),
	}).Handler())

	client, err := apiclient.New(apiclient.Config{BaseURL: tc.srv.URL})
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	tc.poster = &countingPoster{next: client, calls: make(map[string]int)}
	return nil
}

func (tc *testContext) aFormForRegistry(flowName, regName string) error {
	kind, err := intake.ParseFlow(flowName)
	if err != nil {
		return err
	}
	reg, err := intake.ParseRegistry(regName)
	if err != nil {
		return err
	}
	flow, err := intake.NewFlow(kind, reg)
	if err != nil {
		return err
	}
	tc.ctrl = intake.NewController(flow, tc.poster, intake.Options{
		Now:   func() time.Time { return scenarioNow },
		Token: func() string { return "ABCD1234" },
	})
	return nil
}

func (tc *testContext) aPatientIsRegisteredWithPhone(phone string) error {
	return tc.store.CreatePatient(context.Background(), intake.PatientRegistration{
		FirstName:   "Eric",
		LastName:    "Mugisha",
		DateOfBirth: "1980-01-01",
		Gender:      "male",
		NationalID:  "1198087654321",
		Phone:       phone,
		Condition:   intake.Hypertension.Title(),
	})
}

func (tc *testContext) requireForm() error {
	if tc.ctrl == nil {
		return fmt.Errorf("no form was opened")
	}
	return nil
}

func (tc *testContext) iFillIn(table *godog.Table) error {
	if err := tc.requireForm(); err != nil {
		return err
	}
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		if len(row.Cells) != 2 {
			return fmt.Errorf("row %d: expected 2 cells, got %d", i, len(row.Cells))
		}
		tc.ctrl.State().Set(row.Cells[0].Value, row.Cells[1].Value)
	}
	return nil
}

func (tc *testContext) iFillWith(field, value string) error {
	if err := tc.requireForm(); err != nil {
		return err
	}
	tc.ctrl.State().Set(field, value)
	return nil
}

func (tc *testContext) iCheckIn(item, group string) error {
	if err := tc.requireForm(); err != nil {
		return err
	}
	tc.ctrl.State().SetFlag(group+"."+item, true)
	return nil
}

func (tc *testContext) iGoToTheNextStep() error {
	if err := tc.requireForm(); err != nil {
		return err
	}
	tc.ctrl.Next()
	return nil
}

func (tc *testContext) iGoBack() error {
	if err := tc.requireForm(); err != nil {
		return err
	}
	tc.ctrl.Previous()
	return nil
}

func (tc *testContext) iCompleteEveryStep() error {
	if err := tc.requireForm(); err != nil {
		return err
	}
	for !tc.ctrl.IsLastStep() {
		step := tc.ctrl.State().Step
		if !tc.ctrl.Next() {
			return fmt.Errorf("step %d is invalid: %v", step, tc.ctrl.State().Errors)
		}
	}
	return nil
}

func (tc *testContext) iSubmitTheForm() error {
	if err := tc.requireForm(); err != nil {
		return err
	}
	res, err := tc.ctrl.Submit(context.Background())
	if err != nil {
		return err
	}
	tc.result = res
	return nil
}

func (tc *testContext) submissionIsAccepted(notification string) error {
	if tc.result == nil {
		return fmt.Errorf("nothing was submitted")
	}
	if !tc.result.OK {
		return fmt.Errorf("expected acceptance, got %q %v", tc.result.Notification, tc.result.FieldErrors)
	}
	if tc.result.Notification != notification {
		return fmt.Errorf("expected notification %q, got %q", notification, tc.result.Notification)
	}
	return nil
}

func (tc *testContext) submissionIsRejected(message, field string) error {
	if tc.result == nil {
		return fmt.Errorf("nothing was submitted")
	}
	if tc.result.OK {
		return fmt.Errorf("expected rejection, got %q", tc.result.Notification)
	}
	if len(tc.result.FieldErrors) != 1 {
		return fmt.Errorf("expected exactly one field error, got %v", tc.result.FieldErrors)
	}
	if got := tc.result.FieldErrors[field]; got != message {
		return fmt.Errorf("expected %q on %s, got %q", message, field, got)
	}
	return nil
}

func (tc *testContext) formIsOnStep(step int) error {
	if err := tc.requireForm(); err != nil {
		return err
	}
	if got := tc.ctrl.State().Step; got != step {
		return fmt.Errorf("expected step %d, got %d (errors: %v)", step, got, tc.ctrl.State().Errors)
	}
	return nil
}

func (tc *testContext) fieldHasError(field string) error {
	if _, ok := tc.ctrl.State().Errors[field]; !ok {
		return fmt.Errorf("expected an error on %s, got %v", field, tc.ctrl.State().Errors)
	}
	return nil
}

func (tc *testContext) fieldHasNoError(field string) error {
	if msg, ok := tc.ctrl.State().Errors[field]; ok {
		return fmt.Errorf("expected no error on %s, got %q", field, msg)
	}
	return nil
}

func (tc *testContext) fieldStillReads(field, want string) error {
	if got := tc.ctrl.State().Fields[field]; got != want {
		return fmt.Errorf("expected %s to read %q, got %q", field, want, got)
	}
	return nil
}

func (tc *testContext) apiReceivedRequests(n int, path string) error {
	tc.poster.mu.Lock()
	defer tc.poster.mu.Unlock()
	if got := tc.poster.calls[path]; got != n {
		return fmt.Errorf("expected %d requests on %s, got %d (%v)", n, path, got, tc.poster.calls)
	}
	return nil
}

func (tc *testContext) patients(regName string) ([]intake.PatientRegistration, error) {
	reg, err := intake.ParseRegistry(regName)
	if err != nil {
		return nil, err
	}
	return tc.store.ListPatients(context.Background(), reg)
}

func (tc *testContext) registryHoldsPatients(regName string, n int) error {
	patients, err := tc.patients(regName)
	if err != nil {
		return err
	}
	if len(patients) != n {
		return fmt.Errorf("expected %d patients, got %d", n, len(patients))
	}
	return nil
}

func (tc *testContext) lastPatient() (intake.PatientRegistration, error) {
	patients, err := tc.patients(string(tc.ctrl.Flow().Registry))
	if err != nil {
		return intake.PatientRegistration{}, err
	}
	if len(patients) == 0 {
		return intake.PatientRegistration{}, fmt.Errorf("no patient registered")
	}
	return patients[len(patients)-1], nil
}

func (tc *testContext) lastPatientHasBMIAndAge(bmi string, age int) error {
	p, err := tc.lastPatient()
	if err != nil {
		return err
	}
	if p.BMI == nil || *p.BMI != bmi {
		return fmt.Errorf("expected bmi %q, got %v", bmi, p.BMI)
	}
	if p.Age != age {
		return fmt.Errorf("expected age %d, got %d", age, p.Age)
	}
	return nil
}

func (tc *testContext) lastPatientHasSymptoms(want string) error {
	p, err := tc.lastPatient()
	if err != nil {
		return err
	}
	if got := strings.Join(p.ClinicalSymptoms, ", "); got != want {
		return fmt.Errorf("expected symptoms %q, got %q", want, got)
	}
	return nil
}
