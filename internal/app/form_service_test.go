package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"startup-apply-service/internal/app"
	"startup-apply-service/internal/domain"
	"startup-apply-service/internal/forms"
	"startup-apply-service/internal/infra/memory"
	"startup-apply-service/internal/validate"
)

// fakeSubmitter records payloads and can be told to fail or block.
type fakeSubmitter struct {
	mu      sync.Mutex
	calls   int
	last    domain.ApplicationPayload
	err     error
	release chan struct{} // when non-nil, Submit blocks until closed
}

func (f *fakeSubmitter) Submit(_ context.Context, payload domain.ApplicationPayload) (domain.SubmissionReceipt, error) {
	f.mu.Lock()
	f.calls++
	f.last = payload
	release := f.release
	err := f.err
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	return domain.SubmissionReceipt{"ok": true}, nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestService(submitter app.Submitter) *app.FormService {
	startup := forms.StartupApplication()
	loader := memory.NewStaticSchemaLoader(map[string]domain.FormSchema{startup.ID: startup})
	schemas := memory.NewSchemaRepository(loader, 5*time.Minute)
	sessions := memory.NewSessionStore()
	service := app.NewFormService(sessions, schemas, submitter, nil)
	return service.WithValidator(validate.NewWithClock(func() time.Time {
		return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	}))
}

func fillValid(t *testing.T, service *app.FormService, sessionID string) {
	t.Helper()
	ctx := context.Background()
	answers := map[string]string{
		domain.FieldEmail:     "founder@acme.io",
		domain.FieldBrandName: "Acme",
		domain.FieldLegalName: "Acme Inc",
		domain.FieldFoundedIn: "2019",
		domain.FieldBrief:     "We build widgets",
		domain.FieldDomain:    "fintech",
		domain.FieldAddress:   "123 St",
		domain.FieldStage:     "MVP",
		domain.FieldWebsite:   "acme.io",
		domain.FieldLinkedIn:  "linkedin.com/in/founder",
	}
	for field, value := range answers {
		if _, err := service.SetField(ctx, forms.StartupApplicationID, sessionID, field, value); err != nil {
			t.Fatalf("set %s: %v", field, err)
		}
	}
}

func TestSetFieldClearsOnlyThatError(t *testing.T) {
	ctx := context.Background()
	submitter := &fakeSubmitter{}
	service := newTestService(submitter)

	if _, _, err := service.Open(ctx, forms.StartupApplicationID, "s1"); err != nil {
		t.Fatalf("open: %v", err)
	}

	// A submit over a blank form populates errors for every field.
	outcome, err := service.Submit(ctx, forms.StartupApplicationID, "s1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Result.Valid {
		t.Fatalf("expected blank form to fail validation")
	}
	if outcome.Result.FirstErrorField != domain.FieldEmail {
		t.Fatalf("expected first error on email (schema order), got %q", outcome.Result.FirstErrorField)
	}
	if submitter.callCount() != 0 {
		t.Fatalf("expected no network call on validation failure, got %d", submitter.callCount())
	}

	view, err := service.SetField(ctx, forms.StartupApplicationID, "s1", domain.FieldEmail, "typing")
	if err != nil {
		t.Fatalf("set field: %v", err)
	}
	if _, ok := view.Errors[domain.FieldEmail]; ok {
		t.Fatalf("expected email error cleared on edit")
	}
	if _, ok := view.Errors[domain.FieldBrandName]; !ok {
		t.Fatalf("expected other field errors untouched")
	}
}

func TestSetFieldRejectsUnknownFieldAndBadOption(t *testing.T) {
	ctx := context.Background()
	service := newTestService(&fakeSubmitter{})
	_, _, _ = service.Open(ctx, forms.StartupApplicationID, "s1")

	if _, err := service.SetField(ctx, forms.StartupApplicationID, "s1", "nope", "x"); !errors.Is(err, domain.ErrFieldNotFound) {
		t.Fatalf("expected field-not-found, got %v", err)
	}
	if _, err := service.SetField(ctx, forms.StartupApplicationID, "s1", domain.FieldStage, "UNICORN"); !errors.Is(err, domain.ErrOptionNotAllowed) {
		t.Fatalf("expected option-not-allowed, got %v", err)
	}
	// Empty string is an explicit un-answer and is always accepted.
	if _, err := service.SetField(ctx, forms.StartupApplicationID, "s1", domain.FieldStage, ""); err != nil {
		t.Fatalf("expected empty mcq value accepted, got %v", err)
	}
}

func TestSubmitSuccess(t *testing.T) {
	ctx := context.Background()
	submitter := &fakeSubmitter{}
	service := newTestService(submitter)
	_, _, _ = service.Open(ctx, forms.StartupApplicationID, "s1")
	fillValid(t, service, "s1")

	outcome, err := service.Submit(ctx, forms.StartupApplicationID, "s1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !outcome.Submitted {
		t.Fatalf("expected submitted outcome, got %+v", outcome)
	}
	if submitter.callCount() != 1 {
		t.Fatalf("expected exactly one network call, got %d", submitter.callCount())
	}
	if submitter.last.Startup.Name != "Acme" || submitter.last.Startup.Stage != "MVP" {
		t.Fatalf("unexpected payload: %+v", submitter.last.Startup)
	}

	// Submitted is terminal until an explicit reset.
	if _, err := service.SetField(ctx, forms.StartupApplicationID, "s1", domain.FieldEmail, "x@y.co"); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected already-submitted on edit, got %v", err)
	}
	if _, err := service.Submit(ctx, forms.StartupApplicationID, "s1"); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected already-submitted on resubmit, got %v", err)
	}
}

func TestSubmitFailurePreservesStateAndAllowsRetry(t *testing.T) {
	ctx := context.Background()
	submitter := &fakeSubmitter{err: errors.New("boom")}
	service := newTestService(submitter)
	_, _, _ = service.Open(ctx, forms.StartupApplicationID, "s1")
	fillValid(t, service, "s1")

	outcome, err := service.Submit(ctx, forms.StartupApplicationID, "s1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Submitted {
		t.Fatalf("expected failed outcome")
	}
	if outcome.SubmitError != app.SubmitFailedMessage {
		t.Fatalf("expected generic submit error, got %q", outcome.SubmitError)
	}

	view, err := service.SetField(ctx, forms.StartupApplicationID, "s1", domain.FieldBrandName, "Acme v2")
	if err != nil {
		t.Fatalf("expected edits allowed after failure, got %v", err)
	}
	if view.Values[domain.FieldEmail] != "founder@acme.io" {
		t.Fatalf("expected form state preserved across failure, got %v", view.Values)
	}

	// A retry goes out as a brand-new identical request.
	submitter.mu.Lock()
	submitter.err = nil
	submitter.mu.Unlock()
	outcome, err = service.Submit(ctx, forms.StartupApplicationID, "s1")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !outcome.Submitted {
		t.Fatalf("expected retry to succeed, got %+v", outcome)
	}
	if submitter.callCount() != 2 {
		t.Fatalf("expected two network calls total, got %d", submitter.callCount())
	}
}

func TestAtMostOneInFlightSubmission(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	submitter := &fakeSubmitter{release: release}
	service := newTestService(submitter)
	_, _, _ = service.Open(ctx, forms.StartupApplicationID, "s1")
	fillValid(t, service, "s1")

	firstDone := make(chan app.SubmitOutcome, 1)
	go func() {
		outcome, _ := service.Submit(ctx, forms.StartupApplicationID, "s1")
		firstDone <- outcome
	}()

	// Wait for the first submission to reach the submitter.
	deadline := time.After(2 * time.Second)
	for submitter.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatalf("first submission never reached the submitter")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, err := service.Submit(ctx, forms.StartupApplicationID, "s1"); !errors.Is(err, domain.ErrSubmitInFlight) {
		t.Fatalf("expected in-flight rejection, got %v", err)
	}

	close(release)
	outcome := <-firstDone
	if !outcome.Submitted {
		t.Fatalf("expected first submission to succeed, got %+v", outcome)
	}
	if submitter.callCount() != 1 {
		t.Fatalf("expected exactly one network request, got %d", submitter.callCount())
	}
}

func TestResetClearsEverything(t *testing.T) {
	ctx := context.Background()
	submitter := &fakeSubmitter{}
	service := newTestService(submitter)
	_, _, _ = service.Open(ctx, forms.StartupApplicationID, "s1")
	fillValid(t, service, "s1")

	if outcome, err := service.Submit(ctx, forms.StartupApplicationID, "s1"); err != nil || !outcome.Submitted {
		t.Fatalf("submit: outcome=%+v err=%v", outcome, err)
	}

	view, err := service.Reset(ctx, "s1")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if view.Phase != app.PhaseIdle {
		t.Fatalf("expected idle after reset, got %s", view.Phase)
	}
	if len(view.Values) != 0 || len(view.Errors) != 0 || view.SubmitError != "" {
		t.Fatalf("expected blank state after reset, got %+v", view)
	}

	// The session is usable again for a fresh application.
	if _, err := service.SetField(ctx, forms.StartupApplicationID, "s1", domain.FieldEmail, "next@acme.io"); err != nil {
		t.Fatalf("expected edits after reset, got %v", err)
	}
}

func TestSubmitDirect(t *testing.T) {
	ctx := context.Background()
	submitter := &fakeSubmitter{}
	service := newTestService(submitter)

	outcome, err := service.SubmitDirect(ctx, forms.StartupApplicationID, domain.FormState{})
	if err != nil {
		t.Fatalf("submit direct: %v", err)
	}
	if outcome.Result.Valid || submitter.callCount() != 0 {
		t.Fatalf("expected validation failure without network call")
	}

	values := domain.FormState{
		domain.FieldEmail:     "founder@acme.io",
		domain.FieldBrandName: "Acme",
		domain.FieldLegalName: "Acme Inc",
		domain.FieldFoundedIn: "2019",
		domain.FieldBrief:     "We build widgets",
		domain.FieldDomain:    "fintech",
		domain.FieldAddress:   "123 St",
		domain.FieldStage:     "MVP",
		domain.FieldWebsite:   "acme.io",
		domain.FieldLinkedIn:  "linkedin.com/in/founder",
	}
	outcome, err = service.SubmitDirect(ctx, forms.StartupApplicationID, values)
	if err != nil {
		t.Fatalf("submit direct: %v", err)
	}
	if !outcome.Submitted || submitter.callCount() != 1 {
		t.Fatalf("expected successful direct submission, got %+v calls=%d", outcome, submitter.callCount())
	}
}

func TestUnknownFormRejected(t *testing.T) {
	ctx := context.Background()
	service := newTestService(&fakeSubmitter{})

	if _, _, err := service.Open(ctx, "no-such-form", "s1"); !errors.Is(err, domain.ErrFormNotFound) {
		t.Fatalf("expected form-not-found, got %v", err)
	}
}
