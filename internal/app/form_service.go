package app

import (
	"context"
	"log"
	"sync"

	"startup-apply-service/internal/domain"
	"startup-apply-service/internal/validate"
)

// SubmitFailedMessage is the single generic message shown for any transport
// failure or non-success response from the webhook.
const SubmitFailedMessage = "Failed to submit application. Please try again."

// Phase is the submission state of a form session.
type Phase string

const (
	// PhaseIdle accepts edits and submit attempts.
	PhaseIdle Phase = "idle"
	// PhaseSubmitting has one network submission in flight.
	PhaseSubmitting Phase = "submitting"
	// PhaseSubmitted is terminal until an explicit reset.
	PhaseSubmitted Phase = "submitted"
)

// SessionRepository abstracts how form sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(sessionID string) *Session
	Get(sessionID string) (*Session, bool)
	DeleteIfEmpty(sessionID string)
}

// SchemaRepository loads form schemas (from cache/backing store).
type SchemaRepository interface {
	GetSchema(ctx context.Context, formID string) (domain.FormSchema, error)
}

// Submitter forwards a finished application payload to the external webhook.
type Submitter interface {
	Submit(ctx context.Context, payload domain.ApplicationPayload) (domain.SubmissionReceipt, error)
}

// Archive records successfully forwarded applications. Implementations must
// tolerate being called concurrently; a nil Archive disables archiving.
type Archive interface {
	SaveApplication(ctx context.Context, formID string, payload domain.ApplicationPayload) error
}

// FormService contains the form engine use cases: per-session state, field
// updates, whole-form validation, and the webhook submission pipeline.
type FormService struct {
	sessions  SessionRepository
	schemas   SchemaRepository
	submitter Submitter
	archive   Archive
	validator *validate.Validator
}

func NewFormService(sessions SessionRepository, schemas SchemaRepository, submitter Submitter, archive Archive) *FormService {
	return &FormService{
		sessions:  sessions,
		schemas:   schemas,
		submitter: submitter,
		archive:   archive,
		validator: validate.New(),
	}
}

// WithValidator swaps the validator; test-only, for deterministic clocks.
func (s *FormService) WithValidator(v *validate.Validator) *FormService {
	s.validator = v
	return s
}

// SessionView is a snapshot of a session handed to the presentation layer.
type SessionView struct {
	SessionID   string            `json:"sessionId"`
	Phase       Phase             `json:"phase"`
	Values      domain.FormState  `json:"values"`
	Errors      domain.ErrorState `json:"errors"`
	SubmitError string            `json:"submitError,omitempty"`
}

// SubmitOutcome reports what a submit attempt did. Exactly one of the three
// branches holds: validation failed (Result populated, no network call),
// the webhook rejected or was unreachable (SubmitError set), or the
// submission went through (Submitted true, Receipt populated).
type SubmitOutcome struct {
	Submitted   bool                     `json:"submitted"`
	Result      domain.ValidationResult  `json:"validation"`
	SubmitError string                   `json:"submitError,omitempty"`
	Receipt     domain.SubmissionReceipt `json:"receipt,omitempty"`
}

// Schema loads a form schema without touching any session.
func (s *FormService) Schema(ctx context.Context, formID string) (domain.FormSchema, error) {
	return s.schemas.GetSchema(ctx, formID)
}

// Open loads the form schema and registers or refreshes a session for it.
func (s *FormService) Open(ctx context.Context, formID, sessionID string) (domain.FormSchema, SessionView, error) {
	schema, err := s.schemas.GetSchema(ctx, formID)
	if err != nil {
		return domain.FormSchema{}, SessionView{}, err
	}
	session := s.sessions.GetOrCreate(sessionID)
	return schema, session.view(), nil
}

// SetField records a new value for a field and optimistically clears that
// field's error. MCQ fields only accept one of their declared options or the
// empty string (an explicit un-answer).
func (s *FormService) SetField(ctx context.Context, formID, sessionID, fieldName, value string) (SessionView, error) {
	schema, err := s.schemas.GetSchema(ctx, formID)
	if err != nil {
		return SessionView{}, err
	}
	question, ok := schema.Question(fieldName)
	if !ok {
		return SessionView{}, domain.ErrFieldNotFound
	}
	if question.Kind == domain.KindMCQ && value != "" && !question.HasOption(value) {
		return SessionView{}, domain.ErrOptionNotAllowed
	}

	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return SessionView{}, domain.ErrSessionNotFound
	}
	return session.setField(fieldName, value)
}

// Submit runs the whole-form validation pass and, when it passes, forwards
// the mapped payload to the webhook. At most one submission per session may
// be in flight; concurrent attempts get ErrSubmitInFlight. The network call
// runs outside the session lock so edits from other events never block on it.
func (s *FormService) Submit(ctx context.Context, formID, sessionID string) (SubmitOutcome, error) {
	schema, err := s.schemas.GetSchema(ctx, formID)
	if err != nil {
		return SubmitOutcome{}, err
	}
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return SubmitOutcome{}, domain.ErrSessionNotFound
	}

	attempt, err := session.beginSubmit(s.validator, schema)
	if err != nil {
		return SubmitOutcome{}, err
	}
	if !attempt.result.Valid {
		return SubmitOutcome{Result: attempt.result}, nil
	}

	receipt, submitErr := s.deliver(ctx, formID, attempt.snapshot)
	session.finishSubmit(submitErr == nil)
	if submitErr != nil {
		log.Printf("webhook submission failed for session %s: %v", sessionID, submitErr)
		return SubmitOutcome{Result: attempt.result, SubmitError: SubmitFailedMessage}, nil
	}
	return SubmitOutcome{Submitted: true, Result: attempt.result, Receipt: receipt}, nil
}

// SubmitDirect runs the pipeline over a caller-supplied value map without a
// session, for one-shot REST submissions. The validation pass checks MCQ
// option membership too, since no SetField guard ran on these values.
func (s *FormService) SubmitDirect(ctx context.Context, formID string, values domain.FormState) (SubmitOutcome, error) {
	schema, err := s.schemas.GetSchema(ctx, formID)
	if err != nil {
		return SubmitOutcome{}, err
	}
	result := s.validator.Form(values, schema)
	if !result.Valid {
		return SubmitOutcome{Result: result}, nil
	}
	receipt, submitErr := s.deliver(ctx, formID, values)
	if submitErr != nil {
		log.Printf("webhook submission failed for form %s: %v", formID, submitErr)
		return SubmitOutcome{Result: result, SubmitError: SubmitFailedMessage}, nil
	}
	return SubmitOutcome{Submitted: true, Result: result, Receipt: receipt}, nil
}

func (s *FormService) deliver(ctx context.Context, formID string, values domain.FormState) (domain.SubmissionReceipt, error) {
	payload := domain.NewApplicationPayload(values)
	receipt, err := s.submitter.Submit(ctx, payload)
	if err != nil {
		return nil, err
	}
	if s.archive != nil {
		// The webhook is the system of record; a failed archive write is
		// logged and the submission still counts.
		if err := s.archive.SaveApplication(ctx, formID, payload); err != nil {
			log.Printf("archive write failed for form %s: %v", formID, err)
		}
	}
	return receipt, nil
}

// Reset returns a submitted session to a blank form: values, field errors,
// and the submit-level error are all cleared.
func (s *FormService) Reset(_ context.Context, sessionID string) (SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return SessionView{}, domain.ErrSessionNotFound
	}
	return session.reset(), nil
}

// Close drops the session if it holds no answers.
func (s *FormService) Close(_ context.Context, sessionID string) {
	s.sessions.DeleteIfEmpty(sessionID)
}

// Session is the in-memory state of one applicant filling in the form.
type Session struct {
	id          string
	mu          sync.Mutex
	phase       Phase
	values      domain.FormState
	errors      domain.ErrorState
	submitError string
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string) *Session {
	return &Session{
		id:     id,
		phase:  PhaseIdle,
		values: make(domain.FormState),
		errors: make(domain.ErrorState),
	}
}

// IsEmpty reports whether the session holds no answers and is safe to drop.
func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values) == 0 && s.phase == PhaseIdle
}

func (s *Session) setField(fieldName, value string) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseSubmitting:
		return SessionView{}, domain.ErrSubmitInFlight
	case PhaseSubmitted:
		return SessionView{}, domain.ErrAlreadySubmitted
	}

	s.values[fieldName] = value
	delete(s.errors, fieldName)
	return s.viewLocked(), nil
}

type submitAttempt struct {
	result   domain.ValidationResult
	snapshot domain.FormState
}

// beginSubmit validates the whole form under the lock. On a clean pass it
// moves the session to PhaseSubmitting, clears the previous submit error,
// and returns a snapshot of the values; the caller performs the network call
// and must then call finishSubmit. On a failed pass the error state is
// replaced wholesale and the session stays idle.
func (s *Session) beginSubmit(v *validate.Validator, schema domain.FormSchema) (submitAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseSubmitting:
		return submitAttempt{}, domain.ErrSubmitInFlight
	case PhaseSubmitted:
		return submitAttempt{}, domain.ErrAlreadySubmitted
	}

	result := v.Form(s.values, schema)
	if !result.Valid {
		s.errors = result.Errors
		return submitAttempt{result: result}, nil
	}

	s.phase = PhaseSubmitting
	s.submitError = ""
	snapshot := make(domain.FormState, len(s.values))
	for k, val := range s.values {
		snapshot[k] = val
	}
	return submitAttempt{result: result, snapshot: snapshot}, nil
}

func (s *Session) finishSubmit(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ok {
		s.phase = PhaseSubmitted
		return
	}
	// Failure keeps everything the applicant typed so they can retry.
	s.phase = PhaseIdle
	s.submitError = SubmitFailedMessage
}

func (s *Session) reset() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseIdle
	s.values = make(domain.FormState)
	s.errors = make(domain.ErrorState)
	s.submitError = ""
	return s.viewLocked()
}

func (s *Session) view() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() SessionView {
	values := make(domain.FormState, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	errors := make(domain.ErrorState, len(s.errors))
	for k, v := range s.errors {
		errors[k] = v
	}
	return SessionView{
		SessionID:   s.id,
		Phase:       s.phase,
		Values:      values,
		Errors:      errors,
		SubmitError: s.submitError,
	}
}
