package domain

import "errors"

var (
	// ErrFormNotFound indicates the form schema could not be loaded.
	ErrFormNotFound = errors.New("form not found")
	// ErrSessionNotFound is returned when a form session has not been started.
	ErrSessionNotFound = errors.New("form session not found")
	// ErrFieldNotFound indicates a field name that is not in the schema.
	ErrFieldNotFound = errors.New("field not found in form")
	// ErrOptionNotAllowed indicates an MCQ value outside the declared options.
	ErrOptionNotAllowed = errors.New("value is not one of the question's options")
	// ErrSubmitInFlight is returned when a submission is already pending for
	// the session; at most one may be in flight at a time.
	ErrSubmitInFlight = errors.New("submission already in progress")
	// ErrAlreadySubmitted is returned when a session in the submitted state
	// receives anything other than an explicit reset.
	ErrAlreadySubmitted = errors.New("application already submitted")
	// ErrInvalidSchema indicates a schema that violates construction invariants.
	ErrInvalidSchema = errors.New("invalid form schema")
)
