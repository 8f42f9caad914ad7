// Package validate implements the field and whole-form validation rules of
// the application form.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"startup-apply-service/internal/domain"
)

// User-facing validation messages.
const (
	MsgRequired      = "This field is required"
	MsgInvalidEmail  = "Please enter a valid email address"
	MsgInvalidURL    = "Please enter a valid URL"
	MsgInvalidYear   = "Please enter a valid year"
	MsgInvalidOption = "Please select one of the provided options"
)

// minYear is the lower bound of the accepted founding-year range.
const minYear = 1900

// Deliberately permissive: local@domain with at least one dot after the @,
// no whitespace anywhere. Not an RFC 5322 validator.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validator applies validation rules. The clock is injectable so year-range
// checks are deterministic in tests.
type Validator struct {
	now func() time.Time
}

func New() *Validator {
	return NewWithClock(time.Now)
}

// NewWithClock is test-only for deterministic year validation.
func NewWithClock(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// Field validates a single value against its question. It returns an empty
// string when the value is acceptable and a user-facing message otherwise;
// it never fails in any other way. A non-empty MCQ value must be one of the
// declared options. The MaxLength cap is checked after the rule and its
// message replaces the rule's message when both would fire.
func (v *Validator) Field(value string, q domain.Question) string {
	msg := v.rule(value, q.Validation)
	if msg == "" && q.Kind == domain.KindMCQ && value != "" && !q.HasOption(value) {
		msg = MsgInvalidOption
	}
	if q.MaxLength > 0 && len([]rune(value)) > q.MaxLength {
		msg = fmt.Sprintf("Maximum %d characters allowed", q.MaxLength)
	}
	return msg
}

func (v *Validator) rule(value string, rule domain.Rule) string {
	if strings.TrimSpace(value) == "" {
		return MsgRequired
	}

	switch rule {
	case domain.RuleEmail:
		if !emailPattern.MatchString(value) {
			return MsgInvalidEmail
		}
	case domain.RuleURL:
		if !validURL(value) {
			return MsgInvalidURL
		}
	case domain.RuleYear:
		year, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || year < minYear || year > v.now().Year() {
			return MsgInvalidYear
		}
	}
	// domain.RuleText and unknown rules accept any non-blank value.
	return ""
}

// validURL checks structural URL validity after coercing scheme-less values,
// so a bare domain like "example.com" passes as "https://example.com".
func validURL(value string) bool {
	candidate := value
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		candidate = "https://" + value
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != "" && !strings.ContainsAny(u.Host, " \t")
}

// Form validates every question against the current form state in schema
// order. All fields are checked so the full error map can be rendered; the
// first failing field in schema order is reported for scroll-to-error.
func (v *Validator) Form(values domain.FormState, schema domain.FormSchema) domain.ValidationResult {
	errors := make(domain.ErrorState)
	first := ""

	for _, q := range schema.Questions {
		msg := v.Field(values.Value(q.FieldName), q)
		if msg == "" {
			continue
		}
		errors[q.FieldName] = msg
		if first == "" {
			first = q.FieldName
		}
	}

	return domain.ValidationResult{
		Valid:           len(errors) == 0,
		FirstErrorField: first,
		Errors:          errors,
	}
}
