package domain

// QuestionKind discriminates how a question is answered.
type QuestionKind string

const (
	// KindText is a free-text input (single or multi line).
	KindText QuestionKind = "text"
	// KindMCQ restricts the answer to one of the question's options.
	KindMCQ QuestionKind = "mcq"
)

// Rule names the validation applied to a question's value at submit time.
type Rule string

const (
	RuleText  Rule = "text"
	RuleEmail Rule = "email"
	RuleURL   Rule = "url"
	RuleYear  Rule = "year"
)

// Question models one form field to collect. Optional fields are rendering
// hints except MaxLength, which is also a hard validation cap.
type Question struct {
	Prompt      string       `json:"question"`
	Kind        QuestionKind `json:"question_type"`
	FieldName   string       `json:"field_name"`
	Validation  Rule         `json:"validation"`
	Placeholder string       `json:"placeholder,omitempty"`
	MaxLength   int          `json:"maxLength,omitempty"`
	IsTextarea  bool         `json:"isTextarea,omitempty"`
	Options     []string     `json:"options,omitempty"` // required for mcq

	// A non-empty StepTitle starts a new section at this question.
	StepTitle       string `json:"stepTitle,omitempty"`
	StepDescription string `json:"stepDescription,omitempty"`
}

// HasOption reports whether value is one of the question's declared options.
func (q Question) HasOption(value string) bool {
	for _, opt := range q.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// FormSchema is the ordered, declarative description of a form. The top-level
// metadata is informational; TotalSteps in particular is not enforced against
// the number of derived sections.
type FormSchema struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	HighlightText string     `json:"highlight_text"`
	SubTitle      string     `json:"sub_title"`
	TotalSteps    int        `json:"totalSteps"`
	Questions     []Question `json:"question"`
}

// Question returns the schema entry for fieldName, if any.
func (s FormSchema) Question(fieldName string) (Question, bool) {
	for _, q := range s.Questions {
		if q.FieldName == fieldName {
			return q, true
		}
	}
	return Question{}, false
}

// Section is a derived grouping of consecutive questions sharing a step
// heading. It is never stored; Sections recomputes it from the flat list.
type Section struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
}

// FormState maps field names to their current values. An absent key is
// equivalent to the empty string.
type FormState map[string]string

// Value returns the current value for fieldName, defaulting to "".
func (f FormState) Value(fieldName string) string {
	return f[fieldName]
}

// ErrorState maps field names to human-readable validation messages. An
// absent or empty entry means the field has no error.
type ErrorState map[string]string

// ValidationResult is the outcome of a whole-form validation pass.
// FirstErrorField is the schema-order first failing field, used by the
// presentation layer to scroll the user to it.
type ValidationResult struct {
	Valid           bool       `json:"valid"`
	FirstErrorField string     `json:"firstErrorField,omitempty"`
	Errors          ErrorState `json:"errors,omitempty"`
}

// SubmissionReceipt is whatever JSON object the webhook returned on success.
// Empty or non-JSON bodies decode to an empty receipt.
type SubmissionReceipt map[string]any
