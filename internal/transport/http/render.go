package http

import (
	"startup-apply-service/internal/app"
	"startup-apply-service/internal/domain"
)

// renderedField is the per-question contract handed to the presentation
// layer: schema hints merged with the session's current value and error.
type renderedField struct {
	FieldName   string              `json:"field_name"`
	Prompt      string              `json:"question"`
	Kind        domain.QuestionKind `json:"question_type"`
	Options     []string            `json:"options,omitempty"`
	Placeholder string              `json:"placeholder,omitempty"`
	MaxLength   int                 `json:"maxLength,omitempty"`
	IsTextarea  bool                `json:"isTextarea,omitempty"`
	Value       string              `json:"value"`
	Error       string              `json:"error,omitempty"`
}

type renderedSection struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Fields      []renderedField `json:"fields"`
}

type formView struct {
	FormID        string            `json:"formId"`
	Title         string            `json:"title"`
	HighlightText string            `json:"highlightText,omitempty"`
	SubTitle      string            `json:"subTitle,omitempty"`
	Sections      []renderedSection `json:"sections"`
	Phase         app.Phase         `json:"phase,omitempty"`
	SubmitError   string            `json:"submitError,omitempty"`
}

// renderForm flattens the schema's derived sections against a session view.
// A zero session view renders a blank form.
func renderForm(schema domain.FormSchema, session app.SessionView) formView {
	sections := schema.Sections()
	rendered := make([]renderedSection, 0, len(sections))
	for _, section := range sections {
		fields := make([]renderedField, 0, len(section.Questions))
		for _, q := range section.Questions {
			fields = append(fields, renderedField{
				FieldName:   q.FieldName,
				Prompt:      q.Prompt,
				Kind:        q.Kind,
				Options:     q.Options,
				Placeholder: q.Placeholder,
				MaxLength:   q.MaxLength,
				IsTextarea:  q.IsTextarea,
				Value:       session.Values.Value(q.FieldName),
				Error:       session.Errors[q.FieldName],
			})
		}
		rendered = append(rendered, renderedSection{
			Title:       section.Title,
			Description: section.Description,
			Fields:      fields,
		})
	}
	return formView{
		FormID:        schema.ID,
		Title:         schema.Title,
		HighlightText: schema.HighlightText,
		SubTitle:      schema.SubTitle,
		Sections:      rendered,
		Phase:         session.Phase,
		SubmitError:   session.SubmitError,
	}
}
