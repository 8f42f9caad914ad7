package domain

import "fmt"

// Sections groups the flat question list into ordered sections on stepTitle
// boundaries. A question with a non-empty StepTitle opens a new section;
// questions before the first marker fall into a default untitled section.
// Concatenating the sections' questions in order reproduces the schema order.
func (s FormSchema) Sections() []Section {
	var sections []Section
	var current *Section

	for _, q := range s.Questions {
		if q.StepTitle != "" {
			sections = append(sections, Section{
				Title:       q.StepTitle,
				Description: q.StepDescription,
			})
			current = &sections[len(sections)-1]
		}
		if current == nil {
			sections = append(sections, Section{})
			current = &sections[len(sections)-1]
		}
		current.Questions = append(current.Questions, q)
	}
	return sections
}

// Validate checks the construction invariants of the schema: field names are
// unique and non-empty, question kinds are known, and each mcq question
// carries a non-empty list of distinct options. Loaders must call this after
// decoding untrusted schema data.
func (s FormSchema) Validate() error {
	seen := make(map[string]struct{}, len(s.Questions))
	for i, q := range s.Questions {
		if q.FieldName == "" {
			return fmt.Errorf("%w: question %d has no field_name", ErrInvalidSchema, i)
		}
		if _, dup := seen[q.FieldName]; dup {
			return fmt.Errorf("%w: duplicate field_name %q", ErrInvalidSchema, q.FieldName)
		}
		seen[q.FieldName] = struct{}{}

		switch q.Kind {
		case KindText:
			if len(q.Options) > 0 {
				return fmt.Errorf("%w: text question %q declares options", ErrInvalidSchema, q.FieldName)
			}
		case KindMCQ:
			if len(q.Options) == 0 {
				return fmt.Errorf("%w: mcq question %q has no options", ErrInvalidSchema, q.FieldName)
			}
			opts := make(map[string]struct{}, len(q.Options))
			for _, opt := range q.Options {
				if _, dup := opts[opt]; dup {
					return fmt.Errorf("%w: mcq question %q repeats option %q", ErrInvalidSchema, q.FieldName, opt)
				}
				opts[opt] = struct{}{}
			}
		default:
			return fmt.Errorf("%w: question %q has unknown type %q", ErrInvalidSchema, q.FieldName, q.Kind)
		}

		if q.MaxLength < 0 {
			return fmt.Errorf("%w: question %q has negative maxLength", ErrInvalidSchema, q.FieldName)
		}
	}
	return nil
}
