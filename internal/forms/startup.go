// Package forms holds the built-in form definitions served when no schema
// store is configured.
package forms

import "startup-apply-service/internal/domain"

// StartupApplicationID is the form ID of the accelerator application form.
const StartupApplicationID = "startup-application"

// StartupApplication returns the accelerator's application form schema.
func StartupApplication() domain.FormSchema {
	return domain.FormSchema{
		ID:            StartupApplicationID,
		Title:         "Startup Application Form",
		HighlightText: "Startup",
		SubTitle:      "",
		TotalSteps:    9,
		Questions: []domain.Question{
			{
				Prompt:          "Enter your email",
				Kind:            domain.KindText,
				Placeholder:     "Your email",
				FieldName:       domain.FieldEmail,
				Validation:      domain.RuleEmail,
				StepTitle:       "Contact Information",
				StepDescription: "Let's start with your basic contact details",
			},
			{
				Prompt:          "Brand Name",
				Kind:            domain.KindText,
				Placeholder:     "Your answer",
				FieldName:       domain.FieldBrandName,
				Validation:      domain.RuleText,
				StepTitle:       "Company Details",
				StepDescription: "Tell us about your startup",
			},
			{
				Prompt:      "Registered Legal Name",
				Kind:        domain.KindText,
				Placeholder: "Your answer",
				FieldName:   domain.FieldLegalName,
				Validation:  domain.RuleText,
			},
			{
				Prompt:      "Founded In",
				Kind:        domain.KindText,
				Placeholder: "Your answer",
				FieldName:   domain.FieldFoundedIn,
				Validation:  domain.RuleYear,
			},
			{
				Prompt:      "Short brief about the startup",
				Kind:        domain.KindText,
				Placeholder: "Brief description of your startup (max 200 characters)",
				FieldName:   domain.FieldBrief,
				Validation:  domain.RuleText,
				MaxLength:   200,
			},
			{
				Prompt:      "Startup domain",
				Kind:        domain.KindText,
				Placeholder: "Your answer",
				FieldName:   domain.FieldDomain,
				Validation:  domain.RuleText,
			},
			{
				Prompt:          "Geographical Address",
				Kind:            domain.KindText,
				Placeholder:     "Enter your complete address",
				FieldName:       domain.FieldAddress,
				Validation:      domain.RuleText,
				IsTextarea:      true,
				StepTitle:       "Company Details",
				StepDescription: "Tell us about your startup",
			},
			{
				Prompt: "Which Stage is Your Startup at?",
				Kind:   domain.KindMCQ,
				Options: []string{
					"IDEA",
					"GROWTH",
					"MVP",
					"SCALING",
					"EARLY_TRACTION",
					"PRE_PRODUCT",
					"PRE_REVENUE",
					"PMF",
				},
				FieldName:       domain.FieldStage,
				Validation:      domain.RuleText,
				StepTitle:       "Startup Stage",
				StepDescription: "Help us understand where your startup is in its journey",
			},
			{
				Prompt:          "Website Link",
				Kind:            domain.KindText,
				Placeholder:     "Your answer",
				FieldName:       domain.FieldWebsite,
				Validation:      domain.RuleURL,
				StepTitle:       "Online Presence",
				StepDescription: "Share your digital footprint with us",
			},
			{
				Prompt:          "Your LinkedIn",
				Kind:            domain.KindText,
				Placeholder:     "Your answer",
				FieldName:       domain.FieldLinkedIn,
				Validation:      domain.RuleURL,
				StepTitle:       "Final Details",
				StepDescription: "Almost done! Just a few more details",
			},
		},
	}
}
