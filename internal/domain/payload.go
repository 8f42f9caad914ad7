package domain

import "strings"

// Field names of the startup application form that feed the webhook payload.
const (
	FieldEmail     = "email"
	FieldBrandName = "brandName"
	FieldLegalName = "legalName"
	FieldFoundedIn = "foundedIn"
	FieldBrief     = "briefYourStartup"
	FieldDomain    = "domain"
	FieldAddress   = "address"
	FieldStage     = "startupStage"
	FieldWebsite   = "website"
	FieldLinkedIn  = "linkedin"
)

// StartupSource is the fixed provenance marker stamped on every payload.
const StartupSource = "APPLICATION_FORM"

// StartupDetails is the inner object of the webhook payload. Founders and
// Thesis are not collected by the current form and are always sent empty.
type StartupDetails struct {
	Name                string `json:"name"`
	LegalName           string `json:"legal_name"`
	Founders            string `json:"founders"`
	Overview            string `json:"overview"`
	GeographicalAddress string `json:"geographical_address"`
	Stage               string `json:"stage"`
	StartupSource       string `json:"startup_source"`
	Thesis              string `json:"thesis"`
	Links               string `json:"links"`
	Email               string `json:"email"`
	IndustryDomain      string `json:"startupIndustryDomain"`
	CEOLinkedInURL      string `json:"ceoLinkedinUrl"`
}

// ApplicationPayload is the fixed-shape object posted to the webhook. It is
// write-only output: it is never read back into form state.
type ApplicationPayload struct {
	Startup StartupDetails `json:"startup"`
}

// NewApplicationPayload maps form state onto the webhook payload. The mapping
// is deterministic: absent fields become empty strings and the stage value is
// upper-cased. The foundedIn answer is collected by the form but has no
// counterpart in the payload; the upstream webhook contract does not accept
// it, so it is deliberately left out here.
func NewApplicationPayload(values FormState) ApplicationPayload {
	return ApplicationPayload{
		Startup: StartupDetails{
			Name:                values.Value(FieldBrandName),
			LegalName:           values.Value(FieldLegalName),
			Founders:            "",
			Overview:            values.Value(FieldBrief),
			GeographicalAddress: values.Value(FieldAddress),
			Stage:               strings.ToUpper(values.Value(FieldStage)),
			StartupSource:       StartupSource,
			Thesis:              "",
			Links:               values.Value(FieldWebsite),
			Email:               values.Value(FieldEmail),
			IndustryDomain:      values.Value(FieldDomain),
			CEOLinkedInURL:      values.Value(FieldLinkedIn),
		},
	}
}
