package model

import (
	"encoding/json"
	"strings"
)

// Status classifies how, if at all, contact data was obtained for a URL.
type Status string

const (
	StatusSkippedPortal  Status = "SKIPPED_PORTAL"
	StatusFailed         Status = "FAILED"
	StatusFoundAI        Status = "FOUND_AI"
	StatusAIExtracted    Status = "AI_EXTRACTED"
	StatusFoundOnSubpage Status = "FOUND_ON_SUBPAGE"
	StatusRegexOnly      Status = "REGEX_ONLY"
)

// AllStatuses returns the full status taxonomy.
func AllStatuses() []Status {
	return []Status{
		StatusSkippedPortal,
		StatusFailed,
		StatusFoundAI,
		StatusAIExtracted,
		StatusFoundOnSubpage,
		StatusRegexOnly,
	}
}

// ContactPerson is a named contact reported by the AI stage.
type ContactPerson struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// EnrichmentResult is the contact record built for one URL.
//
// Stages only fill nil fields or overwrite Status; a value found earlier is
// never replaced. Use the Fill* methods rather than assigning directly.
type EnrichmentResult struct {
	URL          string          `json:"url"`
	Email        *string         `json:"email"`
	Phone        *string         `json:"phone"`
	Address      *string         `json:"address"`
	Description  *string         `json:"description"`
	Projects     []string        `json:"projects"`
	ContactsList []ContactPerson `json:"contacts_list"`
	Status       Status          `json:"status"`
}

// NewEnrichmentResult returns an empty FAILED record for url.
func NewEnrichmentResult(url string) *EnrichmentResult {
	return &EnrichmentResult{
		URL:          url,
		Projects:     []string{},
		ContactsList: []ContactPerson{},
		Status:       StatusFailed,
	}
}

// SkippedResult returns the record for a blacklisted URL.
func SkippedResult(url string) *EnrichmentResult {
	r := NewEnrichmentResult(url)
	r.Status = StatusSkippedPortal
	return r
}

// FillEmail sets Email if it is unset and v is non-blank. Reports whether it set.
func (r *EnrichmentResult) FillEmail(v string) bool { return fill(&r.Email, v) }

// FillPhone sets Phone if it is unset and v is non-blank.
func (r *EnrichmentResult) FillPhone(v string) bool { return fill(&r.Phone, v) }

// FillAddress sets Address if it is unset and v is non-blank.
func (r *EnrichmentResult) FillAddress(v string) bool { return fill(&r.Address, v) }

// FillDescription sets Description if it is unset and v is non-blank.
func (r *EnrichmentResult) FillDescription(v string) bool { return fill(&r.Description, v) }

// FillProjects sets Projects if none are recorded yet.
func (r *EnrichmentResult) FillProjects(v []string) bool {
	if len(r.Projects) > 0 || len(v) == 0 {
		return false
	}
	r.Projects = append([]string{}, v...)
	return true
}

// FillContacts sets ContactsList if none are recorded yet.
func (r *EnrichmentResult) FillContacts(v []ContactPerson) bool {
	if len(r.ContactsList) > 0 || len(v) == 0 {
		return false
	}
	r.ContactsList = append([]ContactPerson{}, v...)
	return true
}

// HasEmail reports whether any stage has found an email.
func (r *EnrichmentResult) HasEmail() bool { return r.Email != nil }

// EmailValue returns the email or "".
func (r *EnrichmentResult) EmailValue() string { return deref(r.Email) }

// PhoneValue returns the phone or "".
func (r *EnrichmentResult) PhoneValue() string { return deref(r.Phone) }

// AddressValue returns the address or "".
func (r *EnrichmentResult) AddressValue() string { return deref(r.Address) }

// DescriptionValue returns the description or "".
func (r *EnrichmentResult) DescriptionValue() string { return deref(r.Description) }

// MarshalJSON keeps Projects and ContactsList as [] rather than null.
func (r EnrichmentResult) MarshalJSON() ([]byte, error) {
	type alias EnrichmentResult
	a := alias(r)
	if a.Projects == nil {
		a.Projects = []string{}
	}
	if a.ContactsList == nil {
		a.ContactsList = []ContactPerson{}
	}
	return json.Marshal(a)
}

func fill(dst **string, v string) bool {
	if *dst != nil {
		return false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	*dst = &v
	return true
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
