package analyze

import (
	"strings"

	"github.com/sells-group/lead-cli/internal/model"
)

// Extraction is the typed result of one AI page analysis. Nil fields were
// absent or empty in the reply.
type Extraction struct {
	Email       *string
	Phone       *string
	Address     *string
	Description *string
	Projects    []string
	Contacts    []model.ContactPerson
}

// Decode turns a raw model reply into an Extraction. Every field is coerced
// with String; projects accept a list or a single string; contacts_list must
// be a list of objects.
func Decode(raw string) (*Extraction, error) {
	obj, err := DecodeObject(raw)
	if err != nil {
		return nil, err
	}

	ext := &Extraction{
		Email:       field(obj, "email"),
		Phone:       field(obj, "phone"),
		Address:     field(obj, "address"),
		Description: field(obj, "description"),
		Projects:    StringList(obj["projects"]),
	}

	if list, ok := obj["contacts_list"].([]any); ok {
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			c := model.ContactPerson{
				Name:  str(m, "name"),
				Role:  str(m, "role"),
				Email: str(m, "email"),
				Phone: str(m, "phone"),
			}
			if c != (model.ContactPerson{}) {
				ext.Contacts = append(ext.Contacts, c)
			}
		}
	}

	return ext, nil
}

// Empty reports whether the reply carried nothing usable.
func (e *Extraction) Empty() bool {
	return e == nil || (e.Email == nil && e.Phone == nil && e.Address == nil &&
		e.Description == nil && len(e.Projects) == 0 && len(e.Contacts) == 0)
}

// UsableEmail returns the top-level email when it looks like an address.
func (e *Extraction) UsableEmail() (string, bool) {
	if e == nil || e.Email == nil || !strings.Contains(*e.Email, "@") {
		return "", false
	}
	return *e.Email, true
}

// Apply merges e into r without overwriting anything already set. A usable
// top-level email marks r FOUND_AI; any other data marks it AI_EXTRACTED.
// When only a contact carries an email, the first such email fills r.Email.
func (e *Extraction) Apply(r *model.EnrichmentResult) {
	if e.Empty() {
		return
	}

	if e.Phone != nil {
		r.FillPhone(*e.Phone)
	}
	if e.Address != nil {
		r.FillAddress(*e.Address)
	}
	if e.Description != nil {
		r.FillDescription(*e.Description)
	}
	r.FillProjects(e.Projects)
	r.FillContacts(e.Contacts)

	if email, ok := e.UsableEmail(); ok {
		r.FillEmail(email)
		r.Status = model.StatusFoundAI
		return
	}

	for _, c := range e.Contacts {
		if strings.Contains(c.Email, "@") {
			r.FillEmail(c.Email)
			break
		}
	}
	r.Status = model.StatusAIExtracted
}

func field(obj map[string]any, key string) *string {
	if s, ok := String(obj[key]); ok {
		return &s
	}
	return nil
}

func str(obj map[string]any, key string) string {
	s, _ := String(obj[key])
	return s
}
