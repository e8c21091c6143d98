// Package export writes enrichment results and leads to CSV, XLSX and JSON
// files, and reads URL lists back in.
package export

import (
	"strconv"
	"strings"

	"github.com/sells-group/lead-cli/internal/model"
)

// Table is a header plus rows of cell text.
type Table struct {
	Header []string
	Rows   [][]string
}

var resultColumns = []string{
	"URL",
	"Status",
	"Email",
	"Phone",
	"Address",
	"Description",
	"Projects",
	"Contacts",
}

var leadColumns = []string{
	"Name",
	"URL",
	"City",
	"Source",
	"Status",
	"Confidence",
	"Description",
}

// ResultsTable flattens enrichment results, one row per URL.
func ResultsTable(results []*model.EnrichmentResult) Table {
	t := Table{Header: resultColumns}
	for _, r := range results {
		if r == nil {
			continue
		}
		t.Rows = append(t.Rows, []string{
			r.URL,
			string(r.Status),
			r.EmailValue(),
			r.PhoneValue(),
			r.AddressValue(),
			r.DescriptionValue(),
			strings.Join(r.Projects, "; "),
			formatContacts(r.ContactsList),
		})
	}
	return t
}

// LeadsTable flattens harvested leads, one row per lead.
func LeadsTable(leads []model.Lead) Table {
	t := Table{Header: leadColumns}
	for _, l := range leads {
		t.Rows = append(t.Rows, []string{
			l.Name,
			l.URL,
			l.City,
			l.Source,
			string(l.Status),
			strconv.Itoa(l.ConfidenceScore),
			l.Metadata["desc"],
		})
	}
	return t
}

// formatContacts renders contacts as "Name (Role) <email> phone; ...".
func formatContacts(cs []model.ContactPerson) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		var b strings.Builder
		b.WriteString(c.Name)
		if c.Role != "" {
			b.WriteString(" (" + c.Role + ")")
		}
		if c.Email != "" {
			b.WriteString(" <" + c.Email + ">")
		}
		if c.Phone != "" {
			b.WriteString(" " + c.Phone)
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "; ")
}
