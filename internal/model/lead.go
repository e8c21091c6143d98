package model

// LeadStatus represents where a lead sits in the review workflow.
type LeadStatus string

const (
	LeadStatusRaw      LeadStatus = "RAW"      // straight from search
	LeadStatusOK       LeadStatus = "OK"       // passed name filtering
	LeadStatusRejected LeadStatus = "REJECTED" // filtered out
	LeadStatusManual   LeadStatus = "MANUAL"   // needs human review
)

// DefaultConfidenceScore is assigned to freshly harvested leads.
const DefaultConfidenceScore = 50

// SourceGoogleAPI tags leads produced by the search harvester.
const SourceGoogleAPI = "Google API"

// unnamedLead is used when a search hit carries no title.
const unnamedLead = "Brak nazwy"

// SearchHit is a single item from one page of search results.
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	City    string `json:"city,omitempty"`
}

// Lead is a discovered business candidate prior to contact enrichment.
type Lead struct {
	Name            string            `json:"name"`
	URL             string            `json:"url,omitempty"`
	City            string            `json:"city"`
	Source          string            `json:"source"`
	Status          LeadStatus        `json:"status"`
	ConfidenceScore int               `json:"confidence_score"`
	Metadata        map[string]string `json:"metadata"`
}

// NewLeadFromHit builds a RAW lead from a search hit found for city.
func NewLeadFromHit(hit SearchHit, city string) Lead {
	name := hit.Title
	if name == "" {
		name = unnamedLead
	}
	if city == "" {
		city = hit.City
	}
	return Lead{
		Name:            name,
		URL:             hit.URL,
		City:            city,
		Source:          SourceGoogleAPI,
		Status:          LeadStatusRaw,
		ConfidenceScore: DefaultConfidenceScore,
		Metadata:        map[string]string{"desc": hit.Snippet},
	}
}

// HarvestRequest selects the (keyword x city) pairs to search.
type HarvestRequest struct {
	Cities   []string `json:"cities"`
	Keywords []string `json:"keywords"`
	PKDCodes []string `json:"pkd_codes,omitempty"`
}

// Strategy is the search plan derived from a free-text job description.
type Strategy struct {
	Reasoning    string   `json:"reasoning"`
	TargetCities []string `json:"target_cities"`
	Keywords     []string `json:"keywords"`
	PKDCodes     []string `json:"pkd_codes"`
}

// HarvestRequest returns the search request for this plan.
func (s Strategy) HarvestRequest() HarvestRequest {
	return HarvestRequest{
		Cities:   s.TargetCities,
		Keywords: s.Keywords,
		PKDCodes: s.PKDCodes,
	}
}
