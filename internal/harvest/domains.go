package harvest

import (
	"sync"

	"github.com/sells-group/lead-cli/internal/blocklist"
	"github.com/sells-group/lead-cli/internal/model"
)

// DomainSet remembers which bare domains have already produced a lead.
// It is safe for concurrent use.
type DomainSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDomainSet returns an empty set.
func NewDomainSet() *DomainSet {
	return &DomainSet{seen: make(map[string]struct{})}
}

// AddIfAbsent records domain and reports whether it was new.
func (s *DomainSet) AddIfAbsent(domain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[domain]; ok {
		return false
	}
	s.seen[domain] = struct{}{}
	return true
}

// Len returns the number of recorded domains.
func (s *DomainSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Unique returns the leads whose domain has not been seen before, recording
// theirs. Leads without a usable URL cannot be compared and are always kept.
func (s *DomainSet) Unique(leads []model.Lead) []model.Lead {
	var out []model.Lead
	for _, l := range leads {
		d := blocklist.Domain(l.URL)
		if d == "" || s.AddIfAbsent(d) {
			out = append(out, l)
		}
	}
	return out
}
