// Package blocklist decides which domains are never worth enriching:
// social networks, classifieds and job portals, public registries and
// directory aggregators.
package blocklist

import (
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Defaults is the built-in exclusion list.
var Defaults = []string{
	"linkedin.com", "facebook.com", "instagram.com", "twitter.com", "youtube.com",
	"olx.pl", "allegro.pl", "sprzedajemy.pl", "oferteo.pl", "fixly.pl",
	"panoramafirm.pl", "pkt.pl", "aleo.com", "biznes.gov.pl", "ceidg.gov.pl",
	"owg.pl", "krs-online.com.pl", "rejestr.io", "cylex-polska.pl",
	"baza-firm.com.pl", "firmy.net", "zumi.pl", "gowork.pl", "muratordom.pl",
	"google.com", "google.pl",
}

// List is an immutable set of blocked domains. A host is blocked when it
// equals an entry or is a subdomain of one.
type List struct {
	domains []string
}

// New builds a List from the defaults plus extra entries.
func New(extra ...string) *List {
	l := &List{}
	for _, d := range append(slices.Clone(Defaults), extra...) {
		d = normalize(d)
		if d != "" && !slices.Contains(l.domains, d) {
			l.domains = append(l.domains, d)
		}
	}
	return l
}

// fileFormat is the on-disk YAML shape:
//
//	blocklist:
//	  - example.com
type fileFormat struct {
	Blocklist []string `yaml:"blocklist"`
}

// Load builds a List from the defaults, the entries in the YAML file at path
// (skipped when path is empty) and extra.
func Load(path string, extra ...string) (*List, error) {
	if path == "" {
		return New(extra...), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "blocklist: read %s", path)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "blocklist: parse %s", path)
	}

	return New(append(f.Blocklist, extra...)...), nil
}

// Domains returns a copy of the blocked domains.
func (l *List) Domains() []string {
	return slices.Clone(l.domains)
}

// IsBlocked reports whether rawURL points at a blocked domain. Scheme-less
// input such as "olx.pl/oferta/123" is accepted.
func (l *List) IsBlocked(rawURL string) bool {
	host := Domain(rawURL)
	if host == "" {
		return false
	}
	for _, d := range l.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Domain returns the lower-cased host of rawURL without a leading "www.",
// or "" when no host can be parsed.
func Domain(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func normalize(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if strings.Contains(d, "/") {
		d = Domain(d)
	}
	return strings.TrimPrefix(d, "www.")
}
