package extract

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ContactKeywords mark anchors that likely lead to a contact page.
var ContactKeywords = []string{"kontakt", "contact", "o-nas", "o firmie", "biuro"}

// ContactPaths are guessed when the page does not link to enough candidates.
var ContactPaths = []string{"/kontakt", "/contact", "/pl/kontakt"}

// ContactLinks returns up to limit absolute http(s) URLs worth scanning for
// contact details: anchors on doc whose text or href mentions a contact
// keyword, followed by the guessed ContactPaths on the page's host. The page
// itself is never returned.
func ContactLinks(doc *goquery.Document, pageURL string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return nil
	}
	self := stripFragment(base)

	var candidates []string
	if doc != nil {
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if !mentionsContact(href) && !mentionsContact(a.Text()) {
				return
			}
			ref, err := url.Parse(strings.TrimSpace(href))
			if err != nil {
				return
			}
			abs := base.ResolveReference(ref)
			if abs.Scheme != "http" && abs.Scheme != "https" {
				return
			}
			candidates = append(candidates, stripFragment(abs))
		})
	}

	root := base.Scheme + "://" + base.Host
	for _, p := range ContactPaths {
		candidates = append(candidates, root+p)
	}

	seen := make(map[string]struct{}, len(candidates)+1)
	seen[self] = struct{}{}
	out := make([]string, 0, limit)
	for _, c := range candidates {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}

func mentionsContact(s string) bool {
	folded := Fold(s)
	for _, k := range ContactKeywords {
		if strings.Contains(folded, k) {
			return true
		}
	}
	return false
}

// Fold lower-cases s, strips diacritics and collapses whitespace, so
// "O  Firmię" and "o firmie" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}

func stripFragment(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return c.String()
}
