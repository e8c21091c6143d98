// Package extract pulls contact data out of fetched pages: email addresses,
// visible text and links to likely contact subpages.
package extract

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// Asset file names like logo@2x.png match the address pattern.
var assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}

// FirstEmail returns the first plausible email in text.
func FirstEmail(text string) (string, bool) {
	for _, m := range emailRe.FindAllString(text, -1) {
		if ValidEmail(m) {
			return m, true
		}
	}
	return "", false
}

// ValidEmail rejects matches that are really image file names.
func ValidEmail(s string) bool {
	lower := strings.ToLower(s)
	for _, suf := range assetSuffixes {
		if strings.HasSuffix(lower, suf) {
			return false
		}
	}
	return strings.Contains(s, "@")
}
