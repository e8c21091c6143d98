package scrape

import (
	"net/http"
	"strings"
)

// BlockType describes why a page looks like it is not the real content.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

var (
	cloudflareMarkers = []string{"checking your browser", "cf-browser-verification", "cf-challenge"}
	captchaMarkers    = []string{"g-recaptcha", "h-captcha", "hcaptcha.com", "captcha-container"}
	shellMarkers      = []string{
		`<div id="root"></div>`,
		`<div id="app"></div>`,
		`<div id="__next"></div>`,
		"enable javascript",
		"włącz javascript",
	}
)

const (
	// shellSize is the body size under which a page with a script-only mount
	// point is treated as an unrendered JS shell.
	shellSize = 4 << 10
	// Captcha widgets also sit on ordinary contact forms; only a small page
	// that is mostly the widget counts as an interstitial.
	interstitialSize = 16 << 10
)

// DetectBlock inspects a response for anti-bot interstitials and
// client-rendered shells that carry no content without JavaScript.
func DetectBlock(resp *http.Response, body []byte) BlockType {
	if resp == nil {
		return BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || strings.EqualFold(resp.Header.Get("server"), "cloudflare") {
			return BlockCloudflare
		}
	}

	lower := strings.ToLower(string(body))

	if containsAny(lower, cloudflareMarkers) {
		return BlockCloudflare
	}
	if len(body) < interstitialSize && containsAny(lower, captchaMarkers) {
		return BlockCaptcha
	}

	if len(body) < shellSize && containsAny(lower, shellMarkers) {
		return BlockJSShell
	}
	if len(body) < shellSize && strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
		return BlockJSShell
	}

	return BlockNone
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
