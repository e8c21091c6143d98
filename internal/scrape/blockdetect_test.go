package scrape

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBlock(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header http.Header
		body   string
		want   BlockType
	}{
		{"nil-safe normal page", 200, nil, "<html><body><p>Firma budowlana</p></body></html>", BlockNone},
		{"cloudflare header", 403, http.Header{"Cf-Ray": {"abc"}}, "denied", BlockCloudflare},
		{"cloudflare server", 503, http.Header{"Server": {"cloudflare"}}, "", BlockCloudflare},
		{"cloudflare body", 200, nil, "<title>Just a moment...</title> Checking your browser", BlockCloudflare},
		{"captcha interstitial", 200, nil, `<div class="g-recaptcha"></div>`, BlockCaptcha},
		{"captcha on large page", 200, nil, `<div class="g-recaptcha"></div>` + strings.Repeat("<p>oferta</p>", 2000), BlockNone},
		{"react shell", 200, nil, `<html><body><div id="root"></div><script src="/app.js"></script></body></html>`, BlockJSShell},
		{"noscript shell", 200, nil, `<noscript>You need to enable JavaScript to run this app.</noscript>`, BlockJSShell},
		{"403 without cloudflare", 403, nil, "forbidden", BlockNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Header: tt.header}
			if resp.Header == nil {
				resp.Header = http.Header{}
			}
			assert.Equal(t, tt.want, DetectBlock(resp, []byte(tt.body)))
		})
	}
}

func TestDetectBlock_NilResponse(t *testing.T) {
	assert.Equal(t, BlockNone, DetectBlock(nil, []byte("captcha")))
}
