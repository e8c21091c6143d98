package scrape

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func htmlResponse(r *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"text/html; charset=utf-8"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    r,
	}
}

type stubRenderer struct {
	page *Page
	err  error
	urls []string
}

func (s *stubRenderer) Name() string { return "stub" }

func (s *stubRenderer) Scrape(_ context.Context, url string) (*Page, error) {
	s.urls = append(s.urls, url)
	return s.page, s.err
}

func TestFetch_CleansPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Chrome/")
		assert.True(t, strings.HasPrefix(r.Header.Get("Accept-Language"), "pl-PL"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Budex</title><style>p{}</style></head>
<body><nav>Oferta Kontakt</nav><script>var x = "hidden@tracker.com";</script>
<svg><text>logo</text></svg><p>Budujemy domy</p>
<footer>biuro@budex.pl</footer></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherConfig{Timeout: time.Second})
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, srv.URL, page.URL)
	assert.Equal(t, "http", page.Source)
	assert.Equal(t, "Budex Oferta Kontakt Budujemy domy biuro@budex.pl", page.Text)
	assert.NotContains(t, page.Text, "hidden@tracker.com")
	assert.NotContains(t, page.Text, "logo")
	assert.Equal(t, 0, page.Doc.Find("script").Length())
}

func TestFetch_DecodesLegacyCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-2")
		// "Łódź" in ISO-8859-2.
		_, _ = w.Write([]byte("<html><body><p>Biuro \xa3\xf3d\xbc</p></body></html>"))
	}))
	defer srv.Close()

	page, err := NewFetcher(FetcherConfig{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Biuro Łódź", page.Text)
}

func TestFetch_StatusHandling(t *testing.T) {
	tests := []struct {
		status int
		ok     bool
	}{
		{http.StatusOK, true},
		{http.StatusCreated, true},
		{http.StatusNoContent, false},
		{http.StatusNotFound, false},
		{http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("<p>tresc</p>"))
			}))
			defer srv.Close()

			page, err := NewFetcher(FetcherConfig{}).FetchOnce(context.Background(), srv.URL)
			if tt.ok {
				require.NoError(t, err)
				assert.NotNil(t, page)
			} else {
				assert.Error(t, err)
				assert.Nil(t, page)
			}
		})
	}
}

func TestFetch_Truncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>" + strings.Repeat("ż", 50) + "</p>"))
	}))
	defer srv.Close()

	page, err := NewFetcher(FetcherConfig{MaxTextChars: 10}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ż", 10), page.Text)
}

func TestFetch_HTTPSFallsBackToHTTP(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		mu.Lock()
		seen = append(seen, r.URL.String())
		mu.Unlock()
		if r.URL.Scheme == "https" {
			return htmlResponse(r, http.StatusNotFound, "not found"), nil
		}
		return htmlResponse(r, http.StatusOK, "<p>Stara strona</p>"), nil
	})}

	page, err := NewFetcher(FetcherConfig{}, WithHTTPClient(client)).Fetch(context.Background(), "https://stara-firma.pl/")
	require.NoError(t, err)
	assert.Equal(t, "http://stara-firma.pl/", page.URL)
	assert.Equal(t, "Stara strona", page.Text)
	assert.Equal(t, []string{"https://stara-firma.pl/", "http://stara-firma.pl/"}, seen)
}

func TestFetch_NoFallbackForHTTP(t *testing.T) {
	calls := 0
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("connection refused")
	})}

	_, err := NewFetcher(FetcherConfig{}, WithHTTPClient(client)).Fetch(context.Background(), "firma.pl")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetch_AddsScheme(t *testing.T) {
	var got string
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		got = r.URL.String()
		return htmlResponse(r, http.StatusOK, "<p>ok</p>"), nil
	})}

	_, err := NewFetcher(FetcherConfig{}, WithHTTPClient(client)).Fetch(context.Background(), "  firma-budowlana.pl ")
	require.NoError(t, err)
	assert.Equal(t, "http://firma-budowlana.pl", got)
}

func TestFetch_BlockedPageUsesRenderer(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return htmlResponse(r, http.StatusOK, `<html><body><div id="root"></div></body></html>`), nil
	})}
	rendered := &Page{URL: "http://spa.pl", Text: "kontakt@spa.pl", Source: "render"}
	renderer := &stubRenderer{page: rendered}

	page, err := NewFetcher(FetcherConfig{}, WithHTTPClient(client), WithRenderer(renderer)).Fetch(context.Background(), "spa.pl")
	require.NoError(t, err)
	assert.Same(t, rendered, page)
	assert.Equal(t, []string{"http://spa.pl"}, renderer.urls)
}

func TestFetch_BlockedPageKeptWhenRenderFails(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return htmlResponse(r, http.StatusOK, `<html><body><div id="app"></div>biuro@spa.pl</body></html>`), nil
	})}
	renderer := &stubRenderer{err: errors.New("render down")}

	page, err := NewFetcher(FetcherConfig{}, WithHTTPClient(client), WithRenderer(renderer)).Fetch(context.Background(), "spa.pl")
	require.NoError(t, err)
	assert.Equal(t, "http", page.Source)
	assert.Equal(t, "biuro@spa.pl", page.Text)
}

func TestFetch_CloudflareWithoutRenderer(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		resp := htmlResponse(r, http.StatusForbidden, "denied")
		resp.Header.Set("Cf-Ray", "abc")
		return resp, nil
	})}

	_, err := NewFetcher(FetcherConfig{}, WithHTTPClient(client)).FetchOnce(context.Background(), "http://cf.pl")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "http://a.pl", NormalizeURL("a.pl"))
	assert.Equal(t, "https://a.pl", NormalizeURL(" https://a.pl "))
	assert.Equal(t, "http://a.pl/x", NormalizeURL("http://a.pl/x"))
}
