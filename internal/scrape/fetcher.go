package scrape

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Headers a desktop Chrome on Windows sends; plenty of small-business hosts
// refuse anything that looks like a bot.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "pl-PL,pl;q=0.9,en-US;q=0.8,en;q=0.7",
	"Upgrade-Insecure-Requests": "1",
}

// FetcherConfig tunes a Fetcher.
type FetcherConfig struct {
	Timeout            time.Duration
	MaxTextChars       int
	MaxBodyBytes       int64
	InsecureSkipVerify bool
}

// Fetcher retrieves pages over plain HTTP, handing anti-bot and JS-shell
// pages to an optional renderer.
type Fetcher struct {
	client   *http.Client
	renderer Scraper
	maxText  int
	maxBody  int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithRenderer sets the scraper used for pages that need a real browser.
func WithRenderer(s Scraper) FetcherOption {
	return func(f *Fetcher) {
		f.renderer = s
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = hc
	}
}

// NewFetcher creates a Fetcher. Zero config fields fall back to 25s, 25000
// characters and 2 MiB.
func NewFetcher(cfg FetcherConfig, opts ...FetcherOption) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 25 * time.Second
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = 25000
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 2 << 20
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				ForceAttemptHTTP2:   true,
				MaxIdleConnsPerHost: 4,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // many small-business sites ship broken chains
				},
			},
		},
		maxText: cfg.MaxTextChars,
		maxBody: cfg.MaxBodyBytes,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Name implements Scraper.
func (f *Fetcher) Name() string { return "http" }

// Scrape implements Scraper with a single attempt and no protocol fallback.
func (f *Fetcher) Scrape(ctx context.Context, url string) (*Page, error) {
	return f.FetchOnce(ctx, url)
}

// Fetch retrieves url, adding http:// when the scheme is missing. A failed
// https:// fetch is retried once over http://.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	target := NormalizeURL(url)

	page, err := f.FetchOnce(ctx, target)
	if err == nil {
		return page, nil
	}
	if !strings.HasPrefix(target, "https://") || ctx.Err() != nil {
		return nil, err
	}

	fallback := "http://" + strings.TrimPrefix(target, "https://")
	zap.L().Debug("scrape: https failed, retrying over http",
		zap.String("url", target),
		zap.Error(err),
	)
	return f.FetchOnce(ctx, fallback)
}

// FetchOnce retrieves url exactly as given. Only 200 and 201 count as
// success.
func (f *Fetcher) FetchOnce(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: create request")
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: fetch %s", url)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: read body %s", url)
	}

	if block := DetectBlock(resp, body); block != BlockNone && f.renderer != nil {
		zap.L().Debug("scrape: page blocked, rendering",
			zap.String("url", url),
			zap.String("block", string(block)),
		)
		page, rerr := f.renderer.Scrape(ctx, url)
		if rerr == nil {
			return page, nil
		}
		zap.L().Debug("scrape: render failed", zap.String("url", url), zap.Error(rerr))
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, eris.Errorf("scrape: %s: status %d", url, resp.StatusCode)
	}

	page, err := ParsePage(url, bytes.NewReader(body), resp.Header.Get("Content-Type"), f.maxText)
	if err != nil {
		return nil, err
	}
	page.Source = f.Name()
	return page, nil
}
