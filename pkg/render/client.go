// Package render talks to the remote headless-browser service that renders
// JavaScript-heavy pages. The service is driven by a session RPC:
// open a page, read its HTML, close the session.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// RPC action names understood by the render service.
const (
	ActionGoTo   = "goToURL"
	ActionScrape = "scrapeContent"
	ActionClose  = "closeSession"
)

const closeTimeout = 15 * time.Second

// Client renders pages through the render service.
type Client interface {
	// Render opens url in a fresh browser session and returns the rendered
	// HTML. The session is closed in the background whatever the outcome.
	Render(ctx context.Context, url string) (string, error)
	// Wait blocks until all background session closes have finished.
	Wait()
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithSessionIDs overrides session ID generation.
func WithSessionIDs(fn func() string) Option {
	return func(c *httpClient) {
		c.newSession = fn
	}
}

type httpClient struct {
	endpoint   string
	secret     string
	http       *http.Client
	newSession func() string

	closers sync.WaitGroup
}

// NewClient creates a render service client. baseURL is the service root;
// requests go to {baseURL}/execute.
func NewClient(baseURL, secret string, timeout time.Duration, opts ...Option) Client {
	endpoint := strings.TrimSuffix(baseURL, "/")
	if !strings.HasSuffix(endpoint, "/execute") {
		endpoint += "/execute"
	}
	if timeout <= 0 {
		timeout = 70 * time.Second
	}
	c := &httpClient{
		endpoint:   endpoint,
		secret:     secret,
		http:       &http.Client{Timeout: timeout},
		newSession: func() string { return "manual-" + uuid.NewString() },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type request struct {
	Action    string         `json:"action"`
	SessionID string         `json:"sessionId"`
	Params    map[string]any `json:"params"`
}

type response struct {
	Success *bool  `json:"success,omitempty"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

func (c *httpClient) Render(ctx context.Context, url string) (string, error) {
	session := c.newSession()
	defer c.closeAsync(ctx, session)

	if _, err := c.call(ctx, ActionGoTo, session, map[string]any{"url": url}); err != nil {
		return "", eris.Wrapf(err, "render: open %s", url)
	}

	resp, err := c.call(ctx, ActionScrape, session, map[string]any{})
	if err != nil {
		return "", eris.Wrapf(err, "render: fetch %s", url)
	}
	if resp.Content == "" {
		return "", eris.Errorf("render: empty content for %s", url)
	}
	return resp.Content, nil
}

func (c *httpClient) Wait() {
	c.closers.Wait()
}

// closeAsync releases the browser session without holding up the caller.
// The close survives caller cancellation; failures are only logged.
func (c *httpClient) closeAsync(ctx context.Context, session string) {
	c.closers.Add(1)
	go func() {
		defer c.closers.Done()

		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()

		if _, err := c.call(closeCtx, ActionClose, session, map[string]any{}); err != nil {
			zap.L().Warn("render: close session failed",
				zap.String("session", session),
				zap.Error(err),
			)
		}
	}()
}

func (c *httpClient) call(ctx context.Context, action, session string, params map[string]any) (*response, error) {
	body, err := json.Marshal(request{Action: action, SessionID: session, Params: params})
	if err != nil {
		return nil, eris.Wrap(err, "render: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "render: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Secret", c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "render: %s", action)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "render: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("render: %s: unexpected status %d: %s", action, resp.StatusCode, string(respBody))
	}

	var out response
	if len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, &out); err != nil {
			return nil, eris.Wrapf(err, "render: %s: unmarshal response", action)
		}
	}
	if out.Success != nil && !*out.Success {
		return nil, eris.Errorf("render: %s failed: %s", action, out.Error)
	}
	return &out, nil
}
