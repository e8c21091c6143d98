package render

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	mu      sync.Mutex
	calls   []request
	secrets []string
	handle  func(req request) (int, string)
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.secrets = append(f.secrets, r.Header.Get("X-Internal-Secret"))
	f.mu.Unlock()

	status, body := http.StatusOK, `{"success":true}`
	if f.handle != nil {
		status, body = f.handle(req)
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (f *fakeService) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Action
	}
	return out
}

func TestRender_Success(t *testing.T) {
	svc := &fakeService{handle: func(req request) (int, string) {
		if req.Action == ActionScrape {
			return http.StatusOK, `{"success":true,"content":"<html><body>kontakt@firma.pl</body></html>"}`
		}
		return http.StatusOK, `{"success":true}`
	}}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	c := NewClient(srv.URL, "s3cret", time.Second, WithSessionIDs(func() string { return "manual-test" }))
	html, err := c.Render(context.Background(), "https://firma.pl")
	require.NoError(t, err)
	c.Wait()

	assert.Contains(t, html, "kontakt@firma.pl")
	assert.Equal(t, []string{ActionGoTo, ActionScrape, ActionClose}, svc.actions())
	assert.Equal(t, "https://firma.pl", svc.calls[0].Params["url"])
	for i, call := range svc.calls {
		assert.Equal(t, "manual-test", call.SessionID)
		assert.Equal(t, "s3cret", svc.secrets[i])
	}
}

func TestRender_NavigationFailureStillCloses(t *testing.T) {
	svc := &fakeService{handle: func(req request) (int, string) {
		if req.Action == ActionGoTo {
			return http.StatusBadGateway, `navigation timeout`
		}
		return http.StatusOK, `{}`
	}}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	c := NewClient(srv.URL+"/execute", "s", time.Second)
	_, err := c.Render(context.Background(), "https://firma.pl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render: open")
	c.Wait()

	assert.Equal(t, []string{ActionGoTo, ActionClose}, svc.actions())
}

func TestRender_EmptyContent(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	c := NewClient(srv.URL, "s", time.Second)
	_, err := c.Render(context.Background(), "https://firma.pl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty content")
	c.Wait()
}

func TestRender_ServiceReportsFailure(t *testing.T) {
	svc := &fakeService{handle: func(req request) (int, string) {
		return http.StatusOK, `{"success":false,"error":"browser crashed"}`
	}}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	c := NewClient(srv.URL, "s", time.Second)
	_, err := c.Render(context.Background(), "https://firma.pl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser crashed")
	c.Wait()
}

func TestRender_CloseSurvivesCancellation(t *testing.T) {
	svc := &fakeService{handle: func(req request) (int, string) {
		return http.StatusOK, `{"content":"<p>x</p>"}`
	}}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient(srv.URL, "s", time.Second)
	_, err := c.Render(ctx, "https://firma.pl")
	require.NoError(t, err)
	cancel()
	c.Wait()

	assert.Equal(t, ActionClose, svc.actions()[2])
}

func TestNewClient_DefaultSessionID(t *testing.T) {
	c := NewClient("http://render.local/", "s", 0).(*httpClient)
	assert.Equal(t, "http://render.local/execute", c.endpoint)
	assert.True(t, strings.HasPrefix(c.newSession(), "manual-"))
	assert.Equal(t, 70*time.Second, c.http.Timeout)
}
