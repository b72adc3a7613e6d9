package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/h2non/gock"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brundonsmith/website/internal/api"
	"github.com/brundonsmith/website/internal/cache"
	"github.com/brundonsmith/website/internal/render"
	"github.com/brundonsmith/website/internal/static"
)

func TestMain(m *testing.M) {
	log.SetLevel(log.PanicLevel)
	os.Exit(m.Run())
}

type fakeComments map[string]*cache.Thread

func (f fakeComments) Get(_ context.Context, slug string) (*cache.Thread, error) {
	if slug == "broken" {
		return nil, errors.New("upstream down")
	}
	return f[slug], nil
}

func testSite(t *testing.T) *static.Site {
	t.Helper()
	s, err := static.LoadFS(fstest.MapFS{
		"index.html":      {Data: []byte("<h1>home</h1>")},
		"404.html":        {Data: []byte("<h1>not here</h1>")},
		"blog/hello.html": {Data: []byte("<h1>hello</h1>")},
		"feed.xml":        {Data: []byte("<rss/>")},
	})
	require.NoError(t, err)
	return s
}

func serve(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func TestServer_hnComments(t *testing.T) {
	s := New(fakeComments{"hello": {StoryID: 4242, HTML: "<div>hi</div>"}}, nil)

	rr := serve(t, s, http.MethodGet, "/hn-comments/hello")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"postId": "4242", "html": "<div>hi</div>"}, body)
}

func TestServer_hnComments_NotFound(t *testing.T) {
	s := New(fakeComments{}, nil)
	rr := serve(t, s, http.MethodGet, "/hn-comments/unknown")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServer_hnComments_Failure(t *testing.T) {
	s := New(fakeComments{}, nil)
	rr := serve(t, s, http.MethodGet, "/hn-comments/broken")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestServer_healthz(t *testing.T) {
	rr := serve(t, New(fakeComments{}, nil), http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestServer_metrics(t *testing.T) {
	s := New(fakeComments{}, nil)
	serve(t, s, http.MethodGet, "/healthz")

	rr := serve(t, s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "website_http_requests_total")
}

func TestServer_staticFile(t *testing.T) {
	s := New(fakeComments{}, testSite(t))

	tests := []struct {
		target      string
		status      int
		body        string
		contentType string
	}{
		{"/", http.StatusOK, "<h1>home</h1>", "text/html; charset=utf-8"},
		{"/blog/hello", http.StatusOK, "<h1>hello</h1>", "text/html; charset=utf-8"},
		{"/feed.xml", http.StatusOK, "<rss/>", "application/rss+xml; charset=utf-8"},
		{"/blog/missing", http.StatusNotFound, "<h1>not here</h1>", "text/html; charset=utf-8"},
		{"/hn-comments/", http.StatusNotFound, "<h1>not here</h1>", "text/html; charset=utf-8"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rr := serve(t, s, http.MethodGet, tt.target)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.body, rr.Body.String())
			assert.Equal(t, tt.contentType, rr.Header().Get("Content-Type"))
		})
	}
}

func TestServer_staticFile_Head(t *testing.T) {
	rr := serve(t, New(fakeComments{}, testSite(t)), http.MethodHead, "/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestServer_staticFile_NoSite(t *testing.T) {
	rr := serve(t, New(fakeComments{}, nil), http.MethodGet, "/")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServer_RequestID(t *testing.T) {
	s := New(fakeComments{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "test-req-id-123")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	assert.Equal(t, "test-req-id-123", rr.Header().Get("X-Request-Id"))

	rr = serve(t, s, http.MethodGet, "/healthz")
	assert.Len(t, rr.Header().Get("X-Request-Id"), 36)
}

// End to end through the cache, loader, client and renderer with the
// upstream APIs mocked.
func TestServer_hnComments_Pipeline(t *testing.T) {
	defer gock.Off()
	gock.CleanUnmatchedRequest()

	gock.New("https://hn.algolia.com").
		Get("/api/v1/search").
		MatchParam("query", `brandons\.me/blog/hello`).
		Reply(http.StatusOK).
		JSON(map[string]any{"hits": []map[string]any{{"objectID": "500"}}})
	gock.New("https://hacker-news.firebaseio.com").
		Get("/v0/item/500.json").
		Reply(http.StatusOK).
		JSON(map[string]any{"id": 500, "kids": []int{501}})
	gock.New("https://hacker-news.firebaseio.com").
		Get("/v0/item/501.json").
		Reply(http.StatusOK).
		JSON(map[string]any{"id": 501, "by": "brundolf", "text": "<p>thanks for reading", "time": 1_700_000_000})

	now := time.Unix(1_700_000_000, 0).Add(3 * time.Hour)
	loader := &cache.StoryLoader{
		Client:   api.NewClient(),
		Renderer: &render.CommentRenderer{Owner: "brundolf", Avatar: "/img/me.jpeg", Now: func() time.Time { return now }},
	}
	s := New(cache.New(loader), nil)

	rr := serve(t, s, http.MethodGet, "/hn-comments/hello")
	require.Equal(t, http.StatusOK, rr.Code)
	firstBody := rr.Body.String()

	var thread cache.Thread
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &thread))
	assert.Equal(t, 500, thread.StoryID)
	assert.True(t, strings.HasPrefix(thread.HTML, `<div class="comment-heading me"><img class="me" src="/img/me.jpeg" />`))
	assert.Contains(t, thread.HTML, "3 hours ago")
	assert.Contains(t, thread.HTML, `<div class="text me"><br><br>thanks for reading</div>`)
	assert.True(t, gock.IsDone())

	// Served from the cache, byte for byte, without further upstream calls.
	rr = serve(t, s, http.MethodGet, "/hn-comments/hello")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, firstBody, rr.Body.String())
	assert.False(t, gock.HasUnmatchedRequest())
}

// A post nobody submitted to HN is looked up once per domain, then the
// not-found result is served from the cache.
func TestServer_hnComments_PipelineNotFound(t *testing.T) {
	defer gock.Off()
	gock.CleanUnmatchedRequest()

	gock.New("https://hn.algolia.com").
		Get("/api/v1/search").
		MatchParam("query", `brandons\.me/blog/my-post`).
		Times(1).
		Reply(http.StatusOK).
		JSON(map[string]any{"hits": []any{}})
	gock.New("https://hn.algolia.com").
		Get("/api/v1/search").
		MatchParam("query", `brandonsmith\.ninja/blog/my-post`).
		Times(1).
		Reply(http.StatusOK).
		JSON(map[string]any{"hits": []any{}})

	loader := &cache.StoryLoader{Client: api.NewClient(), Renderer: &render.CommentRenderer{}}
	s := New(cache.New(loader), nil)

	rr := serve(t, s, http.MethodGet, "/hn-comments/my-post")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.True(t, gock.IsDone())

	rr = serve(t, s, http.MethodGet, "/hn-comments/my-post")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.False(t, gock.HasUnmatchedRequest())
}
