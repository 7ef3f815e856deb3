package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RBozydar/arxiv2md/internal/cache"
	"github.com/RBozydar/arxiv2md/internal/config"
	"github.com/RBozydar/arxiv2md/internal/fetch"
	"github.com/RBozydar/arxiv2md/internal/ingest"
)

const paperHTML = `<!DOCTYPE html>
<html><body>
<article class="ltx_document">
  <h1 class="ltx_title ltx_title_document">A Study of Things</h1>
  <div class="ltx_abstract"><p>We study things.</p></div>
  <section class="ltx_section" id="S1">
    <h2 class="ltx_title ltx_title_section">1 Introduction</h2>
    <p>Body text.</p>
  </section>
</article>
</body></html>`

// roundTripFunc lets tests serve canned responses without a network.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func stubTransport() http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if strings.Contains(r.URL.Path, "/html/") {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(paperHTML)),
				Header:     make(http.Header),
			}, nil
		}
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("not found")),
			Header:     make(http.Header),
		}, nil
	})
}

func testServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	cfg := config.Config{
		CachePath:      t.TempDir(),
		CacheTTL:       time.Hour,
		MaxDisplaySize: 300000,
		APIKey:         apiKey,
	}
	client := fetch.NewClient(
		fetch.WithHTTPClient(&http.Client{Transport: stubTransport()}),
		fetch.WithRateLimit(1000),
		fetch.WithRetries(0, time.Millisecond),
	)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(ingest.New(client, cfg), log, cfg)
}

func postIngest(t *testing.T, srv *Server, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := testServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIngestSuccess(t *testing.T) {
	srv := testServer(t, "")
	rec := postIngest(t, srv, map[string]any{"input_text": "2501.11120v1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "2501.11120v1", resp["arxiv_id"])
	assert.Equal(t, "v1", resp["version"])
	assert.Equal(t, "A Study of Things", resp["title"])
	assert.Equal(t, "https://arxiv.org/abs/2501.11120v1", resp["source_url"])
	assert.Equal(t, "html", resp["source"])
	assert.Equal(t, "/api/download/file/2501.11120__v1", resp["digest_url"])
	assert.Contains(t, resp["content"], "## 1 Introduction")
	assert.Contains(t, resp["summary"], "Estimated tokens:")
}

func TestIngestThenDownloadDigest(t *testing.T) {
	srv := testServer(t, "")
	rec := postIngest(t, srv, map[string]any{"input_text": "2501.11120v1"})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/download/file/2501.11120__v1", nil)
	dl := httptest.NewRecorder()
	srv.ServeHTTP(dl, req)

	require.Equal(t, http.StatusOK, dl.Code)
	assert.Contains(t, dl.Body.String(), "Sections:")
	assert.Contains(t, dl.Body.String(), "## 1 Introduction")
	assert.Contains(t, dl.Header().Get("Content-Disposition"), "2501.11120__v1.txt")
}

func TestIngestRejectsBadInput(t *testing.T) {
	srv := testServer(t, "")

	rec := postIngest(t, srv, map[string]any{"input_text": "not-a-paper"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")

	rec = postIngest(t, srv, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestCropsLargeContent(t *testing.T) {
	srv := testServer(t, "")
	srv.cfg.MaxDisplaySize = 10

	rec := postIngest(t, srv, map[string]any{"input_text": "2501.11120v1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["content"], "Content cropped")
}

func TestCropContentKeepsRunesWhole(t *testing.T) {
	// 'é' spans bytes 1-2; a byte cut at 2 would split it.
	content := "héllo wörld"
	cropped := cropContent(content, 2)

	assert.True(t, strings.HasSuffix(cropped, "\nh"), "cut backs off to the rune boundary")
	assert.True(t, utf8.ValidString(cropped))
	assert.Contains(t, cropped, "Content cropped")

	// A cut landing between runes is taken as-is.
	cropped = cropContent(content, 3)
	assert.True(t, strings.HasSuffix(cropped, "\nhé"))
	assert.True(t, utf8.ValidString(cropped))

	assert.Equal(t, content, cropContent(content, len(content)), "exact fit is not cropped")
}

func TestDownloadRejectsTraversal(t *testing.T) {
	srv := testServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/api/download/file/..%2fsecret", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadMissingDigest(t *testing.T) {
	srv := testServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/api/download/file/unknown__v1", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthRequiredWhenKeyConfigured(t *testing.T) {
	srv := testServer(t, "secret-key")

	rec := postIngest(t, srv, map[string]any{"input_text": "2501.11120v1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	payload, _ := json.Marshal(map[string]any{"input_text": "2501.11120v1"})
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer secret-key")
	ok := httptest.NewRecorder()
	srv.ServeHTTP(ok, req)
	assert.Equal(t, http.StatusOK, ok.Code)

	// Health stays public.
	health := httptest.NewRecorder()
	srv.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestDigestStoredUnderCachePath(t *testing.T) {
	srv := testServer(t, "")
	rec := postIngest(t, srv, map[string]any{"input_text": "2501.11120"})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.FileExists(t, cache.DigestPath(srv.cfg.CachePath, "2501.11120__latest"))
}
