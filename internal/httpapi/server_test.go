package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harryzcy/artifact-store/internal/blobstore"
	"github.com/harryzcy/artifact-store/internal/ingest"
	"github.com/harryzcy/artifact-store/internal/logging"
	"github.com/harryzcy/artifact-store/internal/metadatastore"
	"github.com/harryzcy/artifact-store/internal/retrieve"
)

func setupServer(t *testing.T) http.Handler {
	t.Helper()
	backend := metadatastore.NewMemoryBackend()
	t.Cleanup(func() { _ = backend.Close() })
	store, err := metadatastore.New(backend)
	require.NoError(t, err)
	blobs := blobstore.New(t.TempDir())

	in := ingest.New(store, blobs).WithClock(func() time.Time { return time.Unix(1_700_000_000, 0).UTC() })
	re := retrieve.New(store, blobs)

	srv := New(store, in, re, logging.New())
	return srv.Handler()
}

func doRequest(h http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndexAndHealthEndpoints(t *testing.T) {
	h := setupServer(t)

	rec := doRequest(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Artifact Store")

	rec = doRequest(h, http.MethodGet, "/robots.txt", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Disallow")

	rec = doRequest(h, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestUploadThenDownloadRoundTrip(t *testing.T) {
	h := setupServer(t)

	rec := doRequest(h, http.MethodPut, "/github.com/acme/widgets/c1/bin/out.bin", "payload")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":200,"message":"OK"}`, rec.Body.String())

	rec = doRequest(h, http.MethodGet, "/github.com/acme/widgets/@latest/bin/out.bin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "payload", rec.Body.String())
	assert.Equal(t, `attachment; filename="bin/out.bin"`, rec.Header().Get("Content-Disposition"))
}

func TestDownloadMissingArtifactIs404(t *testing.T) {
	h := setupServer(t)
	rec := doRequest(h, http.MethodGet, "/github.com/acme/widgets/c1/missing.bin", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.String())
}

func TestListEndpoints(t *testing.T) {
	h := setupServer(t)
	require.Equal(t, http.StatusOK, doRequest(h, http.MethodPut, "/srv/o/r/c1/a.bin", "x").Code)

	rec := doRequest(h, http.MethodGet, "/repositories", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"repo":"r"`)
	assert.Contains(t, rec.Body.String(), `"repos":[`)

	rec = doRequest(h, http.MethodGet, "/srv/o/r", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"commit":"c1"`)
	assert.Contains(t, rec.Body.String(), `"commits":[`)

	rec = doRequest(h, http.MethodGet, "/srv/o/r/c1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"path":"a.bin"`)
	assert.Contains(t, rec.Body.String(), `"artifacts":[`)
}

func TestDuplicateUploadIs500(t *testing.T) {
	h := setupServer(t)
	require.Equal(t, http.StatusOK, doRequest(h, http.MethodPut, "/srv/o/r/c1/a.bin", "x").Code)
	rec := doRequest(h, http.MethodPut, "/srv/o/r/c1/a.bin", "y")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
