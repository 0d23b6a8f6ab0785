package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/relock/pkg/cache"
	"github.com/matzehuels/relock/pkg/lockfile"
	"github.com/matzehuels/relock/pkg/relock"
	"github.com/matzehuels/relock/pkg/snapshot"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	store, err := snapshot.NewFileStore(t.TempDir())
	require.NoError(t, err)
	runner := relock.NewRunner(cache.NewNullCache(), nil, log.New(io.Discard))
	return New(Config{}, runner, store, log.New(io.Discard))
}

func previousSnapshot() *lockfile.Snapshot {
	return &lockfile.Snapshot{
		Name:     "app",
		Version:  "1.0.0",
		Requires: map[string]string{"a": "^1.0.0"},
		Dependencies: map[string]*lockfile.Entry{
			"a": {Version: "1.0.3", Requires: map[string]string{"c": "^2.0.0"}},
			"c": {Version: "2.0.1"},
		},
	}
}

func currentSnapshot() *lockfile.Snapshot {
	return &lockfile.Snapshot{
		Name:     "app",
		Version:  "1.0.0",
		Requires: map[string]string{"a": "^1.0.0", "b": "^1.0.0"},
		Dependencies: map[string]*lockfile.Entry{
			"a": {Version: "1.0.4", Requires: map[string]string{"c": "^2.0.0"}},
			"b": {Version: "1.0.0"},
			"c": {Version: "2.0.2"},
		},
	}
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRelockEndpoint(t *testing.T) {
	s := testServer(t)
	rec := postJSON(t, s, "/v1/relock", relockRequest{
		Previous: previousSnapshot(),
		Current:  currentSnapshot(),
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	var lf lockfile.Lockfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lf))
	assert.Equal(t, "app", lf.Name)
	assert.Equal(t, 1, lf.LockfileVersion)
	assert.Equal(t, "1.0.3", lf.Dependencies["a"].Version)
	assert.Equal(t, "1.0.0", lf.Dependencies["b"].Version)
	assert.Equal(t, "2.0.1", lf.Dependencies["c"].Version)
}

func TestRelockEndpointBadBody(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/relock", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_INPUT", body.Error.Code)
}

func TestRelockEndpointStructuralError(t *testing.T) {
	s := testServer(t)
	curr := currentSnapshot()
	delete(curr.Dependencies, "b") // requires b but no entry for it

	rec := postJSON(t, s, "/v1/relock", relockRequest{
		Previous: previousSnapshot(),
		Current:  curr,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "MISSING_MODULE", body.Error.Code)
}

func TestBootstrapEndpoint(t *testing.T) {
	s := testServer(t)
	rec := postJSON(t, s, "/v1/bootstrap", bootstrapRequest{Current: currentSnapshot()})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var lf lockfile.Lockfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lf))
	assert.Equal(t, "1.0.4", lf.Dependencies["a"].Version)
}

func TestSnapshotEndpoints(t *testing.T) {
	s := testServer(t)

	// Store a snapshot for a scoped project name
	data, err := lockfile.Marshal(previousSnapshot())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/v1/snapshots/@acme/app", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	// List
	req = httptest.NewRequest(http.MethodGet, "/v1/snapshots", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Projects []string `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []string{"@acme/app"}, list.Projects)

	// Get
	req = httptest.NewRequest(http.MethodGet, "/v1/snapshots/@acme/app", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap lockfile.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "app", snap.Name)

	// Delete, then Get is 404
	req = httptest.NewRequest(http.MethodDelete, "/v1/snapshots/@acme/app", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/snapshots/@acme/app", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "test-id-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "test-id-123", rec.Header().Get("X-Request-ID"))
}
