package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gilchrisn/pagerank-service/pkg/config"
	"github.com/gilchrisn/pagerank-service/pkg/models"
	"github.com/gilchrisn/pagerank-service/pkg/report"
	"github.com/gilchrisn/pagerank-service/pkg/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	jobService, err := service.NewJobService(config.JobConfig{
		MaxWorkers:    2,
		JobTimeout:    time.Minute,
		ResultTTL:     time.Hour,
		CacheSize:     8,
		MaxIterations: 100000,
		MaxNodes:      1000,
	})
	require.NoError(t, err)
	t.Cleanup(jobService.Close)

	server := httptest.NewServer(NewRouter(NewHandlers(jobService, 1024), []string{"*"}))
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, method, url, contentType string, body []byte) (*http.Response, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func submit(t *testing.T, server *httptest.Server, req models.RankRequest) models.Job {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, env := doRequest(t, http.MethodPost, server.URL+"/api/v1/rank", "application/json", body)
	require.Equal(t, http.StatusAccepted, resp.StatusCode, env.Error)
	require.True(t, env.Success)

	var job models.Job
	require.NoError(t, json.Unmarshal(env.Data, &job))
	return job
}

func waitCompleted(t *testing.T, server *httptest.Server, jobID string) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, env := doRequest(t, http.MethodGet, server.URL+"/api/v1/jobs/"+jobID, "", nil)
		var job models.Job
		return json.Unmarshal(env.Data, &job) == nil && job.Status == models.JobStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRankLifecycle(t *testing.T) {
	server := newTestServer(t)

	job := submit(t, server, models.RankRequest{Graph: "3 2\n0 2\n1 2\n", InitialValue: -1})
	assert.NotEmpty(t, job.ID)
	waitCompleted(t, server, job.ID)

	resp, env := doRequest(t, http.MethodGet, server.URL+"/api/v1/jobs/"+job.ID+"/result?top=1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary report.Summary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 3, summary.Nodes)
	assert.True(t, summary.Converged)
	require.Len(t, summary.Top, 1)
	assert.Equal(t, 2, summary.Top[0].Node)

	resp, env = doRequest(t, http.MethodGet, server.URL+"/api/v1/jobs", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var jobs []models.Job
	require.NoError(t, json.Unmarshal(env.Data, &jobs))
	assert.Len(t, jobs, 1)
}

func TestResultExportFormat(t *testing.T) {
	server := newTestServer(t)

	job := submit(t, server, models.RankRequest{Nodes: 2, Edges: [][2]int{{0, 1}}})
	waitCompleted(t, server, job.ID)

	resp, err := http.Get(server.URL + "/api/v1/jobs/" + job.ID + "/result?format=yaml")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))

	var summary report.Summary
	require.NoError(t, yaml.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, 2, summary.Nodes)
	assert.Len(t, summary.Ranks, 2)

	resp2, env := doRequest(t, http.MethodGet, server.URL+"/api/v1/jobs/"+job.ID+"/result?format=xml", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
	assert.False(t, env.Success)
}

func TestSubmitRankErrors(t *testing.T) {
	server := newTestServer(t)
	url := server.URL + "/api/v1/rank"

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
	}{
		{"WrongContentType", "text/plain", `{"nodes": 2}`, http.StatusUnsupportedMediaType},
		{"MalformedJSON", "application/json", `{"nodes":`, http.StatusBadRequest},
		{"EmptyGraph", "application/json", `{"graph": "0 0"}`, http.StatusBadRequest},
		{"NoGraph", "application/json", `{}`, http.StatusBadRequest},
		{"HugeNodeCount", "application/json", `{"nodes": 3000000000}`, http.StatusBadRequest},
		{"HugeHeader", "application/json", `{"graph": "9223372036854775807 0"}`, http.StatusBadRequest},
		{"TooLarge", "application/json", `{"graph": "` + string(bytes.Repeat([]byte("x"), 2048)) + `"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := doRequest(t, http.MethodPost, url, tt.contentType, []byte(tt.body))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.False(t, env.Success)
		})
	}
}

func TestUnknownJob(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doRequest(t, http.MethodGet, server.URL+"/api/v1/jobs/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, http.MethodGet, server.URL+"/api/v1/jobs/missing/result", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, http.MethodDelete, server.URL+"/api/v1/jobs/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCancelCompletedJobConflicts(t *testing.T) {
	server := newTestServer(t)

	job := submit(t, server, models.RankRequest{Graph: "2 1\n0 1\n"})
	waitCompleted(t, server, job.ID)

	resp, env := doRequest(t, http.MethodDelete, server.URL+"/api/v1/jobs/"+job.ID, "", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t)

	resp, env := doRequest(t, http.MethodGet, server.URL+"/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestCORSHeaders(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/v1/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
}
