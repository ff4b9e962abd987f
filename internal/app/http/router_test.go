package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/cidash/internal/app/apptest"
	"github.com/beldeveloper/cidash/internal/app/metrics"
	"github.com/beldeveloper/cidash/internal/app/svc"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, env app.Env) *httprouter.Router {
	t.Helper()
	store := apptest.NewStore()
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	stats := svc.NewStatistics(store.Statistics())
	builds := svc.NewBuild(store.Builds(), store.Steps(), collector)
	deploys := svc.NewDeployment(store.Deployments(), stats, collector)
	target := app.DeployTarget{Environment: "Replit (Dev)", URL: "https://ci-cd-dashboard.example.repl.co"}
	h := NewHandler(
		svc.NewPipeline(store.Pipelines()),
		builds,
		deploys,
		stats,
		svc.NewDocker(store.Images(), store.Containers()),
		svc.NewJenkins(store.Jobs()),
		svc.NewSimulator(builds, deploys, stats, target, collector),
		svc.NewWebhook(store.Pipelines(), builds, collector),
		env,
	)
	return NewRouter(h, collector, reg)
}

func do(t *testing.T, router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestRouter_PipelineAndBuildFlow(t *testing.T) {
	router := newTestRouter(t, "production")

	rec := do(t, router, http.MethodPost, "/api/pipelines", `{"name":"api","repository":"acme/api","branch":"main"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p app.Pipeline
	decodeBody(t, rec, &p)
	assert.Equal(t, "acme/api", p.Repository)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, router, http.MethodPost, "/api/builds",
		`{"pipelineId":1,"status":"in_progress","commitSha":"abc","commitMessage":"init","commitAuthor":"jane"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var b app.Build
	decodeBody(t, rec, &b)
	assert.Equal(t, 1, b.BuildNumber)

	rec = do(t, router, http.MethodGet, "/api/builds/1/steps", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var steps []app.BuildStep
	decodeBody(t, rec, &steps)
	assert.Len(t, steps, 4)

	rec = do(t, router, http.MethodPatch, "/api/builds/1/status", `{"status":"failed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/statistics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats app.Statistics
	decodeBody(t, rec, &stats)
	assert.Equal(t, 1, stats.FailedBuilds)

	rec = do(t, router, http.MethodGet, "/api/pipelines/1/builds", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var builds []app.Build
	decodeBody(t, rec, &builds)
	assert.Len(t, builds, 1)
}

func TestRouter_ListingsAreIdempotent(t *testing.T) {
	router := newTestRouter(t, "production")
	do(t, router, http.MethodPost, "/api/pipelines", `{"name":"api","repository":"acme/api","branch":"main"}`)
	do(t, router, http.MethodPost, "/api/builds", `{"pipelineId":1,"commitSha":"abc","commitMessage":"init","commitAuthor":"jane"}`)
	do(t, router, http.MethodPost, "/api/simulate/build/1", "")
	do(t, router, http.MethodPost, "/api/docker/images", `{"name":"api","tag":"1.0","repository":"acme/api","size":10}`)
	do(t, router, http.MethodPost, "/api/jenkins/jobs", `{"name":"api","url":"https://jenkins/job/api"}`)

	paths := []string{
		"/api/statistics",
		"/api/pipelines",
		"/api/pipelines/1/builds",
		"/api/builds",
		"/api/builds/1/steps",
		"/api/builds/1/deployments",
		"/api/deployments",
		"/api/docker/images",
		"/api/docker/containers",
		"/api/jenkins/jobs",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			first := do(t, router, http.MethodGet, path, "")
			require.Equal(t, http.StatusOK, first.Code, first.Body.String())
			second := do(t, router, http.MethodGet, path, "")
			require.Equal(t, http.StatusOK, second.Code)
			assert.Equal(t, first.Body.String(), second.Body.String())
		})
	}
}

func TestRouter_Errors(t *testing.T) {
	router := newTestRouter(t, "production")

	rec := do(t, router, http.MethodGet, "/api/builds/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var res errorResponse
	decodeBody(t, rec, &res)
	assert.Equal(t, "Build not found", res.Message)
	assert.Empty(t, res.Details)

	rec = do(t, router, http.MethodPost, "/api/pipelines", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	res = errorResponse{}
	decodeBody(t, rec, &res)
	assert.Equal(t, "Invalid pipeline data", res.Message)
	assert.Len(t, res.Errors, 3)

	rec = do(t, router, http.MethodPatch, "/api/builds/1/status", `{"status":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	res = errorResponse{}
	decodeBody(t, rec, &res)
	assert.Equal(t, "Invalid status value", res.Message)

	rec = do(t, router, http.MethodGet, "/api/builds/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/builds", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ErrorDetailsInDevelopment(t *testing.T) {
	router := newTestRouter(t, app.EnvDevelopment)

	rec := do(t, router, http.MethodGet, "/api/pipelines/7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var res errorResponse
	decodeBody(t, rec, &res)
	assert.NotEmpty(t, res.Details)
}

func TestRouter_SimulateBuild(t *testing.T) {
	router := newTestRouter(t, "production")
	do(t, router, http.MethodPost, "/api/pipelines", `{"name":"api","repository":"acme/api","branch":"main"}`)
	do(t, router, http.MethodPost, "/api/builds",
		`{"pipelineId":1,"commitSha":"abc","commitMessage":"init","commitAuthor":"jane"}`)

	rec := do(t, router, http.MethodPost, "/api/simulate/build/1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res app.SimulationResult
	decodeBody(t, rec, &res)
	assert.Equal(t, "Build simulation completed successfully", res.Message)
	assert.Equal(t, app.BuildStatusSuccess, res.Build.Status)
	assert.Equal(t, "v1.0.1", res.Deployment.Version)

	rec = do(t, router, http.MethodGet, "/api/deployments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var deploys []app.Deployment
	decodeBody(t, rec, &deploys)
	assert.Len(t, deploys, 1)

	rec = do(t, router, http.MethodGet, "/api/deployments/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var d app.Deployment
	decodeBody(t, rec, &d)
	assert.Equal(t, "Replit (Dev)", d.Environment)

	rec = do(t, router, http.MethodPost, "/api/simulate/build/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_GithubWebhook(t *testing.T) {
	router := newTestRouter(t, "production")
	do(t, router, http.MethodPost, "/api/pipelines", `{"name":"api","repository":"acme/api","branch":"main"}`)
	push := `{"ref":"refs/heads/main","after":"deadbeef","repository":{"full_name":"acme/api"},
		"head_commit":{"message":"feat","author":{"username":"jane"}}}`

	rec := do(t, router, http.MethodPost, "/api/github/webhook", push, "X-GitHub-Event", "push")
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var res struct {
		Message string `json:"message"`
		BuildID uint64 `json:"buildId"`
	}
	decodeBody(t, rec, &res)
	assert.Equal(t, "Build triggered", res.Message)
	assert.NotZero(t, res.BuildID)

	other := strings.Replace(push, "refs/heads/main", "refs/heads/dev", 1)
	rec = do(t, router, http.MethodPost, "/api/github/webhook", other, "X-GitHub-Event", "push")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var errRes errorResponse
	decodeBody(t, rec, &errRes)
	assert.Equal(t, "No pipeline configured for this repository/branch", errRes.Message)

	rec = do(t, router, http.MethodPost, "/api/github/webhook", push)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errRes = errorResponse{}
	decodeBody(t, rec, &errRes)
	assert.Equal(t, "Missing event header", errRes.Message)

	rec = do(t, router, http.MethodPost, "/api/github/webhook", `{}`, "X-GitHub-Event", "ping")
	assert.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &res)
	assert.Equal(t, "Received ping event", res.Message)
}

func TestRouter_DockerAndJenkins(t *testing.T) {
	router := newTestRouter(t, "production")

	rec := do(t, router, http.MethodPost, "/api/docker/images", `{"name":"api","tag":"1.0","repository":"acme/api","size":10}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, router, http.MethodPost, "/api/docker/images/1/increment-pull", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var img app.DockerImage
	decodeBody(t, rec, &img)
	assert.Equal(t, 1, img.PullCount)

	rec = do(t, router, http.MethodPost, "/api/jenkins/jobs", `{"name":"api","url":"https://jenkins/job/api","enabled":false}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, router, http.MethodPost, "/api/jenkins/jobs/1/trigger", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, router, http.MethodPatch, "/api/jenkins/jobs/1/toggle-enabled", `{"enabled":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPost, "/api/jenkins/jobs/1/trigger", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var job app.JenkinsJob
	decodeBody(t, rec, &job)
	require.NotNil(t, job.LastBuildNumber)
	assert.Equal(t, 1, *job.LastBuildNumber)
}

func TestRouter_InfraRoutes(t *testing.T) {
	router := newTestRouter(t, "production")
	do(t, router, http.MethodGet, "/api/pipelines", "")

	rec := do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cidash_http_requests_total")

	rec = do(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodOptions, "/api/pipelines", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
