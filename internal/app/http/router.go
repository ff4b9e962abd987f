package http

import (
	"net/http"

	"github.com/beldeveloper/cidash/internal/app/metrics"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures a new instance of the router.
func NewRouter(h Handler, collector *metrics.Collector, gatherer prometheus.Gatherer) *httprouter.Router {
	r := httprouter.New()
	handle := func(method, path string, fn httprouter.Handle) {
		r.Handle(method, path, observe(path, collector, fn))
	}

	handle(http.MethodGet, "/api/statistics", h.Statistics)

	handle(http.MethodGet, "/api/pipelines", h.Pipelines)
	handle(http.MethodPost, "/api/pipelines", h.AddPipeline)
	handle(http.MethodGet, "/api/pipelines/:id", h.Pipeline)
	handle(http.MethodGet, "/api/pipelines/:id/builds", h.PipelineBuilds)
	handle(http.MethodGet, "/api/pipelines/:id/jenkins-jobs", h.PipelineJenkinsJobs)

	handle(http.MethodGet, "/api/builds", h.Builds)
	handle(http.MethodPost, "/api/builds", h.AddBuild)
	handle(http.MethodGet, "/api/builds/:id", h.Build)
	handle(http.MethodPatch, "/api/builds/:id/status", h.UpdateBuildStatus)
	handle(http.MethodGet, "/api/builds/:id/steps", h.BuildSteps)
	handle(http.MethodGet, "/api/builds/:id/containers", h.BuildContainers)
	handle(http.MethodGet, "/api/builds/:id/deployments", h.BuildDeployments)

	handle(http.MethodPost, "/api/buildsteps", h.AddBuildStep)
	handle(http.MethodPatch, "/api/buildsteps/:id", h.UpdateBuildStep)

	handle(http.MethodGet, "/api/deployments", h.Deployments)
	handle(http.MethodPost, "/api/deployments", h.AddDeployment)
	handle(http.MethodGet, "/api/deployments/:id", h.Deployment)

	handle(http.MethodPost, "/api/simulate/build/:id", h.SimulateBuild)
	handle(http.MethodPost, "/api/github/webhook", h.GithubWebhook)

	handle(http.MethodGet, "/api/docker/images", h.DockerImages)
	handle(http.MethodPost, "/api/docker/images", h.AddDockerImage)
	handle(http.MethodGet, "/api/docker/images/:id", h.DockerImage)
	handle(http.MethodPost, "/api/docker/images/:id/increment-pull", h.IncrementPullCount)
	handle(http.MethodGet, "/api/docker/containers", h.DockerContainers)
	handle(http.MethodPost, "/api/docker/containers", h.AddDockerContainer)
	handle(http.MethodGet, "/api/docker/containers/:id", h.DockerContainer)
	handle(http.MethodPatch, "/api/docker/containers/:id/status", h.UpdateContainerStatus)
	handle(http.MethodPatch, "/api/docker/containers/:id/resources", h.UpdateContainerResources)

	handle(http.MethodGet, "/api/jenkins/jobs", h.JenkinsJobs)
	handle(http.MethodPost, "/api/jenkins/jobs", h.AddJenkinsJob)
	handle(http.MethodGet, "/api/jenkins/jobs/:id", h.JenkinsJob)
	handle(http.MethodPatch, "/api/jenkins/jobs/:id/status", h.UpdateJenkinsJobStatus)
	handle(http.MethodPatch, "/api/jenkins/jobs/:id/definition", h.UpdateJenkinsJobDefinition)
	handle(http.MethodPatch, "/api/jenkins/jobs/:id/toggle-enabled", h.ToggleJenkinsJob)
	handle(http.MethodPost, "/api/jenkins/jobs/:id/trigger", h.TriggerJenkinsJob)

	r.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.GET("/healthz", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		apiSuccess(w, map[string]string{"status": "ok"})
	})

	r.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetDefaultHeaders(w)
		h := w.Header()
		h.Set("Access-Control-Allow-Methods", h.Get("Allow"))
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}
