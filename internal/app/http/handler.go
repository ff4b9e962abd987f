package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/cidash/internal/app/errtype"
	"github.com/beldeveloper/cidash/pkg/github"
	"github.com/julienschmidt/httprouter"
)

const maxWebhookPayload = 5 << 20

// NewHandler creates a new instance of the REST API handler.
func NewHandler(
	pipelineSvc app.PipelineSvc,
	buildSvc app.BuildSvc,
	deploySvc app.DeploymentSvc,
	statsSvc app.StatisticsSvc,
	dockerSvc app.DockerSvc,
	jenkinsSvc app.JenkinsSvc,
	simSvc app.SimulationSvc,
	webhookSvc app.WebhookSvc,
	env app.Env,
) Handler {
	return Handler{
		pipelineSvc: pipelineSvc,
		buildSvc:    buildSvc,
		deploySvc:   deploySvc,
		statsSvc:    statsSvc,
		dockerSvc:   dockerSvc,
		jenkinsSvc:  jenkinsSvc,
		simSvc:      simSvc,
		webhookSvc:  webhookSvc,
		env:         env,
	}
}

// Handler handles the REST API requests.
type Handler struct {
	pipelineSvc app.PipelineSvc
	buildSvc    app.BuildSvc
	deploySvc   app.DeploymentSvc
	statsSvc    app.StatisticsSvc
	dockerSvc   app.DockerSvc
	jenkinsSvc  app.JenkinsSvc
	simSvc      app.SimulationSvc
	webhookSvc  app.WebhookSvc
	env         app.Env
}

func idParam(ps httprouter.Params) (uint64, error) {
	id, err := strconv.ParseUint(ps.ByName("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errtype.BadInput("Invalid id", errtype.FieldError{Field: "id", Message: "must be a positive integer"})
	}
	return id, nil
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errtype.BadInput("Invalid JSON body", errtype.FieldError{Field: "body", Message: err.Error()})
	}
	return nil
}

// Statistics returns the build and deployment statistics.
func (h Handler) Statistics(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := h.statsSvc.Get(r.Context())
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch statistics")
		return
	}
	apiSuccess(w, res)
}

// Pipelines returns the list of pipelines.
func (h Handler) Pipelines(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := h.pipelineSvc.List(r.Context())
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch pipelines")
		return
	}
	apiSuccess(w, res)
}

// Pipeline returns the pipeline by ID.
func (h Handler) Pipeline(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch pipeline")
		return
	}
	res, err := h.pipelineSvc.Get(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch pipeline")
		return
	}
	apiSuccess(w, res)
}

// AddPipeline creates a new pipeline.
func (h Handler) AddPipeline(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var f app.FormAddPipeline
	err := decode(r, &f)
	if err != nil {
		h.apiError(w, r, err, "Failed to create pipeline")
		return
	}
	res, err := h.pipelineSvc.Add(r.Context(), f)
	if err != nil {
		h.apiError(w, r, err, "Failed to create pipeline")
		return
	}
	apiCreated(w, res)
}

// PipelineBuilds returns the builds of the pipeline, the most recent first.
func (h Handler) PipelineBuilds(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch builds")
		return
	}
	res, err := h.buildSvc.ListByPipeline(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch builds")
		return
	}
	apiSuccess(w, res)
}

// PipelineJenkinsJobs returns the Jenkins jobs bound to the pipeline.
func (h Handler) PipelineJenkinsJobs(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch Jenkins jobs")
		return
	}
	res, err := h.jenkinsSvc.JobsByPipeline(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch Jenkins jobs")
		return
	}
	apiSuccess(w, res)
}

// Builds returns all builds.
func (h Handler) Builds(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := h.buildSvc.List(r.Context())
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch builds")
		return
	}
	apiSuccess(w, res)
}

// Build returns the build by ID.
func (h Handler) Build(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch build")
		return
	}
	res, err := h.buildSvc.Get(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch build")
		return
	}
	apiSuccess(w, res)
}

// AddBuild creates a new build with the template steps.
// An unknown pipelineId is rejected with 400 by the pipeline foreign key.
func (h Handler) AddBuild(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var f app.FormAddBuild
	err := decode(r, &f)
	if err != nil {
		h.apiError(w, r, err, "Failed to create build")
		return
	}
	res, err := h.buildSvc.Add(r.Context(), f)
	if err != nil {
		h.apiError(w, r, err, "Failed to create build")
		return
	}
	apiCreated(w, res)
}

// UpdateBuildStatus changes the build status.
func (h Handler) UpdateBuildStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var f app.FormBuildStatus
	id, err := idParam(ps)
	if err == nil {
		err = decode(r, &f)
	}
	if err != nil {
		h.apiError(w, r, err, "Failed to update build status")
		return
	}
	f.ID = id
	res, err := h.buildSvc.UpdateStatus(r.Context(), f)
	if err != nil {
		h.apiError(w, r, err, "Failed to update build status")
		return
	}
	apiSuccess(w, res)
}

// BuildSteps returns the build steps in their order.
func (h Handler) BuildSteps(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch build steps")
		return
	}
	res, err := h.buildSvc.Steps(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch build steps")
		return
	}
	apiSuccess(w, res)
}

// BuildContainers returns the docker containers started for the build.
func (h Handler) BuildContainers(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch docker containers")
		return
	}
	res, err := h.dockerSvc.ContainersByBuild(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch docker containers")
		return
	}
	apiSuccess(w, res)
}

// BuildDeployments returns the deployments of the build.
func (h Handler) BuildDeployments(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch deployments")
		return
	}
	res, err := h.deploySvc.ListByBuild(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch deployments")
		return
	}
	apiSuccess(w, res)
}

// AddBuildStep creates a new build step.
func (h Handler) AddBuildStep(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var f app.FormAddStep
	err := decode(r, &f)
	if err != nil {
		h.apiError(w, r, err, "Failed to create build step")
		return
	}
	res, err := h.buildSvc.AddStep(r.Context(), f)
	if err != nil {
		h.apiError(w, r, err, "Failed to create build step")
		return
	}
	apiCreated(w, res)
}

// UpdateBuildStep changes the step status and appends the logs.
func (h Handler) UpdateBuildStep(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var f app.FormStepUpdate
	id, err := idParam(ps)
	if err == nil {
		err = decode(r, &f)
	}
	if err != nil {
		h.apiError(w, r, err, "Failed to update build step")
		return
	}
	f.ID = id
	res, err := h.buildSvc.UpdateStep(r.Context(), f)
	if err != nil {
		h.apiError(w, r, err, "Failed to update build step")
		return
	}
	apiSuccess(w, res)
}

// Deployments returns all deployments, the most recent first.
func (h Handler) Deployments(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := h.deploySvc.List(r.Context())
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch deployments")
		return
	}
	apiSuccess(w, res)
}

// Deployment returns the deployment by ID.
func (h Handler) Deployment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch deployment")
		return
	}
	res, err := h.deploySvc.Get(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch deployment")
		return
	}
	apiSuccess(w, res)
}

// AddDeployment creates a new deployment.
func (h Handler) AddDeployment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var f app.FormAddDeployment
	err := decode(r, &f)
	if err != nil {
		h.apiError(w, r, err, "Failed to create deployment")
		return
	}
	res, err := h.deploySvc.Add(r.Context(), f)
	if err != nil {
		h.apiError(w, r, err, "Failed to create deployment")
		return
	}
	apiCreated(w, res)
}

// SimulateBuild fast-forwards the build to success and deploys it.
func (h Handler) SimulateBuild(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		h.apiError(w, r, err, "Failed to simulate build")
		return
	}
	res, err := h.simSvc.Simulate(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err, "Failed to simulate build")
		return
	}
	apiSuccess(w, res)
}

// GithubWebhook accepts the GitHub webhook deliveries.
func (h Handler) GithubWebhook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookPayload))
	if err != nil {
		h.apiError(w, r, errtype.BadInput("Invalid push payload"), "Failed to process GitHub webhook")
		return
	}
	res, err := h.webhookSvc.Handle(r.Context(), r.Header.Get(github.EventHeader), payload)
	if err != nil {
		h.apiError(w, r, err, "Failed to process GitHub webhook")
		return
	}
	if res.Triggered {
		writeJSON(w, http.StatusAccepted, res)
		return
	}
	apiSuccess(w, res)
}

// DockerImages returns all docker images.
func (h Handler) DockerImages(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := h.dockerSvc.Images(r.Context())
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch docker images")
		return
	}
	apiSuccess(w, res)
}

// DockerImage returns the docker image by ID.
func (h Handler) DockerImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch docker image")
		return
	}
	res, err := h.dockerSvc.Image(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch docker image")
		return
	}
	apiSuccess(w, res)
}

// AddDockerImage creates a new docker image record.
func (h Handler) AddDockerImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var f app.FormAddImage
	err := decode(r, &f)
	if err != nil {
		h.apiError(w, r, err, "Failed to create docker image")
		return
	}
	res, err := h.dockerSvc.AddImage(r.Context(), f)
	if err != nil {
		h.apiError(w, r, err, "Failed to create docker image")
		return
	}
	apiCreated(w, res)
}

// IncrementPullCount counts one more pull of the docker image.
func (h Handler) IncrementPullCount(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		h.apiError(w, r, err, "Failed to update docker image")
		return
	}
	res, err := h.dockerSvc.IncrementPullCount(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err, "Failed to update docker image")
		return
	}
	apiSuccess(w, res)
}

// DockerContainers returns all docker containers.
func (h Handler) DockerContainers(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := h.dockerSvc.Containers(r.Context())
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch docker containers")
		return
	}
	apiSuccess(w, res)
}

// DockerContainer returns the docker container by ID.
func (h Handler) DockerContainer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch docker container")
		return
	}
	res, err := h.dockerSvc.Container(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch docker container")
		return
	}
	apiSuccess(w, res)
}

// AddDockerContainer creates a new docker container record.
func (h Handler) AddDockerContainer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var f app.FormAddContainer
	err := decode(r, &f)
	if err != nil {
		h.apiError(w, r, err, "Failed to create docker container")
		return
	}
	res, err := h.dockerSvc.AddContainer(r.Context(), f)
	if err != nil {
		h.apiError(w, r, err, "Failed to create docker container")
		return
	}
	apiCreated(w, res)
}

// UpdateContainerStatus changes the docker container status.
func (h Handler) UpdateContainerStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var f app.FormContainerStatus
	id, err := idParam(ps)
	if err == nil {
		err = decode(r, &f)
	}
	if err != nil {
		h.apiError(w, r, err, "Failed to update docker container status")
		return
	}
	f.ID = id
	res, err := h.dockerSvc.UpdateContainerStatus(r.Context(), f)
	if err != nil {
		h.apiError(w, r, err, "Failed to update docker container status")
		return
	}
	apiSuccess(w, res)
}

// UpdateContainerResources stores the docker container resource usage.
func (h Handler) UpdateContainerResources(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var f app.FormContainerResources
	id, err := idParam(ps)
	if err == nil {
		err = decode(r, &f)
	}
	if err != nil {
		h.apiError(w, r, err, "Failed to update docker container resources")
		return
	}
	f.ID = id
	res, err := h.dockerSvc.UpdateContainerResources(r.Context(), f)
	if err != nil {
		h.apiError(w, r, err, "Failed to update docker container resources")
		return
	}
	apiSuccess(w, res)
}

// JenkinsJobs returns all Jenkins jobs.
func (h Handler) JenkinsJobs(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := h.jenkinsSvc.Jobs(r.Context())
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch Jenkins jobs")
		return
	}
	apiSuccess(w, res)
}

// JenkinsJob returns the Jenkins job by ID.
func (h Handler) JenkinsJob(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch Jenkins job")
		return
	}
	res, err := h.jenkinsSvc.Job(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err, "Failed to fetch Jenkins job")
		return
	}
	apiSuccess(w, res)
}

// AddJenkinsJob creates a new Jenkins job record.
func (h Handler) AddJenkinsJob(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var f app.FormAddJenkinsJob
	err := decode(r, &f)
	if err != nil {
		h.apiError(w, r, err, "Failed to create Jenkins job")
		return
	}
	res, err := h.jenkinsSvc.AddJob(r.Context(), f)
	if err != nil {
		h.apiError(w, r, err, "Failed to create Jenkins job")
		return
	}
	apiCreated(w, res)
}

// UpdateJenkinsJobStatus stores the result of the last job run.
func (h Handler) UpdateJenkinsJobStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var f app.FormJenkinsJobStatus
	id, err := idParam(ps)
	if err == nil {
		err = decode(r, &f)
	}
	if err != nil {
		h.apiError(w, r, err, "Failed to update Jenkins job status")
		return
	}
	f.ID = id
	res, err := h.jenkinsSvc.UpdateJobStatus(r.Context(), f)
	if err != nil {
		h.apiError(w, r, err, "Failed to update Jenkins job status")
		return
	}
	apiSuccess(w, res)
}

// UpdateJenkinsJobDefinition overwrites the Jenkins job definition.
func (h Handler) UpdateJenkinsJobDefinition(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var f app.FormJenkinsJobDefinition
	id, err := idParam(ps)
	if err == nil {
		err = decode(r, &f)
	}
	if err != nil {
		h.apiError(w, r, err, "Failed to update Jenkins job definition")
		return
	}
	f.ID = id
	res, err := h.jenkinsSvc.UpdateJobDefinition(r.Context(), f)
	if err != nil {
		h.apiError(w, r, err, "Failed to update Jenkins job definition")
		return
	}
	apiSuccess(w, res)
}

// ToggleJenkinsJob enables or disables the Jenkins job.
func (h Handler) ToggleJenkinsJob(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var f app.FormJenkinsJobEnabled
	id, err := idParam(ps)
	if err != nil {
		h.apiError(w, r, err, "Failed to toggle Jenkins job")
		return
	}
	if r.ContentLength != 0 {
		if err = decode(r, &f); err != nil {
			h.apiError(w, r, err, "Failed to toggle Jenkins job")
			return
		}
	}
	f.ID = id
	res, err := h.jenkinsSvc.ToggleEnabled(r.Context(), f)
	if err != nil {
		h.apiError(w, r, err, "Failed to toggle Jenkins job")
		return
	}
	apiSuccess(w, res)
}

// TriggerJenkinsJob starts the next run of the Jenkins job.
func (h Handler) TriggerJenkinsJob(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := idParam(ps)
	if err != nil {
		h.apiError(w, r, err, "Failed to trigger Jenkins job")
		return
	}
	res, err := h.jenkinsSvc.Trigger(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err, "Failed to trigger Jenkins job")
		return
	}
	apiSuccess(w, res)
}
