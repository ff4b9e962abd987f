// Package apptest provides an in-memory entity store for tests.
// It follows the postgres repositories: ordering, foreign keys, log appends and statistics side effects.
package apptest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/cidash/internal/app/errtype"
)

// Store keeps all entities in memory behind one mutex.
type Store struct {
	mu         sync.Mutex
	seq        map[string]uint64
	pipelines  []app.Pipeline
	builds     []app.Build
	steps      []app.BuildStep
	deploys    []app.Deployment
	images     []app.DockerImage
	containers []app.DockerContainer
	jobs       []app.JenkinsJob
	stats      *app.Statistics
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{seq: make(map[string]uint64)}
}

// nextID returns the next ID of the table, each table counting from 1.
func (s *Store) nextID(table string) uint64 {
	s.seq[table]++
	return s.seq[table]
}

func fkError(field string) error {
	return errtype.BadInput("Referenced entity does not exist", errtype.FieldError{Field: field, Message: "not found"})
}

func (s *Store) statsLocked() *app.Statistics {
	if s.stats == nil {
		s.stats = &app.Statistics{UpdatedAt: time.Now()}
	}
	return s.stats
}

// Pipelines returns the pipeline repository.
func (s *Store) Pipelines() app.PipelineRepo { return pipelineRepo{s} }

// Builds returns the build repository.
func (s *Store) Builds() app.BuildRepo { return buildRepo{s} }

// Steps returns the build step repository.
func (s *Store) Steps() app.StepRepo { return stepRepo{s} }

// Deployments returns the deployment repository.
func (s *Store) Deployments() app.DeploymentRepo { return deploymentRepo{s} }

// Statistics returns the statistics repository.
func (s *Store) Statistics() app.StatisticsRepo { return statsRepo{s} }

// Images returns the docker image repository.
func (s *Store) Images() app.DockerImageRepo { return imageRepo{s} }

// Containers returns the docker container repository.
func (s *Store) Containers() app.DockerContainerRepo { return containerRepo{s} }

// Jobs returns the Jenkins job repository.
func (s *Store) Jobs() app.JenkinsJobRepo { return jobRepo{s} }

type pipelineRepo struct{ s *Store }

func (r pipelineRepo) FindAll(context.Context) ([]app.Pipeline, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]app.Pipeline{}, r.s.pipelines...), nil
}

func (r pipelineRepo) FindByID(_ context.Context, id uint64) (app.Pipeline, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.pipelines {
		if p.ID == id {
			return p, nil
		}
	}
	return app.Pipeline{}, errtype.NotFound("Pipeline")
}

func (r pipelineRepo) FindByRepository(_ context.Context, repository, branch string) (app.Pipeline, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.pipelines {
		if p.Repository == repository && p.Branch == branch {
			return p, nil
		}
	}
	return app.Pipeline{}, errtype.NotFound("Pipeline")
}

func (r pipelineRepo) Add(_ context.Context, p app.Pipeline) (app.Pipeline, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.nextID("pipelines")
	r.s.pipelines = append(r.s.pipelines, p)
	return p, nil
}

func (s *Store) hasPipeline(id uint64) bool {
	for _, p := range s.pipelines {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) buildIndex(id uint64) int {
	for i, b := range s.builds {
		if b.ID == id {
			return i
		}
	}
	return -1
}

type buildRepo struct{ s *Store }

func (r buildRepo) FindAll(context.Context) ([]app.Build, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := append([]app.Build{}, r.s.builds...)
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].StartedAt.Equal(res[j].StartedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].StartedAt.After(res[j].StartedAt)
	})
	return res, nil
}

func (r buildRepo) FindByID(_ context.Context, id uint64) (app.Build, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if i := r.s.buildIndex(id); i >= 0 {
		return r.s.builds[i], nil
	}
	return app.Build{}, errtype.NotFound("Build")
}

func (r buildRepo) FindByPipeline(_ context.Context, pipelineID uint64) ([]app.Build, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := make([]app.Build, 0)
	for _, b := range r.s.builds {
		if b.PipelineID == pipelineID {
			res = append(res, b)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].BuildNumber > res[j].BuildNumber })
	return res, nil
}

func (r buildRepo) lastNumber(pipelineID uint64) int {
	var n int
	for _, b := range r.s.builds {
		if b.PipelineID == pipelineID && b.BuildNumber > n {
			n = b.BuildNumber
		}
	}
	return n
}

func (r buildRepo) LastNumber(_ context.Context, pipelineID uint64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.lastNumber(pipelineID), nil
}

func (r buildRepo) Add(_ context.Context, b app.Build, steps []app.BuildStep) (app.Build, []app.BuildStep, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.hasPipeline(b.PipelineID) {
		return b, nil, fkError("pipeline_id")
	}
	b.ID = r.s.nextID("builds")
	b.BuildNumber = r.lastNumber(b.PipelineID) + 1
	r.s.builds = append(r.s.builds, b)
	res := make([]app.BuildStep, len(steps))
	for i, st := range steps {
		st.ID = r.s.nextID("build_steps")
		st.BuildID = b.ID
		r.s.steps = append(r.s.steps, st)
		res[i] = st
	}
	return b, res, nil
}

func (r buildRepo) UpdateStatus(
	_ context.Context,
	id uint64,
	status app.BuildStatus,
	completedAt *time.Time,
	duration *int,
) (app.Build, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.buildIndex(id)
	if i < 0 {
		return app.Build{}, errtype.NotFound("Build")
	}
	b := &r.s.builds[i]
	b.Status = status
	if completedAt != nil {
		b.CompletedAt = completedAt
	}
	if duration != nil {
		b.Duration = duration
	}
	st := r.s.statsLocked()
	switch status {
	case app.BuildStatusSuccess:
		st.SuccessfulBuilds++
		st.UpdatedAt = time.Now()
	case app.BuildStatusFailed:
		st.FailedBuilds++
		st.UpdatedAt = time.Now()
	}
	return *b, nil
}

type stepRepo struct{ s *Store }

func (r stepRepo) FindByBuild(_ context.Context, buildID uint64) ([]app.BuildStep, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := make([]app.BuildStep, 0)
	for _, st := range r.s.steps {
		if st.BuildID == buildID {
			res = append(res, st)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Order == res[j].Order {
			return res[i].ID < res[j].ID
		}
		return res[i].Order < res[j].Order
	})
	return res, nil
}

func (r stepRepo) FindByID(_ context.Context, id uint64) (app.BuildStep, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.steps {
		if st.ID == id {
			return st, nil
		}
	}
	return app.BuildStep{}, errtype.NotFound("Build step")
}

func (r stepRepo) Add(_ context.Context, st app.BuildStep) (app.BuildStep, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.buildIndex(st.BuildID) < 0 {
		return st, fkError("build_id")
	}
	st.ID = r.s.nextID("build_steps")
	r.s.steps = append(r.s.steps, st)
	return st, nil
}

func (r stepRepo) Update(
	_ context.Context,
	id uint64,
	status app.StepStatus,
	completedAt *time.Time,
	logs *string,
) (app.BuildStep, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.steps {
		st := &r.s.steps[i]
		if st.ID != id {
			continue
		}
		st.Status = status
		if completedAt != nil {
			st.CompletedAt = completedAt
		}
		if logs != nil {
			st.Logs += *logs
		}
		return *st, nil
	}
	return app.BuildStep{}, errtype.NotFound("Build step")
}

type deploymentRepo struct{ s *Store }

func (r deploymentRepo) sorted(filter func(app.Deployment) bool) []app.Deployment {
	res := make([]app.Deployment, 0)
	for _, d := range r.s.deploys {
		if filter(d) {
			res = append(res, d)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].DeployedAt.Equal(res[j].DeployedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].DeployedAt.After(res[j].DeployedAt)
	})
	return res
}

func (r deploymentRepo) FindAll(context.Context) ([]app.Deployment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(app.Deployment) bool { return true }), nil
}

func (r deploymentRepo) FindByID(_ context.Context, id uint64) (app.Deployment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.deploys {
		if d.ID == id {
			return d, nil
		}
	}
	return app.Deployment{}, errtype.NotFound("Deployment")
}

func (r deploymentRepo) FindByBuild(_ context.Context, buildID uint64) ([]app.Deployment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(d app.Deployment) bool { return d.BuildID == buildID }), nil
}

func (r deploymentRepo) Add(_ context.Context, d app.Deployment) (app.Deployment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.buildIndex(d.BuildID) < 0 {
		return d, fkError("build_id")
	}
	d.ID = r.s.nextID("deployments")
	r.s.deploys = append(r.s.deploys, d)
	return d, nil
}

type statsRepo struct{ s *Store }

func (r statsRepo) Get(context.Context) (app.Statistics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return *r.s.statsLocked(), nil
}

func (r statsRepo) IncrementDeployments(context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := r.s.statsLocked()
	st.TotalDeployments++
	st.UpdatedAt = time.Now()
	return nil
}

func (r statsRepo) RecordBuildTime(_ context.Context, seconds int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := r.s.statsLocked()
	st.AverageBuildTime = app.RunningMean(st.AverageBuildTime, st.SuccessfulBuilds+st.FailedBuilds, seconds)
	st.UpdatedAt = time.Now()
	return nil
}

type imageRepo struct{ s *Store }

func (r imageRepo) FindAll(context.Context) ([]app.DockerImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := append([]app.DockerImage{}, r.s.images...)
	sort.SliceStable(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return res, nil
}

func (r imageRepo) FindByID(_ context.Context, id uint64) (app.DockerImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, img := range r.s.images {
		if img.ID == id {
			return img, nil
		}
	}
	return app.DockerImage{}, errtype.NotFound("Docker image")
}

func (r imageRepo) Add(_ context.Context, img app.DockerImage) (app.DockerImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	img.ID = r.s.nextID("docker_images")
	r.s.images = append(r.s.images, img)
	return img, nil
}

func (r imageRepo) IncrementPullCount(_ context.Context, id uint64) (app.DockerImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.images {
		if r.s.images[i].ID == id {
			r.s.images[i].PullCount++
			return r.s.images[i], nil
		}
	}
	return app.DockerImage{}, errtype.NotFound("Docker image")
}

type containerRepo struct{ s *Store }

func (r containerRepo) filter(keep func(app.DockerContainer) bool) []app.DockerContainer {
	res := make([]app.DockerContainer, 0)
	for _, c := range r.s.containers {
		if keep(c) {
			res = append(res, c)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return res
}

func (r containerRepo) FindAll(context.Context) ([]app.DockerContainer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(app.DockerContainer) bool { return true }), nil
}

func (r containerRepo) FindByID(_ context.Context, id uint64) (app.DockerContainer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.containers {
		if c.ID == id {
			return c, nil
		}
	}
	return app.DockerContainer{}, errtype.NotFound("Docker container")
}

func (r containerRepo) FindByBuild(_ context.Context, buildID uint64) ([]app.DockerContainer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(c app.DockerContainer) bool { return c.BuildID != nil && *c.BuildID == buildID }), nil
}

func (r containerRepo) Add(_ context.Context, c app.DockerContainer) (app.DockerContainer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	found := false
	for _, img := range r.s.images {
		if img.ID == c.ImageID {
			found = true
		}
	}
	if !found {
		return c, fkError("image_id")
	}
	if c.BuildID != nil && r.s.buildIndex(*c.BuildID) < 0 {
		return c, fkError("build_id")
	}
	c.ID = r.s.nextID("docker_containers")
	r.s.containers = append(r.s.containers, c)
	return c, nil
}

func (r containerRepo) update(id uint64, fn func(*app.DockerContainer)) (app.DockerContainer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.containers {
		if r.s.containers[i].ID == id {
			fn(&r.s.containers[i])
			return r.s.containers[i], nil
		}
	}
	return app.DockerContainer{}, errtype.NotFound("Docker container")
}

func (r containerRepo) UpdateStatus(_ context.Context, id uint64, status app.ContainerStatus) (app.DockerContainer, error) {
	return r.update(id, func(c *app.DockerContainer) { c.Status = status })
}

func (r containerRepo) UpdateResources(_ context.Context, id uint64, cpu, memory float64) (app.DockerContainer, error) {
	return r.update(id, func(c *app.DockerContainer) {
		c.CPUUsage = cpu
		c.MemoryUsage = memory
	})
}

type jobRepo struct{ s *Store }

func (r jobRepo) FindAll(context.Context) ([]app.JenkinsJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]app.JenkinsJob{}, r.s.jobs...), nil
}

func (r jobRepo) FindByID(_ context.Context, id uint64) (app.JenkinsJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, j := range r.s.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return app.JenkinsJob{}, errtype.NotFound("Jenkins job")
}

func (r jobRepo) FindByPipeline(_ context.Context, pipelineID uint64) ([]app.JenkinsJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := make([]app.JenkinsJob, 0)
	for _, j := range r.s.jobs {
		if j.PipelineID != nil && *j.PipelineID == pipelineID {
			res = append(res, j)
		}
	}
	return res, nil
}

func (r jobRepo) Add(_ context.Context, j app.JenkinsJob) (app.JenkinsJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if j.PipelineID != nil && !r.s.hasPipeline(*j.PipelineID) {
		return j, fkError("pipeline_id")
	}
	j.ID = r.s.nextID("jenkins_jobs")
	r.s.jobs = append(r.s.jobs, j)
	return j, nil
}

func (r jobRepo) update(id uint64, fn func(*app.JenkinsJob)) (app.JenkinsJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.jobs {
		if r.s.jobs[i].ID == id {
			fn(&r.s.jobs[i])
			r.s.jobs[i].UpdatedAt = time.Now()
			return r.s.jobs[i], nil
		}
	}
	return app.JenkinsJob{}, errtype.NotFound("Jenkins job")
}

func (r jobRepo) UpdateStatus(_ context.Context, id uint64, status app.BuildStatus, number int, at time.Time) (app.JenkinsJob, error) {
	return r.update(id, func(j *app.JenkinsJob) {
		j.LastBuildStatus = &status
		j.LastBuildNumber = &number
		j.LastBuildTime = &at
	})
}

func (r jobRepo) UpdateDefinition(_ context.Context, id uint64, definition string) (app.JenkinsJob, error) {
	return r.update(id, func(j *app.JenkinsJob) { j.JenkinsJobDefinition = definition })
}

func (r jobRepo) SetEnabled(_ context.Context, id uint64, enabled bool) (app.JenkinsJob, error) {
	return r.update(id, func(j *app.JenkinsJob) { j.Enabled = enabled })
}
