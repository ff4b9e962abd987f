package svc

import (
	"context"
	"testing"
	"time"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/cidash/internal/app/apptest"
	"github.com/beldeveloper/cidash/internal/app/errtype"
	"github.com/beldeveloper/cidash/internal/app/metrics"
	"github.com/beldeveloper/go-errors-context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type services struct {
	store      *apptest.Store
	pipelines  app.PipelineSvc
	builds     app.BuildSvc
	deploys    app.DeploymentSvc
	stats      app.StatisticsSvc
	docker     app.DockerSvc
	jenkins    app.JenkinsSvc
	simulator  Simulator
	webhook    app.WebhookSvc
	collector  *metrics.Collector
	registry   *prometheus.Registry
	deployment app.DeployTarget
}

func newServices(t *testing.T) services {
	t.Helper()
	store := apptest.NewStore()
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	target := app.DeployTarget{Environment: "Replit (Dev)", URL: "https://ci-cd-dashboard.example.repl.co"}
	stats := NewStatistics(store.Statistics())
	builds := NewBuild(store.Builds(), store.Steps(), collector)
	deploys := NewDeployment(store.Deployments(), stats, collector)
	sim := NewSimulator(builds, deploys, stats, target, collector).(Simulator)
	return services{
		store:      store,
		pipelines:  NewPipeline(store.Pipelines()),
		builds:     builds,
		deploys:    deploys,
		stats:      stats,
		docker:     NewDocker(store.Images(), store.Containers()),
		jenkins:    NewJenkins(store.Jobs()),
		simulator:  sim,
		webhook:    NewWebhook(store.Pipelines(), builds, collector),
		collector:  collector,
		registry:   reg,
		deployment: target,
	}
}

func (s services) pipeline(t *testing.T, repository, branch string) app.Pipeline {
	t.Helper()
	p, err := s.pipelines.Add(context.Background(), app.FormAddPipeline{
		Name:       "main",
		Repository: repository,
		Branch:     branch,
	})
	require.NoError(t, err)
	return p
}

func (s services) build(t *testing.T, pipelineID uint64, startedAt time.Time) app.Build {
	t.Helper()
	b, err := s.builds.Add(context.Background(), app.FormAddBuild{
		PipelineID:    pipelineID,
		Status:        app.BuildStatusInProgress,
		CommitSha:     "abc123",
		CommitMessage: "fix tests",
		CommitAuthor:  "jdoe",
		StartedAt:     &startedAt,
	})
	require.NoError(t, err)
	return b
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, kind), "unexpected error: %v", err)
}

func TestPipeline_Add(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	p := s.pipeline(t, "acme/api", "main")
	assert.NotZero(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := s.pipelines.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = s.pipelines.Add(ctx, app.FormAddPipeline{Name: "x", Repository: " "})
	requireKind(t, err, errtype.ErrBadInput)
	var e *errtype.Error
	require.ErrorAs(t, err, &e)
	assert.Len(t, e.Fields, 2)

	_, err = s.pipelines.Get(ctx, 9999)
	requireKind(t, err, errtype.ErrNotFound)
}

func TestBuild_AddAssignsNumbersAndTemplateSteps(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.pipeline(t, "acme/api", "main")
	other := s.pipeline(t, "acme/web", "main")

	first := s.build(t, p.ID, time.Now())
	second := s.build(t, p.ID, time.Now())
	third := s.build(t, other.ID, time.Now())
	assert.Equal(t, 1, first.BuildNumber)
	assert.Equal(t, 2, second.BuildNumber)
	assert.Equal(t, 1, third.BuildNumber)

	steps, err := s.builds.Steps(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, steps, 4)
	for i, step := range steps {
		assert.Equal(t, app.StepTemplate[i], step.Name)
		assert.Equal(t, i+1, step.Order)
		assert.Equal(t, app.StepStatusPending, step.Status)
	}

	list, err := s.builds.ListByPipeline(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
}

func TestBuildRepo_LastNumber(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	repo := s.store.Builds()
	p := s.pipeline(t, "acme/api", "main")

	n, err := repo.LastNumber(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	s.build(t, p.ID, time.Now())
	s.build(t, p.ID, time.Now())
	n, err = repo.LastNumber(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.LastNumber(ctx, 9999)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBuild_AddValidation(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	_, err := s.builds.Add(ctx, app.FormAddBuild{PipelineID: 1, Status: "bogus"})
	requireKind(t, err, errtype.ErrBadInput)

	_, err = s.builds.Add(ctx, app.FormAddBuild{
		PipelineID:    42,
		CommitSha:     "abc",
		CommitMessage: "msg",
		CommitAuthor:  "me",
	})
	requireKind(t, err, errtype.ErrBadInput)
}

func TestBuild_UpdateStatusCountsStatistics(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.pipeline(t, "acme/api", "main")
	b1 := s.build(t, p.ID, time.Now())
	b2 := s.build(t, p.ID, time.Now())

	_, err := s.builds.UpdateStatus(ctx, app.FormBuildStatus{ID: b1.ID, Status: app.BuildStatusSuccess})
	require.NoError(t, err)
	_, err = s.builds.UpdateStatus(ctx, app.FormBuildStatus{ID: b2.ID, Status: app.BuildStatusFailed})
	require.NoError(t, err)
	_, err = s.builds.UpdateStatus(ctx, app.FormBuildStatus{ID: b2.ID, Status: app.BuildStatusCancelled})
	require.NoError(t, err)

	stats, err := s.stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SuccessfulBuilds)
	assert.Equal(t, 1, stats.FailedBuilds)
	assert.Equal(t, 0, stats.TotalDeployments)

	_, err = s.builds.UpdateStatus(ctx, app.FormBuildStatus{ID: b1.ID, Status: "done"})
	requireKind(t, err, errtype.ErrBadInput)
	_, err = s.builds.UpdateStatus(ctx, app.FormBuildStatus{ID: 9999, Status: app.BuildStatusSuccess})
	requireKind(t, err, errtype.ErrNotFound)
}

func TestBuild_UpdateStepAppendsLogs(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.pipeline(t, "acme/api", "main")
	b := s.build(t, p.ID, time.Now())
	steps, err := s.builds.Steps(ctx, b.ID)
	require.NoError(t, err)

	first, second := "line 1\n", "line 2\n"
	_, err = s.builds.UpdateStep(ctx, app.FormStepUpdate{ID: steps[0].ID, Status: app.StepStatusInProgress, Logs: &first})
	require.NoError(t, err)
	step, err := s.builds.UpdateStep(ctx, app.FormStepUpdate{ID: steps[0].ID, Status: app.StepStatusSuccess, Logs: &second})
	require.NoError(t, err)
	assert.Equal(t, "line 1\nline 2\n", step.Logs)
	assert.Equal(t, app.StepStatusSuccess, step.Status)

	_, err = s.builds.UpdateStep(ctx, app.FormStepUpdate{ID: 9999, Status: app.StepStatusSuccess})
	requireKind(t, err, errtype.ErrNotFound)
}

func TestDeployment_AddCountsStatistics(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.pipeline(t, "acme/api", "main")
	b := s.build(t, p.ID, time.Now())

	d, err := s.deploys.Add(ctx, app.FormAddDeployment{
		BuildID:     b.ID,
		Environment: "staging",
		Status:      app.DeploymentStatusSuccess,
		Version:     "v1.2.3",
		URL:         "https://staging.example.com",
	})
	require.NoError(t, err)
	assert.NotZero(t, d.ID)

	_, err = s.deploys.Add(ctx, app.FormAddDeployment{BuildID: b.ID, Environment: "staging", Version: "not-a-version"})
	requireKind(t, err, errtype.ErrBadInput)

	stats, err := s.stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalDeployments)

	got, err := s.deploys.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Version, got.Version)
}

func TestStatistics_RecordBuildTime(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.pipeline(t, "acme/api", "main")

	for i, seconds := range []int{10, 20} {
		b := s.build(t, p.ID, time.Now())
		_, err := s.builds.UpdateStatus(ctx, app.FormBuildStatus{ID: b.ID, Status: app.BuildStatusSuccess})
		require.NoError(t, err, i)
		require.NoError(t, s.stats.RecordBuildTime(ctx, seconds))
	}
	stats, err := s.stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, stats.AverageBuildTime)

	requireKind(t, s.stats.RecordBuildTime(ctx, -1), errtype.ErrBadInput)
}

func TestDocker_Images(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	img, err := s.docker.AddImage(ctx, app.FormAddImage{Name: "api", Tag: "latest", Repository: "acme/api", Size: 120.5})
	require.NoError(t, err)
	assert.Equal(t, 0, img.PullCount)

	for i := 0; i < 3; i++ {
		img, err = s.docker.IncrementPullCount(ctx, img.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, img.PullCount)

	_, err = s.docker.AddImage(ctx, app.FormAddImage{Name: "api", Tag: "latest", Repository: "acme/api", Size: -1})
	requireKind(t, err, errtype.ErrBadInput)
	_, err = s.docker.IncrementPullCount(ctx, 9999)
	requireKind(t, err, errtype.ErrNotFound)
}

func TestDocker_Containers(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	img, err := s.docker.AddImage(ctx, app.FormAddImage{Name: "api", Tag: "1.0", Repository: "acme/api"})
	require.NoError(t, err)

	c, err := s.docker.AddContainer(ctx, app.FormAddContainer{
		Name:    "api-1",
		ImageID: img.ID,
		Ports:   []app.ContainerPort{{Internal: 8080, External: 80}},
	})
	require.NoError(t, err)
	assert.Equal(t, app.ContainerStatusCreated, c.Status)
	assert.Equal(t, app.DefaultRestartPolicy, c.RestartPolicy)
	assert.NotNil(t, c.Environment)
	assert.NotNil(t, c.Volumes)

	c, err = s.docker.UpdateContainerStatus(ctx, app.FormContainerStatus{ID: c.ID, Status: app.ContainerStatusRunning})
	require.NoError(t, err)
	assert.Equal(t, app.ContainerStatusRunning, c.Status)

	cpu, mem := 12.5, 256.0
	c, err = s.docker.UpdateContainerResources(ctx, app.FormContainerResources{ID: c.ID, CPUUsage: &cpu, MemoryUsage: &mem})
	require.NoError(t, err)
	assert.Equal(t, cpu, c.CPUUsage)
	assert.Equal(t, mem, c.MemoryUsage)

	neg := -1.0
	_, err = s.docker.UpdateContainerResources(ctx, app.FormContainerResources{ID: c.ID, CPUUsage: &neg, MemoryUsage: &mem})
	requireKind(t, err, errtype.ErrBadInput)
	_, err = s.docker.UpdateContainerStatus(ctx, app.FormContainerStatus{ID: c.ID, Status: "gone"})
	requireKind(t, err, errtype.ErrBadInput)
	_, err = s.docker.AddContainer(ctx, app.FormAddContainer{Name: "orphan", ImageID: 9999})
	requireKind(t, err, errtype.ErrBadInput)
}

func TestJenkins_Trigger(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	j, err := s.jenkins.AddJob(ctx, app.FormAddJenkinsJob{Name: "api", URL: "https://jenkins.example.com/job/api"})
	require.NoError(t, err)
	assert.True(t, j.Enabled)

	j, err = s.jenkins.Trigger(ctx, j.ID)
	require.NoError(t, err)
	require.NotNil(t, j.LastBuildNumber)
	assert.Equal(t, 1, *j.LastBuildNumber)
	assert.Equal(t, app.BuildStatusInProgress, *j.LastBuildStatus)

	j, err = s.jenkins.UpdateJobStatus(ctx, app.FormJenkinsJobStatus{ID: j.ID, Status: app.BuildStatusSuccess, BuildNumber: 7})
	require.NoError(t, err)
	j, err = s.jenkins.Trigger(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, *j.LastBuildNumber)

	j, err = s.jenkins.ToggleEnabled(ctx, app.FormJenkinsJobEnabled{ID: j.ID})
	require.NoError(t, err)
	assert.False(t, j.Enabled)
	_, err = s.jenkins.Trigger(ctx, j.ID)
	requireKind(t, err, errtype.ErrBadInput)

	j, err = s.jenkins.UpdateJobDefinition(ctx, app.FormJenkinsJobDefinition{ID: j.ID, JenkinsJobDefinition: "pipeline {}"})
	require.NoError(t, err)
	assert.Equal(t, "pipeline {}", j.JenkinsJobDefinition)

	_, err = s.jenkins.Trigger(ctx, 9999)
	requireKind(t, err, errtype.ErrNotFound)
}

func TestSimulator_Simulate(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.simulator.now = func() time.Time { return now }
	p := s.pipeline(t, "acme/api", "main")
	b := s.build(t, p.ID, now.Add(-90*time.Second-500*time.Millisecond))

	res, err := s.simulator.Simulate(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Build simulation completed successfully", res.Message)
	assert.Equal(t, app.BuildStatusSuccess, res.Build.Status)
	require.NotNil(t, res.Build.Duration)
	assert.Equal(t, 90, *res.Build.Duration)
	assert.True(t, res.Build.CompletedAt.Equal(now))

	steps, err := s.builds.Steps(ctx, b.ID)
	require.NoError(t, err)
	for _, step := range steps {
		assert.Equal(t, app.StepStatusSuccess, step.Status)
		assert.Equal(t, app.SimulationLog, step.Logs)
	}

	assert.Equal(t, s.deployment.Environment, res.Deployment.Environment)
	assert.Equal(t, s.deployment.URL, res.Deployment.URL)
	assert.Equal(t, "v1.0.1", res.Deployment.Version)
	assert.Equal(t, app.DeploymentStatusSuccess, res.Deployment.Status)

	stats, err := s.stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SuccessfulBuilds)
	assert.Equal(t, 1, stats.TotalDeployments)
	assert.Equal(t, 90, stats.AverageBuildTime)

	_, err = s.simulator.Simulate(ctx, 9999)
	requireKind(t, err, errtype.ErrNotFound)
}

func TestSimulator_StepFailureKeepsEarlierWrites(t *testing.T) {
	store := apptest.NewStore()
	collector := metrics.NewCollector(prometheus.NewRegistry())
	stats := NewStatistics(store.Statistics())
	steps := apptest.FailingSteps(store.Steps(), 3, assert.AnError)
	builds := NewBuild(store.Builds(), steps, collector)
	deploys := NewDeployment(store.Deployments(), stats, collector)
	sim := NewSimulator(builds, deploys, stats, app.DeployTarget{Environment: "dev"}, collector)
	ctx := context.Background()

	p, err := NewPipeline(store.Pipelines()).Add(ctx, app.FormAddPipeline{Name: "api", Repository: "acme/api", Branch: "main"})
	require.NoError(t, err)
	b, err := builds.Add(ctx, app.FormAddBuild{PipelineID: p.ID, CommitSha: "abc", CommitAuthor: "jdoe"})
	require.NoError(t, err)

	_, err = sim.Simulate(ctx, b.ID)
	requireKind(t, err, assert.AnError)

	list, err := builds.Steps(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, app.StepStatusSuccess, list[0].Status)
	assert.Equal(t, app.StepStatusSuccess, list[1].Status)
	assert.Equal(t, app.StepStatusPending, list[2].Status)
	assert.Equal(t, app.StepStatusPending, list[3].Status)

	got, err := builds.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, app.BuildStatusPending, got.Status)
	assert.Nil(t, got.CompletedAt)
	assert.Nil(t, got.Duration)

	ds, err := deploys.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ds)
	st, err := stats.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.SuccessfulBuilds)
	assert.Zero(t, st.FailedBuilds)
	assert.Zero(t, st.TotalDeployments)
	assert.Zero(t, st.AverageBuildTime)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "v1.0.0", Version(0))
	assert.Equal(t, "v1.0.42", Version(42))
}

func TestWebhook_Handle(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.pipeline(t, "acme/api", "main")

	push := []byte(`{
		"ref": "refs/heads/main",
		"after": "deadbeef",
		"repository": {"full_name": "acme/api"},
		"head_commit": {"message": "add feature", "author": {"name": "Jane", "username": "jane"}}
	}`)
	res, err := s.webhook.Handle(ctx, "push", push)
	require.NoError(t, err)
	assert.True(t, res.Triggered)
	assert.Equal(t, "Build triggered", res.Message)
	require.NotNil(t, res.BuildID)

	b, err := s.builds.Get(ctx, *res.BuildID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, b.PipelineID)
	assert.Equal(t, app.BuildStatusInProgress, b.Status)
	assert.Equal(t, "deadbeef", b.CommitSha)
	assert.Equal(t, "jane", b.CommitAuthor)
	assert.Equal(t, 1, b.BuildNumber)
	steps, err := s.builds.Steps(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, steps, 4)
	for i, step := range steps {
		assert.Equal(t, i+1, step.Order)
		assert.Equal(t, app.StepStatusPending, step.Status)
	}

	unmatched := []byte(`{"ref": "refs/heads/dev", "after": "x", "repository": {"full_name": "acme/api"},
		"head_commit": {"message": "m", "author": {"username": "u"}}}`)
	_, err = s.webhook.Handle(ctx, "push", unmatched)
	requireKind(t, err, errtype.ErrNotFound)
	assert.Contains(t, err.Error(), "No pipeline configured for this repository/branch")
	all, err := s.builds.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	res, err = s.webhook.Handle(ctx, "issues", []byte(`not json`))
	require.NoError(t, err)
	assert.False(t, res.Triggered)
	assert.Equal(t, "Received issues event", res.Message)

	_, err = s.webhook.Handle(ctx, "push", []byte(`{`))
	requireKind(t, err, errtype.ErrBadInput)

	_, err = s.webhook.Handle(ctx, "", push)
	requireKind(t, err, errtype.ErrBadInput)
	assert.Contains(t, err.Error(), "Missing event header")
	all, err = s.builds.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
