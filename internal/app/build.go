package app

import (
	"context"
	"time"
)

// Build is a model that represents a single execution of a pipeline.
type Build struct {
	ID            uint64      `json:"id"`
	PipelineID    uint64      `json:"pipelineId"`
	BuildNumber   int         `json:"buildNumber"`
	Status        BuildStatus `json:"status"`
	CommitSha     string      `json:"commitSha"`
	CommitMessage string      `json:"commitMessage"`
	CommitAuthor  string      `json:"commitAuthor"`
	StartedAt     time.Time   `json:"startedAt"`
	CompletedAt   *time.Time  `json:"completedAt"`
	// Duration is the build time in seconds.
	Duration *int `json:"duration"`
}

// BuildStep is a model that represents one ordered phase of a build.
type BuildStep struct {
	ID          uint64     `json:"id"`
	BuildID     uint64     `json:"buildId"`
	Name        string     `json:"name"`
	Status      StepStatus `json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	Logs        string     `json:"logs"`
	Order       int        `json:"order"`
}

// StepTemplate lists the steps created for every new build.
var StepTemplate = []string{"Checkout", "Test", "Build", "Deploy"}

// TemplateSteps returns the pending steps of the template, ordered from 1.
func TemplateSteps(startedAt time.Time) []BuildStep {
	steps := make([]BuildStep, len(StepTemplate))
	for i, name := range StepTemplate {
		steps[i] = BuildStep{
			Name:      name,
			Status:    StepStatusPending,
			StartedAt: startedAt,
			Order:     i + 1,
		}
	}
	return steps
}

// FormAddBuild represents a form of new build. The build number is assigned by the store.
type FormAddBuild struct {
	PipelineID    uint64      `json:"pipelineId"`
	Status        BuildStatus `json:"status"`
	CommitSha     string      `json:"commitSha"`
	CommitMessage string      `json:"commitMessage"`
	CommitAuthor  string      `json:"commitAuthor"`
	StartedAt     *time.Time  `json:"startedAt"`
}

// FormBuildStatus represents a form of the build status update.
type FormBuildStatus struct {
	ID          uint64      `json:"-"`
	Status      BuildStatus `json:"status"`
	CompletedAt *time.Time  `json:"completedAt"`
	Duration    *int        `json:"duration"`
}

// FormAddStep represents a form of new build step.
type FormAddStep struct {
	BuildID   uint64     `json:"buildId"`
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	StartedAt *time.Time `json:"startedAt"`
	Logs      *string    `json:"logs"`
	Order     int        `json:"order"`
}

// FormStepUpdate represents a form of the build step update. Logs are appended to the existing ones.
type FormStepUpdate struct {
	ID          uint64     `json:"-"`
	Status      StepStatus `json:"status"`
	CompletedAt *time.Time `json:"completedAt"`
	Logs        *string    `json:"logs"`
}

// BuildSvc describes the build service.
type BuildSvc interface {
	List(context.Context) ([]Build, error)
	ListByPipeline(ctx context.Context, pipelineID uint64) ([]Build, error)
	Get(ctx context.Context, id uint64) (Build, error)
	Add(context.Context, FormAddBuild) (Build, error)
	UpdateStatus(context.Context, FormBuildStatus) (Build, error)
	Steps(ctx context.Context, buildID uint64) ([]BuildStep, error)
	AddStep(context.Context, FormAddStep) (BuildStep, error)
	UpdateStep(context.Context, FormStepUpdate) (BuildStep, error)
}

// BuildRepo describes interactions with the build DB.
type BuildRepo interface {
	FindAll(ctx context.Context) ([]Build, error)
	FindByID(ctx context.Context, id uint64) (Build, error)
	// FindByPipeline returns the pipeline builds, the most recent build number first.
	FindByPipeline(ctx context.Context, pipelineID uint64) ([]Build, error)
	// LastNumber returns the max build number of the pipeline or 0.
	LastNumber(ctx context.Context, pipelineID uint64) (int, error)
	// Add assigns the next build number of the pipeline and saves the build with its steps.
	Add(ctx context.Context, b Build, steps []BuildStep) (Build, []BuildStep, error)
	// UpdateStatus overwrites the status and, when given, the completion time and duration.
	// Success and failed statuses are counted in the statistics as a part of the same write.
	UpdateStatus(ctx context.Context, id uint64, status BuildStatus, completedAt *time.Time, duration *int) (Build, error)
}

// StepRepo describes interactions with the build step DB.
type StepRepo interface {
	// FindByBuild returns the build steps ordered by the order field.
	FindByBuild(ctx context.Context, buildID uint64) ([]BuildStep, error)
	FindByID(ctx context.Context, id uint64) (BuildStep, error)
	Add(ctx context.Context, s BuildStep) (BuildStep, error)
	// Update overwrites the status and the completion time and appends the logs.
	Update(ctx context.Context, id uint64, status StepStatus, completedAt *time.Time, logs *string) (BuildStep, error)
}
