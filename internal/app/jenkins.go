package app

import (
	"context"
	"time"
)

// JenkinsJob is a model that represents a Jenkins job record.
type JenkinsJob struct {
	ID                   uint64       `json:"id"`
	Name                 string       `json:"name"`
	URL                  string       `json:"url"`
	PipelineID           *uint64      `json:"pipelineId"`
	LastBuildStatus      *BuildStatus `json:"lastBuildStatus"`
	LastBuildNumber      *int         `json:"lastBuildNumber"`
	LastBuildTime        *time.Time   `json:"lastBuildTime"`
	JenkinsJobDefinition string       `json:"jenkinsJobDefinition"`
	CreatedAt            time.Time    `json:"createdAt"`
	UpdatedAt            time.Time    `json:"updatedAt"`
	Enabled              bool         `json:"enabled"`
}

// FormAddJenkinsJob represents a form of new Jenkins job. Jobs are enabled unless told otherwise.
type FormAddJenkinsJob struct {
	Name                 string  `json:"name"`
	URL                  string  `json:"url"`
	PipelineID           *uint64 `json:"pipelineId"`
	JenkinsJobDefinition string  `json:"jenkinsJobDefinition"`
	Enabled              *bool   `json:"enabled"`
}

// FormJenkinsJobStatus represents a form of the last job run update.
type FormJenkinsJobStatus struct {
	ID          uint64      `json:"-"`
	Status      BuildStatus `json:"status"`
	BuildNumber int         `json:"buildNumber"`
	BuildTime   *time.Time  `json:"buildTime"`
}

// FormJenkinsJobDefinition represents a form of the job definition update.
type FormJenkinsJobDefinition struct {
	ID                   uint64 `json:"-"`
	JenkinsJobDefinition string `json:"jenkinsJobDefinition"`
}

// FormJenkinsJobEnabled represents a form of the job toggle.
type FormJenkinsJobEnabled struct {
	ID      uint64 `json:"-"`
	Enabled *bool  `json:"enabled"`
}

// JenkinsSvc describes the Jenkins jobs service.
type JenkinsSvc interface {
	Jobs(context.Context) ([]JenkinsJob, error)
	Job(ctx context.Context, id uint64) (JenkinsJob, error)
	JobsByPipeline(ctx context.Context, pipelineID uint64) ([]JenkinsJob, error)
	AddJob(context.Context, FormAddJenkinsJob) (JenkinsJob, error)
	UpdateJobStatus(context.Context, FormJenkinsJobStatus) (JenkinsJob, error)
	UpdateJobDefinition(context.Context, FormJenkinsJobDefinition) (JenkinsJob, error)
	ToggleEnabled(context.Context, FormJenkinsJobEnabled) (JenkinsJob, error)
	Trigger(ctx context.Context, id uint64) (JenkinsJob, error)
}

// JenkinsJobRepo describes interactions with the Jenkins job DB.
type JenkinsJobRepo interface {
	FindAll(ctx context.Context) ([]JenkinsJob, error)
	FindByID(ctx context.Context, id uint64) (JenkinsJob, error)
	FindByPipeline(ctx context.Context, pipelineID uint64) ([]JenkinsJob, error)
	Add(ctx context.Context, j JenkinsJob) (JenkinsJob, error)
	UpdateStatus(ctx context.Context, id uint64, status BuildStatus, number int, at time.Time) (JenkinsJob, error)
	UpdateDefinition(ctx context.Context, id uint64, definition string) (JenkinsJob, error)
	SetEnabled(ctx context.Context, id uint64, enabled bool) (JenkinsJob, error)
}
