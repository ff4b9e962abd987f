package svc

import (
	"context"
	"time"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/cidash/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	log "github.com/sirupsen/logrus"
)

// NewJenkins creates a new instance of the Jenkins jobs service.
func NewJenkins(repo app.JenkinsJobRepo) app.JenkinsSvc {
	return Jenkins{repo: repo}
}

// Jenkins is a service that manages the Jenkins job records.
type Jenkins struct {
	repo app.JenkinsJobRepo
}

// Jobs returns all jobs.
func (s Jenkins) Jobs(ctx context.Context) ([]app.JenkinsJob, error) {
	res, err := s.repo.FindAll(ctx)
	return res, errors.WrapContext(err, errors.Context{Path: "svc.Jenkins.Jobs.FindAll"})
}

// Job returns the job by ID.
func (s Jenkins) Job(ctx context.Context, id uint64) (app.JenkinsJob, error) {
	res, err := s.repo.FindByID(ctx, id)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Jenkins.Job.FindByID",
		Params: errors.Params{"job": id},
	})
}

// JobsByPipeline returns the jobs bound to the pipeline.
func (s Jenkins) JobsByPipeline(ctx context.Context, pipelineID uint64) ([]app.JenkinsJob, error) {
	res, err := s.repo.FindByPipeline(ctx, pipelineID)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Jenkins.JobsByPipeline.FindByPipeline",
		Params: errors.Params{"pipeline": pipelineID},
	})
}

// AddJob saves a new job.
func (s Jenkins) AddJob(ctx context.Context, f app.FormAddJenkinsJob) (app.JenkinsJob, error) {
	if err := validateJenkinsJob(f); err != nil {
		return app.JenkinsJob{}, err
	}
	now := time.Now()
	j := app.JenkinsJob{
		Name:                 f.Name,
		URL:                  f.URL,
		PipelineID:           f.PipelineID,
		JenkinsJobDefinition: f.JenkinsJobDefinition,
		CreatedAt:            now,
		UpdatedAt:            now,
		Enabled:              true,
	}
	if f.Enabled != nil {
		j.Enabled = *f.Enabled
	}
	j, err := s.repo.Add(ctx, j)
	if err != nil {
		return j, errors.WrapContext(err, errors.Context{
			Path:   "svc.Jenkins.AddJob.Add",
			Params: errors.Params{"name": f.Name},
		})
	}
	log.WithFields(log.Fields{"job": j.ID, "name": j.Name}).Info("jenkins job created")
	return j, nil
}

// UpdateJobStatus saves the result of the last job run.
func (s Jenkins) UpdateJobStatus(ctx context.Context, f app.FormJenkinsJobStatus) (app.JenkinsJob, error) {
	if err := validateJenkinsJobStatus(f); err != nil {
		return app.JenkinsJob{}, err
	}
	at := time.Now()
	if f.BuildTime != nil {
		at = *f.BuildTime
	}
	res, err := s.repo.UpdateStatus(ctx, f.ID, f.Status, f.BuildNumber, at)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Jenkins.UpdateJobStatus.UpdateStatus",
		Params: errors.Params{"job": f.ID, "status": f.Status, "number": f.BuildNumber},
	})
}

// UpdateJobDefinition overwrites the job definition.
func (s Jenkins) UpdateJobDefinition(ctx context.Context, f app.FormJenkinsJobDefinition) (app.JenkinsJob, error) {
	res, err := s.repo.UpdateDefinition(ctx, f.ID, f.JenkinsJobDefinition)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Jenkins.UpdateJobDefinition.UpdateDefinition",
		Params: errors.Params{"job": f.ID},
	})
}

// ToggleEnabled sets the enabled flag, or flips it when the form leaves it empty.
func (s Jenkins) ToggleEnabled(ctx context.Context, f app.FormJenkinsJobEnabled) (app.JenkinsJob, error) {
	var enabled bool
	if f.Enabled != nil {
		enabled = *f.Enabled
	} else {
		j, err := s.repo.FindByID(ctx, f.ID)
		if err != nil {
			return j, errors.WrapContext(err, errors.Context{
				Path:   "svc.Jenkins.ToggleEnabled.FindByID",
				Params: errors.Params{"job": f.ID},
			})
		}
		enabled = !j.Enabled
	}
	res, err := s.repo.SetEnabled(ctx, f.ID, enabled)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Jenkins.ToggleEnabled.SetEnabled",
		Params: errors.Params{"job": f.ID, "enabled": enabled},
	})
}

// Trigger starts the next run of an enabled job.
func (s Jenkins) Trigger(ctx context.Context, id uint64) (app.JenkinsJob, error) {
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return j, errors.WrapContext(err, errors.Context{
			Path:   "svc.Jenkins.Trigger.FindByID",
			Params: errors.Params{"job": id},
		})
	}
	if !j.Enabled {
		return j, errtype.BadInput("Jenkins job is disabled")
	}
	number := 1
	if j.LastBuildNumber != nil {
		number = *j.LastBuildNumber + 1
	}
	j, err = s.repo.UpdateStatus(ctx, id, app.BuildStatusInProgress, number, time.Now())
	if err != nil {
		return j, errors.WrapContext(err, errors.Context{
			Path:   "svc.Jenkins.Trigger.UpdateStatus",
			Params: errors.Params{"job": id, "number": number},
		})
	}
	log.WithFields(log.Fields{"job": j.ID, "number": number}).Info("jenkins job triggered")
	return j, nil
}
