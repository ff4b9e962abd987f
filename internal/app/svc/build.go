package svc

import (
	"context"
	"strings"
	"time"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/cidash/internal/app/metrics"
	"github.com/beldeveloper/go-errors-context"
	log "github.com/sirupsen/logrus"
)

// NewBuild creates a new instance of the build service.
func NewBuild(buildRepo app.BuildRepo, stepRepo app.StepRepo, collector *metrics.Collector) app.BuildSvc {
	return Build{
		buildRepo: buildRepo,
		stepRepo:  stepRepo,
		metrics:   collector,
	}
}

// Build is a service that manages the builds and their steps.
type Build struct {
	buildRepo app.BuildRepo
	stepRepo  app.StepRepo
	metrics   *metrics.Collector
}

// List all builds.
func (s Build) List(ctx context.Context) ([]app.Build, error) {
	res, err := s.buildRepo.FindAll(ctx)
	return res, errors.WrapContext(err, errors.Context{Path: "svc.Build.List.FindAll"})
}

// ListByPipeline returns the builds of the pipeline, the most recent first.
func (s Build) ListByPipeline(ctx context.Context, pipelineID uint64) ([]app.Build, error) {
	res, err := s.buildRepo.FindByPipeline(ctx, pipelineID)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Build.ListByPipeline.FindByPipeline",
		Params: errors.Params{"pipeline": pipelineID},
	})
}

// Get returns the build by ID.
func (s Build) Get(ctx context.Context, id uint64) (app.Build, error) {
	res, err := s.buildRepo.FindByID(ctx, id)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Build.Get.FindByID",
		Params: errors.Params{"build": id},
	})
}

// Add saves a new build together with the pending template steps.
func (s Build) Add(ctx context.Context, f app.FormAddBuild) (app.Build, error) {
	if f.Status == "" {
		f.Status = app.BuildStatusPending
	}
	if err := validateBuild(f); err != nil {
		return app.Build{}, err
	}
	startedAt := time.Now()
	if f.StartedAt != nil {
		startedAt = *f.StartedAt
	}
	b, _, err := s.buildRepo.Add(ctx, app.Build{
		PipelineID:    f.PipelineID,
		Status:        f.Status,
		CommitSha:     strings.TrimSpace(f.CommitSha),
		CommitMessage: f.CommitMessage,
		CommitAuthor:  strings.TrimSpace(f.CommitAuthor),
		StartedAt:     startedAt,
	}, app.TemplateSteps(startedAt))
	if err != nil {
		return b, errors.WrapContext(err, errors.Context{
			Path:   "svc.Build.Add.Add",
			Params: errors.Params{"pipeline": f.PipelineID, "commit": f.CommitSha},
		})
	}
	log.WithFields(log.Fields{
		"build":    b.ID,
		"pipeline": b.PipelineID,
		"number":   b.BuildNumber,
		"status":   b.Status,
	}).Info("build created")
	return b, nil
}

// UpdateStatus changes the build status; success and failed builds are counted in the statistics.
func (s Build) UpdateStatus(ctx context.Context, f app.FormBuildStatus) (app.Build, error) {
	if err := validateBuildStatus(f); err != nil {
		return app.Build{}, err
	}
	b, err := s.buildRepo.UpdateStatus(ctx, f.ID, f.Status, f.CompletedAt, f.Duration)
	if err != nil {
		return b, errors.WrapContext(err, errors.Context{
			Path:   "svc.Build.UpdateStatus.UpdateStatus",
			Params: errors.Params{"build": f.ID, "status": f.Status},
		})
	}
	s.metrics.BuildStatus(string(b.Status))
	entry := log.WithFields(log.Fields{"build": b.ID, "status": b.Status})
	if !b.Status.Terminal() {
		entry.Debug("build status updated")
		return b, nil
	}
	if b.Duration != nil {
		entry = entry.WithField("duration", *b.Duration)
	}
	entry.Info("build finished")
	return b, nil
}

// Steps returns the build steps in their order.
func (s Build) Steps(ctx context.Context, buildID uint64) ([]app.BuildStep, error) {
	res, err := s.stepRepo.FindByBuild(ctx, buildID)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Build.Steps.FindByBuild",
		Params: errors.Params{"build": buildID},
	})
}

// AddStep saves a new build step.
func (s Build) AddStep(ctx context.Context, f app.FormAddStep) (app.BuildStep, error) {
	if f.Status == "" {
		f.Status = app.StepStatusPending
	}
	if err := validateStep(f); err != nil {
		return app.BuildStep{}, err
	}
	step := app.BuildStep{
		BuildID:   f.BuildID,
		Name:      strings.TrimSpace(f.Name),
		Status:    f.Status,
		StartedAt: time.Now(),
		Order:     f.Order,
	}
	if f.StartedAt != nil {
		step.StartedAt = *f.StartedAt
	}
	if f.Logs != nil {
		step.Logs = *f.Logs
	}
	step, err := s.stepRepo.Add(ctx, step)
	return step, errors.WrapContext(err, errors.Context{
		Path:   "svc.Build.AddStep.Add",
		Params: errors.Params{"build": f.BuildID, "name": f.Name},
	})
}

// UpdateStep changes the step status and appends the logs.
func (s Build) UpdateStep(ctx context.Context, f app.FormStepUpdate) (app.BuildStep, error) {
	if err := validateStepUpdate(f); err != nil {
		return app.BuildStep{}, err
	}
	step, err := s.stepRepo.Update(ctx, f.ID, f.Status, f.CompletedAt, f.Logs)
	return step, errors.WrapContext(err, errors.Context{
		Path:   "svc.Build.UpdateStep.Update",
		Params: errors.Params{"step": f.ID, "status": f.Status},
	})
}
