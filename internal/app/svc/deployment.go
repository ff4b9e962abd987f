package svc

import (
	"context"
	"time"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/cidash/internal/app/metrics"
	"github.com/beldeveloper/go-errors-context"
	log "github.com/sirupsen/logrus"
)

// NewDeployment creates a new instance of the deployment service.
func NewDeployment(repo app.DeploymentRepo, statsSvc app.StatisticsSvc, collector *metrics.Collector) app.DeploymentSvc {
	return Deployment{
		repo:     repo,
		statsSvc: statsSvc,
		metrics:  collector,
	}
}

// Deployment is a service that manages the deployments.
type Deployment struct {
	repo     app.DeploymentRepo
	statsSvc app.StatisticsSvc
	metrics  *metrics.Collector
}

// List all deployments, the most recent first.
func (s Deployment) List(ctx context.Context) ([]app.Deployment, error) {
	res, err := s.repo.FindAll(ctx)
	return res, errors.WrapContext(err, errors.Context{Path: "svc.Deployment.List.FindAll"})
}

// ListByBuild returns the deployments of the build.
func (s Deployment) ListByBuild(ctx context.Context, buildID uint64) ([]app.Deployment, error) {
	res, err := s.repo.FindByBuild(ctx, buildID)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Deployment.ListByBuild.FindByBuild",
		Params: errors.Params{"build": buildID},
	})
}

// Get returns the deployment by ID.
func (s Deployment) Get(ctx context.Context, id uint64) (app.Deployment, error) {
	res, err := s.repo.FindByID(ctx, id)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Deployment.Get.FindByID",
		Params: errors.Params{"deployment": id},
	})
}

// Add saves a new deployment and counts it in the statistics.
func (s Deployment) Add(ctx context.Context, f app.FormAddDeployment) (app.Deployment, error) {
	if f.Status == "" {
		f.Status = app.DeploymentStatusPending
	}
	if err := validateDeployment(f); err != nil {
		return app.Deployment{}, err
	}
	d := app.Deployment{
		BuildID:     f.BuildID,
		Environment: f.Environment,
		Status:      f.Status,
		DeployedAt:  time.Now(),
		Version:     f.Version,
		URL:         f.URL,
	}
	if f.DeployedAt != nil {
		d.DeployedAt = *f.DeployedAt
	}
	d, err := s.repo.Add(ctx, d)
	if err != nil {
		return d, errors.WrapContext(err, errors.Context{
			Path:   "svc.Deployment.Add.Add",
			Params: errors.Params{"build": f.BuildID, "environment": f.Environment},
		})
	}
	err = s.statsSvc.RecordDeployment(ctx)
	if err != nil {
		return d, errors.WrapContext(err, errors.Context{
			Path:   "svc.Deployment.Add.RecordDeployment",
			Params: errors.Params{"deployment": d.ID},
		})
	}
	s.metrics.Deployment()
	log.WithFields(log.Fields{
		"deployment":  d.ID,
		"build":       d.BuildID,
		"environment": d.Environment,
		"version":     d.Version,
	}).Info("deployment created")
	return d, nil
}
