package app

import (
	"context"
	"time"
)

// Deployment is a model that represents a build artifact published to an environment.
type Deployment struct {
	ID          uint64           `json:"id"`
	BuildID     uint64           `json:"buildId"`
	Environment string           `json:"environment"`
	Status      DeploymentStatus `json:"status"`
	DeployedAt  time.Time        `json:"deployedAt"`
	Version     string           `json:"version"`
	URL         string           `json:"url"`
}

// FormAddDeployment represents a form of new deployment.
type FormAddDeployment struct {
	BuildID     uint64           `json:"buildId"`
	Environment string           `json:"environment"`
	Status      DeploymentStatus `json:"status"`
	DeployedAt  *time.Time       `json:"deployedAt"`
	Version     string           `json:"version"`
	URL         string           `json:"url"`
}

// DeploymentSvc describes the deployment service.
type DeploymentSvc interface {
	List(context.Context) ([]Deployment, error)
	ListByBuild(ctx context.Context, buildID uint64) ([]Deployment, error)
	Get(ctx context.Context, id uint64) (Deployment, error)
	Add(context.Context, FormAddDeployment) (Deployment, error)
}

// DeploymentRepo describes interactions with the deployment DB.
type DeploymentRepo interface {
	// FindAll returns all deployments, the most recent first.
	FindAll(ctx context.Context) ([]Deployment, error)
	FindByID(ctx context.Context, id uint64) (Deployment, error)
	FindByBuild(ctx context.Context, buildID uint64) ([]Deployment, error)
	Add(ctx context.Context, d Deployment) (Deployment, error)
}
