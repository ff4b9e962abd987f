package app

import (
	"context"
	"time"
)

// Pipeline is a model that represents a build configuration bound to a repository branch.
type Pipeline struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Repository string    `json:"repository"`
	Branch     string    `json:"branch"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FormAddPipeline represents a form of new pipeline.
type FormAddPipeline struct {
	Name       string `json:"name"`
	Repository string `json:"repository"`
	Branch     string `json:"branch"`
}

// PipelineSvc describes the pipeline service.
type PipelineSvc interface {
	List(context.Context) ([]Pipeline, error)
	Get(ctx context.Context, id uint64) (Pipeline, error)
	Add(context.Context, FormAddPipeline) (Pipeline, error)
}

// PipelineRepo describes interactions with the pipeline DB.
type PipelineRepo interface {
	FindAll(ctx context.Context) ([]Pipeline, error)
	FindByID(ctx context.Context, id uint64) (Pipeline, error)
	// FindByRepository returns the first pipeline matching the repository and branch exactly.
	FindByRepository(ctx context.Context, repository, branch string) (Pipeline, error)
	Add(ctx context.Context, p Pipeline) (Pipeline, error)
}
