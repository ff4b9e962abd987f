package svc

import (
	"context"
	"strings"
	"time"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/go-errors-context"
	log "github.com/sirupsen/logrus"
)

// NewPipeline creates a new instance of the pipeline service.
func NewPipeline(repo app.PipelineRepo) app.PipelineSvc {
	return Pipeline{repo: repo}
}

// Pipeline is a service that manages the pipelines.
type Pipeline struct {
	repo app.PipelineRepo
}

// List all pipelines.
func (s Pipeline) List(ctx context.Context) ([]app.Pipeline, error) {
	res, err := s.repo.FindAll(ctx)
	return res, errors.WrapContext(err, errors.Context{Path: "svc.Pipeline.List.FindAll"})
}

// Get returns the pipeline by ID.
func (s Pipeline) Get(ctx context.Context, id uint64) (app.Pipeline, error) {
	res, err := s.repo.FindByID(ctx, id)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Pipeline.Get.FindByID",
		Params: errors.Params{"pipeline": id},
	})
}

// Add validates and saves a new pipeline.
func (s Pipeline) Add(ctx context.Context, f app.FormAddPipeline) (app.Pipeline, error) {
	if err := validatePipeline(f); err != nil {
		return app.Pipeline{}, err
	}
	now := time.Now()
	p, err := s.repo.Add(ctx, app.Pipeline{
		Name:       strings.TrimSpace(f.Name),
		Repository: strings.TrimSpace(f.Repository),
		Branch:     strings.TrimSpace(f.Branch),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return p, errors.WrapContext(err, errors.Context{
			Path:   "svc.Pipeline.Add.Add",
			Params: errors.Params{"repository": f.Repository, "branch": f.Branch},
		})
	}
	log.WithFields(log.Fields{"pipeline": p.ID, "repository": p.Repository, "branch": p.Branch}).Info("pipeline created")
	return p, nil
}
