package svc

import (
	"context"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/cidash/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
)

// NewStatistics creates a new instance of the statistics service.
func NewStatistics(repo app.StatisticsRepo) app.StatisticsSvc {
	return Statistics{repo: repo}
}

// Statistics is a service that maintains the build and deployment aggregate.
type Statistics struct {
	repo app.StatisticsRepo
}

// Get returns the current statistics.
func (s Statistics) Get(ctx context.Context) (app.Statistics, error) {
	res, err := s.repo.Get(ctx)
	return res, errors.WrapContext(err, errors.Context{Path: "svc.Statistics.Get.Get"})
}

// RecordDeployment adds one deployment to the total.
func (s Statistics) RecordDeployment(ctx context.Context) error {
	err := s.repo.IncrementDeployments(ctx)
	return errors.WrapContext(err, errors.Context{Path: "svc.Statistics.RecordDeployment.IncrementDeployments"})
}

// RecordBuildTime folds the build time in seconds into the average build time.
func (s Statistics) RecordBuildTime(ctx context.Context, seconds int) error {
	if seconds < 0 {
		return errtype.BadInput("Invalid build time", errtype.FieldError{Field: "duration", Message: "must not be negative"})
	}
	err := s.repo.RecordBuildTime(ctx, seconds)
	return errors.WrapContext(err, errors.Context{
		Path:   "svc.Statistics.RecordBuildTime.RecordBuildTime",
		Params: errors.Params{"seconds": seconds},
	})
}
