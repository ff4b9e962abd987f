package app

import (
	"context"
	"math"
	"time"
)

// Statistics is the single running aggregate of builds and deployments.
type Statistics struct {
	SuccessfulBuilds int `json:"successfulBuilds"`
	FailedBuilds     int `json:"failedBuilds"`
	TotalDeployments int `json:"totalDeployments"`
	// AverageBuildTime is the mean build time in seconds.
	AverageBuildTime int       `json:"averageBuildTime"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// RunningMean folds the build time into the average over total samples, total including the new one.
func RunningMean(avg, total, buildTime int) int {
	if total <= 1 {
		return buildTime
	}
	return int(math.Round(float64(avg*(total-1)+buildTime) / float64(total)))
}

// StatisticsSvc describes the statistics service.
type StatisticsSvc interface {
	Get(context.Context) (Statistics, error)
	RecordDeployment(context.Context) error
	RecordBuildTime(ctx context.Context, seconds int) error
}

// StatisticsRepo describes interactions with the statistics DB.
// Every method is a single serialized write of the singleton.
type StatisticsRepo interface {
	// Get returns the statistics, creating the zero record on first read.
	Get(ctx context.Context) (Statistics, error)
	IncrementDeployments(ctx context.Context) error
	RecordBuildTime(ctx context.Context, seconds int) error
}
