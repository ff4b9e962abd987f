package postgres

import (
	"context"
	"time"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/go-errors-context"
	"github.com/jackc/pgx/v4/pgxpool"
)

// The statistics row is a singleton with id 1. Every write is a single upsert.
const (
	materializeStatisticsQuery = `INSERT INTO "statistics" ("id") VALUES (1) ON CONFLICT ("id") DO NOTHING`

	incrementSuccessfulQuery = `INSERT INTO "statistics" ("id", "successful_builds", "updated_at") VALUES (1, 1, $1)
		ON CONFLICT ("id") DO UPDATE SET
		"successful_builds" = "statistics"."successful_builds" + 1, "updated_at" = EXCLUDED."updated_at"`

	incrementFailedQuery = `INSERT INTO "statistics" ("id", "failed_builds", "updated_at") VALUES (1, 1, $1)
		ON CONFLICT ("id") DO UPDATE SET
		"failed_builds" = "statistics"."failed_builds" + 1, "updated_at" = EXCLUDED."updated_at"`

	incrementDeploymentsQuery = `INSERT INTO "statistics" ("id", "total_deployments", "updated_at") VALUES (1, 1, $1)
		ON CONFLICT ("id") DO UPDATE SET
		"total_deployments" = "statistics"."total_deployments" + 1, "updated_at" = EXCLUDED."updated_at"`

	// mirrors app.RunningMean
	recordBuildTimeQuery = `INSERT INTO "statistics" ("id", "average_build_time", "updated_at") VALUES (1, $1, $2)
		ON CONFLICT ("id") DO UPDATE SET
		"average_build_time" = CASE
			WHEN "statistics"."successful_builds" + "statistics"."failed_builds" <= 1 THEN EXCLUDED."average_build_time"
			ELSE ROUND(
				("statistics"."average_build_time" * ("statistics"."successful_builds" + "statistics"."failed_builds" - 1)
				+ EXCLUDED."average_build_time")::NUMERIC
				/ ("statistics"."successful_builds" + "statistics"."failed_builds")
			)
		END,
		"updated_at" = EXCLUDED."updated_at"`
)

// NewStatistics creates a new instance of the repository.
func NewStatistics(conn *pgxpool.Pool) app.StatisticsRepo {
	return Statistics{conn: conn}
}

// Statistics implements a repository.
type Statistics struct {
	conn *pgxpool.Pool
}

// Get returns the statistics record, creating it on the first read.
func (r Statistics) Get(ctx context.Context) (app.Statistics, error) {
	var s app.Statistics
	_, err := r.conn.Exec(ctx, materializeStatisticsQuery)
	if err != nil {
		return s, errors.WrapContext(err, errors.Context{Path: "postgres.Statistics.Get.Materialize"})
	}
	q := `SELECT "successful_builds", "failed_builds", "total_deployments", "average_build_time", "updated_at"
		FROM "statistics" WHERE "id" = 1`
	err = r.conn.QueryRow(ctx, q).
		Scan(&s.SuccessfulBuilds, &s.FailedBuilds, &s.TotalDeployments, &s.AverageBuildTime, &s.UpdatedAt)
	return s, errors.WrapContext(err, errors.Context{Path: "postgres.Statistics.Get.Scan"})
}

// IncrementDeployments adds one deployment to the total.
func (r Statistics) IncrementDeployments(ctx context.Context) error {
	_, err := r.conn.Exec(ctx, incrementDeploymentsQuery, time.Now())
	return errors.WrapContext(err, errors.Context{Path: "postgres.Statistics.IncrementDeployments.Exec"})
}

// RecordBuildTime folds the build time into the average build time.
func (r Statistics) RecordBuildTime(ctx context.Context, seconds int) error {
	_, err := r.conn.Exec(ctx, recordBuildTimeQuery, seconds, time.Now())
	return errors.WrapContext(err, errors.Context{
		Path:   "postgres.Statistics.RecordBuildTime.Exec",
		Params: errors.Params{"seconds": seconds},
	})
}
