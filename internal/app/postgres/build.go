package postgres

import (
	"context"
	"time"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/go-errors-context"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	buildColumns = `"id", "pipeline_id", "build_number", "status", "commit_sha", "commit_message",
	"commit_author", "started_at", "completed_at", "duration"`

	lastNumberQuery = `SELECT COALESCE(MAX("build_number"), 0) FROM "builds" WHERE "pipeline_id" = $1`
)

// NewBuild creates a new instance of the repository.
func NewBuild(conn *pgxpool.Pool) app.BuildRepo {
	return Build{conn: conn}
}

// Build implements a repository. Status updates and build numbering run in transactions.
type Build struct {
	conn *pgxpool.Pool
}

func scanBuild(row rowScanner) (app.Build, error) {
	var b app.Build
	var status string
	err := row.Scan(
		&b.ID, &b.PipelineID, &b.BuildNumber, &status, &b.CommitSha, &b.CommitMessage,
		&b.CommitAuthor, &b.StartedAt, &b.CompletedAt, &b.Duration,
	)
	b.Status = app.BuildStatus(status)
	return b, err
}

func (r Build) findMany(ctx context.Context, path string, q string, args ...interface{}) ([]app.Build, error) {
	rows, err := r.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: path + ".Query", Params: errors.Params{"args": args}})
	}
	defer rows.Close()
	res := make([]app.Build, 0)
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, errors.WrapContext(err, errors.Context{Path: path + ".Scan", Params: errors.Params{"args": args}})
		}
		res = append(res, b)
	}
	return res, errors.WrapContext(rows.Err(), errors.Context{Path: path + ".Rows"})
}

// FindAll returns all builds, the most recently started first.
func (r Build) FindAll(ctx context.Context) ([]app.Build, error) {
	q := `SELECT ` + buildColumns + ` FROM "builds" ORDER BY "started_at" DESC, "id" DESC`
	return r.findMany(ctx, "postgres.Build.FindAll", q)
}

// FindByID returns the build with the specific ID.
func (r Build) FindByID(ctx context.Context, id uint64) (app.Build, error) {
	q := `SELECT ` + buildColumns + ` FROM "builds" WHERE "id" = $1`
	b, err := scanBuild(r.conn.QueryRow(ctx, q, id))
	return b, errors.WrapContext(classify(err, "Build"), errors.Context{
		Path:   "postgres.Build.FindByID.Scan",
		Params: errors.Params{"build": id},
	})
}

// FindByPipeline returns the pipeline builds, the highest build number first.
func (r Build) FindByPipeline(ctx context.Context, pipelineID uint64) ([]app.Build, error) {
	q := `SELECT ` + buildColumns + ` FROM "builds" WHERE "pipeline_id" = $1 ORDER BY "build_number" DESC`
	return r.findMany(ctx, "postgres.Build.FindByPipeline", q, pipelineID)
}

func lastNumber(ctx context.Context, conn queryRower, pipelineID uint64) (int, error) {
	var n int
	err := conn.QueryRow(ctx, lastNumberQuery, pipelineID).Scan(&n)
	return n, err
}

// LastNumber returns the max build number of the pipeline or 0 if there are no builds.
func (r Build) LastNumber(ctx context.Context, pipelineID uint64) (int, error) {
	n, err := lastNumber(ctx, r.conn, pipelineID)
	return n, errors.WrapContext(err, errors.Context{
		Path:   "postgres.Build.LastNumber.Scan",
		Params: errors.Params{"pipeline": pipelineID},
	})
}

// Add saves a new build with its steps.
// The pipeline advisory lock serializes the build numbers of concurrent requests.
func (r Build) Add(ctx context.Context, b app.Build, steps []app.BuildStep) (app.Build, []app.BuildStep, error) {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return b, nil, errors.WrapContext(err, errors.Context{Path: "postgres.Build.Add.Begin"})
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(b.PipelineID))
	if err != nil {
		return b, nil, errors.WrapContext(err, errors.Context{
			Path:   "postgres.Build.Add.Lock",
			Params: errors.Params{"pipeline": b.PipelineID},
		})
	}
	b.BuildNumber, err = lastNumber(ctx, tx, b.PipelineID)
	if err != nil {
		return b, nil, errors.WrapContext(err, errors.Context{
			Path:   "postgres.Build.Add.LastNumber",
			Params: errors.Params{"pipeline": b.PipelineID},
		})
	}
	b.BuildNumber++
	q := `INSERT INTO "builds" ("pipeline_id", "build_number", "status", "commit_sha", "commit_message",
		"commit_author", "started_at", "completed_at", "duration")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING "id"`
	err = tx.QueryRow(
		ctx, q, b.PipelineID, b.BuildNumber, string(b.Status), b.CommitSha, b.CommitMessage,
		b.CommitAuthor, b.StartedAt, b.CompletedAt, b.Duration,
	).Scan(&b.ID)
	if err != nil {
		return b, nil, errors.WrapContext(classify(err, "Pipeline"), errors.Context{
			Path:   "postgres.Build.Add.Insert",
			Params: errors.Params{"pipeline": b.PipelineID},
		})
	}
	for i := range steps {
		steps[i].BuildID = b.ID
		steps[i], err = insertStep(ctx, tx, steps[i])
		if err != nil {
			return b, nil, errors.WrapContext(err, errors.Context{
				Path:   "postgres.Build.Add.InsertStep",
				Params: errors.Params{"build": b.ID, "step": steps[i].Name},
			})
		}
	}
	err = tx.Commit(ctx)
	return b, steps, errors.WrapContext(err, errors.Context{Path: "postgres.Build.Add.Commit"})
}

// UpdateStatus overwrites the build status and counts finished builds in the statistics.
func (r Build) UpdateStatus(
	ctx context.Context,
	id uint64,
	status app.BuildStatus,
	completedAt *time.Time,
	duration *int,
) (app.Build, error) {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return app.Build{}, errors.WrapContext(err, errors.Context{Path: "postgres.Build.UpdateStatus.Begin"})
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	q := `UPDATE "builds" SET "status" = $2,
		"completed_at" = COALESCE($3, "completed_at"),
		"duration" = COALESCE($4, "duration")
		WHERE "id" = $1 RETURNING ` + buildColumns
	b, err := scanBuild(tx.QueryRow(ctx, q, id, string(status), completedAt, duration))
	if err != nil {
		return b, errors.WrapContext(classify(err, "Build"), errors.Context{
			Path:   "postgres.Build.UpdateStatus.Scan",
			Params: errors.Params{"build": id, "status": status},
		})
	}
	switch status {
	case app.BuildStatusSuccess:
		_, err = tx.Exec(ctx, incrementSuccessfulQuery, time.Now())
	case app.BuildStatusFailed:
		_, err = tx.Exec(ctx, incrementFailedQuery, time.Now())
	}
	if err != nil {
		return b, errors.WrapContext(err, errors.Context{
			Path:   "postgres.Build.UpdateStatus.Statistics",
			Params: errors.Params{"build": id, "status": status},
		})
	}
	err = tx.Commit(ctx)
	return b, errors.WrapContext(err, errors.Context{
		Path:   "postgres.Build.UpdateStatus.Commit",
		Params: errors.Params{"build": id},
	})
}
