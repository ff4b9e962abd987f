package postgres

import (
	"context"
	"time"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/go-errors-context"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const stepColumns = `"id", "build_id", "name", "status", "started_at", "completed_at", "logs", "order"`

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// NewStep creates a new instance of the repository.
func NewStep(conn *pgxpool.Pool) app.StepRepo {
	return Step{conn: conn}
}

// Step implements a repository.
type Step struct {
	conn *pgxpool.Pool
}

func scanStep(row rowScanner) (app.BuildStep, error) {
	var s app.BuildStep
	var status string
	err := row.Scan(&s.ID, &s.BuildID, &s.Name, &status, &s.StartedAt, &s.CompletedAt, &s.Logs, &s.Order)
	s.Status = app.StepStatus(status)
	return s, err
}

func insertStep(ctx context.Context, conn queryRower, s app.BuildStep) (app.BuildStep, error) {
	q := `INSERT INTO "build_steps" ("build_id", "name", "status", "started_at", "completed_at", "logs", "order")
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING "id"`
	var id uint64
	err := conn.QueryRow(ctx, q, s.BuildID, s.Name, string(s.Status), s.StartedAt, s.CompletedAt, s.Logs, s.Order).Scan(&id)
	if err != nil {
		return s, classify(err, "Build")
	}
	s.ID = id
	return s, nil
}

// FindByBuild returns the build steps in their order.
func (r Step) FindByBuild(ctx context.Context, buildID uint64) ([]app.BuildStep, error) {
	q := `SELECT ` + stepColumns + ` FROM "build_steps" WHERE "build_id" = $1 ORDER BY "order", "id"`
	rows, err := r.conn.Query(ctx, q, buildID)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{
			Path:   "postgres.Step.FindByBuild.Query",
			Params: errors.Params{"build": buildID},
		})
	}
	defer rows.Close()
	res := make([]app.BuildStep, 0, len(app.StepTemplate))
	for rows.Next() {
		s, err := scanStep(rows)
		if err != nil {
			return nil, errors.WrapContext(err, errors.Context{
				Path:   "postgres.Step.FindByBuild.Scan",
				Params: errors.Params{"build": buildID},
			})
		}
		res = append(res, s)
	}
	return res, errors.WrapContext(rows.Err(), errors.Context{Path: "postgres.Step.FindByBuild.Rows"})
}

// FindByID returns the build step with the specific ID.
func (r Step) FindByID(ctx context.Context, id uint64) (app.BuildStep, error) {
	q := `SELECT ` + stepColumns + ` FROM "build_steps" WHERE "id" = $1`
	s, err := scanStep(r.conn.QueryRow(ctx, q, id))
	return s, errors.WrapContext(classify(err, "Build step"), errors.Context{
		Path:   "postgres.Step.FindByID.Scan",
		Params: errors.Params{"step": id},
	})
}

// Add saves a new build step.
func (r Step) Add(ctx context.Context, s app.BuildStep) (app.BuildStep, error) {
	s, err := insertStep(ctx, r.conn, s)
	return s, errors.WrapContext(err, errors.Context{
		Path:   "postgres.Step.Add.Scan",
		Params: errors.Params{"build": s.BuildID},
	})
}

// Update overwrites the step status and appends the logs.
func (r Step) Update(
	ctx context.Context,
	id uint64,
	status app.StepStatus,
	completedAt *time.Time,
	logs *string,
) (app.BuildStep, error) {
	q := `UPDATE "build_steps" SET "status" = $2,
		"completed_at" = COALESCE($3, "completed_at"),
		"logs" = "logs" || COALESCE($4::TEXT, '')
		WHERE "id" = $1 RETURNING ` + stepColumns
	s, err := scanStep(r.conn.QueryRow(ctx, q, id, string(status), completedAt, logs))
	return s, errors.WrapContext(classify(err, "Build step"), errors.Context{
		Path:   "postgres.Step.Update.Scan",
		Params: errors.Params{"step": id, "status": status},
	})
}
