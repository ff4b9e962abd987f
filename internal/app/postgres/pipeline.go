package postgres

import (
	"context"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/go-errors-context"
	"github.com/jackc/pgx/v4/pgxpool"
)

const pipelineColumns = `"id", "name", "repository", "branch", "created_at", "updated_at"`

// NewPipeline creates a new instance of the repository.
func NewPipeline(conn *pgxpool.Pool) app.PipelineRepo {
	return Pipeline{conn: conn}
}

// Pipeline implements a repository.
type Pipeline struct {
	conn *pgxpool.Pool
}

func scanPipeline(row rowScanner) (app.Pipeline, error) {
	var p app.Pipeline
	err := row.Scan(&p.ID, &p.Name, &p.Repository, &p.Branch, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// FindAll returns all pipelines.
func (r Pipeline) FindAll(ctx context.Context) ([]app.Pipeline, error) {
	q := `SELECT ` + pipelineColumns + ` FROM "pipelines" ORDER BY "id"`
	rows, err := r.conn.Query(ctx, q)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "postgres.Pipeline.FindAll.Query"})
	}
	defer rows.Close()
	res := make([]app.Pipeline, 0)
	for rows.Next() {
		p, err := scanPipeline(rows)
		if err != nil {
			return nil, errors.WrapContext(err, errors.Context{Path: "postgres.Pipeline.FindAll.Scan"})
		}
		res = append(res, p)
	}
	return res, errors.WrapContext(rows.Err(), errors.Context{Path: "postgres.Pipeline.FindAll.Rows"})
}

// FindByID returns the pipeline with the specific ID.
func (r Pipeline) FindByID(ctx context.Context, id uint64) (app.Pipeline, error) {
	q := `SELECT ` + pipelineColumns + ` FROM "pipelines" WHERE "id" = $1`
	p, err := scanPipeline(r.conn.QueryRow(ctx, q, id))
	return p, errors.WrapContext(classify(err, "Pipeline"), errors.Context{
		Path:   "postgres.Pipeline.FindByID.Scan",
		Params: errors.Params{"pipeline": id},
	})
}

// FindByRepository returns the oldest pipeline bound to the repository branch.
func (r Pipeline) FindByRepository(ctx context.Context, repository, branch string) (app.Pipeline, error) {
	q := `SELECT ` + pipelineColumns + ` FROM "pipelines"
		WHERE "repository" = $1 AND "branch" = $2 ORDER BY "id" LIMIT 1`
	p, err := scanPipeline(r.conn.QueryRow(ctx, q, repository, branch))
	return p, errors.WrapContext(classify(err, "Pipeline"), errors.Context{
		Path:   "postgres.Pipeline.FindByRepository.Scan",
		Params: errors.Params{"repository": repository, "branch": branch},
	})
}

// Add saves a new pipeline.
func (r Pipeline) Add(ctx context.Context, p app.Pipeline) (app.Pipeline, error) {
	q := `INSERT INTO "pipelines" ("name", "repository", "branch", "created_at", "updated_at")
		VALUES ($1, $2, $3, $4, $5) RETURNING "id"`
	err := r.conn.QueryRow(ctx, q, p.Name, p.Repository, p.Branch, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	return p, errors.WrapContext(err, errors.Context{Path: "postgres.Pipeline.Add.Scan"})
}
