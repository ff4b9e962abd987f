package postgres

import (
	"context"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/go-errors-context"
	"github.com/jackc/pgx/v4/pgxpool"
)

const deploymentColumns = `"id", "build_id", "environment", "status", "deployed_at", "version", "url"`

// NewDeployment creates a new instance of the repository.
func NewDeployment(conn *pgxpool.Pool) app.DeploymentRepo {
	return Deployment{conn: conn}
}

// Deployment implements a repository.
type Deployment struct {
	conn *pgxpool.Pool
}

func scanDeployment(row rowScanner) (app.Deployment, error) {
	var d app.Deployment
	var status string
	err := row.Scan(&d.ID, &d.BuildID, &d.Environment, &status, &d.DeployedAt, &d.Version, &d.URL)
	d.Status = app.DeploymentStatus(status)
	return d, err
}

func (r Deployment) findMany(ctx context.Context, path string, q string, args ...interface{}) ([]app.Deployment, error) {
	rows, err := r.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: path + ".Query"})
	}
	defer rows.Close()
	res := make([]app.Deployment, 0)
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, errors.WrapContext(err, errors.Context{Path: path + ".Scan"})
		}
		res = append(res, d)
	}
	return res, errors.WrapContext(rows.Err(), errors.Context{Path: path + ".Rows"})
}

// FindAll returns all deployments, the most recent first.
func (r Deployment) FindAll(ctx context.Context) ([]app.Deployment, error) {
	q := `SELECT ` + deploymentColumns + ` FROM "deployments" ORDER BY "deployed_at" DESC, "id" DESC`
	return r.findMany(ctx, "postgres.Deployment.FindAll", q)
}

// FindByID returns the one deployment with the specific ID.
func (r Deployment) FindByID(ctx context.Context, id uint64) (app.Deployment, error) {
	q := `SELECT ` + deploymentColumns + ` FROM "deployments" WHERE "id" = $1`
	d, err := scanDeployment(r.conn.QueryRow(ctx, q, id))
	return d, errors.WrapContext(classify(err, "Deployment"), errors.Context{
		Path:   "postgres.Deployment.FindByID.Scan",
		Params: errors.Params{"deployment": id},
	})
}

// FindByBuild returns the deployments of the build, the most recent first.
func (r Deployment) FindByBuild(ctx context.Context, buildID uint64) ([]app.Deployment, error) {
	q := `SELECT ` + deploymentColumns + ` FROM "deployments" WHERE "build_id" = $1 ORDER BY "deployed_at" DESC, "id" DESC`
	return r.findMany(ctx, "postgres.Deployment.FindByBuild", q, buildID)
}

// Add saves a new deployment.
func (r Deployment) Add(ctx context.Context, d app.Deployment) (app.Deployment, error) {
	q := `INSERT INTO "deployments" ("build_id", "environment", "status", "deployed_at", "version", "url")
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING "id"`
	err := r.conn.QueryRow(ctx, q, d.BuildID, d.Environment, string(d.Status), d.DeployedAt, d.Version, d.URL).Scan(&d.ID)
	return d, errors.WrapContext(classify(err, "Build"), errors.Context{
		Path:   "postgres.Deployment.Add.Scan",
		Params: errors.Params{"build": d.BuildID},
	})
}
