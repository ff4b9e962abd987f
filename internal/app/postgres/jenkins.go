package postgres

import (
	"context"
	"time"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/go-errors-context"
	"github.com/jackc/pgx/v4/pgxpool"
)

const jenkinsColumns = `"id", "name", "url", "pipeline_id", "last_build_status", "last_build_number",
	"last_build_time", "jenkins_job_definition", "created_at", "updated_at", "enabled"`

// NewJenkinsJob creates a new instance of the repository.
func NewJenkinsJob(conn *pgxpool.Pool) app.JenkinsJobRepo {
	return JenkinsJob{conn: conn}
}

// JenkinsJob implements a repository.
type JenkinsJob struct {
	conn *pgxpool.Pool
}

func scanJenkinsJob(row rowScanner) (app.JenkinsJob, error) {
	var j app.JenkinsJob
	var status *string
	err := row.Scan(
		&j.ID, &j.Name, &j.URL, &j.PipelineID, &status, &j.LastBuildNumber,
		&j.LastBuildTime, &j.JenkinsJobDefinition, &j.CreatedAt, &j.UpdatedAt, &j.Enabled,
	)
	if status != nil {
		s := app.BuildStatus(*status)
		j.LastBuildStatus = &s
	}
	return j, err
}

func (r JenkinsJob) findMany(ctx context.Context, path string, q string, args ...interface{}) ([]app.JenkinsJob, error) {
	rows, err := r.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: path + ".Query"})
	}
	defer rows.Close()
	res := make([]app.JenkinsJob, 0)
	for rows.Next() {
		j, err := scanJenkinsJob(rows)
		if err != nil {
			return nil, errors.WrapContext(err, errors.Context{Path: path + ".Scan"})
		}
		res = append(res, j)
	}
	return res, errors.WrapContext(rows.Err(), errors.Context{Path: path + ".Rows"})
}

// FindAll returns all jobs.
func (r JenkinsJob) FindAll(ctx context.Context) ([]app.JenkinsJob, error) {
	q := `SELECT ` + jenkinsColumns + ` FROM "jenkins_jobs" ORDER BY "id"`
	return r.findMany(ctx, "postgres.JenkinsJob.FindAll", q)
}

// FindByID returns the job with the specific ID.
func (r JenkinsJob) FindByID(ctx context.Context, id uint64) (app.JenkinsJob, error) {
	q := `SELECT ` + jenkinsColumns + ` FROM "jenkins_jobs" WHERE "id" = $1`
	j, err := scanJenkinsJob(r.conn.QueryRow(ctx, q, id))
	return j, errors.WrapContext(classify(err, "Jenkins job"), errors.Context{
		Path:   "postgres.JenkinsJob.FindByID.Scan",
		Params: errors.Params{"job": id},
	})
}

// FindByPipeline returns the jobs bound to the pipeline.
func (r JenkinsJob) FindByPipeline(ctx context.Context, pipelineID uint64) ([]app.JenkinsJob, error) {
	q := `SELECT ` + jenkinsColumns + ` FROM "jenkins_jobs" WHERE "pipeline_id" = $1 ORDER BY "id"`
	return r.findMany(ctx, "postgres.JenkinsJob.FindByPipeline", q, pipelineID)
}

// Add saves a new job.
func (r JenkinsJob) Add(ctx context.Context, j app.JenkinsJob) (app.JenkinsJob, error) {
	var status *string
	if j.LastBuildStatus != nil {
		s := string(*j.LastBuildStatus)
		status = &s
	}
	q := `INSERT INTO "jenkins_jobs" ("name", "url", "pipeline_id", "last_build_status", "last_build_number",
		"last_build_time", "jenkins_job_definition", "created_at", "updated_at", "enabled")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING "id"`
	err := r.conn.QueryRow(
		ctx, q, j.Name, j.URL, j.PipelineID, status, j.LastBuildNumber,
		j.LastBuildTime, j.JenkinsJobDefinition, j.CreatedAt, j.UpdatedAt, j.Enabled,
	).Scan(&j.ID)
	return j, errors.WrapContext(classify(err, "Pipeline"), errors.Context{Path: "postgres.JenkinsJob.Add.Scan"})
}

func (r JenkinsJob) update(ctx context.Context, path string, id uint64, set string, args ...interface{}) (app.JenkinsJob, error) {
	q := `UPDATE "jenkins_jobs" SET ` + set + `, "updated_at" = $2 WHERE "id" = $1 RETURNING ` + jenkinsColumns
	j, err := scanJenkinsJob(r.conn.QueryRow(ctx, q, append([]interface{}{id, time.Now()}, args...)...))
	return j, errors.WrapContext(classify(err, "Jenkins job"), errors.Context{
		Path:   path,
		Params: errors.Params{"job": id},
	})
}

// UpdateStatus saves the result of the last job run.
func (r JenkinsJob) UpdateStatus(
	ctx context.Context,
	id uint64,
	status app.BuildStatus,
	number int,
	at time.Time,
) (app.JenkinsJob, error) {
	return r.update(
		ctx, "postgres.JenkinsJob.UpdateStatus.Scan", id,
		`"last_build_status" = $3, "last_build_number" = $4, "last_build_time" = $5`,
		string(status), number, at,
	)
}

// UpdateDefinition overwrites the job definition.
func (r JenkinsJob) UpdateDefinition(ctx context.Context, id uint64, definition string) (app.JenkinsJob, error) {
	return r.update(ctx, "postgres.JenkinsJob.UpdateDefinition.Scan", id, `"jenkins_job_definition" = $3`, definition)
}

// SetEnabled enables or disables the job.
func (r JenkinsJob) SetEnabled(ctx context.Context, id uint64, enabled bool) (app.JenkinsJob, error) {
	return r.update(ctx, "postgres.JenkinsJob.SetEnabled.Scan", id, `"enabled" = $3`, enabled)
}
