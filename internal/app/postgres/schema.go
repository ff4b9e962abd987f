package postgres

import (
	"context"

	"github.com/beldeveloper/go-errors-context"
	"github.com/jackc/pgx/v4/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS "pipelines" (
		"id" BIGSERIAL PRIMARY KEY,
		"name" TEXT NOT NULL,
		"repository" TEXT NOT NULL,
		"branch" TEXT NOT NULL,
		"created_at" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"updated_at" TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS "pipelines_repository_branch_idx" ON "pipelines" ("repository", "branch")`,
	`CREATE TABLE IF NOT EXISTS "builds" (
		"id" BIGSERIAL PRIMARY KEY,
		"pipeline_id" BIGINT NOT NULL REFERENCES "pipelines" ("id"),
		"build_number" INTEGER NOT NULL,
		"status" TEXT NOT NULL,
		"commit_sha" TEXT NOT NULL,
		"commit_message" TEXT NOT NULL,
		"commit_author" TEXT NOT NULL,
		"started_at" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"completed_at" TIMESTAMPTZ,
		"duration" INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS "builds_pipeline_idx" ON "builds" ("pipeline_id", "build_number")`,
	`CREATE TABLE IF NOT EXISTS "build_steps" (
		"id" BIGSERIAL PRIMARY KEY,
		"build_id" BIGINT NOT NULL REFERENCES "builds" ("id"),
		"name" TEXT NOT NULL,
		"status" TEXT NOT NULL,
		"started_at" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"completed_at" TIMESTAMPTZ,
		"logs" TEXT NOT NULL DEFAULT '',
		"order" INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS "deployments" (
		"id" BIGSERIAL PRIMARY KEY,
		"build_id" BIGINT NOT NULL REFERENCES "builds" ("id"),
		"environment" TEXT NOT NULL,
		"status" TEXT NOT NULL,
		"deployed_at" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"version" TEXT NOT NULL DEFAULT '',
		"url" TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS "docker_images" (
		"id" BIGSERIAL PRIMARY KEY,
		"name" TEXT NOT NULL,
		"tag" TEXT NOT NULL,
		"repository" TEXT NOT NULL,
		"pull_count" INTEGER NOT NULL DEFAULT 0 CHECK ("pull_count" >= 0),
		"created_at" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"size" DOUBLE PRECISION NOT NULL DEFAULT 0,
		"description" TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS "docker_containers" (
		"id" BIGSERIAL PRIMARY KEY,
		"name" TEXT NOT NULL,
		"image_id" BIGINT NOT NULL REFERENCES "docker_images" ("id"),
		"status" TEXT NOT NULL,
		"created_at" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"ports" JSONB NOT NULL DEFAULT '[]',
		"volumes" JSONB,
		"environment" JSONB,
		"command" TEXT,
		"cpu_usage" DOUBLE PRECISION NOT NULL DEFAULT 0,
		"memory_usage" DOUBLE PRECISION NOT NULL DEFAULT 0,
		"restart_policy" TEXT NOT NULL DEFAULT 'no',
		"build_id" BIGINT REFERENCES "builds" ("id")
	)`,
	`CREATE TABLE IF NOT EXISTS "jenkins_jobs" (
		"id" BIGSERIAL PRIMARY KEY,
		"name" TEXT NOT NULL,
		"url" TEXT NOT NULL,
		"pipeline_id" BIGINT REFERENCES "pipelines" ("id"),
		"last_build_status" TEXT,
		"last_build_number" INTEGER,
		"last_build_time" TIMESTAMPTZ,
		"jenkins_job_definition" TEXT NOT NULL DEFAULT '',
		"created_at" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"updated_at" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"enabled" BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS "statistics" (
		"id" INTEGER PRIMARY KEY CHECK ("id" = 1),
		"successful_builds" INTEGER NOT NULL DEFAULT 0,
		"failed_builds" INTEGER NOT NULL DEFAULT 0,
		"total_deployments" INTEGER NOT NULL DEFAULT 0,
		"average_build_time" INTEGER NOT NULL DEFAULT 0,
		"updated_at" TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the tables that don't exist yet.
func Migrate(ctx context.Context, conn *pgxpool.Pool) error {
	for i, q := range schema {
		if _, err := conn.Exec(ctx, q); err != nil {
			return errors.WrapContext(err, errors.Context{
				Path:   "postgres.Migrate.Exec",
				Params: errors.Params{"statement": i},
			})
		}
	}
	return nil
}
