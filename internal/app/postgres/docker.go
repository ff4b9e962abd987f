package postgres

import (
	"context"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/go-errors-context"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	imageColumns     = `"id", "name", "tag", "repository", "pull_count", "created_at", "size", "description"`
	containerColumns = `"id", "name", "image_id", "status", "created_at", "ports", "volumes", "environment",
		"command", "cpu_usage", "memory_usage", "restart_policy", "build_id"`
)

// NewDockerImage creates a new instance of the repository.
func NewDockerImage(conn *pgxpool.Pool) app.DockerImageRepo {
	return DockerImage{conn: conn}
}

// DockerImage implements a repository.
type DockerImage struct {
	conn *pgxpool.Pool
}

func scanImage(row rowScanner) (app.DockerImage, error) {
	var img app.DockerImage
	err := row.Scan(
		&img.ID, &img.Name, &img.Tag, &img.Repository, &img.PullCount, &img.CreatedAt, &img.Size, &img.Description,
	)
	return img, err
}

// FindAll returns all images, the newest first.
func (r DockerImage) FindAll(ctx context.Context) ([]app.DockerImage, error) {
	q := `SELECT ` + imageColumns + ` FROM "docker_images" ORDER BY "created_at" DESC, "id" DESC`
	rows, err := r.conn.Query(ctx, q)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "postgres.DockerImage.FindAll.Query"})
	}
	defer rows.Close()
	res := make([]app.DockerImage, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, errors.WrapContext(err, errors.Context{Path: "postgres.DockerImage.FindAll.Scan"})
		}
		res = append(res, img)
	}
	return res, errors.WrapContext(rows.Err(), errors.Context{Path: "postgres.DockerImage.FindAll.Rows"})
}

// FindByID returns the image with the specific ID.
func (r DockerImage) FindByID(ctx context.Context, id uint64) (app.DockerImage, error) {
	q := `SELECT ` + imageColumns + ` FROM "docker_images" WHERE "id" = $1`
	img, err := scanImage(r.conn.QueryRow(ctx, q, id))
	return img, errors.WrapContext(classify(err, "Docker image"), errors.Context{
		Path:   "postgres.DockerImage.FindByID.Scan",
		Params: errors.Params{"image": id},
	})
}

// Add saves a new image.
func (r DockerImage) Add(ctx context.Context, img app.DockerImage) (app.DockerImage, error) {
	q := `INSERT INTO "docker_images" ("name", "tag", "repository", "pull_count", "created_at", "size", "description")
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING "id"`
	err := r.conn.QueryRow(
		ctx, q, img.Name, img.Tag, img.Repository, img.PullCount, img.CreatedAt, img.Size, img.Description,
	).Scan(&img.ID)
	return img, errors.WrapContext(err, errors.Context{Path: "postgres.DockerImage.Add.Scan"})
}

// IncrementPullCount adds one pull to the image counter.
func (r DockerImage) IncrementPullCount(ctx context.Context, id uint64) (app.DockerImage, error) {
	q := `UPDATE "docker_images" SET "pull_count" = "pull_count" + 1 WHERE "id" = $1 RETURNING ` + imageColumns
	img, err := scanImage(r.conn.QueryRow(ctx, q, id))
	return img, errors.WrapContext(classify(err, "Docker image"), errors.Context{
		Path:   "postgres.DockerImage.IncrementPullCount.Scan",
		Params: errors.Params{"image": id},
	})
}

// NewDockerContainer creates a new instance of the repository.
func NewDockerContainer(conn *pgxpool.Pool) app.DockerContainerRepo {
	return DockerContainer{conn: conn}
}

// DockerContainer implements a repository.
type DockerContainer struct {
	conn *pgxpool.Pool
}

func scanContainer(row rowScanner) (app.DockerContainer, error) {
	var c app.DockerContainer
	var status string
	err := row.Scan(
		&c.ID, &c.Name, &c.ImageID, &status, &c.CreatedAt, &c.Ports, &c.Volumes, &c.Environment,
		&c.Command, &c.CPUUsage, &c.MemoryUsage, &c.RestartPolicy, &c.BuildID,
	)
	c.Status = app.ContainerStatus(status)
	return c, err
}

func (r DockerContainer) findMany(ctx context.Context, path string, q string, args ...interface{}) ([]app.DockerContainer, error) {
	rows, err := r.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: path + ".Query"})
	}
	defer rows.Close()
	res := make([]app.DockerContainer, 0)
	for rows.Next() {
		c, err := scanContainer(rows)
		if err != nil {
			return nil, errors.WrapContext(err, errors.Context{Path: path + ".Scan"})
		}
		res = append(res, c)
	}
	return res, errors.WrapContext(rows.Err(), errors.Context{Path: path + ".Rows"})
}

// FindAll returns all containers, the newest first.
func (r DockerContainer) FindAll(ctx context.Context) ([]app.DockerContainer, error) {
	q := `SELECT ` + containerColumns + ` FROM "docker_containers" ORDER BY "created_at" DESC, "id" DESC`
	return r.findMany(ctx, "postgres.DockerContainer.FindAll", q)
}

// FindByID returns the container with the specific ID.
func (r DockerContainer) FindByID(ctx context.Context, id uint64) (app.DockerContainer, error) {
	q := `SELECT ` + containerColumns + ` FROM "docker_containers" WHERE "id" = $1`
	c, err := scanContainer(r.conn.QueryRow(ctx, q, id))
	return c, errors.WrapContext(classify(err, "Docker container"), errors.Context{
		Path:   "postgres.DockerContainer.FindByID.Scan",
		Params: errors.Params{"container": id},
	})
}

// FindByBuild returns the containers started for the build.
func (r DockerContainer) FindByBuild(ctx context.Context, buildID uint64) ([]app.DockerContainer, error) {
	q := `SELECT ` + containerColumns + ` FROM "docker_containers" WHERE "build_id" = $1 ORDER BY "created_at" DESC, "id" DESC`
	return r.findMany(ctx, "postgres.DockerContainer.FindByBuild", q, buildID)
}

// Add saves a new container.
func (r DockerContainer) Add(ctx context.Context, c app.DockerContainer) (app.DockerContainer, error) {
	q := `INSERT INTO "docker_containers" ("name", "image_id", "status", "created_at", "ports", "volumes",
		"environment", "command", "cpu_usage", "memory_usage", "restart_policy", "build_id")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING "id"`
	err := r.conn.QueryRow(
		ctx, q, c.Name, c.ImageID, string(c.Status), c.CreatedAt, c.Ports, c.Volumes,
		c.Environment, c.Command, c.CPUUsage, c.MemoryUsage, c.RestartPolicy, c.BuildID,
	).Scan(&c.ID)
	return c, errors.WrapContext(classify(err, "Docker image"), errors.Context{
		Path:   "postgres.DockerContainer.Add.Scan",
		Params: errors.Params{"image": c.ImageID},
	})
}

// UpdateStatus overwrites the container status.
func (r DockerContainer) UpdateStatus(ctx context.Context, id uint64, status app.ContainerStatus) (app.DockerContainer, error) {
	q := `UPDATE "docker_containers" SET "status" = $2 WHERE "id" = $1 RETURNING ` + containerColumns
	c, err := scanContainer(r.conn.QueryRow(ctx, q, id, string(status)))
	return c, errors.WrapContext(classify(err, "Docker container"), errors.Context{
		Path:   "postgres.DockerContainer.UpdateStatus.Scan",
		Params: errors.Params{"container": id, "status": status},
	})
}

// UpdateResources stores the latest resource usage sample.
func (r DockerContainer) UpdateResources(ctx context.Context, id uint64, cpu, memory float64) (app.DockerContainer, error) {
	q := `UPDATE "docker_containers" SET "cpu_usage" = $2, "memory_usage" = $3 WHERE "id" = $1 RETURNING ` + containerColumns
	c, err := scanContainer(r.conn.QueryRow(ctx, q, id, cpu, memory))
	return c, errors.WrapContext(classify(err, "Docker container"), errors.Context{
		Path:   "postgres.DockerContainer.UpdateResources.Scan",
		Params: errors.Params{"container": id},
	})
}
