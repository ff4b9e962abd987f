package app

import (
	"context"
	"time"
)

// DefaultRestartPolicy is used for containers created without a restart policy.
const DefaultRestartPolicy = "no"

// DockerImage is a model that represents a docker image record.
type DockerImage struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Tag        string    `json:"tag"`
	Repository string    `json:"repository"`
	PullCount  int       `json:"pullCount"`
	CreatedAt  time.Time `json:"createdAt"`
	// Size is the image size in MB.
	Size        float64 `json:"size"`
	Description *string `json:"description"`
}

// ContainerPort maps a container port to a host port.
type ContainerPort struct {
	Internal int `json:"internal"`
	External int `json:"external"`
}

// DockerContainer is a model that represents a docker container record.
type DockerContainer struct {
	ID            uint64            `json:"id"`
	Name          string            `json:"name"`
	ImageID       uint64            `json:"imageId"`
	Status        ContainerStatus   `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
	Ports         []ContainerPort   `json:"ports"`
	Volumes       []string          `json:"volumes"`
	Environment   map[string]string `json:"environment"`
	Command       *string           `json:"command"`
	CPUUsage      float64           `json:"cpuUsage"`
	MemoryUsage   float64           `json:"memoryUsage"`
	RestartPolicy string            `json:"restartPolicy"`
	BuildID       *uint64           `json:"buildId"`
}

// FormAddImage represents a form of new docker image.
type FormAddImage struct {
	Name        string  `json:"name"`
	Tag         string  `json:"tag"`
	Repository  string  `json:"repository"`
	Size        float64 `json:"size"`
	Description *string `json:"description"`
}

// FormAddContainer represents a form of new docker container.
type FormAddContainer struct {
	Name          string            `json:"name"`
	ImageID       uint64            `json:"imageId"`
	Status        ContainerStatus   `json:"status"`
	Ports         []ContainerPort   `json:"ports"`
	Volumes       []string          `json:"volumes"`
	Environment   map[string]string `json:"environment"`
	Command       *string           `json:"command"`
	RestartPolicy string            `json:"restartPolicy"`
	BuildID       *uint64           `json:"buildId"`
}

// FormContainerStatus represents a form of the container status update.
type FormContainerStatus struct {
	ID     uint64          `json:"-"`
	Status ContainerStatus `json:"status"`
}

// FormContainerResources represents a form of the container resources sample.
type FormContainerResources struct {
	ID          uint64   `json:"-"`
	CPUUsage    *float64 `json:"cpuUsage"`
	MemoryUsage *float64 `json:"memoryUsage"`
}

// DockerSvc describes the docker images and containers service.
type DockerSvc interface {
	Images(context.Context) ([]DockerImage, error)
	Image(ctx context.Context, id uint64) (DockerImage, error)
	AddImage(context.Context, FormAddImage) (DockerImage, error)
	IncrementPullCount(ctx context.Context, id uint64) (DockerImage, error)
	Containers(context.Context) ([]DockerContainer, error)
	Container(ctx context.Context, id uint64) (DockerContainer, error)
	ContainersByBuild(ctx context.Context, buildID uint64) ([]DockerContainer, error)
	AddContainer(context.Context, FormAddContainer) (DockerContainer, error)
	UpdateContainerStatus(context.Context, FormContainerStatus) (DockerContainer, error)
	UpdateContainerResources(context.Context, FormContainerResources) (DockerContainer, error)
}

// DockerImageRepo describes interactions with the docker image DB.
type DockerImageRepo interface {
	FindAll(ctx context.Context) ([]DockerImage, error)
	FindByID(ctx context.Context, id uint64) (DockerImage, error)
	Add(ctx context.Context, img DockerImage) (DockerImage, error)
	IncrementPullCount(ctx context.Context, id uint64) (DockerImage, error)
}

// DockerContainerRepo describes interactions with the docker container DB.
type DockerContainerRepo interface {
	FindAll(ctx context.Context) ([]DockerContainer, error)
	FindByID(ctx context.Context, id uint64) (DockerContainer, error)
	FindByBuild(ctx context.Context, buildID uint64) ([]DockerContainer, error)
	Add(ctx context.Context, c DockerContainer) (DockerContainer, error)
	UpdateStatus(ctx context.Context, id uint64, status ContainerStatus) (DockerContainer, error)
	UpdateResources(ctx context.Context, id uint64, cpu, memory float64) (DockerContainer, error)
}
