package svc

import (
	"context"
	"time"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/go-errors-context"
	log "github.com/sirupsen/logrus"
)

// NewDocker creates a new instance of the docker service.
func NewDocker(imageRepo app.DockerImageRepo, containerRepo app.DockerContainerRepo) app.DockerSvc {
	return Docker{
		imageRepo:     imageRepo,
		containerRepo: containerRepo,
	}
}

// Docker is a service that manages the docker image and container records.
type Docker struct {
	imageRepo     app.DockerImageRepo
	containerRepo app.DockerContainerRepo
}

// Images returns all images.
func (s Docker) Images(ctx context.Context) ([]app.DockerImage, error) {
	res, err := s.imageRepo.FindAll(ctx)
	return res, errors.WrapContext(err, errors.Context{Path: "svc.Docker.Images.FindAll"})
}

// Image returns the image by ID.
func (s Docker) Image(ctx context.Context, id uint64) (app.DockerImage, error) {
	res, err := s.imageRepo.FindByID(ctx, id)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Docker.Image.FindByID",
		Params: errors.Params{"image": id},
	})
}

// AddImage saves a new image with zero pulls.
func (s Docker) AddImage(ctx context.Context, f app.FormAddImage) (app.DockerImage, error) {
	if err := validateImage(f); err != nil {
		return app.DockerImage{}, err
	}
	img, err := s.imageRepo.Add(ctx, app.DockerImage{
		Name:        f.Name,
		Tag:         f.Tag,
		Repository:  f.Repository,
		CreatedAt:   time.Now(),
		Size:        f.Size,
		Description: f.Description,
	})
	if err != nil {
		return img, errors.WrapContext(err, errors.Context{
			Path:   "svc.Docker.AddImage.Add",
			Params: errors.Params{"name": f.Name, "tag": f.Tag},
		})
	}
	log.WithFields(log.Fields{"image": img.ID, "name": img.Name, "tag": img.Tag}).Info("docker image created")
	return img, nil
}

// IncrementPullCount counts one more pull of the image.
func (s Docker) IncrementPullCount(ctx context.Context, id uint64) (app.DockerImage, error) {
	res, err := s.imageRepo.IncrementPullCount(ctx, id)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Docker.IncrementPullCount.IncrementPullCount",
		Params: errors.Params{"image": id},
	})
}

// Containers returns all containers.
func (s Docker) Containers(ctx context.Context) ([]app.DockerContainer, error) {
	res, err := s.containerRepo.FindAll(ctx)
	return res, errors.WrapContext(err, errors.Context{Path: "svc.Docker.Containers.FindAll"})
}

// Container returns the container by ID.
func (s Docker) Container(ctx context.Context, id uint64) (app.DockerContainer, error) {
	res, err := s.containerRepo.FindByID(ctx, id)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Docker.Container.FindByID",
		Params: errors.Params{"container": id},
	})
}

// ContainersByBuild returns the containers started for the build.
func (s Docker) ContainersByBuild(ctx context.Context, buildID uint64) ([]app.DockerContainer, error) {
	res, err := s.containerRepo.FindByBuild(ctx, buildID)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Docker.ContainersByBuild.FindByBuild",
		Params: errors.Params{"build": buildID},
	})
}

// AddContainer saves a new container record.
func (s Docker) AddContainer(ctx context.Context, f app.FormAddContainer) (app.DockerContainer, error) {
	if f.Status == "" {
		f.Status = app.ContainerStatusCreated
	}
	if err := validateContainer(f); err != nil {
		return app.DockerContainer{}, err
	}
	c := app.DockerContainer{
		Name:          f.Name,
		ImageID:       f.ImageID,
		Status:        f.Status,
		CreatedAt:     time.Now(),
		Ports:         f.Ports,
		Volumes:       f.Volumes,
		Environment:   f.Environment,
		Command:       f.Command,
		RestartPolicy: f.RestartPolicy,
		BuildID:       f.BuildID,
	}
	if c.Ports == nil {
		c.Ports = []app.ContainerPort{}
	}
	if c.Volumes == nil {
		c.Volumes = []string{}
	}
	if c.Environment == nil {
		c.Environment = map[string]string{}
	}
	if c.RestartPolicy == "" {
		c.RestartPolicy = app.DefaultRestartPolicy
	}
	c, err := s.containerRepo.Add(ctx, c)
	if err != nil {
		return c, errors.WrapContext(err, errors.Context{
			Path:   "svc.Docker.AddContainer.Add",
			Params: errors.Params{"name": f.Name, "image": f.ImageID},
		})
	}
	log.WithFields(log.Fields{"container": c.ID, "image": c.ImageID, "status": c.Status}).Info("docker container created")
	return c, nil
}

// UpdateContainerStatus overwrites the container status.
func (s Docker) UpdateContainerStatus(ctx context.Context, f app.FormContainerStatus) (app.DockerContainer, error) {
	if !f.Status.Valid() {
		var v validation
		v.oneOf("status", false, app.ContainerStatuses)
		return app.DockerContainer{}, v.err("Invalid status value")
	}
	res, err := s.containerRepo.UpdateStatus(ctx, f.ID, f.Status)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Docker.UpdateContainerStatus.UpdateStatus",
		Params: errors.Params{"container": f.ID, "status": f.Status},
	})
}

// UpdateContainerResources stores the latest cpu and memory usage sample.
func (s Docker) UpdateContainerResources(ctx context.Context, f app.FormContainerResources) (app.DockerContainer, error) {
	if err := validateContainerResources(f); err != nil {
		return app.DockerContainer{}, err
	}
	res, err := s.containerRepo.UpdateResources(ctx, f.ID, *f.CPUUsage, *f.MemoryUsage)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Docker.UpdateContainerResources.UpdateResources",
		Params: errors.Params{"container": f.ID},
	})
}
