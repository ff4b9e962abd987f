//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/beldeveloper/cidash/internal/app/http"
	"github.com/beldeveloper/cidash/internal/app/metrics"
	"github.com/beldeveloper/cidash/internal/app/postgres"
	"github.com/beldeveloper/cidash/internal/app/svc"
	"github.com/beldeveloper/cidash/internal/config"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
)

func initializeContainer(ctx context.Context, cfg config.Config) (container, func(), error) {
	wire.Build(
		postgres.NewPipeline,
		postgres.NewBuild,
		postgres.NewStep,
		postgres.NewDeployment,
		postgres.NewStatistics,
		postgres.NewDockerImage,
		postgres.NewDockerContainer,
		postgres.NewJenkinsJob,
		svc.NewPipeline,
		svc.NewBuild,
		svc.NewDeployment,
		svc.NewStatistics,
		svc.NewDocker,
		svc.NewJenkins,
		svc.NewSimulator,
		svc.NewWebhook,
		metrics.NewRegistry,
		wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
		newCollector,
		http.NewHandler,
		http.NewRouter,
		newContainer,
		newEnv,
		newDeployTarget,
		newPostgresConn,
		newHealthServer,
	)
	return container{}, nil, nil
}
