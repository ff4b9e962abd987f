package svc

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/cidash/internal/app/metrics"
	"github.com/beldeveloper/go-errors-context"
	log "github.com/sirupsen/logrus"
)

const simulationDoneMsg = "Build simulation completed successfully"

// NewSimulator creates a new instance of the simulation service.
func NewSimulator(
	buildSvc app.BuildSvc,
	deploySvc app.DeploymentSvc,
	statsSvc app.StatisticsSvc,
	target app.DeployTarget,
	collector *metrics.Collector,
) app.SimulationSvc {
	return Simulator{
		buildSvc:  buildSvc,
		deploySvc: deploySvc,
		statsSvc:  statsSvc,
		target:    target,
		metrics:   collector,
		now:       time.Now,
	}
}

// Simulator fast-forwards a build to success and deploys it.
// The writes are not atomic: on failure the earlier writes stay applied.
type Simulator struct {
	buildSvc  app.BuildSvc
	deploySvc app.DeploymentSvc
	statsSvc  app.StatisticsSvc
	target    app.DeployTarget
	metrics   *metrics.Collector
	now       func() time.Time
}

// Simulate completes every step of the build, marks the build successful and creates the deployment.
func (s Simulator) Simulate(ctx context.Context, buildID uint64) (app.SimulationResult, error) {
	var res app.SimulationResult
	b, err := s.buildSvc.Get(ctx, buildID)
	if err != nil {
		return res, errors.WrapContext(err, errors.Context{
			Path:   "svc.Simulator.Simulate.Get",
			Params: errors.Params{"build": buildID},
		})
	}
	steps, err := s.buildSvc.Steps(ctx, buildID)
	if err != nil {
		return res, errors.WrapContext(err, errors.Context{
			Path:   "svc.Simulator.Simulate.Steps",
			Params: errors.Params{"build": buildID},
		})
	}
	now := s.now()
	logs := app.SimulationLog
	for i, step := range steps {
		steps[i], err = s.buildSvc.UpdateStep(ctx, app.FormStepUpdate{
			ID:          step.ID,
			Status:      app.StepStatusSuccess,
			CompletedAt: &now,
			Logs:        &logs,
		})
		if err != nil {
			return res, errors.WrapContext(err, errors.Context{
				Path:   "svc.Simulator.Simulate.UpdateStep",
				Params: errors.Params{"build": buildID, "step": step.ID},
			})
		}
	}
	duration := int(now.Sub(b.StartedAt) / time.Second)
	if duration < 0 {
		duration = 0
	}
	b, err = s.buildSvc.UpdateStatus(ctx, app.FormBuildStatus{
		ID:          buildID,
		Status:      app.BuildStatusSuccess,
		CompletedAt: &now,
		Duration:    &duration,
	})
	if err != nil {
		return res, errors.WrapContext(err, errors.Context{
			Path:   "svc.Simulator.Simulate.UpdateStatus",
			Params: errors.Params{"build": buildID},
		})
	}
	d, err := s.deploySvc.Add(ctx, app.FormAddDeployment{
		BuildID:     buildID,
		Environment: s.target.Environment,
		Status:      app.DeploymentStatusSuccess,
		DeployedAt:  &now,
		Version:     Version(b.BuildNumber),
		URL:         s.target.URL,
	})
	if err != nil {
		return res, errors.WrapContext(err, errors.Context{
			Path:   "svc.Simulator.Simulate.AddDeployment",
			Params: errors.Params{"build": buildID},
		})
	}
	err = s.statsSvc.RecordBuildTime(ctx, duration)
	if err != nil {
		return res, errors.WrapContext(err, errors.Context{
			Path:   "svc.Simulator.Simulate.RecordBuildTime",
			Params: errors.Params{"build": buildID, "duration": duration},
		})
	}
	s.metrics.Simulation()
	log.WithFields(log.Fields{
		"build":      b.ID,
		"duration":   duration,
		"deployment": d.ID,
		"version":    d.Version,
	}).Info("build simulated")
	return app.SimulationResult{
		Message:    simulationDoneMsg,
		Build:      b,
		Steps:      steps,
		Deployment: d,
	}, nil
}

// Version returns the deployment version of the build number, e.g. v1.0.7.
func Version(buildNumber int) string {
	if buildNumber < 0 {
		buildNumber = 0
	}
	raw := fmt.Sprintf("1.0.%d", buildNumber)
	v, err := semver.NewVersion(raw)
	if err != nil {
		return "v" + raw
	}
	return "v" + v.String()
}
