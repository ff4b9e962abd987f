package app

import (
	"context"

	"github.com/beldeveloper/cidash/pkg/github"
)

// SimulationLog is appended to every step completed by the simulator.
const SimulationLog = "Simulated logs for step execution"

// DeployTarget is the environment that simulated builds are deployed to, used for DI.
type DeployTarget struct {
	Environment string
	URL         string
}

// SimulationResult describes the outcome of a simulated build.
type SimulationResult struct {
	Message    string      `json:"message"`
	Build      Build       `json:"build"`
	Steps      []BuildStep `json:"steps"`
	Deployment Deployment  `json:"deployment"`
}

// SimulationSvc describes the service that fast-forwards builds to success.
type SimulationSvc interface {
	Simulate(ctx context.Context, buildID uint64) (SimulationResult, error)
}

// WebhookResult describes the outcome of a webhook delivery.
type WebhookResult struct {
	Message string  `json:"message"`
	BuildID *uint64 `json:"buildId,omitempty"`
	// Triggered is set when the delivery created a build.
	Triggered bool `json:"-"`
}

// WebhookSvc describes the VCS webhook intake.
type WebhookSvc interface {
	Handle(ctx context.Context, event string, payload []byte) (WebhookResult, error)
	Push(ctx context.Context, e github.PushEvent) (WebhookResult, error)
}
