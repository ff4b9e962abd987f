package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildStatusValid(t *testing.T) {
	for _, s := range []string{"success", "failed", "in_progress", "cancelled", "pending"} {
		assert.True(t, BuildStatus(s).Valid(), s)
	}
	for _, s := range []string{"", "running", "SUCCESS", "done"} {
		assert.False(t, BuildStatus(s).Valid(), s)
	}
	assert.True(t, BuildStatusFailed.Terminal())
	assert.False(t, BuildStatusInProgress.Terminal())
}

func TestStepStatusValid(t *testing.T) {
	assert.True(t, StepStatusInProgress.Valid())
	assert.False(t, StepStatus("cancelled").Valid())
}

func TestDeploymentStatusValid(t *testing.T) {
	assert.True(t, DeploymentStatusPending.Valid())
	assert.False(t, DeploymentStatus("cancelled").Valid())
}

func TestContainerStatusValid(t *testing.T) {
	for _, s := range ContainerStatuses {
		assert.True(t, s.Valid())
	}
	assert.False(t, ContainerStatus("success").Valid())
}
