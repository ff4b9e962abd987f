package app

// BuildStatus is the status of a build or of the last Jenkins job run.
type BuildStatus string

const (
	// BuildStatusSuccess means the build finished successfully.
	BuildStatusSuccess BuildStatus = "success"
	// BuildStatusFailed means the build finished with an error.
	BuildStatusFailed BuildStatus = "failed"
	// BuildStatusInProgress means the build is running.
	BuildStatusInProgress BuildStatus = "in_progress"
	// BuildStatusCancelled means the build was stopped before finishing.
	BuildStatusCancelled BuildStatus = "cancelled"
	// BuildStatusPending means the build is waiting to be started.
	BuildStatusPending BuildStatus = "pending"
)

// BuildStatuses lists the allowed build statuses.
var BuildStatuses = []BuildStatus{
	BuildStatusSuccess,
	BuildStatusFailed,
	BuildStatusInProgress,
	BuildStatusCancelled,
	BuildStatusPending,
}

// Valid reports whether the status is one of BuildStatuses.
func (s BuildStatus) Valid() bool {
	for _, v := range BuildStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether the status finishes the build.
func (s BuildStatus) Terminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusFailed || s == BuildStatusCancelled
}

// StepStatus is the status of a build step.
type StepStatus string

const (
	StepStatusSuccess    StepStatus = "success"
	StepStatusFailed     StepStatus = "failed"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusPending    StepStatus = "pending"
)

// StepStatuses lists the allowed build step statuses.
var StepStatuses = []StepStatus{StepStatusSuccess, StepStatusFailed, StepStatusInProgress, StepStatusPending}

// Valid reports whether the status is one of StepStatuses.
func (s StepStatus) Valid() bool {
	for _, v := range StepStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// DeploymentStatus is the status of a deployment.
type DeploymentStatus string

const (
	DeploymentStatusSuccess    DeploymentStatus = "success"
	DeploymentStatusFailed     DeploymentStatus = "failed"
	DeploymentStatusInProgress DeploymentStatus = "in_progress"
	DeploymentStatusPending    DeploymentStatus = "pending"
)

// DeploymentStatuses lists the allowed deployment statuses.
var DeploymentStatuses = []DeploymentStatus{
	DeploymentStatusSuccess,
	DeploymentStatusFailed,
	DeploymentStatusInProgress,
	DeploymentStatusPending,
}

// Valid reports whether the status is one of DeploymentStatuses.
func (s DeploymentStatus) Valid() bool {
	for _, v := range DeploymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ContainerStatus is the status of a docker container.
type ContainerStatus string

const (
	ContainerStatusRunning    ContainerStatus = "running"
	ContainerStatusStopped    ContainerStatus = "stopped"
	ContainerStatusExited     ContainerStatus = "exited"
	ContainerStatusCreated    ContainerStatus = "created"
	ContainerStatusRestarting ContainerStatus = "restarting"
	ContainerStatusPaused     ContainerStatus = "paused"
)

// ContainerStatuses lists the allowed container statuses.
var ContainerStatuses = []ContainerStatus{
	ContainerStatusRunning,
	ContainerStatusStopped,
	ContainerStatusExited,
	ContainerStatusCreated,
	ContainerStatusRestarting,
	ContainerStatusPaused,
}

// Valid reports whether the status is one of ContainerStatuses.
func (s ContainerStatus) Valid() bool {
	for _, v := range ContainerStatuses {
		if s == v {
			return true
		}
	}
	return false
}
