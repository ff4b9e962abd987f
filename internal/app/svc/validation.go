package svc

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/cidash/internal/app/errtype"
)

// validation collects the invalid fields of a form.
type validation struct {
	fields []errtype.FieldError
}

func (v *validation) fail(field, msg string) {
	v.fields = append(v.fields, errtype.FieldError{Field: field, Message: msg})
}

func (v *validation) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.fail(field, "must not be empty")
	}
}

func (v *validation) requiredID(field string, id uint64) {
	if id == 0 {
		v.fail(field, "is required")
	}
}

func (v *validation) nonNegative(field string, n float64) {
	if n < 0 {
		v.fail(field, "must not be negative")
	}
}

func (v *validation) oneOf(field string, valid bool, allowed interface{}) {
	if !valid {
		v.fail(field, fmt.Sprintf("invalid value; allowed values: %v", allowed))
	}
}

func (v *validation) err(msg string) error {
	if len(v.fields) == 0 {
		return nil
	}
	return errtype.BadInput(msg, v.fields...)
}

func validatePipeline(f app.FormAddPipeline) error {
	var v validation
	v.required("name", f.Name)
	v.required("repository", f.Repository)
	v.required("branch", f.Branch)
	return v.err("Invalid pipeline data")
}

func validateBuild(f app.FormAddBuild) error {
	var v validation
	v.requiredID("pipelineId", f.PipelineID)
	v.oneOf("status", f.Status.Valid(), app.BuildStatuses)
	v.required("commitSha", f.CommitSha)
	v.required("commitMessage", f.CommitMessage)
	v.required("commitAuthor", f.CommitAuthor)
	return v.err("Invalid build data")
}

func validateBuildStatus(f app.FormBuildStatus) error {
	if !f.Status.Valid() {
		return errtype.BadInput("Invalid status value", errtype.FieldError{
			Field:   "status",
			Message: fmt.Sprintf("invalid value; allowed values: %v", app.BuildStatuses),
		})
	}
	if f.Duration != nil && *f.Duration < 0 {
		return errtype.BadInput("Invalid duration value", errtype.FieldError{Field: "duration", Message: "must not be negative"})
	}
	return nil
}

func validateStep(f app.FormAddStep) error {
	var v validation
	v.requiredID("buildId", f.BuildID)
	v.required("name", f.Name)
	v.oneOf("status", f.Status.Valid(), app.StepStatuses)
	if f.Order < 1 {
		v.fail("order", "must be positive")
	}
	return v.err("Invalid build step data")
}

func validateStepUpdate(f app.FormStepUpdate) error {
	if !f.Status.Valid() {
		return errtype.BadInput("Invalid status value", errtype.FieldError{
			Field:   "status",
			Message: fmt.Sprintf("invalid value; allowed values: %v", app.StepStatuses),
		})
	}
	return nil
}

func validateDeployment(f app.FormAddDeployment) error {
	var v validation
	v.requiredID("buildId", f.BuildID)
	v.required("environment", f.Environment)
	v.oneOf("status", f.Status.Valid(), app.DeploymentStatuses)
	if f.Version != "" {
		if _, err := semver.NewVersion(f.Version); err != nil {
			v.fail("version", err.Error())
		}
	}
	return v.err("Invalid deployment data")
}

func validateImage(f app.FormAddImage) error {
	var v validation
	v.required("name", f.Name)
	v.required("tag", f.Tag)
	v.required("repository", f.Repository)
	v.nonNegative("size", f.Size)
	return v.err("Invalid docker image data")
}

func validateContainer(f app.FormAddContainer) error {
	var v validation
	v.required("name", f.Name)
	v.requiredID("imageId", f.ImageID)
	v.oneOf("status", f.Status.Valid(), app.ContainerStatuses)
	for i, p := range f.Ports {
		if p.Internal <= 0 || p.Internal > 65535 || p.External < 0 || p.External > 65535 {
			v.fail(fmt.Sprintf("ports[%d]", i), "port is out of range")
		}
	}
	return v.err("Invalid docker container data")
}

func validateContainerResources(f app.FormContainerResources) error {
	var v validation
	if f.CPUUsage == nil {
		v.fail("cpuUsage", "is required")
	} else {
		v.nonNegative("cpuUsage", *f.CPUUsage)
	}
	if f.MemoryUsage == nil {
		v.fail("memoryUsage", "is required")
	} else {
		v.nonNegative("memoryUsage", *f.MemoryUsage)
	}
	return v.err("Invalid resource usage data")
}

func validateJenkinsJob(f app.FormAddJenkinsJob) error {
	var v validation
	v.required("name", f.Name)
	v.required("url", f.URL)
	return v.err("Invalid Jenkins job data")
}

func validateJenkinsJobStatus(f app.FormJenkinsJobStatus) error {
	var v validation
	v.oneOf("status", f.Status.Valid(), app.BuildStatuses)
	if f.BuildNumber < 0 {
		v.fail("buildNumber", "must not be negative")
	}
	return v.err("Invalid Jenkins job status data")
}
