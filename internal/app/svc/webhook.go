package svc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/beldeveloper/cidash/internal/app"
	"github.com/beldeveloper/cidash/internal/app/errtype"
	"github.com/beldeveloper/cidash/internal/app/metrics"
	"github.com/beldeveloper/cidash/pkg/github"
	"github.com/beldeveloper/go-errors-context"
	log "github.com/sirupsen/logrus"
)

const (
	webhookTriggeredMsg  = "Build triggered"
	webhookNoPipelineMsg = "No pipeline configured for this repository/branch"
	webhookNoEventMsg    = "Missing event header"
)

// NewWebhook creates a new instance of the webhook intake.
func NewWebhook(pipelineRepo app.PipelineRepo, buildSvc app.BuildSvc, collector *metrics.Collector) app.WebhookSvc {
	return Webhook{
		pipelineRepo: pipelineRepo,
		buildSvc:     buildSvc,
		metrics:      collector,
	}
}

// Webhook turns the VCS push notifications into builds.
type Webhook struct {
	pipelineRepo app.PipelineRepo
	buildSvc     app.BuildSvc
	metrics      *metrics.Collector
}

// Handle dispatches the delivery by the event name; events other than push are only acknowledged.
func (s Webhook) Handle(ctx context.Context, event string, payload []byte) (app.WebhookResult, error) {
	if event == "" {
		return app.WebhookResult{}, errtype.BadInput(webhookNoEventMsg, errtype.FieldError{
			Field:   github.EventHeader,
			Message: "is required",
		})
	}
	s.metrics.Webhook(event)
	if event != github.EventPush {
		log.WithField("event", event).Debug("webhook event acknowledged")
		return app.WebhookResult{Message: fmt.Sprintf("Received %s event", event)}, nil
	}
	var e github.PushEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return app.WebhookResult{}, errtype.BadInput("Invalid push payload", errtype.FieldError{
			Field:   "body",
			Message: err.Error(),
		})
	}
	return s.Push(ctx, e)
}

// Push creates an in-progress build for the pipeline bound to the pushed repository branch.
func (s Webhook) Push(ctx context.Context, e github.PushEvent) (app.WebhookResult, error) {
	var res app.WebhookResult
	if e.Repository.FullName == "" || e.Ref == "" || e.HeadCommit == nil {
		return res, errtype.BadInput("Invalid push payload", errtype.FieldError{
			Field:   "body",
			Message: "repository.full_name, ref and head_commit are required",
		})
	}
	branch := e.Branch()
	p, err := s.pipelineRepo.FindByRepository(ctx, e.Repository.FullName, branch)
	if errors.Is(err, errtype.ErrNotFound) {
		log.WithFields(log.Fields{"repository": e.Repository.FullName, "branch": branch}).Info("push ignored: no pipeline")
		return res, &errtype.Error{Kind: errtype.ErrNotFound, Msg: webhookNoPipelineMsg}
	}
	if err != nil {
		return res, errors.WrapContext(err, errors.Context{
			Path:   "svc.Webhook.Push.FindByRepository",
			Params: errors.Params{"repository": e.Repository.FullName, "branch": branch},
		})
	}
	b, err := s.buildSvc.Add(ctx, app.FormAddBuild{
		PipelineID:    p.ID,
		Status:        app.BuildStatusInProgress,
		CommitSha:     e.After,
		CommitMessage: e.Message(),
		CommitAuthor:  e.Author(),
	})
	if err != nil {
		return res, errors.WrapContext(err, errors.Context{
			Path:   "svc.Webhook.Push.Add",
			Params: errors.Params{"pipeline": p.ID, "commit": e.After},
		})
	}
	log.WithFields(log.Fields{"pipeline": p.ID, "build": b.ID, "commit": e.After}).Info("build triggered by push")
	res.Message = webhookTriggeredMsg
	res.BuildID = &b.ID
	res.Triggered = true
	return res, nil
}
