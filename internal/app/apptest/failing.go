package apptest

import (
	"context"
	"sync"
	"time"

	"github.com/beldeveloper/cidash/internal/app"
)

// FailingSteps wraps the step repository so that the n-th Update call, counting from 1, returns err.
// The other calls reach the wrapped repository.
func FailingSteps(repo app.StepRepo, n int, err error) app.StepRepo {
	return &failingSteps{StepRepo: repo, failAt: n, err: err}
}

type failingSteps struct {
	app.StepRepo
	mu     sync.Mutex
	calls  int
	failAt int
	err    error
}

func (r *failingSteps) Update(
	ctx context.Context,
	id uint64,
	status app.StepStatus,
	completedAt *time.Time,
	logs *string,
) (app.BuildStep, error) {
	r.mu.Lock()
	r.calls++
	fail := r.calls == r.failAt
	r.mu.Unlock()
	if fail {
		return app.BuildStep{}, r.err
	}
	return r.StepRepo.Update(ctx, id, status, completedAt, logs)
}
