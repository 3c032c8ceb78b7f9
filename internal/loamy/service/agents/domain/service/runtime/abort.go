package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg/errno"
)

// AbortController scopes one run: it derives the run context from the
// caller's, applies the overall run timeout and reports cancellation.
type AbortController struct {
	ctx    context.Context
	cancel context.CancelFunc
	runID  string
}

// NewAbortController creates an AbortController. A timeout <= 0 disables the
// run deadline; the run still ends when parent is cancelled.
func NewAbortController(parent context.Context, runID string, timeout time.Duration) *AbortController {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	return &AbortController{
		ctx:    ctx,
		cancel: cancel,
		runID:  runID,
	}
}

// Context returns the run context.
func (ac *AbortController) Context() context.Context {
	return ac.ctx
}

// CheckAborted returns an error wrapping errno.ErrAborted once the run
// context is done.
func (ac *AbortController) CheckAborted() error {
	if err := ac.ctx.Err(); err != nil {
		return fmt.Errorf("%w: run %s: %v", errno.ErrAborted, ac.runID, err)
	}
	return nil
}

// CleanUp releases the run context.
func (ac *AbortController) CleanUp() {
	ac.cancel()
}
