package safego

import (
	"context"
	"runtime/debug"

	"github.com/kiosk404/loamy/pkg/logger"
)

// Go runs fn in a goroutine and logs instead of crashing on panic.
func Go(ctx context.Context, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("[safego] goroutine panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
