package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kiosk404/loamy/internal/loamy/metrics"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg"
	"github.com/kiosk404/loamy/internal/loamy/service/tools"
	"github.com/kiosk404/loamy/pkg/logger"
)

// DefaultToolTimeout bounds a single tool call.
const DefaultToolTimeout = 10 * time.Second

// ToolExecutor validates tool calls against the registry and runs them inside
// a failure boundary. It never returns an error: every outcome, including a
// panicking or timed out implementation, becomes an Envelope.
type ToolExecutor struct {
	registry *tools.Registry
	timeout  time.Duration
}

// NewToolExecutor creates a ToolExecutor.
func NewToolExecutor(registry *tools.Registry, timeout time.Duration) *ToolExecutor {
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	return &ToolExecutor{registry: registry, timeout: timeout}
}

// Invoke runs the named tool with the given raw arguments.
func (e *ToolExecutor) Invoke(ctx context.Context, name string, args map[string]interface{}) entity.Envelope {
	env := e.invoke(ctx, name, args)
	result := "ok"
	if env.Error != nil {
		result = string(env.Error.Kind)
	}
	metrics.ToolInvocations.WithLabelValues(name, result).Inc()
	return env
}

func (e *ToolExecutor) invoke(ctx context.Context, name string, raw map[string]interface{}) entity.Envelope {
	id := entity.ToolID(name)

	tool, ok := e.registry.Lookup(name)
	if !ok {
		logger.WarnX(pkg.ModuleName, "[ToolExecutor] unknown tool %q requested", name)
		return entity.Failure(id, entity.ToolErrUnknownTool, "tool %q is not registered", name)
	}

	args, err := tools.Validate(tool.Signature, raw)
	if err != nil {
		logger.WarnX(pkg.ModuleName, "[ToolExecutor] %s rejected: %v", name, err)
		return entity.Failure(id, entity.ToolErrInvalidArguments, "%s", err.Error())
	}

	start := time.Now()
	result, err := e.call(ctx, tool, args)
	if err != nil {
		logger.WarnX(pkg.ModuleName, "[ToolExecutor] %s failed after %s: %v", name, time.Since(start), err)
		return entity.Failure(id, entity.ToolErrExecution, "%s", err.Error())
	}
	logger.DebugX(pkg.ModuleName, "[ToolExecutor] %s succeeded in %s", name, time.Since(start))
	return entity.Success(id, result)
}

type callOutcome struct {
	result entity.ToolResult
	err    error
}

func (e *ToolExecutor) call(parent context.Context, tool tools.Tool, args tools.Arguments) (entity.ToolResult, error) {
	ctx, cancel := context.WithTimeout(parent, e.timeout)
	defer cancel()

	done := make(chan callOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callOutcome{err: fmt.Errorf("tool panicked: %v", r)}
			}
		}()
		res, err := tool.Handler(ctx, args)
		done <- callOutcome{result: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		if entity.IsNilResult(out.result) {
			return nil, errors.New("tool returned no result")
		}
		if out.result.Tool() != tool.Signature.Name {
			return nil, fmt.Errorf("tool returned a %s result", out.result.Tool())
		}
		return out.result, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("tool did not finish: %w", ctx.Err())
	}
}
