package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/kiosk404/loamy/internal/loamy/metrics"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg/errno"
	"github.com/kiosk404/loamy/internal/loamy/service/tools"
	"github.com/kiosk404/loamy/pkg/logger"
	"github.com/kiosk404/loamy/pkg/utils/safego"
)

const (
	DefaultMaxSteps       = 10
	DefaultBackendTimeout = 60 * time.Second
	DefaultRunTimeout     = 5 * time.Minute
)

// DirectiveSource supplies the system directive sent with every request.
type DirectiveSource interface {
	Directive() string
}

// StaticDirective is a fixed directive.
type StaticDirective string

func (d StaticDirective) Directive() string { return string(d) }

// LoopConfig configures an Orchestrator.
type LoopConfig struct {
	// MaxSteps bounds backend round trips per run (default 10).
	MaxSteps int
	// BackendTimeout bounds a single backend call.
	BackendTimeout time.Duration
	// ToolTimeout bounds a single tool call.
	ToolTimeout time.Duration
	// RunTimeout bounds a whole run; 0 keeps the default, < 0 disables it.
	RunTimeout time.Duration
}

// Orchestrator runs the conversation loop: ask the backend, dispatch the tool
// it requests, feed the result back, until it answers with text.
//
// A run is an explicit state machine:
//
//	awaiting_backend --text--> done
//	awaiting_backend --tool call--> dispatching_tool --> awaiting_backend
//	awaiting_backend --transport / decode / budget / abort--> failed
//
// The orchestrator holds no per-run state and is safe for concurrent use.
type Orchestrator struct {
	backend        Backend
	registry       *tools.Registry
	executor       *ToolExecutor
	codec          *TurnCodec
	directive      DirectiveSource
	maxSteps       int
	backendTimeout time.Duration
	runTimeout     time.Duration
}

// NewOrchestrator creates an Orchestrator. The registry is frozen: the tool
// catalog cannot change once conversations may run.
func NewOrchestrator(backend Backend, registry *tools.Registry, directive DirectiveSource, cfg LoopConfig) *Orchestrator {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = DefaultBackendTimeout
	}
	if cfg.RunTimeout == 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}
	if directive == nil {
		directive = StaticDirective("")
	}
	registry.Freeze()

	return &Orchestrator{
		backend:        backend,
		registry:       registry,
		executor:       NewToolExecutor(registry, cfg.ToolTimeout),
		codec:          NewTurnCodec(),
		directive:      directive,
		maxSteps:       cfg.MaxSteps,
		backendTimeout: cfg.BackendTimeout,
		runTimeout:     cfg.RunTimeout,
	}
}

// Catalog returns the tool catalog advertised to the backend.
func (o *Orchestrator) Catalog() []entity.ToolSignature {
	return o.registry.DescribeAll()
}

// Run drives conv to a terminal outcome. Turns produced by the run are
// appended to conv; the caller owns conv and must not share it while Run is
// in progress.
func (o *Orchestrator) Run(ctx context.Context, conv *entity.Conversation) *entity.LoopOutcome {
	return o.run(ctx, conv, nil)
}

// Stream runs the loop in the background and reports progress events. The
// last event carries the outcome; the reader then returns io.EOF.
func (o *Orchestrator) Stream(ctx context.Context, conv *entity.Conversation) *schema.StreamReader[*entity.LoopEvent] {
	sr, sw := schema.Pipe[*entity.LoopEvent](16)
	safego.Go(ctx, func() {
		defer sw.Close()
		o.run(ctx, conv, func(ev *entity.LoopEvent) {
			sw.Send(ev, nil)
		})
	})
	return sr
}

type emitFunc func(*entity.LoopEvent)

func (o *Orchestrator) run(parent context.Context, conv *entity.Conversation, emit emitFunc) *entity.LoopOutcome {
	if emit == nil {
		emit = func(*entity.LoopEvent) {}
	}
	runID := uuid.New().String()
	abort := NewAbortController(parent, runID, o.runTimeout)
	defer abort.CleanUp()
	ctx := abort.Context()

	sm := newLoopStateMachine(runID)
	catalog := o.registry.DescribeAll()

	var (
		steps   int
		pending *Decoded
		outcome *entity.LoopOutcome
	)

	fail := func(kind entity.FailureKind, format string, args ...interface{}) {
		outcome = entity.Failed(kind, steps, format, args...)
		sm.transition(stateFailed)
	}

	for !sm.terminal() {
		switch sm.state {
		case stateAwaitingBackend:
			if err := abort.CheckAborted(); err != nil {
				fail(entity.FailureAborted, "%v", err)
				continue
			}
			if steps >= o.maxSteps {
				fail(entity.FailureStepBudgetExceeded, "no final reply after %d backend round trips", steps)
				continue
			}
			steps++

			decoded, kind, err := o.roundTrip(ctx, conv, catalog, steps)
			if err != nil {
				if kind == entity.FailureBackendUnreachable && abort.CheckAborted() != nil {
					kind = entity.FailureAborted
				}
				fail(kind, "%v", err)
				continue
			}

			if decoded.Kind == DecodedText {
				turn := entity.NewAgentTurn(decoded.Text)
				if err := conv.Append(turn); err != nil {
					fail(entity.FailureMalformedResponse, "record reply: %v", err)
					continue
				}
				outcome = entity.FinalReply(decoded.Text, steps)
				sm.transition(stateDone)
				continue
			}

			turn := entity.NewToolRequestTurn(decoded.CallID, decoded.ToolName, decoded.Arguments)
			if err := conv.Append(turn); err != nil {
				fail(entity.FailureMalformedResponse, "record tool request: %v", err)
				continue
			}
			logger.InfoX(pkg.ModuleName, "[Orchestrator] run %s step %d: backend requested %s", runID, steps, decoded.ToolName)
			emit(&entity.LoopEvent{Type: entity.EventToolCall, Step: steps, Turn: &turn})
			pending = decoded
			sm.transition(stateDispatchingTool)

		case stateDispatchingTool:
			env := o.executor.Invoke(ctx, pending.ToolName, pending.Arguments)
			turn := entity.NewToolResultTurn(pending.CallID, pending.ToolName, env)
			// The request turn was just appended with the same name and id.
			_ = conv.Append(turn)
			emit(&entity.LoopEvent{Type: entity.EventToolResult, Step: steps, Turn: &turn})
			pending = nil
			sm.transition(stateAwaitingBackend)
		}
	}

	o.finish(runID, outcome, emit)
	return outcome
}

// roundTrip performs one encode / send / decode cycle.
func (o *Orchestrator) roundTrip(ctx context.Context, conv *entity.Conversation, catalog []entity.ToolSignature, step int) (*Decoded, entity.FailureKind, error) {
	req, err := o.codec.EncodeRequest(conv, catalog, o.directive.Directive())
	if err != nil {
		return nil, entity.FailureMalformedResponse, err
	}

	callCtx, cancel := context.WithTimeout(ctx, o.backendTimeout)
	defer cancel()

	start := time.Now()
	msg, err := o.backend.Generate(callCtx, req)
	metrics.BackendLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, errno.ErrToolBinding) {
			metrics.BackendRequests.WithLabelValues("config_error").Inc()
			logger.ErrorX(pkg.ModuleName, "[Orchestrator] step %d: backend misconfigured, request never sent: %v", step, err)
			return nil, entity.FailureBackendUnreachable, err
		}
		metrics.BackendRequests.WithLabelValues("error").Inc()
		logger.WarnX(pkg.ModuleName, "[Orchestrator] step %d: backend call failed: %v", step, err)
		return nil, entity.FailureBackendUnreachable, err
	}
	metrics.BackendRequests.WithLabelValues("ok").Inc()

	decoded, err := o.codec.DecodeResponse(msg)
	if err != nil {
		logger.WarnX(pkg.ModuleName, "[Orchestrator] step %d: %v", step, err)
		return nil, entity.FailureMalformedResponse, err
	}
	return decoded, "", nil
}

func (o *Orchestrator) finish(runID string, outcome *entity.LoopOutcome, emit emitFunc) {
	metrics.LoopSteps.Observe(float64(outcome.Steps))
	if outcome.OK() {
		metrics.LoopOutcomes.WithLabelValues("reply").Inc()
		logger.InfoX(pkg.ModuleName, "[Orchestrator] run %s completed after %d steps", runID, outcome.Steps)
		turn := entity.NewAgentTurn(outcome.Reply)
		emit(&entity.LoopEvent{Type: entity.EventReply, Step: outcome.Steps, Turn: &turn, Outcome: outcome})
		return
	}
	metrics.LoopOutcomes.WithLabelValues(string(outcome.Failure.Kind)).Inc()
	logger.ErrorX(pkg.ModuleName, "[Orchestrator] run %s failed after %d steps: %v", runID, outcome.Steps, outcome.Failure)
	emit(&entity.LoopEvent{Type: entity.EventFailure, Step: outcome.Steps, Outcome: outcome})
}
