package runtime

import (
	"fmt"

	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg"
	"github.com/kiosk404/loamy/pkg/logger"
)

// loopState is a state of the orchestration state machine.
type loopState int

const (
	stateAwaitingBackend loopState = iota
	stateDispatchingTool
	stateDone
	stateFailed
)

func (s loopState) String() string {
	switch s {
	case stateAwaitingBackend:
		return "awaiting_backend"
	case stateDispatchingTool:
		return "dispatching_tool"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return fmt.Sprintf("loopState(%d)", int(s))
	}
}

// loopStateMachine tracks the state of one run.
// awaiting_backend -> dispatching_tool | done | failed
// dispatching_tool -> awaiting_backend
type loopStateMachine struct {
	runID string
	state loopState
}

func newLoopStateMachine(runID string) *loopStateMachine {
	return &loopStateMachine{runID: runID, state: stateAwaitingBackend}
}

func (sm *loopStateMachine) transition(to loopState) {
	if !sm.allowed(to) {
		panic(fmt.Sprintf("run %s: invalid loop transition %s -> %s", sm.runID, sm.state, to))
	}
	logger.DebugX(pkg.ModuleName, "[LoopState] run %s %s -> %s", sm.runID, sm.state, to)
	sm.state = to
}

func (sm *loopStateMachine) allowed(to loopState) bool {
	switch sm.state {
	case stateAwaitingBackend:
		return to == stateDispatchingTool || to == stateDone || to == stateFailed
	case stateDispatchingTool:
		return to == stateAwaitingBackend
	default:
		return false
	}
}

func (sm *loopStateMachine) terminal() bool {
	return sm.state == stateDone || sm.state == stateFailed
}
