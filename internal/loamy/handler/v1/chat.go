package v1

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/pkg/core"
	"github.com/kiosk404/loamy/pkg/errorx"
	"github.com/kiosk404/loamy/pkg/logger"
	"github.com/kiosk404/loamy/pkg/utils/json"
)

// ConversationRunner drives one user turn of a conversation.
type ConversationRunner interface {
	Run(ctx context.Context, conv *entity.Conversation) *entity.LoopOutcome
	Stream(ctx context.Context, conv *entity.Conversation) *schema.StreamReader[*entity.LoopEvent]
	Catalog() []entity.ToolSignature
}

// ChatHandler handles POST /v1/chat and POST /v1/chat/stream.
//
// The service keeps no conversation state: the client sends the history it
// got back from the previous call together with the new message.
type ChatHandler struct {
	runner ConversationRunner
	// maxHistoryTurns caps the user turns kept, 0 keeps everything.
	maxHistoryTurns int
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(runner ConversationRunner, maxHistoryTurns int) *ChatHandler {
	return &ChatHandler{runner: runner, maxHistoryTurns: maxHistoryTurns}
}

// Handle runs one turn and returns the reply as JSON.
func (h *ChatHandler) Handle(c *gin.Context) {
	conv, start, err := h.prepare(c)
	if err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	out := h.runner.Run(c.Request.Context(), conv)
	if !out.OK() {
		core.WriteResponse(c, failureError(out.Failure), nil)
		return
	}
	core.WriteResponse(c, nil, buildResponse(conv, start, out))
}

// HandleStream runs one turn and reports progress as server-sent events:
// tool_call, tool_result, then reply or failure, then done.
func (h *ChatHandler) HandleStream(c *gin.Context) {
	conv, start, err := h.prepare(c)
	if err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	sr := h.runner.Stream(c.Request.Context(), conv)
	defer sr.Close()

	var outcome *entity.LoopOutcome
	for {
		ev, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn("[Chat] stream recv error: %v", err)
			break
		}
		if ev.Outcome != nil {
			outcome = ev.Outcome
		}
		h.writeEvent(c, string(ev.Type), streamPayload(ev))
	}

	resp := ChatResponse{History: conv.Turns()}
	if outcome.OK() {
		resp = *buildResponse(conv, start, outcome)
	} else if outcome != nil {
		resp.Steps = outcome.Steps
	}
	h.writeEvent(c, eventDone, resp)
}

// prepare binds the request and rebuilds the conversation with the new user
// message appended. start is the index of the first turn of this run.
func (h *ChatHandler) prepare(c *gin.Context) (*entity.Conversation, int, error) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, 0, errorx.WrapC(err, ErrBind, "bind chat request")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, 0, errorx.WithCode(ErrValidation, "message must not be blank")
	}

	turns := append(req.History, entity.NewUserTurn(req.Message))
	if _, err := entity.NewConversation(turns...); err != nil {
		return nil, 0, errorx.WrapC(err, ErrValidation, "invalid history")
	}
	turns = TrimHistory(turns, h.maxHistoryTurns)

	conv, err := entity.NewConversation(turns...)
	if err != nil {
		return nil, 0, errorx.WrapC(err, ErrValidation, "invalid history")
	}
	return conv, conv.Len(), nil
}

func (h *ChatHandler) writeEvent(c *gin.Context, event string, payload interface{}) {
	data, err := json.MarshalString(payload)
	if err != nil {
		logger.Error("[Chat] marshal %s event: %v", event, err)
		return
	}
	if err := sse.Encode(c.Writer, sse.Event{Event: event, Data: data}); err != nil {
		logger.Warn("[Chat] write %s event: %v", event, err)
		return
	}
	c.Writer.Flush()
}

// streamPayload is what clients see for a loop event. Failures are reported
// with the same coded apology as the JSON endpoint.
func streamPayload(ev *entity.LoopEvent) interface{} {
	switch ev.Type {
	case entity.EventFailure:
		err := failureError(ev.Outcome.Failure)
		logger.Error("[Chat] stream run failed: %v", err)
		coder := errorx.ParseCoder(err)
		return core.ErrResponse{Code: coder.Code(), Message: coder.String()}
	case entity.EventReply:
		return gin.H{"reply": ev.Outcome.Reply, "step": ev.Step}
	default:
		return ev
	}
}

func buildResponse(conv *entity.Conversation, start int, out *entity.LoopOutcome) *ChatResponse {
	return &ChatResponse{
		Reply:        out.Reply,
		ArtifactLink: ArtifactLink(conv.Since(start)),
		History:      conv.Turns(),
		Steps:        out.Steps,
	}
}

// ArtifactLink returns the link of the last document generated in turns.
func ArtifactLink(turns []entity.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		t := turns[i]
		if t.Kind != entity.TurnToolResult || t.Result == nil || !t.Result.OK() {
			continue
		}
		if doc, ok := t.Result.Result.(*entity.DocumentResult); ok && doc.ArtifactLink != "" {
			return doc.ArtifactLink
		}
	}
	return ""
}

// TrimHistory keeps the turns starting at the maxUserTurns-th user turn from
// the end. Cutting only at user turns never separates a tool request from its
// result. maxUserTurns <= 0 keeps everything.
func TrimHistory(turns []entity.Turn, maxUserTurns int) []entity.Turn {
	if maxUserTurns <= 0 {
		return turns
	}
	seen := 0
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Kind != entity.TurnUser {
			continue
		}
		seen++
		if seen == maxUserTurns {
			return turns[i:]
		}
	}
	return turns
}
