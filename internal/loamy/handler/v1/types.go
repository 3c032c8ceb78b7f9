package v1

import (
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
)

// ChatRequest is the body of POST /v1/chat and /v1/chat/stream.
type ChatRequest struct {
	// History is the conversation so far, as returned by the previous call.
	History []entity.Turn `json:"history"`
	// Message is the new user message.
	Message string `json:"message" binding:"required"`
}

// ChatResponse is the body of a successful POST /v1/chat, and the payload of
// the final "done" stream event.
type ChatResponse struct {
	Reply string `json:"reply"`
	// ArtifactLink is set when a document was generated during this turn.
	ArtifactLink string `json:"artifact_link,omitempty"`
	// History is the conversation including this turn; send it back next time.
	History []entity.Turn `json:"history"`
	Steps   int           `json:"steps"`
}

// ToolsResponse is the body of GET /v1/tools.
type ToolsResponse struct {
	Tools []entity.ToolSignature `json:"tools"`
}

// stream event names beyond the loop's own event types.
const eventDone = "done"
