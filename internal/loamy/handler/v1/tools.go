package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/loamy/internal/pkg/core"
)

// ToolsHandler handles GET /v1/tools.
type ToolsHandler struct {
	runner ConversationRunner
}

// NewToolsHandler creates a new ToolsHandler.
func NewToolsHandler(runner ConversationRunner) *ToolsHandler {
	return &ToolsHandler{runner: runner}
}

// List returns the tool catalog offered to the backend.
func (h *ToolsHandler) List(c *gin.Context) {
	core.WriteResponse(c, nil, ToolsResponse{Tools: h.runner.Catalog()})
}
