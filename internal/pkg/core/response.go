// Package core holds the response helpers shared by HTTP handlers.
package core

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/loamy/pkg/errorx"
	"github.com/kiosk404/loamy/pkg/logger"
)

// ErrResponse is the body written for a failed request.
type ErrResponse struct {
	// Code is the internal error code.
	Code int `json:"code"`

	// Message is safe to show to end users.
	Message string `json:"message"`

	// Reference points to documentation for the code, if any.
	Reference string `json:"reference,omitempty"`
}

// WriteResponse writes data as JSON, or the coded error when err is non-nil.
// The error itself is only logged; the client sees the registered message.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		coder := errorx.ParseCoder(err)
		logger.Error("[Core] %s %s failed (code=%d): %+v", c.Request.Method, c.Request.URL.Path, coder.Code(), err)
		c.JSON(coder.HTTPStatus(), ErrResponse{
			Code:      coder.Code(),
			Message:   coder.String(),
			Reference: coder.Reference(),
		})
		return
	}

	c.JSON(http.StatusOK, data)
}
