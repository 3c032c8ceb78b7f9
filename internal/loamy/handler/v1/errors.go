package v1

import (
	"net/http"

	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/pkg/errorx"
)

// Loamy handler error codes.
// Code format: 1XXYYZ
//   - 1:  module prefix (loamy handler)
//   - XX: resource group (00=common, 01=chat)
//   - YY: sequential error number
//   - Z:  reserved (0)

const (
	// Common request errors (100xxx).
	ErrBind       = 100001
	ErrValidation = 100002

	// Chat errors (1001xx).
	ErrBackendUnreachable = 100101
	ErrMalformedResponse  = 100102
	ErrStepBudget         = 100103
	ErrRunAborted         = 100104
)

// apology is the only failure text end users ever see.
const apology = "I'm sorry, I'm having a little trouble thinking right now. Please try again in a moment."

func init() {
	// Common.
	errorx.MustRegister(newCoder(ErrBind, http.StatusBadRequest, "Request body binding failed"))
	errorx.MustRegister(newCoder(ErrValidation, http.StatusBadRequest, "Request validation failed"))

	// Chat.
	errorx.MustRegister(newCoder(ErrBackendUnreachable, http.StatusBadGateway, apology))
	errorx.MustRegister(newCoder(ErrMalformedResponse, http.StatusBadGateway, apology))
	errorx.MustRegister(newCoder(ErrStepBudget, http.StatusBadGateway, apology))
	errorx.MustRegister(newCoder(ErrRunAborted, http.StatusGatewayTimeout, apology))
}

// failureCode maps a loop failure to its error code.
func failureCode(kind entity.FailureKind) int {
	switch kind {
	case entity.FailureBackendUnreachable:
		return ErrBackendUnreachable
	case entity.FailureStepBudgetExceeded:
		return ErrStepBudget
	case entity.FailureAborted:
		return ErrRunAborted
	default:
		return ErrMalformedResponse
	}
}

func failureError(f *entity.LoopFailure) error {
	return errorx.WithCode(failureCode(f.Kind), "%s", f.Error())
}

type coder struct {
	code int
	http int
	msg  string
}

func newCoder(code, httpStatus int, msg string) *coder {
	return &coder{code: code, http: httpStatus, msg: msg}
}

func (c *coder) Code() int         { return c.code }
func (c *coder) HTTPStatus() int   { return c.http }
func (c *coder) String() string    { return c.msg }
func (c *coder) Reference() string { return "" }
