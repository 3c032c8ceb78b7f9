// Package errorx provides errors that carry a registered business code.
//
// A code maps to an HTTP status and a user facing message through a Coder.
// The message passed to WithCode / WrapC is internal and only logged.
package errorx

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/pkg/errors"
)

// Coder describes a registered error code.
type Coder interface {
	// HTTPStatus is the status the HTTP layer should respond with.
	HTTPStatus() int
	// String is the user facing message.
	String() string
	// Reference points to documentation for the code, may be empty.
	Reference() string
	// Code is the business code.
	Code() int
}

// UnknownCode is reported for errors that carry no code.
const UnknownCode = 1

type defaultCoder struct {
	code int
	http int
	msg  string
}

func (c defaultCoder) Code() int         { return c.code }
func (c defaultCoder) HTTPStatus() int   { return c.http }
func (c defaultCoder) String() string    { return c.msg }
func (c defaultCoder) Reference() string { return "" }

var (
	unknownCoder Coder = defaultCoder{code: UnknownCode, http: http.StatusInternalServerError, msg: "An internal server error occurred"}

	codeMu sync.RWMutex
	codes  = map[int]Coder{}
)

// Register registers a Coder, replacing any previous one with the same code.
func Register(c Coder) {
	if c.Code() == UnknownCode {
		panic("code 1 is reserved for unknown errors")
	}
	codeMu.Lock()
	defer codeMu.Unlock()
	codes[c.Code()] = c
}

// MustRegister registers a Coder and panics if the code already exists.
func MustRegister(c Coder) {
	if c.Code() == UnknownCode {
		panic("code 1 is reserved for unknown errors")
	}
	codeMu.Lock()
	defer codeMu.Unlock()
	if _, ok := codes[c.Code()]; ok {
		panic(fmt.Sprintf("code %d already registered", c.Code()))
	}
	codes[c.Code()] = c
}

type withCode struct {
	err   error
	code  int
	cause error
}

// WithCode returns a new error with the given code.
func WithCode(code int, format string, args ...interface{}) error {
	return &withCode{
		err:  errors.Errorf(format, args...),
		code: code,
	}
}

// WrapC wraps err with a code and an internal message.
func WrapC(err error, code int, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &withCode{
		err:   errors.Wrapf(err, format, args...),
		code:  code,
		cause: err,
	}
}

func (w *withCode) Error() string { return w.err.Error() }

func (w *withCode) Unwrap() error { return w.cause }

// Format prints the stack trace with %+v.
func (w *withCode) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%+v", w.err)
		return
	}
	fmt.Fprint(s, w.err.Error())
}

// ParseCoder returns the Coder registered for the outermost coded error in
// err's chain, or the unknown coder.
func ParseCoder(err error) Coder {
	if err == nil {
		return nil
	}
	var wc *withCode
	if errors.As(err, &wc) {
		codeMu.RLock()
		defer codeMu.RUnlock()
		if c, ok := codes[wc.code]; ok {
			return c
		}
	}
	return unknownCoder
}

// IsCode reports whether any error in err's chain carries code.
func IsCode(err error, code int) bool {
	for err != nil {
		if wc, ok := err.(*withCode); ok && wc.code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
