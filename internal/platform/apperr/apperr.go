// Package apperr carries coded errors from services to transports.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidInput      Code = "INVALID_INPUT"
	CodeMatrixUnavailable Code = "MATRIX_UNAVAILABLE"
	CodeInfeasible        Code = "INFEASIBLE"
	CodeNotFound          Code = "NOT_FOUND"
	CodeInternal          Code = "INTERNAL"
)

type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Cause: err}
}

// CodeOf returns the code of the first *Error in err's chain, or
// CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error to the response status for it.
func HTTPStatus(err error) int {
	return StatusFor(CodeOf(err))
}

// StatusFor maps a code to its HTTP response status.
func StatusFor(code Code) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInfeasible:
		return http.StatusUnprocessableEntity
	case CodeMatrixUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
