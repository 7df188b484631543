package util

import (
	"errors"
	"fmt"
)

// sentinel codes. controllers map these to http status
var (
	ErrInternalServerError = errors.New("internal server error")
	ErrNotFound            = errors.New("not found")
	ErrBadParamInput       = errors.New("bad param input")
	ErrTimeout             = errors.New("timeout")
)

const MessageInternalServerError = "internal server error"

// Error carries a client facing message, a sentinel code and the underlying cause.
type Error struct {
	code  error
	msg   string
	cause error
}

func WrapErrorf(cause error, code error, format string, a ...interface{}) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), cause: cause}
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Code() error { return e.code }

func (e *Error) Message() string { return e.msg }
