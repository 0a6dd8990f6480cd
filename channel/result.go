package channel

import (
	"errors"
	"fmt"
)

// Code classifies a failed call. The vocabulary is fixed.
type Code string

const (
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeNotSupported     Code = "NOT_SUPPORTED"
	CodeIconNotDeclared  Code = "ICON_NOT_DECLARED"
	CodeIconChangeFailed Code = "ICON_CHANGE_FAILED"
	CodeGetIconFailed    Code = "GET_ICON_FAILED"
	CodeLaunchError      Code = "LAUNCH_ERROR"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// CallError is the structured error returned across the bridge.
type CallError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds a CallError with a formatted message.
func Errorf(code Code, format string, args ...any) *CallError {
	return &CallError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsCallError returns err unchanged when it already carries a CallError,
// otherwise it classifies it under fallback with the native message.
func AsCallError(err error, fallback Code) *CallError {
	if err == nil {
		return nil
	}
	var ce *CallError
	if errors.As(err, &ce) {
		return ce
	}
	msg := err.Error()
	if msg == "" {
		msg = string(fallback)
	}
	return &CallError{Code: fallback, Message: msg}
}

// Outcome tells which of the three result shapes a call produced.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeError
	OutcomeNotImplemented
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeError:
		return "error"
	case OutcomeNotImplemented:
		return "not_implemented"
	default:
		return "unknown"
	}
}

// Result is the single outcome of a call. The zero value is a successful
// call with a nil value.
type Result struct {
	Outcome Outcome
	Value   any
	Err     *CallError
}

// Success returns a successful result carrying v (nil for "no value").
func Success(v any) Result {
	return Result{Outcome: OutcomeSuccess, Value: v}
}

// Failure returns an error result.
func Failure(err *CallError) Result {
	return Result{Outcome: OutcomeError, Err: err}
}

// NotImplemented returns the sentinel outcome for unknown method names.
func NotImplemented() Result {
	return Result{Outcome: OutcomeNotImplemented}
}

func (r Result) IsSuccess() bool        { return r.Outcome == OutcomeSuccess }
func (r Result) IsError() bool          { return r.Outcome == OutcomeError }
func (r Result) IsNotImplemented() bool { return r.Outcome == OutcomeNotImplemented }

// Code returns the error code of an error result, or "" otherwise.
func (r Result) Code() Code {
	if r.Err == nil {
		return ""
	}
	return r.Err.Code
}
