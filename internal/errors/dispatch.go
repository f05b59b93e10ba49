// ABOUTME: Dispatch error types for parse, handler, panic and timeout failures
// ABOUTME: ResponseBody renders any of them as the "error: ..." body sent to the client

package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ResponsePrefix starts every error body written back to a client.
const ResponsePrefix = "error: "

// Typed errors report a short machine-readable kind for logs and the request log.
type Typed interface {
	error
	Type() string
}

type ParseError struct {
	Reason string
	Cause  error
}

func NewParseError(reason string, cause error) *ParseError {
	return &ParseError{Reason: reason, Cause: cause}
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot parse request line (%s): %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("cannot parse request line (%s)", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Cause }

func (e *ParseError) Type() string { return "parse_error" }

// HandlerError wraps a failure returned by an endpoint handler.
type HandlerError struct {
	Route string
	Cause error
}

func NewHandlerError(route string, cause error) *HandlerError {
	return &HandlerError{Route: route, Cause: cause}
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %q failed: %v", e.Route, e.Cause)
}

func (e *HandlerError) Unwrap() error { return e.Cause }

func (e *HandlerError) Type() string { return "handler_error" }

// HandlerPanicError records a panic recovered at the worker boundary.
type HandlerPanicError struct {
	Route string
	Value interface{}
	Stack []byte
}

func NewHandlerPanicError(route string, value interface{}, stack []byte) *HandlerPanicError {
	return &HandlerPanicError{Route: route, Value: value, Stack: stack}
}

func (e *HandlerPanicError) Error() string {
	return fmt.Sprintf("handler %q panicked: %v", e.Route, e.Value)
}

// Unwrap exposes the panic value when the handler panicked with an error.
func (e *HandlerPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func (e *HandlerPanicError) Type() string { return "handler_panic" }

type HandlerTimeoutError struct {
	Route   string
	Timeout time.Duration
}

func NewHandlerTimeoutError(route string, timeout time.Duration) *HandlerTimeoutError {
	return &HandlerTimeoutError{Route: route, Timeout: timeout}
}

func (e *HandlerTimeoutError) Error() string {
	return fmt.Sprintf("handler timed out after %s", e.Timeout)
}

func (e *HandlerTimeoutError) Type() string { return "handler_timeout" }

// RegistrationError is returned when an endpoint cannot be registered.
type RegistrationError struct {
	Name   string
	Reason string
}

func NewRegistrationError(name, reason string) *RegistrationError {
	return &RegistrationError{Name: name, Reason: reason}
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("cannot register endpoint %q: %s", e.Name, e.Reason)
}

func (e *RegistrationError) Type() string { return "registration_error" }

// ResponseBody renders err as the body sent to the client. Handler failures
// report only the handler's own message so "boom" becomes "error: boom".
func ResponseBody(err error) string {
	if err == nil {
		return ResponsePrefix
	}

	var panicErr *HandlerPanicError
	if stderrors.As(err, &panicErr) {
		return ResponsePrefix + fmt.Sprint(panicErr.Value)
	}

	var handlerErr *HandlerError
	if stderrors.As(err, &handlerErr) && handlerErr.Cause != nil {
		return ResponsePrefix + handlerErr.Cause.Error()
	}

	return ResponsePrefix + err.Error()
}

// TypeOf returns the kind of the first Typed error in err's chain, or
// "error" for untyped failures and "" for nil.
func TypeOf(err error) string {
	if err == nil {
		return ""
	}
	var typed Typed
	if stderrors.As(err, &typed) {
		return typed.Type()
	}
	return "error"
}
