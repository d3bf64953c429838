package model

import (
	"fmt"
	"time"

	goerrors "github.com/go-errors/errors"
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies failures that abort a whole batch.
type ErrorKind string

const (
	ErrKindConfig    ErrorKind = "CONFIG"
	ErrKindSource    ErrorKind = "SOURCE"
	ErrKindStorage   ErrorKind = "STORAGE"
	ErrKindCancelled ErrorKind = "CANCELLED"
)

// PipelineError is a fatal batch failure. It carries the stage it happened
// in and the stack where it was raised.
type PipelineError struct {
	Kind  ErrorKind
	Stage string
	Err   error
	Stack []byte
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: stage %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// StackTrace returns the captured stack, for debug logging.
func (e *PipelineError) StackTrace() []byte {
	return e.Stack
}

// NewPipelineError wraps err with a kind and stage, keeping an existing
// go-errors stack when there is one.
func NewPipelineError(kind ErrorKind, stage string, err error) *PipelineError {
	var stack []byte
	if stackErr, ok := err.(*goerrors.Error); ok {
		stack = stackErr.Stack()
	} else {
		stack = goerrors.Wrap(err, 2).Stack()
	}
	return &PipelineError{Kind: kind, Stage: stage, Err: err, Stack: stack}
}
