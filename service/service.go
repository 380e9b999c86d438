package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/scenegen/scene"
)

// Op identifies which request shape produced an error.
type Op string

const (
	// OpExpand is the container expansion request.
	OpExpand Op = "expand"
	// OpAnalyze is the scene analysis request.
	OpAnalyze Op = "analyze"
)

// ExpandRequest asks the service to propose child nodes for one container.
// A zero ContainerName marks the initial generation of the scene's root node
// set from the narrative context alone.
type ExpandRequest struct {
	Scene scene.Context

	ContainerName string
	ContainerType scene.ContainerType
	Description   string
	Theme         string
	Level         int

	// Ancestors holds the names of the container's ancestors root-first, for
	// naming consistency in the generated children.
	Ancestors []string
	// Siblings holds already known child names of the container, so the
	// service avoids proposing duplicates.
	Siblings []string
}

// Initial reports whether the request generates the root node set.
func (r ExpandRequest) Initial() bool { return r.ContainerName == "" }

// AnalyzeRequest asks the service to review a snapshot of the current forest.
type AnalyzeRequest struct {
	Scene scene.Context

	// Snapshot is a compact textual outline of the forest including node ids.
	Snapshot string
	// Round is the 1-based round number being analyzed.
	Round int
}

// Service is the abstract content generation backend. Both operations return
// the raw structured text of the response; callers run it through the
// validate package. Implementations must honor ctx cancellation and surface
// transport or API failures as *ServiceError.
type Service interface {
	Expand(ctx context.Context, req ExpandRequest) (string, error)
	Analyze(ctx context.Context, req AnalyzeRequest) (string, error)
}

// ServiceError wraps a transport, timeout or non-success failure from the
// content service.
type ServiceError struct {
	Op        Op
	Retryable bool
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("content service %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ServiceError) Unwrap() error { return e.Err }

// NewRetryableError wraps err as a retryable service failure.
func NewRetryableError(op Op, err error) *ServiceError {
	return &ServiceError{Op: op, Retryable: true, Err: err}
}

// NewPermanentError wraps err as a non-retryable service failure.
func NewPermanentError(op Op, err error) *ServiceError {
	return &ServiceError{Op: op, Retryable: false, Err: err}
}

// IsRetryable reports whether err is a service failure worth retrying.
// Cancellation is never retryable; per-call timeouts are, when the adapter
// marked them so.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}
