package services

import (
	"errors"
	"fmt"

	"kollab-api/internal/repository"
)

var (
	// ErrNotFound means an id did not resolve.
	ErrNotFound = repository.ErrNotFound
	// ErrPermissionDenied means the requester does not own the workflow.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrValidation means the input was rejected before anything was written.
	ErrValidation = errors.New("validation failed")
	// ErrTransientStore wraps storage failures the caller may retry.
	ErrTransientStore = errors.New("storage unavailable")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// classify passes typed outcomes through and marks everything else as a
// transient storage failure.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrTransientStore):
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransientStore, err)
}
