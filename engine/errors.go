package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKernel is returned for a stencil code outside the defined set.
	ErrUnknownKernel = errors.New("unknown kernel")
	// ErrUnknownBoundary is returned for a boundary code outside the defined set.
	ErrUnknownBoundary = errors.New("unknown boundary")
	// ErrUnknownPalette is returned for a palette code outside the defined set.
	ErrUnknownPalette = errors.New("unknown palette")

	// ErrSurfaceUnavailable means the presentation surface could not be
	// acquired this frame. The field is untouched and the host may retry.
	ErrSurfaceUnavailable = errors.New("surface unavailable")
	// ErrDeviceLost means the compute device is gone. Not recoverable.
	ErrDeviceLost = errors.New("device lost")
)

// Phase names the kernel that failed.
type Phase string

const (
	PhaseStep  Phase = "step"
	PhasePaint Phase = "paint"
)

// StepError reports a failed kernel dispatch. Step is the zero-based index of
// the failed step within the frame (always 0 for paint and single steps).
type StepError struct {
	Phase Phase
	Step  int
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s dispatch %d failed: %v", e.Phase, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a presentation failure that can be
// retried on the next frame.
func IsTransient(err error) bool {
	return errors.Is(err, ErrSurfaceUnavailable)
}
