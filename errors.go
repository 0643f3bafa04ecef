// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"errors"
	"fmt"
)

// Engine errors. Test for them with errors.Is.
var (
	// ErrInitialization is returned when the graphics subsystem cannot be acquired.
	ErrInitialization = errors.New("present: initialization failed")

	// ErrDeviceCreation is returned when the rendering device cannot be created.
	// Retrying may succeed.
	ErrDeviceCreation = errors.New("present: device creation failed")

	// ErrInvalidState is returned when a precondition is unmet, such as no
	// output window being bound or a sample outliving its pool.
	ErrInvalidState = errors.New("present: invalid state")

	// ErrInvalidArgument is returned for malformed arguments.
	ErrInvalidArgument = errors.New("present: invalid argument")

	// ErrAllocation is returned when presentation surfaces cannot be allocated.
	ErrAllocation = errors.New("present: surface allocation failed")

	// ErrPresentation is returned for native present failures other than
	// recoverable device conditions.
	ErrPresentation = errors.New("present: presentation failed")

	// ErrUnsupportedFormat is returned for pixel formats the operation cannot handle.
	ErrUnsupportedFormat = errors.New("present: unsupported format")

	// ErrNoFrameAvailable is returned by CaptureSnapshot before any frame
	// was presented.
	ErrNoFrameAvailable = errors.New("present: no frame available")

	// ErrDeviceRemoved is returned once the hardware is gone. It is terminal:
	// the engine must be rebuilt.
	ErrDeviceRemoved = errors.New("present: device removed")
)

// OpError records a failed native operation.
// It unwraps to both its Kind (one of the package errors) and the
// backend cause.
type OpError struct {
	Op   string // operation, e.g. "CreateDevice"
	Kind error  // package error class
	Err  error  // backend cause
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the error class and the cause.
func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func opError(op string, kind, err error) error {
	return &OpError{Op: op, Kind: kind, Err: err}
}
