package native

import "errors"

// Package errors for the native backend.
var (
	// ErrNoHAL is returned when no HAL API is compiled in.
	ErrNoHAL = errors.New("native: no HAL backend available")

	// ErrNoGPU is returned when the HAL instance exposes no adapter.
	ErrNoGPU = errors.New("native: no GPU adapter available")

	// ErrForeignObject is returned for adapters or surfaces created by
	// another backend.
	ErrForeignObject = errors.New("native: object belongs to another backend")
)
