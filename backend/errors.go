package backend

import "errors"

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrDeviceLost is returned when the device was lost.
	ErrDeviceLost = errors.New("backend: device lost")

	// ErrDeviceNotReset is returned when a lost device has not been reset yet.
	ErrDeviceNotReset = errors.New("backend: device not reset")

	// ErrDeviceHung is returned when the device stopped responding.
	ErrDeviceHung = errors.New("backend: device hung")

	// ErrDeviceRemoved is returned when the hardware is gone.
	ErrDeviceRemoved = errors.New("backend: device removed")

	// ErrUnsupportedFormat is returned for formats the backend cannot allocate.
	ErrUnsupportedFormat = errors.New("backend: unsupported format")

	// ErrNotLockable is returned when locking a surface the CPU cannot access.
	ErrNotLockable = errors.New("backend: surface not lockable")

	// ErrInvalidCall is returned for calls with invalid arguments or on
	// released objects.
	ErrInvalidCall = errors.New("backend: invalid call")
)

// IsRecoverable reports whether err is a device condition that recreating
// the device can fix.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrDeviceLost) ||
		errors.Is(err, ErrDeviceNotReset) ||
		errors.Is(err, ErrDeviceHung)
}

// StatusError returns the error matching a non-OK probe status, or nil.
func StatusError(s Status) error {
	switch s {
	case StatusLost:
		return ErrDeviceLost
	case StatusHung:
		return ErrDeviceHung
	case StatusRemoved:
		return ErrDeviceRemoved
	default:
		return nil
	}
}
