// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import "fmt"

// DeviceState is the result of CheckDeviceState.
type DeviceState int

const (
	// DeviceOK means presentation can continue. Occluded windows and display
	// mode changes are reported as OK.
	DeviceOK DeviceState = iota

	// DeviceReset means the device was lost or hung and has been recreated.
	// All frame samples are invalid; call CreateFrameSamples again.
	DeviceReset

	// DeviceRemoved means the hardware is gone. The engine is unusable.
	DeviceRemoved
)

func (s DeviceState) String() string {
	switch s {
	case DeviceOK:
		return "ok"
	case DeviceReset:
		return "reset"
	case DeviceRemoved:
		return "removed"
	default:
		return fmt.Sprintf("DeviceState(%d)", int(s))
	}
}

// State is the lifecycle state of an Engine.
//
//	Uninitialized -> Ready <-> Recreating -> Ready | Removed
//
// Removed is terminal.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateRecreating
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateRecreating:
		return "recreating"
	case StateRemoved:
		return "removed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
