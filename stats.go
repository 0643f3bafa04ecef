// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import "sync/atomic"

// Stats are cumulative engine counters.
type Stats struct {
	Presented    uint64 `yaml:"presented"`    // new frames presented
	Repainted    uint64 `yaml:"repainted"`    // cached frames presented again
	Fallbacks    uint64 `yaml:"fallbacks"`    // solid fills of the destination
	DeviceResets uint64 `yaml:"deviceResets"` // devices recreated after loss or hang
	Snapshots    uint64 `yaml:"snapshots"`    // successful snapshot captures
}

type engineStats struct {
	presented atomic.Uint64
	repainted atomic.Uint64
	fallbacks atomic.Uint64
	resets    atomic.Uint64
	snapshots atomic.Uint64
}

func (s *engineStats) load() Stats {
	return Stats{
		Presented:    s.presented.Load(),
		Repainted:    s.repainted.Load(),
		Fallbacks:    s.fallbacks.Load(),
		DeviceResets: s.resets.Load(),
		Snapshots:    s.snapshots.Load(),
	}
}
