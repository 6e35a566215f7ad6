// services/imu/types.go
package imu

import (
	"context"
)

// Reading is one datum for one capability kind.
type Reading struct {
	Kind    string // "accel", "gyro", "temperature", "magnetic_field"
	Payload any    // JSON-serialisable payload (fixed-point maps)
	TsMs    int64  // producer timestamp
}

// Sample is a batch of readings collected together.
type Sample []Reading

// CapInfo describes one capability's retained info document.
type CapInfo struct {
	Kind string         // capability kind
	Info map[string]any // small JSONable map
}

// Adaptor owns the concrete devices and exposes generic hooks.
// Adaptors must NOT touch the bus or spawn goroutines.
type Adaptor interface {
	ID() string
	// Static capability descriptions (published as retained).
	Capabilities() []CapInfo
	// Collect fetches one measurement batch. The sensors run continuously,
	// so there is no trigger phase; a batch may simply omit kinds whose
	// data was not ready this tick. Collect may return a partial batch
	// together with a non-nil error when only some devices faulted; the
	// returned readings are still valid.
	Collect(ctx context.Context) (Sample, error)
}

// SkipCounter is an optional adaptor extension reporting how many
// magnetometer reads were skipped and why.
type SkipCounter interface {
	MagSkips() (notReady, overflow uint64)
}
