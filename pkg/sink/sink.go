// Package sink abstracts the physical actuation output. The motion
// controller only ever sees the Sink interface; the GPIO implementation
// drives hobby servos with 50 Hz PWM, and the mock records writes for
// tests and for running on a development machine.
package sink

import (
	"errors"
	"sync"

	"github.com/patkersoxton-bit/armen/pkg/arm"
)

// ErrDetached is returned when writing to a sink after Detach.
var ErrDetached = errors.New("actuation sink detached")

// Sink receives joint angles and drives the physical outputs.
type Sink interface {
	// WritePose pushes the current angles to the servos.
	WritePose(p arm.Pose) error

	// Detach de-energizes the outputs immediately and permanently.
	// Subsequent writes fail with ErrDetached. Idempotent.
	Detach() error
}

// Mock records every written pose. Safe for concurrent use.
type Mock struct {
	mu       sync.Mutex
	writes   []arm.Pose
	detached bool
}

// NewMock creates a recording sink.
func NewMock() *Mock {
	return &Mock{}
}

// WritePose records the pose.
func (m *Mock) WritePose(p arm.Pose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.detached {
		return ErrDetached
	}
	m.writes = append(m.writes, p)
	return nil
}

// Detach marks the sink detached.
func (m *Mock) Detach() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detached = true
	return nil
}

// Detached reports whether Detach was called.
func (m *Mock) Detached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detached
}

// WriteCount returns the number of recorded writes.
func (m *Mock) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writes)
}

// LastPose returns the most recent write, if any.
func (m *Mock) LastPose() (arm.Pose, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.writes) == 0 {
		return arm.Pose{}, false
	}
	return m.writes[len(m.writes)-1], true
}
