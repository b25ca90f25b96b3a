// Package idle provides the arm's idle-behavior animations.
//
// An Animation is a pure function of elapsed time since selection to a
// target pose. The motion controller evaluates the active animation once
// per tick while the arm is idling and writes the result straight into
// the target vector; poses are authored within the joint limits.
package idle

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/patkersoxton-bit/armen/pkg/arm"
)

// ErrUnknownAnimation is returned when an animation name is not registered.
var ErrUnknownAnimation = errors.New("unknown animation")

// Animation produces target poses over time.
type Animation interface {
	// Name returns the wire identifier (for acks and logging).
	Name() string

	// Duration returns the total duration of the animation.
	// Returns 0 for continuous/looping animations.
	Duration() time.Duration

	// Evaluate returns the target pose at time t since selection.
	Evaluate(t time.Duration) arm.Pose

	// IsComplete returns true when the animation has finished and the
	// selection should be cleared.
	IsComplete(t time.Duration) bool
}

// Wire names of the built-in animations.
const (
	NameBreathing   = "breathing"
	NameCuriousTilt = "curious_tilt"
	NameMicroAdjust = "micro_adjust"
	NameReset       = "idle_reset"
)

// New returns a fresh animation instance for the given wire name.
// Each selection gets its own instance so that stateful animations
// (micro_adjust's random source) restart cleanly.
func New(name string) (Animation, error) {
	switch name {
	case NameBreathing:
		return NewBreathing(), nil
	case NameCuriousTilt:
		return NewCuriousTilt(), nil
	case NameMicroAdjust:
		return NewMicroAdjust(rand.Int63()), nil
	case NameReset:
		return NewReset(), nil
	default:
		return nil, ErrUnknownAnimation
	}
}

// Names returns all registered animation names, sorted.
func Names() []string {
	names := []string{NameBreathing, NameCuriousTilt, NameMicroAdjust, NameReset}
	sort.Strings(names)
	return names
}

// Random returns a uniformly chosen looping animation name. This is the
// hook for a higher-level policy that wants to start idling unprompted;
// the controller itself only activates idle on an explicit command.
func Random(rng *rand.Rand) string {
	looping := []string{NameBreathing, NameCuriousTilt, NameMicroAdjust}
	return looping[rng.Intn(len(looping))]
}

// ============================================================
// Breathing - slow two-pose sway
// ============================================================

// Breathing alternates between two poses on a 3 second half-period,
// a 6 second full cycle.
type Breathing struct {
	halfPeriod time.Duration
	inhale     arm.Pose
	exhale     arm.Pose
}

// NewBreathing creates the breathing animation.
func NewBreathing() *Breathing {
	inhale := arm.Neutral
	exhale := arm.Neutral
	exhale[arm.Shoulder] += 7
	exhale[arm.Elbow] -= 8
	exhale[arm.WristPitch] += 5
	return &Breathing{
		halfPeriod: 3 * time.Second,
		inhale:     inhale,
		exhale:     exhale,
	}
}

// Name returns "breathing".
func (a *Breathing) Name() string { return NameBreathing }

// Duration returns 0 (continuous).
func (a *Breathing) Duration() time.Duration { return 0 }

// Evaluate returns the breathing pose at time t.
func (a *Breathing) Evaluate(t time.Duration) arm.Pose {
	if t%(2*a.halfPeriod) < a.halfPeriod {
		return a.inhale
	}
	return a.exhale
}

// IsComplete always returns false.
func (a *Breathing) IsComplete(t time.Duration) bool { return false }

// ============================================================
// CuriousTilt - look left, center, right, center
// ============================================================

// CuriousTilt runs an 8 second cycle split into four 2 second quadrants:
// left, neutral, right, neutral.
type CuriousTilt struct {
	quadrant time.Duration
	left     arm.Pose
	right    arm.Pose
}

// NewCuriousTilt creates the curious-tilt animation.
func NewCuriousTilt() *CuriousTilt {
	left := arm.Neutral
	left[arm.Base] -= 20
	left[arm.WristPitch] -= 15
	right := arm.Neutral
	right[arm.Base] += 20
	right[arm.WristPitch] += 15
	return &CuriousTilt{
		quadrant: 2 * time.Second,
		left:     left,
		right:    right,
	}
}

// Name returns "curious_tilt".
func (a *CuriousTilt) Name() string { return NameCuriousTilt }

// Duration returns 0 (continuous).
func (a *CuriousTilt) Duration() time.Duration { return 0 }

// Evaluate returns the quadrant pose at time t.
func (a *CuriousTilt) Evaluate(t time.Duration) arm.Pose {
	switch (t % (4 * a.quadrant)) / a.quadrant {
	case 0:
		return a.left
	case 2:
		return a.right
	default:
		return arm.Neutral
	}
}

// IsComplete always returns false.
func (a *CuriousTilt) IsComplete(t time.Duration) bool { return false }

// ============================================================
// MicroAdjust - small random fidgets, then settle
// ============================================================

// MicroAdjust perturbs base, wrist pitch and wrist roll around neutral
// with small random offsets for the first half of a 20 second cycle,
// resampled every evaluation, then holds exact neutral for the second
// half.
type MicroAdjust struct {
	cycle     time.Duration
	amplitude float64
	rng       *rand.Rand
}

// NewMicroAdjust creates the micro-adjust animation with its own seeded
// random source, so tests can reproduce a run.
func NewMicroAdjust(seed int64) *MicroAdjust {
	return &MicroAdjust{
		cycle:     20 * time.Second,
		amplitude: 3.0,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Name returns "micro_adjust".
func (a *MicroAdjust) Name() string { return NameMicroAdjust }

// Duration returns 0 (continuous).
func (a *MicroAdjust) Duration() time.Duration { return 0 }

// Evaluate returns a perturbed pose during the first half-cycle and
// exact neutral during the second.
func (a *MicroAdjust) Evaluate(t time.Duration) arm.Pose {
	if t%a.cycle >= a.cycle/2 {
		return arm.Neutral
	}
	pose := arm.Neutral
	for _, j := range []arm.Joint{arm.Base, arm.WristPitch, arm.WristRoll} {
		offset := (a.rng.Float64()*2 - 1) * a.amplitude
		pose[j] = arm.Limits[j].Clamp(pose[j] + offset)
	}
	return pose
}

// IsComplete always returns false.
func (a *MicroAdjust) IsComplete(t time.Duration) bool { return false }

// ============================================================
// Reset - one-shot return to neutral
// ============================================================

// Reset sets the target to the neutral pose once and immediately
// completes, clearing the selection.
type Reset struct{}

// NewReset creates the one-shot reset animation.
func NewReset() *Reset { return &Reset{} }

// Name returns "idle_reset".
func (a *Reset) Name() string { return NameReset }

// Duration returns 0; the animation finishes on its first evaluation.
func (a *Reset) Duration() time.Duration { return 0 }

// Evaluate always returns the neutral pose.
func (a *Reset) Evaluate(t time.Duration) arm.Pose { return arm.Neutral }

// IsComplete always returns true.
func (a *Reset) IsComplete(t time.Duration) bool { return true }
