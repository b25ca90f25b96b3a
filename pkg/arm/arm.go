// Package arm defines the joint model of the six-DOF desk arm:
// joint identities, per-joint angle limits, and complete poses.
package arm

import "fmt"

// Joint identifies one of the arm's six rotational degrees of freedom.
// The integer value is the servo channel index.
type Joint int

const (
	Base Joint = iota
	Shoulder
	Elbow
	WristPitch
	WristRoll
	Gripper

	// NumJoints is the fixed joint count; every pose vector has this length.
	NumJoints = 6
)

var jointNames = [NumJoints]string{
	"base", "shoulder", "elbow", "wrist_pitch", "wrist_roll", "gripper",
}

// String returns the wire name of the joint.
func (j Joint) String() string {
	if j < 0 || j >= NumJoints {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return jointNames[j]
}

// AllJoints returns the joints in channel order.
func AllJoints() []Joint {
	return []Joint{Base, Shoulder, Elbow, WristPitch, WristRoll, Gripper}
}

// Pose is a complete 6-element angle vector in degrees.
type Pose [NumJoints]float64

// Limit is a closed angle interval in degrees.
type Limit struct {
	Min, Max float64
}

// Clamp restricts v to the interval.
func (l Limit) Clamp(v float64) float64 {
	if v < l.Min {
		return l.Min
	}
	if v > l.Max {
		return l.Max
	}
	return v
}

// Contains reports whether v lies within the interval.
func (l Limit) Contains(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// Limits is the static per-joint safety table. Idle poses are authored
// within these bounds; commanded targets are clamped to them.
var Limits = [NumJoints]Limit{
	Base:       {0, 180},
	Shoulder:   {15, 165},
	Elbow:      {0, 180},
	WristPitch: {30, 150},
	WristRoll:  {0, 180},
	Gripper:    {10, 90},
}

// Neutral is the rest pose the arm boots into and idle animations
// return to.
var Neutral = Pose{90, 45, 120, 90, 0, 30}

// Clamp returns p with every joint clamped to its limit, plus whether
// any element actually moved by more than eps.
func (p Pose) Clamp(eps float64) (Pose, bool) {
	clamped := p
	adjusted := false
	for j := 0; j < NumJoints; j++ {
		clamped[j] = Limits[j].Clamp(p[j])
		if diff := clamped[j] - p[j]; diff > eps || diff < -eps {
			adjusted = true
		}
	}
	return clamped, adjusted
}

// InLimits reports whether every joint of p lies within its limit.
func (p Pose) InLimits() bool {
	for j := 0; j < NumJoints; j++ {
		if !Limits[j].Contains(p[j]) {
			return false
		}
	}
	return true
}

// Slice returns the pose as a fresh []float64, for JSON payloads.
func (p Pose) Slice() []float64 {
	out := make([]float64, NumJoints)
	copy(out, p[:])
	return out
}

// FromSlice builds a Pose from a 6-element slice.
func FromSlice(v []float64) (Pose, error) {
	var p Pose
	if len(v) != NumJoints {
		return p, fmt.Errorf("pose needs exactly %d angles, got %d", NumJoints, len(v))
	}
	copy(p[:], v)
	return p, nil
}
