package motion

import "github.com/patkersoxton-bit/armen/pkg/arm"

// JointState holds the current and target angle vectors plus the speed
// scale. It is owned exclusively by the controller's loop; outside code
// only ever sees copies via Snapshot.
type JointState struct {
	Current    arm.Pose
	Target     arm.Pose
	SpeedScale float64 // [0,1]
}

// stepToward advances each joint of current toward target by at most
// maxStep degrees, never overshooting. It returns the advanced pose.
func stepToward(current, target arm.Pose, maxStep float64) arm.Pose {
	next := current
	for j := 0; j < arm.NumJoints; j++ {
		delta := target[j] - current[j]
		if delta > maxStep {
			delta = maxStep
		} else if delta < -maxStep {
			delta = -maxStep
		}
		next[j] = current[j] + delta
	}
	return next
}
