package motion

// Mode is the arm's operating regime. Exactly one mode is active at any
// instant; all transitions happen inside the control loop.
type Mode int

const (
	// ModeBoot is the initial transient state before outputs attach.
	ModeBoot Mode = iota

	// ModeManual means targets come from set_joints commands.
	ModeManual

	// ModeIdle means targets come from the active idle animation.
	ModeIdle

	// ModeEstop is the safety stop. Sticky: no transition leaves it
	// short of a restart.
	ModeEstop
)

// String returns a human-readable mode name for logs.
func (m Mode) String() string {
	switch m {
	case ModeBoot:
		return "boot"
	case ModeManual:
		return "manual"
	case ModeIdle:
		return "idle"
	case ModeEstop:
		return "estop"
	default:
		return "unknown"
	}
}

// Label returns the wire vocabulary used in telemetry and acks:
// idle, manual, estop or unknown. Boot is reported as unknown since the
// operator protocol has no boot label.
func (m Mode) Label() string {
	switch m {
	case ModeManual:
		return "manual"
	case ModeIdle:
		return "idle"
	case ModeEstop:
		return "estop"
	default:
		return "unknown"
	}
}
