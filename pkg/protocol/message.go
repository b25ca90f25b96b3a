// Package protocol defines the line-delimited JSON messages exchanged
// with the operator application: inbound commands, command acks, and
// unsolicited telemetry. Each message is a single newline-terminated
// JSON object.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/patkersoxton-bit/armen/pkg/arm"
)

// Inbound command names.
const (
	CmdSetJoints = "set_joints"
	CmdPlayIdle  = "play_idle"
	CmdEstop     = "estop"
	CmdPing      = "ping"
	CmdGetState  = "get_state"
)

// Ack statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// TypeTelemetry marks unsolicited telemetry messages so the operator
// app can tell them apart from command acks.
const TypeTelemetry = "telemetry"

// Parse/validation sentinels. Both map to error acks; neither mutates
// controller state.
var (
	// ErrParse means the line was not a well-formed JSON object.
	ErrParse = errors.New("parse error")

	// ErrValidation means the message was well-formed JSON but a field
	// was missing, had the wrong arity, or held an unknown value.
	ErrValidation = errors.New("validation error")
)

// Command is an inbound request from the operator application.
type Command struct {
	Cmd     string    `json:"cmd"`
	Targets []float64 `json:"targets,omitempty"` // set_joints: degrees, pre-clamp
	Speed   *float64  `json:"speed,omitempty"`   // set_joints: [0,1], optional
	Name    string    `json:"name,omitempty"`    // play_idle: animation identifier
}

// ParseCommand decodes and structurally validates one received line.
// Semantic checks that need controller state (limit clamping, animation
// lookup) happen in the command processor, not here.
func ParseCommand(line []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(line, &cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	switch cmd.Cmd {
	case CmdSetJoints:
		if cmd.Targets == nil {
			return nil, fmt.Errorf("%w: set_joints requires targets", ErrValidation)
		}
		if len(cmd.Targets) != arm.NumJoints {
			return nil, fmt.Errorf("%w: targets must have exactly %d elements, got %d",
				ErrValidation, arm.NumJoints, len(cmd.Targets))
		}
	case CmdPlayIdle:
		if cmd.Name == "" {
			return nil, fmt.Errorf("%w: play_idle requires name", ErrValidation)
		}
	case CmdEstop, CmdPing, CmdGetState:
	case "":
		return nil, fmt.Errorf("%w: missing cmd field", ErrValidation)
	default:
		return nil, fmt.Errorf("%w: unknown cmd %q", ErrValidation, cmd.Cmd)
	}
	return &cmd, nil
}

// Ack is the response to a single inbound command. It echoes the
// command name and reports ok or error; soft corrections surface as a
// warning on an otherwise successful ack.
type Ack struct {
	Cmd     string    `json:"cmd,omitempty"`
	Status  string    `json:"status"`
	Warning string    `json:"warning,omitempty"`
	Error   string    `json:"error,omitempty"`
	State   string    `json:"state,omitempty"`
	Joints  []float64 `json:"joints,omitempty"`
}

// OK builds a success ack for the given command.
func OK(cmd string) Ack {
	return Ack{Cmd: cmd, Status: StatusOK}
}

// Reject builds an error ack carrying a human-readable reason.
func Reject(cmd, reason string) Ack {
	return Ack{Cmd: cmd, Status: StatusError, Error: reason}
}

// Bytes returns the JSON encoding of the ack.
func (a Ack) Bytes() ([]byte, error) {
	return json.Marshal(a)
}

// Telemetry is the unsolicited periodic state snapshot. Joints always
// carries current angles, never targets.
type Telemetry struct {
	Type   string    `json:"type"`
	State  string    `json:"state"`
	Joints []float64 `json:"joints"`
}

// NewTelemetry builds a telemetry snapshot.
func NewTelemetry(state string, joints []float64) Telemetry {
	return Telemetry{Type: TypeTelemetry, State: state, Joints: joints}
}

// Bytes returns the JSON encoding of the telemetry snapshot.
func (t Telemetry) Bytes() ([]byte, error) {
	return json.Marshal(t)
}
