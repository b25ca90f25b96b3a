// Package motion implements the arm's motion-control core: the mode
// state machine, the command processor, the fixed-rate interpolator,
// the liveness watchdog and the telemetry emitter, all driven by one
// cooperative control loop.
//
// The loop is the single writer of JointState and Mode. Commands from
// the serial link and from the dashboard are serialized through it, so
// readers never observe a torn pose vector.
package motion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/patkersoxton-bit/armen/internal/log"
	"github.com/patkersoxton-bit/armen/pkg/arm"
	"github.com/patkersoxton-bit/armen/pkg/idle"
	"github.com/patkersoxton-bit/armen/pkg/protocol"
	"github.com/patkersoxton-bit/armen/pkg/sink"
	"github.com/patkersoxton-bit/armen/pkg/transport"
)

// clampWarnEpsilon is the threshold beyond which a clamped target earns
// a warning on the ack.
const clampWarnEpsilon = 1e-6

// Config holds the control loop timing and velocity parameters.
type Config struct {
	// Tick is the control loop period. 20 ms (50 Hz) is typical.
	Tick time.Duration

	// TelemetryPeriod is the emission period of state snapshots,
	// independent of the motion tick.
	TelemetryPeriod time.Duration

	// Watchdog is the liveness window. Silence beyond it forces estop.
	Watchdog time.Duration

	// MaxDegPerSec is the shared per-joint velocity ceiling at speed
	// scale 1.0.
	MaxDegPerSec float64

	// DefaultSpeed is the initial speed scale.
	DefaultSpeed float64
}

// injected is a command submitted from outside the serial link (the
// dashboard). The ack is delivered on reply.
type injected struct {
	line  []byte
	reply chan protocol.Ack
}

// Controller is the motion-control core. Create with New, then Run.
type Controller struct {
	cfg Config

	// mu lets other goroutines take consistent read snapshots; the
	// loop remains the only writer.
	mu sync.RWMutex

	st        JointState
	mode      Mode
	anim      idle.Animation
	animStart time.Time

	lastSeen  time.Time // last received frame, for the watchdog
	lastStep  time.Time // last interpolation step, for wall-time rates
	lastEmit  time.Time // last telemetry emission

	snk   sink.Sink
	lines <-chan []byte
	out   transport.LineWriter
	inj   chan injected

	// OnTelemetry, when set before Run, receives every emitted
	// snapshot (the dashboard hub hangs off this). Must not block.
	OnTelemetry func(protocol.Telemetry)

	now func() time.Time

	tickCount uint64
	dropCount uint64
	sinkErrAt time.Time
}

// New creates a controller reading frames from lines, writing acks and
// telemetry through out, and actuating snk.
func New(cfg Config, snk sink.Sink, lines <-chan []byte, out transport.LineWriter) *Controller {
	return &Controller{
		cfg:   cfg,
		snk:   snk,
		lines: lines,
		out:   out,
		inj:   make(chan injected, 16),
		mode:  ModeBoot,
		now:   time.Now,
		st: JointState{
			Current:    arm.Neutral,
			Target:     arm.Neutral,
			SpeedScale: cfg.DefaultSpeed,
		},
	}
}

// Run drives the control loop until ctx is cancelled. Blocks.
func (c *Controller) Run(ctx context.Context) error {
	start := c.now()

	// Boot completes as soon as the loop owns an attached sink.
	c.mu.Lock()
	c.mode = ModeManual
	c.lastSeen = start
	c.lastStep = start
	c.lastEmit = start
	c.mu.Unlock()
	log.Info("control loop started",
		"tick", c.cfg.Tick, "watchdog", c.cfg.Watchdog, "rate_dps", c.cfg.MaxDegPerSec)

	ticker := time.NewTicker(c.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("control loop stopped", "ticks", c.tickCount)
			return ctx.Err()
		case <-ticker.C:
			c.step(c.now())
		}
	}
}

// Submit injects one command line from outside the serial link and
// waits for its ack. Injected commands count as liveness exactly like
// serial frames.
func (c *Controller) Submit(ctx context.Context, line []byte) (protocol.Ack, error) {
	req := injected{line: line, reply: make(chan protocol.Ack, 1)}
	select {
	case c.inj <- req:
	case <-ctx.Done():
		return protocol.Ack{}, ctx.Err()
	}
	select {
	case ack := <-req.reply:
		return ack, nil
	case <-ctx.Done():
		return protocol.Ack{}, ctx.Err()
	}
}

// Snapshot returns the mode and a copy of the joint state. Callers on
// other goroutines get a consistent copy, never a live reference.
func (c *Controller) Snapshot() (Mode, JointState) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode, c.st
}

// step executes one control cycle: ingest, watchdog, idle, interpolate,
// telemetry, in that fixed order. Tests drive it directly with a
// synthetic clock.
func (c *Controller) step(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickCount++

	c.ingest(now)
	c.checkWatchdog(now)
	c.updateIdle(now)
	c.interpolate(now)
	c.emitTelemetry(now)
}

// ingest drains all pending frames without blocking.
func (c *Controller) ingest(now time.Time) {
	for {
		select {
		case line, ok := <-c.lines:
			if !ok {
				c.lines = nil
				return
			}
			ack := c.handleLine(line, now)
			c.send(ack)
		case req := <-c.inj:
			req.reply <- c.handleLine(req.line, now)
		default:
			return
		}
	}
}

// handleLine processes one received frame: liveness first, then parse,
// then apply. A malformed frame still proves the transport is alive.
func (c *Controller) handleLine(line []byte, now time.Time) protocol.Ack {
	c.lastSeen = now

	cmd, err := protocol.ParseCommand(line)
	if err != nil {
		log.Debug("rejected frame", "err", err)
		if errors.Is(err, protocol.ErrParse) {
			return protocol.Reject("", "validation error: malformed message")
		}
		return protocol.Reject("", err.Error())
	}
	return c.apply(cmd, now)
}

// apply executes one validated command against the mode machine and
// joint state.
func (c *Controller) apply(cmd *protocol.Command, now time.Time) protocol.Ack {
	switch cmd.Cmd {
	case protocol.CmdSetJoints:
		return c.applySetJoints(cmd)
	case protocol.CmdPlayIdle:
		return c.applyPlayIdle(cmd, now)
	case protocol.CmdEstop:
		c.enterEstop("estop command")
		return protocol.OK(cmd.Cmd)
	case protocol.CmdPing:
		ack := protocol.OK(cmd.Cmd)
		ack.State = c.mode.Label()
		return ack
	case protocol.CmdGetState:
		ack := protocol.OK(cmd.Cmd)
		ack.State = c.mode.Label()
		ack.Joints = c.st.Current.Slice()
		return ack
	default:
		// Unreachable: ParseCommand rejects unknown commands.
		return protocol.Reject(cmd.Cmd, "validation error: unknown cmd")
	}
}

func (c *Controller) applySetJoints(cmd *protocol.Command) protocol.Ack {
	if c.mode == ModeEstop {
		return protocol.Reject(cmd.Cmd, "estop active, restart required")
	}

	requested, err := arm.FromSlice(cmd.Targets)
	if err != nil {
		return protocol.Reject(cmd.Cmd, fmt.Sprintf("validation error: %v", err))
	}
	clamped, adjusted := requested.Clamp(clampWarnEpsilon)

	// Out-of-range speed is ignored, not an error: the previous scale
	// is retained.
	if cmd.Speed != nil && *cmd.Speed >= 0 && *cmd.Speed <= 1 {
		c.st.SpeedScale = *cmd.Speed
	}

	c.st.Target = clamped
	c.anim = nil // manual input preempts idle
	c.setMode(ModeManual)

	ack := protocol.OK(cmd.Cmd)
	ack.Joints = clamped.Slice()
	if adjusted {
		ack.Warning = "targets clamped to joint limits"
	}
	return ack
}

func (c *Controller) applyPlayIdle(cmd *protocol.Command, now time.Time) protocol.Ack {
	if c.mode == ModeEstop {
		return protocol.Reject(cmd.Cmd, "estop active, restart required")
	}

	anim, err := idle.New(cmd.Name)
	if err != nil {
		if errors.Is(err, idle.ErrUnknownAnimation) {
			return protocol.Reject(cmd.Cmd, "unknown animation")
		}
		return protocol.Reject(cmd.Cmd, err.Error())
	}

	c.anim = anim
	c.animStart = now
	c.setMode(ModeIdle)
	log.Info("idle animation selected", "name", anim.Name())
	return protocol.OK(cmd.Cmd)
}

// checkWatchdog forces estop after a full liveness window of silence.
func (c *Controller) checkWatchdog(now time.Time) {
	if c.mode == ModeEstop {
		return
	}
	if now.Sub(c.lastSeen) > c.cfg.Watchdog {
		log.Error("watchdog expired", "window", c.cfg.Watchdog)
		c.enterEstop("watchdog timeout")
	}
}

// updateIdle evaluates the active animation into the target vector.
// Idle poses are authored within limits, so no clamping here.
func (c *Controller) updateIdle(now time.Time) {
	if c.mode != ModeIdle || c.anim == nil {
		return
	}
	elapsed := now.Sub(c.animStart)
	c.st.Target = c.anim.Evaluate(elapsed)
	if c.anim.IsComplete(elapsed) {
		log.Debug("idle animation complete", "name", c.anim.Name())
		c.anim = nil
	}
}

// interpolate advances current angles toward targets within the
// velocity bound and writes the result to the sink. Skipped entirely in
// estop: angles freeze and the sink, already detached, is not written.
func (c *Controller) interpolate(now time.Time) {
	if c.mode == ModeEstop {
		return
	}

	// Wall-time step keeps motion rate-independent of the tick count.
	// A stalled loop is capped so the arm never jumps.
	dt := now.Sub(c.lastStep)
	c.lastStep = now
	if dt <= 0 {
		return
	}
	if maxDt := 4 * c.cfg.Tick; dt > maxDt {
		dt = maxDt
	}

	maxStep := dt.Seconds() * c.cfg.MaxDegPerSec * c.st.SpeedScale
	c.st.Current = stepToward(c.st.Current, c.st.Target, maxStep)

	if err := c.snk.WritePose(c.st.Current); err != nil {
		// Throttled: a dead sink must not spam every tick.
		if c.sinkErrAt.IsZero() || now.Sub(c.sinkErrAt) > 5*time.Second {
			log.Error("sink write failed", "err", err)
			c.sinkErrAt = now
		}
	}
}

// emitTelemetry sends a read-only snapshot on its own period. A full
// outbound buffer drops the snapshot rather than blocking the loop.
func (c *Controller) emitTelemetry(now time.Time) {
	if now.Sub(c.lastEmit) < c.cfg.TelemetryPeriod {
		return
	}
	c.lastEmit = now

	t := protocol.NewTelemetry(c.mode.Label(), c.st.Current.Slice())
	data, err := t.Bytes()
	if err != nil {
		return
	}
	if err := c.out.WriteLine(data); err != nil {
		c.dropCount++
		log.Debug("telemetry dropped", "total", c.dropCount)
	}
	if c.OnTelemetry != nil {
		c.OnTelemetry(t)
	}
}

// send writes an ack, degrading by dropping on a saturated link.
func (c *Controller) send(ack protocol.Ack) {
	data, err := ack.Bytes()
	if err != nil {
		return
	}
	if err := c.out.WriteLine(data); err != nil {
		c.dropCount++
		log.Warn("ack dropped", "cmd", ack.Cmd)
	}
}

// setMode performs a mode transition with a log line.
func (c *Controller) setMode(m Mode) {
	if c.mode == m {
		return
	}
	log.Info("mode transition", "from", c.mode.String(), "to", m.String())
	c.mode = m
}

// enterEstop transitions to estop and detaches the sink immediately,
// independent of the interpolation tick. Idempotent.
func (c *Controller) enterEstop(reason string) {
	if c.mode == ModeEstop {
		return
	}
	log.Error("emergency stop", "reason", reason)
	c.setMode(ModeEstop)
	c.anim = nil
	if err := c.snk.Detach(); err != nil {
		log.Error("sink detach failed", "err", err)
	}
}
