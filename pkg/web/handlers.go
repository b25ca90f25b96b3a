package web

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/patkersoxton-bit/armen/pkg/idle"
	"github.com/patkersoxton-bit/armen/pkg/motion"
	"github.com/patkersoxton-bit/armen/pkg/protocol"
)

// ControlPort is what the dashboard needs from the motion controller.
// Submitted commands serialize through the control loop like serial
// frames and count as liveness.
type ControlPort interface {
	Submit(ctx context.Context, line []byte) (protocol.Ack, error)
	Snapshot() (motion.Mode, motion.JointState)
}

// StateResponse is the dashboard state snapshot.
type StateResponse struct {
	State   string    `json:"state"`
	Joints  []float64 `json:"joints"`
	Targets []float64 `json:"targets"`
	Speed   float64   `json:"speed"`
}

// handleState returns the current mode and joint state.
func (s *Server) handleState(c *fiber.Ctx) error {
	mode, st := s.ctrl.Snapshot()
	return c.JSON(StateResponse{
		State:   mode.Label(),
		Joints:  st.Current.Slice(),
		Targets: st.Target.Slice(),
		Speed:   st.SpeedScale,
	})
}

// handleAnimations lists the idle animation names.
func (s *Server) handleAnimations(c *fiber.Ctx) error {
	return c.JSON(idle.Names())
}

// handleCommand injects one command, in the same JSON shape the serial
// protocol uses, and returns its ack.
func (s *Server) handleCommand(c *fiber.Ctx) error {
	ack, err := s.ctrl.Submit(c.Context(), c.Body())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	status := fiber.StatusOK
	if ack.Status == protocol.StatusError {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(ack)
}
