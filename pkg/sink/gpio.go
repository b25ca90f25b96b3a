package sink

import (
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/patkersoxton-bit/armen/internal/log"
	"github.com/patkersoxton-bit/armen/pkg/arm"
)

// Standard hobby-servo PWM parameters: 50 Hz frame, 500-2500 us pulse
// over the 0-180 degree range. The cycle length gives 10 us resolution.
const (
	pwmFreqHz  = 50
	pwmCycle   = 2000 // duty counts per 20 ms frame
	pulseMinUs = 500
	pulseMaxUs = 2500
)

// GPIO drives one PWM pin per servo channel through the Raspberry Pi
// PWM peripheral.
type GPIO struct {
	mu       sync.Mutex
	pins     [arm.NumJoints]rpio.Pin
	detached bool
}

// OpenGPIO maps memory for GPIO access and configures the given BCM
// pins for 50 Hz PWM.
func OpenGPIO(pinNumbers [arm.NumJoints]int) (*GPIO, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}

	g := &GPIO{}
	for j, n := range pinNumbers {
		pin := rpio.Pin(n)
		pin.Mode(rpio.Pwm)
		pin.Freq(pwmFreqHz * pwmCycle)
		g.pins[j] = pin
	}
	log.Info("gpio sink attached", "pins", pinNumbers)
	return g, nil
}

// WritePose sets each channel's pulse width from its angle.
func (g *GPIO) WritePose(p arm.Pose) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.detached {
		return ErrDetached
	}
	for j := 0; j < arm.NumJoints; j++ {
		g.pins[j].DutyCycle(angleToDuty(p[j]), pwmCycle)
	}
	return nil
}

// Detach stops all pulses, de-energizing the servos, and releases the
// GPIO mapping.
func (g *GPIO) Detach() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.detached {
		return nil
	}
	g.detached = true
	for j := 0; j < arm.NumJoints; j++ {
		g.pins[j].DutyCycle(0, pwmCycle)
	}
	log.Warn("gpio sink detached, outputs de-energized")
	return rpio.Close()
}

// angleToDuty converts degrees to duty counts. One count is 10 us.
func angleToDuty(angle float64) uint32 {
	if angle < 0 {
		angle = 0
	}
	if angle > 180 {
		angle = 180
	}
	pulseUs := pulseMinUs + angle/180*(pulseMaxUs-pulseMinUs)
	return uint32(pulseUs/10 + 0.5)
}
