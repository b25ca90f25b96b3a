package idle

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/patkersoxton-bit/armen/pkg/arm"
)

func TestNew_KnownNames(t *testing.T) {
	for _, name := range Names() {
		anim, err := New(name)
		if err != nil {
			t.Errorf("New(%q) failed: %v", name, err)
			continue
		}
		if anim.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, anim.Name())
		}
	}
}

func TestNew_UnknownName(t *testing.T) {
	_, err := New("warp_speed")
	if !errors.Is(err, ErrUnknownAnimation) {
		t.Errorf("expected ErrUnknownAnimation, got %v", err)
	}
}

func TestBreathing_Cadence(t *testing.T) {
	a := NewBreathing()

	first := a.Evaluate(0)
	beforeSwitch := a.Evaluate(2999 * time.Millisecond)
	afterSwitch := a.Evaluate(3001 * time.Millisecond)
	nextCycle := a.Evaluate(6001 * time.Millisecond)

	if first != beforeSwitch {
		t.Error("pose should hold for the first 3000 ms")
	}
	if first == afterSwitch {
		t.Error("pose should switch at the 3000 ms boundary")
	}
	if first != nextCycle {
		t.Error("pose should return to the first at 6000 ms")
	}
	if a.IsComplete(time.Hour) {
		t.Error("breathing is continuous")
	}
}

func TestCuriousTilt_Quadrants(t *testing.T) {
	a := NewCuriousTilt()

	left := a.Evaluate(1 * time.Second)
	neutral1 := a.Evaluate(3 * time.Second)
	right := a.Evaluate(5 * time.Second)
	neutral2 := a.Evaluate(7 * time.Second)
	wrapped := a.Evaluate(9 * time.Second)

	if neutral1 != arm.Neutral || neutral2 != arm.Neutral {
		t.Error("quadrants 2 and 4 should be exact neutral")
	}
	if left[arm.Base] >= arm.Neutral[arm.Base] {
		t.Errorf("left quadrant should tilt base low: %v", left[arm.Base])
	}
	if right[arm.Base] <= arm.Neutral[arm.Base] {
		t.Errorf("right quadrant should tilt base high: %v", right[arm.Base])
	}
	if wrapped != left {
		t.Error("cycle should wrap at 8 s")
	}
}

func TestMicroAdjust_Halves(t *testing.T) {
	a := NewMicroAdjust(42)

	// First half: bounded perturbation of base, wrist pitch, wrist roll.
	for _, at := range []time.Duration{0, 3 * time.Second, 9 * time.Second} {
		p := a.Evaluate(at)
		if !p.InLimits() {
			t.Errorf("perturbed pose at %v out of limits: %v", at, p)
		}
		for _, j := range []arm.Joint{arm.Shoulder, arm.Elbow, arm.Gripper} {
			if p[j] != arm.Neutral[j] {
				t.Errorf("%s should stay at neutral, got %v", j, p[j])
			}
		}
		for _, j := range []arm.Joint{arm.Base, arm.WristPitch} {
			if diff := p[j] - arm.Neutral[j]; diff > 3 || diff < -3 {
				t.Errorf("%s offset %v exceeds amplitude", j, diff)
			}
		}
	}

	// Offsets are resampled every evaluation.
	p1 := a.Evaluate(time.Second)
	p2 := a.Evaluate(time.Second)
	if p1 == p2 {
		t.Error("consecutive evaluations should resample offsets")
	}

	// Second half: exact neutral.
	for _, at := range []time.Duration{10 * time.Second, 15 * time.Second, 19 * time.Second} {
		if p := a.Evaluate(at); p != arm.Neutral {
			t.Errorf("second half at %v should be exact neutral, got %v", at, p)
		}
	}
}

func TestReset_SelfTerminating(t *testing.T) {
	a := NewReset()
	if p := a.Evaluate(0); p != arm.Neutral {
		t.Errorf("reset should target neutral, got %v", p)
	}
	if !a.IsComplete(0) {
		t.Error("reset completes immediately")
	}
}

func TestAnimations_StayWithinLimits(t *testing.T) {
	for _, name := range Names() {
		anim, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		for elapsed := time.Duration(0); elapsed < 25*time.Second; elapsed += 137 * time.Millisecond {
			if p := anim.Evaluate(elapsed); !p.InLimits() {
				t.Fatalf("%s at %v produced out-of-limits pose %v", name, elapsed, p)
			}
		}
	}
}

func TestRandom_PicksLoopingAnimation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name := Random(rng)
		if name == NameReset {
			t.Fatal("random pick must not return the one-shot reset")
		}
		if _, err := New(name); err != nil {
			t.Fatalf("random pick %q is not registered: %v", name, err)
		}
		seen[name] = true
	}
	if len(seen) < 2 {
		t.Error("expected variety across 100 picks")
	}
}
