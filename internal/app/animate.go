package app

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/mission-control/telemetry/internal/telemetry"
)

const (
	fps = 60
	// Critically damped at this frequency the springs settle in about 0.8s.
	springFrequency = 6.0
	springDamping   = 1.0
	settleEpsilon   = 0.01
	framesPerShake  = 4
)

// shakeOffsets is the horizontal warning shake, in columns.
var shakeOffsets = []int{-1, 1, -1, 1, 0}

type axis struct {
	pos, vel float64
}

func (a *axis) step(s harmonica.Spring, target float64) {
	a.pos, a.vel = s.Update(a.pos, a.vel, target)
}

func (a axis) settled(target float64) bool {
	return math.Abs(a.pos-target) < settleEpsilon && math.Abs(a.vel) < settleEpsilon
}

// Animator eases the displayed visual state toward the latest derived one.
// Continuous quantities move on springs; particle count and alert switch
// immediately.
type Animator struct {
	spring harmonica.Spring
	target telemetry.VisualState

	height axis
	tilt   axis
	flame  axis

	shakeFrame int // frames left in the current shake, 0 when idle
}

// NewAnimator starts at rest on start.
func NewAnimator(start telemetry.VisualState) *Animator {
	return &Animator{
		spring: harmonica.NewSpring(harmonica.FPS(fps), springFrequency, springDamping),
		target: start,
		height: axis{pos: start.VerticalPosition},
		tilt:   axis{pos: start.Rotation},
		flame:  axis{pos: start.FlameIntensity},
	}
}

// SetTarget retargets the springs. An alerting target restarts the shake.
func (a *Animator) SetTarget(v telemetry.VisualState) {
	a.target = v
	if v.AlertActive {
		a.shakeFrame = len(shakeOffsets) * framesPerShake
	}
}

// Step advances one frame.
func (a *Animator) Step() {
	a.height.step(a.spring, a.target.VerticalPosition)
	a.tilt.step(a.spring, a.target.Rotation)
	a.flame.step(a.spring, a.target.FlameIntensity)
	if a.shakeFrame > 0 {
		a.shakeFrame--
	}
}

// Current returns the state to draw this frame.
func (a *Animator) Current() telemetry.VisualState {
	return telemetry.VisualState{
		VerticalPosition: a.height.pos,
		Rotation:         a.tilt.pos,
		FlameIntensity:   a.flame.pos,
		ParticleCount:    a.target.ParticleCount,
		AlertActive:      a.target.AlertActive,
	}
}

// Target returns the state the springs are moving toward.
func (a *Animator) Target() telemetry.VisualState {
	return a.target
}

// Shake returns the horizontal offset for this frame.
func (a *Animator) Shake() int {
	if a.shakeFrame == 0 {
		return 0
	}
	elapsed := len(shakeOffsets)*framesPerShake - a.shakeFrame
	return shakeOffsets[elapsed/framesPerShake]
}

// Settled reports whether every spring has come to rest on its target.
func (a *Animator) Settled() bool {
	return a.height.settled(a.target.VerticalPosition) &&
		a.tilt.settled(a.target.Rotation) &&
		a.flame.settled(a.target.FlameIntensity) &&
		a.shakeFrame == 0
}
