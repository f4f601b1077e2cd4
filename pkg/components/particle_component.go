package components

import "image/color"

// Particle is a single simulated point. It lives inside exactly one
// ParticleEmission and is removed the moment Life or Size drops to zero.
type Particle struct {
	// Position and velocity (pixels, pixels per step)
	X, Y   float64
	VX, VY float64

	// Lifecycle (Life/MaxLife in [0,1])
	Life    float64
	MaxLife float64

	Color color.RGBA
	Size  float64

	// Alpha is derived: always Life / MaxLife after each step.
	Alpha float64
}

// Alive reports whether the particle should stay in its emission.
func (p Particle) Alive() bool {
	return p.Life > 0 && p.Size > 0
}
