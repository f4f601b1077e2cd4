package components

// EmitterDescriptor records where and how many particles an emission spawned.
type EmitterDescriptor struct {
	X, Y  float64 // Spawn origin
	Rate  int     // Particles requested per burst
	Burst int     // Particles actually spawned
}

// PhysicsConfig is copied into an emission at spawn time and never reloaded.
type PhysicsConfig struct {
	Gravity   float64 // Added to VY each step
	Wind      float64 // Added to VX each step
	FadeRate  float64 // Subtracted from Life each step
	SizeDecay float64 // Subtracted from Size each step
}

// ParticleEmission is one spawned batch of particles. Its lifecycle is
// independent of the animation that spawned it: it is removed when its
// last particle dies, not when the animation stops.
type ParticleEmission struct {
	Key       string // Unique registry key
	Source    string // Spawning entity
	Emitter   EmitterDescriptor
	Physics   PhysicsConfig
	Particles []Particle

	// BornFrame is the simulator frame during which the emission was spawned;
	// the simulator skips integrating it until the following frame.
	BornFrame uint64
}

// Clone returns a deep copy safe to hand to renderers.
func (e *ParticleEmission) Clone() ParticleEmission {
	c := *e
	c.Particles = make([]Particle, len(e.Particles))
	copy(c.Particles, e.Particles)
	return c
}
