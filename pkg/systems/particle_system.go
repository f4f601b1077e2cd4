package systems

import (
	"fmt"
	"image/color"
	"math/rand"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/gonewx/petanim/internal/particle"
	"github.com/gonewx/petanim/pkg/components"
	"github.com/gonewx/petanim/pkg/config"
	"github.com/gonewx/petanim/pkg/ecs"
)

// OffsetFunc returns a particle's spawn offset from the emitter origin.
type OffsetFunc func(rng *rand.Rand) (dx, dy float64)

// UniformOffset spreads particles uniformly over [-spread, spread] on both axes.
func UniformOffset(spread float64) OffsetFunc {
	return func(rng *rand.Rand) (float64, float64) {
		return particle.RandomInRangeWith(rng, -spread, spread),
			particle.RandomInRangeWith(rng, -spread, spread)
	}
}

// ParticleSystem owns every live particle emission.
//
// Emissions are independent of the animation that spawned them: stopping
// or replacing an animation never touches its particles. Each Update call
// integrates every particle, prunes dead ones and drops empty emissions.
//
// An emission spawned since the previous Update is registered (and visible
// to render queries) but is not integrated until the Update after it, so a
// host frame renders fresh particles at their spawn positions.
type ParticleSystem struct {
	emissions *ecs.Registry[string, *components.ParticleEmission]
	tuning    config.ParticleTuning
	rng       *rand.Rand
	now       func() time.Time
	logger    *zap.Logger

	seq   atomic.Uint64
	frame uint64
}

// ParticleOption customises a ParticleSystem.
type ParticleOption func(*ParticleSystem)

// WithRand makes spawning draw from rng, for reproducible runs.
func WithRand(rng *rand.Rand) ParticleOption {
	return func(ps *ParticleSystem) { ps.rng = rng }
}

// WithClock replaces the wall clock used in emission keys.
func WithClock(now func() time.Time) ParticleOption {
	return func(ps *ParticleSystem) { ps.now = now }
}

// NewParticleSystem creates an empty simulator using tuning for every
// emission it spawns.
func NewParticleSystem(tuning config.ParticleTuning, logger *zap.Logger, opts ...ParticleOption) *ParticleSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	ps := &ParticleSystem{
		emissions: ecs.NewRegistry[string, *components.ParticleEmission](),
		tuning:    tuning,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
		logger:    logger.Named("particles"),
	}
	for _, opt := range opts {
		opt(ps)
	}
	return ps
}

// Spawn creates an emission of count particles around the origin (0,0).
// See SpawnAt.
func (ps *ParticleSystem) Spawn(source string, count int, c color.RGBA, size float64, offset OffsetFunc) (string, bool) {
	return ps.SpawnAt(source, 0, 0, count, c, size, offset)
}

// SpawnAt creates a keyed emission of exactly count particles around (x,y).
// Each particle gets offset(rng) added to the origin (UniformOffset of the
// configured spread when offset is nil), a random velocity in
// [-MaxSpeed, MaxSpeed] on both axes, life=maxLife=1 and the given color
// and size. The physics config is copied from the tuning now and never
// reloaded. A count or size that is not positive spawns nothing and
// returns ok=false.
func (ps *ParticleSystem) SpawnAt(source string, x, y float64, count int, c color.RGBA, size float64, offset OffsetFunc) (key string, ok bool) {
	if count <= 0 || !(size > 0) {
		return "", false
	}
	if offset == nil {
		offset = UniformOffset(ps.tuning.Spread)
	}

	emission := &components.ParticleEmission{
		Key:    ps.nextKey(source),
		Source: source,
		Emitter: components.EmitterDescriptor{
			X:     x,
			Y:     y,
			Rate:  count,
			Burst: count,
		},
		Physics: components.PhysicsConfig{
			Gravity:   ps.tuning.Gravity,
			Wind:      ps.tuning.Wind,
			FadeRate:  ps.tuning.FadeRate,
			SizeDecay: ps.tuning.SizeDecay,
		},
		Particles: make([]components.Particle, 0, count),
		BornFrame: ps.frame,
	}

	speed := ps.tuning.MaxSpeed
	for i := 0; i < count; i++ {
		dx, dy := offset(ps.rng)
		emission.Particles = append(emission.Particles, components.Particle{
			X:       x + dx,
			Y:       y + dy,
			VX:      particle.RandomInRangeWith(ps.rng, -speed, speed),
			VY:      particle.RandomInRangeWith(ps.rng, -speed, speed),
			Life:    1.0,
			MaxLife: 1.0,
			Color:   c,
			Size:    size,
			Alpha:   1.0,
		})
	}

	ps.emissions.Set(emission.Key, emission)
	ps.logger.Debug("emission spawned",
		zap.String("key", emission.Key),
		zap.String("source", source),
		zap.Int("count", count))
	return emission.Key, true
}

// nextKey derives "<source>_<unixMillis>_<seq>". The sequence makes keys
// unique even for several spawns by one entity within one millisecond.
func (ps *ParticleSystem) nextKey(source string) string {
	return fmt.Sprintf("%s_%d_%d", source, ps.now().UnixMilli(), ps.seq.Add(1))
}

// Update advances every emission spawned before this frame by one step.
//
// By default one fixed step is integrated per call regardless of dt. With
// tuning.TimeScaled every per-step delta is multiplied by
// dt/ReferenceFrame instead.
func (ps *ParticleSystem) Update(dt time.Duration) {
	scale := 1.0
	if ps.tuning.TimeScaled && ps.tuning.ReferenceFrame > 0 {
		scale = float64(dt) / float64(ps.tuning.ReferenceFrame)
	}

	ps.emissions.Each(func(key string, e *components.ParticleEmission) {
		if e.BornFrame == ps.frame {
			return
		}
		if len(stepParticles(e, scale)) == 0 {
			ps.emissions.MarkForRemoval(key)
			ps.logger.Debug("emission expired", zap.String("key", key))
		}
	})
	ps.emissions.RemoveMarked()
	ps.frame++
}

// stepParticles integrates one step and compacts e.Particles in place,
// keeping only particles with life and size left.
func stepParticles(e *components.ParticleEmission, scale float64) []components.Particle {
	phys := e.Physics
	alive := e.Particles[:0]
	for _, p := range e.Particles {
		p.X += p.VX * scale
		p.Y += p.VY * scale
		p.VY += phys.Gravity * scale
		p.VX += phys.Wind * scale
		p.Life -= phys.FadeRate * scale
		p.Alpha = p.Life / p.MaxLife
		p.Size -= phys.SizeDecay * scale

		if p.Alive() {
			alive = append(alive, p)
		}
	}
	e.Particles = alive
	return alive
}

// Emissions returns deep copies of every live emission in spawn order.
func (ps *ParticleSystem) Emissions() []components.ParticleEmission {
	out := make([]components.ParticleEmission, 0, ps.emissions.Len())
	ps.emissions.Each(func(_ string, e *components.ParticleEmission) {
		out = append(out, e.Clone())
	})
	return out
}

// Emission returns a copy of one emission.
func (ps *ParticleSystem) Emission(key string) (components.ParticleEmission, bool) {
	e, ok := ps.emissions.Get(key)
	if !ok {
		return components.ParticleEmission{}, false
	}
	return e.Clone(), true
}

// ParticlesFor returns copies of the live particles spawned by one source.
func (ps *ParticleSystem) ParticlesFor(source string) []components.Particle {
	var out []components.Particle
	ps.emissions.Each(func(_ string, e *components.ParticleEmission) {
		if e.Source == source {
			out = append(out, e.Particles...)
		}
	})
	return out
}

// Count returns the number of live emissions.
func (ps *ParticleSystem) Count() int {
	return ps.emissions.Len()
}

// ParticleCount returns the number of live particles across emissions.
func (ps *ParticleSystem) ParticleCount() int {
	n := 0
	ps.emissions.Each(func(_ string, e *components.ParticleEmission) {
		n += len(e.Particles)
	})
	return n
}

// Clear drops every emission.
func (ps *ParticleSystem) Clear() {
	ps.emissions.Clear()
}
