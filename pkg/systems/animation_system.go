package systems

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/gonewx/petanim/pkg/components"
	"github.com/gonewx/petanim/pkg/config"
	"github.com/gonewx/petanim/pkg/ecs"
)

// TickStatus tells the caller what a Tick did to the playback.
type TickStatus int

const (
	// StatusIdle means nothing happened: no playback, or it already stopped.
	StatusIdle TickStatus = iota
	// StatusContinuing means the playback is still running after the tick.
	StatusContinuing
	// StatusCompleted is reported exactly once, on the tick a non-looping
	// animation runs out of frames.
	StatusCompleted
)

func (s TickStatus) String() string {
	switch s {
	case StatusContinuing:
		return "continuing"
	case StatusCompleted:
		return "completed"
	default:
		return "idle"
	}
}

// TickResult is the outcome of one Tick.
type TickResult struct {
	Status TickStatus
	// Fired holds the effects due at the new progress, in declaration order.
	Fired []config.EffectDeclaration
}

// playback is the internal record behind one entity's PlaybackState.
type playback struct {
	state   components.PlaybackState
	effects []config.EffectDeclaration
	// fired maps effect index to cycle+1 of the last firing, for dedupe.
	fired map[int]int
}

// PlaybackSystem runs one animation per entity against the pet catalog.
type PlaybackSystem struct {
	catalog   *config.Catalog
	tuning    config.EffectTuning
	playbacks *ecs.Registry[ecs.EntityID, *playback]
	logger    *zap.Logger
}

// NewPlaybackSystem creates a playback system reading definitions from catalog.
func NewPlaybackSystem(catalog *config.Catalog, tuning config.EffectTuning, logger *zap.Logger) *PlaybackSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlaybackSystem{
		catalog:   catalog,
		tuning:    tuning,
		playbacks: ecs.NewRegistry[ecs.EntityID, *playback](),
		logger:    logger.Named("playback"),
	}
}

// SetCatalog swaps the definition source. Running playbacks keep the
// definition they were started with.
func (s *PlaybackSystem) SetCatalog(catalog *config.Catalog) {
	s.catalog = catalog
}

// Start plays animation on entity, replacing whatever it was playing.
// It returns false and leaves any existing playback untouched when the
// animation is not defined for typeID.
func (s *PlaybackSystem) Start(entity ecs.EntityID, typeID, animation string) bool {
	if s.catalog == nil {
		return false
	}
	def, ok := s.catalog.AnimationDefinition(typeID, animation)
	if !ok {
		s.logger.Debug("animation not defined",
			zap.String("entity", string(entity)),
			zap.String("type", typeID),
			zap.String("animation", animation))
		return false
	}

	frameTime := def.FrameTime()
	if frameTime <= 0 {
		frameTime = time.Nanosecond
	}

	s.playbacks.Set(entity, &playback{
		state: components.PlaybackState{
			Animation:    animation,
			CurrentFrame: 0,
			TotalFrames:  def.Frames,
			FrameTime:    frameTime,
			Elapsed:      0,
			Playing:      true,
			Loop:         def.Loop,
		},
		effects: def.Effects,
		fired:   make(map[int]int),
	})
	s.logger.Debug("animation started",
		zap.String("entity", string(entity)),
		zap.String("animation", animation),
		zap.Int("frames", def.Frames),
		zap.Bool("loop", def.Loop))
	return true
}

// Tick advances entity's playback by dt and scans for due effects.
func (s *PlaybackSystem) Tick(entity ecs.EntityID, dt time.Duration) TickResult {
	pb, ok := s.playbacks.Get(entity)
	if !ok || !pb.state.Playing {
		return TickResult{Status: StatusIdle}
	}

	st := &pb.state
	status := StatusContinuing
	st.Elapsed += dt
	for st.Elapsed >= st.FrameTime {
		st.Elapsed -= st.FrameTime
		st.CurrentFrame++
		if st.CurrentFrame < st.TotalFrames {
			continue
		}
		if st.Loop {
			st.CurrentFrame = 0
			st.Cycle++
			continue
		}
		st.CurrentFrame = st.TotalFrames
		st.Playing = false
		st.Completed = true
		status = StatusCompleted
		s.logger.Debug("animation completed",
			zap.String("entity", string(entity)),
			zap.String("animation", st.Animation))
		break
	}

	return TickResult{Status: status, Fired: s.dueEffects(pb)}
}

// dueEffects returns effects whose timing is within tolerance of the
// current progress.
func (s *PlaybackSystem) dueEffects(pb *playback) []config.EffectDeclaration {
	if len(pb.effects) == 0 {
		return nil
	}
	progress := pb.state.Progress()

	var due []config.EffectDeclaration
	for i, effect := range pb.effects {
		if math.Abs(progress-effect.Timing) >= s.tuning.TriggerTolerance {
			continue
		}
		if s.tuning.Dedupe {
			if pb.fired[i] == pb.state.Cycle+1 {
				continue
			}
			pb.fired[i] = pb.state.Cycle + 1
		}
		due = append(due, effect)
	}
	return due
}

// Stop removes entity's playback. Stopping an absent entity is a no-op.
func (s *PlaybackSystem) Stop(entity ecs.EntityID) {
	s.playbacks.Delete(entity)
}

// Query returns a snapshot of entity's playback.
func (s *PlaybackSystem) Query(entity ecs.EntityID) (components.PlaybackState, bool) {
	pb, ok := s.playbacks.Get(entity)
	if !ok {
		return components.PlaybackState{}, false
	}
	return pb.state, true
}

// IsPlaying reports whether entity has a running playback.
func (s *PlaybackSystem) IsPlaying(entity ecs.EntityID) bool {
	pb, ok := s.playbacks.Get(entity)
	return ok && pb.state.Playing
}

// Entities lists entities with a playback, in start order.
func (s *PlaybackSystem) Entities() []ecs.EntityID {
	return s.playbacks.Keys()
}
