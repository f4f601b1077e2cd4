// Package engine ties the playback, particle, effect and atlas systems
// into one instance a host drives once per frame.
//
// An Engine owns all of its registries; several engines can run side by
// side (one per test, one per simulated world). It is not safe for
// concurrent use: a host with several threads must serialize calls.
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/gonewx/petanim/pkg/components"
	"github.com/gonewx/petanim/pkg/config"
	"github.com/gonewx/petanim/pkg/ecs"
	"github.com/gonewx/petanim/pkg/systems"
)

// Options configures New. Only Catalog is required.
type Options struct {
	Catalog *config.Catalog
	// Config defaults to config.DefaultEngineConfig().
	Config *config.EngineConfig
	Logger *zap.Logger

	// Tones and Presenter receive sound and screen effects. Nil discards them.
	Tones     systems.ToneSink
	Presenter systems.Presenter

	// Rand and Clock make particle spawning reproducible.
	Rand  *rand.Rand
	Clock func() time.Time
}

// Completion reports a one-shot animation that finished during Update.
type Completion struct {
	Entity    ecs.EntityID
	Animation string
}

type anchor struct{ x, y float64 }

// Engine is one independent animation world.
type Engine struct {
	catalog *config.Catalog
	cfg     *config.EngineConfig
	logger  *zap.Logger

	entities *ecs.EntityManager
	anchors  *ecs.Registry[ecs.EntityID, anchor]

	playback   *systems.PlaybackSystem
	particles  *systems.ParticleSystem
	dispatcher *systems.EffectDispatcher
	atlases    *systems.AtlasResolver
	bridge     *systems.RenderBridge
}

// New builds an engine.
func New(opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("engine: catalog is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultEngineConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var particleOpts []systems.ParticleOption
	if opts.Rand != nil {
		particleOpts = append(particleOpts, systems.WithRand(opts.Rand))
	}
	if opts.Clock != nil {
		particleOpts = append(particleOpts, systems.WithClock(opts.Clock))
	}

	e := &Engine{
		catalog:  opts.Catalog,
		cfg:      cfg,
		logger:   logger.Named("engine"),
		entities: ecs.NewEntityManager(),
		anchors:  ecs.NewRegistry[ecs.EntityID, anchor](),
		atlases:  systems.NewAtlasResolver(logger),
	}
	e.playback = systems.NewPlaybackSystem(opts.Catalog, cfg.Effects, logger)
	e.particles = systems.NewParticleSystem(cfg.Particles, logger, particleOpts...)
	e.dispatcher = systems.NewEffectDispatcher(e.particles, opts.Tones, opts.Presenter, cfg.Particles, logger)
	e.bridge = systems.NewRenderBridge(e.playback, e.particles, e.atlases)
	return e, nil
}

// Catalog returns the catalog new animations are looked up in.
func (e *Engine) Catalog() *config.Catalog { return e.catalog }

// Config returns the engine tuning.
func (e *Engine) Config() *config.EngineConfig { return e.cfg }

// SetCatalog replaces the catalog, e.g. after a hot reload. Running
// animations finish with the definition they started with.
func (e *Engine) SetCatalog(catalog *config.Catalog) {
	if catalog == nil {
		return
	}
	e.catalog = catalog
	e.playback.SetCatalog(catalog)
	e.logger.Info("catalog replaced", zap.Int("pets", len(catalog.Pets)))
}

// RegisterAtlas installs the sprite atlas of a pet type. A nil atlas is
// ignored.
func (e *Engine) RegisterAtlas(typeID string, atlas *systems.SpriteAtlas) {
	e.atlases.Register(typeID, atlas)
}

// Atlas returns the atlas registered for a pet type.
func (e *Engine) Atlas(typeID string) (*systems.SpriteAtlas, bool) {
	return e.atlases.Atlas(typeID)
}

// AddEntity creates a new instance of a catalog pet.
func (e *Engine) AddEntity(typeID string) (ecs.EntityID, error) {
	if _, ok := e.catalog.Pet(typeID); !ok {
		return "", fmt.Errorf("%w: %q", config.ErrUnknownPet, typeID)
	}
	id := e.entities.CreateEntity(typeID)
	e.logger.Debug("entity added", zap.String("entity", string(id)), zap.String("type", typeID))
	return id, nil
}

// RegisterEntity adopts a host-chosen id for an instance of typeID.
func (e *Engine) RegisterEntity(id ecs.EntityID, typeID string) {
	e.entities.RegisterEntity(id, typeID)
}

// RemoveEntity stops the entity's animation and forgets it. Particles it
// already spawned live on.
func (e *Engine) RemoveEntity(id ecs.EntityID) {
	e.playback.Stop(id)
	e.anchors.Delete(id)
	e.entities.DestroyEntity(id)
	e.entities.RemoveMarkedEntities()
}

// Entities lists the known entities in creation order.
func (e *Engine) Entities() []ecs.EntityID {
	return e.entities.Entities()
}

// TypeOf returns the pet type of an entity. Unregistered ids of the form
// "<type>#<suffix>" resolve to their prefix; any other id is its own type.
func (e *Engine) TypeOf(id ecs.EntityID) string {
	typeID, _ := e.entities.TypeOf(id)
	return typeID
}

// SetAnchor sets where the entity's particles spawn.
func (e *Engine) SetAnchor(id ecs.EntityID, x, y float64) {
	e.anchors.Set(id, anchor{x, y})
}

// StartAnimation plays animation on id. It returns false, leaving any
// current playback alone, when the pet type has no such animation.
func (e *Engine) StartAnimation(id ecs.EntityID, animation string) bool {
	return e.playback.Start(id, e.TypeOf(id), animation)
}

// UpdateAnimation advances one entity and dispatches the effects that came
// due. Particles spawned here are integrated from the next UpdateParticles
// that follows the current one.
func (e *Engine) UpdateAnimation(id ecs.EntityID, dt time.Duration) systems.TickResult {
	res := e.playback.Tick(id, dt)
	if len(res.Fired) == 0 {
		return res
	}
	a, _ := e.anchors.Get(id)
	origin := systems.EffectOrigin{Source: string(id), X: a.x, Y: a.y}
	for _, effect := range res.Fired {
		e.dispatcher.Dispatch(origin, effect)
	}
	return res
}

// UpdateParticles integrates every particle emission.
func (e *Engine) UpdateParticles(dt time.Duration) {
	e.particles.Update(dt)
}

// Update runs one host frame: every playback in start order with its
// effects, then the particle pass. It returns the one-shot animations that
// completed in this frame.
func (e *Engine) Update(dt time.Duration) []Completion {
	var done []Completion
	for _, id := range e.playback.Entities() {
		res := e.UpdateAnimation(id, dt)
		if res.Status == systems.StatusCompleted {
			state, _ := e.playback.Query(id)
			done = append(done, Completion{Entity: id, Animation: state.Animation})
		}
	}
	e.UpdateParticles(dt)
	return done
}

// StopAnimation removes the entity's playback. Idempotent.
func (e *Engine) StopAnimation(id ecs.EntityID) {
	e.playback.Stop(id)
}

// AnimationState returns a snapshot of the entity's playback.
func (e *Engine) AnimationState(id ecs.EntityID) (components.PlaybackState, bool) {
	return e.playback.Query(id)
}

// IsAnimationPlaying reports whether the entity has a running animation.
func (e *Engine) IsAnimationPlaying(id ecs.EntityID) bool {
	return e.playback.IsPlaying(id)
}

// Render returns what to draw for id. It mutates nothing.
func (e *Engine) Render(id ecs.EntityID) systems.RenderFrame {
	return e.bridge.Query(id, e.TypeOf(id))
}

// Emissions returns copies of every live particle emission.
func (e *Engine) Emissions() []components.ParticleEmission {
	return e.particles.Emissions()
}

// ParticleCount returns the number of live particles.
func (e *Engine) ParticleCount() int {
	return e.particles.ParticleCount()
}

// ClearParticles drops every emission.
func (e *Engine) ClearParticles() {
	e.particles.Clear()
}
