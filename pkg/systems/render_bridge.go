package systems

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/petanim/pkg/components"
	"github.com/gonewx/petanim/pkg/ecs"
)

// ParticleSnapshot is one particle as the renderer needs it.
type ParticleSnapshot struct {
	Emission string
	X, Y     float64
	Size     float64
	Alpha    float64
	Color    color.RGBA
}

// RenderFrame is everything a renderer needs to draw one entity.
type RenderFrame struct {
	Entity     ecs.EntityID
	TypeID     string
	Animation  string
	FrameIndex int
	Playing    bool

	// Frame is valid only when HasFrame is set; otherwise skip the sprite.
	Frame    components.SpriteFrame
	HasFrame bool
	// Image is the atlas sub-image of Frame, nil for image-less atlases.
	Image *ebiten.Image

	// Particles are all live particles, not only this entity's.
	Particles []ParticleSnapshot
}

// RenderBridge assembles RenderFrames from the playback, particle and atlas
// state. It never mutates any of them.
type RenderBridge struct {
	playback  *PlaybackSystem
	particles *ParticleSystem
	atlases   *AtlasResolver
}

// NewRenderBridge creates a bridge over the given systems.
func NewRenderBridge(playback *PlaybackSystem, particles *ParticleSystem, atlases *AtlasResolver) *RenderBridge {
	return &RenderBridge{playback: playback, particles: particles, atlases: atlases}
}

// Query builds the render frame of entity, an instance of typeID.
// A completed one-shot animation sits at index TotalFrames, which has no
// rectangle, so HasFrame is false and the sprite is not drawn.
func (b *RenderBridge) Query(entity ecs.EntityID, typeID string) RenderFrame {
	rf := RenderFrame{
		Entity:    entity,
		TypeID:    typeID,
		Particles: b.Particles(),
	}

	state, ok := b.playback.Query(entity)
	if !ok {
		return rf
	}
	rf.Animation = state.Animation
	rf.Playing = state.Playing
	rf.FrameIndex = state.CurrentFrame

	if b.atlases == nil {
		return rf
	}
	frame, ok := b.atlases.Resolve(typeID, state.Animation, rf.FrameIndex)
	if !ok {
		return rf
	}
	rf.Frame = frame
	rf.HasFrame = true
	if atlas, ok := b.atlases.Atlas(typeID); ok {
		rf.Image = atlas.SubImage(frame)
	}
	return rf
}

// Particles flattens every live emission into snapshots, in spawn order.
func (b *RenderBridge) Particles() []ParticleSnapshot {
	if b.particles == nil {
		return nil
	}
	emissions := b.particles.Emissions()
	n := 0
	for _, e := range emissions {
		n += len(e.Particles)
	}
	out := make([]ParticleSnapshot, 0, n)
	for _, e := range emissions {
		for _, p := range e.Particles {
			out = append(out, ParticleSnapshot{
				Emission: e.Key,
				X:        p.X,
				Y:        p.Y,
				Size:     p.Size,
				Alpha:    p.Alpha,
				Color:    p.Color,
			})
		}
	}
	return out
}
