package systems

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/petanim/pkg/components"
)

func newTestBridge(t *testing.T) (*RenderBridge, *PlaybackSystem, *ParticleSystem) {
	t.Helper()
	playback := newTestPlayback(t, false)
	particles := newTestParticles(defaultTuning())

	atlas, err := NewSpriteAtlasSize(256, 128, map[string][]components.SpriteFrame{
		"attack": strip(0, 4, 64, 64),
		"idle":   strip(64, 4, 64, 64),
	})
	require.NoError(t, err)
	resolver := NewAtlasResolver(nil)
	resolver.Register(testPetType, atlas)

	return NewRenderBridge(playback, particles, resolver), playback, particles
}

func TestRenderBridge_NoPlayback(t *testing.T) {
	bridge, _, _ := newTestBridge(t)

	rf := bridge.Query(testPet, testPetType)
	assert.Equal(t, testPet, rf.Entity)
	assert.False(t, rf.HasFrame)
	assert.Empty(t, rf.Particles)
}

func TestRenderBridge_CurrentFrame(t *testing.T) {
	bridge, playback, _ := newTestBridge(t)
	require.True(t, playback.Start(testPet, testPetType, "idle"))
	playback.Tick(testPet, 250*time.Millisecond)

	rf := bridge.Query(testPet, testPetType)
	require.True(t, rf.HasFrame)
	assert.Equal(t, "idle", rf.Animation)
	assert.Equal(t, 2, rf.FrameIndex)
	assert.Equal(t, components.SpriteFrame{X: 128, Y: 64, Width: 64, Height: 64}, rf.Frame)
	assert.True(t, rf.Playing)
	assert.Nil(t, rf.Image)
}

func TestRenderBridge_CompletedSkipsDraw(t *testing.T) {
	bridge, playback, _ := newTestBridge(t)
	require.True(t, playback.Start(testPet, testPetType, "attack"))
	playback.Tick(testPet, 2*time.Second)

	rf := bridge.Query(testPet, testPetType)
	assert.Equal(t, "attack", rf.Animation)
	assert.Equal(t, 4, rf.FrameIndex, "clamped at the frame count")
	assert.False(t, rf.Playing)
	assert.False(t, rf.HasFrame, "index past the last rectangle resolves to none")
	assert.Nil(t, rf.Image)

	_, ok := bridge.atlases.Resolve(testPetType, "attack", rf.FrameIndex)
	assert.False(t, ok)
}

func TestRenderBridge_MissingAtlasAnimation(t *testing.T) {
	bridge, playback, _ := newTestBridge(t)
	require.True(t, playback.Start(testPet, testPetType, "roar"))

	rf := bridge.Query(testPet, testPetType)
	assert.Equal(t, "roar", rf.Animation)
	assert.False(t, rf.HasFrame, "no atlas rows for roar: skip the draw")
}

func TestRenderBridge_ParticlesAndNoMutation(t *testing.T) {
	bridge, playback, particles := newTestBridge(t)
	require.True(t, playback.Start(testPet, testPetType, "idle"))
	particles.Spawn("other#1", 3, orange, 4, nil)
	particles.Spawn(string(testPet), 2, orange, 4, nil)

	before, _ := playback.Query(testPet)
	emissionsBefore := particles.Emissions()

	for i := 0; i < 3; i++ {
		rf := bridge.Query(testPet, testPetType)
		require.Len(t, rf.Particles, 5)
		assert.Equal(t, 4.0, rf.Particles[0].Size)
		assert.Equal(t, 1.0, rf.Particles[0].Alpha)
	}

	after, _ := playback.Query(testPet)
	assert.Equal(t, before, after)
	assert.Equal(t, emissionsBefore, particles.Emissions())
}
