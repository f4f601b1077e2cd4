package systems

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/petanim/pkg/config"
	"github.com/gonewx/petanim/pkg/ecs"
	"github.com/gonewx/petanim/pkg/types"
)

func newTestPlayback(t *testing.T, dedupe bool) *PlaybackSystem {
	t.Helper()
	tuning := config.DefaultEngineConfig().Effects
	tuning.Dedupe = dedupe
	return NewPlaybackSystem(newTestCatalog(t), tuning, nil)
}

const testPet = ecs.EntityID("test_dragon#0001")

// TestPlayback_AttackScenario drives a 1000ms, 4 frame one-shot in 125ms
// steps: the 0.5 effect is due once frame 2 is reached and completion is
// reported on the eighth tick only.
func TestPlayback_AttackScenario(t *testing.T) {
	ps := newTestPlayback(t, false)
	require.True(t, ps.Start(testPet, testPetType, "attack"))

	var results []TickResult
	for i := 0; i < 12; i++ {
		results = append(results, ps.Tick(testPet, 125*time.Millisecond))
	}

	for i := 0; i < 7; i++ {
		assert.Equal(t, StatusContinuing, results[i].Status, "tick %d", i+1)
	}

	// Tick 4: elapsed 500ms, frame 2, progress 0.5.
	require.Len(t, results[3].Fired, 1)
	assert.Equal(t, types.EffectParticle, results[3].Fired[0].Kind)
	// Tick 5 is still at progress 0.5 and fires again.
	assert.Len(t, results[4].Fired, 1)
	// Progress 0.25 and 0.75 are outside the window.
	assert.Empty(t, results[1].Fired)
	assert.Empty(t, results[5].Fired)

	assert.Equal(t, StatusCompleted, results[7].Status)
	for i := 8; i < len(results); i++ {
		assert.Equal(t, StatusIdle, results[i].Status, "tick %d after completion", i+1)
		assert.Empty(t, results[i].Fired)
	}

	state, ok := ps.Query(testPet)
	require.True(t, ok, "completed playback is kept until Stop")
	assert.Equal(t, 4, state.CurrentFrame)
	assert.False(t, state.Playing)
	assert.True(t, state.Completed)
	assert.False(t, ps.IsPlaying(testPet))
}

func TestPlayback_FrameProgression(t *testing.T) {
	ps := newTestPlayback(t, false)
	require.True(t, ps.Start(testPet, testPetType, "attack"))

	want := []int{0, 1, 1, 2, 2, 3, 3, 4}
	for i, frame := range want {
		ps.Tick(testPet, 125*time.Millisecond)
		state, _ := ps.Query(testPet)
		assert.Equal(t, frame, state.CurrentFrame, "after tick %d", i+1)
	}
}

func TestPlayback_CompletionReportedOnce(t *testing.T) {
	tests := []struct {
		name  string
		steps []time.Duration
	}{
		{"single huge step", []time.Duration{5 * time.Second}},
		{"exact duration", []time.Duration{time.Second}},
		{"irregular steps", []time.Duration{
			333 * time.Millisecond, 17 * time.Millisecond, 400 * time.Millisecond, 251 * time.Millisecond,
		}},
		{"tiny steps", repeat(time.Millisecond, 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := newTestPlayback(t, false)
			require.True(t, ps.Start(testPet, testPetType, "attack"))

			completions := 0
			for _, dt := range tt.steps {
				if ps.Tick(testPet, dt).Status == StatusCompleted {
					completions++
				}
			}
			for i := 0; i < 20; i++ {
				if ps.Tick(testPet, 100*time.Millisecond).Status == StatusCompleted {
					completions++
				}
			}

			assert.Equal(t, 1, completions)
			state, _ := ps.Query(testPet)
			assert.Equal(t, state.TotalFrames, state.CurrentFrame)
			assert.False(t, state.Playing)
		})
	}
}

func TestPlayback_LoopStaysInRange(t *testing.T) {
	ps := newTestPlayback(t, false)
	require.True(t, ps.Start(testPet, testPetType, "idle"))

	rng := rand.New(rand.NewSource(42))
	var total time.Duration
	for i := 0; i < 500; i++ {
		dt := time.Duration(rng.Intn(250)) * time.Millisecond
		total += dt
		res := ps.Tick(testPet, dt)
		require.Equal(t, StatusContinuing, res.Status)

		state, _ := ps.Query(testPet)
		require.True(t, state.Playing)
		require.GreaterOrEqual(t, state.CurrentFrame, 0)
		require.Less(t, state.CurrentFrame, state.TotalFrames)
	}

	// Leftover time is never dropped: the position matches the total.
	state, _ := ps.Query(testPet)
	steps := int(total / state.FrameTime)
	assert.Equal(t, steps%state.TotalFrames, state.CurrentFrame)
	assert.Equal(t, steps/state.TotalFrames, state.Cycle)
	assert.Equal(t, total%state.FrameTime, state.Elapsed)
}

func TestPlayback_LoopWrapKeepsLeftover(t *testing.T) {
	ps := newTestPlayback(t, false)
	require.True(t, ps.Start(testPet, testPetType, "idle")) // 100ms per frame

	ps.Tick(testPet, 950*time.Millisecond)

	state, _ := ps.Query(testPet)
	assert.Equal(t, 1, state.CurrentFrame)
	assert.Equal(t, 2, state.Cycle)
	assert.Equal(t, 50*time.Millisecond, state.Elapsed)
}

func TestPlayback_HalfStepAccumulation(t *testing.T) {
	for _, anim := range []string{"attack", "idle", "roar"} {
		t.Run(anim, func(t *testing.T) {
			halves := newTestPlayback(t, false)
			whole := newTestPlayback(t, false)
			require.True(t, halves.Start(testPet, testPetType, anim))
			require.True(t, whole.Start(testPet, testPetType, anim))

			start, _ := halves.Query(testPet)
			for i := 0; i < 10; i++ {
				halves.Tick(testPet, start.FrameTime/2)
				halves.Tick(testPet, start.FrameTime/2)
				whole.Tick(testPet, start.FrameTime)

				a, _ := halves.Query(testPet)
				b, _ := whole.Query(testPet)
				assert.Equal(t, b.CurrentFrame, a.CurrentFrame, "step %d", i)
			}
		})
	}
}

func TestPlayback_StartUndefinedKeepsState(t *testing.T) {
	ps := newTestPlayback(t, false)
	require.True(t, ps.Start(testPet, testPetType, "attack"))
	ps.Tick(testPet, 300*time.Millisecond)
	before, _ := ps.Query(testPet)

	assert.False(t, ps.Start(testPet, testPetType, "dance"))
	assert.False(t, ps.Start(testPet, "no_such_pet", "attack"))

	after, ok := ps.Query(testPet)
	require.True(t, ok)
	assert.Equal(t, before, after)

	// An entity without state stays without state.
	other := ecs.EntityID("test_dragon#0002")
	assert.False(t, ps.Start(other, testPetType, "dance"))
	_, ok = ps.Query(other)
	assert.False(t, ok)
}

func TestPlayback_StartReplaces(t *testing.T) {
	ps := newTestPlayback(t, false)
	require.True(t, ps.Start(testPet, testPetType, "attack"))
	ps.Tick(testPet, 600*time.Millisecond)

	require.True(t, ps.Start(testPet, testPetType, "idle"))
	state, _ := ps.Query(testPet)
	assert.Equal(t, "idle", state.Animation)
	assert.Equal(t, 0, state.CurrentFrame)
	assert.Equal(t, time.Duration(0), state.Elapsed)
	assert.True(t, state.Playing)
	assert.True(t, state.Loop)
	assert.Equal(t, []ecs.EntityID{testPet}, ps.Entities())
}

func TestPlayback_StopIsIdempotent(t *testing.T) {
	ps := newTestPlayback(t, false)
	require.True(t, ps.Start(testPet, testPetType, "idle"))

	ps.Stop(testPet)
	ps.Stop(testPet)
	ps.Stop("never_started")

	_, ok := ps.Query(testPet)
	assert.False(t, ok)
	assert.Equal(t, StatusIdle, ps.Tick(testPet, time.Second).Status)
	assert.Empty(t, ps.Entities())
}

func TestPlayback_EffectOnCompletingTick(t *testing.T) {
	ps := newTestPlayback(t, false)
	require.True(t, ps.Start(testPet, testPetType, "roar"))

	res := ps.Tick(testPet, 800*time.Millisecond)
	require.Equal(t, StatusCompleted, res.Status)
	require.Len(t, res.Fired, 1)
	assert.Equal(t, types.EffectColorFlash, res.Fired[0].Kind)
}

func TestPlayback_Dedupe(t *testing.T) {
	t.Run("one-shot", func(t *testing.T) {
		ps := newTestPlayback(t, true)
		require.True(t, ps.Start(testPet, testPetType, "attack"))

		fired := 0
		for i := 0; i < 8; i++ {
			fired += len(ps.Tick(testPet, 125*time.Millisecond).Fired)
		}
		assert.Equal(t, 1, fired)
	})

	t.Run("loop fires once per cycle", func(t *testing.T) {
		refire := newTestPlayback(t, false)
		dedupe := newTestPlayback(t, true)
		require.True(t, refire.Start(testPet, testPetType, "idle"))
		require.True(t, dedupe.Start(testPet, testPetType, "idle"))

		// 25ms steps into the second 400ms cycle; progress stays 0 for
		// several ticks of each cycle.
		refired, deduped := 0, 0
		for i := 0; i < 31; i++ {
			refired += len(refire.Tick(testPet, 25*time.Millisecond).Fired)
			deduped += len(dedupe.Tick(testPet, 25*time.Millisecond).Fired)
		}
		assert.Equal(t, 2, deduped)
		assert.Greater(t, refired, deduped)
	})
}

func TestTickStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "continuing", StatusContinuing.String())
	assert.Equal(t, "completed", StatusCompleted.String())
}

func repeat(d time.Duration, n int) []time.Duration {
	out := make([]time.Duration, n)
	for i := range out {
		out[i] = d
	}
	return out
}
