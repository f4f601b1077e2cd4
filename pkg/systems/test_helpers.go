package systems

import (
	"image/color"
	"testing"
	"time"

	"github.com/gonewx/petanim/pkg/config"
	"github.com/gonewx/petanim/pkg/types"
)

// testPetType is the pet type registered by newTestCatalog.
const testPetType = "test_dragon"

// newTestCatalog builds a catalog with one pet and three animations:
//
//	attack: 1000ms, 4 frames, one-shot, particle effect at 0.5
//	idle:   400ms, 4 frames, looping, sound effect at 0.0
//	roar:   800ms, 8 frames, one-shot, shake at 0.25 and flash at 1.0
func newTestCatalog(t *testing.T) *config.Catalog {
	t.Helper()
	catalog, err := config.NewCatalog(config.PetDefinition{
		ID:     testPetType,
		Type:   types.PetFire,
		Rarity: types.RarityRare,
		Animations: map[string]config.AnimationDefinition{
			"attack": {
				DurationMS: 1000,
				Frames:     4,
				Effects: []config.EffectDeclaration{
					config.NewEffect(types.EffectParticle, 0.5, map[string]any{
						"count": 10, "color": "#FF4500", "size": 3,
					}),
				},
			},
			"idle": {
				DurationMS: 400,
				Frames:     4,
				Loop:       true,
				Effects: []config.EffectDeclaration{
					config.NewEffect(types.EffectSound, 0, map[string]any{"soundId": "fire_breath"}),
				},
			},
			"roar": {
				DurationMS: 800,
				Frames:     8,
				Effects: []config.EffectDeclaration{
					config.NewEffect(types.EffectScreenShake, 0.25, map[string]any{"intensity": 8, "duration": 300}),
					config.NewEffect(types.EffectColorFlash, 1.0, map[string]any{"color": "#FF0000", "duration": 150}),
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("failed to build test catalog: %v", err)
	}
	return catalog
}

// recordingToneSink remembers every tone request.
type recordingToneSink struct {
	ids []string
}

func (r *recordingToneSink) PlayTone(id string) { r.ids = append(r.ids, id) }

type shakeCall struct {
	intensity float64
	duration  time.Duration
}

type flashCall struct {
	color    color.RGBA
	duration time.Duration
}

// recordingPresenter remembers every screen effect request.
type recordingPresenter struct {
	shakes  []shakeCall
	flashes []flashCall
}

func (r *recordingPresenter) ScreenShake(intensity float64, d time.Duration) {
	r.shakes = append(r.shakes, shakeCall{intensity, d})
}

func (r *recordingPresenter) ColorFlash(c color.RGBA, d time.Duration) {
	r.flashes = append(r.flashes, flashCall{c, d})
}
