// Package effects implements the screen-level presentation of
// screenShake and colorFlash effects.
package effects

import (
	"image/color"
	"math/rand"
	"time"

	"github.com/gonewx/petanim/internal/particle"
	"github.com/gonewx/petanim/pkg/components"
)

// maxFlashAlpha caps the overlay so a fully opaque flash color never
// hides the pet completely.
const maxFlashAlpha = 0.6

// flashFade is the overlay opacity over the flash lifetime.
var flashFade = []particle.Keyframe{{Time: 0, Value: 1}, {Time: 1, Value: 0}}

// ScreenEffects tracks at most one shake and one flash. A new request of
// either kind replaces the running one.
type ScreenEffects struct {
	flash components.FlashEffect
	shake components.ScreenShake
	rng   *rand.Rand
}

// NewScreenEffects creates an idle presenter. rng may be nil.
func NewScreenEffects(rng *rand.Rand) *ScreenEffects {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ScreenEffects{rng: rng}
}

// ScreenShake starts a shake of up to intensity pixels.
func (s *ScreenEffects) ScreenShake(intensity float64, duration time.Duration) {
	if duration <= 0 || intensity <= 0 {
		return
	}
	s.shake = components.ScreenShake{
		Intensity: intensity,
		Duration:  duration,
		IsActive:  true,
	}
}

// ColorFlash starts a full-screen flash of c. The alpha channel of c scales
// the peak opacity.
func (s *ScreenEffects) ColorFlash(c color.RGBA, duration time.Duration) {
	if duration <= 0 {
		return
	}
	s.flash = components.FlashEffect{
		Color:     c,
		Duration:  duration,
		Intensity: float64(c.A) / 255 * maxFlashAlpha,
		IsActive:  true,
	}
}

// Update counts both effects down by dt.
func (s *ScreenEffects) Update(dt time.Duration) {
	if s.flash.IsActive {
		s.flash.Elapsed += dt
		if s.flash.Elapsed >= s.flash.Duration {
			s.flash = components.FlashEffect{}
		}
	}
	if s.shake.IsActive {
		s.shake.Elapsed += dt
		if s.shake.Elapsed >= s.shake.Duration {
			s.shake = components.ScreenShake{}
		}
	}
}

// ShakeOffset returns a random draw offset. Its bound decays linearly to
// zero over the shake.
func (s *ScreenEffects) ShakeOffset() (dx, dy float64) {
	if !s.shake.IsActive {
		return 0, 0
	}
	remaining := 1 - float64(s.shake.Elapsed)/float64(s.shake.Duration)
	bound := s.shake.Intensity * remaining
	return particle.RandomInRangeWith(s.rng, -bound, bound),
		particle.RandomInRangeWith(s.rng, -bound, bound)
}

// FlashOverlay returns the overlay color and its current opacity.
func (s *ScreenEffects) FlashOverlay() (color.RGBA, float64, bool) {
	if !s.flash.IsActive {
		return color.RGBA{}, 0, false
	}
	t := float64(s.flash.Elapsed) / float64(s.flash.Duration)
	alpha := s.flash.Intensity * particle.EvaluateKeyframes(flashFade, t, "EaseOut")
	return s.flash.Color, alpha, true
}

// Active reports whether either effect is running.
func (s *ScreenEffects) Active() bool {
	return s.flash.IsActive || s.shake.IsActive
}

// Reset cancels both effects.
func (s *ScreenEffects) Reset() {
	s.flash = components.FlashEffect{}
	s.shake = components.ScreenShake{}
}
