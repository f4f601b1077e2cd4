package effects

import (
	"image/color"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenEffects_ShakeDecaysAndExpires(t *testing.T) {
	s := NewScreenEffects(rand.New(rand.NewSource(1)))
	s.ScreenShake(10, 100*time.Millisecond)
	require.True(t, s.Active())

	for i := 0; i < 50; i++ {
		dx, dy := s.ShakeOffset()
		assert.LessOrEqual(t, math.Abs(dx), 10.0)
		assert.LessOrEqual(t, math.Abs(dy), 10.0)
	}

	s.Update(75 * time.Millisecond)
	for i := 0; i < 50; i++ {
		dx, dy := s.ShakeOffset()
		assert.LessOrEqual(t, math.Abs(dx), 2.5+1e-9)
		assert.LessOrEqual(t, math.Abs(dy), 2.5+1e-9)
	}

	s.Update(25 * time.Millisecond)
	assert.False(t, s.Active())
	dx, dy := s.ShakeOffset()
	assert.Zero(t, dx)
	assert.Zero(t, dy)
}

func TestScreenEffects_FlashFades(t *testing.T) {
	s := NewScreenEffects(nil)
	red := color.RGBA{R: 255, A: 255}
	s.ColorFlash(red, 200*time.Millisecond)

	c, alpha, ok := s.FlashOverlay()
	require.True(t, ok)
	assert.Equal(t, red, c)
	assert.InDelta(t, maxFlashAlpha, alpha, 1e-9)

	s.Update(100 * time.Millisecond)
	_, mid, ok := s.FlashOverlay()
	require.True(t, ok)
	assert.Less(t, mid, alpha)
	assert.Greater(t, mid, 0.0)

	s.Update(100 * time.Millisecond)
	_, _, ok = s.FlashOverlay()
	assert.False(t, ok)
}

func TestScreenEffects_FlashAlphaScalesPeak(t *testing.T) {
	s := NewScreenEffects(nil)
	s.ColorFlash(color.RGBA{B: 255, A: 128}, time.Second)

	_, alpha, ok := s.FlashOverlay()
	require.True(t, ok)
	assert.InDelta(t, 128.0/255*maxFlashAlpha, alpha, 1e-9)
}

func TestScreenEffects_LaterRequestReplaces(t *testing.T) {
	s := NewScreenEffects(nil)
	s.ColorFlash(color.RGBA{R: 255, A: 255}, 100*time.Millisecond)
	s.Update(90 * time.Millisecond)
	s.ColorFlash(color.RGBA{G: 255, A: 255}, 100*time.Millisecond)
	s.Update(50 * time.Millisecond)

	c, _, ok := s.FlashOverlay()
	require.True(t, ok, "replacement restarts the countdown")
	assert.Equal(t, uint8(255), c.G)
}

func TestScreenEffects_IgnoresEmptyRequests(t *testing.T) {
	s := NewScreenEffects(nil)
	s.ScreenShake(5, 0)
	s.ScreenShake(0, time.Second)
	s.ColorFlash(color.RGBA{A: 255}, -time.Second)
	assert.False(t, s.Active())
}

func TestScreenEffects_Reset(t *testing.T) {
	s := NewScreenEffects(nil)
	s.ScreenShake(5, time.Second)
	s.ColorFlash(color.RGBA{A: 255}, time.Second)
	s.Reset()
	assert.False(t, s.Active())
}
