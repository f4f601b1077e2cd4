package components

import (
	"image/color"
	"time"
)

// FlashEffect is an active full-screen color flash requested by a
// colorFlash effect.
type FlashEffect struct {
	Color    color.RGBA
	Duration time.Duration
	Elapsed  time.Duration

	// Intensity is the peak overlay alpha (0.0 - 1.0).
	Intensity float64

	IsActive bool
}

// ScreenShake is an active shake requested by a screenShake effect.
// Intensity is the maximum offset in pixels.
type ScreenShake struct {
	Intensity float64
	Duration  time.Duration
	Elapsed   time.Duration
	IsActive  bool
}
