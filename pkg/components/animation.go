package components

import "time"

// PlaybackState is one entity's progress through an animation definition.
// It is owned by the playback system; callers only ever see copies.
type PlaybackState struct {
	Animation    string        // Catalog key of the animation being played
	CurrentFrame int           // 0-based; equals TotalFrames once a one-shot completes
	TotalFrames  int           // Frame count copied from the definition
	FrameTime    time.Duration // Duration / Frames
	Elapsed      time.Duration // Time accumulated inside the current frame
	Playing      bool          // False once a non-looping animation completes
	Loop         bool          // Copied from the definition at start
	Completed    bool          // Completion already reported

	// Cycle counts loop wraps; dedup tracking keys fired effects by it.
	Cycle int
}

// Progress returns the normalized position CurrentFrame / TotalFrames.
func (s PlaybackState) Progress() float64 {
	if s.TotalFrames <= 0 {
		return 0
	}
	return float64(s.CurrentFrame) / float64(s.TotalFrames)
}
