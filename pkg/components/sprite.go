package components

// SpriteFrame is a source rectangle inside a sprite atlas image.
type SpriteFrame struct {
	X, Y          int
	Width, Height int
	// Duration is the authored per-frame duration in milliseconds. The
	// playback clock uses the animation's uniform frame time instead;
	// this is kept for tooling.
	Duration int
}
