package systems

import (
	"errors"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/gonewx/petanim/pkg/components"
	"github.com/gonewx/petanim/pkg/ecs"
)

var (
	// ErrEmptyAtlas is returned when an atlas has no image area or no frames.
	ErrEmptyAtlas = errors.New("empty sprite atlas")
	// ErrInvalidFrameData is returned when a frame rectangle is unusable.
	ErrInvalidFrameData = errors.New("invalid sprite frame data")
)

// SpriteAtlas is the preloaded, read-only sprite sheet of one pet type.
type SpriteAtlas struct {
	// Image is the backing texture. It may be nil for renderers that only
	// need rectangles (e.g. the terminal view).
	Image *ebiten.Image

	Width, Height int
	Frames        map[string][]components.SpriteFrame

	// FrameWidth is Width divided by the longest per-animation sequence and
	// FrameHeight is the full image height. This is an approximation of a
	// cell size for tools, not a per-animation grid; drawing always uses the
	// explicit rectangles in Frames.
	FrameWidth  float64
	FrameHeight float64
}

// NewSpriteAtlas validates frame data against img and builds the atlas.
func NewSpriteAtlas(img *ebiten.Image, frames map[string][]components.SpriteFrame) (*SpriteAtlas, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrEmptyAtlas)
	}
	b := img.Bounds()
	atlas, err := NewSpriteAtlasSize(b.Dx(), b.Dy(), frames)
	if err != nil {
		return nil, err
	}
	atlas.Image = img
	return atlas, nil
}

// NewSpriteAtlasSize builds an image-less atlas of the given dimensions.
// Every animation needs at least one frame and every rectangle must have a
// positive size and lie inside the image.
func NewSpriteAtlasSize(width, height int, frames map[string][]components.SpriteFrame) (*SpriteAtlas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrEmptyAtlas, width, height)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no animations", ErrEmptyAtlas)
	}

	longest := 0
	copied := make(map[string][]components.SpriteFrame, len(frames))
	for name, seq := range frames {
		if len(seq) == 0 {
			return nil, fmt.Errorf("%w: animation %q has zero frames", ErrEmptyAtlas, name)
		}
		for i, f := range seq {
			if f.Width <= 0 || f.Height <= 0 {
				return nil, fmt.Errorf("%w: %s[%d] has size %dx%d", ErrInvalidFrameData, name, i, f.Width, f.Height)
			}
			if f.X < 0 || f.Y < 0 || f.X+f.Width > width || f.Y+f.Height > height {
				return nil, fmt.Errorf("%w: %s[%d] (%d,%d %dx%d) outside %dx%d image",
					ErrInvalidFrameData, name, i, f.X, f.Y, f.Width, f.Height, width, height)
			}
		}
		if len(seq) > longest {
			longest = len(seq)
		}
		copied[name] = append([]components.SpriteFrame(nil), seq...)
	}

	return &SpriteAtlas{
		Width:       width,
		Height:      height,
		Frames:      copied,
		FrameWidth:  float64(width) / float64(longest),
		FrameHeight: float64(height),
	}, nil
}

// Frame returns one rectangle of one animation.
func (a *SpriteAtlas) Frame(animation string, index int) (components.SpriteFrame, bool) {
	if a == nil {
		return components.SpriteFrame{}, false
	}
	seq, ok := a.Frames[animation]
	if !ok || index < 0 || index >= len(seq) {
		return components.SpriteFrame{}, false
	}
	return seq[index], true
}

// SubImage returns the drawable region of a frame, or nil without an image.
func (a *SpriteAtlas) SubImage(f components.SpriteFrame) *ebiten.Image {
	if a == nil || a.Image == nil {
		return nil
	}
	origin := a.Image.Bounds().Min
	sub := a.Image.SubImage(image.Rect(origin.X+f.X, origin.Y+f.Y, origin.X+f.X+f.Width, origin.Y+f.Y+f.Height))
	img, _ := sub.(*ebiten.Image)
	return img
}

// AtlasResolver maps (pet type, animation, frame) to atlas rectangles.
type AtlasResolver struct {
	atlases *ecs.Registry[string, *SpriteAtlas]
	logger  *zap.Logger
}

// NewAtlasResolver creates an empty resolver.
func NewAtlasResolver(logger *zap.Logger) *AtlasResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AtlasResolver{
		atlases: ecs.NewRegistry[string, *SpriteAtlas](),
		logger:  logger.Named("atlas"),
	}
}

// Register installs the atlas of a pet type, replacing any previous one.
func (r *AtlasResolver) Register(typeID string, atlas *SpriteAtlas) {
	if atlas == nil {
		r.logger.Warn("ignoring nil atlas", zap.String("type", typeID))
		return
	}
	r.atlases.Set(typeID, atlas)
	r.logger.Debug("atlas registered",
		zap.String("type", typeID),
		zap.Int("animations", len(atlas.Frames)),
		zap.Float64("frameWidth", atlas.FrameWidth))
}

// Atlas returns the atlas registered for a pet type.
func (r *AtlasResolver) Atlas(typeID string) (*SpriteAtlas, bool) {
	return r.atlases.Get(typeID)
}

// Resolve returns the source rectangle for one frame. ok is false when the
// atlas, animation or frame index is absent; callers skip the draw.
func (r *AtlasResolver) Resolve(typeID, animation string, frameIndex int) (components.SpriteFrame, bool) {
	atlas, ok := r.atlases.Get(typeID)
	if !ok {
		return components.SpriteFrame{}, false
	}
	return atlas.Frame(animation, frameIndex)
}
