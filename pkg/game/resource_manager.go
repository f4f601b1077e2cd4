package game

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gonewx/petanim/internal/spritesheet"
	"github.com/gonewx/petanim/pkg/components"
	"github.com/gonewx/petanim/pkg/config"
	"github.com/gonewx/petanim/pkg/systems"
	"github.com/gonewx/petanim/pkg/types"
)

// maxConcurrentLoads bounds the goroutines LoadAtlases runs at once.
const maxConcurrentLoads = 4

// ResourceManager is responsible for loading pet sprite atlases.
// It provides loading and caching mechanisms for atlas images, ensuring
// that every image file is decoded only once.
//
// The ResourceManager implements the following key features:
//   - Image loading and caching (PNG/JPEG)
//   - Frame-data parsing and validation against the image
//   - Concurrent loading of every atlas in a catalog
//   - Procedural placeholder atlases for pets without art
//
// Thread Safety Note:
// The image cache is guarded by a mutex because LoadAtlases decodes
// images from several goroutines. Atlases themselves are read-only once
// built.
//
// Usage:
//
//	rm := NewResourceManager("assets", logger)
//	atlases, err := rm.LoadAtlases(ctx, catalog)
//	if err != nil {
//	    return err
//	}
type ResourceManager struct {
	baseDir string
	logger  *zap.Logger

	mu         sync.Mutex
	imageCache map[string]*ebiten.Image // path -> Image
}

// NewResourceManager creates a resource manager. Relative paths in the
// catalog are resolved against baseDir.
func NewResourceManager(baseDir string, logger *zap.Logger) *ResourceManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceManager{
		baseDir:    baseDir,
		logger:     logger.Named("resources"),
		imageCache: make(map[string]*ebiten.Image),
	}
}

// LoadImage loads an image file and caches it for future use.
// If the image has already been loaded, it returns the cached version.
//
// Error handling:
//   - Returns an error if the file does not exist or cannot be opened.
//   - Returns an error if the image format is not supported or the file is corrupted.
func (rm *ResourceManager) LoadImage(path string) (*ebiten.Image, error) {
	return rm.loadImage(rm.resolve(path))
}

func (rm *ResourceManager) loadImage(path string) (*ebiten.Image, error) {
	rm.mu.Lock()
	cachedImage, exists := rm.imageCache[path]
	rm.mu.Unlock()
	if exists {
		return cachedImage, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	ebitenImg := ebiten.NewImageFromImage(img)

	rm.mu.Lock()
	defer rm.mu.Unlock()
	// another goroutine may have won the race; keep the first image
	if cachedImage, exists := rm.imageCache[path]; exists {
		return cachedImage, nil
	}
	rm.imageCache[path] = ebitenImg
	return ebitenImg, nil
}

// GetImage retrieves a previously loaded image from the cache, or nil.
func (rm *ResourceManager) GetImage(path string) *ebiten.Image {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.imageCache[rm.resolve(path)]
}

// LoadAtlas parses a frame-data file and builds the atlas of one pet type.
//
// imagePath may be empty, in which case the <image> element of the frame
// data is used, relative to the frame-data file. When the frame data
// declares <width>/<height> they must match the decoded image.
func (rm *ResourceManager) LoadAtlas(typeID, imagePath, frameDataPath string) (*systems.SpriteAtlas, error) {
	frameDataPath = rm.resolve(frameDataPath)
	sheet, err := spritesheet.ParseFile(frameDataPath)
	if err != nil {
		return nil, fmt.Errorf("atlas %s: %w", typeID, err)
	}

	switch {
	case imagePath != "":
		imagePath = rm.resolve(imagePath)
	case sheet.Image != "":
		imagePath = filepath.Join(filepath.Dir(frameDataPath), sheet.Image)
	default:
		return nil, fmt.Errorf("atlas %s: %w: no image path", typeID, systems.ErrEmptyAtlas)
	}

	img, err := rm.loadImage(imagePath)
	if err != nil {
		return nil, fmt.Errorf("atlas %s: %w", typeID, err)
	}

	b := img.Bounds()
	if (sheet.Width != 0 && sheet.Width != b.Dx()) || (sheet.Height != 0 && sheet.Height != b.Dy()) {
		return nil, fmt.Errorf("atlas %s: %w: frame data declares %dx%d, image is %dx%d",
			typeID, systems.ErrInvalidFrameData, sheet.Width, sheet.Height, b.Dx(), b.Dy())
	}

	atlas, err := systems.NewSpriteAtlas(img, sheet.SpriteFrames())
	if err != nil {
		return nil, fmt.Errorf("atlas %s: %w", typeID, err)
	}

	rm.logger.Info("atlas loaded",
		zap.String("type", typeID),
		zap.String("image", imagePath),
		zap.Int("animations", len(atlas.Frames)))
	return atlas, nil
}

// LoadAtlases loads the atlas of every pet that names both an atlas image
// and a frame-data file. Pets without them are skipped. The first failure
// cancels the remaining loads and is returned.
func (rm *ResourceManager) LoadAtlases(ctx context.Context, catalog *config.Catalog) (map[string]*systems.SpriteAtlas, error) {
	var (
		mu      sync.Mutex
		atlases = make(map[string]*systems.SpriteAtlas)
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)

	for _, id := range catalog.IDs() {
		pet, _ := catalog.Pet(id)
		if pet.Atlas == "" || pet.FrameData == "" {
			rm.logger.Debug("pet has no atlas files", zap.String("type", id))
			continue
		}
		imagePath, frameData := pet.Atlas, pet.FrameData

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			atlas, err := rm.LoadAtlas(id, imagePath, frameData)
			if err != nil {
				return err
			}
			mu.Lock()
			atlases[id] = atlas
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return atlases, nil
}

// placeholderColors tints placeholder cells by elemental type.
var placeholderColors = map[types.PetType]color.RGBA{
	types.PetFire:    {R: 0xFF, G: 0x45, B: 0x00, A: 0xFF},
	types.PetWater:   {R: 0x1E, G: 0x90, B: 0xFF, A: 0xFF},
	types.PetEarth:   {R: 0x8B, G: 0x45, B: 0x13, A: 0xFF},
	types.PetWind:    {R: 0x98, G: 0xFB, B: 0x98, A: 0xFF},
	types.PetLight:   {R: 0xFF, G: 0xD7, B: 0x00, A: 0xFF},
	types.PetDark:    {R: 0x4B, G: 0x00, B: 0x82, A: 0xFF},
	types.PetThunder: {R: 0xFF, G: 0xFF, B: 0x00, A: 0xFF},
	types.PetIce:     {R: 0xAF, G: 0xEE, B: 0xEE, A: 0xFF},
}

var placeholderDefault = color.RGBA{R: 0xC0, G: 0xC0, B: 0xC0, A: 0xFF}

// PlaceholderAtlas builds a strip atlas for a pet without art: one row per
// animation, one cell per frame. Each cell is a disc in the type colour
// whose radius pulses across the frames, so playback stays visible.
func PlaceholderAtlas(pet *config.PetDefinition, cell int) (*systems.SpriteAtlas, error) {
	if cell <= 0 {
		return nil, fmt.Errorf("%w: cell size %d", systems.ErrEmptyAtlas, cell)
	}

	names := pet.AnimationNames()
	rows := make([]spritesheet.Row, 0, len(names))
	for _, name := range names {
		rows = append(rows, spritesheet.Row{Name: name, Frames: pet.Animations[name].Frames})
	}
	sheet := spritesheet.UniformStrip(rows, cell, cell)
	frames := sheet.SpriteFrames()
	if sheet.Width == 0 || sheet.Height == 0 {
		return nil, fmt.Errorf("%w: pet %s has no frames", systems.ErrEmptyAtlas, pet.ID)
	}

	tint, ok := placeholderColors[pet.Type]
	if !ok {
		tint = placeholderDefault
	}

	img := image.NewRGBA(image.Rect(0, 0, sheet.Width, sheet.Height))
	for _, name := range names {
		seq := frames[name]
		for i, f := range seq {
			drawPlaceholderCell(img, f, tint, i, len(seq))
		}
	}

	return systems.NewSpriteAtlas(ebiten.NewImageFromImage(img), frames)
}

func drawPlaceholderCell(img *image.RGBA, f components.SpriteFrame, tint color.RGBA, index, total int) {
	cx := float64(f.X) + float64(f.Width)/2
	cy := float64(f.Y) + float64(f.Height)/2
	maxR := float64(min(f.Width, f.Height)) / 2

	// radius pulses from 60% to 100% and back over the sequence
	phase := 0.0
	if total > 1 {
		phase = float64(index) / float64(total-1)
	}
	if phase > 0.5 {
		phase = 1 - phase
	}
	r := maxR * (0.6 + 0.8*phase)

	for y := f.Y; y < f.Y+f.Height; y++ {
		for x := f.X; x < f.X+f.Width; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, tint)
			}
		}
	}
}

func (rm *ResourceManager) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || rm.baseDir == "" {
		return path
	}
	return filepath.Join(rm.baseDir, path)
}
