// Package render draws RenderFrames onto ebiten screens.
package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/gonewx/petanim/pkg/effects"
	"github.com/gonewx/petanim/pkg/systems"
)

// EbitenRenderer draws sprites, particles and the screen effects overlay.
type EbitenRenderer struct {
	// Effects supplies the shake offset and flash overlay; nil disables both.
	Effects *effects.ScreenEffects
	// ShakeEnabled gates the shake offset (viewer setting).
	ShakeEnabled bool

	dx, dy float64
}

// NewEbitenRenderer creates a renderer over fx, which may be nil.
func NewEbitenRenderer(fx *effects.ScreenEffects) *EbitenRenderer {
	return &EbitenRenderer{Effects: fx, ShakeEnabled: true}
}

// Draw draws one entity centred at (x, y), then every particle in the
// frame, then the flash overlay. Use BeginFrame and the Draw* methods
// directly when several entities share one screen so particles are drawn
// once.
func (r *EbitenRenderer) Draw(screen *ebiten.Image, frame systems.RenderFrame, x, y, scale float64) {
	r.BeginFrame()
	r.DrawSprite(screen, frame, x, y, scale)
	r.DrawParticles(screen, frame.Particles)
	r.DrawOverlay(screen)
}

// BeginFrame samples the shake offset used by every Draw* call until the
// next BeginFrame, so sprites and particles move together.
func (r *EbitenRenderer) BeginFrame() {
	r.dx, r.dy = r.shake()
}

// DrawSprite draws the atlas sub-image of frame. Frames without a
// resolved rectangle or image are skipped.
func (r *EbitenRenderer) DrawSprite(screen *ebiten.Image, frame systems.RenderFrame, x, y, scale float64) {
	if !frame.HasFrame || frame.Image == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM = spriteGeoM(frame, x+r.dx, y+r.dy, scale)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(frame.Image, op)
}

// DrawParticles draws each particle as a filled circle of radius Size.
func (r *EbitenRenderer) DrawParticles(screen *ebiten.Image, particles []systems.ParticleSnapshot) {
	for _, p := range particles {
		radius := particleRadius(p)
		if radius <= 0 || p.Alpha <= 0 {
			continue
		}
		vector.DrawFilledCircle(screen, float32(p.X+r.dx), float32(p.Y+r.dy), radius, particleColor(p), true)
	}
}

// DrawOverlay fills the screen with the active flash colour.
func (r *EbitenRenderer) DrawOverlay(screen *ebiten.Image) {
	if r.Effects == nil {
		return
	}
	c, alpha, ok := r.Effects.FlashOverlay()
	if !ok {
		return
	}
	b := screen.Bounds()
	vector.DrawFilledRect(screen, float32(b.Min.X), float32(b.Min.Y), float32(b.Dx()), float32(b.Dy()),
		premultiply(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}, alpha), false)
}

func (r *EbitenRenderer) shake() (float64, float64) {
	if r.Effects == nil || !r.ShakeEnabled {
		return 0, 0
	}
	return r.Effects.ShakeOffset()
}

// spriteGeoM scales the frame and centres it on (x, y).
func spriteGeoM(frame systems.RenderFrame, x, y, scale float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.Translate(-float64(frame.Frame.Width)/2, -float64(frame.Frame.Height)/2)
	g.Scale(scale, scale)
	g.Translate(x, y)
	return g
}

func particleRadius(p systems.ParticleSnapshot) float32 {
	return float32(p.Size)
}

func particleColor(p systems.ParticleSnapshot) color.RGBA {
	return premultiply(p.Color, p.Alpha)
}

// premultiply scales c (including its own alpha) by alpha in [0,1];
// ebiten expects premultiplied colours.
func premultiply(c color.RGBA, alpha float64) color.RGBA {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	a := float64(c.A) / 255 * alpha
	return color.RGBA{
		R: uint8(float64(c.R)*a + 0.5),
		G: uint8(float64(c.G)*a + 0.5),
		B: uint8(float64(c.B)*a + 0.5),
		A: uint8(255*a + 0.5),
	}
}
