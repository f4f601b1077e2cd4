// Package termview draws RenderFrames on a terminal through tcell.
package termview

import (
	"fmt"
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/gonewx/petanim/pkg/effects"
	"github.com/gonewx/petanim/pkg/systems"
)

// Default world pixels per terminal cell. Cells are about twice as tall
// as they are wide.
const (
	DefaultCellWidth  = 8.0
	DefaultCellHeight = 16.0
)

// shades cycle with the frame index so playback is visible without pixels.
var shades = []rune{'░', '▒', '▓', '█'}

// Renderer maps world coordinates onto the cell grid of a tcell screen,
// with the entity anchor at the centre of the screen.
type Renderer struct {
	screen     tcell.Screen
	CellWidth  float64
	CellHeight float64
	// Effects supplies shake and flash; may be nil.
	Effects *effects.ScreenEffects
}

// NewRenderer creates a renderer with the default cell size.
func NewRenderer(screen tcell.Screen, fx *effects.ScreenEffects) *Renderer {
	return &Renderer{
		screen:     screen,
		CellWidth:  DefaultCellWidth,
		CellHeight: DefaultCellHeight,
		Effects:    fx,
	}
}

// Draw clears the screen and draws frame around the anchor (x, y).
// It does not call Show.
func (r *Renderer) Draw(frame systems.RenderFrame, x, y float64) {
	r.screen.Clear()
	w, h := r.screen.Size()
	cx, cy := w/2, h/2
	if r.Effects != nil {
		dx, dy := r.Effects.ShakeOffset()
		cx += int(math.Round(dx / r.CellWidth))
		cy += int(math.Round(dy / r.CellHeight))
	}

	if frame.HasFrame {
		r.drawBox(frame, cx, cy)
	}
	for _, p := range frame.Particles {
		col := cx + int(math.Round((p.X-x)/r.CellWidth))
		row := cy + int(math.Round((p.Y-y)/r.CellHeight))
		if col < 0 || row < 1 || col >= w || row >= h {
			continue
		}
		r.screen.SetContent(col, row, particleGlyph(p.Size), nil, particleStyle(p))
	}
	r.drawLabel(frame, w)
}

func (r *Renderer) drawBox(frame systems.RenderFrame, cx, cy int) {
	cols := max(1, int(math.Ceil(float64(frame.Frame.Width)/r.CellWidth)))
	rows := max(1, int(math.Ceil(float64(frame.Frame.Height)/r.CellHeight)))
	glyph := shades[frame.FrameIndex%len(shades)]
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	if !frame.Playing {
		style = style.Dim(true)
	}

	left, top := cx-cols/2, cy-rows/2
	for row := top; row < top+rows; row++ {
		for col := left; col < left+cols; col++ {
			r.screen.SetContent(col, row, glyph, nil, style)
		}
	}
}

func (r *Renderer) drawLabel(frame systems.RenderFrame, width int) {
	label := fmt.Sprintf("%s  %s  frame %d", frame.TypeID, frame.Animation, frame.FrameIndex)
	switch {
	case frame.Animation == "":
		label = fmt.Sprintf("%s  (idle)", frame.TypeID)
	case !frame.Playing:
		label += "  (done)"
	}
	label += fmt.Sprintf("  particles %d", len(frame.Particles))

	style := tcell.StyleDefault
	if r.Effects != nil {
		if c, alpha, ok := r.Effects.FlashOverlay(); ok && alpha > 0 {
			style = style.Background(toColor(c)).Foreground(tcell.ColorBlack)
		}
	}
	col := 0
	for _, ch := range label {
		if col >= width {
			break
		}
		r.screen.SetContent(col, 0, ch, nil, style)
		col++
	}
}

func particleGlyph(size float64) rune {
	switch {
	case size >= 4:
		return '●'
	case size >= 2:
		return '•'
	default:
		return '·'
	}
}

func particleStyle(p systems.ParticleSnapshot) tcell.Style {
	style := tcell.StyleDefault.Foreground(toColor(p.Color))
	if p.Alpha < 0.5 {
		style = style.Dim(true)
	}
	return style
}

func toColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
