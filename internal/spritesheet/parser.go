package spritesheet

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/gonewx/petanim/pkg/components"
)

// ParseFile parses a frame-data file.
//
// Example:
//
//	sheet, err := ParseFile("assets/pets/fire_dragon.sheet")
//	if err != nil {
//	    log.Fatalf("Failed to parse sheet: %v", err)
//	}
//	frames := sheet.SpriteFrames()
func ParseFile(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet file '%s': %w", path, err)
	}

	sheet, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML from '%s': %w", path, err)
	}
	return sheet, nil
}

// Parse parses frame-data content. The content has no root element, so it
// is wrapped in a <sheet> root before decoding.
func Parse(data []byte) (*Sheet, error) {
	wrapped := "<sheet>" + string(data) + "</sheet>"

	var sheet Sheet
	if err := xml.Unmarshal([]byte(wrapped), &sheet); err != nil {
		return nil, err
	}
	return &sheet, nil
}

// SpriteFrames resolves inheritance and returns the explicit rectangles of
// every animation. Size checks are left to the atlas constructor.
func (s *Sheet) SpriteFrames() map[string][]components.SpriteFrame {
	out := make(map[string][]components.SpriteFrame, len(s.Animations))
	for _, anim := range s.Animations {
		seq := make([]components.SpriteFrame, 0, len(anim.Frames))
		var prev components.SpriteFrame
		for i, f := range anim.Frames {
			cur := prev
			if i > 0 {
				cur.X = prev.X + prev.Width
			}
			if f.X != nil {
				cur.X = *f.X
			}
			if f.Y != nil {
				cur.Y = *f.Y
			}
			if f.W != nil {
				cur.Width = *f.W
			}
			if f.H != nil {
				cur.Height = *f.H
			}
			if f.D != nil {
				cur.Duration = *f.D
			}
			seq = append(seq, cur)
			prev = cur
		}
		out[anim.Name] = append(out[anim.Name], seq...)
	}
	return out
}

// Row describes one animation of a uniform strip layout.
type Row struct {
	Name   string
	Frames int
}

// UniformStrip lays rows out top to bottom, each a horizontal strip of
// equally sized cells. The sheet is as wide as the longest row.
func UniformStrip(rows []Row, cellW, cellH int) *Sheet {
	sheet := &Sheet{Height: len(rows) * cellH}
	for r, row := range rows {
		anim := Animation{Name: row.Name}
		for i := 0; i < row.Frames; i++ {
			x, y, w, h := i*cellW, r*cellH, cellW, cellH
			anim.Frames = append(anim.Frames, Frame{X: &x, Y: &y, W: &w, H: &h})
		}
		if row.Frames*cellW > sheet.Width {
			sheet.Width = row.Frames * cellW
		}
		sheet.Animations = append(sheet.Animations, anim)
	}
	return sheet
}
