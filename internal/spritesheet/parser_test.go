package spritesheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gonewx/petanim/pkg/components"
)

const dragonSheet = `
<image>fire_dragon.png</image>
<width>256</width>
<height>128</height>
<anim><name>idle</name>
  <t><x>0</x><y>0</y><w>64</w><h>64</h><d>100</d></t>
  <t/>
  <t/>
  <t><x>192</x></t>
</anim>
<anim><name>attack</name>
  <t><y>64</y><w>32</w><h>64</h></t>
  <t><w>64</w></t>
</anim>
`

// TestParse_Inheritance tests that omitted fields inherit and X steps
func TestParse_Inheritance(t *testing.T) {
	sheet, err := Parse([]byte(dragonSheet))
	if err != nil {
		t.Fatalf("Failed to parse sheet: %v", err)
	}

	if sheet.Image != "fire_dragon.png" {
		t.Errorf("Expected image fire_dragon.png, got %q", sheet.Image)
	}
	if sheet.Width != 256 || sheet.Height != 128 {
		t.Errorf("Expected 256x128, got %dx%d", sheet.Width, sheet.Height)
	}

	frames := sheet.SpriteFrames()
	idle := frames["idle"]
	if len(idle) != 4 {
		t.Fatalf("Expected 4 idle frames, got %d", len(idle))
	}
	for i, f := range idle {
		want := components.SpriteFrame{X: i * 64, Y: 0, Width: 64, Height: 64, Duration: 100}
		if f != want {
			t.Errorf("idle[%d]: expected %+v, got %+v", i, want, f)
		}
	}

	attack := frames["attack"]
	if len(attack) != 2 {
		t.Fatalf("Expected 2 attack frames, got %d", len(attack))
	}
	if attack[0] != (components.SpriteFrame{X: 0, Y: 64, Width: 32, Height: 64}) {
		t.Errorf("attack[0]: got %+v", attack[0])
	}
	// X steps by the previous width (32), the new width applies to this frame
	if attack[1] != (components.SpriteFrame{X: 32, Y: 64, Width: 64, Height: 64}) {
		t.Errorf("attack[1]: got %+v", attack[1])
	}
}

// TestParseFile tests reading from disk and the error paths
func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dragon.sheet")
	if err := os.WriteFile(path, []byte(dragonSheet), 0o644); err != nil {
		t.Fatal(err)
	}

	sheet, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(sheet.Animations) != 2 {
		t.Errorf("Expected 2 animations, got %d", len(sheet.Animations))
	}

	if _, err := ParseFile(filepath.Join(dir, "missing.sheet")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.sheet")
	if err := os.WriteFile(bad, []byte("<anim><name>idle</anim>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseFile(bad); err == nil {
		t.Error("Expected error for malformed XML")
	}
}

// TestParse_Empty tests that an empty file yields an empty sheet
func TestParse_Empty(t *testing.T) {
	sheet, err := Parse(nil)
	if err != nil {
		t.Fatalf("Failed to parse empty sheet: %v", err)
	}
	if len(sheet.SpriteFrames()) != 0 {
		t.Errorf("Expected no animations, got %d", len(sheet.SpriteFrames()))
	}
}

// TestUniformStrip tests the generated strip layout
func TestUniformStrip(t *testing.T) {
	sheet := UniformStrip([]Row{{"idle", 4}, {"attack", 6}, {"hurt", 2}}, 48, 32)

	if sheet.Width != 6*48 || sheet.Height != 3*32 {
		t.Fatalf("Expected %dx%d, got %dx%d", 6*48, 3*32, sheet.Width, sheet.Height)
	}

	frames := sheet.SpriteFrames()
	tests := []struct {
		anim  string
		index int
		want  components.SpriteFrame
	}{
		{"idle", 0, components.SpriteFrame{X: 0, Y: 0, Width: 48, Height: 32}},
		{"idle", 3, components.SpriteFrame{X: 144, Y: 0, Width: 48, Height: 32}},
		{"attack", 5, components.SpriteFrame{X: 240, Y: 32, Width: 48, Height: 32}},
		{"hurt", 1, components.SpriteFrame{X: 48, Y: 64, Width: 48, Height: 32}},
	}
	for _, tt := range tests {
		if got := frames[tt.anim][tt.index]; got != tt.want {
			t.Errorf("%s[%d]: expected %+v, got %+v", tt.anim, tt.index, tt.want, got)
		}
	}
}
