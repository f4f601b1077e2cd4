package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gonewx/petanim/pkg/types"
)

const yamlCatalog = `
pets:
  - id: fire_dragon
    name: Long Viêm
    type: fire
    rarity: legendary
    atlas: sprites/fire_dragon.png
    animations:
      attacking:
        duration: 800
        frames: 4
        effects:
          - type: particle
            params: { color: "#FF0000", count: 10, size: 8 }
            timing: 0.3
          - type: screenShake
            params: { intensity: 5, duration: 200 }
            timing: 0.4
      special:
        name: fire_breath
        duration: 1500
        frames: 6
  - id: water_spirit
    type: water
    rarity: epic
    animations:
      idle:
        duration: 2500
        frames: 10
        loop: true
        effects:
          - type: rainbow
            timing: 0.5
`

const tomlCatalog = `
[[pets]]
id = "earth_guardian"
type = "earth"
rarity = "rare"

[pets.animations.attacking]
duration = 1200
frames = 3

[[pets.animations.attacking.effects]]
type = "particle"
timing = 0.5
params = { color = "#8B4513", count = 6, size = 8 }
`

// TestParseCatalog_YAML tests decoding, name defaults and kind resolution
func TestParseCatalog_YAML(t *testing.T) {
	c, err := ParseCatalog([]byte(yamlCatalog), FormatYAML)
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}

	if !reflect.DeepEqual(c.IDs(), []string{"fire_dragon", "water_spirit"}) {
		t.Errorf("Unexpected ids: %v", c.IDs())
	}

	attack, ok := c.AnimationDefinition("fire_dragon", "attacking")
	if !ok {
		t.Fatal("fire_dragon/attacking missing")
	}
	if attack.Name != "attacking" {
		t.Errorf("Expected name to default to the key, got %q", attack.Name)
	}
	if attack.FrameTime().Milliseconds() != 200 {
		t.Errorf("Expected 200ms frame time, got %v", attack.FrameTime())
	}
	if attack.Effects[0].Kind != types.EffectParticle || attack.Effects[1].Kind != types.EffectScreenShake {
		t.Errorf("Unexpected kinds: %v, %v", attack.Effects[0].Kind, attack.Effects[1].Kind)
	}

	special, _ := c.AnimationDefinition("fire_dragon", "special")
	if special.Name != "fire_breath" {
		t.Errorf("Explicit name should be kept, got %q", special.Name)
	}

	if _, ok := c.AnimationDefinition("fire_dragon", "idle"); ok {
		t.Error("Expected missing animation lookup to fail")
	}
	if _, ok := c.AnimationDefinition("unicorn", "idle"); ok {
		t.Error("Expected unknown pet lookup to fail")
	}

	src, ok := c.SpriteAtlasSource("fire_dragon")
	if !ok || src != "sprites/fire_dragon.png" {
		t.Errorf("SpriteAtlasSource = %q, %v", src, ok)
	}
	if _, ok := c.SpriteAtlasSource("water_spirit"); ok {
		t.Error("Pet without atlas should report false")
	}

	unknown := c.UnknownEffects()
	if len(unknown) != 1 || unknown[0] != "water_spirit/idle#0(rainbow)" {
		t.Errorf("Unexpected unknown effects: %v", unknown)
	}
}

// TestParseCatalog_TOML tests the toml format
func TestParseCatalog_TOML(t *testing.T) {
	c, err := ParseCatalog([]byte(tomlCatalog), FormatTOML)
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}
	anim, ok := c.AnimationDefinition("earth_guardian", "attacking")
	if !ok {
		t.Fatal("earth_guardian/attacking missing")
	}
	if anim.Frames != 3 || len(anim.Effects) != 1 || anim.Effects[0].Kind != types.EffectParticle {
		t.Errorf("Unexpected animation: %+v", anim)
	}
	if anim.Effects[0].Params["color"] != "#8B4513" {
		t.Errorf("Unexpected params: %v", anim.Effects[0].Params)
	}
}

// TestParseCatalog_Invalid tests the loud load-time failures
func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing id", "pets: [{animations: {idle: {duration: 100, frames: 1}}}]"},
		{"duplicate id", "pets: [{id: a, animations: {idle: {duration: 100, frames: 1}}}, {id: a, animations: {idle: {duration: 100, frames: 1}}}]"},
		{"no animations", "pets: [{id: a}]"},
		{"zero frames", "pets: [{id: a, animations: {idle: {duration: 100, frames: 0}}}]"},
		{"zero duration", "pets: [{id: a, animations: {idle: {duration: 0, frames: 2}}}]"},
		{"timing above one", "pets: [{id: a, animations: {idle: {duration: 100, frames: 2, effects: [{type: sound, timing: 1.5}]}}}]"},
		{"negative timing", "pets: [{id: a, animations: {idle: {duration: 100, frames: 2, effects: [{type: sound, timing: -0.1}]}}}]"},
		{"unknown type", "pets: [{id: a, type: plasma, animations: {idle: {duration: 100, frames: 1}}}]"},
		{"unknown rarity", "pets: [{id: a, rarity: ultra, animations: {idle: {duration: 100, frames: 1}}}]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.data), FormatYAML)
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("Expected ErrInvalidCatalog, got %v", err)
			}
		})
	}

	if _, err := ParseCatalog([]byte("pets: [unclosed"), FormatYAML); err == nil {
		t.Error("Expected syntax error")
	}
	if _, err := ParseCatalog([]byte("pets: []"), Format("json")); err == nil {
		t.Error("Expected unsupported format error")
	}
}

// TestParseCatalog_ParticleLimits tests count and size bounds of particle effects
func TestParseCatalog_ParticleLimits(t *testing.T) {
	catalog := func(params string) string {
		return "pets: [{id: a, animations: {attack: {duration: 100, frames: 2, effects: [{type: particle, timing: 0.5, params: " + params + "}]}}}]"
	}

	rejected := []struct {
		name   string
		params string
	}{
		{"huge count", "{count: 1000000000000000}"},
		{"count above maximum", "{count: 501}"},
		{"range reaching past maximum", `{count: "[10 900]"}`},
		{"zero count", "{count: 0}"},
		{"negative count", "{count: -4}"},
		{"count not a number", "{count: lots}"},
		{"zero size", "{size: 0}"},
		{"negative size", "{size: -2.5}"},
		{"range starting at zero", `{size: "[0 4]"}`},
		{"size above maximum", "{size: 250}"},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(catalog(tt.params)), FormatYAML)
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("Expected ErrInvalidCatalog, got %v", err)
			}
		})
	}

	accepted := []string{
		"{count: 500, size: 100}",
		`{count: "[3 8]", size: "[2 6]"}`,
		"{color: '#FF0000'}",
	}
	for _, params := range accepted {
		if _, err := ParseCatalog([]byte(catalog(params)), FormatYAML); err != nil {
			t.Errorf("params %s: unexpected error %v", params, err)
		}
	}

	// sound effects carry no particle parameters
	if _, err := ParseCatalog([]byte("pets: [{id: a, animations: {idle: {duration: 100, frames: 1, effects: [{type: sound, timing: 0, params: {count: 0}}]}}}]"), FormatYAML); err != nil {
		t.Errorf("Unexpected error for sound effect: %v", err)
	}
}

// TestLoadCatalog tests reading from disk by extension
func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"pets.yaml": yamlCatalog,
		"pets.yml":  yamlCatalog,
		"pets.toml": tomlCatalog,
		"pets.json": "{}",
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}

	for _, name := range []string{"pets.yaml", "pets.yml", "pets.toml"} {
		if _, err := LoadCatalog(filepath.Join(dir, name)); err != nil {
			t.Errorf("LoadCatalog(%s) failed: %v", name, err)
		}
	}
	if _, err := LoadCatalog(filepath.Join(dir, "pets.json")); err == nil {
		t.Error("Expected error for .json")
	}
	if _, err := LoadCatalog(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

// TestCatalog_Filters tests ByType, ByRarity and AnimationNames
func TestCatalog_Filters(t *testing.T) {
	anim := map[string]AnimationDefinition{
		"walking": {DurationMS: 100, Frames: 1},
		"idle":    {DurationMS: 100, Frames: 1},
	}
	c, err := NewCatalog(
		PetDefinition{ID: "a", Type: types.PetFire, Rarity: types.RarityEpic, Animations: anim},
		PetDefinition{ID: "b", Type: types.PetWater, Rarity: types.RarityEpic, Animations: anim},
		PetDefinition{ID: "c", Type: types.PetFire, Rarity: types.RarityRare, Animations: anim},
	)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	if got := c.ByType(types.PetFire); len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("ByType(fire) = %v", got)
	}
	if got := c.ByRarity(types.RarityEpic); len(got) != 2 {
		t.Errorf("ByRarity(epic) returned %d pets", len(got))
	}
	if got := c.ByType(types.PetIce); len(got) != 0 {
		t.Errorf("ByType(ice) returned %d pets", len(got))
	}

	pet, ok := c.Pet("a")
	if !ok {
		t.Fatal("Pet(a) missing")
	}
	if !reflect.DeepEqual(pet.AnimationNames(), []string{"idle", "walking"}) {
		t.Errorf("AnimationNames = %v", pet.AnimationNames())
	}
	if _, ok := c.Pet("z"); ok {
		t.Error("Pet(z) should not exist")
	}
}
