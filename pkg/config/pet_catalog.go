package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gonewx/petanim/internal/particle"
	"github.com/gonewx/petanim/pkg/types"
)

var (
	// ErrUnknownPet is returned by lookups that must name an existing pet.
	ErrUnknownPet = errors.New("unknown pet")
	// ErrInvalidCatalog wraps every catalog validation failure.
	ErrInvalidCatalog = errors.New("invalid catalog")
)

// Upper limits for particle effect parameters. Catalogs declaring larger
// values, including the high end of a range, are rejected at load time.
const (
	MaxParticleCount = 500
	MaxParticleSize  = 100.0
)

// Format selects the catalog encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// EffectDeclaration is a timed side-action embedded in an animation.
type EffectDeclaration struct {
	// Type is the catalog spelling ("particle", "sound", ...).
	Type string `yaml:"type" toml:"type"`
	// Params are kind specific: count/color/size, soundId, intensity/duration, color/duration.
	Params map[string]any `yaml:"params,omitempty" toml:"params,omitempty"`
	// Timing is the normalized progress in [0,1] at which the effect fires.
	Timing float64 `yaml:"timing" toml:"timing"`

	// Kind is resolved from Type at load time.
	Kind types.EffectKind `yaml:"-" toml:"-"`
}

// NewEffect builds a declaration with Type and Kind in sync.
func NewEffect(kind types.EffectKind, timing float64, params map[string]any) EffectDeclaration {
	return EffectDeclaration{Type: kind.String(), Kind: kind, Timing: timing, Params: params}
}

// AnimationDefinition is the immutable timing/frame/effect template of one animation.
type AnimationDefinition struct {
	Name       string              `yaml:"name" toml:"name"`
	DurationMS int                 `yaml:"duration" toml:"duration"`
	Frames     int                 `yaml:"frames" toml:"frames"`
	Loop       bool                `yaml:"loop" toml:"loop"`
	Effects    []EffectDeclaration `yaml:"effects,omitempty" toml:"effects,omitempty"`
}

// Duration returns the total animation length.
func (a AnimationDefinition) Duration() time.Duration {
	return time.Duration(a.DurationMS) * time.Millisecond
}

// FrameTime returns the uniform per-frame duration.
func (a AnimationDefinition) FrameTime() time.Duration {
	if a.Frames <= 0 {
		return 0
	}
	return a.Duration() / time.Duration(a.Frames)
}

// PetStats are the static combat numbers of a pet.
type PetStats struct {
	Health           int `yaml:"health" toml:"health"`
	MaxHealth        int `yaml:"max_health" toml:"max_health"`
	Energy           int `yaml:"energy" toml:"energy"`
	MaxEnergy        int `yaml:"max_energy" toml:"max_energy"`
	Attack           int `yaml:"attack" toml:"attack"`
	Defense          int `yaml:"defense" toml:"defense"`
	Speed            int `yaml:"speed" toml:"speed"`
	Level            int `yaml:"level" toml:"level"`
	Experience       int `yaml:"experience" toml:"experience"`
	ExperienceToNext int `yaml:"experience_to_next" toml:"experience_to_next"`
}

// AbilityEffect is one gameplay outcome of an ability.
type AbilityEffect struct {
	Type       string `yaml:"type" toml:"type"`
	Target     string `yaml:"target" toml:"target"`
	Value      int    `yaml:"value" toml:"value"`
	DurationMS int    `yaml:"duration,omitempty" toml:"duration,omitempty"`
	Condition  string `yaml:"condition,omitempty" toml:"condition,omitempty"`
}

// PetAbility references the animation it plays when used.
type PetAbility struct {
	ID          string          `yaml:"id" toml:"id"`
	Name        string          `yaml:"name" toml:"name"`
	Description string          `yaml:"description,omitempty" toml:"description,omitempty"`
	Type        string          `yaml:"type" toml:"type"`
	CooldownMS  int             `yaml:"cooldown" toml:"cooldown"`
	EnergyCost  int             `yaml:"energy_cost" toml:"energy_cost"`
	Effects     []AbilityEffect `yaml:"effects,omitempty" toml:"effects,omitempty"`
	Animation   string          `yaml:"animation" toml:"animation"`
}

// PetEvolution describes the next evolution stage.
type PetEvolution struct {
	NextStage     string   `yaml:"next_stage" toml:"next_stage"`
	LevelRequired int      `yaml:"level_required" toml:"level_required"`
	ItemsRequired []string `yaml:"items_required,omitempty" toml:"items_required,omitempty"`
	Animation     string   `yaml:"animation" toml:"animation"`
}

// PetDefinition is one static catalog record.
type PetDefinition struct {
	ID          string                         `yaml:"id" toml:"id"`
	Name        string                         `yaml:"name" toml:"name"`
	Type        types.PetType                  `yaml:"type" toml:"type"`
	Rarity      types.PetRarity                `yaml:"rarity" toml:"rarity"`
	Stats       PetStats                       `yaml:"stats" toml:"stats"`
	Animations  map[string]AnimationDefinition `yaml:"animations" toml:"animations"`
	Sprites     map[string]string              `yaml:"sprites,omitempty" toml:"sprites,omitempty"`
	Atlas       string                         `yaml:"atlas,omitempty" toml:"atlas,omitempty"`
	FrameData   string                         `yaml:"frame_data,omitempty" toml:"frame_data,omitempty"`
	Abilities   []PetAbility                   `yaml:"abilities,omitempty" toml:"abilities,omitempty"`
	Evolution   *PetEvolution                  `yaml:"evolution,omitempty" toml:"evolution,omitempty"`
	Description string                         `yaml:"description,omitempty" toml:"description,omitempty"`
	Unlock      string                         `yaml:"unlock_condition,omitempty" toml:"unlock_condition,omitempty"`
}

// AnimationNames returns the animation keys sorted alphabetically.
func (p *PetDefinition) AnimationNames() []string {
	names := make([]string, 0, len(p.Animations))
	for name := range p.Animations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog is the read-only pet catalog the engine looks animations up in.
type Catalog struct {
	Pets []PetDefinition `yaml:"pets" toml:"pets"`

	index map[string]int
}

// NewCatalog builds a validated catalog from in-memory definitions.
func NewCatalog(pets ...PetDefinition) (*Catalog, error) {
	c := &Catalog{Pets: pets}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadCatalog reads a catalog file, choosing the decoder by extension
// (.yaml, .yml or .toml).
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	c, err := ParseCatalog(data, format)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// FormatFromPath maps a file extension to a catalog format.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported catalog extension %q", filepath.Ext(path))
	}
}

// ParseCatalog decodes and validates catalog data.
func ParseCatalog(data []byte, format Format) (*Catalog, error) {
	var c Catalog
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse yaml catalog: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse toml catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}

	if err := c.normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

// normalize resolves effect kinds, builds the id index and validates.
func (c *Catalog) normalize() error {
	c.index = make(map[string]int, len(c.Pets))
	for i := range c.Pets {
		pet := &c.Pets[i]
		if pet.ID == "" {
			return fmt.Errorf("%w: pet #%d is missing 'id'", ErrInvalidCatalog, i)
		}
		if _, dup := c.index[pet.ID]; dup {
			return fmt.Errorf("%w: duplicate pet id %q", ErrInvalidCatalog, pet.ID)
		}
		if pet.Type != "" && !pet.Type.Valid() {
			return fmt.Errorf("%w: pet %q has unknown type %q", ErrInvalidCatalog, pet.ID, pet.Type)
		}
		if pet.Rarity != "" && !pet.Rarity.Valid() {
			return fmt.Errorf("%w: pet %q has unknown rarity %q", ErrInvalidCatalog, pet.ID, pet.Rarity)
		}
		if len(pet.Animations) == 0 {
			return fmt.Errorf("%w: pet %q defines no animations", ErrInvalidCatalog, pet.ID)
		}

		for key, anim := range pet.Animations {
			if err := normalizeAnimation(&anim); err != nil {
				return fmt.Errorf("%w: pet %q animation %q: %v", ErrInvalidCatalog, pet.ID, key, err)
			}
			if anim.Name == "" {
				anim.Name = key
			}
			pet.Animations[key] = anim
		}
		c.index[pet.ID] = i
	}
	return nil
}

func normalizeAnimation(anim *AnimationDefinition) error {
	if anim.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", anim.Frames)
	}
	if anim.DurationMS <= 0 {
		return fmt.Errorf("duration must be positive, got %d", anim.DurationMS)
	}

	effects := make([]EffectDeclaration, len(anim.Effects))
	for i, effect := range anim.Effects {
		if effect.Timing < 0 || effect.Timing > 1 {
			return fmt.Errorf("effect #%d timing %v outside [0,1]", i, effect.Timing)
		}
		if effect.Kind == types.EffectUnknown {
			// unknown kinds stay in the catalog; dispatch ignores them
			effect.Kind, _ = types.ParseEffectKind(effect.Type)
		}
		if effect.Kind == types.EffectParticle {
			if err := checkParticleParam(effect.Params, "count", MaxParticleCount); err != nil {
				return fmt.Errorf("effect #%d: %w", i, err)
			}
			if err := checkParticleParam(effect.Params, "size", MaxParticleSize); err != nil {
				return fmt.Errorf("effect #%d: %w", i, err)
			}
		}
		effects[i] = effect
	}
	anim.Effects = effects
	return nil
}

// checkParticleParam accepts an absent parameter or one whose every
// possible value lies in (0, max].
func checkParticleParam(params map[string]any, key string, max float64) error {
	raw, ok := params[key]
	if !ok {
		return nil
	}
	lo, hi, ok := particle.NumberBounds(raw)
	if !ok || math.IsNaN(lo) || math.IsNaN(hi) {
		return fmt.Errorf("%s %v is not a number", key, raw)
	}
	if lo <= 0 {
		return fmt.Errorf("%s %v must be positive", key, raw)
	}
	if hi > max {
		return fmt.Errorf("%s %v exceeds the maximum of %v", key, raw, max)
	}
	return nil
}

// Pet returns the definition with the given id.
func (c *Catalog) Pet(id string) (*PetDefinition, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return &c.Pets[i], true
}

// AnimationDefinition looks up one animation of a pet type.
func (c *Catalog) AnimationDefinition(typeID, name string) (AnimationDefinition, bool) {
	pet, ok := c.Pet(typeID)
	if !ok {
		return AnimationDefinition{}, false
	}
	anim, ok := pet.Animations[name]
	return anim, ok
}

// SpriteAtlasSource returns the atlas image path of a pet type.
func (c *Catalog) SpriteAtlasSource(typeID string) (string, bool) {
	pet, ok := c.Pet(typeID)
	if !ok || pet.Atlas == "" {
		return "", false
	}
	return pet.Atlas, true
}

// IDs returns every pet id in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.Pets))
	for i := range c.Pets {
		ids[i] = c.Pets[i].ID
	}
	return ids
}

// ByType returns the pets of one elemental type.
func (c *Catalog) ByType(t types.PetType) []*PetDefinition {
	var out []*PetDefinition
	for i := range c.Pets {
		if c.Pets[i].Type == t {
			out = append(out, &c.Pets[i])
		}
	}
	return out
}

// ByRarity returns the pets of one rarity tier.
func (c *Catalog) ByRarity(r types.PetRarity) []*PetDefinition {
	var out []*PetDefinition
	for i := range c.Pets {
		if c.Pets[i].Rarity == r {
			out = append(out, &c.Pets[i])
		}
	}
	return out
}

// UnknownEffects lists "pet/animation#index" for every effect whose kind
// was not recognised, so loaders can warn about them.
func (c *Catalog) UnknownEffects() []string {
	var out []string
	for _, pet := range c.Pets {
		for _, name := range pet.AnimationNames() {
			for i, effect := range pet.Animations[name].Effects {
				if effect.Kind == types.EffectUnknown {
					out = append(out, fmt.Sprintf("%s/%s#%d(%s)", pet.ID, name, i, effect.Type))
				}
			}
		}
	}
	return out
}
