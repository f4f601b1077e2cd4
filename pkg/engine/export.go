package engine

import (
	"github.com/gonewx/petanim/pkg/config"
)

// AnimationExport is the portable animation data of one pet type.
type AnimationExport struct {
	PetID      string                                `yaml:"petId" toml:"petId"`
	Animations map[string]config.AnimationDefinition `yaml:"animations" toml:"animations"`
	Sprites    map[string]string                     `yaml:"sprites,omitempty" toml:"sprites,omitempty"`
	Abilities  []config.PetAbility                   `yaml:"abilities,omitempty" toml:"abilities,omitempty"`
}

// ExportAnimationData collects what a pet type needs to be animated
// elsewhere. ok is false for unknown types.
func (e *Engine) ExportAnimationData(typeID string) (AnimationExport, bool) {
	pet, ok := e.catalog.Pet(typeID)
	if !ok {
		return AnimationExport{}, false
	}

	animations := make(map[string]config.AnimationDefinition, len(pet.Animations))
	for name, def := range pet.Animations {
		animations[name] = def
	}
	sprites := make(map[string]string, len(pet.Sprites))
	for k, v := range pet.Sprites {
		sprites[k] = v
	}

	return AnimationExport{
		PetID:      pet.ID,
		Animations: animations,
		Sprites:    sprites,
		Abilities:  append([]config.PetAbility(nil), pet.Abilities...),
	}, true
}
