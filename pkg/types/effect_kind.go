// Package types defines the shared enumerations used across the engine.
// It depends on no other engine package so that config, components and
// systems can all import it without cycles.
package types

// EffectKind is the closed set of effects an animation may embed.
// Adding a kind means adding a handler in systems.EffectDispatcher.
type EffectKind int

const (
	// EffectUnknown marks a declaration whose kind string was not recognised.
	// Dispatch ignores it.
	EffectUnknown EffectKind = iota
	// EffectParticle spawns a particle emission.
	EffectParticle
	// EffectSound plays a tone through the audio capability.
	EffectSound
	// EffectScreenShake asks the presentation layer to shake the screen.
	EffectScreenShake
	// EffectColorFlash asks the presentation layer to flash a color.
	EffectColorFlash
)

var effectKindNames = map[EffectKind]string{
	EffectParticle:    "particle",
	EffectSound:       "sound",
	EffectScreenShake: "screenShake",
	EffectColorFlash:  "colorFlash",
}

// String returns the catalog spelling of the kind.
func (k EffectKind) String() string {
	if name, ok := effectKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseEffectKind maps a catalog kind string to its EffectKind.
// The second return value is false for unrecognised strings.
func ParseEffectKind(s string) (EffectKind, bool) {
	for kind, name := range effectKindNames {
		if name == s {
			return kind, true
		}
	}
	return EffectUnknown, false
}

// AllEffectKinds lists every dispatchable kind in declaration order.
func AllEffectKinds() []EffectKind {
	return []EffectKind{EffectParticle, EffectSound, EffectScreenShake, EffectColorFlash}
}
