package types

// PetType is the elemental affinity of a pet.
type PetType string

const (
	PetFire    PetType = "fire"
	PetWater   PetType = "water"
	PetEarth   PetType = "earth"
	PetWind    PetType = "wind"
	PetLight   PetType = "light"
	PetDark    PetType = "dark"
	PetThunder PetType = "thunder"
	PetIce     PetType = "ice"
)

// Valid reports whether t is one of the known pet types.
func (t PetType) Valid() bool {
	switch t {
	case PetFire, PetWater, PetEarth, PetWind, PetLight, PetDark, PetThunder, PetIce:
		return true
	default:
		return false
	}
}

// PetRarity is the rarity tier of a pet.
type PetRarity string

const (
	RarityCommon    PetRarity = "common"
	RarityRare      PetRarity = "rare"
	RarityEpic      PetRarity = "epic"
	RarityLegendary PetRarity = "legendary"
	RarityMythic    PetRarity = "mythic"
)

// Valid reports whether r is one of the known rarities.
func (r PetRarity) Valid() bool {
	switch r {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary, RarityMythic:
		return true
	default:
		return false
	}
}
