package ecs

import (
	"strings"

	"github.com/google/uuid"
)

// EntityID identifies one live pet instance, e.g. "fire_dragon#1f0c2a9e".
// It is distinct from the catalog id of the pet type it instantiates.
type EntityID string

// entitySeparator splits the type prefix from the instance suffix.
const entitySeparator = "#"

// EntityManager tracks which pet type each live entity instantiates.
type EntityManager struct {
	types *Registry[EntityID, string]
	// entities queued by DestroyEntity
	entitiesToDestroy []EntityID
}

// NewEntityManager creates an empty EntityManager.
func NewEntityManager() *EntityManager {
	return &EntityManager{
		types:             NewRegistry[EntityID, string](),
		entitiesToDestroy: make([]EntityID, 0),
	}
}

// CreateEntity registers a new instance of typeID under a fresh unique id.
func (em *EntityManager) CreateEntity(typeID string) EntityID {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	id := EntityID(typeID + entitySeparator + suffix)
	for em.types.Has(id) {
		id = EntityID(typeID + entitySeparator + uuid.NewString())
	}
	em.types.Set(id, typeID)
	return id
}

// RegisterEntity binds a caller-chosen id to typeID, replacing any
// previous binding. Hosts use it when they already own entity ids.
func (em *EntityManager) RegisterEntity(id EntityID, typeID string) {
	em.types.Set(id, typeID)
}

// TypeOf returns the pet type of id. Unregistered ids whose prefix
// looks like "<type>#..." resolve to that prefix; a bare unregistered
// id resolves to itself, so a pet type id can double as its only entity.
func (em *EntityManager) TypeOf(id EntityID) (string, bool) {
	if typeID, ok := em.types.Get(id); ok {
		return typeID, true
	}
	s := string(id)
	if s == "" {
		return "", false
	}
	if i := strings.Index(s, entitySeparator); i > 0 {
		return s[:i], false
	}
	return s, false
}

// IsRegistered reports whether id was created or registered.
func (em *EntityManager) IsRegistered(id EntityID) bool {
	return em.types.Has(id)
}

// DestroyEntity marks id for removal (not removed immediately).
func (em *EntityManager) DestroyEntity(id EntityID) {
	em.entitiesToDestroy = append(em.entitiesToDestroy, id)
	em.types.MarkForRemoval(id)
}

// RemoveMarkedEntities removes every entity marked by DestroyEntity and
// returns the removed ids.
func (em *EntityManager) RemoveMarkedEntities() []EntityID {
	removed := make([]EntityID, 0, len(em.entitiesToDestroy))
	seen := make(map[EntityID]bool, len(em.entitiesToDestroy))
	for _, id := range em.entitiesToDestroy {
		if em.types.Has(id) && !seen[id] {
			seen[id] = true
			removed = append(removed, id)
		}
	}
	em.types.RemoveMarked()
	em.entitiesToDestroy = em.entitiesToDestroy[:0]
	return removed
}

// Entities returns the registered entities in creation order.
func (em *EntityManager) Entities() []EntityID {
	return em.types.Keys()
}
