package ecs

// Registry is a keyed store that remembers insertion order.
// It backs the playback and emission registries: iteration must be
// deterministic so that two engines fed the same ticks produce the
// same effects in the same order.
//
// Removal can be immediate (Delete) or deferred (MarkForRemoval +
// RemoveMarked), which lets a system prune entries it is iterating.
type Registry[K comparable, V any] struct {
	items map[K]V
	order []K
	// pending deferred removals
	toRemove []K
}

// NewRegistry creates an empty registry.
func NewRegistry[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{
		items:    make(map[K]V),
		order:    make([]K, 0),
		toRemove: make([]K, 0),
	}
}

// Set stores v under k. Replacing an existing key keeps its position.
func (r *Registry[K, V]) Set(k K, v V) {
	if _, exists := r.items[k]; !exists {
		r.order = append(r.order, k)
	}
	r.items[k] = v
}

// Get returns the value stored under k.
func (r *Registry[K, V]) Get(k K) (V, bool) {
	v, ok := r.items[k]
	return v, ok
}

// Has reports whether k is present.
func (r *Registry[K, V]) Has(k K) bool {
	_, ok := r.items[k]
	return ok
}

// Delete removes k immediately. Deleting a missing key is a no-op.
func (r *Registry[K, V]) Delete(k K) {
	if _, exists := r.items[k]; !exists {
		return
	}
	delete(r.items, k)
	for i, key := range r.order {
		if key == k {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// MarkForRemoval queues k for removal by the next RemoveMarked call.
func (r *Registry[K, V]) MarkForRemoval(k K) {
	r.toRemove = append(r.toRemove, k)
}

// RemoveMarked deletes every queued key and returns how many were present.
func (r *Registry[K, V]) RemoveMarked() int {
	if len(r.toRemove) == 0 {
		return 0
	}
	marked := make(map[K]struct{}, len(r.toRemove))
	removed := 0
	for _, k := range r.toRemove {
		if _, exists := r.items[k]; exists {
			delete(r.items, k)
			marked[k] = struct{}{}
			removed++
		}
	}
	r.toRemove = r.toRemove[:0]

	kept := r.order[:0]
	for _, k := range r.order {
		if _, gone := marked[k]; !gone {
			kept = append(kept, k)
		}
	}
	r.order = kept
	return removed
}

// Keys returns a copy of the keys in insertion order.
func (r *Registry[K, V]) Keys() []K {
	keys := make([]K, len(r.order))
	copy(keys, r.order)
	return keys
}

// Each calls fn for every entry in insertion order. fn must not call
// Set or Delete on the registry; use MarkForRemoval instead.
func (r *Registry[K, V]) Each(fn func(K, V)) {
	for _, k := range r.order {
		fn(k, r.items[k])
	}
}

// Len returns the number of stored entries.
func (r *Registry[K, V]) Len() int {
	return len(r.items)
}

// Clear drops every entry and any pending removal.
func (r *Registry[K, V]) Clear() {
	r.items = make(map[K]V)
	r.order = r.order[:0]
	r.toRemove = r.toRemove[:0]
}
