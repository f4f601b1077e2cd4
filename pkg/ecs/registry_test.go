package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_InsertionOrder(t *testing.T) {
	r := NewRegistry[string, int]()
	r.Set("c", 3)
	r.Set("a", 1)
	r.Set("b", 2)
	r.Set("a", 10) // replace keeps position

	assert.Equal(t, []string{"c", "a", "b"}, r.Keys())

	var seen []int
	r.Each(func(_ string, v int) { seen = append(seen, v) })
	assert.Equal(t, []int{3, 10, 2}, seen)
}

func TestRegistry_DeleteIsIdempotent(t *testing.T) {
	r := NewRegistry[string, int]()
	r.Set("a", 1)
	r.Set("b", 2)

	r.Delete("a")
	r.Delete("a")
	r.Delete("missing")

	assert.False(t, r.Has("a"))
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, []string{"b"}, r.Keys())
}

func TestRegistry_DeferredRemoval(t *testing.T) {
	r := NewRegistry[string, int]()
	for i, k := range []string{"a", "b", "c", "d"} {
		r.Set(k, i)
	}

	r.Each(func(k string, v int) {
		if v%2 == 0 {
			r.MarkForRemoval(k)
		}
	})
	assert.Equal(t, 4, r.Len(), "marked entries stay until RemoveMarked")

	assert.Equal(t, 2, r.RemoveMarked())
	assert.Equal(t, []string{"b", "d"}, r.Keys())
	assert.Equal(t, 0, r.RemoveMarked())
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry[int, string]()
	r.Set(1, "x")
	r.MarkForRemoval(1)
	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Keys())
	_, ok := r.Get(1)
	assert.False(t, ok)
}
