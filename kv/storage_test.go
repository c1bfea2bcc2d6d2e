package kv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	getHeaders := func() *Storage {
		return New().
			Add("Foo", "bar").
			Add("Hello", "World").
			Add("Lorem", "ipsum").
			Add("hello", "Pavlo")
	}

	t.Run("case-insensitive get", func(t *testing.T) {
		kv := getHeaders()
		value, found := kv.Get("HELLO")
		require.True(t, found)
		require.Equal(t, "World", value)
		require.True(t, kv.Has("lorem"))
		require.False(t, kv.Has("nope"))
		require.Equal(t, "fallback", kv.ValueOr("nope", "fallback"))
	})

	t.Run("values keep insertion order", func(t *testing.T) {
		require.Equal(t, []string{"World", "Pavlo"}, getHeaders().Values("hElLo"))
		require.Nil(t, getHeaders().Values("missing"))
	})

	t.Run("keys", func(t *testing.T) {
		require.Equal(t, []string{"Foo", "Hello", "Lorem"}, getHeaders().Keys())
	})

	t.Run("pairs", func(t *testing.T) {
		var keys []string
		for key := range getHeaders().Pairs() {
			keys = append(keys, key)
		}

		require.Equal(t, []string{"Foo", "Hello", "Lorem", "hello"}, keys)
	})

	t.Run("break pairs iteration", func(t *testing.T) {
		n := 0
		for range getHeaders().Pairs() {
			n++
			break
		}

		require.Equal(t, 1, n)
	})

	t.Run("null values", func(t *testing.T) {
		kv := New().Add("a", "1").AddNull("b").Add("c", "")
		require.True(t, kv.IsNull("b"))
		require.False(t, kv.IsNull("c"))
		require.False(t, kv.IsNull("a"))
		require.False(t, kv.IsNull("missing"))

		value, found := kv.Get("b")
		require.True(t, found)
		require.Empty(t, value)
	})

	t.Run("clone", func(t *testing.T) {
		original := getHeaders()
		clone := original.Clone()
		original.Add("Extra", "value")
		require.Equal(t, 4, clone.Len())
		require.Equal(t, 5, original.Len())
		require.True(t, New().Clone().Empty())
	})
}
