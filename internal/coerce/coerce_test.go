package coerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceNonStringPassesThrough(t *testing.T) {
	assert.Equal(t, Result{Value: true}, Coerce(true, "anything"))
	assert.Equal(t, Result{Value: 7}, Coerce(7, 3))
	assert.Equal(t, Result{Value: nil}, Coerce(nil, 3))
	m := map[string]any{"k": "v"}
	assert.Equal(t, Result{Value: m}, Coerce(m, map[string]any{}))
}

func TestCoerceContainers(t *testing.T) {
	t.Run("valid JSON replaces a map field", func(t *testing.T) {
		got := Coerce(`{"a": 1}`, map[string]any{"old": true})
		assert.False(t, got.Kept)
		assert.Equal(t, map[string]any{"a": float64(1)}, got.Value)
	})

	t.Run("valid JSON replaces a list field", func(t *testing.T) {
		got := Coerce(`[1, "two"]`, []any{})
		assert.Equal(t, []any{float64(1), "two"}, got.Value)
	})

	t.Run("a list may replace a map and vice versa", func(t *testing.T) {
		got := Coerce(`[1]`, map[string]any{"old": true})
		assert.Equal(t, []any{float64(1)}, got.Value)
	})

	t.Run("unparseable input becomes the raw string", func(t *testing.T) {
		got := Coerce("  not json  ", map[string]any{"old": true})
		assert.False(t, got.Kept)
		assert.Equal(t, "not json", got.Value)
	})

	t.Run("typed slices count as containers", func(t *testing.T) {
		got := Coerce(`[3]`, []int{1, 2})
		assert.Equal(t, []any{float64(3)}, got.Value)
	})
}

func TestCoerceBool(t *testing.T) {
	for _, s := range []string{"true", "True", "1", "yes", "YES", "on"} {
		got := Coerce(s, false)
		assert.Equal(t, true, got.Value, "word %q", s)
	}
	for _, s := range []string{"false", "FALSE", "0", "no", "off", "Off"} {
		got := Coerce(s, true)
		assert.Equal(t, false, got.Value, "word %q", s)
	}

	// Anything else falls back to non-empty truthiness.
	assert.Equal(t, true, Coerce("maybe", false).Value)
	assert.Equal(t, false, Coerce("", true).Value)
	assert.Equal(t, false, Coerce("   ", true).Value)
}

func TestCoerceInt(t *testing.T) {
	got := Coerce("42", 0)
	assert.Equal(t, Result{Value: 42}, got)

	t.Run("float input truncates", func(t *testing.T) {
		assert.Equal(t, 3, Coerce("3.9", 1).Value)
		assert.Equal(t, -3, Coerce("-3.9", 1).Value)
	})

	t.Run("unparseable input keeps the old value", func(t *testing.T) {
		got := Coerce("twelve", 13)
		assert.True(t, got.Kept)
		assert.Equal(t, 13, got.Value)
	})
}

func TestCoerceFloat(t *testing.T) {
	got := Coerce("2.5", 1.0)
	assert.Equal(t, Result{Value: 2.5}, got)

	assert.Equal(t, 4.0, Coerce("4", 1.0).Value)

	got = Coerce("nope", 2.5)
	assert.True(t, got.Kept)
	assert.Equal(t, 2.5, got.Value)
}

func TestCoerceStringOrUntyped(t *testing.T) {
	t.Run("JSON typed input wins over string", func(t *testing.T) {
		assert.Equal(t, float64(5), Coerce("5", "old").Value)
		assert.Equal(t, true, Coerce("true", "old").Value)
		assert.Equal(t, map[string]any{"k": "v"}, Coerce(`{"k": "v"}`, "old").Value)
	})

	t.Run("plain text stays a trimmed string", func(t *testing.T) {
		got := Coerce("  hello world  ", "old")
		assert.Equal(t, Result{Value: "hello world"}, got)
	})

	t.Run("nil old value behaves like string", func(t *testing.T) {
		assert.Equal(t, "fresh", Coerce("fresh", nil).Value)
		assert.Equal(t, float64(9), Coerce("9", nil).Value)
	})
}
