package ordered

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	require := require.New(t)

	var m Map[string, int]
	require.True(m.Set("b", 1))
	require.True(m.Set("a", 2))
	require.True(m.Set("c", 3))
	require.Equal([]string{"b", "a", "c"}, m.Keys())

	// Overwrite keeps position
	require.False(m.Set("b", 10))
	require.Equal([]string{"b", "a", "c"}, m.Keys())
	v, ok := m.Get("b")
	require.True(ok)
	require.Equal(10, v)

	m.Delete("a")
	require.Equal([]string{"b", "c"}, m.Keys())
	require.False(m.Has("a"))
	require.Equal(2, m.Len())

	// Index must be rebuilt after delete
	require.False(m.Set("c", 30))
	require.Equal([]string{"b", "c"}, m.Keys())
}

func TestMapEach(t *testing.T) {
	require := require.New(t)

	var m Map[string, int]
	m.Set("x", 1)
	m.Set("y", 2)
	m.Set("z", 3)

	var seen []string
	m.Each(func(k string, v int) bool {
		seen = append(seen, k)
		return k != "y"
	})
	require.Equal([]string{"x", "y"}, seen)
}

func TestMapCopy(t *testing.T) {
	require := require.New(t)

	var m Map[string, int]
	m.Set("x", 1)

	c := m.Copy()
	c.Set("y", 2)
	c.Set("x", 5)

	require.Equal(1, m.Len())
	v, _ := m.Get("x")
	require.Equal(1, v)
	require.Equal([]string{"x", "y"}, c.Keys())
}

func TestMapZeroValue(t *testing.T) {
	require := require.New(t)

	var m Map[string, int]
	_, ok := m.Get("nope")
	require.False(ok)
	m.Delete("nope")
	require.Empty(m.Keys())
	require.Equal(0, m.Copy().Len())
}
