package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleOne(t *testing.T) {
	s := New("a", "b", "c")

	s.ToggleOne("b", true)
	s.ToggleOne("a", true)
	s.ToggleOne("b", true)
	assert.Equal(t, []string{"b", "a"}, s.Items())

	s.ToggleOne("b", false)
	assert.Equal(t, []string{"a"}, s.Items())
	assert.False(t, s.Has("b"))

	s.ToggleOne("zzz", true)
	assert.Equal(t, 1, s.Len(), "ids outside the visible list are ignored")
}

func TestSetAllRestrictsToScope(t *testing.T) {
	s := New("ns-a", "ns-b")
	s.SetAll([]string{"ns-b", "ns-x", "ns-a"})
	assert.Equal(t, []string{"ns-b", "ns-a"}, s.Items())

	s.SetAll(nil)
	assert.Zero(t, s.Len())
}

func TestResetClearsSelection(t *testing.T) {
	s := New("a", "b")
	s.SetAll([]string{"a", "b"})

	s.Reset([]string{"c"})
	assert.Zero(t, s.Len())
	s.ToggleOne("a", true)
	assert.Zero(t, s.Len(), "old ids are out of scope after Reset")
	s.Flip("c")
	assert.True(t, s.Has("c"))
	s.Flip("c")
	assert.False(t, s.Has("c"))
}

func TestCloneIsIndependent(t *testing.T) {
	s := New(0, 1, 2)
	s.ToggleOne(1, true)
	c := s.Clone()
	c.ToggleOne(2, true)
	s.Clear()

	assert.Equal(t, []int{1, 2}, c.Items())
	assert.Empty(t, s.Items())
	assert.True(t, c.InScope(0))
}

func TestNilSetIsEmpty(t *testing.T) {
	var s *Set[string]
	assert.Zero(t, s.Len())
	assert.False(t, s.Has("a"))
	assert.Nil(t, s.Items())
	assert.Nil(t, s.Clone())
}
