package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexScope(t *testing.T) {
	t.Parallel()
	var s IndexScope

	_, ok := s.Lookup("i")
	assert.False(t, ok)

	s.Push("i")
	s.Increment()
	s.Increment()
	s.Push("")
	s.Increment()
	s.Push("j")

	n, ok := s.Lookup("i")
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	n, ok = s.Lookup("j")
	assert.True(t, ok)
	assert.Equal(t, 0, n)
	_, ok = s.Lookup("")
	assert.False(t, ok)
	assert.Equal(t, 3, s.depth())

	assert.Equal(t, 0, s.Pop())
	assert.Equal(t, 1, s.Pop())
	_, ok = s.Lookup("j")
	assert.False(t, ok)
	assert.Equal(t, 2, s.Pop())
	assert.Equal(t, 0, s.depth())

	assert.Panics(t, func() { s.Pop() })
}

func TestIndexScopeShadowing(t *testing.T) {
	t.Parallel()
	var s IndexScope
	s.Push("i")
	s.Increment()
	s.Push("i")

	n, _ := s.Lookup("i")
	assert.Equal(t, 0, n)
	s.Pop()
	n, _ = s.Lookup("i")
	assert.Equal(t, 1, n)
}
